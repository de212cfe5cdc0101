// Package window provides cosine-sum window functions for spectral analysis.
package window
