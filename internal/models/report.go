package models

import (
	"time"
)

// Report summarizes a single change detection run for presentation by
// a host process.
type Report struct {
	// PreFile and PostFile are the source raster paths
	PreFile  string
	PostFile string

	// Width and Height are the dimensions of the input rasters and of
	// the output mask
	Width  int
	Height int

	// ChangedPixels is the number of foreground cells in the final mask
	ChangedPixels int

	// Elapsed is the wall-clock duration of the detection run
	Elapsed time.Duration
}

// ChangedFraction returns the share of mask pixels marked as changed,
// in the range [0, 1].
func (r *Report) ChangedFraction() float64 {
	total := r.Width * r.Height
	if total == 0 {
		return 0
	}
	return float64(r.ChangedPixels) / float64(total)
}
