// Package raster provides the in-memory grid representations used by the
// change detection pipeline: a signed integer grid for pixel arithmetic
// and a binary bitmap for masks. It also handles conversion between the
// standard library image types used at the module boundary and these
// internal grids.
package raster

import (
	"fmt"
	"image"
	"image/color"
)

// Grid is a 2D array of pixel intensities stored row-major. Values are
// kept as int32 so that subtracting two 16-bit intensities can never
// underflow.
type Grid struct {
	// Width and Height are the grid dimensions in pixels
	Width  int
	Height int

	// Pix holds the intensities in row-major order, length Width*Height
	Pix []int32
}

// NewGrid allocates a zero-filled grid of the given dimensions.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Pix:    make([]int32, width*height),
	}
}

// At returns the intensity at (x, y). No bounds checking is performed;
// callers are expected to stay inside the grid.
func (g *Grid) At(x, y int) int32 {
	return g.Pix[y*g.Width+x]
}

// Set stores an intensity at (x, y).
func (g *Grid) Set(x, y int, v int32) {
	g.Pix[y*g.Width+x] = v
}

// FromImage converts an image to an intensity grid. Color images are
// reduced to their red channel after the 16-bit color conversion, which
// matches the grayscale interpretation used for single-band rasters
// (for gray inputs r==g==b). Intensities are scaled to the 0-255 range.
func FromImage(img image.Image) *Grid {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	grid := NewGrid(width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			grid.Pix[y*width+x] = int32(r >> 8)
		}
	}

	return grid
}

// AbsDiff computes the per-pixel absolute difference of two grids.
// It returns an error if the grids are not identically shaped.
func AbsDiff(a, b *Grid) (*Grid, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return nil, fmt.Errorf("grid shapes differ: %dx%d vs %dx%d",
			a.Width, a.Height, b.Width, b.Height)
	}

	diff := NewGrid(a.Width, a.Height)
	for i := range a.Pix {
		d := a.Pix[i] - b.Pix[i]
		if d < 0 {
			d = -d
		}
		diff.Pix[i] = d
	}

	return diff, nil
}

// Bitmap is a binary 2D array stored row-major. Foreground cells hold
// 255 and background cells hold 0.
type Bitmap struct {
	// Width and Height are the bitmap dimensions in cells
	Width  int
	Height int

	// Pix holds the cells in row-major order, length Width*Height
	Pix []uint8
}

// NewBitmap allocates a zero-filled (all background) bitmap.
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// At returns the cell value at (x, y).
func (b *Bitmap) At(x, y int) uint8 {
	return b.Pix[y*b.Width+x]
}

// Set stores a cell value at (x, y).
func (b *Bitmap) Set(x, y int, v uint8) {
	b.Pix[y*b.Width+x] = v
}

// ToImage converts the bitmap to an 8-bit grayscale image suitable for
// encoding or display by a host process.
func (b *Bitmap) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			img.SetGray(x, y, color.Gray{Y: b.Pix[y*b.Width+x]})
		}
	}
	return img
}
