// Package morph provides the binary morphology used to clean up change
// maps. Only erosion is needed by the pipeline; it suppresses isolated
// foreground cells that survive clustering by accident.
package morph

import (
	"changedetect/pkg/raster"
)

// Kernel is a binary structuring element. Non-zero entries participate
// in the erosion test; the anchor is the kernel center.
type Kernel struct {
	// Size is the side length of the square kernel, which must be odd
	Size int

	// Mask holds the element rows in row-major order, length Size*Size
	Mask []uint8
}

// DiamondKernel returns the fixed 5x5 plus-within-diamond structuring
// element used by the change map cleaner:
//
//	0 0 1 0 0
//	0 1 1 1 0
//	1 1 1 1 1
//	0 1 1 1 0
//	0 0 1 0 0
func DiamondKernel() Kernel {
	return Kernel{
		Size: 5,
		Mask: []uint8{
			0, 0, 1, 0, 0,
			0, 1, 1, 1, 0,
			1, 1, 1, 1, 1,
			0, 1, 1, 1, 0,
			0, 0, 1, 0, 0,
		},
	}
}

// Erode applies binary erosion to a bitmap: an output cell is
// foreground only if every kernel-covered cell is foreground. Positions
// outside the bitmap count as background, so foreground touching the
// border is always eroded away.
func Erode(src *raster.Bitmap, kernel Kernel) *raster.Bitmap {
	dst := raster.NewBitmap(src.Width, src.Height)
	radius := kernel.Size / 2

	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			if fits(src, kernel, x, y, radius) {
				dst.Set(x, y, 255)
			}
		}
	}

	return dst
}

// fits reports whether the kernel placed at (x, y) lies entirely on
// foreground cells.
func fits(src *raster.Bitmap, kernel Kernel, x, y, radius int) bool {
	for ky := 0; ky < kernel.Size; ky++ {
		for kx := 0; kx < kernel.Size; kx++ {
			if kernel.Mask[ky*kernel.Size+kx] == 0 {
				continue
			}
			sx := x + kx - radius
			sy := y + ky - radius
			if sx < 0 || sx >= src.Width || sy < 0 || sy >= src.Height {
				return false
			}
			if src.At(sx, sy) == 0 {
				return false
			}
		}
	}
	return true
}
