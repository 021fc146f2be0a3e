package morph

import (
	"testing"

	"changedetect/pkg/raster"
)

// TestDiamondKernelShape verifies the structuring element is replicated
// exactly.
func TestDiamondKernelShape(t *testing.T) {
	kernel := DiamondKernel()

	if kernel.Size != 5 {
		t.Fatalf("Expected kernel size 5, got %d", kernel.Size)
	}

	want := []uint8{
		0, 0, 1, 0, 0,
		0, 1, 1, 1, 0,
		1, 1, 1, 1, 1,
		0, 1, 1, 1, 0,
		0, 0, 1, 0, 0,
	}
	for i, v := range want {
		if kernel.Mask[i] != v {
			t.Errorf("kernel[%d]=%d, want %d", i, kernel.Mask[i], v)
		}
	}
}

// TestErodeFullSquare verifies erosion of a fully foreground bitmap:
// zero padding at the borders must strip a 2-cell frame, leaving the
// 3x3 core of a 7x7 square.
func TestErodeFullSquare(t *testing.T) {
	src := raster.NewBitmap(7, 7)
	for i := range src.Pix {
		src.Pix[i] = 255
	}

	dst := Erode(src, DiamondKernel())

	for y := 0; y < 7; y++ {
		for x := 0; x < 7; x++ {
			want := uint8(0)
			if x >= 2 && x <= 4 && y >= 2 && y <= 4 {
				want = 255
			}
			if got := dst.At(x, y); got != want {
				t.Errorf("dst(%d,%d)=%d, want %d", x, y, got, want)
			}
		}
	}
}

// TestErodeDiamondToCenter verifies that a foreground region shaped
// exactly like the kernel erodes down to its single center cell.
func TestErodeDiamondToCenter(t *testing.T) {
	kernel := DiamondKernel()
	src := raster.NewBitmap(5, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			if kernel.Mask[y*5+x] != 0 {
				src.Set(x, y, 255)
			}
		}
	}

	dst := Erode(src, kernel)

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			want := uint8(0)
			if x == 2 && y == 2 {
				want = 255
			}
			if got := dst.At(x, y); got != want {
				t.Errorf("dst(%d,%d)=%d, want %d", x, y, got, want)
			}
		}
	}
}

// TestErodeIsolatedCell verifies that isolated foreground cells are
// removed entirely.
func TestErodeIsolatedCell(t *testing.T) {
	src := raster.NewBitmap(9, 9)
	src.Set(4, 4, 255)

	dst := Erode(src, DiamondKernel())

	for i, v := range dst.Pix {
		if v != 0 {
			t.Errorf("Expected empty result, found foreground at index %d", i)
		}
	}
}
