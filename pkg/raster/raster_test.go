package raster

import (
	"image"
	"image/color"
	"testing"
)

func grayImage(width, height int, fill func(x, y int) uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: fill(x, y)})
		}
	}
	return img
}

// TestFromImage verifies the 0-255 intensity conversion.
func TestFromImage(t *testing.T) {
	img := grayImage(4, 3, func(x, y int) uint8 { return uint8(10*y + x) })

	grid := FromImage(img)

	if grid.Width != 4 || grid.Height != 3 {
		t.Fatalf("Expected 4x3 grid, got %dx%d", grid.Width, grid.Height)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if got := grid.At(x, y); got != int32(10*y+x) {
				t.Errorf("grid(%d,%d)=%d, want %d", x, y, got, 10*y+x)
			}
		}
	}
}

// TestAbsDiff verifies magnitudes and the shape mismatch error.
func TestAbsDiff(t *testing.T) {
	a := NewGrid(2, 2)
	b := NewGrid(2, 2)
	copy(a.Pix, []int32{10, 0, 200, 5})
	copy(b.Pix, []int32{3, 50, 255, 5})

	diff, err := AbsDiff(a, b)
	if err != nil {
		t.Fatalf("AbsDiff failed: %v", err)
	}

	want := []int32{7, 50, 55, 0}
	for i, v := range want {
		if diff.Pix[i] != v {
			t.Errorf("diff[%d]=%d, want %d", i, diff.Pix[i], v)
		}
	}

	if _, err := AbsDiff(a, NewGrid(3, 2)); err == nil {
		t.Errorf("Expected shape mismatch error")
	}
}

// TestResize verifies output dimensions and that a same-size resize is
// a pass-through.
func TestResize(t *testing.T) {
	img := grayImage(10, 10, func(x, y int) uint8 { return uint8(x * y) })

	small := Resize(img, 5, 5)
	bounds := small.Bounds()
	if bounds.Dx() != 5 || bounds.Dy() != 5 {
		t.Errorf("Expected 5x5 result, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	if same := Resize(img, 10, 10); same != image.Image(img) {
		t.Errorf("Same-size resize should return the input unchanged")
	}
}

// TestBitmapToImage verifies the mask conversion.
func TestBitmapToImage(t *testing.T) {
	bm := NewBitmap(3, 2)
	bm.Set(1, 0, 255)
	bm.Set(2, 1, 255)

	img := bm.ToImage()

	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("Expected 3x2 image, got %v", img.Bounds())
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			want := bm.At(x, y)
			if got := img.GrayAt(x, y).Y; got != want {
				t.Errorf("img(%d,%d)=%d, want %d", x, y, got, want)
			}
		}
	}
}
