package imageutil

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRasterImage(t *testing.T) {
	img := NewRasterImage(100, 50)
	if img.Width != 100 {
		t.Errorf("Expected width 100, got %d", img.Width)
	}
	if img.Height != 50 {
		t.Errorf("Expected height 50, got %d", img.Height)
	}
	if len(img.Pix) != 100*50 {
		t.Errorf("Expected %d pixels, got %d", 100*50, len(img.Pix))
	}
	if img.Bounds() != image.Rect(0, 0, 100, 50) {
		t.Errorf("Unexpected bounds %v", img.Bounds())
	}
}

func TestRasterImagePixelAccess(t *testing.T) {
	img := NewRasterImage(10, 10)
	p := Pixel{R: 100, G: 150, B: 200, A: 255}
	img.SetPixel(5, 5, p)

	if got := img.PixelAt(5, 5); got != p {
		t.Errorf("Expected %v, got %v", p, got)
	}
	if got := img.Pix[5*10+5]; got != p {
		t.Errorf("Pixel should be stored row-major, got %v", got)
	}

	// Out of range reads are the zero pixel, writes are dropped
	img.SetPixel(-1, 0, p)
	img.SetPixel(10, 0, p)
	for _, xy := range [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 10}} {
		if got := img.PixelAt(xy[0], xy[1]); got != (Pixel{}) {
			t.Errorf("Out of bounds read at %v should be zero, got %v", xy, got)
		}
	}

	row := img.Row(5)
	if len(row) != 10 || row[5] != p {
		t.Errorf("Row(5) should contain the pixel, got %v", row)
	}
}

func TestFromImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 5, 5))
	src.SetNRGBA(2, 3, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	src.SetNRGBA(4, 4, color.NRGBA{R: 250, G: 0, B: 5, A: 255})

	img := FromImage(src)
	assert.Equal(t, 3, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.Equal(t, Pixel{R: 10, G: 20, B: 30, A: 40}, img.PixelAt(0, 0))
	assert.Equal(t, Pixel{R: 250, G: 0, B: 5, A: 255}, img.PixelAt(2, 1))
	assert.Equal(t, Pixel{}, img.PixelAt(1, 0))
}

func TestLuminance(t *testing.T) {
	if l := Luminance(Pixel{A: 255}); l != 0 {
		t.Errorf("Black should have luminance 0, got %f", l)
	}
	assert.InDelta(t, 1.0, Luminance(Pixel{R: 255, G: 255, B: 255}), 1e-9)
	assert.InDelta(t, 0.299, Luminance(Pixel{R: 255}), 1e-9)
	assert.InDelta(t, 0.587, Luminance(Pixel{G: 255}), 1e-9)
	assert.InDelta(t, 0.114, Luminance(Pixel{B: 255}), 1e-9)

	// Alpha has no influence
	assert.Equal(t, Luminance(Pixel{R: 9, G: 99, B: 199, A: 0}), Luminance(Pixel{R: 9, G: 99, B: 199, A: 255}))
}

func TestTargetHeight(t *testing.T) {
	tests := []struct {
		width, height, targetWidth int
		want                       int
	}{
		{200, 100, 150, 75},
		{100, 200, 150, 300},
		{1, 1, 1, 1},
		{4, 3, 2, 1},
		{10, 1, 5, 0}, // very wide images collapse to zero rows
		{0, 5, 10, 0},
	}

	for _, tt := range tests {
		if got := TargetHeight(tt.width, tt.height, tt.targetWidth); got != tt.want {
			t.Errorf("TargetHeight(%d, %d, %d) = %d; want %d",
				tt.width, tt.height, tt.targetWidth, got, tt.want)
		}
	}
}

func TestResampleIdentity(t *testing.T) {
	img := CreateNoiseImage(17, 9, 42, true)
	resized := Resample(img, img.Width, img.Height)

	if diff := CalculateMaxDiff(img, resized); diff != 0 {
		t.Errorf("Identity resample should reproduce the source, max diff %d", diff)
	}
	if resized == img {
		t.Error("Resample must return a new image")
	}
}

func TestResampleLeavesSourceUntouched(t *testing.T) {
	img := CreateNoiseImage(8, 8, 7, true)
	before := NewRasterImage(img.Width, img.Height)
	copy(before.Pix, img.Pix)

	Resample(img, 3, 5)
	Resample(img, 20, 11)

	if diff := CalculateMaxDiff(img, before); diff != 0 {
		t.Errorf("Source image was modified, max diff %d", diff)
	}
}

func TestResampleDownscaleSamplesOrigin(t *testing.T) {
	img := NewRasterImage(2, 1)
	img.SetPixel(0, 0, Pixel{R: 255, A: 255})
	img.SetPixel(1, 0, Pixel{G: 255, A: 255})

	resized := Resample(img, 1, 1)
	assert.Equal(t, []Pixel{{R: 255, A: 255}}, resized.Pix)
}

func TestResampleBlendsWithZeroOutsideBounds(t *testing.T) {
	img := CreateSolidImage(1, 1, Pixel{R: 100, G: 100, B: 100, A: 255})

	resized := Resample(img, 2, 1)

	// x=1 samples halfway between the only pixel and the transparent
	// neighbor past the right edge.
	assert.Equal(t, Pixel{R: 100, G: 100, B: 100, A: 255}, resized.PixelAt(0, 0))
	assert.Equal(t, Pixel{R: 50, G: 50, B: 50, A: 128}, resized.PixelAt(1, 0))
}

func TestResampleBilinearInterior(t *testing.T) {
	img := NewRasterImage(2, 2)
	img.SetPixel(0, 0, Pixel{R: 0, G: 0, B: 0, A: 255})
	img.SetPixel(1, 0, Pixel{R: 100, G: 100, B: 100, A: 255})
	img.SetPixel(0, 1, Pixel{R: 200, G: 200, B: 200, A: 255})
	img.SetPixel(1, 1, Pixel{R: 255, G: 255, B: 255, A: 255})

	resized := Resample(img, 4, 4)
	if resized.Width != 4 || resized.Height != 4 {
		t.Fatalf("Expected 4x4, got %dx%d", resized.Width, resized.Height)
	}

	// (1,1) lands in the middle of the four source pixels:
	// (0 + 100 + 200 + 255) / 4 = 138.75
	assert.Equal(t, Pixel{R: 139, G: 139, B: 139, A: 255}, resized.PixelAt(1, 1))
	// (2,2) lands exactly on the bottom-right source pixel
	assert.Equal(t, Pixel{R: 255, G: 255, B: 255, A: 255}, resized.PixelAt(2, 2))
}

func TestResampleRejectsEmptyTarget(t *testing.T) {
	img := CreateGradientImage(4, 4)
	assert.Panics(t, func() { Resample(img, 0, 4) })
	assert.Panics(t, func() { Resample(img, 4, -1) })
}

func TestCalculateMaxDiff(t *testing.T) {
	img1 := CreateSolidImage(10, 10, Pixel{A: 255})
	img2 := CreateSolidImage(10, 10, Pixel{A: 255})
	if d := CalculateMaxDiff(img1, img2); d != 0 {
		t.Errorf("Identical images should have max diff 0, got %d", d)
	}

	img2.SetPixel(3, 3, Pixel{B: 10, A: 200})
	if d := CalculateMaxDiff(img1, img2); d != 55 {
		t.Errorf("Expected max diff 55, got %d", d)
	}

	if d := CalculateMaxDiff(img1, NewRasterImage(3, 3)); d != 256 {
		t.Errorf("Mismatched dimensions should report 256, got %d", d)
	}
}

func TestSaveImageRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	img := CreateNoiseImage(16, 8, 3, true)

	pngPath := filepath.Join(tmpDir, "test.png")
	if err := SaveImage(img, pngPath); err != nil {
		t.Fatalf("Failed to save PNG: %v", err)
	}

	data, err := ReadFile(pngPath)
	if err != nil {
		t.Fatalf("Failed to read PNG: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Saved PNG is empty")
	}

	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}

	// PNG is lossless for non-premultiplied input
	if diff := CalculateMaxDiff(img, FromImage(decoded)); diff != 0 {
		t.Errorf("PNG should be lossless, max diff %d", diff)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Error("Expected an error for a missing file")
	}
}
