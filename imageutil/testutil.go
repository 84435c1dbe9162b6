package imageutil

import "math/rand"

// CreateGradientImage creates an opaque horizontal gray gradient.
func CreateGradientImage(width, height int) *RasterImage {
	img := NewRasterImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(0)
			if width > 1 {
				v = uint8(255 * x / (width - 1))
			}
			img.SetPixel(x, y, Pixel{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// CreateCheckerboardImage creates an opaque black and white checkerboard.
func CreateCheckerboardImage(width, height, squareSize int) *RasterImage {
	img := NewRasterImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if ((x/squareSize)+(y/squareSize))%2 == 0 {
				img.SetPixel(x, y, Pixel{R: 255, G: 255, B: 255, A: 255})
			} else {
				img.SetPixel(x, y, Pixel{A: 255})
			}
		}
	}
	return img
}

// CreateSolidImage creates an image filled with a single pixel value.
func CreateSolidImage(width, height int, p Pixel) *RasterImage {
	img := NewRasterImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = p
	}
	return img
}

// CreateColorBarsImage creates an opaque color bars test pattern.
func CreateColorBarsImage(width, height int) *RasterImage {
	img := NewRasterImage(width, height)
	colors := []Pixel{
		{255, 255, 255, 255}, // White
		{255, 255, 0, 255},   // Yellow
		{0, 255, 255, 255},   // Cyan
		{0, 255, 0, 255},     // Green
		{255, 0, 255, 255},   // Magenta
		{255, 0, 0, 255},     // Red
		{0, 0, 255, 255},     // Blue
		{0, 0, 0, 255},       // Black
	}

	barWidth := width / len(colors)
	if barWidth == 0 {
		barWidth = 1
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			colorIdx := x / barWidth
			if colorIdx >= len(colors) {
				colorIdx = len(colors) - 1
			}
			img.SetPixel(x, y, colors[colorIdx])
		}
	}
	return img
}

// CreateNoiseImage creates an image of seeded random pixels. With alpha
// false every pixel is opaque.
func CreateNoiseImage(width, height int, seed int64, alpha bool) *RasterImage {
	rng := rand.New(rand.NewSource(seed))
	img := NewRasterImage(width, height)
	for i := range img.Pix {
		p := Pixel{
			R: uint8(rng.Intn(256)),
			G: uint8(rng.Intn(256)),
			B: uint8(rng.Intn(256)),
			A: 255,
		}
		if alpha {
			p.A = uint8(rng.Intn(256))
		}
		img.Pix[i] = p
	}
	return img
}

// CalculateMaxDiff returns the largest per-channel difference between two
// images, or 256 when their dimensions differ.
func CalculateMaxDiff(img1, img2 *RasterImage) int {
	if img1.Width != img2.Width || img1.Height != img2.Height {
		return 256
	}

	maxDiff := 0
	for i := range img1.Pix {
		a, b := img1.Pix[i], img2.Pix[i]
		for _, d := range [4]int{
			abs(int(a.R) - int(b.R)),
			abs(int(a.G) - int(b.G)),
			abs(int(a.B) - int(b.B)),
			abs(int(a.A) - int(b.A)),
		} {
			if d > maxDiff {
				maxDiff = d
			}
		}
	}
	return maxDiff
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
