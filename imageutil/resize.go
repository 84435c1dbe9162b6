package imageutil

import (
	"fmt"
	"math"
)

// TargetHeight returns the height that keeps the aspect ratio of a
// width x height image when it is resized to targetWidth columns:
// floor(height / width * targetWidth). A zero width yields zero.
func TargetHeight(width, height, targetWidth int) int {
	if width <= 0 {
		return 0
	}
	return int(math.Floor(float64(height) / float64(width) * float64(targetWidth)))
}

// Resample resizes img to targetWidth x targetHeight using bilinear
// interpolation and returns a new image; img is not modified.
//
// Destination pixel (x, y) samples the source at (x*xRatio, y*yRatio), with
// xRatio = width/targetWidth and yRatio = height/targetHeight. The four
// source pixels surrounding that point are blended by their fractional
// distance. Neighbors that fall outside the source count as the zero pixel,
// so the right and bottom edges fade toward transparent black when the
// sample point is not aligned to a source pixel.
//
// Both targets must be positive.
func Resample(img *RasterImage, targetWidth, targetHeight int) *RasterImage {
	if targetWidth <= 0 || targetHeight <= 0 {
		panic(fmt.Sprintf("imageutil: invalid resample target %dx%d", targetWidth, targetHeight))
	}

	dst := NewRasterImage(targetWidth, targetHeight)
	xRatio := float64(img.Width) / float64(targetWidth)
	yRatio := float64(img.Height) / float64(targetHeight)

	for y := 0; y < targetHeight; y++ {
		sy := float64(y) * yRatio
		srcY := int(math.Floor(sy))
		yWeight := sy - float64(srcY)

		for x := 0; x < targetWidth; x++ {
			sx := float64(x) * xRatio
			srcX := int(math.Floor(sx))
			xWeight := sx - float64(srcX)

			dst.Pix[dst.Offset(x, y)] = bilinear(
				img.PixelAt(srcX, srcY),
				img.PixelAt(srcX+1, srcY),
				img.PixelAt(srcX, srcY+1),
				img.PixelAt(srcX+1, srcY+1),
				xWeight, yWeight,
			)
		}
	}

	return dst
}

// bilinear blends four corner pixels channel by channel.
func bilinear(topLeft, topRight, bottomLeft, bottomRight Pixel, xWeight, yWeight float64) Pixel {
	xInverse := 1 - xWeight
	yInverse := 1 - yWeight

	wTL := xInverse * yInverse
	wTR := xWeight * yInverse
	wBL := xInverse * yWeight
	wBR := xWeight * yWeight

	blend := func(tl, tr, bl, br uint8) uint8 {
		v := float64(tl)*wTL + float64(tr)*wTR + float64(bl)*wBL + float64(br)*wBR
		return uint8(int(math.Round(v)) & 0xFF)
	}

	return Pixel{
		R: blend(topLeft.R, topRight.R, bottomLeft.R, bottomRight.R),
		G: blend(topLeft.G, topRight.G, bottomLeft.G, bottomRight.G),
		B: blend(topLeft.B, topRight.B, bottomLeft.B, bottomRight.B),
		A: blend(topLeft.A, topRight.A, bottomLeft.A, bottomRight.A),
	}
}
