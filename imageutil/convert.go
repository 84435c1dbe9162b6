package imageutil

// Luminance weights from BT.601, the same ones OpenCV's COLOR_BGR2GRAY
// uses.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Luminance returns the relative brightness of p in [0, 1]. Alpha is
// ignored.
func Luminance(p Pixel) float64 {
	return (lumaR*float64(p.R) + lumaG*float64(p.G) + lumaB*float64(p.B)) / 255
}
