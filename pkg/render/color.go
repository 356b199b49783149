package render

import "fmt"

// Color is an 8-bit RGB color.
type Color struct {
	R, G, B uint8
}

// Common colors.
var (
	ColorBlack = Color{0, 0, 0}
	ColorWhite = Color{255, 255, 255}
	ColorRed   = Color{255, 0, 0}
	ColorGreen = Color{0, 255, 0}
	ColorBlue  = Color{0, 0, 255}
)

// RGB creates a color from components.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b}
}

// Hex creates a color from a 0xRRGGBB value.
func Hex(v uint32) Color {
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}
}

// Hex returns the color as 0xRRGGBB.
func (c Color) Hex() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// String formats the color as #rrggbb.
func (c Color) String() string {
	return fmt.Sprintf("#%06x", c.Hex())
}

// Floats returns the components in the 0-1 range.
func (c Color) Floats() [3]float64 {
	return [3]float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}

// MultiplyColor scales a color by a factor, clamping each channel to 255.
func MultiplyColor(c Color, f float64) Color {
	return RGB(clampChannel(float64(c.R)*f), clampChannel(float64(c.G)*f), clampChannel(float64(c.B)*f))
}

// AddColor adds two colors channel-wise with clamping.
func AddColor(a, b Color) Color {
	return RGB(
		clampChannel(float64(a.R)+float64(b.R)),
		clampChannel(float64(a.G)+float64(b.G)),
		clampChannel(float64(a.B)+float64(b.B)),
	)
}

// lerpColor linearly interpolates between two colors.
func lerpColor(a, b Color, t float64) Color {
	return RGB(
		uint8(float64(a.R)+(float64(b.R)-float64(a.R))*t),
		uint8(float64(a.G)+(float64(b.G)-float64(a.G))*t),
		uint8(float64(a.B)+(float64(b.B)-float64(a.B))*t),
	)
}

func clampChannel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
