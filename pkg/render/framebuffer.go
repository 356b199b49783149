// Package render provides software rasterization of lit triangle meshes
// into an RGB framebuffer.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Framebuffer is a row-major RGB pixel buffer.
type Framebuffer struct {
	Width, Height int
	Pixels        []Color
	BG            Color // Clear color
}

// NewFramebuffer creates a framebuffer of the given size.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(width, height)
	return fb
}

// Resize reallocates the pixel buffer; contents are cleared to BG.
func (fb *Framebuffer) Resize(width, height int) {
	fb.Width = max(width, 0)
	fb.Height = max(height, 0)
	fb.Pixels = make([]Color, fb.Width*fb.Height)
	fb.Clear()
}

// Clear fills the buffer with the background color.
func (fb *Framebuffer) Clear() {
	for i := range fb.Pixels {
		fb.Pixels[i] = fb.BG
	}
}

// SetPixel sets the pixel at (x, y); out-of-range writes are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the pixel at (x, y), or BG when out of range.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return fb.BG
	}
	return fb.Pixels[y*fb.Width+x]
}

// DrawLine draws a line with Bresenham's algorithm.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	// Bound the walk so wild projections cannot spin forever.
	for steps := 0; steps <= dx-dy+1; steps++ {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// ToImage converts the framebuffer to an image.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		for x := range fb.Width {
			c := fb.Pixels[y*fb.Width+x]
			img.SetRGBA(x, y, color.RGBA{c.R, c.G, c.B, 255})
		}
	}
	return img
}

// SavePNG writes the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
