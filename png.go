package pathtrace

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

// ToImage tonemaps the canvas to an 8-bit RGB image.Image (spec §6):
// for each pixel, c = accumulated / max(per_pixel_passes, 1), written as
// clamp(c * gain, 0, 255).
func (c *Canvas) ToImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			i := c.index(x, y)
			n := c.SampleCount[i]
			if n < 1 {
				n = 1
			}
			mean := c.Accumulated[i].Scale(1 / float64(n))
			img.SetRGBA(x, y, color.RGBA{
				R: clampByte(mean.X * c.Gain),
				G: clampByte(mean.Y * c.Gain),
				B: clampByte(mean.Z * c.Gain),
				A: 255,
			})
		}
	}
	return img
}

// SavePNG tonemaps the canvas and writes it to path as an 8-bit RGB PNG
// (spec §6). Write failures are returned rather than panicking (spec §7).
func (c *Canvas) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return png.Encode(f, c.ToImage())
}
