package texture

import (
	"image"
	"image/color"
)

const defaultImageSize = 64

// defaultTokenImage draws the built-in stand-in token: a gray disc with a
// darker rim on a transparent background.
func defaultTokenImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, defaultImageSize, defaultImageSize))

	const (
		cx = defaultImageSize / 2
		cy = defaultImageSize / 2
		r  = defaultImageSize/2 - 1
	)
	fill := color.RGBA{120, 130, 150, 255}
	rim := color.RGBA{60, 65, 80, 255}

	for y := 0; y < defaultImageSize; y++ {
		for x := 0; x < defaultImageSize; x++ {
			dx := float64(x - cx)
			dy := float64(y - cy)
			d2 := dx*dx + dy*dy
			switch {
			case d2 <= float64((r-3)*(r-3)):
				img.SetRGBA(x, y, fill)
			case d2 <= float64(r*r):
				img.SetRGBA(x, y, rim)
			}
		}
	}
	return img
}
