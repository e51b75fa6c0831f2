package pixel

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const checkerSize = 16

var (
	patternLight = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	patternDark  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	patternLabel = color.RGBA{R: 255, A: 255}
)

// TestPattern returns the placeholder raster shown for frames that cannot be
// decoded: a checkerboard labelled with its size.
func TestPattern(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/checkerSize)%2 == (y/checkerSize)%2 {
				img.SetRGBA(x, y, patternLight)
			} else {
				img.SetRGBA(x, y, patternDark)
			}
		}
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(patternLabel),
		Face: basicfont.Face7x13,
	}
	drawer.Dot = fixed.P(20, 30)
	drawer.DrawString("TEST PATTERN")
	drawer.Dot = fixed.P(20, 60)
	drawer.DrawString(fmt.Sprintf("%dx%d", width, height))
	return img
}
