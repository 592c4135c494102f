// Package bigscore renders a bias score as large block digits using
// half-block characters.
package bigscore

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Face is the bitmap face digits are drawn with.
var face font.Face = basicfont.Face7x13

// Render draws text in the bitmap face and converts it to half-block art.
// Each glyph pixel becomes one terminal column and half a row.
func Render(text string) string {
	if text == "" {
		return ""
	}

	m := face.Metrics()
	width := font.MeasureString(face, text).Ceil()
	height := (m.Ascent + m.Descent).Ceil()
	if width <= 0 || height <= 0 {
		return ""
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: m.Ascent},
	}
	d.DrawString(text)

	top, bottom := inkRows(img)
	if top > bottom {
		return ""
	}
	return halfBlocks(img, top, bottom)
}

// inkRows returns the first and last rows holding a lit pixel.
func inkRows(img *image.Gray) (top, bottom int) {
	b := img.Bounds()
	top, bottom = b.Max.Y, -1
	for y := 0; y < b.Max.Y; y++ {
		for x := 0; x < b.Max.X; x++ {
			if lit(img, x, y) {
				if y < top {
					top = y
				}
				bottom = y
				break
			}
		}
	}
	return top, bottom
}

// halfBlocks converts rows top..bottom of img to half-block art, two pixel
// rows per line.
func halfBlocks(img *image.Gray, top, bottom int) string {
	var result strings.Builder
	width := img.Bounds().Max.X

	for y := top; y <= bottom; y += 2 {
		for x := 0; x < width; x++ {
			upper := lit(img, x, y)
			lower := y+1 <= bottom && lit(img, x, y+1)

			switch {
			case upper && lower:
				result.WriteRune('█')
			case upper:
				result.WriteRune('▀')
			case lower:
				result.WriteRune('▄')
			default:
				result.WriteRune(' ')
			}
		}
		if y+2 <= bottom {
			result.WriteRune('\n')
		}
	}

	return result.String()
}

func lit(img *image.Gray, x, y int) bool {
	if x < 0 || y < 0 || x >= img.Bounds().Max.X || y >= img.Bounds().Max.Y {
		return false
	}
	return img.GrayAt(x, y).Y > 40
}

var (
	mu    sync.Mutex
	cache = make(map[int]string)
)

// Score returns the block art for a score, rendering each value once.
func Score(n int) string {
	mu.Lock()
	defer mu.Unlock()

	if s, ok := cache[n]; ok {
		return s
	}
	s := Render(strconv.Itoa(n))
	cache[n] = s
	return s
}
