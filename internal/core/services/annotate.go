package services

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

// BoxColor is the colour used for detection boxes and labels.
var BoxColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

const (
	boxThickness = 2
	labelOffsetY = 10
)

// Annotate draws a box and a "<name> <conf>" label for every detection onto img.
func Annotate(img *image.RGBA, dets []domain.Detection, classNames []string) {
	for _, d := range dets {
		drawBox(img, d.Box.Rect(), BoxColor, boxThickness)
		drawLabel(img, d.Box.X1, d.Box.Y1-labelOffsetY, DetectionLabel(d, classNames), BoxColor)
	}
}

// DetectionLabel formats the annotation text for a detection.
func DetectionLabel(d domain.Detection, classNames []string) string {
	return fmt.Sprintf("%s %.2f", className(d, classNames), d.Confidence)
}

func className(d domain.Detection, classNames []string) string {
	if d.ClassIndex >= 0 && d.ClassIndex < len(classNames) {
		return classNames[d.ClassIndex]
	}
	if d.Label != "" {
		return d.Label
	}
	return fmt.Sprintf("class-%d", d.ClassIndex)
}

// drawBox draws the outline of r with the given thickness, clipped to img.
func drawBox(img *image.RGBA, r image.Rectangle, c color.RGBA, thickness int) {
	r = r.Canon()
	bounds := img.Bounds()

	for t := 0; t < thickness; t++ {
		for x := r.Min.X; x <= r.Max.X; x++ {
			setClipped(img, bounds, x, r.Min.Y+t, c)
			setClipped(img, bounds, x, r.Max.Y-t, c)
		}
		for y := r.Min.Y; y <= r.Max.Y; y++ {
			setClipped(img, bounds, r.Min.X+t, y, c)
			setClipped(img, bounds, r.Max.X-t, y, c)
		}
	}
}

func setClipped(img *image.RGBA, bounds image.Rectangle, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(bounds) {
		img.SetRGBA(x, y, c)
	}
}

// drawLabel writes text with its baseline at (x, y).
// Labels that would leave the top edge are pushed down to stay visible.
func drawLabel(img *image.RGBA, x, y int, label string, c color.RGBA) {
	face := basicfont.Face7x13
	if y < face.Ascent {
		y = face.Ascent
	}
	if x < 0 {
		x = 0
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}
