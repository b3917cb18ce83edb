package services

import (
	"image"
	"image/draw"
	"math"
)

// Preprocess applies dst = saturate(alpha*src + beta) to every colour channel
// and returns a new RGBA image. Alpha channel values are kept as is.
func Preprocess(src image.Image, alpha, beta float64) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	var lut [256]uint8
	for i := range lut {
		lut[i] = saturate(alpha*float64(i) + beta)
	}

	pix := dst.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = lut[pix[i]]
		pix[i+1] = lut[pix[i+1]]
		pix[i+2] = lut[pix[i+2]]
	}

	return dst
}

// saturate rounds to nearest and clamps to [0,255].
func saturate(v float64) uint8 {
	r := math.Round(v)
	switch {
	case r <= 0:
		return 0
	case r >= 255:
		return 255
	default:
		return uint8(r)
	}
}
