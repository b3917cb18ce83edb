package services

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

func TestDetectionLabel(t *testing.T) {
	names := []string{"organik", "anorganik", "B3"}

	assert.Equal(t, "B3 0.87", DetectionLabel(domain.Detection{ClassIndex: 2, Confidence: 0.871}, names))
	assert.Equal(t, "kaca 0.50", DetectionLabel(domain.Detection{ClassIndex: 5, Label: "kaca", Confidence: 0.5}, names))
	assert.Equal(t, "class-9 0.30", DetectionLabel(domain.Detection{ClassIndex: 9, Confidence: 0.3}, nil))
}

func TestAnnotate_DrawsBoxOutline(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	d := domain.Detection{ClassIndex: 0, Confidence: 0.9, Box: domain.BoundingBox{X1: 20, Y1: 40, X2: 60, Y2: 80}}

	Annotate(img, []domain.Detection{d}, []string{"organik"})

	assert.Equal(t, BoxColor, img.RGBAAt(20, 60))
	assert.Equal(t, BoxColor, img.RGBAAt(21, 60))
	assert.Equal(t, BoxColor, img.RGBAAt(60, 60))
	assert.Equal(t, BoxColor, img.RGBAAt(40, 80))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(40, 60))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(22, 60))
}

func TestAnnotate_ClipsOutOfBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	d := domain.Detection{Box: domain.BoundingBox{X1: -5, Y1: -5, X2: 50, Y2: 50}}

	assert.NotPanics(t, func() {
		Annotate(img, []domain.Detection{d}, nil)
	})
}
