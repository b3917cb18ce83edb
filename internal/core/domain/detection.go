package domain

import (
	"image"
	"time"
)

// BoundingBox is an axis-aligned box in pixel coordinates (top-left, bottom-right).
type BoundingBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect returns the box as an image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Detection is a single detector hit on a frame.
type Detection struct {
	// ClassIndex is the model's class id.
	ClassIndex int `json:"class_id"`

	// Label is the class name reported by the detector, if any.
	Label string `json:"class"`

	// Confidence is in [0,1].
	Confidence float32 `json:"confidence"`

	// Box is the detection bounding box.
	Box BoundingBox `json:"bbox"`
}

// Frame is one image read from the camera.
type Frame struct {
	Image      image.Image
	Seq        uint64
	CapturedAt time.Time
}

// OutputCode is the single ASCII byte written to the actuator per frame.
type OutputCode byte

// Output codes understood by the sorter firmware.
const (
	CodeNone       OutputCode = '0'
	CodeOrganic    OutputCode = '1'
	CodeNonOrganic OutputCode = '2'
	CodeB3         OutputCode = '3'
)

// IsValid returns true for '0' through '3'.
func (c OutputCode) IsValid() bool {
	return c >= CodeNone && c <= CodeB3
}

// String returns the code as a one-character string.
func (c OutputCode) String() string {
	return string([]byte{byte(c)})
}

// Category returns the waste category signalled by the code.
// CodeNone has no category.
func (c OutputCode) Category() (Category, bool) {
	switch c {
	case CodeOrganic:
		return CategoryOrganic, true
	case CodeNonOrganic:
		return CategoryNonOrganic, true
	case CodeB3:
		return CategoryB3, true
	default:
		return "", false
	}
}

// CodeForClass maps a detector class index to its output code.
// Only classes 0, 1 and 2 are mapped.
func CodeForClass(classIndex int) (OutputCode, bool) {
	switch classIndex {
	case 0:
		return CodeOrganic, true
	case 1:
		return CodeNonOrganic, true
	case 2:
		return CodeB3, true
	default:
		return CodeNone, false
	}
}

// SelectionPolicy decides which detection drives the output code
// when a frame has more than one.
type SelectionPolicy string

// Available selection policies.
const (
	// SelectLast uses the last mapped detection in detector order.
	SelectLast SelectionPolicy = "last"

	// SelectConfidence uses the mapped detection with the highest confidence.
	// Ties keep the earlier detection.
	SelectConfidence SelectionPolicy = "confidence"
)

// IsValid returns true if the policy is recognised.
func (p SelectionPolicy) IsValid() bool {
	return p == SelectLast || p == SelectConfidence
}

// SelectCode reduces a frame's detections to one output code.
// Detections with unmapped classes never change the result.
// Zero detections yield CodeNone.
func SelectCode(dets []Detection, policy SelectionPolicy) OutputCode {
	code := CodeNone
	best := float32(-1)

	for _, d := range dets {
		mapped, ok := CodeForClass(d.ClassIndex)
		if !ok {
			continue
		}
		if policy == SelectConfidence {
			if d.Confidence > best {
				best = d.Confidence
				code = mapped
			}
			continue
		}
		code = mapped
	}

	return code
}
