// Package offset models telescope offsets, the instrument frames they are
// expressed in, and the dither patterns built from them.
package offset

import (
	"fmt"
	"math"

	"github.com/litescript/odl/internal/units"
)

// InstrumentFrame is a reference frame with a plate scale and a rotation
// relative to the sky. Frames are immutable and shared by reference.
type InstrumentFrame struct {
	name        string
	scale       units.PixelScale
	offsetAngle units.Angle
}

// NewInstrumentFrame creates a frame. A zero scale is allowed at construction
// but makes the frame unusable for conversions.
func NewInstrumentFrame(name string, scale units.PixelScale, offsetAngle units.Angle) *InstrumentFrame {
	return &InstrumentFrame{
		name:        name,
		scale:       scale,
		offsetAngle: offsetAngle,
	}
}

// SkyFrame is the unrotated sky reference with unit scale.
var SkyFrame = NewInstrumentFrame("Sky", units.ArcsecPerPixel(1), 0)

// Name returns the frame name.
func (f *InstrumentFrame) Name() string {
	if f == nil {
		return ""
	}
	return f.name
}

// Scale returns the frame's plate scale.
func (f *InstrumentFrame) Scale() units.PixelScale {
	return f.scale
}

// OffsetAngle returns the frame's rotation relative to the sky.
func (f *InstrumentFrame) OffsetAngle() units.Angle {
	return f.offsetAngle
}

// String implements fmt.Stringer.
func (f *InstrumentFrame) String() string {
	if f == nil {
		return "<nil frame>"
	}
	return fmt.Sprintf("%s (%s)", f.name, f.scale)
}

// FrameConversionError reports an offset that cannot be moved between frames.
type FrameConversionError struct {
	Frame  string
	Reason string
}

func (e *FrameConversionError) Error() string {
	if e.Frame == "" {
		return "frame conversion: " + e.Reason
	}
	return fmt.Sprintf("frame conversion (%s): %s", e.Frame, e.Reason)
}

func checkConvertible(f *InstrumentFrame, role string) error {
	if f == nil {
		return &FrameConversionError{Reason: role + " frame is not set"}
	}
	if !f.scale.Valid() {
		return &FrameConversionError{Frame: f.name, Reason: role + " frame has no scale"}
	}
	return nil
}

// rotate turns (x, y) counter-clockwise by theta radians.
func rotate(x, y, theta float64) (float64, float64) {
	cosT := math.Cos(theta)
	sinT := math.Sin(theta)
	return x*cosT - y*sinT, x*sinT + y*cosT
}
