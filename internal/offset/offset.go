package offset

import (
	"fmt"

	"github.com/litescript/odl/internal/units"
)

// TelescopeOffset is a single dither position expressed in a frame.
type TelescopeOffset struct {
	Dx      units.Angle
	Dy      units.Angle
	PosName string // e.g. "A" or "B"
	Guide   bool   // guide-correct at this position
	Frame   *InstrumentFrame
}

// ConvertTo expresses the offset in another frame. The vector is rotated by
// the difference of the frames' offset angles, then rescaled by
// target.Scale / source.Scale.
func (o TelescopeOffset) ConvertTo(target *InstrumentFrame) (TelescopeOffset, error) {
	if err := checkConvertible(o.Frame, "source"); err != nil {
		return TelescopeOffset{}, err
	}
	if err := checkConvertible(target, "target"); err != nil {
		return TelescopeOffset{}, err
	}
	if o.Frame == target {
		return o, nil
	}

	theta := target.offsetAngle.Sub(o.Frame.offsetAngle).Radians()
	x, y := rotate(o.Dx.Arcsec(), o.Dy.Arcsec(), theta)
	ratio := float64(target.scale) / float64(o.Frame.scale)

	return TelescopeOffset{
		Dx:      units.Arcsec(x * ratio),
		Dy:      units.Arcsec(y * ratio),
		PosName: o.PosName,
		Guide:   o.Guide,
		Frame:   target,
	}, nil
}

// IsZero reports whether the offset has no displacement.
func (o TelescopeOffset) IsZero() bool {
	return o.Dx == 0 && o.Dy == 0
}

// Equal compares all fields. Frames compare by identity.
func (o TelescopeOffset) Equal(other TelescopeOffset) bool {
	return o.Dx == other.Dx &&
		o.Dy == other.Dy &&
		o.PosName == other.PosName &&
		o.Guide == other.Guide &&
		o.Frame == other.Frame
}

// String implements fmt.Stringer.
func (o TelescopeOffset) String() string {
	guide := "guided"
	if !o.Guide {
		guide = "unguided"
	}
	return fmt.Sprintf("%s (%s, %s) %s in %s",
		o.PosName, o.Dx.Format(2), o.Dy.Format(2), guide, o.Frame.Name())
}
