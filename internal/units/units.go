// Package units provides the angle, plate-scale and wavelength quantities
// used to describe instrument configurations and telescope offsets.
package units

import (
	"math"
	"strconv"
)

// Angle is an angular quantity stored in arcseconds.
type Angle float64

const (
	arcsecPerArcmin = 60.0
	arcsecPerDegree = 3600.0
)

// Arcsec returns an Angle of v arcseconds.
func Arcsec(v float64) Angle {
	return Angle(v)
}

// Arcmin returns an Angle of v arcminutes.
func Arcmin(v float64) Angle {
	return Angle(v * arcsecPerArcmin)
}

// Degrees returns an Angle of v degrees.
func Degrees(v float64) Angle {
	return Angle(v * arcsecPerDegree)
}

// Arcsec returns the angle in arcseconds.
func (a Angle) Arcsec() float64 {
	return float64(a)
}

// Degrees returns the angle in degrees.
func (a Angle) Degrees() float64 {
	return float64(a) / arcsecPerDegree
}

// Radians returns the angle in radians.
func (a Angle) Radians() float64 {
	return a.Degrees() * math.Pi / 180
}

// Add returns a + b.
func (a Angle) Add(b Angle) Angle {
	return a + b
}

// Sub returns a - b.
func (a Angle) Sub(b Angle) Angle {
	return a - b
}

// Mul returns the angle scaled by f.
func (a Angle) Mul(f float64) Angle {
	return Angle(float64(a) * f)
}

// Neg returns -a.
func (a Angle) Neg() Angle {
	return -a
}

// Format renders the angle in arcseconds with prec decimals, e.g. "1.25 arcsec".
func (a Angle) Format(prec int) string {
	return strconv.FormatFloat(a.Arcsec(), 'f', prec, 64) + " arcsec"
}

// String renders the angle with the shortest exact representation.
func (a Angle) String() string {
	return a.Format(-1)
}

// PixelScale is a plate scale in arcseconds per pixel.
type PixelScale float64

// ArcsecPerPixel returns a PixelScale of v arcsec/pixel.
func ArcsecPerPixel(v float64) PixelScale {
	return PixelScale(v)
}

// Valid reports whether the scale can be used for conversions.
func (s PixelScale) Valid() bool {
	return s > 0 && !math.IsInf(float64(s), 0) && !math.IsNaN(float64(s))
}

// Pixels converts an angle to pixels at this scale.
func (s PixelScale) Pixels(a Angle) float64 {
	return a.Arcsec() / float64(s)
}

// Angle converts a pixel distance to an angle at this scale.
func (s PixelScale) Angle(px float64) Angle {
	return Angle(px * float64(s))
}

// String renders the scale, e.g. "0.1798 arcsec / pix".
func (s PixelScale) String() string {
	return strconv.FormatFloat(float64(s), 'f', -1, 64) + " arcsec / pix"
}

// Wavelength is a wavelength in Angstrom.
type Wavelength float64

// Angstrom returns a Wavelength of v Angstrom.
func Angstrom(v float64) Wavelength {
	return Wavelength(v)
}

// Angstrom returns the wavelength in Angstrom.
func (w Wavelength) Angstrom() float64 {
	return float64(w)
}

// Sub returns w - o.
func (w Wavelength) Sub(o Wavelength) Wavelength {
	return w - o
}

// Format renders the wavelength with prec decimals, e.g. "4800 Angstrom".
func (w Wavelength) Format(prec int) string {
	return strconv.FormatFloat(float64(w), 'f', prec, 64) + " Angstrom"
}

// String renders the wavelength rounded to whole Angstrom.
func (w Wavelength) String() string {
	return w.Format(0)
}
