// Package target describes what an observing block points at.
package target

// Target is the observed object of an observing block.
type Target interface {
	// Name returns the display name.
	Name() string

	// ToDict returns a flat, serializable mapping.
	ToDict() map[string]any
}

// SkyTarget is a sidereal target with J2000 coordinates.
type SkyTarget struct {
	ObjectName string
	RAdeg      float64 // Right Ascension in degrees (0-360)
	DecDeg     float64 // Declination in degrees (-90 to +90)
	Epoch      float64 // equinox year, 2000 when unset
	PMRA       float64 // proper motion in RA, arcsec/yr
	PMDec      float64 // proper motion in Dec, arcsec/yr
}

// NewSkyTarget creates a J2000 target without proper motion.
func NewSkyTarget(name string, raDeg, decDeg float64) *SkyTarget {
	return &SkyTarget{
		ObjectName: name,
		RAdeg:      raDeg,
		DecDeg:     decDeg,
		Epoch:      2000,
	}
}

// Name implements Target.
func (t *SkyTarget) Name() string { return t.ObjectName }

// ToDict implements Target.
func (t *SkyTarget) ToDict() map[string]any {
	return map[string]any{
		"name":  t.ObjectName,
		"ra":    t.RAdeg,
		"dec":   t.DecDeg,
		"epoch": t.Epoch,
		"pmra":  t.PMRA,
		"pmdec": t.PMDec,
	}
}

// DomeFlats is the sentinel target for exposures of the illuminated dome
// screen. It carries no sky position.
type DomeFlats struct{}

// Name implements Target.
func (DomeFlats) Name() string { return "DomeFlats" }

// ToDict implements Target.
func (DomeFlats) ToDict() map[string]any {
	return map[string]any{"name": "DomeFlats"}
}

// IsDomeFlats reports whether t is the dome-flat sentinel.
func IsDomeFlats(t Target) bool {
	switch t.(type) {
	case DomeFlats, *DomeFlats:
		return true
	}
	return false
}

// NameOf returns the target's name, or "internal" for a nil target.
func NameOf(t Target) string {
	if t == nil {
		return "internal"
	}
	return t.Name()
}
