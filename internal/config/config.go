// Package config defines the capability interfaces shared by every
// instrument's detector and optical configuration, together with the base
// visible and infrared detector configurations they build on.
package config

import "time"

// DetectorConfig is implemented by each instrument's detector settings.
type DetectorConfig interface {
	// Instrument returns the detector's instrument name, e.g. "KCWIblue".
	Instrument() string

	// Name returns a human-readable summary computed from the fields.
	Name() string

	// Exptime returns the exposure time.
	Exptime() time.Duration

	// Validate returns a *DetectorConfigError when a field is outside its
	// accepted domain. It never mutates the receiver.
	Validate() error

	// ToDict returns a flat, serializable mapping with a fixed key set.
	ToDict() map[string]any

	// CloneDetector returns an independent deep copy.
	CloneDetector() DetectorConfig
}

// InstrumentConfig is implemented by each instrument's optical and
// calibration settings.
type InstrumentConfig interface {
	Instrument() string
	Name() string

	// Validate returns an *InstrumentConfigError describing the first
	// invalid field. It never mutates the receiver.
	Validate() error

	ToDict() map[string]any
	CloneInstrument() InstrumentConfig
}

// Seconds converts an exposure time to the float seconds used on export.
func Seconds(d time.Duration) float64 {
	return d.Seconds()
}

// ExposureTime builds a duration from seconds.
func ExposureTime(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
