package config

import (
	"errors"
	"strconv"
	"time"
)

// VisibleDetectorConfig holds CCD detector settings.
type VisibleDetectorConfig struct {
	InstrumentName string
	ExposureTime   time.Duration
	ReadoutMode    int // CCD readout mode (ccdmode keyword)
	AmpMode        int
	Dark           bool
	Binning        string // "1x1" or "2x2"
	Window         *string
	Gain           float64
}

// Instrument implements DetectorConfig.
func (c *VisibleDetectorConfig) Instrument() string { return c.InstrumentName }

// Exptime implements DetectorConfig.
func (c *VisibleDetectorConfig) Exptime() time.Duration { return c.ExposureTime }

// Name returns e.g. "30s", "0s dark" or "6s 2x2".
func (c *VisibleDetectorConfig) Name() string {
	name := formatSeconds(c.ExposureTime)
	if c.Dark {
		name += " dark"
	}
	if c.Binning != "" && c.Binning != "1x1" {
		name += " " + c.Binning
	}
	return name
}

// Validate checks the exposure time. Range checks for readout mode, amp mode
// and gain are not defined for visible detectors.
func (c *VisibleDetectorConfig) Validate() error {
	return validateExptime(c.InstrumentName, c.ExposureTime)
}

// ToDict implements DetectorConfig.
func (c *VisibleDetectorConfig) ToDict() map[string]any {
	var window any
	if c.Window != nil {
		window = *c.Window
	}
	return map[string]any{
		"instrument":  c.InstrumentName,
		"name":        c.Name(),
		"exptime":     Seconds(c.ExposureTime),
		"readoutmode": c.ReadoutMode,
		"ampmode":     c.AmpMode,
		"dark":        c.Dark,
		"binning":     c.Binning,
		"window":      window,
		"gain":        c.Gain,
	}
}

// Clone returns a deep copy.
func (c *VisibleDetectorConfig) Clone() *VisibleDetectorConfig {
	out := *c
	if c.Window != nil {
		w := *c.Window
		out.Window = &w
	}
	return &out
}

// CloneDetector implements DetectorConfig.
func (c *VisibleDetectorConfig) CloneDetector() DetectorConfig { return c.Clone() }

// IRDetectorConfig holds infrared array settings.
type IRDetectorConfig struct {
	InstrumentName string
	ExposureTime   time.Duration
	ReadoutMode    string // "CDS" or "MCDSn"
	Coadds         int
	Nexp           int
}

// Instrument implements DetectorConfig.
func (c *IRDetectorConfig) Instrument() string { return c.InstrumentName }

// Exptime implements DetectorConfig.
func (c *IRDetectorConfig) Exptime() time.Duration { return c.ExposureTime }

// Name returns e.g. "120s MCDS16 x1".
func (c *IRDetectorConfig) Name() string {
	return formatSeconds(c.ExposureTime) + " " + c.ReadoutMode + " x" + strconv.Itoa(c.Coadds)
}

// Validate checks the readout-mode grammar, coadds, nexp and exposure time.
func (c *IRDetectorConfig) Validate() error {
	if _, err := ParseReadoutMode(c.ReadoutMode); err != nil {
		var dce *DetectorConfigError
		if errors.As(err, &dce) {
			dce.Instrument = c.InstrumentName
		}
		return err
	}
	if c.Coadds < 1 {
		return &DetectorConfigError{
			Instrument: c.InstrumentName,
			Field:      "coadds",
			Value:      c.Coadds,
			Reason:     "must be >= 1",
		}
	}
	if c.Nexp < 1 {
		return &DetectorConfigError{
			Instrument: c.InstrumentName,
			Field:      "nexp",
			Value:      c.Nexp,
			Reason:     "must be >= 1",
		}
	}
	return validateExptime(c.InstrumentName, c.ExposureTime)
}

// ToDict implements DetectorConfig.
func (c *IRDetectorConfig) ToDict() map[string]any {
	return map[string]any{
		"instrument":  c.InstrumentName,
		"name":        c.Name(),
		"exptime":     Seconds(c.ExposureTime),
		"readoutmode": c.ReadoutMode,
		"coadds":      c.Coadds,
		"nexp":        c.Nexp,
	}
}

// Clone returns a copy.
func (c *IRDetectorConfig) Clone() *IRDetectorConfig {
	out := *c
	return &out
}

// CloneDetector implements DetectorConfig.
func (c *IRDetectorConfig) CloneDetector() DetectorConfig { return c.Clone() }

func validateExptime(instrument string, d time.Duration) error {
	if d < 0 {
		return &DetectorConfigError{
			Instrument: instrument,
			Field:      "exptime",
			Value:      Seconds(d),
			Reason:     "must be >= 0 seconds",
		}
	}
	return nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}
