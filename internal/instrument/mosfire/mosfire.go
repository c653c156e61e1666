// Package mosfire describes the MOSFIRE multi-object infrared spectrograph:
// its frames, detector settings, configuration, calibration recipe and
// standard dither patterns.
package mosfire

import (
	"time"

	"github.com/litescript/odl/internal/block"
	"github.com/litescript/odl/internal/config"
	"github.com/litescript/odl/internal/offset"
	"github.com/litescript/odl/internal/target"
	"github.com/litescript/odl/internal/units"
)

const instrumentName = "MOSFIRE"

// Frames. The slit rotation is a placeholder of zero degrees.
var (
	Detector = offset.NewInstrumentFrame("MOSFIRE Detector", units.ArcsecPerPixel(0.1798), 0)
	Slit     = offset.NewInstrumentFrame("MOSFIRE Slit", units.ArcsecPerPixel(0.1798), units.Degrees(0))
)

// domeFlatExptime maps filters to dome-flat exposure times.
var domeFlatExptime = map[string]time.Duration{
	"Y": 17 * time.Second,
	"J": 11 * time.Second,
	"H": 11 * time.Second,
	"K": 11 * time.Second,
}

// DetectorConfig holds MOSFIRE detector settings.
type DetectorConfig struct {
	config.IRDetectorConfig
}

// NewDetectorConfig creates a detector config. readoutMode is "CDS" or
// "MCDSn"; it is checked by Validate, not here.
func NewDetectorConfig(exptime time.Duration, readoutMode string, coadds int) *DetectorConfig {
	return &DetectorConfig{config.IRDetectorConfig{
		InstrumentName: instrumentName,
		ExposureTime:   exptime,
		ReadoutMode:    readoutMode,
		Coadds:         coadds,
		Nexp:           1,
	}}
}

// CloneDetector implements config.DetectorConfig.
func (c *DetectorConfig) CloneDetector() config.DetectorConfig {
	return &DetectorConfig{*c.IRDetectorConfig.Clone()}
}

// Config is the MOSFIRE instrument configuration.
type Config struct {
	Mode         string // "spectroscopy" or "imaging"
	Filter       string // Y, J, H or K
	Mask         string
	ArcLamp      string
	DomeFlatLamp config.DomeLamp
}

// NewConfig creates a configuration; empty arguments take the defaults
// spectroscopy, Y and longslit_46x0.7.
func NewConfig(mode, filter, mask string) *Config {
	if mode == "" {
		mode = "spectroscopy"
	}
	if filter == "" {
		filter = "Y"
	}
	if mask == "" {
		mask = "longslit_46x0.7"
	}
	return &Config{Mode: mode, Filter: filter, Mask: mask}
}

// Instrument implements config.InstrumentConfig.
func (c *Config) Instrument() string { return instrumentName }

// Name returns e.g. "longslit_46x0.7 K-spectroscopy arclamp=Ne".
func (c *Config) Name() string {
	name := c.Mask + " " + c.Filter + "-" + c.Mode
	if c.ArcLamp != "" {
		name += " arclamp=" + c.ArcLamp
	}
	if c.DomeFlatLamp.IsSet() {
		name += " domelamp=" + c.DomeFlatLamp.String()
	}
	return name
}

// String implements fmt.Stringer.
func (c *Config) String() string { return c.Name() }

// Validate is reserved for MOSFIRE configuration checks; none are defined yet.
func (c *Config) Validate() error { return nil }

// ToDict implements config.InstrumentConfig.
func (c *Config) ToDict() map[string]any {
	return map[string]any{
		"instrument":   instrumentName,
		"name":         c.Name(),
		"mode":         c.Mode,
		"filter":       c.Filter,
		"mask":         c.Mask,
		"arclamp":      config.OptionalString(c.ArcLamp),
		"domeflatlamp": c.DomeFlatLamp.Value(),
	}
}

// Clone returns a copy.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// CloneInstrument implements config.InstrumentConfig.
func (c *Config) CloneInstrument() config.InstrumentConfig { return c.Clone() }

// Arcs derives the configuration with an arc lamp on.
func (c *Config) Arcs(lamp string) *Config {
	arcs := c.Clone()
	arcs.ArcLamp = lamp
	return arcs
}

// DomeFlats derives the configuration with the dome lamp on, or off.
func (c *Config) DomeFlats(off bool) *Config {
	flats := c.Clone()
	flats.DomeFlatLamp = config.DomeLampFor(off)
	return flats
}

// ArcsBlock returns two 1s CDS arc exposures with lamp on.
func (c *Config) ArcsBlock(lamp string) *block.ObservingBlock {
	return block.NewObservingBlock(nil, offset.Stare(2),
		NewDetectorConfig(time.Second, "CDS", 1), c.Arcs(lamp), 1)
}

// DomeFlatsBlock returns seven dome-flat exposures, timed for the filter.
func (c *Config) DomeFlatsBlock(off bool) (*block.ObservingBlock, error) {
	exptime, ok := domeFlatExptime[c.Filter]
	if !ok {
		return nil, &config.InstrumentConfigError{
			Instrument: instrumentName,
			Field:      "filter",
			Value:      c.Filter,
			Reason:     "no dome flat exposure time (expected Y, J, H or K)",
		}
	}
	return block.NewObservingBlock(target.DomeFlats{}, offset.Stare(7),
		NewDetectorConfig(exptime, "CDS", 1), c.DomeFlats(off), 1), nil
}

// Cals returns dome flats, plus lamp-off flats and Ne and Ar arcs in K band.
func (c *Config) Cals() (*block.ObservingBlockList, error) {
	on, err := c.DomeFlatsBlock(false)
	if err != nil {
		return nil, err
	}
	cals := block.NewObservingBlockList(on)
	if c.Filter == "K" {
		off, err := c.DomeFlatsBlock(true)
		if err != nil {
			return nil, err
		}
		cals.Append(off, c.ArcsBlock("Ne"), c.ArcsBlock("Ar"))
	}
	return cals, nil
}

// ABBA is the standard slit nod along the slit.
func ABBA(off units.Angle, guide bool, repeat int) *offset.OffsetPattern {
	return offset.ABBA(off, guide, repeat, Slit)
}

// Long2Pos is the long2pos four-position pattern in the detector frame.
func Long2Pos(guide bool, repeat int) *offset.OffsetPattern {
	offs := []offset.TelescopeOffset{
		{Dx: units.Arcsec(45), Dy: units.Arcsec(-23), PosName: "A", Guide: guide, Frame: Detector},
		{Dx: units.Arcsec(45), Dy: units.Arcsec(-9), PosName: "B", Guide: guide, Frame: Detector},
		{Dx: units.Arcsec(-45), Dy: units.Arcsec(9), PosName: "A", Guide: guide, Frame: Detector},
		{Dx: units.Arcsec(-45), Dy: units.Arcsec(23), PosName: "B", Guide: guide, Frame: Detector},
	}
	if repeat < 1 {
		repeat = 1
	}
	p, err := offset.NewOffsetPattern(offs, repeat, "long2pos")
	if err != nil {
		panic(err)
	}
	return p
}
