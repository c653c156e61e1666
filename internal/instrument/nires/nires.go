// Package nires describes the NIRES near-infrared echellette spectrograph
// and its slit-viewing camera.
package nires

import (
	"time"

	"github.com/litescript/odl/internal/block"
	"github.com/litescript/odl/internal/config"
	"github.com/litescript/odl/internal/offset"
	"github.com/litescript/odl/internal/target"
	"github.com/litescript/odl/internal/units"
)

// Frames. The slit rotation is a placeholder of zero degrees.
var (
	Scam = offset.NewInstrumentFrame("NIRES Scam Detector", units.ArcsecPerPixel(0.123), 0)
	Slit = offset.NewInstrumentFrame("NIRES Slit", units.ArcsecPerPixel(0.15), units.Degrees(0))
)

const (
	arcExptime      = 120 * time.Second
	domeFlatExptime = 100 * time.Second
)

func newIR(instrument string, exptime time.Duration, readoutMode string, coadds, nexp int) config.IRDetectorConfig {
	return config.IRDetectorConfig{
		InstrumentName: instrument,
		ExposureTime:   exptime,
		ReadoutMode:    readoutMode,
		Coadds:         coadds,
		Nexp:           nexp,
	}
}

// SpecConfig holds the spectrograph detector settings.
type SpecConfig struct {
	config.IRDetectorConfig
}

// NewSpecConfig creates a spectrograph detector config.
func NewSpecConfig(exptime time.Duration, readoutMode string, coadds, nexp int) *SpecConfig {
	return &SpecConfig{newIR("NIRES Spec", exptime, readoutMode, coadds, nexp)}
}

// CloneDetector implements config.DetectorConfig.
func (c *SpecConfig) CloneDetector() config.DetectorConfig {
	return &SpecConfig{*c.IRDetectorConfig.Clone()}
}

// ScamConfig holds the slit-viewing camera detector settings.
type ScamConfig struct {
	config.IRDetectorConfig
}

// NewScamConfig creates a slit-viewing camera detector config.
func NewScamConfig(exptime time.Duration, readoutMode string, coadds, nexp int) *ScamConfig {
	return &ScamConfig{newIR("NIRES SCAM", exptime, readoutMode, coadds, nexp)}
}

// CloneDetector implements config.DetectorConfig.
func (c *ScamConfig) CloneDetector() config.DetectorConfig {
	return &ScamConfig{*c.IRDetectorConfig.Clone()}
}

// Config is the NIRES instrument configuration. Unlike the other
// instruments it carries its detector configuration.
type Config struct {
	DetConfig    config.DetectorConfig
	DomeFlatLamp config.DomeLamp
}

// NewConfig creates a configuration around det, which may be nil.
func NewConfig(det config.DetectorConfig) *Config {
	return &Config{DetConfig: det}
}

// Instrument implements config.InstrumentConfig.
func (c *Config) Instrument() string { return "NIRES" }

// Name returns e.g. "NIRES Instrument Config domelamp=on".
func (c *Config) Name() string {
	name := "NIRES Instrument Config"
	switch c.DomeFlatLamp {
	case config.DomeLampArcs:
		name += " arclamp"
	case config.DomeLampOn, config.DomeLampOff:
		name += " domelamp=" + c.DomeFlatLamp.String()
	}
	return name
}

// String implements fmt.Stringer.
func (c *Config) String() string { return c.Name() }

// Validate is reserved for NIRES configuration checks; none are defined yet.
func (c *Config) Validate() error { return nil }

// ToDict implements config.InstrumentConfig.
func (c *Config) ToDict() map[string]any {
	var det any
	if c.DetConfig != nil {
		det = c.DetConfig.Name()
	}
	return map[string]any{
		"instrument":   c.Instrument(),
		"name":         c.Name(),
		"detconfig":    det,
		"domeflatlamp": c.DomeFlatLamp.Value(),
	}
}

// Clone returns a deep copy, including the embedded detector config.
func (c *Config) Clone() *Config {
	out := *c
	if c.DetConfig != nil {
		out.DetConfig = c.DetConfig.CloneDetector()
	}
	return &out
}

// CloneInstrument implements config.InstrumentConfig.
func (c *Config) CloneInstrument() config.InstrumentConfig { return c.Clone() }

// Arcs derives the arc configuration: 120s CDS with the dome lamps set for
// arcs.
func (c *Config) Arcs() *Config {
	arcs := c.Clone()
	arcs.DetConfig = NewSpecConfig(arcExptime, "CDS", 1, 1)
	arcs.DomeFlatLamp = config.DomeLampArcs
	return arcs
}

// DomeFlats derives the dome-flat configuration: 100s CDS with the lamp on,
// or off.
func (c *Config) DomeFlats(off bool) *Config {
	flats := c.Clone()
	flats.DetConfig = NewSpecConfig(domeFlatExptime, "CDS", 1, 1)
	flats.DomeFlatLamp = config.DomeLampFor(off)
	return flats
}

// Cals returns nine dome flats followed by three arcs. Each block gets its
// own copy of the detector carried by its derived configuration.
func (c *Config) Cals() *block.ObservingBlockList {
	flats := c.DomeFlats(false)
	arcs := c.Arcs()
	return block.NewObservingBlockList(
		block.NewObservingBlock(target.DomeFlats{}, offset.Stare(9), flats.DetConfig.CloneDetector(), flats, 1),
		block.NewObservingBlock(nil, offset.Stare(3), arcs.DetConfig.CloneDetector(), arcs, 1),
	)
}

// ABBA is the standard nod along the slit.
func ABBA(off units.Angle, guide bool, repeat int) *offset.OffsetPattern {
	return offset.ABBA(off, guide, repeat, Slit)
}
