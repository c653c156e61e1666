package kcwi

import (
	"strconv"
	"time"

	"github.com/litescript/odl/internal/block"
	"github.com/litescript/odl/internal/config"
	"github.com/litescript/odl/internal/offset"
	"github.com/litescript/odl/internal/target"
	"github.com/litescript/odl/internal/units"
)

// Calibration object positions.
const (
	CalObjDark     = "Dark"
	CalObjFlatA    = "FlatA"
	CalObjMedBarsA = "MedBarsA"
)

// pwaveOffset is the default distance of the peak wavelength below cwave.
const pwaveOffset = 300

// Arm holds the settings of one spectrograph arm.
type Arm struct {
	Grating   string
	Filter    string
	Cwave     units.Wavelength
	Pwave     units.Wavelength
	NandSMask bool
	Focus     *float64

	pwaveSet bool
}

// Config is the combined KCWI blue+red configuration.
type Config struct {
	Slicer    string
	Polarizer string
	Blue      Arm
	Red       Arm

	CalMirror    string
	CalObj       string
	ArcLamp      string // empty when no arc lamp is on
	DomeFlatLamp config.DomeLamp
}

// Option adjusts a Config under construction.
type Option func(*Config)

// WithSlicer selects "small", "medium" or "large".
func WithSlicer(s string) Option { return func(c *Config) { c.Slicer = s } }

// WithPolarizer sets the polarizer position.
func WithPolarizer(p string) Option { return func(c *Config) { c.Polarizer = p } }

// WithBlueGrating sets the blue grating.
func WithBlueGrating(g string) Option { return func(c *Config) { c.Blue.Grating = g } }

// WithBlueFilter sets the blue filter.
func WithBlueFilter(f string) Option { return func(c *Config) { c.Blue.Filter = f } }

// WithBlueCwave sets the blue central wavelength in Angstrom.
func WithBlueCwave(a float64) Option { return func(c *Config) { c.Blue.Cwave = units.Angstrom(a) } }

// WithBluePwave sets the blue peak wavelength in Angstrom.
func WithBluePwave(a float64) Option {
	return func(c *Config) { c.Blue.Pwave, c.Blue.pwaveSet = units.Angstrom(a), true }
}

// WithBlueNandSMask inserts the blue nod-and-shuffle mask.
func WithBlueNandSMask(on bool) Option { return func(c *Config) { c.Blue.NandSMask = on } }

// WithBlueFocus sets the blue focus.
func WithBlueFocus(f float64) Option { return func(c *Config) { c.Blue.Focus = &f } }

// WithRedGrating sets the red grating.
func WithRedGrating(g string) Option { return func(c *Config) { c.Red.Grating = g } }

// WithRedFilter sets the red filter.
func WithRedFilter(f string) Option { return func(c *Config) { c.Red.Filter = f } }

// WithRedCwave sets the red central wavelength in Angstrom.
func WithRedCwave(a float64) Option { return func(c *Config) { c.Red.Cwave = units.Angstrom(a) } }

// WithRedPwave sets the red peak wavelength in Angstrom.
func WithRedPwave(a float64) Option {
	return func(c *Config) { c.Red.Pwave, c.Red.pwaveSet = units.Angstrom(a), true }
}

// WithRedNandSMask inserts the red nod-and-shuffle mask.
func WithRedNandSMask(on bool) Option { return func(c *Config) { c.Red.NandSMask = on } }

// WithRedFocus sets the red focus.
func WithRedFocus(f float64) Option { return func(c *Config) { c.Red.Focus = &f } }

// WithCalMirror sets the calibration mirror position.
func WithCalMirror(m string) Option { return func(c *Config) { c.CalMirror = m } }

// WithCalObj sets the calibration object.
func WithCalObj(o string) Option { return func(c *Config) { c.CalObj = o } }

// WithArcLamp turns on an arc lamp.
func WithArcLamp(l string) Option { return func(c *Config) { c.ArcLamp = l } }

// WithDomeFlatLamp commands the dome flat lamp.
func WithDomeFlatLamp(on bool) Option {
	return func(c *Config) { c.DomeFlatLamp = config.DomeLampFor(!on) }
}

// NewConfig creates a configuration. Peak wavelengths not given by an option
// default to 300 Angstrom below the central wavelength.
func NewConfig(opts ...Option) *Config {
	c := &Config{
		Slicer:    "medium",
		Polarizer: "Sky",
		Blue:      Arm{Grating: "BH3", Filter: "KBlue", Cwave: 4800},
		Red:       Arm{Grating: "BH3", Filter: "KRed", Cwave: 4800},
		CalMirror: "Sky",
		CalObj:    CalObjDark,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.Blue.pwaveSet {
		c.Blue.Pwave = c.Blue.Cwave.Sub(pwaveOffset)
	}
	if !c.Red.pwaveSet {
		c.Red.Pwave = c.Red.Cwave.Sub(pwaveOffset)
	}
	return c
}

// Instrument implements config.InstrumentConfig.
func (c *Config) Instrument() string { return "KCWIblue" }

// Name summarizes the primary settings and any calibration state, e.g.
// "medium BH3 4800 Angstrom calobj=FlatA arclamp=FEAR".
func (c *Config) Name() string {
	name := c.Slicer + " " + c.Blue.Grating + " " + c.Blue.Cwave.String()
	if c.CalObj != CalObjDark {
		name += " calobj=" + c.CalObj
	}
	if c.ArcLamp != "" {
		name += " arclamp=" + c.ArcLamp
	}
	if c.DomeFlatLamp.IsSet() {
		name += " domeflatlamp=" + strconv.FormatBool(c.DomeFlatLamp == config.DomeLampOn)
	}
	return name
}

// String implements fmt.Stringer.
func (c *Config) String() string { return c.Name() }

// Validate is reserved for KCWI configuration checks; none are defined yet.
func (c *Config) Validate() error { return nil }

// ToDict implements config.InstrumentConfig.
func (c *Config) ToDict() map[string]any {
	return map[string]any{
		"instrument": c.Instrument(),
		"name":       c.Name(),
		"slicer":     c.Slicer,

		"bluegrating":   c.Blue.Grating,
		"bluefilter":    c.Blue.Filter,
		"bluenandsmask": c.Blue.NandSMask,
		"bluefocus":     optionalFloat(c.Blue.Focus),
		"bluecwave":     c.Blue.Cwave.Angstrom(),
		"bluepwave":     c.Blue.Pwave.Angstrom(),

		"redgrating":   c.Red.Grating,
		"redfilter":    c.Red.Filter,
		"rednandsmask": c.Red.NandSMask,
		"redfocus":     optionalFloat(c.Red.Focus),
		"redcwave":     c.Red.Cwave.Angstrom(),
		"redpwave":     c.Red.Pwave.Angstrom(),

		"calmirror":    c.CalMirror,
		"calobj":       c.CalObj,
		"polarizer":    c.Polarizer,
		"arclamp":      config.OptionalString(c.ArcLamp),
		"domeflatlamp": c.DomeFlatLamp.Value(),
	}
}

// Clone returns an independent deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Blue.Focus = cloneFloat(c.Blue.Focus)
	out.Red.Focus = cloneFloat(c.Red.Focus)
	return &out
}

// CloneInstrument implements config.InstrumentConfig.
func (c *Config) CloneInstrument() config.InstrumentConfig { return c.Clone() }

// Arcs derives the configuration for arc-lamp exposures.
func (c *Config) Arcs(lamp string) *Config {
	arcs := c.Clone()
	arcs.ArcLamp = lamp
	arcs.CalObj = CalObjFlatA
	return arcs
}

// ContBars derives the continuum-bars configuration.
func (c *Config) ContBars() *Config {
	bars := c.Clone()
	bars.CalObj = CalObjMedBarsA
	bars.ArcLamp = "CONT"
	return bars
}

// DomeFlats derives the dome-flat configuration with the lamp on, or off
// when off is set.
func (c *Config) DomeFlats(off bool) *Config {
	flats := c.Clone()
	flats.DomeFlatLamp = config.DomeLampFor(off)
	return flats
}

// calStep is one entry of the standard calibration recipe.
type calStep struct {
	inst     *Config
	det      *BlueDetectorConfig
	repeat   int
	domeflat bool
}

// calSteps lists the standard recipe. Every derivation starts from c.
func (c *Config) calSteps(internal, domeflats bool) []calStep {
	det0Dark := NewBlueDetectorConfig(0, WithDark())
	det6 := NewBlueDetectorConfig(6 * time.Second)
	det30 := NewBlueDetectorConfig(30 * time.Second)
	det45 := NewBlueDetectorConfig(45 * time.Second)
	det100 := NewBlueDetectorConfig(100 * time.Second)

	var steps []calStep
	if internal {
		steps = append(steps,
			calStep{inst: c.ContBars(), det: det6, repeat: 1},
			calStep{inst: c.Arcs("FEAR"), det: det30, repeat: 1},
			calStep{inst: c.Arcs("THAR"), det: det45, repeat: 1},
			calStep{inst: c.Arcs("CONT"), det: det6, repeat: 6},
			calStep{inst: c.Clone(), det: det0Dark, repeat: 7},
		)
	}
	if domeflats {
		steps = append(steps, calStep{inst: c.DomeFlats(false), det: det100, repeat: 3, domeflat: true})
	}
	return steps
}

// Cals returns the standard calibration blocks: continuum bars, FEAR, THAR
// and CONT arcs, darks, and dome flats.
func (c *Config) Cals(internal, domeflats bool) *block.ObservingBlockList {
	cals := block.NewObservingBlockList()
	for _, s := range c.calSteps(internal, domeflats) {
		var tgt target.Target
		if s.domeflat {
			tgt = target.DomeFlats{}
		}
		cals.Append(block.NewObservingBlock(tgt, offset.Stare(1), s.det, s.inst, s.repeat))
	}
	return cals
}

// SeqCals returns the Cals recipe as a sequence without targets.
func (c *Config) SeqCals(internal, domeflats bool) *block.Sequence {
	cals := block.NewSequence()
	for _, s := range c.calSteps(internal, domeflats) {
		cals.Append(block.NewSequenceElement(offset.Stare(1), s.det, s.inst, s.repeat))
	}
	return cals
}

func optionalFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
