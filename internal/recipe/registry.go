package recipe

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/litescript/odl/internal/block"
	"github.com/litescript/odl/internal/config"
	"github.com/litescript/odl/internal/instrument/kcwi"
	"github.com/litescript/odl/internal/instrument/mosfire"
	"github.com/litescript/odl/internal/instrument/nires"
	"github.com/litescript/odl/internal/offset"
)

// Instrument turns recipe fields into one instrument's configs.
type Instrument interface {
	Name() string
	SupportsPattern(kind string) bool

	// Config decodes a block's config node. An empty node yields defaults.
	Config(node *yaml.Node, det DetectorSpec) (config.InstrumentConfig, error)
	Detector(spec DetectorSpec, inst config.InstrumentConfig) (config.DetectorConfig, error)
	Pattern(spec PatternSpec, inst config.InstrumentConfig) (*offset.OffsetPattern, error)
	Cals(inst config.InstrumentConfig, opts CalOptions) (*block.ObservingBlockList, error)
}

var registry = map[string]Instrument{
	"kcwi":    kcwiInstrument{},
	"mosfire": mosfireInstrument{},
	"nires":   niresInstrument{},
}

// Lookup returns the registered instrument, ignoring case.
func Lookup(name string) (Instrument, error) {
	inst, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown instrument %q (known: %s)", name, strings.Join(Instruments(), ", "))
	}
	return inst, nil
}

// Instruments lists the registered instrument names in sorted order.
func Instruments() []string {
	return slices.Sorted(maps.Keys(registry))
}

// Cals builds the default calibration blocks of an instrument.
func Cals(name string, opts CalOptions) (*block.ObservingBlockList, error) {
	inst, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	cfg, err := inst.Config(nil, DetectorSpec{})
	if err != nil {
		return nil, err
	}
	return inst.Cals(cfg, opts)
}

func decodeNode(node *yaml.Node, out any) error {
	if node == nil || node.Kind == 0 {
		return nil
	}
	return node.Decode(out)
}

func wrongConfig(want string, got config.InstrumentConfig) error {
	return &config.InstrumentConfigError{
		Instrument: want,
		Field:      "config",
		Value:      fmt.Sprintf("%T", got),
		Reason:     "not a " + want + " configuration",
	}
}

func readoutOrDefault(mode string) string {
	if mode == "" {
		return "CDS"
	}
	return mode
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

type kcwiArmSpec struct {
	Grating   string   `yaml:"grating"`
	Filter    string   `yaml:"filter"`
	Cwave     float64  `yaml:"cwave"`
	Pwave     *float64 `yaml:"pwave"`
	NandSMask bool     `yaml:"nandsmask"`
	Focus     *float64 `yaml:"focus"`
}

type kcwiConfigSpec struct {
	Slicer    string       `yaml:"slicer"`
	Polarizer string       `yaml:"polarizer"`
	Blue      *kcwiArmSpec `yaml:"blue"`
	Red       *kcwiArmSpec `yaml:"red"`
	CalMirror string       `yaml:"calmirror"`
	CalObj    string       `yaml:"calobj"`
}

type kcwiInstrument struct{}

func (kcwiInstrument) Name() string { return "KCWI" }

func (kcwiInstrument) SupportsPattern(kind string) bool {
	return kind == PatternStare || kind == PatternABBA
}

func (kcwiInstrument) Config(node *yaml.Node, _ DetectorSpec) (config.InstrumentConfig, error) {
	var spec kcwiConfigSpec
	if err := decodeNode(node, &spec); err != nil {
		return nil, fmt.Errorf("decode kcwi config: %w", err)
	}

	var opts []kcwi.Option
	if spec.Slicer != "" {
		if kcwi.SlicerFrame(spec.Slicer) == nil {
			return nil, &config.InstrumentConfigError{
				Instrument: "KCWIblue", Field: "slicer", Value: spec.Slicer,
				Reason: "must be small, medium or large",
			}
		}
		opts = append(opts, kcwi.WithSlicer(spec.Slicer))
	}
	if spec.Polarizer != "" {
		opts = append(opts, kcwi.WithPolarizer(spec.Polarizer))
	}
	if spec.CalMirror != "" {
		opts = append(opts, kcwi.WithCalMirror(spec.CalMirror))
	}
	if spec.CalObj != "" {
		opts = append(opts, kcwi.WithCalObj(spec.CalObj))
	}
	if a := spec.Blue; a != nil {
		opts = append(opts, armOptions(a,
			kcwi.WithBlueGrating, kcwi.WithBlueFilter, kcwi.WithBlueCwave,
			kcwi.WithBluePwave, kcwi.WithBlueNandSMask, kcwi.WithBlueFocus)...)
	}
	if a := spec.Red; a != nil {
		opts = append(opts, armOptions(a,
			kcwi.WithRedGrating, kcwi.WithRedFilter, kcwi.WithRedCwave,
			kcwi.WithRedPwave, kcwi.WithRedNandSMask, kcwi.WithRedFocus)...)
	}
	return kcwi.NewConfig(opts...), nil
}

func armOptions(a *kcwiArmSpec,
	grating, filter func(string) kcwi.Option,
	cwave, pwave func(float64) kcwi.Option,
	nands func(bool) kcwi.Option,
	focus func(float64) kcwi.Option,
) []kcwi.Option {
	var opts []kcwi.Option
	if a.Grating != "" {
		opts = append(opts, grating(a.Grating))
	}
	if a.Filter != "" {
		opts = append(opts, filter(a.Filter))
	}
	if a.Cwave != 0 {
		opts = append(opts, cwave(a.Cwave))
	}
	if a.Pwave != nil {
		opts = append(opts, pwave(*a.Pwave))
	}
	if a.NandSMask {
		opts = append(opts, nands(true))
	}
	if a.Focus != nil {
		opts = append(opts, focus(*a.Focus))
	}
	return opts
}

func (kcwiInstrument) Detector(spec DetectorSpec, _ config.InstrumentConfig) (config.DetectorConfig, error) {
	var opts []kcwi.DetectorOption
	if spec.ReadoutMode != "" {
		mode, err := strconv.Atoi(spec.ReadoutMode)
		if err != nil {
			return nil, &config.DetectorConfigError{
				Instrument: "KCWI", Field: "readoutmode", Value: spec.ReadoutMode,
				Reason: "must be an integer CCD readout mode",
			}
		}
		opts = append(opts, kcwi.WithReadoutMode(mode))
	}
	if spec.AmpMode != nil {
		opts = append(opts, kcwi.WithAmpMode(*spec.AmpMode))
	}
	if spec.Binning != "" {
		opts = append(opts, kcwi.WithBinning(spec.Binning))
	}
	if spec.Window != "" {
		opts = append(opts, kcwi.WithWindow(spec.Window))
	}
	if spec.Gain != nil {
		opts = append(opts, kcwi.WithGain(*spec.Gain))
	}
	if spec.Dark {
		opts = append(opts, kcwi.WithDark())
	}

	exptime := config.ExposureTime(spec.Exptime)
	switch strings.ToLower(spec.Arm) {
	case "", "blue":
		return kcwi.NewBlueDetectorConfig(exptime, opts...), nil
	case "red":
		return kcwi.NewRedDetectorConfig(exptime, opts...), nil
	default:
		return nil, &config.DetectorConfigError{
			Instrument: "KCWI", Field: "arm", Value: spec.Arm,
			Reason: "must be blue or red",
		}
	}
}

func (kcwiInstrument) Pattern(spec PatternSpec, inst config.InstrumentConfig) (*offset.OffsetPattern, error) {
	c, ok := inst.(*kcwi.Config)
	if !ok {
		return nil, wrongConfig("KCWI", inst)
	}
	switch spec.kind() {
	case PatternStare:
		return offset.Stare(spec.Repeat), nil
	case PatternABBA:
		return offset.ABBA(spec.nod(), spec.guide(), spec.Repeat, kcwi.SlicerFrame(c.Slicer)), nil
	}
	return nil, fmt.Errorf("unsupported pattern type %q", spec.Type)
}

func (kcwiInstrument) Cals(inst config.InstrumentConfig, opts CalOptions) (*block.ObservingBlockList, error) {
	c, ok := inst.(*kcwi.Config)
	if !ok {
		return nil, wrongConfig("KCWI", inst)
	}
	return c.Cals(opts.Internal, opts.DomeFlats), nil
}

type mosfireConfigSpec struct {
	Mode   string `yaml:"mode"`
	Filter string `yaml:"filter"`
	Mask   string `yaml:"mask"`
}

type mosfireInstrument struct{}

func (mosfireInstrument) Name() string { return "MOSFIRE" }

func (mosfireInstrument) SupportsPattern(kind string) bool {
	switch kind {
	case PatternStare, PatternABBA, PatternLong2Pos:
		return true
	}
	return false
}

func (mosfireInstrument) Config(node *yaml.Node, _ DetectorSpec) (config.InstrumentConfig, error) {
	var spec mosfireConfigSpec
	if err := decodeNode(node, &spec); err != nil {
		return nil, fmt.Errorf("decode mosfire config: %w", err)
	}
	return mosfire.NewConfig(spec.Mode, spec.Filter, spec.Mask), nil
}

func (mosfireInstrument) Detector(spec DetectorSpec, _ config.InstrumentConfig) (config.DetectorConfig, error) {
	det := mosfire.NewDetectorConfig(config.ExposureTime(spec.Exptime), readoutOrDefault(spec.ReadoutMode), atLeastOne(spec.Coadds))
	if spec.Nexp > 0 {
		det.Nexp = spec.Nexp
	}
	return det, nil
}

func (mosfireInstrument) Pattern(spec PatternSpec, _ config.InstrumentConfig) (*offset.OffsetPattern, error) {
	switch spec.kind() {
	case PatternStare:
		return offset.Stare(spec.Repeat), nil
	case PatternABBA:
		return mosfire.ABBA(spec.nod(), spec.guide(), spec.Repeat), nil
	case PatternLong2Pos:
		return mosfire.Long2Pos(spec.guide(), spec.Repeat), nil
	}
	return nil, fmt.Errorf("unsupported pattern type %q", spec.Type)
}

func (mosfireInstrument) Cals(inst config.InstrumentConfig, _ CalOptions) (*block.ObservingBlockList, error) {
	c, ok := inst.(*mosfire.Config)
	if !ok {
		return nil, wrongConfig("MOSFIRE", inst)
	}
	return c.Cals()
}

type niresInstrument struct{}

func (niresInstrument) Name() string { return "NIRES" }

func (niresInstrument) SupportsPattern(kind string) bool {
	return kind == PatternStare || kind == PatternABBA
}

// Config builds the NIRES configuration around the block's detector, which
// NIRES carries inside its instrument config.
func (niresInstrument) Config(_ *yaml.Node, spec DetectorSpec) (config.InstrumentConfig, error) {
	det, err := newNIRESDetector(spec)
	if err != nil {
		return nil, err
	}
	return nires.NewConfig(det), nil
}

func newNIRESDetector(spec DetectorSpec) (config.DetectorConfig, error) {
	exptime := config.ExposureTime(spec.Exptime)
	mode := readoutOrDefault(spec.ReadoutMode)
	coadds, nexp := atLeastOne(spec.Coadds), atLeastOne(spec.Nexp)
	switch strings.ToLower(spec.Camera) {
	case "", "spec":
		return nires.NewSpecConfig(exptime, mode, coadds, nexp), nil
	case "scam":
		return nires.NewScamConfig(exptime, mode, coadds, nexp), nil
	}
	return nil, &config.DetectorConfigError{
		Instrument: "NIRES", Field: "camera", Value: spec.Camera,
		Reason: "must be spec or scam",
	}
}

// Detector returns a copy of the detector carried by the instrument config.
func (niresInstrument) Detector(spec DetectorSpec, inst config.InstrumentConfig) (config.DetectorConfig, error) {
	if c, ok := inst.(*nires.Config); ok && c.DetConfig != nil {
		return c.DetConfig.CloneDetector(), nil
	}
	return newNIRESDetector(spec)
}

func (niresInstrument) Pattern(spec PatternSpec, _ config.InstrumentConfig) (*offset.OffsetPattern, error) {
	switch spec.kind() {
	case PatternStare:
		return offset.Stare(spec.Repeat), nil
	case PatternABBA:
		return nires.ABBA(spec.nod(), spec.guide(), spec.Repeat), nil
	}
	return nil, fmt.Errorf("unsupported pattern type %q", spec.Type)
}

func (niresInstrument) Cals(inst config.InstrumentConfig, _ CalOptions) (*block.ObservingBlockList, error) {
	c, ok := inst.(*nires.Config)
	if !ok {
		return nil, wrongConfig("NIRES", inst)
	}
	return c.Cals(), nil
}
