// Package recipe reads YAML observation recipes and builds the observing
// blocks they describe.
package recipe

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/litescript/odl/internal/block"
	"github.com/litescript/odl/internal/target"
	"github.com/litescript/odl/internal/units"
)

// Pattern types.
const (
	PatternStare    = "stare"
	PatternABBA     = "abba"
	PatternLong2Pos = "long2pos"
)

// DefaultNodOffset is the ABBA nod in arcseconds when a recipe gives none.
const DefaultNodOffset = 1.25

// maxExptime bounds exposure times, in seconds, to what a time.Duration holds.
const maxExptime = math.MaxInt64 / 1e9

// Recipe is a decoded recipe file.
type Recipe struct {
	Instrument string      `yaml:"instrument"`
	Cals       bool        `yaml:"cals,omitempty"`
	Blocks     []BlockSpec `yaml:"blocks,omitempty"`
}

// BlockSpec describes one science block. Config is decoded by the
// instrument named in the recipe.
type BlockSpec struct {
	Target   *TargetSpec  `yaml:"target,omitempty"`
	Pattern  PatternSpec  `yaml:"pattern"`
	Detector DetectorSpec `yaml:"detector"`
	Config   yaml.Node    `yaml:"config,omitempty"`
	Repeat   int          `yaml:"repeat,omitempty"`
}

// TargetSpec is a sidereal target in degrees.
type TargetSpec struct {
	Name string  `yaml:"name"`
	RA   float64 `yaml:"ra"`
	Dec  float64 `yaml:"dec"`
}

// PatternSpec selects an offset pattern. Offset is in arcseconds and
// defaults to DefaultNodOffset. Guide defaults to true.
type PatternSpec struct {
	Type   string   `yaml:"type"`
	Offset *float64 `yaml:"offset,omitempty"`
	Guide  *bool    `yaml:"guide,omitempty"`
	Repeat int      `yaml:"repeat,omitempty"`
}

// DetectorSpec carries the detector fields of every instrument. Each
// instrument reads the ones it understands.
type DetectorSpec struct {
	Exptime     float64 `yaml:"exptime"`
	ReadoutMode string  `yaml:"readoutmode,omitempty"`
	Coadds      int     `yaml:"coadds,omitempty"`
	Nexp        int     `yaml:"nexp,omitempty"`

	// KCWI
	Arm     string   `yaml:"arm,omitempty"` // blue or red
	AmpMode *int     `yaml:"ampmode,omitempty"`
	Binning string   `yaml:"binning,omitempty"`
	Window  string   `yaml:"window,omitempty"`
	Gain    *float64 `yaml:"gain,omitempty"`
	Dark    bool     `yaml:"dark,omitempty"`

	// NIRES
	Camera string `yaml:"camera,omitempty"` // spec or scam
}

// CalOptions selects calibration groups. Instruments without a group ignore
// its flag.
type CalOptions struct {
	Internal  bool
	DomeFlats bool
}

// DefaultCalOptions enables every calibration group.
func DefaultCalOptions() CalOptions {
	return CalOptions{Internal: true, DomeFlats: true}
}

// Parse decodes and validates a recipe.
func Parse(input []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.Unmarshal(input, &r); err != nil {
		return nil, fmt.Errorf("decode recipe: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Load reads and parses a recipe file.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	return Parse(data)
}

// Validate checks the recipe's structure. Detector and instrument values
// are checked later by block validation.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Instrument) == "" {
		return errors.New("recipe.instrument is required")
	}
	inst, err := Lookup(r.Instrument)
	if err != nil {
		return err
	}
	if len(r.Blocks) == 0 && !r.Cals {
		return errors.New("recipe must define blocks or enable cals")
	}
	for i, b := range r.Blocks {
		prefix := fmt.Sprintf("recipe.blocks[%d]", i)
		if b.Target != nil && strings.TrimSpace(b.Target.Name) == "" {
			return fmt.Errorf("%s.target.name is required", prefix)
		}
		if b.Repeat < 0 {
			return fmt.Errorf("%s.repeat must be non-negative", prefix)
		}
		if b.Pattern.Repeat < 0 {
			return fmt.Errorf("%s.pattern.repeat must be non-negative", prefix)
		}
		if b.Detector.Exptime < 0 {
			return fmt.Errorf("%s.detector.exptime must be non-negative", prefix)
		}
		if b.Detector.Exptime >= maxExptime {
			return fmt.Errorf("%s.detector.exptime must be below %.0f seconds", prefix, maxExptime)
		}
		if b.Pattern.Offset != nil && !(*b.Pattern.Offset > 0) {
			return fmt.Errorf("%s.pattern.offset must be positive", prefix)
		}
		typ := b.Pattern.kind()
		if typ == "" {
			return fmt.Errorf("%s.pattern.type is required", prefix)
		}
		if !inst.SupportsPattern(typ) {
			return fmt.Errorf("%s.pattern.type unsupported for %s: %q", prefix, inst.Name(), b.Pattern.Type)
		}
	}
	return nil
}

// Build creates the recipe's science blocks in order, followed by the
// instrument's calibrations when enabled.
func (r *Recipe) Build(opts CalOptions) (*block.ObservingBlockList, error) {
	inst, err := Lookup(r.Instrument)
	if err != nil {
		return nil, err
	}

	list := block.NewObservingBlockList()
	var last BlockSpec
	for i, b := range r.Blocks {
		ob, err := buildBlock(inst, b)
		if err != nil {
			return nil, fmt.Errorf("recipe.blocks[%d]: %w", i, err)
		}
		list.Append(ob)
		last = b
	}

	if r.Cals {
		base, err := inst.Config(&last.Config, last.Detector)
		if err != nil {
			return nil, fmt.Errorf("cals config: %w", err)
		}
		cals, err := inst.Cals(base, opts)
		if err != nil {
			return nil, fmt.Errorf("cals: %w", err)
		}
		list.Extend(cals)
	}
	return list, nil
}

// BuildSequence builds the recipe and drops its targets.
func (r *Recipe) BuildSequence(opts CalOptions) (*block.Sequence, error) {
	list, err := r.Build(opts)
	if err != nil {
		return nil, err
	}
	return list.Sequence(), nil
}

func buildBlock(inst Instrument, b BlockSpec) (*block.ObservingBlock, error) {
	cfg, err := inst.Config(&b.Config, b.Detector)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	det, err := inst.Detector(b.Detector, cfg)
	if err != nil {
		return nil, fmt.Errorf("detector: %w", err)
	}
	pattern, err := inst.Pattern(b.Pattern, cfg)
	if err != nil {
		return nil, fmt.Errorf("pattern: %w", err)
	}

	var tgt target.Target
	if b.Target != nil {
		tgt = target.NewSkyTarget(b.Target.Name, b.Target.RA, b.Target.Dec)
	}
	repeat := b.Repeat
	if repeat == 0 {
		repeat = 1
	}
	return block.NewObservingBlock(tgt, pattern, det, cfg, repeat), nil
}

func (p PatternSpec) nod() units.Angle {
	if p.Offset == nil {
		return units.Arcsec(DefaultNodOffset)
	}
	return units.Arcsec(*p.Offset)
}

func (p PatternSpec) guide() bool {
	return p.Guide == nil || *p.Guide
}

func (p PatternSpec) kind() string {
	return strings.ToLower(strings.TrimSpace(p.Type))
}
