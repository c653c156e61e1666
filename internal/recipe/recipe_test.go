package recipe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/odl/internal/config"
	"github.com/litescript/odl/internal/instrument/kcwi"
	"github.com/litescript/odl/internal/instrument/mosfire"
	"github.com/litescript/odl/internal/instrument/nires"
	"github.com/litescript/odl/internal/target"
)

const mosfireRecipe = `
instrument: mosfire
cals: true
blocks:
  - target: {name: M31, ra: 10.6847, dec: 41.2690}
    pattern: {type: abba, offset: 1.25, repeat: 2}
    detector: {exptime: 120, readoutmode: MCDS16, coadds: 1}
    config: {filter: K, mask: longslit_46x0.7, mode: spectroscopy}
    repeat: 1
  - target: {name: NGC 224 offset, ra: 10.70, dec: 41.30}
    pattern: {type: long2pos, guide: false}
    detector: {exptime: 60}
    config: {filter: K}
`

func TestParse_Mosfire(t *testing.T) {
	r, err := Parse([]byte(mosfireRecipe))
	require.NoError(t, err)

	assert.Equal(t, "mosfire", r.Instrument)
	assert.True(t, r.Cals)
	require.Len(t, r.Blocks, 2)
	assert.Equal(t, "M31", r.Blocks[0].Target.Name)
	require.NotNil(t, r.Blocks[0].Pattern.Offset)
	assert.Equal(t, 1.25, *r.Blocks[0].Pattern.Offset)
	assert.Nil(t, r.Blocks[1].Pattern.Offset)
	assert.Equal(t, "MCDS16", r.Blocks[0].Detector.ReadoutMode)
	assert.False(t, r.Blocks[1].Pattern.guide())
}

func TestBuild_Mosfire(t *testing.T) {
	r, err := Parse([]byte(mosfireRecipe))
	require.NoError(t, err)

	list, err := r.Build(DefaultCalOptions())
	require.NoError(t, err)
	require.Equal(t, 6, list.Len())

	sci := list.At(0)
	assert.Equal(t, "M31", target.NameOf(sci.Target))
	assert.Equal(t, "ABBA (1.25 arcsec)", sci.Pattern.Name())
	assert.Equal(t, 2, sci.Pattern.Repeat())
	assert.Equal(t, 120*time.Second, sci.DetConfig.Exptime())
	assert.Equal(t, "120s MCDS16 x1", sci.DetConfig.Name())
	assert.Equal(t, "longslit_46x0.7 K-spectroscopy", sci.InstConfig.Name())

	l2p := list.At(1)
	assert.Equal(t, "long2pos", l2p.Pattern.Name())
	assert.Equal(t, "60s CDS x1", l2p.DetConfig.Name())
	for _, o := range l2p.Pattern.Offsets() {
		assert.False(t, o.Guide)
		assert.Same(t, mosfire.Detector, o.Frame)
	}

	assert.True(t, target.IsDomeFlats(list.At(2).Target))
	assert.True(t, target.IsDomeFlats(list.At(3).Target))
	assert.Nil(t, list.At(4).Target)
	assert.Contains(t, list.At(4).InstConfig.Name(), "arclamp=Ne")
	assert.Contains(t, list.At(5).InstConfig.Name(), "arclamp=Ar")

	for i, b := range list.All() {
		assert.NoError(t, b.Validate(), "block %d", i)
	}
}

func TestBuild_KCWI(t *testing.T) {
	input := `
instrument: KCWI
cals: true
blocks:
  - target: {name: Q2343-BX610, ra: 356.539, dec: 12.822}
    pattern: {type: abba, offset: 2}
    detector: {exptime: 1200, binning: 2x2}
    config:
      slicer: large
      blue: {grating: BL, cwave: 4500}
`
	r, err := Parse([]byte(input))
	require.NoError(t, err)

	list, err := r.Build(CalOptions{Internal: false, DomeFlats: true})
	require.NoError(t, err)
	require.Equal(t, 2, list.Len())

	sci := list.At(0)
	cfg, ok := sci.InstConfig.(*kcwi.Config)
	require.True(t, ok)
	assert.Equal(t, "large", cfg.Slicer)
	assert.Equal(t, "BL", cfg.Blue.Grating)
	assert.Equal(t, 4200.0, cfg.Blue.Pwave.Angstrom())
	assert.Equal(t, "1200s 2x2", sci.DetConfig.Name())
	assert.Same(t, kcwi.LargeSlicer, sci.Pattern.Offsets()[0].Frame)

	flats := list.At(1)
	assert.True(t, target.IsDomeFlats(flats.Target))
	assert.Equal(t, "large", flats.InstConfig.(*kcwi.Config).Slicer)
}

func TestBuild_KCWIRedArm(t *testing.T) {
	input := `
instrument: kcwi
blocks:
  - pattern: {type: stare}
    detector: {exptime: 30, arm: red, readoutmode: "0", ampmode: 0}
`
	r, err := Parse([]byte(input))
	require.NoError(t, err)

	list, err := r.Build(DefaultCalOptions())
	require.NoError(t, err)
	require.Equal(t, 1, list.Len())

	det, ok := list.At(0).DetConfig.(*kcwi.RedDetectorConfig)
	require.True(t, ok)
	assert.Equal(t, "KCWIred", det.Instrument())
	assert.Equal(t, 0, det.ReadoutMode)
	assert.Equal(t, 0, det.AmpMode)
}

func TestBuild_NIRES(t *testing.T) {
	input := `
instrument: nires
cals: true
blocks:
  - target: {name: HD 12345, ra: 30.0, dec: -5.0}
    pattern: {type: abba, offset: 3}
    detector: {exptime: 300, readoutmode: MCDS16, camera: spec}
`
	r, err := Parse([]byte(input))
	require.NoError(t, err)

	list, err := r.Build(DefaultCalOptions())
	require.NoError(t, err)
	require.Equal(t, 3, list.Len())

	sci := list.At(0)
	cfg, ok := sci.InstConfig.(*nires.Config)
	require.True(t, ok)
	assert.NotSame(t, cfg.DetConfig, sci.DetConfig)
	assert.Equal(t, cfg.DetConfig.ToDict(), sci.DetConfig.ToDict())
	assert.Equal(t, "NIRES Spec", sci.DetConfig.Instrument())
	assert.Same(t, nires.Slit, sci.Pattern.Offsets()[0].Frame)

	assert.Equal(t, 9, list.At(1).Pattern.Len())
	assert.Equal(t, 3, list.At(2).Pattern.Len())
}

func TestBuild_DefaultNodOffset(t *testing.T) {
	for _, inst := range []string{"kcwi", "mosfire", "nires"} {
		t.Run(inst, func(t *testing.T) {
			r, err := Parse([]byte("instrument: " + inst + "\nblocks:\n  - pattern: {type: abba}\n    detector: {exptime: 60}"))
			require.NoError(t, err)

			list, err := r.Build(DefaultCalOptions())
			require.NoError(t, err)

			p := list.At(0).Pattern
			assert.Equal(t, "ABBA (1.25 arcsec)", p.Name())
			offsets := p.Offsets()
			require.Len(t, offsets, 4)
			for i, want := range []float64{1.25, -1.25, -1.25, 1.25} {
				assert.InDelta(t, want, offsets[i].Dy.Arcsec(), 1e-9, "offset %d", i)
			}
		})
	}
}

func TestBuild_KCWIExplicitZeroPwave(t *testing.T) {
	r, err := Parse([]byte("instrument: kcwi\nblocks:\n  - pattern: {type: stare}\n    config:\n      red: {cwave: 7000, pwave: 0}"))
	require.NoError(t, err)

	list, err := r.Build(DefaultCalOptions())
	require.NoError(t, err)

	cfg := list.At(0).InstConfig.(*kcwi.Config)
	assert.Equal(t, 0.0, cfg.Red.Pwave.Angstrom())
	assert.Equal(t, 4500.0, cfg.Blue.Pwave.Angstrom())
}

func TestBuildSequence(t *testing.T) {
	r, err := Parse([]byte(mosfireRecipe))
	require.NoError(t, err)

	seq, err := r.BuildSequence(DefaultCalOptions())
	require.NoError(t, err)

	list, err := r.Build(DefaultCalOptions())
	require.NoError(t, err)
	require.Equal(t, list.Len(), seq.Len())
	for i, e := range seq.All() {
		assert.Equal(t, list.At(i).Describe(), target.NameOf(list.At(i).Target)+" | "+e.Describe())
	}
}

func TestBuild_DetectorErrorsSurfaceAtValidation(t *testing.T) {
	input := `
instrument: mosfire
blocks:
  - pattern: {type: stare}
    detector: {exptime: 10, readoutmode: MCDS33}
`
	r, err := Parse([]byte(input))
	require.NoError(t, err)

	list, err := r.Build(DefaultCalOptions())
	require.NoError(t, err)

	var dce *config.DetectorConfigError
	require.True(t, errors.As(list.At(0).Validate(), &dce))
	assert.Equal(t, "readoutmode", dce.Field)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"bad yaml", "instrument: [", "decode recipe"},
		{"no instrument", "cals: true", "recipe.instrument is required"},
		{"unknown instrument", "instrument: hires\ncals: true", "unknown instrument"},
		{"empty", "instrument: nires", "must define blocks or enable cals"},
		{"no pattern", "instrument: nires\nblocks:\n  - detector: {exptime: 1}", "pattern.type is required"},
		{"unknown pattern", "instrument: nires\nblocks:\n  - pattern: {type: spiral}", "unsupported for NIRES"},
		{"long2pos off mosfire", "instrument: kcwi\nblocks:\n  - pattern: {type: long2pos}", "unsupported for KCWI"},
		{"negative exptime", "instrument: mosfire\nblocks:\n  - pattern: {type: stare}\n    detector: {exptime: -1}", "exptime must be non-negative"},
		{"negative repeat", "instrument: mosfire\nblocks:\n  - pattern: {type: stare}\n    repeat: -2", "repeat must be non-negative"},
		{"unnamed target", "instrument: mosfire\nblocks:\n  - target: {ra: 1}\n    pattern: {type: stare}", "target.name is required"},
		{"zero offset", "instrument: nires\nblocks:\n  - pattern: {type: abba, offset: 0}", "recipe.blocks[0].pattern.offset must be positive"},
		{"negative offset", "instrument: mosfire\nblocks:\n  - pattern: {type: abba, offset: -1.5}", "recipe.blocks[0].pattern.offset must be positive"},
		{"huge exptime", "instrument: mosfire\nblocks:\n  - pattern: {type: stare}\n    detector: {exptime: 1e10}", "recipe.blocks[0].detector.exptime must be below"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuild_InvalidInstrumentFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"kcwi slicer", "instrument: kcwi\nblocks:\n  - pattern: {type: stare}\n    config: {slicer: huge}"},
		{"kcwi arm", "instrument: kcwi\nblocks:\n  - pattern: {type: stare}\n    detector: {arm: green}"},
		{"kcwi readout", "instrument: kcwi\nblocks:\n  - pattern: {type: stare}\n    detector: {readoutmode: fast}"},
		{"nires camera", "instrument: nires\nblocks:\n  - pattern: {type: stare}\n    detector: {camera: guider}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			_, err = r.Build(DefaultCalOptions())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "recipe.blocks[0]")
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "night.yaml")
	require.NoError(t, os.WriteFile(path, []byte(mosfireRecipe), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, r.Blocks, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read recipe")
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"kcwi", "mosfire", "nires"}, Instruments())

	inst, err := Lookup(" MOSFIRE ")
	require.NoError(t, err)
	assert.Equal(t, "MOSFIRE", inst.Name())
	assert.True(t, inst.SupportsPattern(PatternLong2Pos))

	_, err = Lookup("lris")
	assert.ErrorContains(t, err, "kcwi, mosfire, nires")
}

func TestCals(t *testing.T) {
	tests := []struct {
		instrument string
		opts       CalOptions
		want       int
	}{
		{"kcwi", DefaultCalOptions(), 6},
		{"kcwi", CalOptions{Internal: true}, 5},
		{"kcwi", CalOptions{DomeFlats: true}, 1},
		{"mosfire", DefaultCalOptions(), 1},
		{"nires", CalOptions{}, 2},
	}
	for _, tt := range tests {
		cals, err := Cals(tt.instrument, tt.opts)
		require.NoError(t, err, tt.instrument)
		assert.Equal(t, tt.want, cals.Len(), "%s %+v", tt.instrument, tt.opts)
	}
}
