package offset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/odl/internal/units"
)

func TestConvertTo(t *testing.T) {
	slit := NewInstrumentFrame("Slit", 0.2, 0)
	rotated := NewInstrumentFrame("Rotated", 0.2, units.Degrees(90))
	coarse := NewInstrumentFrame("Coarse", 0.4, 0)

	tests := []struct {
		name   string
		in     TelescopeOffset
		target *InstrumentFrame
		wantDx float64
		wantDy float64
	}{
		{
			name:   "same frame is identity",
			in:     TelescopeOffset{Dx: 1, Dy: 2, Frame: slit},
			target: slit,
			wantDx: 1,
			wantDy: 2,
		},
		{
			name:   "equal scale and angle is identity",
			in:     TelescopeOffset{Dx: 1, Dy: 2, Frame: slit},
			target: NewInstrumentFrame("Slit copy", 0.2, 0),
			wantDx: 1,
			wantDy: 2,
		},
		{
			name:   "quarter turn",
			in:     TelescopeOffset{Dx: 1, Dy: 0, Frame: slit},
			target: rotated,
			wantDx: 0,
			wantDy: 1,
		},
		{
			name:   "rescaled by target over source",
			in:     TelescopeOffset{Dx: 1, Dy: -3, Frame: slit},
			target: coarse,
			wantDx: 2,
			wantDy: -6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.ConvertTo(tt.target)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantDx, got.Dx.Arcsec(), 1e-9, "dx")
			assert.InDelta(t, tt.wantDy, got.Dy.Arcsec(), 1e-9, "dy")
			assert.Same(t, tt.target, got.Frame)
		})
	}
}

func TestConvertTo_PreservesLabels(t *testing.T) {
	a := NewInstrumentFrame("A", 0.1, 0)
	b := NewInstrumentFrame("B", 0.3, units.Degrees(10))
	in := TelescopeOffset{Dx: 1, PosName: "B", Guide: true, Frame: a}

	got, err := in.ConvertTo(b)
	require.NoError(t, err)
	assert.Equal(t, "B", got.PosName)
	assert.True(t, got.Guide)
}

func TestConvertTo_Errors(t *testing.T) {
	good := NewInstrumentFrame("Good", 0.2, 0)
	unscaled := NewInstrumentFrame("Unscaled", 0, 0)

	tests := []struct {
		name   string
		in     TelescopeOffset
		target *InstrumentFrame
	}{
		{"no source frame", TelescopeOffset{Dx: 1}, good},
		{"nil target", TelescopeOffset{Dx: 1, Frame: good}, nil},
		{"source lacks scale", TelescopeOffset{Dx: 1, Frame: unscaled}, good},
		{"target lacks scale", TelescopeOffset{Dx: 1, Frame: good}, unscaled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.ConvertTo(tt.target)
			var fce *FrameConversionError
			assert.ErrorAs(t, err, &fce)
		})
	}
}

func TestOffsetEqual(t *testing.T) {
	f := NewInstrumentFrame("F", 1, 0)
	a := TelescopeOffset{Dx: 1, Dy: 2, PosName: "A", Guide: true, Frame: f}
	b := a
	assert.True(t, a.Equal(b), "identical offsets should be equal")

	b.Frame = NewInstrumentFrame("F", 1, 0)
	assert.False(t, a.Equal(b), "offsets in distinct frames should not be equal")
}
