package offset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/odl/internal/units"
)

func collect(p *OffsetPattern) []TelescopeOffset {
	var out []TelescopeOffset
	for _, o := range p.Positions() {
		out = append(out, o)
	}
	return out
}

func TestABBA(t *testing.T) {
	slit := NewInstrumentFrame("Slit", 0.1798, 0)
	p := ABBA(units.Arcsec(1.25), true, 1, slit)

	got := collect(p)
	require.Len(t, got, 4)

	wantNames := []string{"A", "B", "B", "A"}
	wantDy := []float64{1.25, -1.25, -1.25, 1.25}
	for i, o := range got {
		assert.Equal(t, wantNames[i], o.PosName, "position %d", i)
		assert.Equal(t, wantDy[i], o.Dy.Arcsec(), "position %d dy", i)
		assert.Zero(t, o.Dx, "position %d dx", i)
		assert.Same(t, slit, o.Frame, "position %d frame", i)
	}

	assert.Equal(t, "ABBA (1.25 arcsec)", p.Name())
}

func TestABBA_Repeat(t *testing.T) {
	slit := NewInstrumentFrame("Slit", 0.1798, 0)
	once := collect(ABBA(units.Arcsec(1.25), true, 1, slit))
	twice := collect(ABBA(units.Arcsec(1.25), true, 2, slit))

	require.Len(t, twice, 8)
	for i, o := range twice {
		assert.True(t, o.Equal(once[i%4]), "position %d = %v, want %v", i, o, once[i%4])
	}
}

func TestPositions_Restartable(t *testing.T) {
	p := Stare(3)
	assert.Len(t, collect(p), 3)
	assert.Len(t, collect(p), 3, "second replay")
	assert.Equal(t, 3, p.Len())
}

func TestPositions_Indices(t *testing.T) {
	p := ABBA(units.Arcsec(1), false, 2, SkyFrame)
	var got []int
	for i := range p.Positions() {
		got = append(got, i)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, got)
}

func TestPositions_EarlyStop(t *testing.T) {
	p := Stare(10)
	n := 0
	for range p.Positions() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestStare(t *testing.T) {
	p := Stare(1)
	offs := p.Offsets()
	require.Len(t, offs, 1)
	assert.True(t, offs[0].IsZero())
	assert.Equal(t, "Stare", p.Name())
	assert.Equal(t, 1, Stare(0).Repeat())
}

func TestNewOffsetPattern_Errors(t *testing.T) {
	_, err := NewOffsetPattern(nil, 1, "empty")
	assert.Error(t, err, "empty pattern")

	_, err = NewOffsetPattern([]TelescopeOffset{{}}, 0, "zero")
	assert.Error(t, err, "repeat 0")
}

func TestPattern_Immutable(t *testing.T) {
	offs := []TelescopeOffset{{Dx: 1, PosName: "A", Frame: SkyFrame}}
	p, err := NewOffsetPattern(offs, 1, "one")
	require.NoError(t, err)
	offs[0].Dx = 99

	got := p.Offsets()
	assert.Equal(t, units.Arcsec(1), got[0].Dx, "pattern changed with caller slice")
	got[0].Dx = 42
	assert.Equal(t, units.Arcsec(1), p.Offsets()[0].Dx, "Offsets() exposed internal storage")
}

func TestPatternEqual(t *testing.T) {
	slit := NewInstrumentFrame("Slit", 0.2, 0)
	a := ABBA(units.Arcsec(1.25), true, 1, slit)
	b := ABBA(units.Arcsec(1.25), true, 1, slit)
	assert.True(t, a.Equal(b), "identical ABBA patterns should be equal")

	c, err := a.WithRepeat(2)
	require.NoError(t, err)
	assert.False(t, a.Equal(c), "patterns with different repeat should differ")
	assert.Equal(t, 1, a.Repeat(), "WithRepeat mutated original")
	assert.False(t, a.Equal(ABBA(units.Arcsec(2), true, 1, slit)), "patterns with different offsets should differ")
}

func TestPatternConverted(t *testing.T) {
	src := NewInstrumentFrame("Src", 0.1, 0)
	dst := NewInstrumentFrame("Dst", 0.2, 0)
	p := ABBA(units.Arcsec(1), true, 2, src)

	c, err := p.Converted(dst)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Repeat())
	assert.Equal(t, p.Name(), c.Name())
	for i, o := range c.Offsets() {
		assert.Same(t, dst, o.Frame, "offset %d", i)
	}
	assert.Equal(t, units.Arcsec(2), c.Offsets()[0].Dy)

	_, err = p.Converted(NewInstrumentFrame("Bad", 0, 0))
	assert.Error(t, err, "converting to an unscaled frame")
}
