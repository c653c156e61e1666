package offset

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/litescript/odl/internal/units"
)

// OffsetPattern is an ordered, repeatable list of offsets. Patterns are
// immutable; derivations return new patterns.
type OffsetPattern struct {
	name    string
	offsets []TelescopeOffset
	repeat  int
}

// NewOffsetPattern builds a pattern from offsets replayed repeat times.
func NewOffsetPattern(offsets []TelescopeOffset, repeat int, name string) (*OffsetPattern, error) {
	if len(offsets) == 0 {
		return nil, errors.New("offset pattern needs at least one offset")
	}
	if repeat < 1 {
		return nil, fmt.Errorf("offset pattern repeat must be >= 1, got %d", repeat)
	}
	return &OffsetPattern{
		name:    name,
		offsets: slices.Clone(offsets),
		repeat:  repeat,
	}, nil
}

// mustPattern is used by the predefined patterns, whose inputs are known good
// apart from the caller-supplied repeat.
func mustPattern(offsets []TelescopeOffset, repeat int, name string) *OffsetPattern {
	if repeat < 1 {
		repeat = 1
	}
	p, err := NewOffsetPattern(offsets, repeat, name)
	if err != nil {
		panic(err)
	}
	return p
}

// Stare is the single zero-offset position used when no dithering is needed.
func Stare(repeat int) *OffsetPattern {
	return mustPattern([]TelescopeOffset{
		{PosName: "A", Guide: true, Frame: SkyFrame},
	}, repeat, "Stare")
}

// ABBA alternates between +offset and -offset along the frame's y axis.
func ABBA(off units.Angle, guide bool, repeat int, frame *InstrumentFrame) *OffsetPattern {
	return mustPattern([]TelescopeOffset{
		{Dy: off, PosName: "A", Guide: guide, Frame: frame},
		{Dy: off.Neg(), PosName: "B", Guide: guide, Frame: frame},
		{Dy: off.Neg(), PosName: "B", Guide: guide, Frame: frame},
		{Dy: off, PosName: "A", Guide: guide, Frame: frame},
	}, repeat, fmt.Sprintf("ABBA (%s)", off.Format(2)))
}

// Name returns the display name.
func (p *OffsetPattern) Name() string {
	return p.name
}

// Repeat returns how many times the offsets are replayed.
func (p *OffsetPattern) Repeat() int {
	return p.repeat
}

// Offsets returns a copy of one cycle of offsets.
func (p *OffsetPattern) Offsets() []TelescopeOffset {
	return slices.Clone(p.offsets)
}

// Len returns the total number of positions including repeats.
func (p *OffsetPattern) Len() int {
	return len(p.offsets) * p.repeat
}

// Positions yields every position in execution order with its running index.
// Iteration does not consume the pattern.
func (p *OffsetPattern) Positions() iter.Seq2[int, TelescopeOffset] {
	return func(yield func(int, TelescopeOffset) bool) {
		i := 0
		for range p.repeat {
			for _, o := range p.offsets {
				if !yield(i, o) {
					return
				}
				i++
			}
		}
	}
}

// WithRepeat returns a copy of the pattern with a different repeat count.
func (p *OffsetPattern) WithRepeat(repeat int) (*OffsetPattern, error) {
	return NewOffsetPattern(p.offsets, repeat, p.name)
}

// Converted returns a copy with every offset expressed in frame.
func (p *OffsetPattern) Converted(frame *InstrumentFrame) (*OffsetPattern, error) {
	out := make([]TelescopeOffset, len(p.offsets))
	for i, o := range p.offsets {
		c, err := o.ConvertTo(frame)
		if err != nil {
			return nil, fmt.Errorf("offset %d (%s): %w", i, o.PosName, err)
		}
		out[i] = c
	}
	return NewOffsetPattern(out, p.repeat, p.name)
}

// Equal reports structural equality: same ordered offsets and repeat.
func (p *OffsetPattern) Equal(other *OffsetPattern) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.repeat == other.repeat &&
		slices.EqualFunc(p.offsets, other.offsets, TelescopeOffset.Equal)
}

// String implements fmt.Stringer.
func (p *OffsetPattern) String() string {
	if p.repeat == 1 {
		return p.name
	}
	return fmt.Sprintf("%s x%d", p.name, p.repeat)
}
