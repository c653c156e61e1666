// Package block assembles instrument configurations, detector settings,
// offset patterns and targets into ordered observing sequences.
package block

import (
	"errors"
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/litescript/odl/internal/config"
	"github.com/litescript/odl/internal/offset"
	"github.com/litescript/odl/internal/target"
)

// SequenceElement is one step of a sequence that involves no telescope
// acquisition: a pattern executed with a detector and instrument setup,
// repeated Repeat times.
type SequenceElement struct {
	Pattern    *offset.OffsetPattern
	DetConfig  config.DetectorConfig
	InstConfig config.InstrumentConfig
	Repeat     int
}

// NewSequenceElement stores the given references without validating them.
func NewSequenceElement(pattern *offset.OffsetPattern, det config.DetectorConfig, inst config.InstrumentConfig, repeat int) *SequenceElement {
	return &SequenceElement{
		Pattern:    pattern,
		DetConfig:  det,
		InstConfig: inst,
		Repeat:     repeat,
	}
}

// Validate checks the element's structure, then the detector and instrument
// configurations.
func (e *SequenceElement) Validate() error {
	if e.Pattern == nil {
		return errors.New("pattern is required")
	}
	if e.Repeat < 1 {
		return fmt.Errorf("repeat must be >= 1, got %d", e.Repeat)
	}
	if e.DetConfig == nil {
		return errors.New("detector config is required")
	}
	if e.InstConfig == nil {
		return errors.New("instrument config is required")
	}
	if err := e.DetConfig.Validate(); err != nil {
		return fmt.Errorf("detector config: %w", err)
	}
	if err := e.InstConfig.Validate(); err != nil {
		return fmt.Errorf("instrument config: %w", err)
	}
	return nil
}

// Exposure is one detector exposure produced by expanding an element.
type Exposure struct {
	Iteration int // 0-based repetition of the whole element
	Index     int // 0-based position within the pattern replay
	Offset    offset.TelescopeOffset
}

// ExposureCount returns Repeat times the pattern's position count.
func (e *SequenceElement) ExposureCount() int {
	if e.Pattern == nil || e.Repeat < 1 {
		return 0
	}
	return e.Repeat * e.Pattern.Len()
}

// Exposures yields every exposure in execution order: the full pattern,
// replayed Repeat times.
func (e *SequenceElement) Exposures() iter.Seq[Exposure] {
	return func(yield func(Exposure) bool) {
		if e.Pattern == nil {
			return
		}
		for it := range e.Repeat {
			for i, o := range e.Pattern.Positions() {
				if !yield(Exposure{Iteration: it, Index: i, Offset: o}) {
					return
				}
			}
		}
	}
}

// Describe returns a one-line summary.
func (e *SequenceElement) Describe() string {
	return fmt.Sprintf("%s | %s | %s | x%d",
		nameOfInst(e.InstConfig), nameOfDet(e.DetConfig), nameOfPattern(e.Pattern), e.Repeat)
}

// ObservingBlock ties a target to a sequence element. A nil Target denotes an
// internal calibration with no telescope motion.
type ObservingBlock struct {
	ID     uuid.UUID
	Target target.Target
	SequenceElement
}

// NewObservingBlock stores the given references under a fresh block ID.
// The block refers to, but does not own, its target.
func NewObservingBlock(tgt target.Target, pattern *offset.OffsetPattern, det config.DetectorConfig, inst config.InstrumentConfig, repeat int) *ObservingBlock {
	return &ObservingBlock{
		ID:     uuid.New(),
		Target: tgt,
		SequenceElement: SequenceElement{
			Pattern:    pattern,
			DetConfig:  det,
			InstConfig: inst,
			Repeat:     repeat,
		},
	}
}

// Describe returns a one-line summary including the target.
func (b *ObservingBlock) Describe() string {
	return target.NameOf(b.Target) + " | " + b.SequenceElement.Describe()
}

func nameOfInst(c config.InstrumentConfig) string {
	if c == nil {
		return "-"
	}
	return c.Name()
}

func nameOfDet(c config.DetectorConfig) string {
	if c == nil {
		return "-"
	}
	return c.Name()
}

func nameOfPattern(p *offset.OffsetPattern) string {
	if p == nil {
		return "-"
	}
	return p.Name()
}
