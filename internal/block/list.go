package block

import (
	"iter"
	"slices"
)

// ObservingBlockList is an append-only, insertion-ordered list of blocks.
type ObservingBlockList struct {
	blocks []*ObservingBlock
}

// NewObservingBlockList creates a list holding blocks in the given order.
func NewObservingBlockList(blocks ...*ObservingBlock) *ObservingBlockList {
	return &ObservingBlockList{blocks: slices.Clone(blocks)}
}

// Append adds blocks to the end of the list.
func (l *ObservingBlockList) Append(blocks ...*ObservingBlock) {
	l.blocks = append(l.blocks, blocks...)
}

// Extend appends every block of other, in order.
func (l *ObservingBlockList) Extend(other *ObservingBlockList) {
	if other == nil {
		return
	}
	l.blocks = append(l.blocks, other.blocks...)
}

// Len returns the number of blocks.
func (l *ObservingBlockList) Len() int {
	return len(l.blocks)
}

// At returns the i-th block.
func (l *ObservingBlockList) At(i int) *ObservingBlock {
	return l.blocks[i]
}

// All yields blocks in insertion order.
func (l *ObservingBlockList) All() iter.Seq2[int, *ObservingBlock] {
	return slices.All(l.blocks)
}

// ExposureCount sums the exposures of every block.
func (l *ObservingBlockList) ExposureCount() int {
	n := 0
	for _, b := range l.blocks {
		n += b.ExposureCount()
	}
	return n
}

// Sequence returns the blocks' sequence elements, in order, without their
// targets. Elements are copies; configs and patterns are shared.
func (l *ObservingBlockList) Sequence() *Sequence {
	seq := &Sequence{elements: make([]*SequenceElement, 0, len(l.blocks))}
	for _, b := range l.blocks {
		e := b.SequenceElement
		seq.elements = append(seq.elements, &e)
	}
	return seq
}

// Sequence is an append-only, insertion-ordered list of sequence elements.
type Sequence struct {
	elements []*SequenceElement
}

// NewSequence creates a sequence holding elements in the given order.
func NewSequence(elements ...*SequenceElement) *Sequence {
	return &Sequence{elements: slices.Clone(elements)}
}

// Append adds elements to the end of the sequence.
func (s *Sequence) Append(elements ...*SequenceElement) {
	s.elements = append(s.elements, elements...)
}

// Len returns the number of elements.
func (s *Sequence) Len() int {
	return len(s.elements)
}

// At returns the i-th element.
func (s *Sequence) At(i int) *SequenceElement {
	return s.elements[i]
}

// All yields elements in insertion order.
func (s *Sequence) All() iter.Seq2[int, *SequenceElement] {
	return slices.All(s.elements)
}

// ExposureCount sums the exposures of every element.
func (s *Sequence) ExposureCount() int {
	n := 0
	for _, e := range s.elements {
		n += e.ExposureCount()
	}
	return n
}
