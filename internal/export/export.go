// Package export serializes observing block lists and sequences into the
// documents consumed by telescope-control software.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/litescript/odl/internal/block"
	"github.com/litescript/odl/internal/offset"
)

// Schema identifies the document layout.
const Schema = "odl.sequence.v1"

// Document is the serializable form of a block list or sequence.
type Document struct {
	Schema     string        `yaml:"schema" json:"schema"`
	Generated  time.Time     `yaml:"generated" json:"generated"`
	Instrument string        `yaml:"instrument,omitempty" json:"instrument,omitempty"`
	Blocks     []BlockExport `yaml:"blocks" json:"blocks"`
}

// BlockExport is one block or sequence element.
type BlockExport struct {
	ID         string         `yaml:"id,omitempty" json:"id,omitempty"`
	Target     map[string]any `yaml:"target" json:"target"`
	Pattern    PatternExport  `yaml:"pattern" json:"pattern"`
	DetConfig  map[string]any `yaml:"detconfig" json:"detconfig"`
	InstConfig map[string]any `yaml:"instconfig" json:"instconfig"`
	Repeat     int            `yaml:"repeat" json:"repeat"`
	Exposures  int            `yaml:"exposures" json:"exposures"`
}

// PatternExport is an offset pattern with angles in arcseconds.
type PatternExport struct {
	Name    string         `yaml:"name" json:"name"`
	Repeat  int            `yaml:"repeat" json:"repeat"`
	Offsets []OffsetExport `yaml:"offsets" json:"offsets"`
}

// OffsetExport is a single offset position.
type OffsetExport struct {
	Dx      float64 `yaml:"dx_arcsec" json:"dx_arcsec"`
	Dy      float64 `yaml:"dy_arcsec" json:"dy_arcsec"`
	PosName string  `yaml:"posname" json:"posname"`
	Guide   bool    `yaml:"guide" json:"guide"`
	Frame   string  `yaml:"frame" json:"frame"`
}

// Blocks validates every block and converts the list in insertion order.
func Blocks(list *block.ObservingBlockList, generated time.Time) (*Document, error) {
	doc := &Document{Schema: Schema, Generated: generated, Blocks: []BlockExport{}}
	var instruments []string
	for i, b := range list.All() {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("block %d (%s): %w", i, b.Describe(), err)
		}
		be := element(&b.SequenceElement)
		be.ID = b.ID.String()
		if b.Target != nil {
			be.Target = b.Target.ToDict()
		}
		doc.Blocks = append(doc.Blocks, be)
		instruments = append(instruments, b.InstConfig.Instrument())
	}
	doc.Instrument = commonInstrument(instruments)
	return doc, nil
}

// Sequence validates every element and converts the sequence in order.
func Sequence(seq *block.Sequence, generated time.Time) (*Document, error) {
	doc := &Document{Schema: Schema, Generated: generated, Blocks: []BlockExport{}}
	var instruments []string
	for i, e := range seq.All() {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("element %d (%s): %w", i, e.Describe(), err)
		}
		doc.Blocks = append(doc.Blocks, element(e))
		instruments = append(instruments, e.InstConfig.Instrument())
	}
	doc.Instrument = commonInstrument(instruments)
	return doc, nil
}

// Fingerprint encodes everything a block exports except its ID, so two
// builds of the same recipe compare equal.
func Fingerprint(b *block.ObservingBlock) string {
	var be BlockExport
	if b.Pattern != nil {
		be.Pattern = pattern(b.Pattern)
	}
	if b.DetConfig != nil {
		be.DetConfig = b.DetConfig.ToDict()
	}
	if b.InstConfig != nil {
		be.InstConfig = b.InstConfig.ToDict()
	}
	if b.Target != nil {
		be.Target = b.Target.ToDict()
	}
	be.Repeat = b.Repeat
	out, err := yaml.Marshal(be)
	if err != nil {
		return b.Describe()
	}
	return string(out)
}

func element(e *block.SequenceElement) BlockExport {
	return BlockExport{
		Pattern:    pattern(e.Pattern),
		DetConfig:  e.DetConfig.ToDict(),
		InstConfig: e.InstConfig.ToDict(),
		Repeat:     e.Repeat,
		Exposures:  e.ExposureCount(),
	}
}

func pattern(p *offset.OffsetPattern) PatternExport {
	pe := PatternExport{Name: p.Name(), Repeat: p.Repeat()}
	for _, o := range p.Offsets() {
		pe.Offsets = append(pe.Offsets, OffsetExport{
			Dx:      o.Dx.Arcsec(),
			Dy:      o.Dy.Arcsec(),
			PosName: o.PosName,
			Guide:   o.Guide,
			Frame:   o.Frame.Name(),
		})
	}
	return pe
}

// commonInstrument returns the shared instrument name, "mixed" when blocks
// disagree, or "" for an empty document.
func commonInstrument(names []string) string {
	if len(names) == 0 {
		return ""
	}
	for _, n := range names[1:] {
		if n != names[0] {
			return "mixed"
		}
	}
	return names[0]
}

// ExposureCount sums the exposures of every block in the document.
func (d *Document) ExposureCount() int {
	n := 0
	for _, b := range d.Blocks {
		n += b.Exposures
	}
	return n
}

// WriteJSON writes the document as indented JSON.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// WriteYAML writes the document as YAML.
func (d *Document) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// Write writes the document in the named format: "yaml", "json" or "table".
func (d *Document) Write(w io.Writer, format string, styled bool) error {
	switch format {
	case "yaml", "yml", "":
		return d.WriteYAML(w)
	case "json":
		return d.WriteJSON(w)
	case "table":
		return d.WriteSummaryTable(w, styled)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
