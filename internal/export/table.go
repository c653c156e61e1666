package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	calStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Padding(0, 1)

	plainStyle = lipgloss.NewStyle().Padding(0, 1)
)

// SummaryRow is one row of the summary table.
type SummaryRow struct {
	Index      int
	Target     string
	InstConfig string
	DetConfig  string
	Pattern    string
	Repeat     int
	Exposures  int
}

// SummaryRows flattens the document into table rows.
func (d *Document) SummaryRows() []SummaryRow {
	rows := make([]SummaryRow, 0, len(d.Blocks))
	for i, b := range d.Blocks {
		tgt := "internal"
		if name, ok := b.Target["name"].(string); ok {
			tgt = name
		}
		rows = append(rows, SummaryRow{
			Index:      i + 1,
			Target:     tgt,
			InstConfig: fmt.Sprint(b.InstConfig["name"]),
			DetConfig:  fmt.Sprint(b.DetConfig["name"]),
			Pattern:    patternLabel(b.Pattern),
			Repeat:     b.Repeat,
			Exposures:  b.Exposures,
		})
	}
	return rows
}

func patternLabel(p PatternExport) string {
	if p.Repeat <= 1 {
		return p.Name
	}
	return p.Name + " x" + strconv.Itoa(p.Repeat)
}

// WriteSummaryTable writes a bordered table of blocks. styled enables
// colors; pass false when the writer is not a terminal.
func (d *Document) WriteSummaryTable(w io.Writer, styled bool) error {
	rows := d.SummaryRows()

	title := fmt.Sprintf("%s sequence @ %s", orDash(d.Instrument), d.Generated.Format(time.RFC3339))
	if styled {
		title = titleStyle.Render(title)
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No blocks")
		return err
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{
			strconv.Itoa(r.Index),
			r.Target,
			r.InstConfig,
			r.DetConfig,
			r.Pattern,
			strconv.Itoa(r.Repeat),
			strconv.Itoa(r.Exposures),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Target", "Instrument config", "Detector", "Pattern", "Repeat", "Exp").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if !styled {
				return plainStyle
			}
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(rows) && rows[row].Target == "internal" {
				return calStyle
			}
			return cellStyle
		})

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Total: %d blocks, %d exposures\n", len(rows), d.ExposureCount())
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
