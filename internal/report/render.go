// Package report renders the effective view model for the terminal.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/tidwall/gjson"

	"github.com/KaramelBytes/datadash-cli/internal/analysis"
	"github.com/KaramelBytes/datadash-cli/internal/export"
	"github.com/KaramelBytes/datadash-cli/internal/health"
)

const maxCellWidth = 28

// View is everything the terminal report shows.
type View struct {
	Filename      string
	UsingSample   bool
	State         health.State
	Result        *analysis.Result
	Table         []*analysis.Record
	TableFallback bool
	// MaxRows limits the preview table; 0 means 10.
	MaxRows int
}

// Render writes the report for v to w.
func Render(w io.Writer, v View) error {
	var b strings.Builder

	title := "datadash"
	if v.Filename != "" {
		title += ": " + v.Filename
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	if v.State != "" {
		b.WriteString(labelStyle.Render("backend "))
		b.WriteString(stateStyle(v.State).Render(string(v.State)))
		b.WriteString("\n")
	}
	if v.UsingSample {
		b.WriteString(sampleBanner.Render("Currently displaying sample data for demonstration purposes."))
		b.WriteString("\n")
	}

	res := v.Result
	if res == nil {
		res = &analysis.Result{}
	}
	writeCleaningLog(&b, res.CleaningLog)
	writeColumnTypes(&b, res)
	writeSummary(&b, res.Summary())
	writeVisualizations(&b, res.Visualizations)
	writePreview(&b, v)

	_, err := io.WriteString(w, b.String())
	return err
}

func stateStyle(s health.State) lipgloss.Style {
	switch s {
	case health.StateOnline:
		return onlineStyle
	case health.StateOffline:
		return offlineStyle
	}
	return unknownStyle
}

func section(b *strings.Builder, name string) {
	b.WriteString(sectionStyle.Render(name))
	b.WriteString("\n")
}

func writeCleaningLog(b *strings.Builder, steps []analysis.CleaningStep) {
	section(b, "Cleaning log")
	if len(steps) == 0 {
		b.WriteString(labelStyle.Render("  (none)"))
		b.WriteString("\n")
		return
	}
	for i, st := range steps {
		line := fmt.Sprintf("  %d. %s", i+1, st.Name())
		if msg := st.Message(); msg != "" {
			line += ": " + msg
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func writeColumnTypes(b *strings.Builder, res *analysis.Result) {
	section(b, "Column types")
	if len(res.ColumnTypes) == 0 {
		b.WriteString(labelStyle.Render("  (none)"))
		b.WriteString("\n")
		return
	}
	seen := map[string]bool{}
	var names []string
	for _, c := range res.Columns() {
		if _, ok := res.ColumnTypes[c]; ok {
			names = append(names, c)
			seen[c] = true
		}
	}
	var rest []string
	for c := range res.ColumnTypes {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return labelStyle.PaddingLeft(1)
			}
			return bodyCell
		})
	for _, n := range names {
		t.Row(n, string(res.ColumnTypes[n]))
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
}

func writeSummary(b *strings.Builder, summary *analysis.Sections) {
	section(b, "Summary")
	keys := analysis.SectionKeys(summary)
	if len(keys) == 0 {
		b.WriteString(labelStyle.Render("  (none)"))
		b.WriteString("\n")
		return
	}
	for _, k := range keys {
		if k == export.NumericCategory {
			if out, err := export.SummaryToCSV(summary, k); err == nil {
				b.WriteString("  numeric\n")
				b.WriteString(csvTable(out))
				b.WriteString("\n")
				continue
			}
		}
		raw, _ := summary.Get(k)
		node := gjson.ParseBytes(raw)
		n := 0
		if node.IsObject() {
			node.ForEach(func(_, _ gjson.Result) bool { n++; return true })
		}
		fmt.Fprintf(b, "  %s %s\n", k, labelStyle.Render(fmt.Sprintf("(%d entries)", n)))
	}
}

func writeVisualizations(b *strings.Builder, vis *analysis.Sections) {
	keys := analysis.SectionKeys(vis)
	section(b, fmt.Sprintf("Visualizations (%d)", len(keys)))
	for _, k := range keys {
		raw, _ := vis.Get(k)
		title := gjson.GetBytes(raw, "title").String()
		kind := gjson.GetBytes(raw, "type").String()
		line := "  " + k
		if title != "" {
			line += ": " + title
		}
		if kind != "" {
			line += " " + labelStyle.Render("["+kind+"]")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func writePreview(b *strings.Builder, v View) {
	rows := v.Table
	if rows == nil && v.Result != nil {
		rows = v.Result.Preview
	}
	name := "Preview"
	if v.TableFallback {
		name += " (sample data: the actual data contains too many unknown values)"
	}
	section(b, name)
	if len(rows) == 0 {
		b.WriteString(labelStyle.Render("  (empty)"))
		b.WriteString("\n")
		return
	}
	limit := v.MaxRows
	if limit <= 0 {
		limit = 10
	}
	header := analysis.Columns(rows[0])
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(labelStyle).
		Headers(header...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return bodyCell
		})
	for i, rec := range rows {
		if i >= limit {
			break
		}
		cells := make([]string, len(header))
		for j, col := range header {
			if val, ok := rec.Get(col); ok {
				cells[j] = truncate(export.FormatValue(val))
			}
		}
		t.Row(cells...)
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
	if len(rows) > limit {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  ... %d more rows", len(rows)-limit)))
		b.WriteString("\n")
	}
}

// csvTable lays out the output of export.SummaryToCSV as a table.
func csvTable(text string) string {
	records, err := csv.NewReader(strings.NewReader(text)).ReadAll()
	if err != nil || len(records) == 0 {
		return text
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(labelStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return bodyCell
		})
	for i, cells := range records {
		for j := range cells {
			cells[j] = truncate(cells[j])
		}
		if i == 0 {
			t.Headers(cells...)
			continue
		}
		t.Row(cells...)
	}
	return t.Render()
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= maxCellWidth {
		return s
	}
	return string(r[:maxCellWidth-1]) + "…"
}
