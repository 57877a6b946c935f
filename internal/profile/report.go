package profile

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KaramelBytes/datadash-cli/internal/analysis"
)

// Markdown renders a compact report of the profile.
func (p *Profile) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if p.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", p.Name)
	}
	fmt.Fprintf(&b, "Delimiter: %s\n", delimiterName(p.Delimiter))
	if p.Processed > 0 && p.Processed < p.Rows {
		fmt.Fprintf(&b, "Rows: ~%d (processed %d)\n", p.Rows, p.Processed)
	} else {
		fmt.Fprintf(&b, "Rows: %d\n", p.Rows)
	}
	fmt.Fprintf(&b, "Columns: %d\n\n", len(p.Cols))

	b.WriteString("[SCHEMA]\n")
	for _, c := range p.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		fmt.Fprintf(&b, "- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct)
		switch c.Kind {
		case KindNumeric:
			n := c.Numeric
			fmt.Fprintf(&b, ": min %.4g, q1 %.4g, median %.4g, q3 %.4g, max %.4g, mean %.4g, std %.4g",
				n.Min, n.Q25, n.Median, n.Q75, n.Max, n.Mean, n.Std)
		case KindCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString(": top ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					fmt.Fprintf(&b, "%s(%d)", safeVal(kv.Value), kv.Count)
				}
				if c.Unique > len(c.TopValues) {
					fmt.Fprintf(&b, "; unique=%d", c.Unique)
				}
			}
		case KindText:
			if len(c.Examples) > 0 {
				b.WriteString(": e.g. ")
				for i, ex := range c.Examples {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(p.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range p.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Summary returns the profile in the backend's summary layout: a "numeric"
// category keyed by column with describe() statistics, and "dataset_info".
func (p *Profile) Summary() (*analysis.Sections, error) {
	out := analysis.NewSections()

	numeric := analysis.NewSections()
	for _, c := range p.Cols {
		if c.Numeric == nil {
			continue
		}
		n := c.Numeric
		stat := analysis.NewRecord(
			"count", float64(n.Count),
			"mean", n.Mean,
			"std", n.Std,
			"min", n.Min,
			"25%", n.Q25,
			"50%", n.Median,
			"75%", n.Q75,
			"max", n.Max,
		)
		raw, err := json.Marshal(stat)
		if err != nil {
			return nil, fmt.Errorf("encode stats for %s: %w", c.Name, err)
		}
		numeric.Set(c.Name, raw)
	}
	if numeric.Len() > 0 {
		raw, err := json.Marshal(numeric)
		if err != nil {
			return nil, fmt.Errorf("encode numeric summary: %w", err)
		}
		out.Set("numeric", raw)
	}

	info := analysis.NewRecord(
		"rows", p.Rows,
		"columns", len(p.Cols),
		"delimiter", string(p.Delimiter),
	)
	raw, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("encode dataset info: %w", err)
	}
	out.Set("dataset_info", raw)
	return out, nil
}

func delimiterName(d rune) string {
	switch d {
	case '\t':
		return "tab"
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	}
	return string(d)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
