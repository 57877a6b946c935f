package analysis

// The two views of a result are gated independently: the whole analysis is
// replaced by sample data at 60% unknown cells, the table view at 70%.
const (
	AnalysisValidityThreshold = 0.60
	TableValidityThreshold    = 0.70
)

// UnknownValue is the placeholder the backend writes for unparseable cells.
const UnknownValue = "Unknown"

// IsUnknown reports whether a cell carries no information.
func IsUnknown(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == "" || x == UnknownValue
	}
	return false
}

// UnknownRatio returns the fraction of unknown cells across all records and the
// number of cells inspected. The ratio is 0 when there are no cells.
func UnknownRatio(preview []*Record) (float64, int) {
	var unknown, total int
	for _, rec := range preview {
		if rec == nil {
			continue
		}
		for pair := rec.Oldest(); pair != nil; pair = pair.Next() {
			total++
			if IsUnknown(pair.Value) {
				unknown++
			}
		}
	}
	if total == 0 {
		return 0, 0
	}
	return float64(unknown) / float64(total), total
}

// IsValid reports whether the unknown-cell ratio of preview is strictly below threshold.
// An empty preview, or one without any cells, is never valid.
func IsValid(preview []*Record, threshold float64) bool {
	if len(preview) == 0 {
		return false
	}
	ratio, total := UnknownRatio(preview)
	if total == 0 {
		return false
	}
	return ratio < threshold
}

// Usable applies the analysis threshold to r's preview.
func (r *Result) Usable() bool {
	if r == nil {
		return false
	}
	return IsValid(r.Preview, AnalysisValidityThreshold)
}

// TableUsable applies the table threshold to rows.
func TableUsable(rows []*Record) bool {
	return IsValid(rows, TableValidityThreshold)
}
