package analysis

import "maps"

// Merge returns a copy of sample whose cleaning log and column types are taken
// from actual when actual carries non-empty ones. Preview, summary and visualizations
// always come from sample. Neither argument is modified.
func Merge(sample, actual *Result) *Result {
	out := sample.Clone()
	if out == nil {
		out = &Result{}
	}
	if actual == nil {
		return out
	}
	if len(actual.CleaningLog) > 0 {
		out.CleaningLog = cloneSteps(actual.CleaningLog)
	}
	if len(actual.ColumnTypes) > 0 {
		out.ColumnTypes = maps.Clone(actual.ColumnTypes)
	}
	return out
}
