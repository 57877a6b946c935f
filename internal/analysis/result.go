package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ColumnType is the backend-inferred semantic type of a column.
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
	ColumnDatetime    ColumnType = "datetime"
	ColumnTemporal    ColumnType = "temporal"
	ColumnText        ColumnType = "text"
	// ColumnEmpty marks a column with no values at all.
	ColumnEmpty ColumnType = "empty"
)

// Valid reports whether t is one of the known column types. Other values are
// kept as sent; they are not offered as chart axes.
func (t ColumnType) Valid() bool {
	switch t {
	case ColumnNumeric, ColumnCategorical, ColumnDatetime, ColumnTemporal, ColumnText, ColumnEmpty:
		return true
	}
	return false
}

// Record is one preview row. Keys keep the order in which the backend sent them,
// which is the column order used for tables and CSV headers.
type Record = orderedmap.OrderedMap[string, any]

// Sections holds category-keyed JSON blobs (summary categories, chart specs)
// whose inner schema is owned by the backend.
type Sections = orderedmap.OrderedMap[string, json.RawMessage]

// CleaningStep is one entry of the server-side cleaning log. Besides "step" it
// carries arbitrary metrics (rows, columns, missing_values, message, ...).
type CleaningStep map[string]any

// Name returns the step name.
func (s CleaningStep) Name() string {
	if v, ok := s["step"].(string); ok {
		return v
	}
	return ""
}

// Message returns the human readable message of the step, if any.
func (s CleaningStep) Message() string {
	if v, ok := s["message"].(string); ok {
		return v
	}
	return ""
}

// Result is the analysis document returned by POST /analyze-csv.
type Result struct {
	Preview        []*Record             `json:"preview"`
	CleaningLog    []CleaningStep        `json:"cleaning_log"`
	ColumnTypes    map[string]ColumnType `json:"column_types"`
	Analysis       Analysis              `json:"analysis"`
	Visualizations *Sections             `json:"visualizations"`
}

// Analysis wraps the summary block of a Result.
type Analysis struct {
	Summary *Sections `json:"summary"`
}

// Summary is a shortcut for r.Analysis.Summary.
func (r *Result) Summary() *Sections {
	if r == nil {
		return nil
	}
	return r.Analysis.Summary
}

// Columns returns the preview column names in order, taken from the first record.
func (r *Result) Columns() []string {
	if r == nil || len(r.Preview) == 0 {
		return nil
	}
	return Columns(r.Preview[0])
}

// Columns returns the keys of rec in insertion order.
func Columns(rec *Record) []string {
	if rec == nil {
		return nil
	}
	keys := make([]string, 0, rec.Len())
	for pair := rec.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// SectionKeys returns the keys of s in insertion order.
func SectionKeys(s *Sections) []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, s.Len())
	for pair := s.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// NewRecord builds a record from alternating key/value arguments.
// Non-string keys are formatted with fmt.Sprint; a trailing key without value is ignored.
func NewRecord(kv ...any) *Record {
	rec := orderedmap.New[string, any]()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		rec.Set(key, kv[i+1])
	}
	return rec
}

// NewSections returns an empty Sections map.
func NewSections() *Sections {
	return orderedmap.New[string, json.RawMessage]()
}

// Clone returns a deep copy of r.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := &Result{
		CleaningLog:    cloneSteps(r.CleaningLog),
		ColumnTypes:    maps.Clone(r.ColumnTypes),
		Analysis:       Analysis{Summary: cloneSections(r.Analysis.Summary)},
		Visualizations: cloneSections(r.Visualizations),
	}
	if r.Preview != nil {
		out.Preview = ClonePreview(r.Preview)
	}
	return out
}

// ClonePreview deep-copies a slice of records.
func ClonePreview(rows []*Record) []*Record {
	out := make([]*Record, len(rows))
	for i, rec := range rows {
		out[i] = cloneRecord(rec)
	}
	return out
}

func cloneRecord(rec *Record) *Record {
	if rec == nil {
		return nil
	}
	out := orderedmap.New[string, any]()
	for pair := rec.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, cloneValue(pair.Value))
	}
	return out
}

func cloneSteps(steps []CleaningStep) []CleaningStep {
	if steps == nil {
		return nil
	}
	out := make([]CleaningStep, len(steps))
	for i, s := range steps {
		if s == nil {
			continue
		}
		cp := make(CleaningStep, len(s))
		for k, v := range s {
			cp[k] = cloneValue(v)
		}
		out[i] = cp
	}
	return out
}

func cloneSections(s *Sections) *Sections {
	if s == nil {
		return nil
	}
	out := NewSections()
	for pair := s.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, json.RawMessage(bytes.Clone(pair.Value)))
	}
	return out
}

// cloneValue copies the containers produced by encoding/json; scalars are immutable.
func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		cp := make(map[string]any, len(x))
		for k, vv := range x {
			cp[k] = cloneValue(vv)
		}
		return cp
	case []any:
		cp := make([]any, len(x))
		for i, vv := range x {
			cp[i] = cloneValue(vv)
		}
		return cp
	case json.RawMessage:
		return json.RawMessage(bytes.Clone(x))
	default:
		return v
	}
}
