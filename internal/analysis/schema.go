package analysis

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/tidwall/gjson"
)

// SchemaError reports a backend response that does not have the AnalysisResult shape.
type SchemaError struct {
	Field  string
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	msg := "invalid analysis response"
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Decode validates body against the analysis document shape and returns the typed result.
// Absent or empty sections are allowed; usability is decided later by the classifier.
func Decode(body []byte) (*Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, &SchemaError{Reason: "body is not valid JSON"}
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, &SchemaError{Reason: "body is not a JSON object"}
	}
	if err := checkShape(root); err != nil {
		return nil, err
	}

	var res Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, &SchemaError{Err: err}
	}
	if err := validate(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// checkShape rejects wrong container types before decoding so errors name the field.
func checkShape(root gjson.Result) error {
	want := []struct {
		path  string
		array bool
	}{
		{"preview", true},
		{"cleaning_log", true},
		{"column_types", false},
		{"analysis", false},
		{"analysis.summary", false},
		{"visualizations", false},
	}
	for _, w := range want {
		v := root.Get(w.path)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if w.array && !v.IsArray() {
			return &SchemaError{Field: w.path, Reason: "expected an array"}
		}
		if !w.array && !v.IsObject() {
			return &SchemaError{Field: w.path, Reason: "expected an object"}
		}
	}

	var err error
	root.Get("preview").ForEach(func(idx, row gjson.Result) bool {
		field := fmt.Sprintf("preview[%d]", idx.Int())
		if !row.IsObject() {
			err = &SchemaError{Field: field, Reason: "expected an object"}
			return false
		}
		row.ForEach(func(key, val gjson.Result) bool {
			if val.IsObject() || val.IsArray() {
				err = &SchemaError{Field: field + "." + key.String(), Reason: "expected a scalar value"}
			}
			return err == nil
		})
		return err == nil
	})
	if err != nil {
		return err
	}
	root.Get("column_types").ForEach(func(col, t gjson.Result) bool {
		if t.Type != gjson.String {
			err = &SchemaError{Field: "column_types." + col.String(), Reason: "expected a string"}
		}
		return err == nil
	})
	if err != nil {
		return err
	}
	root.Get("cleaning_log").ForEach(func(idx, step gjson.Result) bool {
		if !step.IsObject() {
			err = &SchemaError{Field: fmt.Sprintf("cleaning_log[%d]", idx.Int()), Reason: "expected an object"}
		}
		return err == nil
	})
	return err
}

func validate(res *Result) error {
	if len(res.Preview) > 0 {
		head := Columns(res.Preview[0])
		for i, rec := range res.Preview[1:] {
			if !slices.Equal(sortedKeys(Columns(rec)), sortedKeys(head)) {
				return &SchemaError{Field: fmt.Sprintf("preview[%d]", i+1), Reason: "column set differs from preview[0]"}
			}
		}
	}
	for i, step := range res.CleaningLog {
		if step.Name() == "" {
			return &SchemaError{Field: fmt.Sprintf("cleaning_log[%d]", i), Reason: "missing step name"}
		}
	}
	return nil
}

func sortedKeys(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	return out
}
