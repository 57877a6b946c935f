package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/KaramelBytes/datadash-cli/internal/analysis"
)

// ErrSummaryUnavailable is returned when a summary category is absent or not an object.
var ErrSummaryUnavailable = errors.New("summary category unavailable")

// NumericCategory is rendered as a statistic-by-column table; other categories as key/value pairs.
const NumericCategory = "numeric"

// SummaryToCSV renders one category of an analysis summary. For the numeric category
// the statistic rows are taken from the first column's statistics; statistics that
// only later columns carry are not exported.
func SummaryToCSV(summary *analysis.Sections, category string) (string, error) {
	if summary == nil {
		return "", ErrSummaryUnavailable
	}
	raw, ok := summary.Get(category)
	if !ok {
		return "", ErrSummaryUnavailable
	}
	node := gjson.ParseBytes(raw)
	if !node.IsObject() {
		return "", ErrSummaryUnavailable
	}
	if category == NumericCategory {
		return numericTable(node)
	}
	return keyValueTable(node), nil
}

func numericTable(node gjson.Result) (string, error) {
	var columns []string
	var perColumn []gjson.Result
	node.ForEach(func(key, val gjson.Result) bool {
		columns = append(columns, key.String())
		perColumn = append(perColumn, val)
		return true
	})
	if len(columns) == 0 || !perColumn[0].IsObject() {
		return "", ErrSummaryUnavailable
	}

	var stats []string
	perColumn[0].ForEach(func(key, _ gjson.Result) bool {
		stats = append(stats, key.String())
		return true
	})

	var b strings.Builder
	writeRow(&b, append([]string{"Statistic"}, columns...))
	row := make([]string, len(columns)+1)
	for _, stat := range stats {
		row[0] = stat
		for i, col := range perColumn {
			row[i+1] = ""
			if col.IsObject() {
				row[i+1] = scalarText(col.Get(gjson.Escape(stat)))
			}
		}
		b.WriteByte('\n')
		writeRow(&b, row)
	}
	return b.String(), nil
}

func keyValueTable(node gjson.Result) string {
	var b strings.Builder
	writeRow(&b, []string{"Key", "Value"})
	node.ForEach(func(key, val gjson.Result) bool {
		b.WriteByte('\n')
		writeRow(&b, []string{key.String(), scalarText(val)})
		return true
	})
	return b.String()
}

// scalarText renders numbers as written by the backend, strings unquoted and
// containers as compact JSON.
func scalarText(v gjson.Result) string {
	switch {
	case !v.Exists(), v.Type == gjson.Null:
		return ""
	case v.Type == gjson.String:
		return v.String()
	case v.Type == gjson.Number, v.Type == gjson.True, v.Type == gjson.False:
		return v.Raw
	default:
		return compact([]byte(v.Raw))
	}
}

func compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
