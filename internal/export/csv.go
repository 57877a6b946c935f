package export

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/KaramelBytes/datadash-cli/internal/analysis"
)

// ErrEmptyInput is returned when there are no records to serialize.
var ErrEmptyInput = errors.New("no records to export")

// ToCSV renders records as comma-separated text. The header is the key order of the
// first record; later records are read in that order and missing keys become empty
// cells. Rows are joined with "\n" without a trailing newline.
func ToCSV(records []*analysis.Record) (string, error) {
	if len(records) == 0 || records[0] == nil {
		return "", ErrEmptyInput
	}
	header := analysis.Columns(records[0])

	var b strings.Builder
	writeRow(&b, header)
	cells := make([]string, len(header))
	for _, rec := range records {
		for i, col := range header {
			cells[i] = ""
			if rec == nil {
				continue
			}
			if v, ok := rec.Get(col); ok {
				cells[i] = FormatValue(v)
			}
		}
		b.WriteByte('\n')
		writeRow(&b, cells)
	}
	return b.String(), nil
}

func writeRow(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Escape(c))
	}
}

// Escape quotes s when it contains a comma, a double quote or a newline,
// doubling any inner quotes.
func Escape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FormatValue returns the plain text form of a decoded JSON value. Numbers use the
// shortest decimal representation, nil is empty and containers are compact JSON.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case json.RawMessage:
		return compact(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
