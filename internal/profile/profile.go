// Package profile inspects a CSV file locally before it is uploaded: delimiter,
// header, row count, per-column kind and numeric statistics.
package profile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/datadash-cli/internal/analysis"
)

var (
	// ErrNoHeader is returned for empty input or a blank header row.
	ErrNoHeader = errors.New("csv has no header row")
	// ErrNoRows is returned when the header is not followed by any data row.
	ErrNoRows = errors.New("csv has no data rows")
)

// Kind is the locally inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindDatetime    Kind = "datetime"
	KindCategorical Kind = "categorical"
	KindText        Kind = "text"
	KindUnknown     Kind = "unknown"
)

// Options controls preflight behavior.
type Options struct {
	// MaxRows limits rows processed; 0 means unlimited.
	MaxRows int
	// SampleRows determines how many example rows to keep.
	SampleRows int
	// Delimiter for CSV. If 0, auto-detects among ',', ';', '\t'.
	Delimiter rune
}

// DefaultOptions returns reasonable defaults for preflight.
func DefaultOptions() Options {
	return Options{MaxRows: 100000, SampleRows: 5}
}

// Profile is the local summary of a CSV file.
type Profile struct {
	Name      string
	Delimiter rune
	Header    []string
	Rows      int
	Processed int
	Cols      []Column
	Samples   [][]string
	Warnings  []string
}

// Column captures inferred kind and statistics for one column.
type Column struct {
	Name      string
	Kind      Kind
	NonNull   int
	Missing   int
	Unique    int
	Numeric   *NumericStats
	TopValues []CategoryCount
	Examples  []string
}

// NumericStats mirrors the describe() block the backend reports per numeric column.
type NumericStats struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

type CategoryCount struct {
	Value string
	Count int
}

type colAcc struct {
	name   string
	nonNil int
	miss   int
	nums   []float64
	dtCnt  int
	txtCnt int
	cats   map[string]int
	exText []string
}

// Preflight profiles data as a CSV file called name.
func Preflight(name string, data []byte, opt Options) (*Profile, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name, data)
	}
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.ReuseRecord = true
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)
	if blankRecord(header) {
		return nil, ErrNoHeader
	}
	ncol := len(header)

	cols := make([]*colAcc, ncol)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
		cols[i] = &colAcc{name: header[i], cats: make(map[string]int)}
	}

	p := &Profile{Name: filepath.Base(name), Delimiter: delim, Header: header}
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}

	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", p.Rows+1, err)
		}
		if blankRecord(rec) {
			continue
		}
		p.Rows++
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rec = tmp
		}
		if p.Processed >= maxRows {
			continue
		}
		p.Processed++
		if len(p.Samples) < sampleRows {
			p.Samples = append(p.Samples, append([]string(nil), rec[:ncol]...))
		}
		for j := 0; j < ncol; j++ {
			v := strings.TrimSpace(rec[j])
			c := cols[j]
			if v == "" || v == analysis.UnknownValue {
				c.miss++
				continue
			}
			c.nonNil++
			if x, ok := parseNumeric(v); ok {
				c.nums = append(c.nums, x)
				continue
			}
			if parseTimeMaybe(v) {
				c.dtCnt++
				continue
			}
			c.txtCnt++
			if len(c.cats) <= 10000 && len(v) <= 64 {
				c.cats[v]++
			}
			if len(c.exText) < 3 {
				c.exText = append(c.exText, v)
			}
		}
	}
	if p.Rows == 0 {
		return nil, ErrNoRows
	}

	p.Cols = make([]Column, 0, ncol)
	for _, c := range cols {
		p.Cols = append(p.Cols, summarize(c))
	}
	if p.Processed < p.Rows {
		p.Warnings = append(p.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", p.Processed, p.Rows))
	}
	if ncol == 1 && delim == ',' {
		p.Warnings = append(p.Warnings, "only one column detected; check the delimiter")
	}
	return p, nil
}

// summarize decides the kind by the predominant parsed type.
func summarize(c *colAcc) Column {
	s := Column{Name: c.name, NonNull: c.nonNil, Missing: c.miss, Kind: KindUnknown}
	numCnt := len(c.nums)
	switch {
	case numCnt > 0 && numCnt >= c.dtCnt && numCnt >= c.txtCnt:
		s.Kind = KindNumeric
		s.Numeric = describe(c.nums)
	case c.dtCnt > 0 && c.dtCnt >= c.txtCnt:
		s.Kind = KindDatetime
	case len(c.cats) > 0:
		s.Kind = KindCategorical
		tops := make([]CategoryCount, 0, len(c.cats))
		for k, v := range c.cats {
			tops = append(tops, CategoryCount{Value: k, Count: v})
		}
		sort.Slice(tops, func(i, j int) bool {
			if tops[i].Count == tops[j].Count {
				return tops[i].Value < tops[j].Value
			}
			return tops[i].Count > tops[j].Count
		})
		if len(tops) > 8 {
			tops = tops[:8]
		}
		s.TopValues = tops
		s.Unique = len(c.cats)
	case c.txtCnt > 0:
		s.Kind = KindText
		s.Examples = c.exText
	}
	return s
}

func describe(vals []float64) *NumericStats {
	data := stats.Float64Data(vals)
	out := &NumericStats{Count: len(vals)}
	out.Mean, _ = stats.Mean(data)
	out.Min, _ = stats.Min(data)
	out.Max, _ = stats.Max(data)
	out.Median, _ = stats.Median(data)
	if len(vals) > 1 {
		out.Std, _ = stats.StandardDeviationSample(data)
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	out.Q25 = quantile(sorted, 0.25)
	out.Q75 = quantile(sorted, 0.75)
	return out
}

// ColumnTypes maps local kinds onto the backend's column type vocabulary.
// Columns without any value are reported as text.
func (p *Profile) ColumnTypes() map[string]analysis.ColumnType {
	out := make(map[string]analysis.ColumnType, len(p.Cols))
	for _, c := range p.Cols {
		switch c.Kind {
		case KindNumeric:
			out[c.Name] = analysis.ColumnNumeric
		case KindDatetime:
			out[c.Name] = analysis.ColumnDatetime
		case KindCategorical:
			out[c.Name] = analysis.ColumnCategorical
		default:
			out[c.Name] = analysis.ColumnText
		}
	}
	return out
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
