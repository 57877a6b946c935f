package dashboard

import (
	"fmt"
	"slices"
	"sort"

	"github.com/KaramelBytes/datadash-cli/internal/analysis"
)

// ChartKind is one of the chart types the dashboard can plan.
type ChartKind string

const (
	ChartBar     ChartKind = "bar"
	ChartLine    ChartKind = "line"
	ChartScatter ChartKind = "scatter"
	ChartPie     ChartKind = "pie"
	ChartTime    ChartKind = "time"
)

// ChartKinds lists the supported kinds in menu order.
var ChartKinds = []ChartKind{ChartBar, ChartLine, ChartScatter, ChartPie, ChartTime}

// AxisSuggestion buckets columns for the chart controls and proposes defaults.
type AxisSuggestion struct {
	Numeric     []string  `json:"numeric"`
	Datetime    []string  `json:"datetime"`
	Categorical []string  `json:"categorical"`
	GroupBy     string    `json:"group_by,omitempty"`
	X           string    `json:"x,omitempty"`
	Y           string    `json:"y,omitempty"`
	Kind        ChartKind `json:"kind,omitempty"`
}

// SuggestAxes buckets columns by type. Columns without a type count as
// categorical; temporal and text columns are not offered as axes.
func SuggestAxes(columns []string, types map[string]analysis.ColumnType) AxisSuggestion {
	s := AxisSuggestion{Numeric: []string{}, Datetime: []string{}, Categorical: []string{}}
	for _, col := range columns {
		t, ok := types[col]
		if !ok || t == "" {
			t = analysis.ColumnCategorical
		}
		switch t {
		case analysis.ColumnNumeric:
			s.Numeric = append(s.Numeric, col)
		case analysis.ColumnDatetime:
			s.Datetime = append(s.Datetime, col)
		case analysis.ColumnCategorical:
			s.Categorical = append(s.Categorical, col)
		}
	}
	if len(s.Categorical) > 0 {
		s.GroupBy = s.Categorical[0]
	}
	switch {
	case len(s.Datetime) > 0:
		s.X = s.Datetime[0]
	case len(s.Categorical) > 0:
		s.X = s.Categorical[0]
	}
	if len(s.Numeric) > 0 {
		s.Y = s.Numeric[0]
	}
	switch {
	case len(s.Datetime) > 0 && len(s.Numeric) > 0:
		s.Kind = ChartLine
	case len(s.Categorical) > 0 && len(s.Numeric) > 0:
		s.Kind = ChartBar
	case len(s.Numeric) > 1:
		s.Kind = ChartScatter
	}
	return s
}

// ChartRequest is a user's chart selection.
type ChartRequest struct {
	Kind    ChartKind `json:"kind"`
	X       string    `json:"x"`
	Y       string    `json:"y"`
	GroupBy string    `json:"group_by,omitempty"`
}

// ChartPlan is a validated chart request.
type ChartPlan struct {
	ChartRequest
	Message string `json:"message"`
}

// PlanChart validates req against the available columns. An empty kind defaults to bar.
func PlanChart(req ChartRequest, columns []string) (*ChartPlan, error) {
	if req.X == "" || req.Y == "" {
		return nil, &InputError{Reason: "Please select both X and Y axes for the chart"}
	}
	if req.Kind == "" {
		req.Kind = ChartBar
	}
	if !slices.Contains(ChartKinds, req.Kind) {
		return nil, &InputError{Reason: fmt.Sprintf("unsupported chart type %q", req.Kind)}
	}
	for _, col := range []string{req.X, req.Y, req.GroupBy} {
		if col != "" && !slices.Contains(columns, col) {
			return nil, &InputError{Reason: fmt.Sprintf("unknown column %q", col)}
		}
	}
	return &ChartPlan{
		ChartRequest: req,
		Message:      fmt.Sprintf("Custom %s chart generated for X: %s, Y: %s", req.Kind, req.X, req.Y),
	}, nil
}

// viewColumns returns the preview columns followed by typed columns missing from
// the preview, in name order.
func viewColumns(res *analysis.Result) []string {
	cols := res.Columns()
	var extra []string
	for col := range res.ColumnTypes {
		if !slices.Contains(cols, col) {
			extra = append(extra, col)
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

// SuggestAxes applies SuggestAxes to the effective view.
func (s *Session) SuggestAxes() AxisSuggestion {
	v := s.View()
	return SuggestAxes(v.Result.Columns(), v.Result.ColumnTypes)
}

// PlanChart validates req against the effective view and records the outcome as a notice.
func (s *Session) PlanChart(req ChartRequest) (*ChartPlan, error) {
	v := s.View()
	plan, err := PlanChart(req, viewColumns(v.Result))
	if err != nil {
		return nil, s.fail(err)
	}
	s.addNotice(SeveritySuccess, plan.Message)
	return plan, nil
}
