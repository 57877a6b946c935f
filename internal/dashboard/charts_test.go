package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datadash-cli/internal/analysis"
	"github.com/KaramelBytes/datadash-cli/internal/health"
)

func TestSuggestAxes(t *testing.T) {
	cols := []string{"when", "label", "team", "score", "note", "clock", "shots"}
	types := map[string]analysis.ColumnType{
		"when":  analysis.ColumnDatetime,
		"team":  analysis.ColumnCategorical,
		"score": analysis.ColumnNumeric,
		"note":  analysis.ColumnText,
		"clock": analysis.ColumnTemporal,
		"shots": analysis.ColumnNumeric,
	}
	s := SuggestAxes(cols, types)
	assert.Equal(t, []string{"score", "shots"}, s.Numeric)
	assert.Equal(t, []string{"when"}, s.Datetime)
	assert.Equal(t, []string{"label", "team"}, s.Categorical)
	assert.Equal(t, "label", s.GroupBy)
	assert.Equal(t, "when", s.X)
	assert.Equal(t, "score", s.Y)
	assert.Equal(t, ChartLine, s.Kind)
}

func TestSuggestAxes_Fallbacks(t *testing.T) {
	s := SuggestAxes([]string{"a", "b"}, map[string]analysis.ColumnType{"b": analysis.ColumnNumeric})
	assert.Equal(t, "a", s.X)
	assert.Equal(t, "b", s.Y)
	assert.Equal(t, ChartBar, s.Kind)

	s = SuggestAxes([]string{"x", "y"}, map[string]analysis.ColumnType{"x": analysis.ColumnNumeric, "y": analysis.ColumnNumeric})
	assert.Empty(t, s.X)
	assert.Empty(t, s.GroupBy)
	assert.Equal(t, ChartScatter, s.Kind)

	s = SuggestAxes([]string{"id", "notes", "team"}, map[string]analysis.ColumnType{
		"id":    analysis.ColumnNumeric,
		"notes": analysis.ColumnEmpty,
		"team":  "geometry",
	})
	assert.Equal(t, []string{"id"}, s.Numeric)
	assert.Empty(t, s.Categorical)
	assert.Empty(t, s.X)

	s = SuggestAxes(nil, nil)
	assert.Empty(t, s.Kind)
	assert.NotNil(t, s.Numeric)
}

func TestPlanChart(t *testing.T) {
	cols := []string{"a", "b", "g"}

	_, err := PlanChart(ChartRequest{Kind: ChartBar, X: "a"}, cols)
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "Please select both X and Y axes for the chart", ie.Reason)

	_, err = PlanChart(ChartRequest{Kind: "radar", X: "a", Y: "b"}, cols)
	require.ErrorAs(t, err, &ie)

	_, err = PlanChart(ChartRequest{X: "a", Y: "zzz"}, cols)
	require.ErrorAs(t, err, &ie)

	plan, err := PlanChart(ChartRequest{X: "a", Y: "b", GroupBy: "g"}, cols)
	require.NoError(t, err)
	assert.Equal(t, ChartBar, plan.Kind)
	assert.Equal(t, "Custom bar chart generated for X: a, Y: b", plan.Message)
}

func TestSessionCharts_OnSample(t *testing.T) {
	s := NewSession(&fakeAnalyzer{}, staticGate(health.StateOnline))
	sug := s.SuggestAxes()
	assert.Equal(t, "visiting_team_score", sug.Y)
	assert.Equal(t, "team_indicator", sug.X)
	assert.Equal(t, ChartBar, sug.Kind)

	plan, err := s.PlanChart(ChartRequest{Kind: ChartLine, X: "clock", Y: "period"})
	require.NoError(t, err)
	assert.Equal(t, ChartLine, plan.Kind)
	assert.Equal(t, SeveritySuccess, lastNotice(t, s).Severity)

	_, err = s.PlanChart(ChartRequest{Kind: ChartLine, X: "clock"})
	require.Error(t, err)
	assert.Equal(t, SeverityWarning, lastNotice(t, s).Severity)
}
