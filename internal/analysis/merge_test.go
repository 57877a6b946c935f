package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_OverlaysLogAndTypes(t *testing.T) {
	sample := Sample()
	actual := &Result{
		Preview:     []*Record{NewRecord("x", "Unknown")},
		CleaningLog: []CleaningStep{{"step": "initial", "rows": float64(1)}},
		ColumnTypes: map[string]ColumnType{"x": ColumnText},
	}

	merged := Merge(sample, actual)

	assert.Equal(t, actual.CleaningLog, merged.CleaningLog)
	assert.Equal(t, actual.ColumnTypes, merged.ColumnTypes)
	assert.Equal(t, sample.Columns(), merged.Columns())
	assert.Len(t, merged.Preview, len(sample.Preview))
	assert.Equal(t, SectionKeys(sample.Summary()), SectionKeys(merged.Summary()))
	assert.Equal(t, SectionKeys(sample.Visualizations), SectionKeys(merged.Visualizations))
}

func TestMerge_KeepsSampleWhenRealIsEmpty(t *testing.T) {
	sample := Sample()

	merged := Merge(sample, &Result{})
	assert.Equal(t, sample.CleaningLog, merged.CleaningLog)
	assert.Equal(t, sample.ColumnTypes, merged.ColumnTypes)

	merged = Merge(sample, nil)
	assert.Equal(t, sample.ColumnTypes, merged.ColumnTypes)
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	sample := Sample()
	actual := &Result{ColumnTypes: map[string]ColumnType{"x": ColumnText}}

	merged := Merge(sample, actual)
	merged.ColumnTypes["x"] = ColumnNumeric
	merged.Preview[0].Set("clock", "changed")

	assert.Equal(t, ColumnText, actual.ColumnTypes["x"])
	v, _ := sample.Preview[0].Get("clock")
	assert.Equal(t, "0:00", v)
}

func TestSample_IsUsableAndIsolated(t *testing.T) {
	a := Sample()
	require.Len(t, a.Preview, 16)
	assert.True(t, a.Usable())
	assert.True(t, TableUsable(a.Preview))
	assert.Equal(t,
		[]string{"numeric", "categorical", "temporal", "statistical", "performance"},
		SectionKeys(a.Summary()))
	assert.Equal(t, ColumnTemporal, a.ColumnTypes["clock"])

	a.Preview = nil
	b := Sample()
	assert.Len(t, b.Preview, 16)
}
