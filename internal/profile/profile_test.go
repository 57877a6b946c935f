package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datadash-cli/internal/analysis"
	"github.com/KaramelBytes/datadash-cli/internal/export"
)

var matchCSV = strings.Join([]string{
	"clock,team,score,note,kickoff",
	"0:00,Away,1,first half,2024-09-01",
	"16:50,Home,2,,2024-09-01",
	"20:10,Home,3,Unknown,2024-09-02",
	"45:00,Away,4,long note here,2024-09-02",
	"",
}, "\n")

func TestPreflight_InfersKindsAndStats(t *testing.T) {
	p, err := Preflight("match.csv", []byte(matchCSV), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "match.csv", p.Name)
	assert.Equal(t, ',', p.Delimiter)
	assert.Equal(t, 4, p.Rows)
	require.Len(t, p.Cols, 5)

	kinds := map[string]Kind{}
	for _, c := range p.Cols {
		kinds[c.Name] = c.Kind
	}
	assert.Equal(t, KindDatetime, kinds["clock"])
	assert.Equal(t, KindCategorical, kinds["team"])
	assert.Equal(t, KindNumeric, kinds["score"])
	assert.Equal(t, KindDatetime, kinds["kickoff"])

	score := p.Cols[2].Numeric
	require.NotNil(t, score)
	assert.Equal(t, 4, score.Count)
	assert.InDelta(t, 2.5, score.Mean, 1e-9)
	assert.InDelta(t, 1.2909944, score.Std, 1e-6)
	assert.InDelta(t, 1.75, score.Q25, 1e-9)
	assert.InDelta(t, 2.5, score.Median, 1e-9)
	assert.InDelta(t, 3.25, score.Q75, 1e-9)
	assert.Equal(t, 1.0, score.Min)
	assert.Equal(t, 4.0, score.Max)

	note := p.Cols[3]
	assert.Equal(t, 2, note.Missing)
	assert.Equal(t, 2, note.NonNull)

	types := p.ColumnTypes()
	assert.Equal(t, analysis.ColumnNumeric, types["score"])
	assert.Equal(t, analysis.ColumnDatetime, types["clock"])
}

func TestPreflight_SniffsDelimiterAndLocale(t *testing.T) {
	data := "Group;Concentration;Score\nA;0,5;1.000,5\nB;0,7;2.000,0\n"
	p, err := Preflight("lab.csv", []byte(data), Options{})
	require.NoError(t, err)
	assert.Equal(t, ';', p.Delimiter)
	require.Len(t, p.Cols, 3)
	require.NotNil(t, p.Cols[1].Numeric)
	assert.InDelta(t, 0.6, p.Cols[1].Numeric.Mean, 1e-9)
	assert.InDelta(t, 1500.25, p.Cols[2].Numeric.Mean, 1e-9)
}

func TestPreflight_TSVByName(t *testing.T) {
	p, err := Preflight("data.tsv", []byte("a\tb\n1\t2\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, '\t', p.Delimiter)
	assert.Contains(t, p.Markdown(), "Delimiter: tab")
}

func TestPreflight_Rejects(t *testing.T) {
	_, err := Preflight("empty.csv", nil, Options{})
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = Preflight("blank.csv", []byte(" , \n"), Options{})
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = Preflight("header.csv", []byte("a,b\n"), Options{})
	assert.ErrorIs(t, err, ErrNoRows)

	_, err = Preflight("blanks.csv", []byte("a,b\n,\n , \n"), Options{})
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestPreflight_StrayQuotesReadLiterally(t *testing.T) {
	p, err := Preflight("players.csv", []byte("name,height\nBob,5'10\"\nAna,5'6\"\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Rows)
	require.NotEmpty(t, p.Samples)
	assert.Equal(t, []string{"Bob", `5'10"`}, p.Samples[0])
}

func TestPreflight_MaxRowsWarning(t *testing.T) {
	p, err := Preflight("m.csv", []byte(matchCSV), Options{MaxRows: 2, SampleRows: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, p.Rows)
	assert.Equal(t, 2, p.Processed)
	assert.Len(t, p.Samples, 1)
	require.Len(t, p.Warnings, 1)
	assert.Contains(t, p.Markdown(), "processed only 2/4 rows")
}

func TestProfileSummary_ExportsLikeBackend(t *testing.T) {
	p, err := Preflight("match.csv", []byte(matchCSV), DefaultOptions())
	require.NoError(t, err)
	summary, err := p.Summary()
	require.NoError(t, err)
	assert.Equal(t, []string{"numeric", "dataset_info"}, analysis.SectionKeys(summary))

	out, err := export.SummaryToCSV(summary, "numeric")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Statistic,score",
		"count,4",
		"mean,2.5",
		"std,1.2909944487358056",
		"min,1",
		"25%,1.75",
		"50%,2.5",
		"75%,3.25",
		"max,4",
	}, "\n"), out)

	info, err := export.SummaryToCSV(summary, "dataset_info")
	require.NoError(t, err)
	assert.Equal(t, "Key,Value\nrows,4\ncolumns,5\ndelimiter,\",\"", info)
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{"3.5%", 3.5, true},
		{"1,000.25", 1000.25, true},
		{"1.000,25", 1000.25, true},
		{"0,5", 0.5, true},
		{"1e3", 1000, true},
		{"0-0", 0, false},
		{"abc", 0, false},
		{"%", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseNumeric(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, tt.in)
		}
	}
}
