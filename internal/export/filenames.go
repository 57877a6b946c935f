package export

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// SampleBaseName stands in for the original filename when sample data is exported.
const SampleBaseName = "sample_data"

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DatasetFilename returns "analyzed_<original>.<ext>". The original name is kept
// whole, extension included, so "data.csv" yields "analyzed_data.csv.csv".
func DatasetFilename(original, ext string) string {
	base := SampleBaseName
	if original != "" {
		base = safeComponent(filepath.Base(original))
	}
	return "analyzed_" + base + "." + strings.TrimPrefix(ext, ".")
}

// SummaryFilename returns "summary_<category>_<YYYY-MM-DD>.csv" using the UTC date of now.
func SummaryFilename(category string, now time.Time) string {
	return "summary_" + safeComponent(category) + "_" + now.UTC().Format(time.DateOnly) + ".csv"
}

func safeComponent(s string) string {
	s = strings.Trim(unsafeName.ReplaceAllString(s, "_"), "_")
	if s == "" || s == "." || s == ".." {
		return "unnamed"
	}
	return s
}
