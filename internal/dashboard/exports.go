package dashboard

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/datadash-cli/internal/export"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Download is a produced file that has not been written anywhere yet.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportCSV serializes the effective preview.
func (s *Session) ExportCSV() (*Download, error) {
	v := s.View()
	body, err := export.ToCSV(v.Result.Preview)
	if err != nil {
		return nil, s.exportFailed(&SerializationError{Format: "csv", Err: err}, "Error downloading CSV: "+err.Error())
	}
	s.addNotice(SeveritySuccess, "CSV downloaded successfully!")
	return &Download{
		Filename:    export.DatasetFilename(v.Filename, "csv"),
		ContentType: ContentTypeCSV,
		Body:        []byte(body),
	}, nil
}

// ExportSummary serializes one summary category of the effective view.
func (s *Session) ExportSummary(category string) (*Download, error) {
	v := s.View()
	body, err := export.SummaryToCSV(v.Result.Summary(), category)
	if err != nil {
		return nil, s.exportFailed(&SerializationError{Format: "summary " + category, Err: err},
			fmt.Sprintf("Cannot download summary for %s", category))
	}
	s.addNotice(SeveritySuccess, fmt.Sprintf("%s summary downloaded successfully!", category))
	return &Download{
		Filename:    export.SummaryFilename(category, s.now()),
		ContentType: ContentTypeCSV,
		Body:        []byte(body),
	}, nil
}

// ExportXLSX writes the effective preview as a workbook.
func (s *Session) ExportXLSX() (*Download, error) {
	v := s.View()
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, v.Result.Preview); err != nil {
		return nil, s.exportFailed(&SerializationError{Format: "xlsx", Err: err}, "Error downloading XLSX: "+err.Error())
	}
	s.addNotice(SeveritySuccess, "XLSX downloaded successfully!")
	return &Download{
		Filename:    export.DatasetFilename(v.Filename, "xlsx"),
		ContentType: ContentTypeXLSX,
		Body:        buf.Bytes(),
	}, nil
}

func (s *Session) exportFailed(err *SerializationError, msg string) error {
	s.addNotice(SeverityError, msg)
	return err
}
