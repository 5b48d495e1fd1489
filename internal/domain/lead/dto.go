package lead

import "github.com/cmlabs-hris/report-dashboard/internal/domain/report"

type PreviewRequest struct {
	report.SpreadsheetFile
}

func (r *PreviewRequest) Validate() error {
	return r.SpreadsheetFile.Validate()
}
