package lead

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/lead"
	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/spreadsheet"
)

type LeadServiceImpl struct {
	uploadService report.UploadService
}

func NewLeadService(uploadService report.UploadService) lead.LeadService {
	return &LeadServiceImpl{
		uploadService: uploadService,
	}
}

// Preview implements lead.LeadService.
func (s *LeadServiceImpl) Preview(ctx context.Context, req lead.PreviewRequest) (lead.Preview, error) {
	if err := req.Validate(); err != nil {
		return lead.Preview{}, err
	}

	content, err := req.ReadAll()
	if err != nil {
		return lead.Preview{}, err
	}

	grid, err := spreadsheet.Read(content, req.Filename())
	if err != nil {
		return lead.Preview{}, err
	}

	headerRow := detectHeaderRow(grid)
	table := spreadsheet.NewTable(grid, headerRow)

	// Columns without a header are spacer columns and are dropped.
	var keep []int
	columns := []string{}
	for i, h := range table.Headers {
		if h == "" {
			continue
		}
		keep = append(keep, i)
		columns = append(columns, h)
	}
	if len(columns) == 0 {
		return lead.Preview{}, lead.ErrNoNamedColumns
	}

	rows := [][]string{}
	for _, row := range table.Rows {
		if len(rows) == lead.PreviewRows {
			break
		}
		cells := make([]string, len(keep))
		for j, col := range keep {
			cells[j] = spreadsheet.Cell(row, col)
		}
		rows = append(rows, cells)
	}

	if s.uploadService != nil {
		_, err := s.uploadService.Record(ctx, report.RecordUploadRequest{
			ReportType: report.TypeLead,
			Filename:   req.Filename(),
			Content:    content,
			RowCount:   table.Len(),
		})
		if err != nil {
			slog.Warn("failed to record lead upload", "filename", req.Filename(), "error", err)
		}
	}

	return lead.Preview{
		Filename:    req.Filename(),
		HeaderRow:   headerRow + 1,
		RecordCount: table.Len(),
		Columns:     columns,
		Rows:        rows,
	}, nil
}

// detectHeaderRow returns 1 when the first cell of the first row is blank,
// which is how exports with a title line above the header look.
func detectHeaderRow(grid [][]string) int {
	if len(grid) > 1 && spreadsheet.Cell(grid[0], 0) == "" {
		return 1
	}
	return 0
}
