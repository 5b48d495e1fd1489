package coe

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/coe"
	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/spreadsheet"
	"github.com/shopspring/decimal"
)

const (
	receivedLookback = 18 * 30 * 24 * time.Hour
	expiryLookahead  = 6 * 30 * 24 * time.Hour
)

type COEServiceImpl struct {
	layout        coe.Layout
	uploadService report.UploadService
	now           func() time.Time
}

// NewCOEService builds the COE report service. uploadService may be nil, in
// which case uploads are not archived. now defaults to time.Now.
func NewCOEService(layout coe.Layout, uploadService report.UploadService, now func() time.Time) coe.COEService {
	if now == nil {
		now = time.Now
	}
	return &COEServiceImpl{
		layout:        layout,
		uploadService: uploadService,
		now:           now,
	}
}

// wallClock drops the location of the current time so it compares directly
// with the zone-less dates read from the spreadsheet.
func (s *COEServiceImpl) wallClock() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), n.Hour(), n.Minute(), n.Second(), 0, time.UTC)
}

// load reads the upload, checks it is wide enough and archives it.
func (s *COEServiceImpl) load(ctx context.Context, req coe.ReportRequest, minColumns int) (spreadsheet.Table, error) {
	if err := req.Validate(); err != nil {
		return spreadsheet.Table{}, err
	}

	content, err := req.ReadAll()
	if err != nil {
		return spreadsheet.Table{}, err
	}

	grid, err := spreadsheet.Read(content, req.Filename())
	if err != nil {
		return spreadsheet.Table{}, err
	}
	table := spreadsheet.NewTable(grid, 0)

	if len(table.Headers) < minColumns {
		return spreadsheet.Table{}, fmt.Errorf("%w: need %d, found %d",
			coe.ErrColumnOutOfRange, minColumns, len(table.Headers))
	}

	s.record(ctx, req.Filename(), content, table.Len())
	return table, nil
}

func (s *COEServiceImpl) record(ctx context.Context, filename string, content []byte, rows int) {
	if s.uploadService == nil {
		return
	}
	_, err := s.uploadService.Record(ctx, report.RecordUploadRequest{
		ReportType: report.TypeCOE,
		Filename:   filename,
		Content:    content,
		RowCount:   rows,
	})
	if err != nil {
		slog.Warn("failed to record COE upload", "filename", filename, "error", err)
	}
}

func (s *COEServiceImpl) parseRecords(table spreadsheet.Table) []coe.Record {
	records := make([]coe.Record, 0, table.Len())
	for _, row := range table.Rows {
		r := coe.Record{
			Cells:      row,
			Type:       spreadsheet.Cell(row, s.layout.Type),
			Consultant: spreadsheet.Cell(row, s.layout.Consultant),
			NetSales:   parseSales(spreadsheet.Cell(row, s.layout.NetSales)),
		}
		if t, ok := spreadsheet.ParseDateTime(spreadsheet.Cell(row, s.layout.Received), false); ok {
			r.Received = &t
		}
		if t, ok := spreadsheet.ParseDateTime(spreadsheet.Cell(row, s.layout.End), false); ok {
			r.End = &t
		}
		records = append(records, r)
	}
	return records
}

// parseSales reads a net sales cell; anything unreadable counts as zero.
func parseSales(value string) decimal.Decimal {
	d, err := decimal.NewFromString(spreadsheet.CleanNumeric(value))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (s *COEServiceImpl) outputWidth(headers []string) int {
	if s.layout.OutputColumns < len(headers) {
		return s.layout.OutputColumns
	}
	return len(headers)
}

// ========================================
// EXPIRY ANALYSIS
// ========================================

// GenerateExpiryReport implements coe.COEService.
func (s *COEServiceImpl) GenerateExpiryReport(ctx context.Context, req coe.ReportRequest) (coe.ExpiryReport, error) {
	table, err := s.load(ctx, req, s.layout.ExpiryColumns())
	if err != nil {
		return coe.ExpiryReport{}, err
	}
	return s.buildExpiryReport(req.Filename(), table), nil
}

func (s *COEServiceImpl) buildExpiryReport(filename string, table spreadsheet.Table) coe.ExpiryReport {
	now := s.wallClock()
	received := coe.Window{From: now.Add(-receivedLookback), To: now}
	expiring := coe.Window{From: now, To: now.Add(expiryLookahead)}

	width := s.outputWidth(table.Headers)
	rep := coe.ExpiryReport{
		GeneratedAt:  s.now().Format(time.RFC3339),
		Filename:     filename,
		TotalRows:    table.Len(),
		ReceivedFrom: received.From.Format("2006-01-02"),
		ReceivedTo:   received.To.Format("2006-01-02"),
		ExpiringFrom: expiring.From.Format("2006-01-02"),
		ExpiringTo:   expiring.To.Format("2006-01-02"),
		Headers:      table.Headers[:width],
		Received:     [][]string{},
		Expiring:     [][]string{},
	}

	for _, r := range s.parseRecords(table) {
		if received.Contains(r.Received) {
			rep.Received = append(rep.Received, spreadsheet.Slice(r.Cells, 0, width))
		}
		if expiring.Contains(r.End) {
			rep.Expiring = append(rep.Expiring, spreadsheet.Slice(r.Cells, 0, width))
		}
	}
	rep.ReceivedCount = len(rep.Received)
	rep.ExpiringCount = len(rep.Expiring)
	return rep
}

// ExportExpiryReport implements coe.COEService.
func (s *COEServiceImpl) ExportExpiryReport(ctx context.Context, req coe.ReportRequest) (report.ExportFile, error) {
	rep, err := s.GenerateExpiryReport(ctx, req)
	if err != nil {
		return report.ExportFile{}, err
	}

	wb, err := spreadsheet.NewWorkbook()
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to create workbook: %w", err)
	}
	defer wb.Close()

	if err := wb.AddSheet("COE Received 18M", rep.Headers, spreadsheet.StringRows(rep.Received)); err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to write received sheet: %w", err)
	}
	if err := wb.AddSheet("COE Expiring 6M", rep.Headers, spreadsheet.StringRows(rep.Expiring)); err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to write expiring sheet: %w", err)
	}

	content, err := wb.Bytes()
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to serialise workbook: %w", err)
	}

	return report.ExportFile{
		Filename:    fmt.Sprintf("COE_Expiry_Report_%s.xlsx", s.now().Format("2006-01-02")),
		ContentType: spreadsheet.ContentTypeXLSX,
		Content:     content,
	}, nil
}

// ========================================
// CURRENT MONTH SALES
// ========================================

// GenerateSalesReport implements coe.COEService.
func (s *COEServiceImpl) GenerateSalesReport(ctx context.Context, req coe.ReportRequest) (coe.SalesReport, error) {
	table, err := s.load(ctx, req, s.layout.SalesColumns())
	if err != nil {
		return coe.SalesReport{}, err
	}
	return s.buildSalesReport(req.Filename(), table), nil
}

func (s *COEServiceImpl) buildSalesReport(filename string, table spreadsheet.Table) coe.SalesReport {
	now := s.wallClock()
	month := coe.Window{
		From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		To:   now,
	}

	rep := coe.SalesReport{
		GeneratedAt: s.now().Format(time.RFC3339),
		Filename:    filename,
		PeriodStart: month.From.Format("2006-01-02"),
		PeriodEnd:   month.To.Format("2006-01-02"),
		PeriodLabel: now.Format("January 2006"),
		Types:       []string{},
		Rows:        []coe.ConsultantSales{},
		TotalGross:  decimal.Zero,
		RawHeaders:  table.Headers,
		Raw:         [][]string{},
	}

	byConsultant := make(map[string]*coe.ConsultantSales)
	types := make(map[string]struct{})

	for _, r := range s.parseRecords(table) {
		if !month.Contains(r.Received) {
			continue
		}
		rep.Raw = append(rep.Raw, spreadsheet.Slice(r.Cells, 0, len(table.Headers)))

		consultant := labelOrUnknown(r.Consultant)
		coeType := labelOrUnknown(r.Type)
		types[coeType] = struct{}{}

		cs, ok := byConsultant[consultant]
		if !ok {
			cs = &coe.ConsultantSales{
				Consultant: consultant,
				Gross:      decimal.Zero,
				ByType:     make(map[string]coe.TypeSales),
			}
			byConsultant[consultant] = cs
		}
		cs.Count++
		cs.Gross = cs.Gross.Add(r.NetSales)

		ts := cs.ByType[coeType]
		ts.Count++
		ts.Gross = ts.Gross.Add(r.NetSales)
		cs.ByType[coeType] = ts

		rep.TotalCount++
		rep.TotalGross = rep.TotalGross.Add(r.NetSales)
	}

	for t := range types {
		rep.Types = append(rep.Types, t)
	}
	sort.Strings(rep.Types)

	for _, cs := range byConsultant {
		for _, t := range rep.Types {
			if _, ok := cs.ByType[t]; !ok {
				cs.ByType[t] = coe.TypeSales{Gross: decimal.Zero}
			}
		}
		rep.Rows = append(rep.Rows, *cs)
	}
	sort.Slice(rep.Rows, func(i, j int) bool { return rep.Rows[i].Consultant < rep.Rows[j].Consultant })

	return rep
}

func labelOrUnknown(v string) string {
	if v == "" {
		return coe.UnknownLabel
	}
	return v
}

// ExportSalesReport implements coe.COEService.
func (s *COEServiceImpl) ExportSalesReport(ctx context.Context, req coe.ReportRequest) (report.ExportFile, error) {
	rep, err := s.GenerateSalesReport(ctx, req)
	if err != nil {
		return report.ExportFile{}, err
	}

	headers := []string{"Sales Team", "Total No of CoE", "Total Gross Sales"}
	for _, t := range rep.Types {
		headers = append(headers, t+"_No", t+"_Sales")
	}

	rows := make([][]interface{}, 0, len(rep.Rows))
	for _, cs := range rep.Rows {
		row := []interface{}{cs.Consultant, cs.Count, cs.Gross.InexactFloat64()}
		for _, t := range rep.Types {
			ts := cs.ByType[t]
			row = append(row, ts.Count, ts.Gross.InexactFloat64())
		}
		rows = append(rows, row)
	}

	wb, err := spreadsheet.NewWorkbook()
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to create workbook: %w", err)
	}
	defer wb.Close()

	if err := wb.AddSheet("Current Month Sales", headers, rows); err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to write sales sheet: %w", err)
	}
	if err := wb.AddSheet("Raw Data", rep.RawHeaders, spreadsheet.StringRows(rep.Raw)); err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to write raw data sheet: %w", err)
	}

	content, err := wb.Bytes()
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to serialise workbook: %w", err)
	}

	return report.ExportFile{
		Filename:    fmt.Sprintf("COE_Sales_%s.xlsx", s.wallClock().Format("January_2006")),
		ContentType: spreadsheet.ContentTypeXLSX,
		Content:     content,
	}, nil
}
