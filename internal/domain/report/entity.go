package report

import "time"

// Type identifies which dashboard page processed an upload.
type Type string

const (
	TypeLead       Type = "lead"
	TypeCOE        Type = "coe"
	TypeAttendance Type = "attendance"
)

func (t Type) Valid() bool {
	switch t {
	case TypeLead, TypeCOE, TypeAttendance:
		return true
	}
	return false
}

// Upload is one processed spreadsheet, kept for audit and re-download.
type Upload struct {
	ID          string
	ReportType  Type
	Filename    string
	StoredPath  string
	SizeBytes   int64
	RowCount    int
	DroppedRows int
	CreatedAt   time.Time
}
