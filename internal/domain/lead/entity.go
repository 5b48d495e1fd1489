package lead

// PreviewRows is the number of data rows returned with a preview.
const PreviewRows = 5

// Preview describes an uploaded lead sheet: where its header was found, which
// named columns it carries and its first rows.
type Preview struct {
	Filename    string     `json:"filename"`
	HeaderRow   int        `json:"header_row"`
	RecordCount int        `json:"record_count"`
	Columns     []string   `json:"columns"`
	Rows        [][]string `json:"rows"`
}
