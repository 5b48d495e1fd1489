package attendance

import (
	"errors"
	"fmt"
	"strings"
)

// Attendance report errors
var (
	ErrMissingColumn       = errors.New("required attendance columns not found")
	ErrNoEmployeesSelected = errors.New("select at least one employee")
	ErrRecipientRequired   = errors.New("a recipient email is required for every selected employee")
	ErrEmailNotConfigured  = errors.New("email delivery is not configured")
)

// MissingColumnError names the logical columns that could not be resolved
// against the uploaded header row.
type MissingColumnError struct {
	Columns []string
	Headers []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("could not find %s column(s) in headers [%s]",
		strings.Join(e.Columns, ", "), strings.Join(e.Headers, ", "))
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}
