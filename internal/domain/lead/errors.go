package lead

import "errors"

var (
	ErrNoNamedColumns = errors.New("lead sheet has no named columns")
)
