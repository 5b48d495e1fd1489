package coe

import "errors"

var (
	ErrColumnOutOfRange = errors.New("spreadsheet has fewer columns than the COE layout requires")
)
