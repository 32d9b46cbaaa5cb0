package report

import "errors"

var (
	ErrReportNotFound = errors.New("medical report not found")
	ErrInvalidStatus  = errors.New("invalid report status")
)
