package labtest

import "errors"

var (
	ErrTestRequestNotFound = errors.New("test request not found")
	ErrAlreadyResolved     = errors.New("test request already has a result attached")
)
