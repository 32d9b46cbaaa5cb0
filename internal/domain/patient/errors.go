package patient

import "errors"

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrPatientAlreadyExists = errors.New("patient with this email already exists")
	ErrPatientInactive      = errors.New("operation not permitted: patient is inactive")
	ErrInvalidGender        = errors.New("invalid gender value")
)
