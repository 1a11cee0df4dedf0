package services

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrAgencyInUse      = errors.New("agency is used by tours")
	ErrDuplicateName    = errors.New("category already exists")
	ErrUnknownAgency    = errors.New("unknown agency")
	ErrInvalidMonthSpan = errors.New("month count must be positive")
)

// ValidationError marks input rejected by form rules, as opposed to a
// missing record or a storage failure.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Err: err}
}

// IsValidation reports whether err came from input validation.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
