package service

import "errors"

var (
	// ErrNotFound covers both "no such record" and "not owned by the caller";
	// the two are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
)

// FieldError is a validation failure on a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

func fieldErr(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

// AsFieldError unwraps err into a FieldError, if it is one.
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
