package errs

import "fmt"

type TransportError struct {
	message string
}

func (v *TransportError) Error() string {
	return v.message
}

func TransportErrorf(format string, args ...any) *TransportError {
	return &TransportError{
		message: fmt.Sprintf(format, args...),
	}
}

var _ error = &TransportError{}
