package errs

import "fmt"

type SynthesisError struct {
	message string
}

func (v *SynthesisError) Error() string {
	return v.message
}

func SynthesisErrorf(format string, args ...any) *SynthesisError {
	return &SynthesisError{
		message: fmt.Sprintf(format, args...),
	}
}

var _ error = &SynthesisError{}
