package errs

import "fmt"

type ConfigError struct {
	message string
}

func (v *ConfigError) Error() string {
	return v.message
}

func ConfigErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{
		message: fmt.Sprintf(format, args...),
	}
}

var _ error = &ConfigError{}
