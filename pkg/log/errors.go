package log

import (
	"errors"
	"fmt"
)

// ErrLogOutputRequired is used when the log output is empty.
var ErrLogOutputRequired = errors.New("a log output is required: stderr, stdout or a file path")

type invalidLogFormatError struct {
	format string
}

func (e invalidLogFormatError) Error() string {
	return fmt.Sprintf("log format %q is invalid, use text or json", e.format)
}
