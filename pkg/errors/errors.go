package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordRequired       = errors.New("configuration record is required")
	ErrConfigRequired       = errors.New("site configuration is required")
	ErrSubmitCommandEmpty   = errors.New("submit command is empty")
	ErrGPURequired          = errors.New("cluster is gpu only, but the request has no gpus")
	ErrGPUNotAllowed        = errors.New("cluster is cpu only, but the request asks for gpus")
	ErrWholeNodeIncomplete  = errors.New("whole node mode requires whole_node_cpus and whole_node_memory")
	ErrConflictingNodeKinds = errors.New("cpu_only and gpu_only are mutually exclusive")
	ErrLaunchFailed         = errors.New("failed to launch glidein")
	ErrMemPerCoreRequired   = errors.New("mem_per_core must be positive to size a request")
	ErrRequestTooLarge      = errors.New("request does not fit in an allocation")
)

// DuplicateKeyError is returned when a key appears twice in one section.
type DuplicateKeyError struct {
	Section string
	Key     string
}

// Error returns the error message.
func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q in section [%s]", e.Key, e.Section)
}

// MissingKeysError lists every required key absent from the configuration.
type MissingKeysError struct {
	Keys []string
}

// Error returns the error message.
func (e MissingKeysError) Error() string {
	return fmt.Sprintf("missing required keys: %s", strings.Join(e.Keys, ", "))
}

// InvalidValueError is returned when a value does not parse or is out of range.
type InvalidValueError struct {
	Section string
	Key     string
	Value   string
	Reason  string
}

// Error returns the error message.
func (e InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for [%s] %s: %s", e.Value, e.Section, e.Key, e.Reason)
}

func NewInvalidValue(section, key, value, reason string) error {
	return InvalidValueError{
		Section: section,
		Key:     key,
		Value:   value,
		Reason:  reason,
	}
}

type unsupportedSchedulerError struct {
	name string
}

// Error returns the error message.
func (e unsupportedSchedulerError) Error() string {
	return fmt.Sprintf("scheduler %s is not supported", e.name)
}

func NewUnsupportedScheduler(name string) error {
	return unsupportedSchedulerError{name: name}
}

type unsupportedFormatError struct {
	format string
}

// Error returns the error message.
func (e unsupportedFormatError) Error() string {
	return fmt.Sprintf("output format %s is not supported", e.format)
}

func NewUnsupportedFormat(format string) error {
	return unsupportedFormatError{format: format}
}
