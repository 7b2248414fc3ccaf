package config

import (
	"errors"

	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	ErrConfig       = errors.New(f("invalid configuration"))
	ErrStepLimit    = errors.New(f("step-limit must not be negative"))
	ErrPortKind     = errors.New(f("unknown port kind"))
	ErrPortCapacity = errors.New(f("queue capacity must be positive"))
	ErrPortAddr     = errors.New(f("duplicate port address"))
)

// ErrPort locates an invalid [[port]] entry.
type ErrPort struct {
	Index int
	Err   error
}

func (err *ErrPort) Error() string {
	return f("port %d: %v", err.Index, err.Err)
}

func (err *ErrPort) Unwrap() []error {
	return []error{ErrConfig, err.Err}
}

// ErrUnknownKey lists keys the configuration does not define.
type ErrUnknownKey struct {
	Keys string
}

func (err *ErrUnknownKey) Error() string {
	return f("unknown keys: %v", err.Keys)
}

func (err *ErrUnknownKey) Unwrap() error {
	return ErrConfig
}
