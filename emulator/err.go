package emulator

import (
	"errors"

	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	ErrStepLimit = errors.New(f("step limit exceeded"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc  uint64
	Err error
}

func (err *ErrRuntime) Error() string {
	return f("runtime %v", err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
