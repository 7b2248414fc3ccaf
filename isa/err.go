package isa

import (
	"errors"

	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	// Execution faults
	ErrTypeMismatch      = errors.New(f("type mismatch"))
	ErrStackUnderflow    = errors.New(f("stack underflow"))
	ErrInvalidReg        = errors.New(f("register invalid"))
	ErrInvalidHeapAddr   = errors.New(f("heap address invalid"))
	ErrInvalidHeapType   = errors.New(f("heap type invalid"))
	ErrInvalidStackAddr  = errors.New(f("stack address invalid"))
	ErrDivByZero         = errors.New(f("divide by zero"))
	ErrInvalidSyscall    = errors.New(f("syscall invalid"))
	ErrInvalidSyscallArg = errors.New(f("syscall argument invalid"))
	ErrSyscall           = errors.New(f("syscall failed"))
	ErrHalt              = errors.New(f("halt"))

	// Cpu faults
	ErrInvalidCodeAddr = errors.New(f("code address invalid"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
)

// IsHalt returns true if err is the halt termination fault rather than
// a genuine error.
func IsHalt(err error) bool {
	return errors.Is(err, ErrHalt)
}

// ErrCpu promotes an execution fault to a cpu fault, recording where it
// happened.
type ErrCpu struct {
	Pc   uint64
	Inst Inst
	Err  error
}

func (err *ErrCpu) Error() string {
	return f("pc %#x '%v' %v", err.Pc, err.Inst, err.Err)
}

func (err *ErrCpu) Unwrap() error {
	return err.Err
}

// ErrFetch is a fetch fault at a code address.
type ErrFetch uint64

func (err ErrFetch) Error() string {
	return f("pc %#x %v", uint64(err), ErrInvalidCodeAddr)
}

func (err ErrFetch) Unwrap() error {
	return ErrInvalidCodeAddr
}
