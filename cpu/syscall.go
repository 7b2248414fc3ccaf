package cpu

import (
	"errors"

	"github.com/ezrec/regvm/io"
	"github.com/ezrec/regvm/isa"
)

// Standard syscall numbers of PortSyscalls.
const (
	SYSCALL_PUT_WORD  = 0 // Write U1 to the port.
	SYSCALL_PUT_FLOAT = 1 // Write F1 to the port.
	SYSCALL_GET_WORD  = 2 // Read a word from the port into U1.
	SYSCALL_GET_FLOAT = 3 // Read a float from the port into F1.
)

// PortSyscalls returns the standard syscall table, transferring U1 and
// F1 through port.
func PortSyscalls(port io.Port) []Syscall {
	get := func(tag isa.Tag) (value isa.Value, err error) {
		value, err = port.In(tag)
		if errors.Is(err, isa.ErrTypeMismatch) || errors.Is(err, io.ErrPortFormat) {
			err = errors.Join(isa.ErrInvalidSyscallArg, err)
		}
		return
	}

	return []Syscall{
		SYSCALL_PUT_WORD: func(cpu *Cpu, mem isa.Memory) error {
			return port.Out(isa.Word(cpu.U(isa.U1)))
		},
		SYSCALL_PUT_FLOAT: func(cpu *Cpu, mem isa.Memory) error {
			return port.Out(isa.Float(cpu.F(isa.F1)))
		},
		SYSCALL_GET_WORD: func(cpu *Cpu, mem isa.Memory) (err error) {
			value, err := get(isa.TagWord)
			if err != nil {
				return
			}
			w, err := value.Word()
			if err != nil {
				return
			}
			cpu.SetU(isa.U1, w)
			return
		},
		SYSCALL_GET_FLOAT: func(cpu *Cpu, mem isa.Memory) (err error) {
			value, err := get(isa.TagFloat)
			if err != nil {
				return
			}
			v, err := value.Float()
			if err != nil {
				return
			}
			cpu.SetF(isa.F1, v)
			return
		},
	}
}
