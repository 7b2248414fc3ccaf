package cpu

import (
	"errors"
	"fmt"
	"log"
	"math/bits"

	"github.com/ezrec/regvm/isa"
)

// Syscall is a host function invoked by the SysCall instruction.
// Arguments and results are passed in registers or on the stack, by
// whatever convention the host function documents.
type Syscall func(cpu *Cpu, mem isa.Memory) error

// Cpu is the register file and execution unit of the machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Ip       uint64                     // Program counter.
	Base     uint64                     // Base pointer of the current frame.
	Status   isa.Flags                  // Status flags.
	Register [isa.RegisterCount]uint64  // Word register bank.
	Float    [isa.RegisterCount]float64 // Float register bank.

	Ticks int // Instructions retired.

	Syscalls []Syscall // Host syscall table, indexed by SysCall.
}

var _ isa.Executor = (*Cpu)(nil)

// NewCpu creates a new CPU with a syscall table.
func NewCpu(syscalls ...Syscall) (cpu *Cpu) {
	cpu = &Cpu{
		Syscalls: syscalls,
	}

	return
}

// Reset the CPU state.
// - Clears both register banks and the flags.
// - Zeros the program counter, base pointer and tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	clear(cpu.Float[:])
	cpu.Ip = 0
	cpu.Base = 0
	cpu.Status = 0
	cpu.Ticks = 0
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %#x\n", "ip", cpu.Ip)
	text += fmt.Sprintf("% 5s: %#x\n", "bp", cpu.Base)
	text += fmt.Sprintf("% 5s: %v\n", "flags", cpu.Status)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5s: %08X_%08X\n", isa.UReg(n), val>>32, val&0xffffffff)
	}
	for n, val := range cpu.Float {
		text += fmt.Sprintf("% 5s: %g\n", isa.FReg(n), val)
	}

	return
}

// U returns the value of a word register.
func (cpu *Cpu) U(reg isa.UReg) uint64 {
	return cpu.Register[reg]
}

// SetU sets a word register.
func (cpu *Cpu) SetU(reg isa.UReg, value uint64) {
	cpu.Register[reg] = value
}

// URef returns a pointer to a word register, for in-place updates.
func (cpu *Cpu) URef(reg isa.UReg) *uint64 {
	return &cpu.Register[reg]
}

// F returns the value of a float register.
func (cpu *Cpu) F(reg isa.FReg) float64 {
	return cpu.Float[reg]
}

// SetF sets a float register.
func (cpu *Cpu) SetF(reg isa.FReg, value float64) {
	cpu.Float[reg] = value
}

// FRef returns a pointer to a float register, for in-place updates.
func (cpu *Cpu) FRef(reg isa.FReg) *float64 {
	return &cpu.Float[reg]
}

// Pc returns the program counter.
func (cpu *Cpu) Pc() uint64 {
	return cpu.Ip
}

// SetPc sets the program counter. An out of range pc faults on the
// next fetch, not here.
func (cpu *Cpu) SetPc(pc uint64) {
	cpu.Ip = pc
}

// Bp returns the base pointer of the current frame.
func (cpu *Cpu) Bp() uint64 {
	return cpu.Base
}

// SetBp sets the base pointer.
func (cpu *Cpu) SetBp(bp uint64) {
	cpu.Base = bp
}

// Flags returns the status flags.
func (cpu *Cpu) Flags() isa.Flags {
	return cpu.Status
}

// SetFlags replaces the status flags.
func (cpu *Cpu) SetFlags(flags isa.Flags) {
	cpu.Status = flags
}

// Execute executes a single decoded instruction.
//
// Every check that can fault happens before a register, flag or the
// program counter is written, so a faulting instruction leaves the
// register file as it was.
func (cpu *Cpu) Execute(inst isa.Inst, mem isa.Memory) (err error) {
	if cpu.Verbose {
		log.Printf("%04x: %v", cpu.Ip, inst)
		defer func() {
			if err != nil && !isa.IsHalt(err) {
				log.Printf("%04x: %v", cpu.Ip, err)
			}
		}()
	}

	err = inst.Validate()
	if err != nil {
		return
	}

	next_ip := cpu.Ip + 1

	u := func(n int) uint64 { return cpu.Register[inst.UR(n)] }
	d := func(n int) float64 { return cpu.Float[inst.FR(n)] }
	setU := func(value uint64) { cpu.Register[inst.UR(0)] = value }
	setD := func(value float64) { cpu.Float[inst.FR(0)] = value }
	overflow := func(carry bool) { cpu.Status = cpu.Status.With(isa.FlagOverflow, carry) }

	switch inst.Op {
	case isa.OP_NOP:
		// pass
	case isa.OP_HALT:
		err = isa.ErrHalt
		return
	case isa.OP_MU:
		imm, _ := inst.Imm.Word()
		setU(imm)
	case isa.OP_MD:
		imm, _ := inst.Imm.Float()
		setD(imm)
	case isa.OP_MOVU:
		setU(u(1))
	case isa.OP_MOVD:
		setD(d(1))
	case isa.OP_MOD, isa.OP_DIVU:
		a, b := u(1), u(2)
		if b == 0 {
			err = isa.ErrDivByZero
			return
		}
		if inst.Op == isa.OP_MOD {
			setU(a % b)
		} else {
			setU(a / b)
		}
		overflow(false)
	case isa.OP_ADDU:
		sum, carry := bits.Add64(u(1), u(2), 0)
		setU(sum)
		overflow(carry != 0)
	case isa.OP_ADDUI:
		imm, _ := inst.Imm.Word()
		sum, carry := bits.Add64(u(0), imm, 0)
		setU(sum)
		overflow(carry != 0)
	case isa.OP_SUBU:
		diff, borrow := bits.Sub64(u(1), u(2), 0)
		setU(diff)
		overflow(borrow != 0)
	case isa.OP_SUBUI:
		imm, _ := inst.Imm.Word()
		diff, borrow := bits.Sub64(u(0), imm, 0)
		setU(diff)
		overflow(borrow != 0)
	case isa.OP_MULU:
		hi, lo := bits.Mul64(u(1), u(2))
		setU(lo)
		overflow(hi != 0)
	case isa.OP_ADDD:
		setD(d(1) + d(2))
	case isa.OP_ADDDI:
		imm, _ := inst.Imm.Float()
		setD(d(0) + imm)
	case isa.OP_SUBD:
		setD(d(1) - d(2))
	case isa.OP_SUBDI:
		imm, _ := inst.Imm.Float()
		setD(d(0) - imm)
	case isa.OP_MULD:
		setD(d(1) * d(2))
	case isa.OP_DIVD:
		// IEEE-754: x/0 is ±Inf or NaN, never a fault.
		setD(d(1) / d(2))
	case isa.OP_AND:
		setU(u(1) & u(2))
	case isa.OP_OR:
		setU(u(1) | u(2))
	case isa.OP_XOR:
		setU(u(1) ^ u(2))
	case isa.OP_NOT:
		setU(^u(1))
	case isa.OP_NEGU:
		setU(-u(1))
	case isa.OP_NEGD:
		setD(-d(1))
	case isa.OP_SHL:
		setU(u(0) << u(1))
	case isa.OP_SHR:
		setU(u(0) >> u(1))
	case isa.OP_LOADUH, isa.OP_LOADUS, isa.OP_INU:
		var value isa.Value
		value, err = cpu.load(inst.Op, mem, u(1), isa.TagWord)
		if err != nil {
			return
		}
		w, _ := value.Word()
		setU(w)
	case isa.OP_LOADDH, isa.OP_LOADDS, isa.OP_IND:
		var value isa.Value
		value, err = cpu.load(inst.Op, mem, u(1), isa.TagFloat)
		if err != nil {
			return
		}
		v, _ := value.Float()
		setD(v)
	case isa.OP_STOREUH, isa.OP_STOREUS, isa.OP_OUTU:
		err = cpu.store(inst.Op, mem, u(1), isa.Word(u(0)))
		if err != nil {
			return
		}
	case isa.OP_STOREDH, isa.OP_STOREDS, isa.OP_OUTD:
		err = cpu.store(inst.Op, mem, u(1), isa.Float(d(0)))
		if err != nil {
			return
		}
	case isa.OP_JO:
		if cpu.Status.Has(isa.FlagOverflow) {
			next_ip = u(0)
		}
	case isa.OP_JNO:
		if !cpu.Status.Has(isa.FlagOverflow) {
			next_ip = u(0)
		}
	case isa.OP_JE:
		if u(1) == u(2) {
			next_ip = u(0)
		}
	case isa.OP_JNE:
		if u(1) != u(2) {
			next_ip = u(0)
		}
	case isa.OP_JZ:
		if u(1) == 0 {
			next_ip = u(0)
		}
	case isa.OP_JNZ:
		if u(1) != 0 {
			next_ip = u(0)
		}
	case isa.OP_JMP:
		next_ip = u(0)
	case isa.OP_PUSHU:
		mem.Push(isa.Word(u(0)))
	case isa.OP_PUSHD:
		mem.Push(isa.Float(d(0)))
	case isa.OP_POPU:
		err = cpu.pop(mem, isa.TagWord)
		if err != nil {
			return
		}
		value, _ := mem.Pop()
		w, _ := value.Word()
		setU(w)
	case isa.OP_POPD:
		err = cpu.pop(mem, isa.TagFloat)
		if err != nil {
			return
		}
		value, _ := mem.Pop()
		v, _ := value.Float()
		setD(v)
	case isa.OP_CALL:
		// Frame layout: [.. return, saved bp] [locals ..]
		//                                     ^ bp
		mem.Push(isa.Word(next_ip))
		mem.Push(isa.Word(cpu.Base))
		cpu.Base = mem.StackTop()
		next_ip = u(0)
	case isa.OP_RET:
		var ret, bp uint64
		ret, bp, err = cpu.frame(mem)
		if err != nil {
			return
		}
		err = mem.DropFrame(cpu.Base - 2)
		if err != nil {
			return
		}
		cpu.Base = bp
		next_ip = ret
	case isa.OP_SYSCALL:
		err = cpu.syscall(mem, u(0))
		if err != nil {
			return
		}
	default:
		err = isa.ErrOpcodeInvalid
		return
	}

	cpu.Ip = next_ip
	cpu.Ticks++

	return
}

// load reads a tagged value from the heap, the current frame, or the
// I/O space.
func (cpu *Cpu) load(op isa.Opcode, mem isa.Memory, addr uint64, tag isa.Tag) (value isa.Value, err error) {
	switch op {
	case isa.OP_LOADUH, isa.OP_LOADDH:
		value, err = mem.Read(addr, tag)
	case isa.OP_LOADUS, isa.OP_LOADDS:
		value, err = mem.StackRead(cpu.Base, addr)
	case isa.OP_INU, isa.OP_IND:
		value, err = mem.In(addr, tag)
	default:
		err = isa.ErrOpcodeInvalid
	}
	if err != nil {
		return
	}

	if !value.Is(tag) {
		value = isa.Value{}
		err = isa.ErrTypeMismatch
	}

	return
}

// store writes a tagged value to the heap, the current frame, or the
// I/O space.
func (cpu *Cpu) store(op isa.Opcode, mem isa.Memory, addr uint64, value isa.Value) (err error) {
	switch op {
	case isa.OP_STOREUH, isa.OP_STOREDH:
		err = mem.Write(addr, value)
	case isa.OP_STOREUS, isa.OP_STOREDS:
		err = mem.StackWrite(cpu.Base, addr, value)
	case isa.OP_OUTU, isa.OP_OUTD:
		err = mem.Out(addr, value)
	default:
		err = isa.ErrOpcodeInvalid
	}

	return
}

// pop checks the top of the stack holds a value tagged tag, without
// removing it.
func (cpu *Cpu) pop(mem isa.Memory, tag isa.Tag) (err error) {
	top := mem.StackTop()
	if top == 0 {
		err = isa.ErrStackUnderflow
		return
	}

	value, err := mem.StackRead(0, top-1)
	if err != nil {
		return
	}

	if !value.Is(tag) {
		err = isa.ErrTypeMismatch
	}

	return
}

// frame returns the return address and saved base pointer of the
// current frame.
func (cpu *Cpu) frame(mem isa.Memory) (ret, bp uint64, err error) {
	if cpu.Base < 2 {
		err = isa.ErrStackUnderflow
		return
	}

	value, err := mem.StackRead(cpu.Base-2, 0)
	if err != nil {
		return
	}
	ret, err = value.Word()
	if err != nil {
		return
	}

	value, err = mem.StackRead(cpu.Base-1, 0)
	if err != nil {
		return
	}
	bp, err = value.Word()

	return
}

// syscall invokes the host function numbered index.
func (cpu *Cpu) syscall(mem isa.Memory, index uint64) (err error) {
	if index >= uint64(len(cpu.Syscalls)) || cpu.Syscalls[index] == nil {
		err = isa.ErrInvalidSyscall
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: syscall %d", index)
	}

	err = cpu.Syscalls[index](cpu, mem)
	if err != nil && !errors.Is(err, isa.ErrInvalidSyscallArg) && !errors.Is(err, isa.ErrSyscall) {
		err = errors.Join(isa.ErrSyscall, err)
	}

	return
}
