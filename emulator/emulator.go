// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"log"

	"github.com/ezrec/regvm/cpu"
	"github.com/ezrec/regvm/isa"
	"github.com/ezrec/regvm/memory"
)

// Result summarizes a run.
type Result struct {
	Steps  int  // Instructions retired, not counting the final Halt.
	Halted bool // Set if the run ended on a Halt.
}

// Emulator state. CPU + memory + the loaded program.
type Emulator struct {
	Verbose   bool           // If set, enables verbose logging.
	Cpu       *cpu.Cpu       // Reference to the CPU simulation.
	Memory    *memory.Memory // Code, stack, heap and ports.
	Program   []isa.Inst     // The currently loaded program.
	StepLimit int            // Maximum steps per Run, or 0 for no limit.
}

// NewEmulator creates a new emulator with a syscall table.
func NewEmulator(syscalls ...cpu.Syscall) (emu *Emulator) {
	emu = &Emulator{
		Cpu:    cpu.NewCpu(syscalls...),
		Memory: memory.NewMemory(),
	}

	return
}

// Load a program.
// - Clears the code, stack and heap segments.
// - Rewinds every attached port.
// - Pushes args onto the stack, first argument deepest.
// - Resets the CPU to pc 0.
func (emu *Emulator) Load(program []isa.Inst, args ...isa.Value) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Memory.Verbose = emu.Verbose

	mem := emu.Memory
	mem.ClearCode()
	mem.ClearStack()
	mem.ClearHeap()
	mem.Rewind()

	emu.Program = program
	mem.AppendCode(program...)
	mem.AppendStack(args...)

	emu.Cpu.Reset()
}

// Ticks returns the total instructions retired since a Load.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns current program counter.
func (emu *Emulator) Pc() uint64 {
	return emu.Cpu.Pc()
}

// Inst returns the instruction at the program counter.
func (emu *Emulator) Inst() (inst isa.Inst, ok bool) {
	pc := emu.Cpu.Pc()
	if pc >= uint64(len(emu.Program)) {
		return
	}

	return emu.Program[pc], true
}

// Step performs a single fetch and execute. A Halt is returned as
// isa.ErrHalt; every other fault is located with ErrRuntime.
func (emu *Emulator) Step() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc()
	err = Step(emu.Cpu, emu.Memory)
	if err != nil && !isa.IsHalt(err) {
		err = &ErrRuntime{Pc: pc, Err: err}
	}

	return
}

// Run steps the loaded program until it halts, faults, exhausts
// StepLimit, or ctx is done.
func (emu *Emulator) Run(ctx context.Context) (result Result, err error) {
	emu.Cpu.Verbose = emu.Verbose

	result, err = Run(ctx, emu.Cpu, emu.Memory, emu.StepLimit)

	if emu.Verbose {
		log.Printf("emulator: %d steps, halted %v, err %v", result.Steps, result.Halted, err)
	}

	return
}

// Step fetches the instruction at the program counter and executes it.
// A fetch failure is returned as the isa.ErrFetch fault; execution
// faults are promoted to *isa.ErrCpu. isa.ErrHalt is returned as is.
func Step[E isa.Executor, M isa.Memory](exec E, mem M) (err error) {
	pc := exec.Pc()

	inst, err := mem.Fetch(pc)
	if err != nil {
		return
	}

	err = exec.Execute(inst, mem)
	if err != nil && !isa.IsHalt(err) {
		err = &isa.ErrCpu{Pc: pc, Inst: inst, Err: err}
	}

	return
}

// Run drives exec over mem until a Halt. The context is checked between
// steps, and limit bounds the number of steps when positive. Faults are
// returned as *ErrRuntime.
func Run[E isa.Executor, M isa.Memory](ctx context.Context, exec E, mem M, limit int) (result Result, err error) {
	for {
		if limit > 0 && result.Steps >= limit {
			err = ErrStepLimit
			return
		}

		err = ctx.Err()
		if err != nil {
			return
		}

		pc := exec.Pc()
		err = Step(exec, mem)
		if isa.IsHalt(err) {
			result.Halted = true
			err = nil
			return
		}
		if err != nil {
			err = &ErrRuntime{Pc: pc, Err: err}
			return
		}

		result.Steps++
	}
}
