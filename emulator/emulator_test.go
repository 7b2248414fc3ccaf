package emulator

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/regvm/cpu"
	"github.com/ezrec/regvm/io"
	"github.com/ezrec/regvm/isa"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Memory)
	assert.Equal(0, emu.StepLimit)

	_, ok := emu.Inst()
	assert.False(ok)
}

func doRun(emu *Emulator, program []isa.Inst, t *testing.T, args ...isa.Value) (result Result) {
	assert := assert.New(t)

	emu.Load(program, args...)

	result, err := emu.Run(context.Background())
	assert.NoError(err)
	if err != nil {
		t.Log(emu.Cpu.String())
		t.Fatalf("%v", err)
	}
	assert.True(result.Halted)

	return
}

func TestEmulatorDivByZero(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Load([]isa.Inst{
		isa.MU(isa.U1, 5),
		isa.MU(isa.U2, 0),
		isa.DivU(isa.U3, isa.U1, isa.U2),
		isa.Halt(),
	})
	emu.Cpu.SetU(isa.U3, 0x77)

	result, err := emu.Run(context.Background())
	assert.ErrorIs(err, isa.ErrDivByZero)
	assert.False(result.Halted)
	assert.Equal(2, result.Steps)

	var rt *ErrRuntime
	assert.True(errors.As(err, &rt))
	assert.Equal(uint64(2), rt.Pc)

	var ec *isa.ErrCpu
	assert.True(errors.As(err, &ec))
	assert.Equal(uint64(2), ec.Pc)
	assert.Equal(isa.DivU(isa.U3, isa.U1, isa.U2), ec.Inst)

	assert.Equal(uint64(0x77), emu.Cpu.U(isa.U3))
	assert.Equal(uint64(2), emu.Pc())
}

func TestEmulatorCallRet(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []isa.Inst{
		isa.MU(isa.U1, 5),
		isa.Call(isa.U1),
		isa.MU(isa.U3, 1), // returns here
		isa.Halt(),
		isa.Nop(),
		isa.MU(isa.U2, 42), // subroutine
		isa.Ret(),
	}

	result := doRun(emu, program, t)
	assert.Equal(5, result.Steps)
	assert.Equal(5, emu.Ticks())
	assert.Equal(uint64(42), emu.Cpu.U(isa.U2))
	assert.Equal(uint64(1), emu.Cpu.U(isa.U3))
	assert.Equal(uint64(0), emu.Memory.StackTop())
	assert.Equal(uint64(3), emu.Pc())

	inst, ok := emu.Inst()
	assert.True(ok)
	assert.Equal(isa.Halt(), inst)
}

func TestEmulatorStackArgument(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []isa.Inst{
		isa.MU(isa.U1, 20),
		isa.PushU(isa.U1),
		isa.MU(isa.U1, 6),
		isa.Call(isa.U1),
		isa.PopU(isa.U2), // doubled argument
		isa.Halt(),
		isa.MU(isa.U7, ^uint64(2)), // argument offset
		isa.LoadUS(isa.U3, isa.U7),
		isa.AddU(isa.U3, isa.U3, isa.U3),
		isa.StoreUS(isa.U3, isa.U7),
		isa.Ret(),
	}

	doRun(emu, program, t)
	assert.Equal(uint64(40), emu.Cpu.U(isa.U2))
	assert.Equal(uint64(0), emu.Memory.StackTop())
}

func TestEmulatorOverflow(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []isa.Inst{
		isa.MU(isa.U1, math.MaxUint64),
		isa.MU(isa.U2, 1),
		isa.MU(isa.U8, 6),
		isa.AddU(isa.U3, isa.U1, isa.U2),
		isa.Jo(isa.U8),
		isa.Halt(),
		isa.AddU(isa.U4, isa.U2, isa.U2), // overflow taken
		isa.Halt(),
	}

	doRun(emu, program, t)
	assert.Equal(uint64(0), emu.Cpu.U(isa.U3))
	assert.Equal(uint64(2), emu.Cpu.U(isa.U4))
	assert.False(emu.Cpu.Flags().Has(isa.FlagOverflow))
	assert.Equal(uint64(7), emu.Pc())
}

func TestEmulatorArgs(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []isa.Inst{
		isa.PopU(isa.U1),
		isa.PopU(isa.U2),
		isa.SubU(isa.U3, isa.U1, isa.U2),
		isa.Halt(),
	}

	doRun(emu, program, t, isa.Word(3), isa.Word(10))
	assert.Equal(uint64(7), emu.Cpu.U(isa.U3))

	// Load starts over.
	emu.Memory.Heap[4] = isa.Word(1)
	doRun(emu, program, t, isa.Word(1), isa.Word(1))
	assert.Equal(uint64(0), emu.Cpu.U(isa.U3))
	assert.Empty(emu.Memory.Heap)
}

func TestEmulatorFetchFault(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Load([]isa.Inst{
		isa.MU(isa.U1, 100),
		isa.Jmp(isa.U1),
	})

	// The jump itself succeeds.
	assert.NoError(emu.Step())
	assert.NoError(emu.Step())
	assert.Equal(uint64(100), emu.Pc())

	err := emu.Step()
	assert.ErrorIs(err, isa.ErrInvalidCodeAddr)
	assert.Equal(isa.ErrFetch(100), errors.Unwrap(err))

	result, err := emu.Run(context.Background())
	assert.ErrorIs(err, isa.ErrInvalidCodeAddr)
	assert.Equal(0, result.Steps)

	var rt *ErrRuntime
	assert.True(errors.As(err, &rt))
	assert.Equal(uint64(100), rt.Pc)
}

func TestEmulatorFallOff(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Load([]isa.Inst{isa.Nop()})

	result, err := emu.Run(context.Background())
	assert.ErrorIs(err, isa.ErrInvalidCodeAddr)
	assert.Equal(1, result.Steps)
	assert.False(result.Halted)
}

func TestEmulatorStep(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Load([]isa.Inst{isa.MU(isa.U1, 1), isa.Halt()})

	assert.NoError(emu.Step())
	err := emu.Step()
	assert.True(isa.IsHalt(err))
	assert.Equal(uint64(1), emu.Pc())

	// Halt does not advance.
	assert.True(isa.IsHalt(emu.Step()))
}

func TestEmulatorStepLimit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.StepLimit = 10
	emu.Load([]isa.Inst{
		isa.MU(isa.U1, 1),
		isa.Jmp(isa.U1),
	})

	result, err := emu.Run(context.Background())
	assert.ErrorIs(err, ErrStepLimit)
	assert.Equal(10, result.Steps)
	assert.False(result.Halted)
}

func TestEmulatorContext(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Load([]isa.Inst{
		isa.Jmp(isa.U1),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := emu.Run(ctx)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(0, result.Steps)
}

func TestEmulatorConsole(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	con := &io.Console{Input: strings.NewReader("20 22"), Output: output}

	emu := NewEmulator(cpu.PortSyscalls(con)...)
	emu.Memory.Attach(0x10, con)

	program := []isa.Inst{
		isa.MU(isa.U8, cpu.SYSCALL_GET_WORD),
		isa.SysCall(isa.U8),
		isa.MovU(isa.U2, isa.U1),
		isa.MU(isa.U7, 0x10),
		isa.InU(isa.U3, isa.U7),
		isa.AddU(isa.U1, isa.U2, isa.U3),
		isa.MU(isa.U8, cpu.SYSCALL_PUT_WORD),
		isa.SysCall(isa.U8),
		isa.MD(isa.F1, 0.5),
		isa.OutD(isa.F1, isa.U7),
		isa.Halt(),
	}

	doRun(emu, program, t)
	assert.Equal("42\n0.5\n", output.String())
}

func TestEmulatorQueue(t *testing.T) {
	assert := assert.New(t)

	queue := io.NewQueue(2)
	emu := NewEmulator()
	emu.Memory.Attach(0x20, queue)

	program := []isa.Inst{
		isa.MU(isa.U1, 0x20),
		isa.MU(isa.U2, 9),
		isa.OutU(isa.U2, isa.U1),
		isa.OutU(isa.U2, isa.U1),
		isa.OutU(isa.U2, isa.U1),
		isa.Halt(),
	}

	emu.Load(program)
	_, err := emu.Run(context.Background())
	assert.ErrorIs(err, io.ErrPortFull)
	assert.ErrorIs(err, isa.ErrInvalidHeapAddr)
	assert.Equal(uint64(4), emu.Pc())
	assert.Equal(2, queue.Size)

	// Load rewinds the queue.
	emu.Load(program[:3])
	assert.Equal(0, queue.Size)
}

func TestRunGeneric(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Load([]isa.Inst{isa.MD(isa.F2, 1.5), isa.AddD(isa.F3, isa.F2, isa.F2), isa.Halt()})

	result, err := Run(context.Background(), emu.Cpu, emu.Memory, 0)
	assert.NoError(err)
	assert.Equal(Result{Steps: 2, Halted: true}, result)
	assert.Equal(3.0, emu.Cpu.F(isa.F3))
}
