package isa

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	assert := assert.New(t)

	w := Word(0x1234)
	assert.Equal(TagWord, w.Tag())
	assert.True(w.Is(TagWord))
	val, err := w.Word()
	assert.NoError(err)
	assert.Equal(uint64(0x1234), val)
	_, err = w.Float()
	assert.ErrorIs(err, ErrTypeMismatch)

	d := Float(-2.5)
	assert.Equal(TagFloat, d.Tag())
	fval, err := d.Float()
	assert.NoError(err)
	assert.Equal(-2.5, fval)
	_, err = d.Word()
	assert.ErrorIs(err, ErrTypeMismatch)

	// Same bits, different tags, are different values.
	assert.NotEqual(Word(math.Float64bits(1.0)), Float(1.0))

	// NaN compares equal to itself bit for bit.
	nan := Float(math.NaN())
	assert.True(nan == Float(math.NaN()))

	assert.Equal("4660", w.String())
	assert.Equal("-2.5", d.String())
	assert.Equal("+Inf", Float(math.Inf(1)).String())
}

func TestFlags(t *testing.T) {
	assert := assert.New(t)

	var fl Flags
	assert.False(fl.Has(FlagOverflow))
	assert.Equal("-", fl.String())

	fl = fl.With(FlagOverflow, true)
	assert.True(fl.Has(FlagOverflow))
	assert.False(fl.Has(FlagInterrupt))
	assert.Equal("overflow", fl.String())

	fl = fl.With(FlagInterrupt, true)
	assert.Equal("overflow|interrupt", fl.String())

	fl = fl.With(FlagOverflow, false)
	assert.False(fl.Has(FlagOverflow))
	assert.True(fl.Has(FlagInterrupt))
}

func TestRegisters(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("U1", U1.String())
	assert.Equal("U8", U8.String())
	assert.Equal("F3", F3.String())
	assert.True(U8.Valid())
	assert.False(UReg(8).Valid())
	assert.False(FReg(200).Valid())
}

func TestOpcodeTable(t *testing.T) {
	assert := assert.New(t)

	for op := range OP_COUNT {
		assert.NotEmpty(opcodeTable[op].name, "opcode %d", op)
		assert.True(op.Valid())
	}
	assert.False(OP_COUNT.Valid())

	assert.Equal("AddUI", OP_ADDUI.String())
	assert.Equal(SHAPE_FU, OP_LOADDH.Shape())
	assert.Equal(3, OP_JE.Shape().Registers())
	assert.Equal(1, OP_MD.Shape().Registers())
	assert.True(OP_CALL.IsBranch())
	assert.False(OP_ADDU.IsBranch())
}

func TestInstString(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		inst     Inst
		expected string
	}{
		{Nop(), "Nop"},
		{Halt(), "Halt"},
		{Ret(), "Ret"},
		{MU(U1, 5), "MU U1, 5"},
		{MD(F2, 2.5), "MD F2, 2.5"},
		{AddU(U1, U2, U3), "AddU U1, U2, U3"},
		{SubDI(F8, -1), "SubDI F8, -1"},
		{LoadDH(F1, U2), "LoadDH F1, U2"},
		{Je(U4, U1, U2), "Je U4, U1, U2"},
		{PushD(F7), "PushD F7"},
		{SysCall(U3), "SysCall U3"},
	}

	for _, entry := range table {
		assert.Equal(entry.expected, entry.inst.String())
	}
}

func TestInstValidate(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(AddU(U1, U2, U8).Validate())
	assert.NoError(MD(F1, math.NaN()).Validate())
	assert.NoError(Halt().Validate())

	assert.ErrorIs(Inst{Op: OP_COUNT}.Validate(), ErrOpcodeInvalid)
	assert.ErrorIs(Inst{Op: OP_ADDU, A: 0, B: 1, C: 8}.Validate(), ErrInvalidReg)
	assert.ErrorIs(Inst{Op: OP_LOADDH, A: 9, B: 0}.Validate(), ErrInvalidReg)
	assert.ErrorIs(Inst{Op: OP_MU, A: 0, Imm: Float(1)}.Validate(), ErrTypeMismatch)
	assert.ErrorIs(Inst{Op: OP_ADDDI, A: 0, Imm: Word(1)}.Validate(), ErrTypeMismatch)

	// Fields outside the shape must be zero.
	table := []Inst{
		{Op: OP_JMP, B: 3},
		{Op: OP_MOVU, C: 1},
		{Op: OP_RET, A: 1},
		{Op: OP_NOP, Imm: Word(7)},
		{Op: OP_ADDU, Imm: Float(0)},
		{Op: OP_MU, B: 2, Imm: Word(1)},
	}
	for _, inst := range table {
		assert.ErrorIs(inst.Validate(), ErrOpcodeInvalid, "%#v", inst)
	}
	assert.ErrorIs(Inst{Op: OP_JMP, B: 3}.Validate(), ErrInvalidReg)
	assert.NoError(Inst{Op: OP_NOP, Imm: Word(0)}.Validate())
}

func TestErrors(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsHalt(ErrHalt))
	assert.False(IsHalt(ErrDivByZero))

	err := error(&ErrCpu{Pc: 2, Inst: DivU(U3, U1, U2), Err: ErrDivByZero})
	assert.ErrorIs(err, ErrDivByZero)
	assert.False(IsHalt(err))

	var cpuErr *ErrCpu
	assert.True(errors.As(err, &cpuErr))
	assert.Equal(uint64(2), cpuErr.Pc)

	halted := error(&ErrCpu{Pc: 3, Inst: Halt(), Err: ErrHalt})
	assert.True(IsHalt(halted))

	assert.ErrorIs(ErrFetch(10), ErrInvalidCodeAddr)
}

func TestReadHelpers(t *testing.T) {
	assert := assert.New(t)

	mem := &mapMemory{cells: map[uint64]Value{
		1: Word(7),
		2: Float(1.5),
	}}

	w, err := ReadWord(mem, 1)
	assert.NoError(err)
	assert.Equal(uint64(7), w)

	d, err := ReadFloat(mem, 2)
	assert.NoError(err)
	assert.Equal(1.5, d)

	_, err = ReadWord(mem, 2)
	assert.ErrorIs(err, ErrTypeMismatch)

	_, err = ReadFloat(mem, 3)
	assert.ErrorIs(err, ErrInvalidHeapAddr)
}

// mapMemory is a heap-only Memory for exercising the helpers.
type mapMemory struct {
	Memory
	cells map[uint64]Value
}

func (mm *mapMemory) Read(addr uint64, tag Tag) (value Value, err error) {
	value, ok := mm.cells[addr]
	if !ok {
		err = ErrInvalidHeapAddr
		return
	}
	if !value.Is(tag) {
		err = errors.Join(ErrInvalidHeapType, ErrTypeMismatch)
	}
	return
}
