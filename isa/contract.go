package isa

// Memory is the capability set of a storage backend. It owns the code,
// stack and heap segments of one machine.
type Memory interface {
	// ClearCode empties the code segment.
	ClearCode()
	// ClearStack empties the stack.
	ClearStack()
	// ClearHeap empties the heap.
	ClearHeap()

	// Read returns the heap cell at addr, which must hold a value
	// tagged tag.
	Read(addr uint64, tag Tag) (value Value, err error)
	// Write stores value, with its tag, at heap address addr.
	Write(addr uint64, value Value) (err error)

	// StackRead returns the stack slot at bp+offset. The offset is two's
	// complement: a negative offset addresses slots below bp.
	StackRead(bp, offset uint64) (value Value, err error)
	// StackWrite replaces the stack slot at bp+offset.
	StackWrite(bp, offset uint64, value Value) (err error)
	// Push appends value to the top of the stack.
	Push(value Value)
	// Pop removes the top of the stack.
	Pop() (value Value, err error)
	// StackTop returns the address one past the top of the stack.
	StackTop() uint64
	// DropFrame truncates the stack to bp.
	DropFrame(bp uint64) (err error)

	// Fetch returns the instruction at code address addr.
	Fetch(addr uint64) (inst Inst, err error)
	// AppendCode appends instructions to the code segment.
	AppendCode(code ...Inst)
	// AppendStack pushes values onto the stack, in order.
	AppendStack(values ...Value)

	// In reads a value tagged tag from I/O address addr.
	In(addr uint64, tag Tag) (value Value, err error)
	// Out writes value to I/O address addr.
	Out(addr uint64, value Value) (err error)
}

// Executor is the capability set of a register file that executes
// instructions against a Memory.
type Executor interface {
	// Execute performs one instruction. On success the program counter
	// addresses the next instruction; on a fault no register, flag or
	// program counter change is visible.
	Execute(inst Inst, mem Memory) (err error)

	U(reg UReg) uint64
	SetU(reg UReg, value uint64)
	URef(reg UReg) *uint64

	F(reg FReg) float64
	SetF(reg FReg, value float64)
	FRef(reg FReg) *float64

	Pc() uint64
	SetPc(pc uint64)

	Bp() uint64
	SetBp(bp uint64)

	Flags() Flags
	SetFlags(flags Flags)
}

// ReadWord reads a word tagged heap cell.
func ReadWord(mem Memory, addr uint64) (value uint64, err error) {
	v, err := mem.Read(addr, TagWord)
	if err != nil {
		return
	}
	return v.Word()
}

// ReadFloat reads a float tagged heap cell.
func ReadFloat(mem Memory, addr uint64) (value float64, err error) {
	v, err := mem.Read(addr, TagFloat)
	if err != nil {
		return
	}
	return v.Float()
}
