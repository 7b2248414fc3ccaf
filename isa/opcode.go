package isa

// Opcode is an instruction operation.
type Opcode uint8

const (
	OP_NOP     = Opcode(iota) // Nop
	OP_HALT                   // Halt
	OP_MU                     // MU
	OP_MD                     // MD
	OP_MOVU                   // MovU
	OP_MOVD                   // MovD
	OP_MOD                    // Mod
	OP_ADDU                   // AddU
	OP_ADDUI                  // AddUI
	OP_ADDD                   // AddD
	OP_ADDDI                  // AddDI
	OP_SUBU                   // SubU
	OP_SUBUI                  // SubUI
	OP_SUBD                   // SubD
	OP_SUBDI                  // SubDI
	OP_MULU                   // MulU
	OP_MULD                   // MulD
	OP_DIVU                   // DivU
	OP_DIVD                   // DivD
	OP_AND                    // And
	OP_OR                     // Or
	OP_XOR                    // Xor
	OP_NOT                    // Not
	OP_NEGU                   // NegU
	OP_NEGD                   // NegD
	OP_SHL                    // Shl
	OP_SHR                    // Shr
	OP_LOADUH                 // LoadUH
	OP_LOADDH                 // LoadDH
	OP_LOADUS                 // LoadUS
	OP_LOADDS                 // LoadDS
	OP_STOREUH                // StoreUH
	OP_STOREDH                // StoreDH
	OP_STOREUS                // StoreUS
	OP_STOREDS                // StoreDS
	OP_JO                     // Jo
	OP_JNO                    // Jno
	OP_JE                     // Je
	OP_JNE                    // Jne
	OP_JZ                     // Jz
	OP_JNZ                    // Jnz
	OP_JMP                    // Jmp
	OP_PUSHU                  // PushU
	OP_PUSHD                  // PushD
	OP_POPU                   // PopU
	OP_POPD                   // PopD
	OP_CALL                   // Call
	OP_RET                    // Ret
	OP_SYSCALL                // SysCall
	OP_INU                    // InU
	OP_IND                    // InD
	OP_OUTU                   // OutU
	OP_OUTD                   // OutD

	OP_COUNT // Number of opcodes.
)

// Shape is the operand layout of an opcode.
type Shape uint8

const (
	SHAPE_NONE  = Shape(iota) // no operands
	SHAPE_U                   // word register
	SHAPE_F                   // float register
	SHAPE_UU                  // two word registers
	SHAPE_UUU                 // three word registers
	SHAPE_FF                  // two float registers
	SHAPE_FFF                 // three float registers
	SHAPE_FU                  // float register, word register
	SHAPE_UIMM                // word register, word immediate
	SHAPE_FIMM                // float register, float immediate
)

// Operand is the kind of a single operand.
type Operand uint8

const (
	OPERAND_UREG  = Operand(iota) // word register
	OPERAND_FREG                  // float register
	OPERAND_WORD                  // word immediate
	OPERAND_FLOAT                 // float immediate
)

var shapeOperands = [...][]Operand{
	SHAPE_NONE: nil,
	SHAPE_U:    {OPERAND_UREG},
	SHAPE_F:    {OPERAND_FREG},
	SHAPE_UU:   {OPERAND_UREG, OPERAND_UREG},
	SHAPE_UUU:  {OPERAND_UREG, OPERAND_UREG, OPERAND_UREG},
	SHAPE_FF:   {OPERAND_FREG, OPERAND_FREG},
	SHAPE_FFF:  {OPERAND_FREG, OPERAND_FREG, OPERAND_FREG},
	SHAPE_FU:   {OPERAND_FREG, OPERAND_UREG},
	SHAPE_UIMM: {OPERAND_UREG, OPERAND_WORD},
	SHAPE_FIMM: {OPERAND_FREG, OPERAND_FLOAT},
}

// Operands returns the operand kinds, in order.
func (shape Shape) Operands() []Operand {
	if int(shape) >= len(shapeOperands) {
		return nil
	}
	return shapeOperands[shape]
}

// Registers returns the number of register operands.
func (shape Shape) Registers() (count int) {
	for _, op := range shape.Operands() {
		if op == OPERAND_UREG || op == OPERAND_FREG {
			count++
		}
	}
	return
}

type opcodeInfo struct {
	name  string
	shape Shape
}

var opcodeTable = [OP_COUNT]opcodeInfo{
	OP_NOP:     {"Nop", SHAPE_NONE},
	OP_HALT:    {"Halt", SHAPE_NONE},
	OP_MU:      {"MU", SHAPE_UIMM},
	OP_MD:      {"MD", SHAPE_FIMM},
	OP_MOVU:    {"MovU", SHAPE_UU},
	OP_MOVD:    {"MovD", SHAPE_FF},
	OP_MOD:     {"Mod", SHAPE_UUU},
	OP_ADDU:    {"AddU", SHAPE_UUU},
	OP_ADDUI:   {"AddUI", SHAPE_UIMM},
	OP_ADDD:    {"AddD", SHAPE_FFF},
	OP_ADDDI:   {"AddDI", SHAPE_FIMM},
	OP_SUBU:    {"SubU", SHAPE_UUU},
	OP_SUBUI:   {"SubUI", SHAPE_UIMM},
	OP_SUBD:    {"SubD", SHAPE_FFF},
	OP_SUBDI:   {"SubDI", SHAPE_FIMM},
	OP_MULU:    {"MulU", SHAPE_UUU},
	OP_MULD:    {"MulD", SHAPE_FFF},
	OP_DIVU:    {"DivU", SHAPE_UUU},
	OP_DIVD:    {"DivD", SHAPE_FFF},
	OP_AND:     {"And", SHAPE_UUU},
	OP_OR:      {"Or", SHAPE_UUU},
	OP_XOR:     {"Xor", SHAPE_UUU},
	OP_NOT:     {"Not", SHAPE_UU},
	OP_NEGU:    {"NegU", SHAPE_UU},
	OP_NEGD:    {"NegD", SHAPE_FF},
	OP_SHL:     {"Shl", SHAPE_UU},
	OP_SHR:     {"Shr", SHAPE_UU},
	OP_LOADUH:  {"LoadUH", SHAPE_UU},
	OP_LOADDH:  {"LoadDH", SHAPE_FU},
	OP_LOADUS:  {"LoadUS", SHAPE_UU},
	OP_LOADDS:  {"LoadDS", SHAPE_FU},
	OP_STOREUH: {"StoreUH", SHAPE_UU},
	OP_STOREDH: {"StoreDH", SHAPE_FU},
	OP_STOREUS: {"StoreUS", SHAPE_UU},
	OP_STOREDS: {"StoreDS", SHAPE_FU},
	OP_JO:      {"Jo", SHAPE_U},
	OP_JNO:     {"Jno", SHAPE_U},
	OP_JE:      {"Je", SHAPE_UUU},
	OP_JNE:     {"Jne", SHAPE_UUU},
	OP_JZ:      {"Jz", SHAPE_UU},
	OP_JNZ:     {"Jnz", SHAPE_UU},
	OP_JMP:     {"Jmp", SHAPE_U},
	OP_PUSHU:   {"PushU", SHAPE_U},
	OP_PUSHD:   {"PushD", SHAPE_F},
	OP_POPU:    {"PopU", SHAPE_U},
	OP_POPD:    {"PopD", SHAPE_F},
	OP_CALL:    {"Call", SHAPE_U},
	OP_RET:     {"Ret", SHAPE_NONE},
	OP_SYSCALL: {"SysCall", SHAPE_U},
	OP_INU:     {"InU", SHAPE_UU},
	OP_IND:     {"InD", SHAPE_FU},
	OP_OUTU:    {"OutU", SHAPE_UU},
	OP_OUTD:    {"OutD", SHAPE_FU},
}

// Valid returns true if the opcode is part of the instruction set.
func (op Opcode) Valid() bool {
	return op < OP_COUNT
}

// Shape returns the operand layout of the opcode.
func (op Opcode) Shape() Shape {
	if !op.Valid() {
		return SHAPE_NONE
	}
	return opcodeTable[op].shape
}

func (op Opcode) String() string {
	if !op.Valid() {
		return f("Opcode(%d)", uint8(op))
	}
	return opcodeTable[op].name
}

// IsBranch returns true for opcodes that may repoint the program counter.
func (op Opcode) IsBranch() bool {
	switch op {
	case OP_JO, OP_JNO, OP_JE, OP_JNE, OP_JZ, OP_JNZ, OP_JMP, OP_CALL, OP_RET:
		return true
	}
	return false
}
