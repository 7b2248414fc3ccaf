package isa

import (
	"errors"
	"strings"
)

// Inst is a single decoded instruction. A, B and C hold the register
// operands in the order given by the opcode's Shape; Imm holds the
// immediate of the SHAPE_UIMM and SHAPE_FIMM forms.
type Inst struct {
	Op      Opcode
	A, B, C uint8
	Imm     Value
}

// Reg returns the n'th register operand number.
func (inst Inst) Reg(n int) uint8 {
	switch n {
	case 0:
		return inst.A
	case 1:
		return inst.B
	case 2:
		return inst.C
	}
	return 0xff
}

// UR returns the n'th register operand as a word register.
func (inst Inst) UR(n int) UReg {
	return UReg(inst.Reg(n))
}

// FR returns the n'th register operand as a float register.
func (inst Inst) FR(n int) FReg {
	return FReg(inst.Reg(n))
}

// Validate checks the opcode is known, that every register operand names
// a register of the expected bank, and that the immediate carries the
// tag the shape requires. Register fields and the immediate not used by
// the shape must be zero.
func (inst Inst) Validate() (err error) {
	if !inst.Op.Valid() {
		err = ErrOpcodeInvalid
		return
	}

	reg := 0
	imm := false
	for _, kind := range inst.Op.Shape().Operands() {
		switch kind {
		case OPERAND_UREG:
			if !inst.UR(reg).Valid() {
				err = ErrInvalidReg
				return
			}
			reg++
		case OPERAND_FREG:
			if !inst.FR(reg).Valid() {
				err = ErrInvalidReg
				return
			}
			reg++
		case OPERAND_WORD:
			if !inst.Imm.Is(TagWord) {
				err = errors.Join(ErrTypeMismatch, ErrOpcodeInvalid)
				return
			}
			imm = true
		case OPERAND_FLOAT:
			if !inst.Imm.Is(TagFloat) {
				err = errors.Join(ErrTypeMismatch, ErrOpcodeInvalid)
				return
			}
			imm = true
		}
	}

	// Unused fields must be zero, so an instruction has one encoding.
	for ; reg < 3; reg++ {
		if inst.Reg(reg) != 0 {
			err = errors.Join(ErrInvalidReg, ErrOpcodeInvalid)
			return
		}
	}
	if !imm && inst.Imm != (Value{}) {
		err = ErrOpcodeInvalid
		return
	}

	return
}

// String returns the disassembly of the instruction.
func (inst Inst) String() string {
	var args []string
	reg := 0
	for _, kind := range inst.Op.Shape().Operands() {
		switch kind {
		case OPERAND_UREG:
			args = append(args, inst.UR(reg).String())
			reg++
		case OPERAND_FREG:
			args = append(args, inst.FR(reg).String())
			reg++
		case OPERAND_WORD, OPERAND_FLOAT:
			args = append(args, inst.Imm.String())
		}
	}

	if len(args) == 0 {
		return inst.Op.String()
	}

	return inst.Op.String() + " " + strings.Join(args, ", ")
}

func op0(op Opcode) Inst {
	return Inst{Op: op}
}

func op1(op Opcode, a uint8) Inst {
	return Inst{Op: op, A: a}
}

func op2(op Opcode, a, b uint8) Inst {
	return Inst{Op: op, A: a, B: b}
}

func op3(op Opcode, a, b, c uint8) Inst {
	return Inst{Op: op, A: a, B: b, C: c}
}

// Nop does nothing.
func Nop() Inst { return op0(OP_NOP) }

// Halt terminates the program.
func Halt() Inst { return op0(OP_HALT) }

// MU loads a word immediate into dst.
func MU(dst UReg, imm uint64) Inst { return Inst{Op: OP_MU, A: uint8(dst), Imm: Word(imm)} }

// MD loads a float immediate into dst.
func MD(dst FReg, imm float64) Inst { return Inst{Op: OP_MD, A: uint8(dst), Imm: Float(imm)} }

// MovU copies src to dst.
func MovU(dst, src UReg) Inst { return op2(OP_MOVU, uint8(dst), uint8(src)) }

// MovD copies src to dst.
func MovD(dst, src FReg) Inst { return op2(OP_MOVD, uint8(dst), uint8(src)) }

// Mod computes dst = a % b.
func Mod(dst, a, b UReg) Inst { return op3(OP_MOD, uint8(dst), uint8(a), uint8(b)) }

// AddU computes dst = a + b.
func AddU(dst, a, b UReg) Inst { return op3(OP_ADDU, uint8(dst), uint8(a), uint8(b)) }

// AddUI computes dst = dst + imm.
func AddUI(dst UReg, imm uint64) Inst { return Inst{Op: OP_ADDUI, A: uint8(dst), Imm: Word(imm)} }

// AddD computes dst = a + b.
func AddD(dst, a, b FReg) Inst { return op3(OP_ADDD, uint8(dst), uint8(a), uint8(b)) }

// AddDI computes dst = dst + imm.
func AddDI(dst FReg, imm float64) Inst { return Inst{Op: OP_ADDDI, A: uint8(dst), Imm: Float(imm)} }

// SubU computes dst = a - b.
func SubU(dst, a, b UReg) Inst { return op3(OP_SUBU, uint8(dst), uint8(a), uint8(b)) }

// SubUI computes dst = dst - imm.
func SubUI(dst UReg, imm uint64) Inst { return Inst{Op: OP_SUBUI, A: uint8(dst), Imm: Word(imm)} }

// SubD computes dst = a - b.
func SubD(dst, a, b FReg) Inst { return op3(OP_SUBD, uint8(dst), uint8(a), uint8(b)) }

// SubDI computes dst = dst - imm.
func SubDI(dst FReg, imm float64) Inst { return Inst{Op: OP_SUBDI, A: uint8(dst), Imm: Float(imm)} }

// MulU computes dst = a * b.
func MulU(dst, a, b UReg) Inst { return op3(OP_MULU, uint8(dst), uint8(a), uint8(b)) }

// MulD computes dst = a * b.
func MulD(dst, a, b FReg) Inst { return op3(OP_MULD, uint8(dst), uint8(a), uint8(b)) }

// DivU computes dst = a / b.
func DivU(dst, a, b UReg) Inst { return op3(OP_DIVU, uint8(dst), uint8(a), uint8(b)) }

// DivD computes dst = a / b.
func DivD(dst, a, b FReg) Inst { return op3(OP_DIVD, uint8(dst), uint8(a), uint8(b)) }

// And computes dst = a & b.
func And(dst, a, b UReg) Inst { return op3(OP_AND, uint8(dst), uint8(a), uint8(b)) }

// Or computes dst = a | b.
func Or(dst, a, b UReg) Inst { return op3(OP_OR, uint8(dst), uint8(a), uint8(b)) }

// Xor computes dst = a ^ b.
func Xor(dst, a, b UReg) Inst { return op3(OP_XOR, uint8(dst), uint8(a), uint8(b)) }

// Not computes dst = ^src.
func Not(dst, src UReg) Inst { return op2(OP_NOT, uint8(dst), uint8(src)) }

// NegU computes dst = -src.
func NegU(dst, src UReg) Inst { return op2(OP_NEGU, uint8(dst), uint8(src)) }

// NegD computes dst = -src.
func NegD(dst, src FReg) Inst { return op2(OP_NEGD, uint8(dst), uint8(src)) }

// Shl computes dst = dst << count.
func Shl(dst, count UReg) Inst { return op2(OP_SHL, uint8(dst), uint8(count)) }

// Shr computes dst = dst >> count.
func Shr(dst, count UReg) Inst { return op2(OP_SHR, uint8(dst), uint8(count)) }

// LoadUH loads the heap word at addr into dst.
func LoadUH(dst, addr UReg) Inst { return op2(OP_LOADUH, uint8(dst), uint8(addr)) }

// LoadDH loads the heap float at addr into dst.
func LoadDH(dst FReg, addr UReg) Inst { return op2(OP_LOADDH, uint8(dst), uint8(addr)) }

// LoadUS loads the stack word at bp+offset into dst.
func LoadUS(dst, offset UReg) Inst { return op2(OP_LOADUS, uint8(dst), uint8(offset)) }

// LoadDS loads the stack float at bp+offset into dst.
func LoadDS(dst FReg, offset UReg) Inst { return op2(OP_LOADDS, uint8(dst), uint8(offset)) }

// StoreUH stores src to the heap at addr.
func StoreUH(src, addr UReg) Inst { return op2(OP_STOREUH, uint8(src), uint8(addr)) }

// StoreDH stores src to the heap at addr.
func StoreDH(src FReg, addr UReg) Inst { return op2(OP_STOREDH, uint8(src), uint8(addr)) }

// StoreUS stores src to the stack at bp+offset.
func StoreUS(src, offset UReg) Inst { return op2(OP_STOREUS, uint8(src), uint8(offset)) }

// StoreDS stores src to the stack at bp+offset.
func StoreDS(src FReg, offset UReg) Inst { return op2(OP_STOREDS, uint8(src), uint8(offset)) }

// Jo jumps to target if the overflow flag is set.
func Jo(target UReg) Inst { return op1(OP_JO, uint8(target)) }

// Jno jumps to target if the overflow flag is clear.
func Jno(target UReg) Inst { return op1(OP_JNO, uint8(target)) }

// Je jumps to target if a == b.
func Je(target, a, b UReg) Inst { return op3(OP_JE, uint8(target), uint8(a), uint8(b)) }

// Jne jumps to target if a != b.
func Jne(target, a, b UReg) Inst { return op3(OP_JNE, uint8(target), uint8(a), uint8(b)) }

// Jz jumps to target if a == 0.
func Jz(target, a UReg) Inst { return op2(OP_JZ, uint8(target), uint8(a)) }

// Jnz jumps to target if a != 0.
func Jnz(target, a UReg) Inst { return op2(OP_JNZ, uint8(target), uint8(a)) }

// Jmp jumps to target.
func Jmp(target UReg) Inst { return op1(OP_JMP, uint8(target)) }

// PushU pushes src.
func PushU(src UReg) Inst { return op1(OP_PUSHU, uint8(src)) }

// PushD pushes src.
func PushD(src FReg) Inst { return op1(OP_PUSHD, uint8(src)) }

// PopU pops a word into dst.
func PopU(dst UReg) Inst { return op1(OP_POPU, uint8(dst)) }

// PopD pops a float into dst.
func PopD(dst FReg) Inst { return op1(OP_POPD, uint8(dst)) }

// Call opens a new frame and jumps to target.
func Call(target UReg) Inst { return op1(OP_CALL, uint8(target)) }

// Ret closes the current frame and returns to the caller.
func Ret() Inst { return op0(OP_RET) }

// SysCall invokes the host function numbered by index.
func SysCall(index UReg) Inst { return op1(OP_SYSCALL, uint8(index)) }

// InU reads a word from addr into dst.
func InU(dst, addr UReg) Inst { return op2(OP_INU, uint8(dst), uint8(addr)) }

// InD reads a float from addr into dst.
func InD(dst FReg, addr UReg) Inst { return op2(OP_IND, uint8(dst), uint8(addr)) }

// OutU writes src to addr.
func OutU(src, addr UReg) Inst { return op2(OP_OUTU, uint8(src), uint8(addr)) }

// OutD writes src to addr.
func OutD(src FReg, addr UReg) Inst { return op2(OP_OUTD, uint8(src), uint8(addr)) }
