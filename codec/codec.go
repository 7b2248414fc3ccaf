// Package codec serializes regvm programs.
//
// A program is encoded as a CBOR array of instructions. Each
// instruction is itself an array: the opcode number followed by its
// operands in Shape order. Registers and word immediates are CBOR
// unsigned integers; float immediates are always 64-bit CBOR floats
// with NaN and infinity payloads preserved bit for bit.
package codec

import (
	"errors"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/ezrec/regvm/isa"
	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	ErrDecode = errors.New(f("program decode"))
	ErrEncode = errors.New(f("program encode"))
)

// ErrInst locates a decode or encode failure at an instruction index.
type ErrInst struct {
	Index int
	Err   error
}

func (err *ErrInst) Error() string {
	return f("instruction %d: %v", err.Index, err.Err)
}

func (err *ErrInst) Unwrap() error {
	return err.Err
}

const (
	cborMajorMask     = 0xe0
	cborMajorUnsigned = 0x00
	cborFloat16       = 0xf9
	cborFloat32       = 0xfa
	cborFloat64       = 0xfb
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.EncOptions{
		Sort:          cbor.SortCoreDeterministic,
		ShortestFloat: cbor.ShortestFloatNone,
		NaNConvert:    cbor.NaNConvertNone,
		InfConvert:    cbor.InfConvertNone,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// encodeInst lays out one instruction as [opcode, operands...].
func encodeInst(inst isa.Inst) (fields []any, err error) {
	err = inst.Validate()
	if err != nil {
		return
	}

	fields = append(fields, uint8(inst.Op))

	reg := 0
	for _, kind := range inst.Op.Shape().Operands() {
		switch kind {
		case isa.OPERAND_UREG, isa.OPERAND_FREG:
			fields = append(fields, inst.Reg(reg))
			reg++
		case isa.OPERAND_WORD:
			var w uint64
			w, err = inst.Imm.Word()
			if err != nil {
				return
			}
			fields = append(fields, w)
		case isa.OPERAND_FLOAT:
			var d float64
			d, err = inst.Imm.Float()
			if err != nil {
				return
			}
			fields = append(fields, d)
		}
	}

	return
}

// Encode serializes a program.
func Encode(code []isa.Inst) (data []byte, err error) {
	program := make([][]any, 0, len(code))
	for n, inst := range code {
		var fields []any
		fields, err = encodeInst(inst)
		if err != nil {
			err = errors.Join(ErrEncode, &ErrInst{Index: n, Err: err})
			return
		}
		program = append(program, fields)
	}

	data, err = cborEncMode.Marshal(program)
	if err != nil {
		err = errors.Join(ErrEncode, err)
	}

	return
}

// decodeInst rebuilds one instruction from its raw CBOR fields.
func decodeInst(raw []cbor.RawMessage) (inst isa.Inst, err error) {
	if len(raw) == 0 {
		err = isa.ErrOpcodeInvalid
		return
	}

	var op uint8
	err = decodeUnsigned(raw[0], &op)
	if err != nil {
		return
	}
	inst.Op = isa.Opcode(op)
	if !inst.Op.Valid() {
		err = isa.ErrOpcodeInvalid
		return
	}

	operands := inst.Op.Shape().Operands()
	if len(raw) != 1+len(operands) {
		err = ErrOperandCount{Op: inst.Op, Want: len(operands), Got: len(raw) - 1}
		return
	}

	var regs [3]uint8
	reg := 0
	for n, kind := range operands {
		rm := raw[1+n]
		switch kind {
		case isa.OPERAND_UREG, isa.OPERAND_FREG:
			err = decodeUnsigned(rm, &regs[reg])
			if err != nil {
				return
			}
			if regs[reg] >= isa.RegisterCount {
				err = isa.ErrInvalidReg
				return
			}
			reg++
		case isa.OPERAND_WORD:
			var w uint64
			err = decodeUnsigned(rm, &w)
			if err != nil {
				return
			}
			inst.Imm = isa.Word(w)
		case isa.OPERAND_FLOAT:
			if len(rm) == 0 || !isFloat(rm[0]) {
				err = isa.ErrTypeMismatch
				return
			}
			var d float64
			err = cbor.Unmarshal(rm, &d)
			if err != nil {
				return
			}
			inst.Imm = isa.Float(d)
		}
	}

	inst.A, inst.B, inst.C = regs[0], regs[1], regs[2]

	err = inst.Validate()

	return
}

// isFloat reports whether head starts a CBOR half, single or double
// precision float. Other simple values (null, undefined, booleans) are
// not floats.
func isFloat(head byte) bool {
	switch head {
	case cborFloat16, cborFloat32, cborFloat64:
		return true
	}
	return false
}

// decodeUnsigned decodes a CBOR unsigned integer, refusing any other
// major type.
func decodeUnsigned[T uint8 | uint64](rm cbor.RawMessage, value *T) (err error) {
	if len(rm) == 0 || rm[0]&cborMajorMask != cborMajorUnsigned {
		err = isa.ErrTypeMismatch
		return
	}
	return cbor.Unmarshal(rm, value)
}

// Decode deserializes a program.
func Decode(data []byte) (code []isa.Inst, err error) {
	var program [][]cbor.RawMessage
	err = cbor.Unmarshal(data, &program)
	if err != nil {
		err = errors.Join(ErrDecode, err)
		return
	}

	code = make([]isa.Inst, 0, len(program))
	for n, raw := range program {
		var inst isa.Inst
		inst, err = decodeInst(raw)
		if err != nil {
			code = nil
			err = errors.Join(ErrDecode, &ErrInst{Index: n, Err: err})
			return
		}
		code = append(code, inst)
	}

	return
}

// ErrOperandCount is an instruction with the wrong number of operands.
type ErrOperandCount struct {
	Op   isa.Opcode
	Want int
	Got  int
}

func (err ErrOperandCount) Error() string {
	return f("%v wants %d operands, got %d", err.Op, err.Want, err.Got)
}

// ReadFile loads an encoded program from path.
func ReadFile(path string) (code []isa.Inst, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	return Decode(data)
}

// WriteFile saves an encoded program to path.
func WriteFile(path string, code []isa.Inst) (err error) {
	data, err := Encode(code)
	if err != nil {
		return
	}

	return os.WriteFile(path, data, 0o644)
}
