// Package cpu implements the register file of the regvm machine.
//
// The CPU consists of a program counter (Ip), a base pointer (Base),
// eight 64-bit word registers (U1-U8), eight double precision float
// registers (F1-F8) and the status flags. It executes one isa.Inst at a
// time against any isa.Memory, and dispatches SysCall instructions to a
// host supplied syscall table.
package cpu
