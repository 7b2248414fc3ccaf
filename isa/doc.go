// Package isa defines the instruction set architecture of the regvm
// register machine.
//
// The machine has two disjoint register banks: eight 64-bit word
// registers (U1-U8) and eight double precision float registers (F1-F8),
// a program counter, a base pointer, and a small flags register. Memory
// is split into three segments: code (instructions), stack (tagged
// values, frame addressed through the base pointer) and heap (sparse
// tagged cells).
//
// Instruction operands are ordered destination first. A "U" suffix
// selects the word bank, a "D" suffix the float bank, and an "I" suffix
// marks an immediate operand. Jumps take the target register first,
// followed by the registers they test.
//
// The package only fixes the contract: Memory is the capability set of
// a storage backend, and Executor the capability set of a register file
// that executes one instruction at a time.
package isa
