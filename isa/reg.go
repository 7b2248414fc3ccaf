package isa

import (
	"strings"
)

// RegisterCount is the number of registers in each bank.
const RegisterCount = 8

// UReg names a word register.
type UReg uint8

const (
	U1 = UReg(iota) // U1
	U2              // U2
	U3              // U3
	U4              // U4
	U5              // U5
	U6              // U6
	U7              // U7
	U8              // U8
)

// Valid returns true if the register is one of U1-U8.
func (r UReg) Valid() bool {
	return r < RegisterCount
}

func (r UReg) String() string {
	if !r.Valid() {
		return f("U?%d", uint8(r))
	}
	return "U" + string(rune('1'+r))
}

// FReg names a float register.
type FReg uint8

const (
	F1 = FReg(iota) // F1
	F2              // F2
	F3              // F3
	F4              // F4
	F5              // F5
	F6              // F6
	F7              // F7
	F8              // F8
)

// Valid returns true if the register is one of F1-F8.
func (r FReg) Valid() bool {
	return r < RegisterCount
}

func (r FReg) String() string {
	if !r.Valid() {
		return f("F?%d", uint8(r))
	}
	return "F" + string(rune('1'+r))
}

// Flags is the CPU status flag set.
type Flags uint8

const (
	FlagOverflow  = Flags(1 << 0) // overflow
	FlagInterrupt = Flags(1 << 1) // interrupt
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagOverflow, "overflow"},
	{FlagInterrupt, "interrupt"},
}

// Has returns true if all flags in mask are set.
func (fl Flags) Has(mask Flags) bool {
	return fl&mask == mask
}

// With returns the flag set with mask set or cleared.
func (fl Flags) With(mask Flags, set bool) Flags {
	if set {
		return fl | mask
	}
	return fl &^ mask
}

func (fl Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if fl.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, "|")
}
