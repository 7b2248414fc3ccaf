package memory

import (
	"github.com/ezrec/regvm/isa"
)

// Stack is a growable stack of tagged values. Slot addresses start at
// zero at the bottom of the stack.
type Stack struct {
	Data []isa.Value
}

func (s *Stack) Push(value isa.Value) {
	s.Data = append(s.Data, value)
}

func (s *Stack) Pop() (value isa.Value, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *Stack) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack) Len() int {
	return len(s.Data)
}

func (s *Stack) Peek() (value isa.Value, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

// At returns the slot at addr.
func (s *Stack) At(addr uint64) (value isa.Value, ok bool) {
	if addr >= uint64(len(s.Data)) {
		return
	}

	return s.Data[addr], true
}

// Set replaces the slot at addr.
func (s *Stack) Set(addr uint64, value isa.Value) (ok bool) {
	if addr >= uint64(len(s.Data)) {
		return
	}

	s.Data[addr] = value
	return true
}

// Truncate drops every slot at or above addr.
func (s *Stack) Truncate(addr uint64) (ok bool) {
	if addr > uint64(len(s.Data)) {
		return
	}

	clear(s.Data[addr:])
	s.Data = s.Data[:addr]
	return true
}

func (s *Stack) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}
