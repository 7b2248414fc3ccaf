// Package io provides I/O ports for the regvm In/Out instructions.
// It includes a bounded value queue (Queue) and a text console over an
// io.Reader/io.Writer pair (Console).
package io

import (
	"github.com/ezrec/regvm/isa"
)

// Port defines the interface for all I/O ports attached to a memory.
// Ports transfer whole tagged values.
type Port interface {
	// Rewind resets the port to its initial state.
	Rewind()
	// In reads the next value, which should be tagged tag.
	In(tag isa.Tag) (value isa.Value, err error)
	// Out writes a value to the port.
	Out(value isa.Value) error
}
