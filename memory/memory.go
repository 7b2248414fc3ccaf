// Package memory is an in-memory storage backend for regvm.
//
// Code is a slice of instructions, the stack a slice of tagged values,
// and the heap a sparse map of tagged cells. In/Out addresses with an
// attached io.Port are routed to that port; all other I/O addresses
// fall through to the heap.
package memory

import (
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"

	"github.com/ezrec/regvm/io"
	"github.com/ezrec/regvm/isa"
)

// Memory owns the code, stack and heap segments of one machine.
type Memory struct {
	Verbose bool // Set to enable verbose logging.

	Code  []isa.Inst           // Code segment.
	Stack Stack                // Stack segment.
	Heap  map[uint64]isa.Value // Heap segment.

	ports map[uint64]io.Port
}

var _ isa.Memory = (*Memory)(nil)

// NewMemory creates an empty memory.
func NewMemory() (mem *Memory) {
	mem = &Memory{
		Heap:  map[uint64]isa.Value{},
		ports: map[uint64]io.Port{},
	}

	return
}

// Attach routes I/O address addr to port. A nil port detaches it.
func (mem *Memory) Attach(addr uint64, port io.Port) {
	if mem.ports == nil {
		mem.ports = map[uint64]io.Port{}
	}

	if port == nil {
		delete(mem.ports, addr)
		return
	}

	mem.ports[addr] = port
}

// Port returns the port attached at addr.
func (mem *Memory) Port(addr uint64) (port io.Port, ok bool) {
	port, ok = mem.ports[addr]
	return
}

// Ports returns the attached I/O addresses in order.
func (mem *Memory) Ports() []uint64 {
	return slices.Sorted(maps.Keys(mem.ports))
}

// Rewind rewinds every attached port.
func (mem *Memory) Rewind() {
	for _, port := range mem.ports {
		port.Rewind()
	}
}

func (mem *Memory) ClearCode() {
	if mem.Verbose {
		log.Printf("memory: clear code (%d instructions)", len(mem.Code))
	}
	mem.Code = nil
}

func (mem *Memory) ClearStack() {
	if mem.Verbose {
		log.Printf("memory: clear stack (%d values)", mem.Stack.Len())
	}
	mem.Stack.Reset()
}

func (mem *Memory) ClearHeap() {
	if mem.Verbose {
		log.Printf("memory: clear heap (%d cells)", len(mem.Heap))
	}
	if mem.Heap == nil {
		mem.Heap = map[uint64]isa.Value{}
	}
	clear(mem.Heap)
}

func (mem *Memory) Read(addr uint64, tag isa.Tag) (value isa.Value, err error) {
	value, ok := mem.Heap[addr]
	if !ok {
		err = isa.ErrInvalidHeapAddr
		return
	}

	if !value.Is(tag) {
		value = isa.Value{}
		err = errors.Join(isa.ErrInvalidHeapType, isa.ErrTypeMismatch)
		return
	}

	return
}

func (mem *Memory) Write(addr uint64, value isa.Value) (err error) {
	if mem.Heap == nil {
		mem.Heap = map[uint64]isa.Value{}
	}

	mem.Heap[addr] = value
	return
}

// frameAddr returns the absolute stack address of bp+offset. The offset
// is two's complement, so arguments pushed below bp are reachable.
func (mem *Memory) frameAddr(bp, offset uint64) (addr uint64, err error) {
	addr = bp + offset
	if addr >= uint64(mem.Stack.Len()) {
		err = isa.ErrInvalidStackAddr
	}
	return
}

func (mem *Memory) StackRead(bp, offset uint64) (value isa.Value, err error) {
	addr, err := mem.frameAddr(bp, offset)
	if err != nil {
		return
	}

	value, _ = mem.Stack.At(addr)
	return
}

func (mem *Memory) StackWrite(bp, offset uint64, value isa.Value) (err error) {
	addr, err := mem.frameAddr(bp, offset)
	if err != nil {
		return
	}

	mem.Stack.Set(addr, value)
	return
}

func (mem *Memory) Push(value isa.Value) {
	mem.Stack.Push(value)
}

func (mem *Memory) Pop() (value isa.Value, err error) {
	value, ok := mem.Stack.Pop()
	if !ok {
		err = isa.ErrStackUnderflow
	}
	return
}

func (mem *Memory) StackTop() uint64 {
	return uint64(mem.Stack.Len())
}

func (mem *Memory) DropFrame(bp uint64) (err error) {
	if !mem.Stack.Truncate(bp) {
		err = isa.ErrInvalidStackAddr
	}
	return
}

func (mem *Memory) Fetch(addr uint64) (inst isa.Inst, err error) {
	if addr >= uint64(len(mem.Code)) {
		err = isa.ErrFetch(addr)
		return
	}

	inst = mem.Code[addr]
	return
}

func (mem *Memory) AppendCode(code ...isa.Inst) {
	if mem.Verbose {
		log.Printf("memory: load %d instructions at %#x", len(code), len(mem.Code))
	}
	mem.Code = append(mem.Code, code...)
}

func (mem *Memory) AppendStack(values ...isa.Value) {
	for _, value := range values {
		mem.Stack.Push(value)
	}
}

func (mem *Memory) In(addr uint64, tag isa.Tag) (value isa.Value, err error) {
	port, ok := mem.ports[addr]
	if !ok {
		return mem.Read(addr, tag)
	}

	value, err = port.In(tag)
	if err != nil {
		err = portFault(err)
		return
	}

	if !value.Is(tag) {
		value = isa.Value{}
		err = isa.ErrTypeMismatch
	}

	return
}

func (mem *Memory) Out(addr uint64, value isa.Value) (err error) {
	port, ok := mem.ports[addr]
	if !ok {
		return mem.Write(addr, value)
	}

	err = port.Out(value)
	if err != nil {
		err = portFault(err)
	}

	return
}

// portFault maps a port failure into the execution fault taxonomy: a
// port that cannot transfer a value is an invalid address of the I/O
// space.
func portFault(err error) error {
	if errors.Is(err, isa.ErrTypeMismatch) {
		return err
	}

	return errors.Join(isa.ErrInvalidHeapAddr, err)
}

// String summarizes the segment sizes.
func (mem *Memory) String() string {
	return fmt.Sprintf("code:%d stack:%d heap:%d ports:%d",
		len(mem.Code), mem.Stack.Len(), len(mem.Heap), len(mem.ports))
}
