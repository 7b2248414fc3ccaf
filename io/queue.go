package io

import (
	"github.com/ezrec/regvm/isa"
)

// Queue implements a circular buffer of values.
// It operates as a FIFO queue with a fixed capacity and separate read/write positions.
type Queue struct {
	Capacity int // Capacity in values.

	ReadIndex  int
	WriteIndex int
	Size       int
	Data       []isa.Value
}

var _ Port = (*Queue)(nil)

// NewQueue creates an empty queue holding up to capacity values.
func NewQueue(capacity int) (queue *Queue) {
	queue = &Queue{Capacity: capacity}
	queue.Rewind()
	return
}

// Rewind resets the queue to empty, resetting indices and
// reinitializing the data buffer.
func (queue *Queue) Rewind() {
	queue.ReadIndex = 0
	queue.WriteIndex = 0
	queue.Size = 0
	queue.Data = make([]isa.Value, queue.Capacity)
}

// In removes the oldest value. The value is left queued if its tag
// does not match.
func (queue *Queue) In(tag isa.Tag) (value isa.Value, err error) {
	if queue.Size == 0 {
		err = ErrPortEmpty
		return
	}

	value = queue.Data[queue.ReadIndex]
	if !value.Is(tag) {
		value = isa.Value{}
		err = isa.ErrTypeMismatch
		return
	}

	queue.ReadIndex++
	if queue.ReadIndex == queue.Capacity {
		queue.ReadIndex = 0
	}
	queue.Size--

	return
}

// Out appends a value at the current write position.
// Returns ErrPortFull if the buffer has reached capacity.
func (queue *Queue) Out(value isa.Value) (err error) {
	if queue.Size >= queue.Capacity {
		err = ErrPortFull
		return
	}

	queue.Data[queue.WriteIndex] = value

	queue.WriteIndex++
	if queue.WriteIndex == queue.Capacity {
		queue.WriteIndex = 0
	}
	queue.Size++

	return
}
