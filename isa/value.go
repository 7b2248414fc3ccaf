package isa

import (
	"math"
	"strconv"
)

// Tag is the discriminant of a Value.
type Tag uint8

const (
	TagWord  = Tag(0) // word
	TagFloat = Tag(1) // float
)

func (tag Tag) String() string {
	switch tag {
	case TagWord:
		return "word"
	case TagFloat:
		return "float"
	}
	return f("tag(%d)", uint8(tag))
}

// Value is a tagged machine value, either a 64-bit word or a double.
// Values are stored as their raw bit pattern, so == compares floats
// bit for bit (a NaN equals the same NaN).
type Value struct {
	tag  Tag
	bits uint64
}

// Word makes a word tagged value.
func Word(value uint64) Value {
	return Value{tag: TagWord, bits: value}
}

// Float makes a float tagged value.
func Float(value float64) Value {
	return Value{tag: TagFloat, bits: math.Float64bits(value)}
}

// Tag returns the value's tag.
func (v Value) Tag() Tag {
	return v.tag
}

// Is returns true if the value carries the tag.
func (v Value) Is(tag Tag) bool {
	return v.tag == tag
}

// Word returns the word payload, or ErrTypeMismatch.
func (v Value) Word() (value uint64, err error) {
	if v.tag != TagWord {
		err = ErrTypeMismatch
		return
	}
	value = v.bits
	return
}

// Float returns the float payload, or ErrTypeMismatch.
func (v Value) Float() (value float64, err error) {
	if v.tag != TagFloat {
		err = ErrTypeMismatch
		return
	}
	value = math.Float64frombits(v.bits)
	return
}

// Bits returns the raw 64-bit payload regardless of tag.
func (v Value) Bits() uint64 {
	return v.bits
}

func (v Value) String() string {
	switch v.tag {
	case TagWord:
		return strconv.FormatUint(v.bits, 10)
	case TagFloat:
		return strconv.FormatFloat(math.Float64frombits(v.bits), 'g', -1, 64)
	}
	return f("%v:%#x", v.tag, v.bits)
}
