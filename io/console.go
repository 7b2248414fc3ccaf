package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/ezrec/regvm/isa"
)

// Console provides text I/O of values. Input is a stream of
// whitespace separated numbers; each Out writes one value per line.
type Console struct {
	Input  io.Reader
	Output io.Writer

	scanner *bufio.Scanner
}

var _ Port = (*Console)(nil)

// Rewind does nothing. A console stream cannot seek, and input already
// read ahead stays buffered for the next In.
func (con *Console) Rewind() {
}

// token returns the next whitespace separated input word.
func (con *Console) token() (text string, err error) {
	if con.Input == nil {
		err = ErrPortClosed
		return
	}

	if con.scanner == nil {
		con.scanner = bufio.NewScanner(con.Input)
		con.scanner.Split(bufio.ScanWords)
	}

	if !con.scanner.Scan() {
		err = con.scanner.Err()
		if err == nil {
			err = ErrPortEmpty
		}
		return
	}

	text = con.scanner.Text()
	return
}

// In parses the next input word as a value tagged tag. Words accept
// any strconv base prefix (0x, 0o, 0b).
func (con *Console) In(tag isa.Tag) (value isa.Value, err error) {
	text, err := con.token()
	if err != nil {
		return
	}

	switch tag {
	case isa.TagWord:
		var w uint64
		w, err = strconv.ParseUint(text, 0, 64)
		if err != nil {
			err = errors.Join(ErrPortFormat, err)
			return
		}
		value = isa.Word(w)
	case isa.TagFloat:
		var d float64
		d, err = strconv.ParseFloat(text, 64)
		if err != nil {
			err = errors.Join(ErrPortFormat, err)
			return
		}
		value = isa.Float(d)
	default:
		err = isa.ErrTypeMismatch
	}

	return
}

// Out writes the value followed by a newline.
func (con *Console) Out(value isa.Value) (err error) {
	if con.Output == nil {
		err = ErrPortClosed
		return
	}

	_, err = fmt.Fprintln(con.Output, value.String())
	return
}
