package io

import (
	"errors"

	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	// Port errors
	ErrPortFull   = errors.New(f("port full"))
	ErrPortEmpty  = errors.New(f("port empty"))
	ErrPortFormat = errors.New(f("port format"))
	ErrPortClosed = errors.New(f("port closed"))
)
