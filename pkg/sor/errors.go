package sor

import "github.com/pkg/errors"

var (
	// ErrBadMagic is returned when the input does not start with a
	// recognized SOR magic value. It is the only error that fails a
	// whole decode.
	ErrBadMagic = errors.New("not a valid SOR archive")

	// ErrOutOfRange is returned by cursor reads running past the end of
	// the archive buffer.
	ErrOutOfRange = errors.New("read out of range")

	// ErrNameTooLong is returned for entries declaring a name longer
	// than maxNameLen bytes.
	ErrNameTooLong = errors.New("entry name too long")

	// ErrMissingBackreference is returned when a duplicate-reference
	// entry points at an index that has not been decoded.
	ErrMissingBackreference = errors.New("missing backreference")
)
