package node

import (
	"errors"
	"fmt"
)

var (
	ErrMissingScheme  = errors.New("missing scheme")
	ErrWrongScheme    = errors.New("wrong scheme")
	ErrRecordMismatch = errors.New("record does not match codec")
)

// DecodeError is returned for links that a codec cannot read.
type DecodeError struct {
	Protocol Protocol
	Link     string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Protocol == "" {
		return fmt.Sprintf("decode %q: %v", e.Link, e.Err)
	}
	return fmt.Sprintf("decode %s link %q: %v", e.Protocol, e.Link, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UnsupportedProtocolError is returned when no codec exists for a protocol.
type UnsupportedProtocolError struct {
	Protocol Protocol
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("unsupported protocol: %s", e.Protocol)
}

func newDecodeError(p Protocol, link string, err error) error {
	return &DecodeError{Protocol: p, Link: link, Err: err}
}

func mismatch(p Protocol, r Record) error {
	return fmt.Errorf("%s codec got %T: %w", p, r, ErrRecordMismatch)
}
