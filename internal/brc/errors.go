package brc

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrTruncatedStream = errors.New("truncated stream")
	ErrNumericOverflow = errors.New("numeric overflow")
)

// ParseError reports a failure at a byte offset of the input stream.
type ParseError struct {
	Offset int64
	Err    error
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("offset %d: %s", e.Offset, e.Err)
	}
	return fmt.Sprintf("offset %d: %s: %s", e.Offset, e.Err, e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func malformed(offset int64, format string, args ...any) error {
	return &ParseError{Offset: offset, Err: ErrMalformedRecord, Detail: fmt.Sprintf(format, args...)}
}
