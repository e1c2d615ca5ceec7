// Package source turns byte inputs into lazy sequences of chunks for
// brc.Aggregate. Chunk boundaries are arbitrary.
package source

import (
	"errors"
	"fmt"
	"io"
	"iter"
)

const DefaultChunkSize = 256 * 1024

// Reader yields chunks of at most size bytes read from r. The yielded slice
// is reused and only valid until the next iteration.
func Reader(r io.Reader, size int) iter.Seq2[[]byte, error] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return func(yield func([]byte, error) bool) {
		buf := make([]byte, size)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				if !yield(buf[:n], nil) {
					return
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				yield(nil, fmt.Errorf("failed Read: %w", err))
				return
			}
		}
	}
}

// Bytes yields data in chunks of size bytes, the last one may be shorter.
func Bytes(data []byte, size int) iter.Seq2[[]byte, error] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return func(yield func([]byte, error) bool) {
		for len(data) > 0 {
			n := min(size, len(data))
			if !yield(data[:n:n], nil) {
				return
			}
			data = data[n:]
		}
	}
}
