package brc

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Baseline aggregates input line by line, without the Tokenizer. It is the
// reference the streaming path is checked against.
func Baseline(input io.Reader) (*Table, error) {
	table, err := NewTable(DefaultBuckets)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReaderSize(input, 1024*1024)
	var offset int64
	for {
		line, err := br.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			return nil, &ParseError{Offset: offset, Err: ErrMalformedRecord, Detail: "line too long"}
		}
		if err == io.EOF {
			if len(line) > 0 {
				return table, &ParseError{Offset: offset, Err: ErrTruncatedStream}
			}
			return table, nil
		}
		if err != nil {
			return nil, fmt.Errorf("ReadSlice: %w", err)
		}

		name, value, ok := bytes.Cut(line[:len(line)-1], []byte(";"))
		if !ok {
			return nil, malformed(offset, "missing ';'")
		}
		if len(name) == 0 {
			return nil, malformed(offset, "empty station name")
		}
		// last ';' wins, like the tokenizer
		if i := bytes.LastIndexByte(value, ';'); i >= 0 {
			value = value[i+1:]
		}

		m, err := ParseTenths(value)
		if err != nil {
			return nil, &ParseError{Offset: offset, Err: err}
		}
		if err := table.Record(Key(xxhash.Sum64(name)), name, m); err != nil {
			return nil, &ParseError{Offset: offset, Err: err}
		}
		offset += int64(len(line))
	}
}
