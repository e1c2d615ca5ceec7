package brc

import (
	"math"
	"unicode/utf8"
)

// Sink receives every completed record.
type Sink interface {
	Record(key Key, name []byte, m int64) error
}

type parserState int

const (
	parserStateName parserState = iota
	parserStateNumber
)

// Tokenizer is a push parser for "<name>;<temperature>\n" records. Chunks may
// be split anywhere, including inside a multi-byte character: the state
// below survives between Write calls.
type Tokenizer struct {
	sink   Sink
	hasher KeyHasher

	state    parserState
	name     []byte
	value    int64
	negative bool
	dotSeen  bool
	intDigit int
	decDigit int

	// incomplete utf-8 sequence at the end of the previous chunk
	carry  [utf8.UTFMax]byte
	ncarry int

	offset      int64 // of the next byte to be consumed
	recordStart int64
	records     int64
	err         error
}

func NewTokenizer(sink Sink, hasher KeyHasher, baseOffset int64) *Tokenizer {
	return &Tokenizer{
		sink:        sink,
		hasher:      hasher,
		name:        make([]byte, 0, 128),
		offset:      baseOffset,
		recordStart: baseOffset,
	}
}

// Offset is the absolute offset of the next byte to be consumed.
func (t *Tokenizer) Offset() int64 { return t.offset }

// Records is the number of records handed to the sink.
func (t *Tokenizer) Records() int64 { return t.records }

// Write consumes chunk. Once an error is returned the Tokenizer is unusable
// and keeps returning it.
func (t *Tokenizer) Write(chunk []byte) error {
	if t.err != nil {
		return t.err
	}
	if t.err = t.write(chunk); t.err != nil {
		return t.err
	}
	return nil
}

func (t *Tokenizer) write(chunk []byte) error {
	for t.ncarry > 0 {
		if !utf8.FullRune(t.carry[:t.ncarry]) {
			if len(chunk) == 0 {
				return nil
			}
			t.carry[t.ncarry] = chunk[0]
			t.ncarry++
			chunk = chunk[1:]
			continue
		}
		r, size := utf8.DecodeRune(t.carry[:t.ncarry])
		if err := t.step(r, t.carry[:size]); err != nil {
			return err
		}
		t.ncarry = copy(t.carry[:], t.carry[size:t.ncarry])
	}

	for i := 0; i < len(chunk); {
		c := chunk[i]
		if c < utf8.RuneSelf {
			if err := t.step(rune(c), chunk[i:i+1]); err != nil {
				return err
			}
			i++
			continue
		}

		if !utf8.FullRune(chunk[i:]) {
			t.ncarry = copy(t.carry[:], chunk[i:])
			return nil
		}
		r, size := utf8.DecodeRune(chunk[i:])
		if err := t.step(r, chunk[i:i+size]); err != nil {
			return err
		}
		i += size
	}
	return nil
}

func (t *Tokenizer) step(r rune, raw []byte) error {
	offset := t.offset
	t.offset += int64(len(raw))

	switch {
	case r == ';':
		t.state = parserStateNumber
		t.value = 0
		t.negative = false
		t.dotSeen = false
		t.intDigit = 0
		t.decDigit = 0
	case r == '\n':
		if err := t.finish(offset); err != nil {
			return err
		}
		t.state = parserStateName
		t.name = t.name[:0]
		t.hasher.Reset()
		t.recordStart = t.offset
	case t.state == parserStateName:
		t.name = append(t.name, raw...)
		t.hasher.Add(r, raw)
	case r == '-':
		if t.negative || t.intDigit > 0 || t.dotSeen {
			return malformed(offset, "unexpected '-' in temperature")
		}
		t.negative = true
	case r == '.':
		if t.dotSeen || t.intDigit == 0 {
			return malformed(offset, "unexpected '.' in temperature")
		}
		t.dotSeen = true
	case r >= '0' && r <= '9':
		if t.dotSeen {
			if t.decDigit > 0 {
				return malformed(offset, "more than one fractional digit")
			}
			t.decDigit++
		} else {
			t.intDigit++
		}
		d := int64(r - '0')
		if t.value > (math.MaxInt64-d)/10 {
			return &ParseError{Offset: offset, Err: ErrNumericOverflow, Detail: "temperature out of range"}
		}
		t.value = t.value*10 + d
	default:
		return malformed(offset, "unexpected %q in temperature", r)
	}
	return nil
}

// finish hands the current record to the sink. offset is the '\n' position.
func (t *Tokenizer) finish(offset int64) error {
	if t.state == parserStateName {
		return malformed(offset, "missing ';' in record starting at %d", t.recordStart)
	}
	if len(t.name) == 0 {
		return malformed(offset, "empty station name")
	}
	if t.intDigit == 0 || !t.dotSeen || t.decDigit != 1 {
		return malformed(offset, "temperature must have exactly one fractional digit")
	}

	m := t.value
	if t.negative {
		m = -m
	}
	if err := t.sink.Record(t.hasher.Key(), t.name, m); err != nil {
		return &ParseError{Offset: offset, Err: err, Detail: "station " + string(t.name)}
	}
	t.records++
	return nil
}

// AtBoundary reports whether the input consumed so far ends on a record
// boundary.
func (t *Tokenizer) AtBoundary() bool {
	return t.ncarry == 0 && t.state == parserStateName && len(t.name) == 0
}

// End must be called once the input is exhausted. It reports a partial last
// record as ErrTruncatedStream.
func (t *Tokenizer) End() error {
	if t.err != nil {
		return t.err
	}
	if !t.AtBoundary() {
		t.err = &ParseError{
			Offset: t.recordStart,
			Err:    ErrTruncatedStream,
			Detail: "last record has no terminating '\\n'",
		}
		return t.err
	}
	return nil
}
