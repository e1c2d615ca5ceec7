package brc

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
)

type Config struct {
	// Hasher names the KeyHasher, see NewKeyHasher. Defaults to rolling.
	Hasher string
	// Buckets is the initial number of Store buckets, a power of 2.
	Buckets uint64
	// BaseOffset is the absolute offset of the first byte, used in errors
	// when the chunks are a section of a larger input.
	BaseOffset int64
	Logger     *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

type Stats struct {
	Bytes      int64
	Records    int64
	Stations   int
	Collisions int
}

type Result struct {
	table *Table
	stats Stats
}

func NewResult(table *Table, bytes, records int64) *Result {
	return &Result{
		table: table,
		stats: Stats{
			Bytes:      bytes,
			Records:    records,
			Stations:   table.Len(),
			Collisions: table.Collisions(),
		},
	}
}

func (r *Result) Table() *Table { return r.table }
func (r *Result) Stats() Stats  { return r.stats }

func (r *Result) String() string {
	return Format(r.table.All())
}

// Aggregate pulls every chunk and folds its records into a new Table.
//
// ctx is checked before every chunk. A stream ending in the middle of a
// record returns the Result of all complete records along with an
// ErrTruncatedStream error; any other error returns a nil Result.
func Aggregate(ctx context.Context, chunks iter.Seq2[[]byte, error], cfg Config) (*Result, error) {
	log := cfg.logger()

	table, err := NewTable(cfg.Buckets)
	if err != nil {
		return nil, err
	}
	hasher, err := NewKeyHasher(cfg.Hasher)
	if err != nil {
		return nil, err
	}
	tok := NewTokenizer(table, hasher, cfg.BaseOffset)

	next, stop := iter.Pull2(chunks)
	defer stop()

	nchunks := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk, err, ok := next()
		if !ok {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read chunk %d: %w", nchunks, err)
		}
		if err := tok.Write(chunk); err != nil {
			return nil, err
		}
		nchunks++
	}

	res := NewResult(table, tok.Offset()-cfg.BaseOffset, tok.Records())
	log.Debug("aggregate done",
		"chunks", nchunks,
		"bytes", res.stats.Bytes,
		"records", res.stats.Records,
		"stations", res.stats.Stations,
		"collisions", res.stats.Collisions,
	)

	if err := tok.End(); err != nil {
		if errors.Is(err, ErrTruncatedStream) {
			return res, err
		}
		return nil, err
	}
	return res, nil
}
