// Package parallel aggregates one input with several workers. The input is
// only ever split on record boundaries; every worker owns its Table and the
// tables are merged once all workers are done.
package parallel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"brcstream/internal/brc"
	"brcstream/internal/source"
)

type Config struct {
	brc.Config

	Workers    int
	ChunkSize  int
	ChannelCap int
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = source.DefaultChunkSize
	}
	if c.ChannelCap <= 0 {
		c.ChannelCap = c.Workers * 4
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

type ChunkGetter interface {
	NextChunk() *Chunk
	ReleaseChunk(*Chunk)
}

type workerResult struct {
	table   *brc.Table
	bytes   int64
	records int64
}

// parseWorker parses chunks until the chunker is drained. Every chunk is
// parsed with the chunk's offset, so errors carry absolute offsets.
func parseWorker(chunker ChunkGetter, cfg brc.Config) (workerResult, error) {
	table, err := brc.NewTable(cfg.Buckets)
	if err != nil {
		return workerResult{}, err
	}
	hasher, err := brc.NewKeyHasher(cfg.Hasher)
	if err != nil {
		return workerResult{}, err
	}
	res := workerResult{table: table}

	for {
		chunk := chunker.NextChunk()
		if chunk == nil {
			return res, nil
		}

		// chunks start on a record boundary, the hasher is reset
		tok := brc.NewTokenizer(table, hasher, chunk.Offset)
		err = tok.Write(chunk.Data)
		if err == nil {
			// only the last chunk can end mid record
			err = tok.End()
		}
		res.bytes += int64(len(chunk.Data))
		res.records += tok.Records()
		chunker.ReleaseChunk(chunk)
		if err != nil {
			return res, err
		}
	}
}

// Run aggregates r with one chunker and cfg.Workers parse workers.
// The first error stops every goroutine and is returned. A truncated last
// record returns the merged Result of every complete record as well.
func Run(ctx context.Context, r io.Reader, cfg Config) (*brc.Result, error) {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	chunker := NewChunker(r, cfg.ChannelCap, cfg.ChunkSize)
	results := make([]workerResult, cfg.Workers)
	errs := make([]error, cfg.Workers)
	wg := sync.WaitGroup{}

	var chunkerErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		chunkerErr = chunker.Run(ctx)
		if chunkerErr != nil {
			cancel(chunkerErr)
		}
		cfg.Logger.Debug("chunker done", "err", chunkerErr)
	}()

	wg.Add(cfg.Workers)
	for i := range cfg.Workers {
		go func() {
			defer wg.Done()
			results[i], errs[i] = parseWorker(drainOnCancel{ctx, chunker}, cfg.Config)
			if errs[i] != nil && !errors.Is(errs[i], brc.ErrTruncatedStream) {
				cancel(errs[i])
			}
			cfg.Logger.Debug("worker done", "id", i, "records", results[i].records, "err", errs[i])
		}()
	}

	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		return nil, err
	}
	return merge(results, errs, cfg.Logger)
}

// drainOnCancel stops handing out chunks once ctx is done, releasing what is
// still buffered so the chunker never blocks.
type drainOnCancel struct {
	ctx     context.Context
	chunker *Chunker
}

func (d drainOnCancel) NextChunk() *Chunk {
	if d.ctx.Err() != nil {
		for chunk := d.chunker.NextChunk(); chunk != nil; chunk = d.chunker.NextChunk() {
			d.chunker.ReleaseChunk(chunk)
		}
		return nil
	}
	return d.chunker.NextChunk()
}

func (d drainOnCancel) ReleaseChunk(chunk *Chunk) { d.chunker.ReleaseChunk(chunk) }

// RunSections aggregates every section with its own worker. Sections must
// start on a record boundary, see source.MappedFile.Sections.
func RunSections(ctx context.Context, sections []*io.SectionReader, cfg Config) (*brc.Result, error) {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	results := make([]workerResult, len(sections))
	errs := make([]error, len(sections))
	wg := sync.WaitGroup{}
	wg.Add(len(sections))
	for i, section := range sections {
		go func() {
			defer wg.Done()
			_, base, _ := section.Outer()
			wcfg := cfg.Config
			wcfg.BaseOffset = base
			res, err := brc.Aggregate(ctx, source.Reader(section, cfg.ChunkSize), wcfg)
			errs[i] = err
			if res != nil {
				results[i] = workerResult{table: res.Table(), bytes: res.Stats().Bytes, records: res.Stats().Records}
			}
			if err != nil && !errors.Is(err, brc.ErrTruncatedStream) {
				cancel(err)
			}
			cfg.Logger.Debug("section done", "id", i, "offset", base, "err", err)
		}()
	}
	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		return nil, err
	}
	return merge(results, errs, cfg.Logger)
}

func merge(results []workerResult, errs []error, log *slog.Logger) (*brc.Result, error) {
	merged, err := brc.NewTable(brc.DefaultBuckets)
	if err != nil {
		return nil, err
	}
	var bytes, records int64
	for _, r := range results {
		if r.table == nil {
			continue
		}
		if err := merged.Merge(r.table); err != nil {
			return nil, err
		}
		bytes += r.bytes
		records += r.records
	}
	res := brc.NewResult(merged, bytes, records)
	log.Debug("merged", "workers", len(results), "stations", merged.Len(), "records", records)

	// only a truncated last record is left at this point
	return res, errors.Join(errs...)
}
