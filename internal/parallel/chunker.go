package parallel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Chunk is a run of complete records starting at Offset in the input. Only
// the last chunk of an input may end without '\n'.
type Chunk struct {
	Data   []byte
	Offset int64
}

// Chunker cuts r into chunks that end on a record boundary, so workers can
// parse them independently.
type Chunker struct {
	r       io.Reader
	p       sync.Pool
	chunkCh chan *Chunk
}

func NewChunker(r io.Reader, chCap, chunkSize int) *Chunker {
	return &Chunker{
		r:       r,
		chunkCh: make(chan *Chunk, chCap),
		p: sync.Pool{
			New: func() any {
				return &Chunk{Data: make([]byte, 0, chunkSize)}
			},
		},
	}
}

func (c *Chunker) getChunk() *Chunk {
	chunk := c.p.Get().(*Chunk)
	chunk.Data = chunk.Data[:0] // reset
	return chunk
}

func (c *Chunker) ReleaseChunk(chunk *Chunk) {
	c.p.Put(chunk)
}

// NextChunk returns nil once Run has returned.
func (c *Chunker) NextChunk() *Chunk {
	return <-c.chunkCh
}

func (c *Chunker) send(ctx context.Context, chunk *Chunk) error {
	select {
	case c.chunkCh <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run reads r until EOF, an error, or ctx is done. The chunk channel is
// closed on return.
func (c *Chunker) Run(ctx context.Context) error {
	defer close(c.chunkCh)

	var offset int64 // of the first byte of the next chunk
	leftovers := make([]byte, 0, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk := c.getChunk()
		chunk.Offset = offset
		chunk.Data = append(chunk.Data, leftovers...) // leftovers at beginning of chunk
		currentReadStartPos := len(leftovers)         // keep ref for calculations
		leftovers = leftovers[:0]                     // reset
		if currentReadStartPos == cap(chunk.Data) {
			// a record longer than the chunk size, make room
			chunk.Data = append(chunk.Data, 0)
		}
		chunk.Data = chunk.Data[:cap(chunk.Data)] // extend to use all cap

		n, err := c.r.Read(chunk.Data[currentReadStartPos:])
		chunk.Data = chunk.Data[:currentReadStartPos+n] // chop at last read

		if err != nil {
			if errors.Is(err, io.EOF) {
				// push out whatever is left, a missing last '\n' is for the
				// tokenizer to report
				if len(chunk.Data) > 0 {
					return c.send(ctx, chunk)
				}
				c.ReleaseChunk(chunk)
				return nil
			}
			return fmt.Errorf("failed Read: %w", err)
		}

		lastnl := bytes.LastIndexByte(chunk.Data, '\n')
		if lastnl == -1 {
			// no \n and not EOF, keep reading
			leftovers = append(leftovers, chunk.Data...)
			c.ReleaseChunk(chunk)
			continue
		}

		leftovers = append(leftovers, chunk.Data[lastnl+1:]...)
		chunk.Data = chunk.Data[:lastnl+1]
		offset += int64(len(chunk.Data))
		if err := c.send(ctx, chunk); err != nil {
			return err
		}
	}
}
