package parallel

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manoInput() []byte {
	b := make([]byte, 0, 64*1024+128)
	line := []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa patate;1.0\n")
	for range 1024 + 128 {
		b = append(b, line...)
	}
	return b
}

func drain(t *testing.T, chunker *Chunker, input []byte) []byte {
	t.Helper()
	var out []byte
	for {
		chunk := chunker.NextChunk()
		if chunk == nil {
			break
		}
		require.Equal(t, int64(len(out)), chunk.Offset)
		require.Equal(t, input[chunk.Offset:chunk.Offset+int64(len(chunk.Data))], chunk.Data)
		if int(chunk.Offset)+len(chunk.Data) < len(input) {
			require.Equalf(t, byte('\n'), chunk.Data[len(chunk.Data)-1], "chunk at %d", chunk.Offset)
		}
		out = append(out, chunk.Data...)
		chunker.ReleaseChunk(chunk)
	}
	return out
}

func TestChunkerMano(t *testing.T) {
	b := manoInput()
	for _, chunkSize := range []int{16, 255, 4096, 1 << 20} {
		r := bufio.NewReaderSize(bytes.NewReader(b), 1024*1024)
		chunker := NewChunker(r, 1, chunkSize)

		done := make(chan error, 1)
		go func() { done <- chunker.Run(context.Background()) }()
		assert.Equal(t, b, drain(t, chunker, b), "chunkSize %d", chunkSize)
		assert.NoError(t, <-done)
	}
}

func TestChunkerShortReads(t *testing.T) {
	b := manoInput()
	chunker := NewChunker(iotest.HalfReader(bytes.NewReader(b)), 4, 300)
	done := make(chan error, 1)
	go func() { done <- chunker.Run(context.Background()) }()
	assert.Equal(t, b, drain(t, chunker, b))
	assert.NoError(t, <-done)
}

func TestChunkerNoTrailingNewline(t *testing.T) {
	b := []byte("a;1.0\nb;2.0\nc;3")
	chunker := NewChunker(bytes.NewReader(b), 4, 4)
	done := make(chan error, 1)
	go func() { done <- chunker.Run(context.Background()) }()
	assert.Equal(t, b, drain(t, chunker, b))
	assert.NoError(t, <-done)
}

func TestChunkerReadError(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(bytes.NewReader([]byte("a;1.0\n")), iotest.ErrReader(boom))
	chunker := NewChunker(r, 4, 64)
	done := make(chan error, 1)
	go func() { done <- chunker.Run(context.Background()) }()
	for chunk := chunker.NextChunk(); chunk != nil; chunk = chunker.NextChunk() {
		chunker.ReleaseChunk(chunk)
	}
	assert.ErrorIs(t, <-done, boom)
}

func TestChunkerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	chunker := NewChunker(bytes.NewReader(manoInput()), 1, 64)
	done := make(chan error, 1)
	go func() { done <- chunker.Run(ctx) }()

	chunk := chunker.NextChunk()
	require.NotNil(t, chunk)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
