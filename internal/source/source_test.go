package source

import (
	"bytes"
	"errors"
	"io"
	"iter"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInput() []byte {
	b := make([]byte, 0, 64*1024+128)
	line := []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa Zürich;-12.3\n")
	for range 1024 + 128 {
		b = append(b, line...)
	}
	return b
}

func collect(t *testing.T, chunks iter.Seq2[[]byte, error], maxSize int) []byte {
	t.Helper()
	var out []byte
	for chunk, err := range chunks {
		require.NoError(t, err)
		require.LessOrEqual(t, len(chunk), maxSize)
		out = append(out, chunk...)
	}
	return out
}

func TestReader(t *testing.T) {
	b := testInput()
	for _, size := range []int{1, 255, 4096, 1 << 20} {
		assert.Equal(t, b, collect(t, Reader(bytes.NewReader(b), size), size))
	}

	// short reads
	assert.Equal(t, b, collect(t, Reader(iotest.OneByteReader(bytes.NewReader(b)), 64), 64))
	assert.Equal(t, b, collect(t, Reader(iotest.DataErrReader(bytes.NewReader(b)), 64), 64))
}

func TestReaderError(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(bytes.NewReader([]byte("X;1.0\n")), iotest.ErrReader(boom))
	var got []byte
	var gotErr error
	for chunk, err := range Reader(r, 1024) {
		if err != nil {
			gotErr = err
			break
		}
		got = append(got, chunk...)
	}
	assert.Equal(t, []byte("X;1.0\n"), got)
	assert.ErrorIs(t, gotErr, boom)
}

func TestBytes(t *testing.T) {
	b := testInput()
	for _, size := range []int{1, 7, 4096, 0} {
		limit := size
		if size == 0 {
			limit = DefaultChunkSize
		}
		assert.Equal(t, b, collect(t, Bytes(b, size), limit))
	}

	n := 0
	for range Bytes(b, 10) {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func writeTemp(t *testing.T, b []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "measurements.txt")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func TestMmapChunks(t *testing.T) {
	b := testInput()
	m, err := Mmap(writeTemp(t, b))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, len(b), m.Len())
	assert.Equal(t, b, collect(t, m.Chunks(1000), 1000))
}

func TestMmapMissing(t *testing.T) {
	_, err := Mmap(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestMmapSections(t *testing.T) {
	tcs := map[string][]byte{
		"lines":        testInput(),
		"no trailing":  []byte("a;1.0\nb;2.0\nc;3.0"),
		"single line":  []byte("Hamburg;12.0\n"),
		"no newline":   []byte("Hamburg;12.0"),
		"tiny records": []byte("a;1.0\nb;1.0\nc;1.0\nd;1.0\n"),
	}
	for name, b := range tcs {
		t.Run(name, func(t *testing.T) {
			m, err := Mmap(writeTemp(t, b))
			require.NoError(t, err)
			defer m.Close()

			for _, n := range []int{1, 2, 3, 8, 100} {
				sections := m.Sections(n)
				assert.LessOrEqual(t, len(sections), n)

				var out []byte
				for i, s := range sections {
					data, err := io.ReadAll(s)
					require.NoError(t, err)
					if i < len(sections)-1 {
						require.Equal(t, byte('\n'), data[len(data)-1], "section %d of %d", i, n)
					}
					require.NotEmpty(t, data)
					out = append(out, data...)
				}
				assert.Equal(t, b, out, "nsections %d", n)
			}
		})
	}
}
