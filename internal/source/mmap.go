package source

import (
	"fmt"
	"io"
	"iter"

	"golang.org/x/exp/mmap"
)

type MappedFile struct {
	mm *mmap.ReaderAt
}

func Mmap(inputFile string) (*MappedFile, error) {
	mm, err := mmap.Open(inputFile)
	if err != nil {
		return nil, fmt.Errorf("mmap.Open: %w", err)
	}
	return &MappedFile{mm: mm}, nil
}

func (m *MappedFile) Len() int { return m.mm.Len() }

func (m *MappedFile) Close() error { return m.mm.Close() }

// Reader reads the whole mapping.
func (m *MappedFile) Reader() *io.SectionReader {
	return io.NewSectionReader(m.mm, 0, int64(m.mm.Len()))
}

// Chunks reads the whole mapping in chunks of size bytes.
func (m *MappedFile) Chunks(size int) iter.Seq2[[]byte, error] {
	return Reader(m.Reader(), size)
}

// Sections splits the mapping in at most nsections readers of roughly equal
// size. Every section but the last ends right after a '\n', so no record
// spans two sections.
func (m *MappedFile) Sections(nsections int) []*io.SectionReader {
	mmlen := m.mm.Len()
	if nsections < 1 {
		nsections = 1
	}
	if mmlen == 0 {
		return []*io.SectionReader{io.NewSectionReader(m.mm, 0, 0)}
	}

	sectionReaders := make([]*io.SectionReader, 0, nsections)
	sectionSize := mmlen / nsections
	sectionStartPos := 0
	for range nsections - 1 {
		end := -1
		for j := min(sectionStartPos+sectionSize, mmlen) - 1; j < mmlen; j++ {
			if j >= sectionStartPos && m.mm.At(j) == '\n' {
				end = j + 1
				break
			}
		}
		if end == -1 {
			break
		}
		sectionReaders = append(sectionReaders, io.NewSectionReader(m.mm, int64(sectionStartPos), int64(end-sectionStartPos)))
		sectionStartPos = end
		if sectionStartPos == mmlen {
			return sectionReaders
		}
	}
	// whatever is left, possibly without a trailing '\n'
	return append(sectionReaders, io.NewSectionReader(m.mm, int64(sectionStartPos), int64(mmlen-sectionStartPos)))
}
