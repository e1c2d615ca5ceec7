package brc

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/twmb/murmur3"
	"github.com/zeebo/xxh3"
)

// Key identifies a station in the Store. Distinct names may share a key.
type Key uint64

// KeyHasher computes a station key one character at a time.
// raw is the UTF-8 encoding of r as it appeared in the input.
type KeyHasher interface {
	Reset()
	Add(r rune, raw []byte)
	Key() Key
}

// Hasher names accepted by NewKeyHasher.
const (
	HasherRolling = "rolling"
	HasherXXHash  = "xxhash"
	HasherXXH3    = "xxh3"
	HasherMurmur3 = "murmur3"
)

func NewKeyHasher(name string) (KeyHasher, error) {
	switch name {
	case "", HasherRolling:
		return &RollingHasher{}, nil
	case HasherXXHash:
		return &digestHasher{d: xxhash.New()}, nil
	case HasherXXH3:
		return &digestHasher{d: xxh3.New()}, nil
	case HasherMurmur3:
		return &digestHasher{d: murmur3.New64()}, nil
	}
	return nil, fmt.Errorf("unknown key hasher: %q", name)
}

// RollingHasher is h = h*33 + code point, wrapping on overflow.
type RollingHasher struct {
	h uint64
}

func (r *RollingHasher) Reset() { r.h = 0 }

func (r *RollingHasher) Add(c rune, _ []byte) {
	r.h = r.h*33 + uint64(c)
}

func (r *RollingHasher) Key() Key { return Key(r.h) }

type digest interface {
	io.Writer
	Sum64() uint64
	Reset()
}

// digestHasher streams the raw name bytes into a 64 bit digest.
type digestHasher struct {
	d digest
}

func (h *digestHasher) Reset() { h.d.Reset() }

func (h *digestHasher) Add(_ rune, raw []byte) {
	h.d.Write(raw)
}

func (h *digestHasher) Key() Key { return Key(h.d.Sum64()) }
