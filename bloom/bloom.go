// Package bloom wraps github.com/bits-and-blooms/bloom/v3 as a
// dictionary-membership prefilter, grounded on sst/writer.go's
// bloom.NewWithEstimates(100000, 0.01) construction and its serialize-size-
// then-bits-then-crc layout. It is never consulted by artsearch's own
// traversal (see SPEC_FULL.md's SUPPLEMENTED FEATURES) — it exists as a
// standalone fast-reject check a caller can run before opening an index at
// all, e.g. to skip a `search` round trip for a word far outside the
// dictionary's vocabulary.
package bloom

import (
	"bufio"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/spellart/spellart/spellerr"
)

// Filter is a membership prefilter over a fixed dictionary vocabulary.
type Filter struct {
	inner *bloom.BloomFilter
}

// NewFromWords builds a filter sized for len(words) entries at a 1% false
// positive rate, matching the teacher's NewWithEstimates idiom, and adds
// every word.
func NewFromWords(words [][]byte) *Filter {
	f := &Filter{inner: bloom.NewWithEstimates(uint(max(len(words), 1)), 0.01)}
	for _, w := range words {
		f.inner.Add(w)
	}
	return f
}

// MayContain reports whether word could be in the dictionary. false is a
// certain negative; true may be a false positive.
func (f *Filter) MayContain(word []byte) bool {
	return f.inner.Test(word)
}

// WriteTo serializes the filter as: hash-function count (4 bytes), bit
// array capacity in bits (4 bytes), the packed bit array, then a trailing
// CRC32 of everything preceding it — the same shape as sst/writer.go's
// writeBloomFilter, reused here for a standalone filter file instead of an
// SST footer section.
func (f *Filter) WriteTo(w io.Writer) error {
	crc := crc32.NewIEEE()
	mw := io.MultiWriter(w, crc)

	if err := binary.Write(mw, binary.LittleEndian, uint32(f.inner.K())); err != nil {
		return spellerr.IO("write bloom filter hash count", err)
	}
	if err := binary.Write(mw, binary.LittleEndian, uint32(f.inner.Cap())); err != nil {
		return spellerr.IO("write bloom filter capacity", err)
	}
	if _, err := f.inner.WriteTo(mw); err != nil {
		return spellerr.IO("write bloom filter bit array", err)
	}
	if err := binary.Write(w, binary.LittleEndian, crc.Sum32()); err != nil {
		return spellerr.IO("write bloom filter crc", err)
	}
	return nil
}

// ReadFrom reconstructs a filter from the layout WriteTo produces,
// validating the trailing CRC32 against the bytes that precede it.
func ReadFrom(r io.Reader) (*Filter, error) {
	br := bufio.NewReader(r)
	crc := crc32.NewIEEE()
	tr := io.TeeReader(br, crc)

	var hashCount, capacity uint32
	if err := binary.Read(tr, binary.LittleEndian, &hashCount); err != nil {
		return nil, spellerr.IO("read bloom filter hash count", err)
	}
	if err := binary.Read(tr, binary.LittleEndian, &capacity); err != nil {
		return nil, spellerr.IO("read bloom filter capacity", err)
	}

	inner := bloom.New(0, 0)
	if _, err := inner.ReadFrom(tr); err != nil {
		return nil, spellerr.IO("read bloom filter bit array", err)
	}

	var wantCRC uint32
	if err := binary.Read(br, binary.LittleEndian, &wantCRC); err != nil {
		return nil, spellerr.IO("read bloom filter crc", err)
	}
	if gotCRC := crc.Sum32(); gotCRC != wantCRC {
		return nil, spellerr.IO("bloom filter crc mismatch", nil)
	}

	return &Filter{inner: inner}, nil
}

// Save writes the filter to a new file at path.
func Save(f *Filter, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return spellerr.IO("create bloom filter file", err)
	}
	defer file.Close()
	return f.WriteTo(file)
}

// Load reads a filter previously written by Save.
func Load(path string) (*Filter, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, spellerr.IO("open bloom filter file", err)
	}
	defer file.Close()
	return ReadFrom(file)
}
