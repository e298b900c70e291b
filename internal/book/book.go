// Package book implements the on-disk opening book: a transposition table
// of precomputed scores for shallow, canonically-keyed positions, keyed by
// Position.Key3 so that mirror-symmetric positions share one entry.
//
// File format (little-endian throughout):
//
//	offset 0  uint8  width
//	offset 1  uint8  height
//	offset 2  uint8  max_depth
//	offset 3  uint8  partial_key_bytes (1, 2, 4, or 8)
//	offset 4  uint8  value_bytes (always 1)
//	offset 5  uint8  log_size L (<= 40)
//	offset 6  p * partial_key_bytes : key array, p = next_prime(2^L)
//	offset …  p * 1 bytes           : value array
//
// A stored value of 0 always means "absent": real scores are shifted by
// MinScore-1 before being written, so a genuine stored score is never 0.
package book

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/YKhan142008/connect4-engine/internal/position"
	"github.com/YKhan142008/connect4-engine/internal/transposition"
)

const headerSize = 6

var validKeyBytes = map[int]bool{1: true, 2: true, 4: true, 8: true}

// Book is a read-after-load, in-memory opening book. It is safe for
// concurrent reads once loaded (no mutation follows Load).
type Book struct {
	width, height uint8
	depth         int
	table         *transposition.Table
}

// New returns an empty book for the given board dimensions. Get always
// returns 0 (no entry) until Load succeeds.
func New(width, height uint8) *Book {
	return &Book{width: width, height: height, depth: -1}
}

// Loaded reports whether a book file has been successfully installed.
func (b *Book) Loaded() bool { return b.depth >= 0 && b.table != nil }

// Depth returns the maximum move count stored in the book, or -1 if no
// book is loaded.
func (b *Book) Depth() int { return b.depth }

// Get returns the book's stored value for p, or 0 if p has been played
// past the book's depth or no book is loaded. The caller is responsible
// for turning a non-zero value into a score (value + MinScore - 1).
func (b *Book) Get(p *position.Position) uint8 {
	if !b.Loaded() || p.Moves() > b.depth {
		return 0
	}
	return b.table.Get(p.Key3())
}

// Load reads a book file from path, validating every header field before
// touching the data section. On any validation or I/O failure the book is
// left exactly as it was (Loaded() unchanged) and a descriptive error is
// returned for the caller to log; Load never panics on a malformed file.
func (b *Book) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening book: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("opening book: reading header: %w", err)
	}

	width, height, depth, keyBytes, valueBytes, logSize := header[0], header[1], header[2], header[3], header[4], header[5]
	if width != b.width {
		return fmt.Errorf("opening book: invalid width (found %d, expected %d)", width, b.width)
	}
	if height != b.height {
		return fmt.Errorf("opening book: invalid height (found %d, expected %d)", height, b.height)
	}
	if int(depth) > int(b.width)*int(b.height) {
		return fmt.Errorf("opening book: invalid depth %d", depth)
	}
	if !validKeyBytes[int(keyBytes)] {
		return fmt.Errorf("opening book: invalid partial key size %d", keyBytes)
	}
	if valueBytes != 1 {
		return fmt.Errorf("opening book: invalid value size %d (expected 1)", valueBytes)
	}
	if logSize > 40 {
		return fmt.Errorf("opening book: invalid log2(size) %d", logSize)
	}

	table := transposition.New(int(logSize), int(keyBytes)*8)
	size := table.Size()

	keyBuf := make([]byte, int(keyBytes))
	keys := make([]uint64, size)
	for i := uint64(0); i < size; i++ {
		if _, err := io.ReadFull(r, keyBuf); err != nil {
			return fmt.Errorf("opening book: truncated key section at entry %d: %w", i, err)
		}
		keys[i] = decodeUint(keyBuf)
	}

	values := make([]byte, size)
	if _, err := io.ReadFull(r, values); err != nil {
		return fmt.Errorf("opening book: truncated value section: %w", err)
	}

	table.LoadRaw(keys, values)
	b.table = table
	b.depth = int(depth)
	return nil
}

// Save writes the book to path in the format documented on the package.
// It fails if no book data has been installed (nothing to save).
func (b *Book) Save(path string) error {
	if !b.Loaded() {
		return fmt.Errorf("opening book: nothing to save")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving opening book: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	keyBytes := b.table.PartialKeyBytes()
	header := []byte{b.width, b.height, uint8(b.depth), uint8(keyBytes), 1, uint8(b.table.LogSize())}
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("saving opening book: writing header: %w", err)
	}

	buf := make([]byte, keyBytes)
	for _, key := range b.table.Keys() {
		encodeUint(buf, key)
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("saving opening book: writing keys: %w", err)
		}
	}
	if _, err := w.Write(b.table.Values()); err != nil {
		return fmt.Errorf("saving opening book: writing values: %w", err)
	}
	return w.Flush()
}

// FromTable installs an in-memory table (built by the offline generator)
// as this book's backing store, at the given depth.
func (b *Book) FromTable(t *transposition.Table, depth int) {
	b.table = t
	b.depth = depth
}

func decodeUint(buf []byte) uint64 {
	var v uint64
	for i := len(buf) - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v
}

func encodeUint(buf []byte, v uint64) {
	for i := range buf {
		buf[i] = byte(v)
		v >>= 8
	}
}

