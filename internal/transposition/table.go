// Package transposition implements the lossy transposition table the
// solver uses to cache two-sided score bounds keyed by partial position
// fingerprints.
package transposition

// Table is a fixed-size open-addressed cache mapping a 64-bit position key
// to a single byte of value. Only the low partialKeyBits bits of the key
// are stored; a put always overwrites whatever was there, so a lookup can
// return a stale value on a partial-key collision. The solver tolerates
// this because stored values are only ever used to tighten an alpha-beta
// window, never trusted outright: a wrong tightening is caught when the
// window is refined by the surrounding full-window search.
type Table struct {
	keys         []uint64
	values       []uint8
	size         uint64
	logSize      int
	keyMask      uint64
	partialBits  int
	partialBytes int
}

// New builds a table of size next_prime(2^logSize), storing partialKeyBits
// bits of each key (partialKeyBits must be in (0, 64]). K = 32 with
// logSize = 24 is the customary choice for a 7x6 board.
func New(logSize, partialKeyBits int) *Table {
	size := nextPrime(uint64(1) << uint(logSize))
	t := &Table{
		keys:        make([]uint64, size),
		values:      make([]uint8, size),
		size:        size,
		logSize:     logSize,
		partialBits: partialKeyBits,
	}
	if partialKeyBits >= 64 {
		t.keyMask = ^uint64(0)
	} else {
		t.keyMask = (uint64(1) << uint(partialKeyBits)) - 1
	}
	t.partialBytes = (partialKeyBits + 7) / 8
	return t
}

// Size returns the number of slots in the table (a prime number).
func (t *Table) Size() uint64 { return t.size }

// LogSize returns the log_size the table was constructed with, i.e. the L
// such that Size() == next_prime(2^L). This is distinct from
// log2(Size()): next_prime almost never returns an exact power of two, so
// callers that need to reconstruct an equivalent table (e.g. the opening
// book's file header) must persist this value rather than re-derive it
// from Size().
func (t *Table) LogSize() int { return t.logSize }

// PartialKeyBytes returns the number of bytes used to serialize a partial
// key, rounded up from the table's partial-key bit width.
func (t *Table) PartialKeyBytes() int { return t.partialBytes }

// Reset clears every slot back to the empty sentinel.
func (t *Table) Reset() {
	for i := range t.keys {
		t.keys[i] = 0
		t.values[i] = 0
	}
}

func (t *Table) index(key uint64) uint64 {
	return key % t.size
}

// Put stores value at the slot for key, truncating key to the table's
// partial-key width and unconditionally overwriting any prior occupant.
// Collision resolution is "last writer wins", which is sound under the
// bound semantics the solver layers on top.
func (t *Table) Put(key uint64, value uint8) {
	idx := t.index(key)
	t.keys[idx] = key & t.keyMask
	t.values[idx] = value
}

// Get returns the stored value for key, or 0 (the reserved "absent"
// sentinel) if the slot holds a different partial key.
func (t *Table) Get(key uint64) uint8 {
	idx := t.index(key)
	if t.keys[idx] == key&t.keyMask {
		return t.values[idx]
	}
	return 0
}

// Keys exposes the raw partial-key array, e.g. for serializing an opening
// book built from this table.
func (t *Table) Keys() []uint64 { return t.keys }

// Values exposes the raw value array.
func (t *Table) Values() []uint8 { return t.values }

// LoadRaw installs externally-decoded key/value arrays of exactly Size()
// entries, used by the opening book loader once it has parsed the file's
// key and value sections.
func (t *Table) LoadRaw(keys []uint64, values []uint8) {
	copy(t.keys, keys)
	copy(t.values, values)
}

// nextPrime returns the smallest prime >= n, found by trial division up to
// sqrt(candidate). The table is only ever built once at solver start, so
// this one-time cost is not on any hot path.
func nextPrime(n uint64) uint64 {
	if n < 2 {
		return 2
	}
	for !isPrime(n) {
		n++
	}
	return n
}

func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := uint64(3); d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}
