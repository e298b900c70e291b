// Package position implements a bit-packed Connect Four board and the
// pure move-generation, win-detection, and hashing primitives the solver
// is built on.
//
// The standard 7x6 Connect Four board is represented using 49 bits in the
// following bit order:
//
// ```comment
//   6 13 20 27 34 41 48
//  ---------------------
// | 5 12 19 26 33 40 47 |
// | 4 11 18 25 32 39 46 |
// | 3 10 17 24 31 38 45 |
// | 2  9 16 23 30 37 44 |
// | 1  8 15 22 29 36 43 |
// | 0  7 14 21 28 35 42 |
//  ---------------------
//```
//
// The extra row of bits at the top of every column is a sentinel: it stops
// bits from one column bleeding into the next under shift-based pattern
// matching, and doubles as the overflow test for a full column.
package position

import (
	"math/bits"
	"strings"
)

const (
	// Width is the number of columns on the board.
	Width int = 7
	// Height is the number of playable rows per column.
	Height int = 6
	// BoardSize is the total number of cells.
	BoardSize int = Width * Height
	// Centre is the index of the middle column.
	Centre int = Width / 2

	// MinScore is the most negative score a position can carry: the side to
	// move loses with the most empty cells remaining.
	MinScore int = -(BoardSize)/2 + 3
	// MaxScore is the most positive score a position can carry.
	MaxScore int = (BoardSize+1)/2 - 3
)

var (
	colBottomMask [Width]uint64
	colTopMask    [Width]uint64
	colFullMask   [Width]uint64
	bottomMask    uint64
	boardMask     uint64
)

func init() {
	for col := 0; col < Width; col++ {
		colBottomMask[col] = uint64(1) << uint(col*(Height+1))
		colTopMask[col] = uint64(1) << uint((Height-1)+col*(Height+1))
		colFullMask[col] = ((uint64(1) << uint(Height)) - 1) << uint(col*(Height+1))
		bottomMask |= colBottomMask[col]
	}
	boardMask = bottomMask * ((1 << uint(Height)) - 1)
}

func bottomMaskCol(col int) uint64 { return colBottomMask[col] }
func topMaskCol(col int) uint64    { return colTopMask[col] }
func columnMask(col int) uint64    { return colFullMask[col] }

// ColumnMask returns the bitmask of every cell in col, exposed for callers
// (such as the solver's move ordering) that need to restrict a move
// bitmask to a single column.
func ColumnMask(col int) uint64 { return colFullMask[col] }

// BottomMask returns the bitmask with one bit set at the bottom of every
// column.
func BottomMask() uint64 { return bottomMask }

// BoardMask returns the bitmask of every legal cell on the board.
func BoardMask() uint64 { return boardMask }

// Position is a bit-packed Connect Four board: the set of occupied cells
// (Mask), the subset of those belonging to the side to move
// (CurrentPosition), and the number of stones played so far.
//
// Invariants: CurrentPosition &^ Mask == 0; popcount(Mask) == moves;
// Mask &^ BoardMask() == 0.
type Position struct {
	CurrentPosition uint64
	Mask            uint64
	moves           int
}

// New returns the empty starting position.
func New() *Position {
	return &Position{}
}

// NewFromFields reconstructs a Position directly from its three defining
// fields. It exists for hosts that track the game state themselves, for
// instance a variant board with cells removed before play begins, and
// hand the solver a legal position without going through a move sequence.
// The core does not validate the invariants; callers must supply a legal
// board.
func NewFromFields(currentPosition, mask uint64, moves int) *Position {
	return &Position{CurrentPosition: currentPosition, Mask: mask, moves: moves}
}

// Clone returns an independent copy of the position, safe to descend into
// without aliasing the parent.
func (p *Position) Clone() *Position {
	clone := *p
	return &clone
}

// FromBoardString parses a Position from a 42-character board description
// read row by row from the top-left. Recognized characters are '.' (empty),
// 'x' (the side to move), and 'o' (the opponent); all others are ignored.
// The caller is responsible for supplying a reachable board; malformed
// alignments are not detected.
func FromBoardString(boardString string) (*Position, error) {
	boardString = strings.ToLower(boardString)
	var chars []rune
	for _, c := range boardString {
		if c == '.' || c == 'o' || c == 'x' {
			chars = append(chars, c)
		}
	}
	if len(chars) != BoardSize {
		return nil, InvalidBoardStringLength{Actual: len(chars), Expected: BoardSize}
	}

	var board, mask uint64
	var moves int
	for i, c := range chars {
		if c == '.' {
			continue
		}
		row := Height - (i/Width) - 1
		col := i % Width
		bitIndex := uint(row + col*(Height+1))
		if c == 'x' {
			board |= uint64(1) << bitIndex
		}
		mask |= uint64(1) << bitIndex
		moves++
	}
	return &Position{CurrentPosition: board, Mask: mask, moves: moves}, nil
}

// FromSequence builds a Position by replaying a move sequence of column
// digits '1'..'W' (1-indexed). It returns an error at the first illegal or
// already-winning move, matching PlaySeq's stricter sibling used for
// embedding callers who want a hard failure instead of a partial count.
func FromSequence(moveSequence string) (*Position, error) {
	p := New()
	col := -1
	for i, c := range moveSequence {
		if c < '0' || c > '9' {
			return nil, InvalidCharacter{Character: c, Index: i}
		}
		col = int(c-'0') - 1
		if col < 0 || col >= Width {
			return nil, InvalidColumn{Column: col + 1, Index: i}
		}
		if !p.CanPlay(col) {
			return nil, InvalidFullColumnMove{Column: col + 1, Index: i}
		}
		if p.IsWinningMove(col) {
			return nil, InvalidWinningMove{Column: col + 1, Index: i}
		}
		p.PlayCol(col)
	}
	if col == -1 {
		return nil, InvalidColumn{Column: col}
	}
	return p, nil
}

// Moves returns the number of stones played so far.
func (p *Position) Moves() int { return p.moves }

// CanPlay reports whether col has room for another stone.
func (p *Position) CanPlay(col int) bool {
	return p.Mask&topMaskCol(col) == 0
}

// PlayCol drops a stone into the lowest empty cell of col. The caller must
// ensure CanPlay(col) is true; behavior is undefined for a full column.
func (p *Position) PlayCol(col int) {
	move := (p.Mask + bottomMaskCol(col)) & columnMask(col)
	p.Play(move)
}

// Play applies a single-cell move bitmask. CurrentPosition is XOR-swapped
// with Mask before the new stone is added so it always names the side to
// move after the play.
func (p *Position) Play(move uint64) {
	p.CurrentPosition ^= p.Mask
	p.Mask |= move
	p.moves++
}

// PlaySeq plays a sequence of column digits '1'..'W', stopping at the
// first illegal or already-winning move. It returns the number of moves
// actually played, so a caller comparing the result against len(seq) can
// detect a truncated (invalid) line without an allocation-heavy error path.
// The offline generator and CLI drivers depend on this behavior.
func (p *Position) PlaySeq(seq string) int {
	for i, c := range seq {
		if c < '0' || c > '9' {
			return i
		}
		col := int(c-'0') - 1
		if col < 0 || col >= Width || !p.CanPlay(col) || p.IsWinningMove(col) {
			return i
		}
		p.PlayCol(col)
	}
	return len(seq)
}

// IsWinningMove reports whether playing col completes a four-in-a-row for
// the side to move. col must be playable.
func (p *Position) IsWinningMove(col int) bool {
	return p.WinningPosition()&p.Possible()&columnMask(col) != 0
}

// CanWinNext reports whether the side to move has any immediate winning
// move available.
func (p *Position) CanWinNext() bool {
	return p.WinningPosition()&p.Possible() != 0
}

// Key returns a fingerprint unique per physical position: adding Mask to
// CurrentPosition shifts the per-column sentinel bit unambiguously, so no
// two distinct reachable positions collide. Used for the transposition
// table.
func (p *Position) Key() uint64 {
	return p.CurrentPosition + p.Mask
}

// Key3 returns the canonical base-3 encoding of the position, collapsing
// the left/right mirror symmetry of the game. Each column is read
// bottom-up while occupied (mover -> 1, opponent -> 2, trailing 0
// separator); the key is computed once left-to-right and once
// right-to-left, and the smaller of the two, with its trailing zero
// digit divided out, is returned. This is the opening book's key.
func (p *Position) Key3() uint64 {
	var forward, reverse uint64
	for col := 0; col < Width; col++ {
		forward = p.partialKey3(forward, col)
	}
	for col := Width - 1; col >= 0; col-- {
		reverse = p.partialKey3(reverse, col)
	}
	if reverse < forward {
		forward = reverse
	}
	return forward / 3
}

func (p *Position) partialKey3(key uint64, col int) uint64 {
	pos := uint64(1) << uint(col*(Height+1))
	for p.Mask&pos != 0 {
		key *= 3
		if p.CurrentPosition&pos != 0 {
			key++
		} else {
			key += 2
		}
		pos <<= 1
	}
	return key * 3
}

// MoveScore returns a move-ordering heuristic: the number of winning cells
// the side to move would have immediately after playing move. Larger is
// better. This is the move_score variant used throughout the solver (see
// SPEC_FULL.md's Open Questions for why the alternative immediate-win /
// forced-block / centrality cascade was not used instead).
func (p *Position) MoveScore(move uint64) int {
	return bits.OnesCount64(computeWinningPosition(p.CurrentPosition|move, p.Mask))
}

// Possible returns the bitmask of legal next-move cells, one per
// non-full column.
func (p *Position) Possible() uint64 {
	return (p.Mask + bottomMask) & boardMask
}

// PossibleNonLosingMoves returns the moves that do not hand the opponent
// an immediate win on their next turn. If the opponent already has two or
// more winning replies no move can save the position and the result is 0
// (the loss is unavoidable, to be detected by the caller). Must not be
// called when CanWinNext() is true.
func (p *Position) PossibleNonLosingMoves() uint64 {
	possible := p.Possible()
	opponentWin := p.OpponentWinningPosition()
	forced := possible & opponentWin
	if forced != 0 {
		if forced&(forced-1) != 0 {
			// More than one forced reply: the opponent has a double
			// threat and wins regardless of what we play here.
			return 0
		}
		possible = forced
	}
	return possible &^ (opponentWin >> 1)
}

// WinningPosition returns the set of empty cells that would complete a
// four-in-a-row if filled by the side to move.
func (p *Position) WinningPosition() uint64 {
	return computeWinningPosition(p.CurrentPosition, p.Mask)
}

// OpponentWinningPosition returns the set of empty cells that would
// complete a four-in-a-row if filled by the opponent.
func (p *Position) OpponentWinningPosition() uint64 {
	return computeWinningPosition(p.CurrentPosition^p.Mask, p.Mask)
}

// computeWinningPosition covers all four alignment families (vertical,
// horizontal, and both diagonals) as a branch-free sequence of shift-and-AND
// operations parameterized by Height. No loop over rows or columns is
// needed; the shift distances 1, Height+1, Height, and Height+2 are the
// only ones that ever produce a four-in-a-row on this bit layout.
func computeWinningPosition(pos, mask uint64) uint64 {
	// Vertical.
	r := (pos << 1) & (pos << 2) & (pos << 3)

	// Horizontal.
	p := (pos << uint(Height+1)) & (pos << uint(2*(Height+1)))
	r |= p & (pos << uint(3*(Height+1)))
	r |= p & (pos >> uint(Height+1))
	p = (pos >> uint(Height+1)) & (pos >> uint(2*(Height+1)))
	r |= p & (pos << uint(Height+1))
	r |= p & (pos >> uint(3*(Height+1)))

	// Diagonal (/).
	p = (pos << uint(Height)) & (pos << uint(2*Height))
	r |= p & (pos << uint(3*Height))
	r |= p & (pos >> uint(Height))
	p = (pos >> uint(Height)) & (pos >> uint(2*Height))
	r |= p & (pos << uint(Height))
	r |= p & (pos >> uint(3*Height))

	// Diagonal (\).
	p = (pos << uint(Height+2)) & (pos << uint(2*(Height+2)))
	r |= p & (pos << uint(3*(Height+2)))
	r |= p & (pos >> uint(Height+2))
	p = (pos >> uint(Height+2)) & (pos >> uint(2*(Height+2)))
	r |= p & (pos << uint(Height+2))
	r |= p & (pos >> uint(3*(Height+2)))

	return r & (boardMask ^ mask)
}

// computeWonPosition reports whether a player's stones already contain a
// four-in-a-row. Unlike computeWinningPosition it looks at occupied cells,
// not empty ones. Its only caller is IsWonPosition; the solver itself never
// needs to check a terminal win, since CanWinNext catches it one ply
// earlier.
func computeWonPosition(pos uint64) bool {
	m := pos & (pos >> uint(Height+1))
	if m&(m>>uint(2*(Height+1))) != 0 {
		return true
	}
	m = pos & (pos >> uint(Height))
	if m&(m>>uint(2*Height)) != 0 {
		return true
	}
	m = pos & (pos >> uint(Height+2))
	if m&(m>>uint(2*(Height+2))) != 0 {
		return true
	}
	m = pos & (pos >> 1)
	return m&(m>>2) != 0
}

// IsWonPosition reports whether either side already has four in a row on
// the board. The solver never reaches a won position mid-search (CanWinNext
// always intercepts one ply earlier); this is a diagnostic helper that
// nothing in the module calls (String does not use it).
func (p *Position) IsWonPosition() bool {
	return computeWonPosition(p.CurrentPosition) || computeWonPosition(p.CurrentPosition^p.Mask)
}

// String renders the board top-to-bottom for debugging, with 'X' for the
// side to move, 'O' for the opponent, and '.' for empty cells. It has no
// bearing on search correctness.
func (p *Position) String() string {
	var rows [Height][Width]byte
	for col := 0; col < Width; col++ {
		for row := 0; row < Height; row++ {
			bit := uint64(1) << uint(col*(Height+1)+row)
			c := byte('.')
			if p.Mask&bit != 0 {
				if p.CurrentPosition&bit != 0 {
					c = 'X'
				} else {
					c = 'O'
				}
			}
			rows[row][col] = c
		}
	}
	var b strings.Builder
	for row := Height - 1; row >= 0; row-- {
		for col := 0; col < Width; col++ {
			if col > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(rows[row][col])
		}
		if row > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
