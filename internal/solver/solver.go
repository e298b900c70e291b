// Package solver implements the iterative null-window negamax driver that
// turns a Position, a TranspositionTable, and an OpeningBook into a
// game-theoretic score (or a per-column vector of scores) under perfect
// play.
package solver

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/YKhan142008/connect4-engine/internal/book"
	"github.com/YKhan142008/connect4-engine/internal/movesorter"
	"github.com/YKhan142008/connect4-engine/internal/position"
	"github.com/YKhan142008/connect4-engine/internal/transposition"
)

// InvalidMove is the sentinel Analyze reports for a column that cannot be
// played.
const InvalidMove = -1000

const (
	defaultTableLogSize     = 24
	defaultTablePartialBits = 32
)

// Solver orchestrates the search: it owns a transposition table and an
// optional opening book, and exposes the embedding interface (Solve,
// Analyze, LoadBook, Reset).
type Solver struct {
	tt          *transposition.Table
	book        *book.Book
	nodeCount   uint64
	columnOrder [position.Width]int
	logger      zerolog.Logger
}

// New returns a Solver with a freshly allocated transposition table and no
// opening book installed. Logging goes to the package-level zerolog logger
// unless overridden with WithLogger.
func New() *Solver {
	s := &Solver{
		tt:     transposition.New(defaultTableLogSize, defaultTablePartialBits),
		book:   book.New(uint8(position.Width), uint8(position.Height)),
		logger: log.Logger,
	}
	s.columnOrder = centralColumnOrder()
	return s
}

// WithLogger overrides the solver's logger, e.g. to attach request-scoped
// fields in a hosting service.
func (s *Solver) WithLogger(logger zerolog.Logger) *Solver {
	s.logger = logger
	return s
}

// centralColumnOrder returns columns ordered by distance from the centre,
// breaking ties toward the higher index: centre, centre+1, centre-1,
// centre+2, centre-2, and so on. Column order only affects search speed,
// not soundness, so any permutation biased toward the centre is correct.
func centralColumnOrder() [position.Width]int {
	var order [position.Width]int
	for i := range order {
		order[i] = i
	}
	sort.Slice(order[:], func(i, j int) bool {
		di := abs(order[i] - position.Centre)
		dj := abs(order[j] - position.Centre)
		if di != dj {
			return di < dj
		}
		return order[i] > order[j]
	})
	return order
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// NodeCount returns the number of negamax calls made since construction or
// the last Reset.
func (s *Solver) NodeCount() uint64 { return s.nodeCount }

// Reset clears the node counter and the transposition table. The opening
// book, being read-only after load, is untouched.
func (s *Solver) Reset() {
	s.nodeCount = 0
	s.tt.Reset()
}

// LoadBook installs the opening book at path. It returns false (and logs
// at Warn) on any I/O or format error, leaving the solver to search
// without a book: slower, but still correct.
func (s *Solver) LoadBook(path string) bool {
	b := book.New(uint8(position.Width), uint8(position.Height))
	if err := b.Load(path); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("opening book not loaded")
		return false
	}
	s.book = b
	s.logger.Info().Str("path", path).Int("depth", b.Depth()).Msg("opening book loaded")
	return true
}

// Solve returns the exact game-theoretic score of p under optimal play by
// both sides: positive if the side to move wins, negative if it loses,
// zero for a draw. The magnitude is the number of empty cells remaining
// after the decisive move, halved.
//
// If weak is true the search only distinguishes win/draw/loss (the
// returned score's sign is exact but its magnitude is not), which is
// considerably cheaper.
func (s *Solver) Solve(p *position.Position, weak bool) int {
	if p.CanWinNext() {
		return (position.Width*position.Height + 1 - p.Moves()) / 2
	}

	lo := -(position.Width*position.Height - p.Moves()) / 2
	hi := (position.Width*position.Height + 1 - p.Moves()) / 2
	if weak {
		lo, hi = -1, 1
	}

	for lo < hi {
		med := lo + (hi-lo)/2
		if med <= 0 && lo/2 < med {
			med = lo / 2
		} else if med >= 0 && hi/2 > med {
			med = hi / 2
		}
		r := s.negamax(p, med, med+1)
		s.logger.Debug().Int("med", med).Int("result", r).Uint64("nodes", s.nodeCount).Msg("narrowing")
		if r <= med {
			hi = r
		} else {
			lo = r
		}
	}
	return lo
}

// Analyze returns, for every column, the score of playing there (from the
// perspective of the side to move before playing), or InvalidMove if the
// column is already full.
func (s *Solver) Analyze(p *position.Position, weak bool) [position.Width]int {
	var scores [position.Width]int
	for col := range scores {
		scores[col] = InvalidMove
		if !p.CanPlay(col) {
			continue
		}
		if p.IsWinningMove(col) {
			scores[col] = (position.Width*position.Height + 1 - p.Moves()) / 2
			continue
		}
		child := p.Clone()
		child.PlayCol(col)
		scores[col] = -s.Solve(child, weak)
	}
	return scores
}

// negamax is the recursive core. It returns the exact score of p if it
// lies in [alpha, beta], otherwise a bound on the side of the window that
// was crossed. p must not have an immediate winning move and alpha must be
// less than beta; both are invariants of the caller, not handled here.
func (s *Solver) negamax(p *position.Position, alpha, beta int) int {
	s.nodeCount++

	if p.Moves() == position.Width*position.Height {
		return 0
	}

	nonLosing := p.PossibleNonLosingMoves()
	if nonLosing == 0 {
		return -(position.Width*position.Height - p.Moves()) / 2
	}
	if p.Moves() >= position.Width*position.Height-2 {
		return 0
	}

	lo := -(position.Width*position.Height - 2 - p.Moves()) / 2
	if alpha < lo {
		alpha = lo
		if alpha >= beta {
			return alpha
		}
	}
	hi := (position.Width*position.Height - 1 - p.Moves()) / 2
	if beta > hi {
		beta = hi
		if alpha >= beta {
			return beta
		}
	}

	key := p.Key()
	if v := s.tt.Get(key); v != 0 {
		if int(v) > position.MaxScore-position.MinScore+1 {
			lowerBound := int(v) + 2*position.MinScore - position.MaxScore - 2
			if alpha < lowerBound {
				alpha = lowerBound
				if alpha >= beta {
					return alpha
				}
			}
		} else {
			upperBound := int(v) + position.MinScore - 1
			if beta > upperBound {
				beta = upperBound
				if alpha >= beta {
					return beta
				}
			}
		}
	}

	if bookVal := s.book.Get(p); bookVal != 0 {
		return int(bookVal) + position.MinScore - 1
	}

	var sorter movesorter.MoveSorter
	// Add the least central columns first so that, among equal scores, the
	// sorter hands back the most central move first.
	for i := len(s.columnOrder) - 1; i >= 0; i-- {
		col := s.columnOrder[i]
		m := nonLosing & position.ColumnMask(col)
		if m != 0 {
			sorter.Add(m, p.MoveScore(m))
		}
	}

	for {
		move := sorter.GetNext()
		if move == 0 {
			break
		}
		child := p.Clone()
		child.Play(move)
		score := -s.negamax(child, -beta, -alpha)
		if score >= beta {
			s.tt.Put(key, uint8(score+position.MaxScore-2*position.MinScore+2))
			return score
		}
		if score > alpha {
			alpha = score
		}
	}

	s.tt.Put(key, uint8(alpha-position.MinScore+1))
	return alpha
}
