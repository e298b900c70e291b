// Package movesorter implements a tiny bounded priority queue used to try
// candidate moves in descending heuristic order during search.
package movesorter

import "github.com/YKhan142008/connect4-engine/internal/position"

type entry struct {
	move  uint64
	score int
}

// MoveSorter is an insertion-sorted priority queue capped at
// position.Width entries. Insertion sort is the right tool here: the
// number of candidates never exceeds the board width, and the initial
// solver adds moves from the edges inward, roughly in ascending score
// order, which is exactly the case insertion sort is fastest for. Among
// equal scores, the move added last is returned first.
type MoveSorter struct {
	entries [position.Width]entry
	size    int
}

// Add inserts a move with its ordering score in ascending order so that
// GetNext can pop the largest score first in O(1).
func (s *MoveSorter) Add(move uint64, score int) {
	pos := s.size
	s.size++
	for pos > 0 && s.entries[pos-1].score > score {
		s.entries[pos] = s.entries[pos-1]
		pos--
	}
	s.entries[pos] = entry{move: move, score: score}
}

// GetNext pops and returns the remaining move with the highest score, or 0
// if the sorter is empty.
func (s *MoveSorter) GetNext() uint64 {
	if s.size == 0 {
		return 0
	}
	s.size--
	return s.entries[s.size].move
}

// Reset clears the sorter for reuse without reallocating its backing array.
func (s *MoveSorter) Reset() {
	s.size = 0
}
