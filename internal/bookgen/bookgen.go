// Package bookgen implements the two offline modes used to build an
// opening book: enumerating unique positions up to a depth, and ingesting
// scored move sequences into a transposition table ready to be saved as a
// book file.
package bookgen

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/YKhan142008/connect4-engine/internal/position"
	"github.com/YKhan142008/connect4-engine/internal/transposition"
)

// log3Of2 is log_2(3), used by PartialKeyBytes to size the book's partial
// key from its base-3 position encoding.
const log3Of2 = 1.58496250072

// Enumerate walks every unique position (modulo mirror symmetry) reachable
// within depth plies, writing one move-sequence-per-line to out. Winning
// moves are pruned since a position one ply past a win is never stored in
// the book. Traversal is depth-first and deterministic, visiting columns
// left to right.
func Enumerate(depth int, out io.Writer) error {
	visited := make(map[uint64]struct{})
	seq := make([]byte, depth+1)
	w := bufio.NewWriter(out)
	if err := explore(position.New(), seq, depth, visited, w); err != nil {
		return err
	}
	return w.Flush()
}

func explore(p *position.Position, seq []byte, depth int, visited map[uint64]struct{}, w *bufio.Writer) error {
	key := p.Key3()
	if _, seen := visited[key]; seen {
		return nil
	}
	visited[key] = struct{}{}

	nbMoves := p.Moves()
	if nbMoves <= depth {
		if _, err := fmt.Fprintln(w, string(seq[:nbMoves])); err != nil {
			return err
		}
	}
	if nbMoves >= depth {
		return nil
	}

	for col := 0; col < position.Width; col++ {
		if !p.CanPlay(col) || p.IsWinningMove(col) {
			continue
		}
		child := p.Clone()
		child.PlayCol(col)
		seq[nbMoves] = byte('1' + col)
		if err := explore(child, seq, depth, visited, w); err != nil {
			return err
		}
	}
	return nil
}

// PartialKeyBytes computes the number of bytes needed for the book's
// partial key, following the original generator's formula: a key3 value
// spans at most (depth + Width - 1) base-3 digits, each worth log2(3)
// bits; logSize bits of that are already implied by the table's slot
// index, so only the remainder needs to be stored explicitly.
func PartialKeyBytes(depth, width, logSize int) int {
	bits := int(float64(depth+width-1)*log3Of2) + 1 - logSize
	bytes := (bits + 7) / 8
	if bytes < 1 {
		bytes = 1
	}
	return bytes
}

// BuildResult is the table assembled from scored input lines, paired with
// the depth it was built for (needed to populate the book header).
type BuildResult struct {
	Table *transposition.Table
	Depth int
}

// Build reads "<move_sequence> <score>" lines from r until EOF, validating
// each one (sequence must fully replay, score must be in range) before
// storing score - MinScore + 1 at the position's canonical key3 in a fresh
// table sized by PartialKeyBytes. Malformed lines are reported to diag and
// skipped; Build itself never fails on bad input, only on a read error.
func Build(r io.Reader, depth, logSize int, diag io.Writer) (*BuildResult, error) {
	partialKeyBytes := PartialKeyBytes(depth, position.Width, logSize)
	table := transposition.New(logSize, partialKeyBytes*8)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			fmt.Fprintf(diag, "invalid line (ignored): %s\n", line)
			continue
		}
		seq, scoreStr := fields[0], fields[1]
		score, err := strconv.Atoi(scoreStr)
		if err != nil {
			fmt.Fprintf(diag, "invalid score (ignored): %s\n", line)
			continue
		}

		p := position.New()
		played := p.PlaySeq(seq)
		if played != len(seq) || score < position.MinScore || score > position.MaxScore {
			fmt.Fprintf(diag, "invalid line (ignored): %s\n", line)
			continue
		}

		table.Put(p.Key3(), uint8(score-position.MinScore+1))
		count++
		if count%1000000 == 0 {
			fmt.Fprintf(diag, "%d\n", count)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading book input: %w", err)
	}
	return &BuildResult{Table: table, Depth: depth}, nil
}
