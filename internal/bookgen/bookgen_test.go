package bookgen

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YKhan142008/connect4-engine/internal/position"
)

func enumerateLines(t *testing.T, depth int) []string {
	t.Helper()
	var out strings.Builder
	require.NoError(t, Enumerate(depth, &out))
	text := strings.TrimRight(out.String(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func TestEnumerateDepthZeroIsOneEmptyLine(t *testing.T) {
	lines := enumerateLines(t, 0)
	require.Len(t, lines, 1)
	assert.Equal(t, "", lines[0])
}

func linesOfLength(lines []string, n int) []string {
	var out []string
	for _, line := range lines {
		if len(line) == n {
			out = append(out, line)
		}
	}
	return out
}

func TestEnumerateDepthOneCountsHalfTheColumns(t *testing.T) {
	lines := enumerateLines(t, 1)
	// Cumulative output includes the depth-0 empty line plus one line per
	// unique one-move position; mirror symmetry collapses the 7 columns
	// into ceil(W/2) classes.
	oneMove := linesOfLength(lines, 1)
	want := (position.Width + 1) / 2
	assert.Len(t, oneMove, want)
}

func TestEnumerateDepthTwoExtendsDepthOneLines(t *testing.T) {
	depthOne := linesOfLength(enumerateLines(t, 1), 1)
	depthTwo := linesOfLength(enumerateLines(t, 2), 2)

	prefixes := make(map[string]bool)
	for _, line := range depthTwo {
		prefixes[line[:1]] = true
	}
	for _, line := range depthOne {
		assert.True(t, prefixes[line], "depth-1 sequence %q should extend into depth-2 output", line)
	}
}

func TestEnumerateNeverEmitsWinningSequences(t *testing.T) {
	for _, line := range enumerateLines(t, 6) {
		p := position.New()
		played := p.PlaySeq(line)
		assert.Equal(t, len(line), played, "enumerated sequence %q must be fully legal and non-winning", line)
	}
}

func TestPartialKeyBytesIsPositive(t *testing.T) {
	assert.GreaterOrEqual(t, PartialKeyBytes(12, position.Width, 24), 1)
}

func TestBuildStoresValidLinesAndSkipsInvalidOnes(t *testing.T) {
	input := "4 " + strconv.Itoa(position.MinScore+1) + "\n" +
		"garbage line\n" +
		"8 5\n" +
		"44 " + strconv.Itoa(position.MinScore+2) + "\n"
	var diag strings.Builder
	result, err := Build(strings.NewReader(input), 2, 10, &diag)
	require.NoError(t, err)

	p := position.New()
	require.Equal(t, 1, p.PlaySeq("4"))
	assert.Equal(t, uint8(2), result.Table.Get(p.Key3()))

	q := position.New()
	require.Equal(t, 2, q.PlaySeq("44"))
	assert.Equal(t, uint8(3), result.Table.Get(q.Key3()))

	assert.Contains(t, diag.String(), "invalid")
}
