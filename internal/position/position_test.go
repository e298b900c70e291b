package position

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsEmpty(t *testing.T) {
	p := New()
	assert.Equal(t, 0, p.Moves())
	assert.Equal(t, uint64(0), p.Mask)
	assert.Equal(t, uint64(0), p.CurrentPosition)
}

func TestPlaySeqInvariants(t *testing.T) {
	seqs := []string{"4", "44", "444444", "4455", "74223417356477411661335734732425662"}
	for _, seq := range seqs {
		p := New()
		played := p.PlaySeq(seq)
		require.Equal(t, len(seq), played, "sequence %q should fully replay", seq)
		assert.Equal(t, bits.OnesCount64(p.Mask), p.Moves())
		assert.Equal(t, uint64(0), p.CurrentPosition&^p.Mask)
		assert.Equal(t, uint64(0), p.Mask&^BoardMask())
	}
}

func TestPlaySeqStopsOnIllegalColumn(t *testing.T) {
	p := New()
	played := p.PlaySeq("48")
	assert.Equal(t, 1, played)
}

func TestPlaySeqStopsOnFullColumn(t *testing.T) {
	p := New()
	played := p.PlaySeq("4444447")
	assert.Equal(t, 6, played)
}

func TestKey3MirrorSymmetry(t *testing.T) {
	seqs := []string{"", "4", "447", "1253", "7654321"}
	for _, seq := range seqs {
		p := New()
		require.Equal(t, len(seq), p.PlaySeq(seq))

		mirrored := New()
		mirrorSeq := mirrorSequence(seq)
		require.Equal(t, len(mirrorSeq), mirrored.PlaySeq(mirrorSeq))

		assert.Equal(t, p.Key3(), mirrored.Key3(), "key3 of %q and its mirror %q must match", seq, mirrorSeq)
	}
}

func mirrorSequence(seq string) string {
	out := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		col := int(seq[i] - '0')
		out[i] = byte('0' + (Width + 1 - col))
	}
	return string(out)
}

func TestWinningPositionIsAlwaysEmptyCells(t *testing.T) {
	seqs := []string{"", "4", "44", "4455", "1212121"}
	for _, seq := range seqs {
		p := New()
		require.Equal(t, len(seq), p.PlaySeq(seq))
		assert.Equal(t, uint64(0), p.WinningPosition()&p.Mask)
	}
}

func TestKeyIsInjectivePerColumnState(t *testing.T) {
	a := New()
	require.Equal(t, 1, a.PlaySeq("4"))
	b := New()
	require.Equal(t, 1, b.PlaySeq("5"))
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestCanPlayAndFullColumn(t *testing.T) {
	p := New()
	require.Equal(t, 6, p.PlaySeq("444444"))
	assert.False(t, p.CanPlay(3))
	for col := 0; col < Width; col++ {
		if col != 3 {
			assert.True(t, p.CanPlay(col))
		}
	}
}

func TestIsWinningMoveDetectsHorizontalThreat(t *testing.T) {
	p := New()
	require.Equal(t, 6, p.PlaySeq("114422"))
	assert.True(t, p.IsWinningMove(2))
}

func TestFromSequenceRejectsInvalidCharacter(t *testing.T) {
	_, err := FromSequence("4x")
	require.Error(t, err)
	var badChar InvalidCharacter
	assert.ErrorAs(t, err, &badChar)
}

func TestFromSequenceRejectsFullColumn(t *testing.T) {
	_, err := FromSequence("4444444")
	require.Error(t, err)
}

func TestFromBoardStringRoundTrip(t *testing.T) {
	p := New()
	require.Equal(t, 4, p.PlaySeq("4455"))
	parsed, err := FromBoardString(p.String())
	require.NoError(t, err)
	assert.Equal(t, p.Moves(), parsed.Moves())
}

func TestCloneIsIndependent(t *testing.T) {
	p := New()
	require.Equal(t, 1, p.PlaySeq("4"))
	clone := p.Clone()
	clone.PlayCol(3)
	assert.NotEqual(t, p.Mask, clone.Mask)
	assert.Equal(t, 1, p.Moves())
	assert.Equal(t, 2, clone.Moves())
}
