package book

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YKhan142008/connect4-engine/internal/position"
	"github.com/YKhan142008/connect4-engine/internal/transposition"
)

func TestUnloadedBookGetReturnsZero(t *testing.T) {
	b := New(uint8(position.Width), uint8(position.Height))
	assert.False(t, b.Loaded())
	assert.Equal(t, -1, b.Depth())
	assert.Equal(t, uint8(0), b.Get(position.New()))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	table := transposition.New(6, 16)
	p := position.New()
	require.Equal(t, 1, p.PlaySeq("4"))
	table.Put(p.Key3(), 42)

	b := New(uint8(position.Width), uint8(position.Height))
	b.FromTable(table, 4)

	path := filepath.Join(t.TempDir(), "test.book")
	require.NoError(t, b.Save(path))

	loaded := New(uint8(position.Width), uint8(position.Height))
	require.NoError(t, loaded.Load(path))
	assert.True(t, loaded.Loaded())
	assert.Equal(t, 4, loaded.Depth())
	assert.Equal(t, uint8(42), loaded.Get(p))
}

func TestGetReturnsZeroPastBookDepth(t *testing.T) {
	table := transposition.New(6, 16)
	p := position.New()
	require.Equal(t, 4, p.PlaySeq("4455"))
	table.Put(p.Key3(), 10)

	b := New(uint8(position.Width), uint8(position.Height))
	b.FromTable(table, 2)

	assert.Equal(t, uint8(0), b.Get(p))
}

func TestLoadRejectsMismatchedWidth(t *testing.T) {
	table := transposition.New(4, 8)
	b := New(uint8(position.Width), uint8(position.Height))
	b.FromTable(table, 0)
	path := filepath.Join(t.TempDir(), "bad.book")
	require.NoError(t, b.Save(path))

	wrong := New(uint8(position.Width+1), uint8(position.Height))
	err := wrong.Load(path)
	require.Error(t, err)
	assert.False(t, wrong.Loaded())
}

func TestLoadRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.book")
	require.NoError(t, os.WriteFile(path, []byte{byte(position.Width), byte(position.Height), 0, 1}, 0o644))

	b := New(uint8(position.Width), uint8(position.Height))
	err := b.Load(path)
	require.Error(t, err)
	assert.False(t, b.Loaded())
}
