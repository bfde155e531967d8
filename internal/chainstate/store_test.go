package chainstate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_OpenMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chainstate.json")

	s, err := Open(path)
	require.NoError(t, err)
	_, ok := s.Get(1)
	require.False(t, ok)
}

func TestStore_UpdateThenGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chainstate.json")
	s, err := Open(path)
	require.NoError(t, err)

	st := State{LastBlockNumber: 149, LastBlockHash: "0xabc", UpdatedAt: "2026-08-01T00:00:00Z"}
	require.NoError(t, s.Update(1, st))

	got, ok := s.Get(1)
	require.True(t, ok)
	require.Equal(t, st, got)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chainstate.json")
	s, err := Open(path)
	require.NoError(t, err)

	st := State{LastBlockNumber: 5000, LastBlockHash: "0xdead", UpdatedAt: "2026-08-01T00:00:00Z"}
	require.NoError(t, s.Update(42, st))

	reopened, err := Open(path)
	require.NoError(t, err)
	got, ok := reopened.Get(42)
	require.True(t, ok)
	require.Equal(t, st, got)
}

func TestStore_SeparatesChains(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chainstate.json")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Update(1, State{LastBlockNumber: 100, LastBlockHash: "0x1"}))
	require.NoError(t, s.Update(2, State{LastBlockNumber: 200, LastBlockHash: "0x2"}))

	got1, ok := s.Get(1)
	require.True(t, ok)
	require.Equal(t, uint64(100), got1.LastBlockNumber)

	got2, ok := s.Get(2)
	require.True(t, ok)
	require.Equal(t, uint64(200), got2.LastBlockNumber)
}
