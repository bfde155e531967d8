package tailer

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainlake/chainlake/internal/chainstate"
	"github.com/chainlake/chainlake/internal/warehouse"
)

type fakeClient struct {
	tip    uint64
	blocks map[uint64]map[string]any
}

func (f *fakeClient) Close() {}
func (f *fakeClient) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	return nil, nil
}
func (f *fakeClient) BlockNumber(ctx context.Context) (uint64, error) { return f.tip, nil }
func (f *fakeClient) GetBlockByNumber(ctx context.Context, number uint64, fullTx bool) (map[string]any, error) {
	return f.blocks[number], nil
}
func (f *fakeClient) GetLogs(ctx context.Context, from, to uint64) ([]map[string]any, error) {
	return nil, nil
}

func block(number, parentHash, hash string) map[string]any {
	return map[string]any{
		"number":        number,
		"hash":          hash,
		"parentHash":    parentHash,
		"timestamp":     "0x64",
		"miner":         "0x1111111111111111111111111111111111111111",
		"gasUsed":       "0x5208",
		"gasLimit":      "0x1c9c380",
		"baseFeePerGas": "0x3b9aca00",
		"transactions":  []any{},
	}
}

func TestRun_FetchesFromChainStateToFinalizedTip(t *testing.T) {
	dir := t.TempDir()
	cs, err := chainstate.Open(filepath.Join(dir, "chainstate.json"))
	require.NoError(t, err)
	require.NoError(t, cs.Update(1, chainstate.State{LastBlockNumber: 99, LastBlockHash: "0xhash99"}))

	client := &fakeClient{
		tip: 110,
		blocks: map[uint64]map[string]any{
			100: block("0x64", "0xhash99", "0xhash100"),
		},
	}
	w := warehouse.New(dir, warehouse.Bronze)

	res, err := Run(context.Background(), client, cs, w, Options{
		ChainID:       1,
		FinalityDepth: 10,
		ChunkSize:     50,
		LogChunk:      100,
	})
	require.NoError(t, err)
	require.False(t, res.CaughtUp)
	require.Equal(t, 1, res.RangesProcessed)

	state, ok := cs.Get(1)
	require.True(t, ok)
	require.Equal(t, uint64(100), state.LastBlockNumber)
}

func TestRun_CaughtUpWhenStartExceedsFinalizedEnd(t *testing.T) {
	dir := t.TempDir()
	cs, err := chainstate.Open(filepath.Join(dir, "chainstate.json"))
	require.NoError(t, err)
	require.NoError(t, cs.Update(1, chainstate.State{LastBlockNumber: 1000}))

	client := &fakeClient{tip: 1005}
	w := warehouse.New(dir, warehouse.Bronze)

	res, err := Run(context.Background(), client, cs, w, Options{
		ChainID:       1,
		FinalityDepth: 10,
		ChunkSize:     50,
		LogChunk:      100,
	})
	require.NoError(t, err)
	require.True(t, res.CaughtUp)
}

func TestRun_ExplicitStartBlockOverridesChainState(t *testing.T) {
	dir := t.TempDir()
	cs, err := chainstate.Open(filepath.Join(dir, "chainstate.json"))
	require.NoError(t, err)

	client := &fakeClient{
		tip:    300,
		blocks: map[uint64]map[string]any{200: block("0xc8", "0xparent", "0xhash200")},
	}
	w := warehouse.New(dir, warehouse.Bronze)
	start := uint64(200)
	end := uint64(200)

	res, err := Run(context.Background(), client, cs, w, Options{
		ChainID:       1,
		StartBlock:    &start,
		UserEnd:       &end,
		FinalityDepth: 0,
		ChunkSize:     50,
		LogChunk:      100,
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.RangesProcessed)
}

func TestRun_RejectsRangeWhoseFirstBlockDoesNotChainOntoState(t *testing.T) {
	dir := t.TempDir()
	cs, err := chainstate.Open(filepath.Join(dir, "chainstate.json"))
	require.NoError(t, err)
	require.NoError(t, cs.Update(1, chainstate.State{LastBlockNumber: 99, LastBlockHash: "0xhash99"}))

	client := &fakeClient{
		tip: 110,
		blocks: map[uint64]map[string]any{
			100: block("0x64", "0xreorged", "0xhash100"),
		},
	}
	w := warehouse.New(dir, warehouse.Bronze)

	_, err = Run(context.Background(), client, cs, w, Options{
		ChainID:       1,
		FinalityDepth: 10,
		ChunkSize:     50,
		LogChunk:      100,
	})
	require.Error(t, err)

	state, ok := cs.Get(1)
	require.True(t, ok)
	require.Equal(t, uint64(99), state.LastBlockNumber, "chain state must not advance past the rejected range")
}

func TestRun_NoChainStateAndNoOverrideErrors(t *testing.T) {
	dir := t.TempDir()
	cs, err := chainstate.Open(filepath.Join(dir, "chainstate.json"))
	require.NoError(t, err)

	client := &fakeClient{tip: 10}
	w := warehouse.New(dir, warehouse.Bronze)

	_, err = Run(context.Background(), client, cs, w, Options{ChainID: 1, ChunkSize: 50})
	require.Error(t, err)
}
