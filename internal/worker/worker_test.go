package worker

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainlake/chainlake/internal/chainstate"
	"github.com/chainlake/chainlake/internal/checkpoint"
	"github.com/chainlake/chainlake/internal/logger"
	"github.com/chainlake/chainlake/internal/planner"
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

func newTestWorker(t *testing.T, client *fakeClient, opts Options) (*Worker, *checkpoint.Store, *chainstate.Store, string) {
	t.Helper()
	dir := t.TempDir()

	cp, err := checkpoint.Open(filepath.Join(dir, "checkpoint.json"))
	require.NoError(t, err)
	cs, err := chainstate.Open(filepath.Join(dir, "chainstate.json"))
	require.NoError(t, err)
	w := warehouse.New(dir, warehouse.Bronze)

	return New(client, cp, cs, w, logger.NewNopLogger(), opts), cp, cs, dir
}

func TestWorker_ProcessesRangeAndMarksDone(t *testing.T) {
	client := &fakeClient{
		tip: 1000,
		blocks: map[uint64]map[string]any{
			100: block("0x64", "0xgenesis", "0xhash100"),
			101: block("0x65", "0xhash100", "0xhash101"),
		},
	}

	w, cp, cs, _ := newTestWorker(t, client, Options{FinalityDepth: 10, LogChunk: 100})

	plan := []planner.Range{{ChainID: 1, StartBlock: 100, EndBlock: 101}}
	require.NoError(t, w.Run(context.Background(), plan))

	require.True(t, cp.IsDone(plan[0]))
	state, ok := cs.Get(1)
	require.True(t, ok)
	require.Equal(t, uint64(101), state.LastBlockNumber)
}

func TestWorker_SkipsAlreadyDoneRange(t *testing.T) {
	client := &fakeClient{tip: 1000}
	w, cp, _, _ := newTestWorker(t, client, Options{FinalityDepth: 10, LogChunk: 100})

	r := planner.Range{ChainID: 1, StartBlock: 100, EndBlock: 101}
	require.NoError(t, cp.MarkDone([]planner.Range{r}))

	require.NoError(t, w.Run(context.Background(), []planner.Range{r}))
}

func TestWorker_SkipsUnfinalizedRangeByDefault(t *testing.T) {
	client := &fakeClient{tip: 105, blocks: map[uint64]map[string]any{
		100: block("0x64", "0xgenesis", "0xhash100"),
	}}
	w, cp, _, _ := newTestWorker(t, client, Options{FinalityDepth: 10, LogChunk: 100})

	r := planner.Range{ChainID: 1, StartBlock: 100, EndBlock: 101}
	require.NoError(t, w.Run(context.Background(), []planner.Range{r}))
	require.False(t, cp.IsDone(r), "range past the finalized tip must not be marked done")
}

func TestWorker_RejectsRangeWhoseFirstBlockDoesNotChainOntoState(t *testing.T) {
	client := &fakeClient{
		tip: 1000,
		blocks: map[uint64]map[string]any{
			100: block("0x64", "0xgenesis", "0xhash100"),
			101: block("0x65", "0xhash100", "0xhash101"),
			102: block("0x66", "0xreorged", "0xhash102"),
		},
	}
	w, cp, cs, _ := newTestWorker(t, client, Options{FinalityDepth: 10, LogChunk: 100})

	first := planner.Range{ChainID: 1, StartBlock: 100, EndBlock: 101}
	require.NoError(t, w.Run(context.Background(), []planner.Range{first}))

	second := planner.Range{ChainID: 1, StartBlock: 102, EndBlock: 102}
	err := w.Run(context.Background(), []planner.Range{second})
	require.Error(t, err)

	require.False(t, cp.IsDone(second), "a range that fails linkage must not be marked done")
	state, ok := cs.Get(1)
	require.True(t, ok)
	require.Equal(t, uint64(101), state.LastBlockNumber, "chain state must not advance past the rejected range")
}

func TestWorker_IgnoreFinalityBypassesGate(t *testing.T) {
	client := &fakeClient{tip: 105, blocks: map[uint64]map[string]any{
		100: block("0x64", "0xgenesis", "0xhash100"),
		101: block("0x65", "0xhash100", "0xhash101"),
	}}
	w, cp, _, _ := newTestWorker(t, client, Options{FinalityDepth: 10, LogChunk: 100, IgnoreFinality: true})

	r := planner.Range{ChainID: 1, StartBlock: 100, EndBlock: 101}
	require.NoError(t, w.Run(context.Background(), []planner.Range{r}))
	require.True(t, cp.IsDone(r))
}
