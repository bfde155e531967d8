// Package worker drives a plan file to completion: for each not-yet-done
// range it fetches, writes the four bronze tables, advances chain state,
// and checkpoints the range as done, so a crashed or restarted run picks
// up exactly where it left off.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/chainlake/chainlake/internal/chainstate"
	"github.com/chainlake/chainlake/internal/checkpoint"
	"github.com/chainlake/chainlake/internal/fetcher"
	"github.com/chainlake/chainlake/internal/logger"
	"github.com/chainlake/chainlake/internal/planner"
	"github.com/chainlake/chainlake/internal/warehouse"
	pkgrpc "github.com/chainlake/chainlake/pkg/rpc"
)

// Options configures a Worker run.
type Options struct {
	// RPCConcurrency bounds in-flight RPC calls (passed through to the
	// client; recorded here for operator visibility).
	RPCConcurrency int
	// LogChunk bounds the block span of a single eth_getLogs call.
	LogChunk uint64
	// FinalityDepth is how many blocks behind tip are considered final.
	FinalityDepth uint64
	// SkipUnfinalized records whether the finality gate is in force. Run
	// does not read it: ranges ending beyond the finalized tip are skipped
	// with a warning whenever IgnoreFinality is false.
	SkipUnfinalized bool
	// IgnoreFinality bypasses the finality gate entirely.
	IgnoreFinality bool
}

// Worker reads a plan and drives each range through fetch, write,
// chain-state update, and checkpointing.
type Worker struct {
	client     pkgrpc.EthClient
	checkpoint *checkpoint.Store
	chainState *chainstate.Store
	writer     *warehouse.Writer
	log        *logger.Logger
	opts       Options
}

// New builds a Worker. client, checkpoint, chainState, and writer are
// owned by the caller and shared with no other concurrent writer.
func New(client pkgrpc.EthClient, cp *checkpoint.Store, cs *chainstate.Store, w *warehouse.Writer, log *logger.Logger, opts Options) *Worker {
	return &Worker{client: client, checkpoint: cp, chainState: cs, writer: w, log: log, opts: opts}
}

// Run processes every range in plan in order, skipping ranges already
// marked done and, unless IgnoreFinality is set, ranges that reach past
// the finalized tip.
func (w *Worker) Run(ctx context.Context, plan []planner.Range) error {
	for _, r := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}

		if w.checkpoint.IsDone(r) {
			w.log.Debugf("range %d-%d already done, skipping", r.StartBlock, r.EndBlock)
			continue
		}

		if !w.opts.IgnoreFinality {
			finalizedEnd, err := w.finalizedEnd(ctx)
			if err != nil {
				return fmt.Errorf("compute finalized end: %w", err)
			}
			if r.EndBlock > finalizedEnd {
				w.log.Warnf("range %d-%d extends past finalized tip %d, skipping", r.StartBlock, r.EndBlock, finalizedEnd)
				continue
			}
		}

		if err := w.processRange(ctx, r); err != nil {
			return fmt.Errorf("process range %d-%d: %w", r.StartBlock, r.EndBlock, err)
		}
	}

	return nil
}

func (w *Worker) finalizedEnd(ctx context.Context) (uint64, error) {
	tip, err := w.client.BlockNumber(ctx)
	if err != nil {
		return 0, err
	}
	if tip < w.opts.FinalityDepth {
		return 0, nil
	}
	return tip - w.opts.FinalityDepth, nil
}

func (w *Worker) processRange(ctx context.Context, r planner.Range) error {
	res, err := fetcher.FetchRange(ctx, w.client, r.ChainID, r.StartBlock, r.EndBlock, w.opts.LogChunk)
	if err != nil {
		return fmt.Errorf("fetch range: %w", err)
	}

	var priorHash string
	if st, ok := w.chainState.Get(r.ChainID); ok {
		priorHash = st.LastBlockHash
	}
	if err := fetcher.CheckLinkage(res, priorHash); err != nil {
		return fmt.Errorf("check linkage: %w", err)
	}

	if err := w.writeResult(r, res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	if res.AnyFetched {
		if err := w.chainState.Update(r.ChainID, chainstate.State{
			LastBlockNumber: res.HighestFetched,
			LastBlockHash:   highestHash(res),
			UpdatedAt:       time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			return fmt.Errorf("update chain state: %w", err)
		}
	}

	if err := w.checkpoint.MarkDone([]planner.Range{r}); err != nil {
		return fmt.Errorf("mark done: %w", err)
	}

	return nil
}

func (w *Worker) writeResult(r planner.Range, res *fetcher.Result) error {
	suffix := warehouse.RangeFilename("blocks", r.StartBlock, r.EndBlock)
	if _, err := w.writer.WriteBlocks(res.Blocks, suffix); err != nil {
		return err
	}

	suffix = warehouse.RangeFilename("transactions", r.StartBlock, r.EndBlock)
	if _, err := w.writer.WriteTransactions(res.Txs, suffix); err != nil {
		return err
	}

	suffix = warehouse.RangeFilename("logs", r.StartBlock, r.EndBlock)
	if _, err := w.writer.WriteLogs(res.Logs, suffix); err != nil {
		return err
	}

	suffix = warehouse.RangeFilename("canonical", r.StartBlock, r.EndBlock)
	if _, err := w.writer.WriteCanonical(res.Canonical, suffix); err != nil {
		return err
	}

	return nil
}

func highestHash(res *fetcher.Result) string {
	for _, b := range res.Blocks {
		if b.BlockNumber == res.HighestFetched {
			return b.BlockHash
		}
	}
	return ""
}
