// Package tailer runs a single incremental ingestion cycle: from the last
// known chain position up to the finalized tip, fetching and writing each
// sub-range in turn. It does not consult a CheckpointStore; its
// idempotency comes from ChainState monotonicity and range-tagged
// filenames.
package tailer

import (
	"context"
	"fmt"
	"time"

	"github.com/chainlake/chainlake/internal/chainstate"
	"github.com/chainlake/chainlake/internal/fetcher"
	"github.com/chainlake/chainlake/internal/planner"
	"github.com/chainlake/chainlake/internal/warehouse"
	pkgrpc "github.com/chainlake/chainlake/pkg/rpc"
)

// Options configures one tailer cycle.
type Options struct {
	ChainID uint64
	// StartBlock overrides ChainState's last-known position when non-nil.
	StartBlock *uint64
	// UserEnd caps how far this cycle may advance, when non-nil.
	UserEnd *uint64
	FinalityDepth uint64
	ChunkSize     uint64
	LogChunk      uint64
}

// Result reports what one cycle accomplished.
type Result struct {
	// RangesProcessed is how many sub-ranges were fetched and written.
	RangesProcessed int
	// CaughtUp reports whether the cycle found nothing to do because
	// start_block already exceeded the effective end.
	CaughtUp bool
}

// Run executes one tailer cycle against client, writing into w and
// advancing cs. It returns an error when no start block can be resolved,
// on tip/fetch/write/state failures, and when a range's first block does
// not link onto the stored chain state; never for having caught up (that's
// Result.CaughtUp).
func Run(ctx context.Context, client pkgrpc.EthClient, cs *chainstate.Store, w *warehouse.Writer, opts Options) (Result, error) {
	start, err := resolveStart(cs, opts)
	if err != nil {
		return Result{}, err
	}

	tip, err := client.BlockNumber(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("get chain tip: %w", err)
	}

	var finalizedEnd uint64
	if tip > opts.FinalityDepth {
		finalizedEnd = tip - opts.FinalityDepth
	}

	effectiveEnd := finalizedEnd
	if opts.UserEnd != nil && *opts.UserEnd < effectiveEnd {
		effectiveEnd = *opts.UserEnd
	}

	if start > effectiveEnd {
		return Result{CaughtUp: true}, nil
	}

	ranges, err := planner.Plan(opts.ChainID, start, effectiveEnd, opts.ChunkSize)
	if err != nil {
		return Result{}, fmt.Errorf("plan ranges: %w", err)
	}

	for _, r := range ranges {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		res, err := fetcher.FetchRange(ctx, client, opts.ChainID, r.StartBlock, r.EndBlock, opts.LogChunk)
		if err != nil {
			return Result{}, fmt.Errorf("fetch range %d-%d: %w", r.StartBlock, r.EndBlock, err)
		}

		var priorHash string
		if st, ok := cs.Get(opts.ChainID); ok {
			priorHash = st.LastBlockHash
		}
		if err := fetcher.CheckLinkage(res, priorHash); err != nil {
			return Result{}, fmt.Errorf("check linkage for range %d-%d: %w", r.StartBlock, r.EndBlock, err)
		}

		if err := writeResult(w, r, res); err != nil {
			return Result{}, fmt.Errorf("write range %d-%d: %w", r.StartBlock, r.EndBlock, err)
		}

		if res.AnyFetched {
			if err := cs.Update(opts.ChainID, chainstate.State{
				LastBlockNumber: res.HighestFetched,
				LastBlockHash:   highestHash(res),
				UpdatedAt:       time.Now().UTC().Format(time.RFC3339),
			}); err != nil {
				return Result{}, fmt.Errorf("update chain state: %w", err)
			}
		}
	}

	return Result{RangesProcessed: len(ranges)}, nil
}

func resolveStart(cs *chainstate.Store, opts Options) (uint64, error) {
	if opts.StartBlock != nil {
		return *opts.StartBlock, nil
	}
	if st, ok := cs.Get(opts.ChainID); ok {
		return st.LastBlockNumber + 1, nil
	}
	return 0, fmt.Errorf("no start block override and no chain state for chain %d", opts.ChainID)
}

func writeResult(w *warehouse.Writer, r planner.Range, res *fetcher.Result) error {
	if _, err := w.WriteBlocks(res.Blocks, warehouse.RangeFilename("blocks", r.StartBlock, r.EndBlock)); err != nil {
		return err
	}
	if _, err := w.WriteTransactions(res.Txs, warehouse.RangeFilename("transactions", r.StartBlock, r.EndBlock)); err != nil {
		return err
	}
	if _, err := w.WriteLogs(res.Logs, warehouse.RangeFilename("logs", r.StartBlock, r.EndBlock)); err != nil {
		return err
	}
	if _, err := w.WriteCanonical(res.Canonical, warehouse.RangeFilename("canonical", r.StartBlock, r.EndBlock)); err != nil {
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
