// Package rpc defines the public interface chainlake's ingestion components
// depend on, so that a mock or alternative JSON-RPC transport can be swapped
// in without touching internal/fetcher, internal/tailer, or internal/worker.
package rpc

import (
	"context"
	"encoding/json"
)

// EthClient defines the bounded-concurrency JSON-RPC operations chainlake's
// ingestion pipeline needs. internal/rpc.Client implements this.
type EthClient interface {
	// Close closes the underlying transport.
	Close()

	// Call issues a single JSON-RPC call and returns the raw result.
	Call(ctx context.Context, method string, params ...any) (json.RawMessage, error)

	// BlockNumber returns the current chain head.
	BlockNumber(ctx context.Context) (uint64, error)

	// GetBlockByNumber fetches a block by number, nil/nil on a null result.
	GetBlockByNumber(ctx context.Context, number uint64, fullTx bool) (map[string]any, error)

	// GetLogs fetches logs for the inclusive block range [fromBlock, toBlock].
	GetLogs(ctx context.Context, fromBlock, toBlock uint64) ([]map[string]any, error)
}
