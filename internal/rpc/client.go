// Package rpc implements chainlake's bounded-concurrency JSON-RPC 2.0 client
// against an EVM node. Unlike a typed client built on ethclient, calls return
// raw JSON so that large numeric fields (value, gas, baseFeePerGas) can be
// normalized to decimal strings without ever passing through a 64-bit
// integer, and so that a block's and a transaction's exact wire shape
// survives into the downstream normalizer untouched.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chainlake/chainlake/internal/common"
	pkgrpc "github.com/chainlake/chainlake/pkg/rpc"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/sync/semaphore"
)

// Compile-time check to ensure Client implements pkgrpc.EthClient.
var _ pkgrpc.EthClient = (*Client)(nil)

// Client is a bounded-concurrency JSON-RPC 2.0 client. It does not retry:
// callers (internal/fetcher, internal/tailer) own retry and error-handling
// policy.
type Client struct {
	rpc     *gethrpc.Client
	sem     *semaphore.Weighted
	timeout time.Duration
}

// NewClient dials endpoint and returns a Client bounded to maxConcurrency
// in-flight calls, each subject to timeout.
func NewClient(ctx context.Context, endpoint string, maxConcurrency int, timeout time.Duration) (*Client, error) {
	rpcClient, err := gethrpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial rpc endpoint: %w", err)
	}

	return &Client{
		rpc:     rpcClient,
		sem:     semaphore.NewWeighted(int64(maxConcurrency)),
		timeout: timeout,
	}, nil
}

// Close closes the underlying transport.
func (c *Client) Close() {
	c.rpc.Close()
}

// Call issues a single bounded, timed JSON-RPC call and returns the raw
// result.
func (c *Client) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire rpc slot: %w", err)
	}
	defer c.sem.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	RPCMethodInc(method)

	var raw json.RawMessage
	err := c.rpc.CallContext(callCtx, &raw, method, params...)

	RPCMethodDuration(method, time.Since(start))
	if err != nil {
		RPCMethodError(method, "error")
		return nil, fmt.Errorf("rpc call %s: %w", method, err)
	}

	return raw, nil
}

// BlockNumber returns the current chain head as reported by eth_blockNumber.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	raw, err := c.Call(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}

	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		return 0, fmt.Errorf("decode eth_blockNumber result: %w", err)
	}

	return common.ParseUint64orHex(&hex)
}

// GetBlockByNumber fetches a block by number, optionally with full
// transaction objects. Returns nil, nil when the node reports no such block
// (JSON-RPC null result) rather than an error, matching the upstream
// contract chainlake's fetcher relies on to skip missing blocks.
func (c *Client) GetBlockByNumber(ctx context.Context, number uint64, fullTx bool) (map[string]any, error) {
	raw, err := c.Call(ctx, "eth_getBlockByNumber", toBlockNumArg(number), fullTx)
	if err != nil {
		return nil, err
	}
	if string(raw) == "null" {
		return nil, nil
	}

	var block map[string]any
	if err := json.Unmarshal(raw, &block); err != nil {
		return nil, fmt.Errorf("decode eth_getBlockByNumber result: %w", err)
	}

	return block, nil
}

// GetLogs fetches logs for the inclusive block range [fromBlock, toBlock].
func (c *Client) GetLogs(ctx context.Context, fromBlock, toBlock uint64) ([]map[string]any, error) {
	filter := map[string]any{
		"fromBlock": toBlockNumArg(fromBlock),
		"toBlock":   toBlockNumArg(toBlock),
	}

	raw, err := c.Call(ctx, "eth_getLogs", filter)
	if err != nil {
		return nil, err
	}

	var logs []map[string]any
	if err := json.Unmarshal(raw, &logs); err != nil {
		return nil, fmt.Errorf("decode eth_getLogs result: %w", err)
	}

	return logs, nil
}

// toBlockNumArg converts a block number to the hex format the JSON-RPC
// wire protocol expects.
func toBlockNumArg(blockNum uint64) string {
	return fmt.Sprintf("0x%x", blockNum)
}
