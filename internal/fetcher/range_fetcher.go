// Package fetcher implements the Range Fetcher: it pulls a contiguous block
// range from an EVM JSON-RPC endpoint, normalizes blocks, transactions, and
// logs into decimal-safe rows, and checks canonical (parent-hash) linkage
// within the range.
package fetcher

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/chainlake/chainlake/internal/common"
	pkgrpc "github.com/chainlake/chainlake/pkg/rpc"
)

// FetchRange fetches and normalizes blocks [start, end] (inclusive) for
// chainID, along with their transactions and logs (fetched in logChunk-sized
// eth_getLogs calls). Blocks are fetched in strict ascending order; a null
// block (RPC returns no block for that number) is skipped and does not
// participate in canonical linkage.
func FetchRange(ctx context.Context, client pkgrpc.EthClient, chainID, start, end, logChunk uint64) (*Result, error) {
	if end < start {
		return nil, fmt.Errorf("end block %d is before start block %d", end, start)
	}

	res := &Result{}
	var previous *BlockRow

	for n := start; n <= end; n++ {
		raw, err := client.GetBlockByNumber(ctx, n, true)
		if err != nil {
			return nil, fmt.Errorf("get block %d: %w", n, err)
		}
		if raw == nil {
			recordNullBlock()
			continue
		}

		block, txRows, err := normalizeBlock(raw, chainID)
		if err != nil {
			return nil, fmt.Errorf("normalize block %d: %w", n, err)
		}

		isCanonical := previous == nil || block.ParentHash == previous.BlockHash

		res.Blocks = append(res.Blocks, block)
		res.Txs = append(res.Txs, txRows...)
		res.Canonical = append(res.Canonical, CanonicalRow{
			ChainID:     chainID,
			BlockNumber: block.BlockNumber,
			BlockHash:   block.BlockHash,
			ParentHash:  block.ParentHash,
			IsCanonical: isCanonical,
			ObservedAt:  block.ObservedAt,
		})

		res.AnyFetched = true
		res.HighestFetched = block.BlockNumber
		previous = &block
	}

	logs, err := fetchLogsChunked(ctx, client, chainID, start, end, logChunk)
	if err != nil {
		return nil, err
	}
	res.Logs = logs

	recordFetchResult(res)
	return res, nil
}

// fetchLogsChunked fetches logs for [start, end] in logChunk-sized
// sub-windows so a single eth_getLogs call never spans more blocks than the
// caller's configured chunk, avoiding provider result-size rejections.
func fetchLogsChunked(ctx context.Context, client pkgrpc.EthClient, chainID, start, end, logChunk uint64) ([]LogRow, error) {
	if logChunk == 0 {
		logChunk = end - start + 1
	}

	var rows []LogRow
	for from := start; from <= end; from += logChunk {
		to := from + logChunk - 1
		if to > end {
			to = end
		}

		raw, err := client.GetLogs(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("get logs %d-%d: %w", from, to, err)
		}

		for _, l := range raw {
			row, err := normalizeLog(l, chainID)
			if err != nil {
				return nil, fmt.Errorf("normalize log: %w", err)
			}
			rows = append(rows, row)
		}
	}

	return rows, nil
}

// CheckLinkage verifies a newly fetched range's first fetched block chains
// onto the chain's previously persisted last block hash. priorHash == ""
// means no prior chain state exists yet (nothing to check against). A
// mismatch means a reorg happened between the last advance and this fetch;
// callers must treat it as fatal and refuse to write or advance state.
func CheckLinkage(res *Result, priorHash string) error {
	if !res.AnyFetched || priorHash == "" {
		return nil
	}

	first := res.Blocks[0]
	if first.ParentHash == priorHash {
		return nil
	}

	recordLinkageError()
	return &LinkageError{
		ChainID:        first.ChainID,
		BlockNumber:    first.BlockNumber,
		ExpectedParent: priorHash,
		ActualParent:   first.ParentHash,
	}
}

func normalizeBlock(raw map[string]any, chainID uint64) (BlockRow, []TxRow, error) {
	number, err := hexField(raw, "number")
	if err != nil {
		return BlockRow{}, nil, err
	}
	timestamp, err := hexField(raw, "timestamp")
	if err != nil {
		return BlockRow{}, nil, err
	}
	gasUsed, err := hexField(raw, "gasUsed")
	if err != nil {
		return BlockRow{}, nil, err
	}
	gasLimit, err := hexField(raw, "gasLimit")
	if err != nil {
		return BlockRow{}, nil, err
	}

	hash, _ := raw["hash"].(string)
	parentHash, _ := raw["parentHash"].(string)
	miner, _ := raw["miner"].(string)

	observedAt := nowISO()

	block := BlockRow{
		ChainID:       chainID,
		BlockNumber:   number,
		BlockHash:     hash,
		ParentHash:    parentHash,
		Timestamp:     timestamp,
		Miner:         miner,
		GasUsed:       gasUsed,
		GasLimit:      gasLimit,
		BaseFeePerGas: hexBigString(raw, "baseFeePerGas"),
		ObservedAt:    observedAt,
	}

	var txRows []TxRow
	if rawTxs, ok := raw["transactions"].([]any); ok {
		block.TxCount = len(rawTxs)
		for _, t := range rawTxs {
			txObj, ok := t.(map[string]any)
			if !ok {
				continue
			}
			row, err := normalizeTx(txObj, chainID, number, hash)
			if err != nil {
				return BlockRow{}, nil, err
			}
			txRows = append(txRows, row)
		}
	}

	return block, txRows, nil
}

func normalizeTx(raw map[string]any, chainID, blockNumber uint64, blockHash string) (TxRow, error) {
	txIndex, err := hexField(raw, "transactionIndex")
	if err != nil {
		return TxRow{}, err
	}
	nonce, err := hexField(raw, "nonce")
	if err != nil {
		return TxRow{}, err
	}

	toAddress, _ := raw["to"].(string) // nil for contract-creation transactions

	return TxRow{
		ChainID:     chainID,
		BlockNumber: blockNumber,
		BlockHash:   blockHash,
		TxHash:      stringField(raw, "hash"),
		TxIndex:     int(txIndex),
		FromAddress: stringField(raw, "from"),
		ToAddress:   toAddress,
		Value:       hexBigString(raw, "value"),
		Gas:         hexBigString(raw, "gas"),
		GasPrice:    hexBigString(raw, "gasPrice"),
		Nonce:       nonce,
		Input:       stringField(raw, "input"),
	}, nil
}

func normalizeLog(raw map[string]any, chainID uint64) (LogRow, error) {
	blockNumber, err := hexField(raw, "blockNumber")
	if err != nil {
		return LogRow{}, err
	}
	txIndex, err := hexField(raw, "transactionIndex")
	if err != nil {
		return LogRow{}, err
	}
	logIndex, err := hexField(raw, "logIndex")
	if err != nil {
		return LogRow{}, err
	}

	var topics []string
	if rawTopics, ok := raw["topics"].([]any); ok {
		for _, t := range rawTopics {
			if s, ok := t.(string); ok {
				topics = append(topics, s)
			}
		}
	}

	removed, _ := raw["removed"].(bool)

	return LogRow{
		ChainID:     chainID,
		BlockNumber: blockNumber,
		BlockHash:   stringField(raw, "blockHash"),
		TxHash:      stringField(raw, "transactionHash"),
		TxIndex:     int(txIndex),
		LogIndex:    int(logIndex),
		Address:     stringField(raw, "address"),
		Data:        stringField(raw, "data"),
		Topics:      topics,
		Removed:     removed,
	}, nil
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func hexField(raw map[string]any, key string) (uint64, error) {
	s, ok := raw[key].(string)
	if !ok || s == "" {
		return 0, nil
	}
	return common.ParseUint64orHex(&s)
}

// hexBigString decodes a hex-prefixed field too large for uint64 (value,
// gasPrice, baseFeePerGas) into its decimal string form, preserving full
// 256-bit precision. Missing fields (e.g. baseFeePerGas on a pre-EIP-1559
// block) decode to "0".
func hexBigString(raw map[string]any, key string) string {
	s, ok := raw[key].(string)
	if !ok || s == "" {
		return "0"
	}
	s = trimHexPrefix(s)
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return "0"
	}
	return n.String()
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
