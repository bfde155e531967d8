package fetcher

import "strconv"

// BlockRow is the normalized, one-row-per-block record written to
// blocks_raw.
type BlockRow struct {
	ChainID        uint64 `json:"chain_id"`
	BlockNumber    uint64 `json:"block_number"`
	BlockHash      string `json:"block_hash"`
	ParentHash     string `json:"parent_hash"`
	Timestamp      uint64 `json:"timestamp"`
	Miner          string `json:"miner"`
	GasUsed        uint64 `json:"gas_used"`
	GasLimit       uint64 `json:"gas_limit"`
	BaseFeePerGas  string `json:"base_fee_per_gas"`
	TxCount        int    `json:"tx_count"`
	ObservedAt     string `json:"observed_at"`
}

// TxRow is the normalized, one-row-per-transaction record written to
// transactions_raw.
type TxRow struct {
	ChainID     uint64 `json:"chain_id"`
	BlockNumber uint64 `json:"block_number"`
	BlockHash   string `json:"block_hash"`
	TxHash      string `json:"tx_hash"`
	TxIndex     int    `json:"tx_index"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Value       string `json:"value"`
	Gas         string `json:"gas"`
	GasPrice    string `json:"gas_price"`
	Nonce       uint64 `json:"nonce"`
	Input       string `json:"input"`
}

// LogRow is the normalized, one-row-per-log record written to logs_raw.
type LogRow struct {
	ChainID     uint64   `json:"chain_id"`
	BlockNumber uint64   `json:"block_number"`
	BlockHash   string   `json:"block_hash"`
	TxHash      string   `json:"tx_hash"`
	TxIndex     int      `json:"tx_index"`
	LogIndex    int      `json:"log_index"`
	Address     string   `json:"address"`
	Data        string   `json:"data"`
	Topics      []string `json:"topics"`
	Removed     bool     `json:"removed"`
}

// CanonicalRow records, per fetched block, whether it linked onto the
// previous block within the same fetch.
type CanonicalRow struct {
	ChainID      uint64 `json:"chain_id"`
	BlockNumber  uint64 `json:"block_number"`
	BlockHash    string `json:"block_hash"`
	ParentHash   string `json:"parent_hash"`
	IsCanonical  bool   `json:"is_canonical"`
	ObservedAt   string `json:"observed_at"`
}

// Result is everything normalized from one fetched block range.
type Result struct {
	Blocks     []BlockRow
	Txs        []TxRow
	Logs       []LogRow
	Canonical  []CanonicalRow
	// HighestFetched is the highest block number actually fetched (i.e. the
	// RPC endpoint did not return null for it). It may be lower than the
	// requested range's end block when trailing blocks are not yet
	// available; callers must advance chain state to this value, not
	// blindly to the requested end.
	HighestFetched uint64
	// AnyFetched reports whether at least one block in the range was
	// successfully fetched (distinguishes "range entirely null" from
	// "range fetched up to block 0").
	AnyFetched bool
}

// LinkageError indicates a parent-hash mismatch between a new range's first
// block and ChainState's last known block hash. CheckLinkage is the only
// place it is returned; a mismatch inside a fetched range is recorded as
// CanonicalRow.IsCanonical == false instead.
type LinkageError struct {
	ChainID         uint64
	BlockNumber     uint64
	ExpectedParent  string
	ActualParent    string
}

func (e *LinkageError) Error() string {
	return "linkage error: chain " + strconv.FormatUint(e.ChainID, 10) +
		" block " + strconv.FormatUint(e.BlockNumber, 10) +
		": expected parent " + e.ExpectedParent + ", got " + e.ActualParent
}
