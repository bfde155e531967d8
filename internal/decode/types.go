// Package decode turns normalized logs into typed, per-protocol event
// rows by resolving each log's ABI and decoding its topics and data.
package decode

// ERC20TransferRow is one decoded ERC20 Transfer event, written to
// event_erc20_transfer.
type ERC20TransferRow struct {
	ChainID         uint64 `json:"chain_id"`
	BlockNumber     uint64 `json:"block_number"`
	TxHash          string `json:"tx_hash"`
	LogIndex        int    `json:"log_index"`
	ContractAddress string `json:"contract_address"`
	FromAddress     string `json:"from_address"`
	ToAddress       string `json:"to_address"`
	ValueRaw        string `json:"value_raw"`
}

// UniswapV2SwapRow is one decoded Uniswap V2 Swap event, written to
// event_uniswap_v2_swap.
type UniswapV2SwapRow struct {
	ChainID     uint64 `json:"chain_id"`
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	LogIndex    int    `json:"log_index"`
	PairAddress string `json:"pair_address"`
	Sender      string `json:"sender"`
	ToAddress   string `json:"to_address"`
	Amount0In   string `json:"amount0_in"`
	Amount1In   string `json:"amount1_in"`
	Amount0Out  string `json:"amount0_out"`
	Amount1Out  string `json:"amount1_out"`
}
