package warehouse

import "github.com/apache/arrow-go/v18/arrow"

// Table names match the six tables chainlake's lake exposes to downstream
// consumers (the dedup-compaction and reconciliation tools are external
// collaborators against this exact schema).
const (
	TableBlocksRaw          = "blocks_raw"
	TableTransactionsRaw    = "transactions_raw"
	TableLogsRaw            = "logs_raw"
	TableCanonicalBlocks    = "canonical_blocks"
	TableEventERC20Transfer = "event_erc20_transfer"
	TableEventUniswapV2Swap = "event_uniswap_v2_swap"
)

var blocksRawSchema = arrow.NewSchema([]arrow.Field{
	{Name: "chain_id", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "block_number", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "block_hash", Type: arrow.BinaryTypes.String},
	{Name: "parent_hash", Type: arrow.BinaryTypes.String},
	{Name: "timestamp", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "miner", Type: arrow.BinaryTypes.String},
	{Name: "gas_used", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "gas_limit", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "base_fee_per_gas", Type: arrow.BinaryTypes.String},
	{Name: "tx_count", Type: arrow.PrimitiveTypes.Int64},
	{Name: "observed_at", Type: arrow.BinaryTypes.String},
}, nil)

var transactionsRawSchema = arrow.NewSchema([]arrow.Field{
	{Name: "chain_id", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "block_number", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "block_hash", Type: arrow.BinaryTypes.String},
	{Name: "tx_hash", Type: arrow.BinaryTypes.String},
	{Name: "tx_index", Type: arrow.PrimitiveTypes.Int64},
	{Name: "from_address", Type: arrow.BinaryTypes.String},
	{Name: "to_address", Type: arrow.BinaryTypes.String},
	{Name: "value", Type: arrow.BinaryTypes.String},
	{Name: "gas", Type: arrow.BinaryTypes.String},
	{Name: "gas_price", Type: arrow.BinaryTypes.String},
	{Name: "nonce", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "input", Type: arrow.BinaryTypes.String},
}, nil)

var logsRawSchema = arrow.NewSchema([]arrow.Field{
	{Name: "chain_id", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "block_number", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "block_hash", Type: arrow.BinaryTypes.String},
	{Name: "tx_hash", Type: arrow.BinaryTypes.String},
	{Name: "tx_index", Type: arrow.PrimitiveTypes.Int64},
	{Name: "log_index", Type: arrow.PrimitiveTypes.Int64},
	{Name: "address", Type: arrow.BinaryTypes.String},
	{Name: "data", Type: arrow.BinaryTypes.String},
	{Name: "topics", Type: arrow.ListOf(arrow.BinaryTypes.String)},
	{Name: "removed", Type: arrow.FixedWidthTypes.Boolean},
}, nil)

var canonicalBlocksSchema = arrow.NewSchema([]arrow.Field{
	{Name: "chain_id", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "block_number", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "block_hash", Type: arrow.BinaryTypes.String},
	{Name: "parent_hash", Type: arrow.BinaryTypes.String},
	{Name: "is_canonical", Type: arrow.FixedWidthTypes.Boolean},
	{Name: "observed_at", Type: arrow.BinaryTypes.String},
}, nil)

var eventERC20TransferSchema = arrow.NewSchema([]arrow.Field{
	{Name: "chain_id", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "block_number", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "tx_hash", Type: arrow.BinaryTypes.String},
	{Name: "log_index", Type: arrow.PrimitiveTypes.Int64},
	{Name: "contract_address", Type: arrow.BinaryTypes.String},
	{Name: "from_address", Type: arrow.BinaryTypes.String},
	{Name: "to_address", Type: arrow.BinaryTypes.String},
	{Name: "value_raw", Type: arrow.BinaryTypes.String},
}, nil)

var eventUniswapV2SwapSchema = arrow.NewSchema([]arrow.Field{
	{Name: "chain_id", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "block_number", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "tx_hash", Type: arrow.BinaryTypes.String},
	{Name: "log_index", Type: arrow.PrimitiveTypes.Int64},
	{Name: "pair_address", Type: arrow.BinaryTypes.String},
	{Name: "sender", Type: arrow.BinaryTypes.String},
	{Name: "to_address", Type: arrow.BinaryTypes.String},
	{Name: "amount0_in", Type: arrow.BinaryTypes.String},
	{Name: "amount1_in", Type: arrow.BinaryTypes.String},
	{Name: "amount0_out", Type: arrow.BinaryTypes.String},
	{Name: "amount1_out", Type: arrow.BinaryTypes.String},
}, nil)
