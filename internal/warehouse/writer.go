// Package warehouse writes normalized and decoded rows to the lake as
// immutable Parquet partitions, one file per call, under
// <dir>/lake/<layer>/<table>/<filename>.
package warehouse

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/chainlake/chainlake/internal/decode"
	"github.com/chainlake/chainlake/internal/fetcher"
	"github.com/chainlake/chainlake/internal/metrics"
)

// Layer names the bronze/silver partition a Writer targets.
type Layer string

const (
	Bronze Layer = "bronze"
	Silver Layer = "silver"
)

// Writer writes Parquet partitions under <dir>/lake/<layer>/<table>/.
type Writer struct {
	dir   string
	layer Layer
	pool  memory.Allocator
}

// New returns a Writer rooted at dir (chainlake's warehouse directory).
func New(dir string, layer Layer) *Writer {
	return &Writer{dir: dir, layer: layer, pool: memory.NewGoAllocator()}
}

// tablePath returns <dir>/lake/<layer>/<table>/<filename>, creating the
// directory if needed.
func (w *Writer) tablePath(table, filename string) (string, error) {
	dir := filepath.Join(w.dir, "lake", string(w.layer), table)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create table dir %s: %w", dir, err)
	}
	return filepath.Join(dir, filename), nil
}

// writeRecord writes rec to <table>/<filename>, returning the path written.
// Callers with zero rows must not call this — WriteRows-style empty-input
// no-op handling is each public method's responsibility, matching the
// contract of never creating an empty Parquet file.
func (w *Writer) writeRecord(table, filename string, rec arrow.Record) (string, error) {
	defer rec.Release()

	path, err := w.tablePath(table, filename)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create parquet file %s: %w", path, err)
	}
	defer f.Close()

	writerProps := parquet.NewWriterProperties()
	arrowProps := pqarrow.DefaultWriterProps()

	fw, err := pqarrow.NewFileWriter(rec.Schema(), f, writerProps, arrowProps)
	if err != nil {
		return "", fmt.Errorf("create parquet writer for %s: %w", path, err)
	}
	defer fw.Close()

	if err := fw.Write(rec); err != nil {
		return "", fmt.Errorf("write record to %s: %w", path, err)
	}

	metrics.RowsWrittenAdd(table, int(rec.NumRows()))
	metrics.FilesWrittenInc(table)

	return path, nil
}

// WriteBlocks writes rows to blocks_raw/<filename>. Empty input is a no-op
// returning an empty path and no error.
func (w *Writer) WriteBlocks(rows []fetcher.BlockRow, filename string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}

	bldr := array.NewRecordBuilder(w.pool, blocksRawSchema)
	defer bldr.Release()

	for _, r := range rows {
		bldr.Field(0).(*array.Uint64Builder).Append(r.ChainID)
		bldr.Field(1).(*array.Uint64Builder).Append(r.BlockNumber)
		bldr.Field(2).(*array.StringBuilder).Append(r.BlockHash)
		bldr.Field(3).(*array.StringBuilder).Append(r.ParentHash)
		bldr.Field(4).(*array.Uint64Builder).Append(r.Timestamp)
		bldr.Field(5).(*array.StringBuilder).Append(r.Miner)
		bldr.Field(6).(*array.Uint64Builder).Append(r.GasUsed)
		bldr.Field(7).(*array.Uint64Builder).Append(r.GasLimit)
		bldr.Field(8).(*array.StringBuilder).Append(r.BaseFeePerGas)
		bldr.Field(9).(*array.Int64Builder).Append(int64(r.TxCount))
		bldr.Field(10).(*array.StringBuilder).Append(r.ObservedAt)
	}

	return w.writeRecord(TableBlocksRaw, filename, bldr.NewRecord())
}

// WriteTransactions writes rows to transactions_raw/<filename>.
func (w *Writer) WriteTransactions(rows []fetcher.TxRow, filename string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}

	bldr := array.NewRecordBuilder(w.pool, transactionsRawSchema)
	defer bldr.Release()

	for _, r := range rows {
		bldr.Field(0).(*array.Uint64Builder).Append(r.ChainID)
		bldr.Field(1).(*array.Uint64Builder).Append(r.BlockNumber)
		bldr.Field(2).(*array.StringBuilder).Append(r.BlockHash)
		bldr.Field(3).(*array.StringBuilder).Append(r.TxHash)
		bldr.Field(4).(*array.Int64Builder).Append(int64(r.TxIndex))
		bldr.Field(5).(*array.StringBuilder).Append(r.FromAddress)
		bldr.Field(6).(*array.StringBuilder).Append(r.ToAddress)
		bldr.Field(7).(*array.StringBuilder).Append(r.Value)
		bldr.Field(8).(*array.StringBuilder).Append(r.Gas)
		bldr.Field(9).(*array.StringBuilder).Append(r.GasPrice)
		bldr.Field(10).(*array.Uint64Builder).Append(r.Nonce)
		bldr.Field(11).(*array.StringBuilder).Append(r.Input)
	}

	return w.writeRecord(TableTransactionsRaw, filename, bldr.NewRecord())
}

// WriteLogs writes rows to logs_raw/<filename>.
func (w *Writer) WriteLogs(rows []fetcher.LogRow, filename string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}

	bldr := array.NewRecordBuilder(w.pool, logsRawSchema)
	defer bldr.Release()

	topicsBldr := bldr.Field(8).(*array.ListBuilder)
	topicsValueBldr := topicsBldr.ValueBuilder().(*array.StringBuilder)

	for _, r := range rows {
		bldr.Field(0).(*array.Uint64Builder).Append(r.ChainID)
		bldr.Field(1).(*array.Uint64Builder).Append(r.BlockNumber)
		bldr.Field(2).(*array.StringBuilder).Append(r.BlockHash)
		bldr.Field(3).(*array.StringBuilder).Append(r.TxHash)
		bldr.Field(4).(*array.Int64Builder).Append(int64(r.TxIndex))
		bldr.Field(5).(*array.Int64Builder).Append(int64(r.LogIndex))
		bldr.Field(6).(*array.StringBuilder).Append(r.Address)
		bldr.Field(7).(*array.StringBuilder).Append(r.Data)

		topicsBldr.Append(true)
		for _, t := range r.Topics {
			topicsValueBldr.Append(t)
		}

		bldr.Field(9).(*array.BooleanBuilder).Append(r.Removed)
	}

	return w.writeRecord(TableLogsRaw, filename, bldr.NewRecord())
}

// WriteCanonical writes rows to canonical_blocks/<filename>.
func (w *Writer) WriteCanonical(rows []fetcher.CanonicalRow, filename string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}

	bldr := array.NewRecordBuilder(w.pool, canonicalBlocksSchema)
	defer bldr.Release()

	for _, r := range rows {
		bldr.Field(0).(*array.Uint64Builder).Append(r.ChainID)
		bldr.Field(1).(*array.Uint64Builder).Append(r.BlockNumber)
		bldr.Field(2).(*array.StringBuilder).Append(r.BlockHash)
		bldr.Field(3).(*array.StringBuilder).Append(r.ParentHash)
		bldr.Field(4).(*array.BooleanBuilder).Append(r.IsCanonical)
		bldr.Field(5).(*array.StringBuilder).Append(r.ObservedAt)
	}

	return w.writeRecord(TableCanonicalBlocks, filename, bldr.NewRecord())
}

// WriteERC20Transfers writes rows to event_erc20_transfer/<filename>.
func (w *Writer) WriteERC20Transfers(rows []decode.ERC20TransferRow, filename string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}

	bldr := array.NewRecordBuilder(w.pool, eventERC20TransferSchema)
	defer bldr.Release()

	for _, r := range rows {
		bldr.Field(0).(*array.Uint64Builder).Append(r.ChainID)
		bldr.Field(1).(*array.Uint64Builder).Append(r.BlockNumber)
		bldr.Field(2).(*array.StringBuilder).Append(r.TxHash)
		bldr.Field(3).(*array.Int64Builder).Append(int64(r.LogIndex))
		bldr.Field(4).(*array.StringBuilder).Append(r.ContractAddress)
		bldr.Field(5).(*array.StringBuilder).Append(r.FromAddress)
		bldr.Field(6).(*array.StringBuilder).Append(r.ToAddress)
		bldr.Field(7).(*array.StringBuilder).Append(r.ValueRaw)
	}

	return w.writeRecord(TableEventERC20Transfer, filename, bldr.NewRecord())
}

// WriteUniswapV2Swaps writes rows to event_uniswap_v2_swap/<filename>.
func (w *Writer) WriteUniswapV2Swaps(rows []decode.UniswapV2SwapRow, filename string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}

	bldr := array.NewRecordBuilder(w.pool, eventUniswapV2SwapSchema)
	defer bldr.Release()

	for _, r := range rows {
		bldr.Field(0).(*array.Uint64Builder).Append(r.ChainID)
		bldr.Field(1).(*array.Uint64Builder).Append(r.BlockNumber)
		bldr.Field(2).(*array.StringBuilder).Append(r.TxHash)
		bldr.Field(3).(*array.Int64Builder).Append(int64(r.LogIndex))
		bldr.Field(4).(*array.StringBuilder).Append(r.PairAddress)
		bldr.Field(5).(*array.StringBuilder).Append(r.Sender)
		bldr.Field(6).(*array.StringBuilder).Append(r.ToAddress)
		bldr.Field(7).(*array.StringBuilder).Append(r.Amount0In)
		bldr.Field(8).(*array.StringBuilder).Append(r.Amount1In)
		bldr.Field(9).(*array.StringBuilder).Append(r.Amount0Out)
		bldr.Field(10).(*array.StringBuilder).Append(r.Amount1Out)
	}

	return w.writeRecord(TableEventUniswapV2Swap, filename, bldr.NewRecord())
}

// RangeFilename builds the range-tagged, idempotent filename convention
// chainlake uses for every bronze/silver partition: <entity>_<start>_<end>.parquet.
func RangeFilename(entity string, start, end uint64) string {
	return fmt.Sprintf("%s_%d_%d.parquet", entity, start, end)
}
