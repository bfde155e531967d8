package warehouse

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/chainlake/chainlake/internal/fetcher"
)

// ReadLogs reads a logs_raw Parquet partition back into LogRow values, for
// the decode subcommand to consume.
func ReadLogs(path string) ([]fetcher.LogRow, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("open parquet file %s: %w", path, err)
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("create parquet reader for %s: %w", path, err)
	}

	table, err := reader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("read table from %s: %w", path, err)
	}
	defer table.Release()

	chainID := newUint64Column(table.Column(0))
	blockNumber := newUint64Column(table.Column(1))
	blockHash := newStringColumn(table.Column(2))
	txHash := newStringColumn(table.Column(3))
	txIndex := newInt64Column(table.Column(4))
	logIndex := newInt64Column(table.Column(5))
	address := newStringColumn(table.Column(6))
	data := newStringColumn(table.Column(7))
	topics := newStringListColumn(table.Column(8))
	removed := newBoolColumn(table.Column(9))

	rows := make([]fetcher.LogRow, 0, table.NumRows())
	for i := 0; i < int(table.NumRows()); i++ {
		rows = append(rows, fetcher.LogRow{
			ChainID:     chainID.at(i),
			BlockNumber: blockNumber.at(i),
			BlockHash:   blockHash.at(i),
			TxHash:      txHash.at(i),
			TxIndex:     int(txIndex.at(i)),
			LogIndex:    int(logIndex.at(i)),
			Address:     address.at(i),
			Data:        data.at(i),
			Topics:      topics.at(i),
			Removed:     removed.at(i),
		})
	}

	return rows, nil
}

// chunkCursor locates a global row index within a Chunked column's arrays.
type chunkCursor struct {
	chunks []arrow.Array
}

func (c chunkCursor) locate(row int) (arrow.Array, int) {
	for _, chunk := range c.chunks {
		if row < chunk.Len() {
			return chunk, row
		}
		row -= chunk.Len()
	}
	return nil, -1
}

type uint64Column struct{ chunkCursor }

func newUint64Column(col *arrow.Column) uint64Column {
	return uint64Column{chunkCursor{chunks: col.Data().Chunks()}}
}

func (c uint64Column) at(row int) uint64 {
	arr, i := c.locate(row)
	if arr == nil {
		return 0
	}
	return arr.(*array.Uint64).Value(i)
}

type int64Column struct{ chunkCursor }

func newInt64Column(col *arrow.Column) int64Column {
	return int64Column{chunkCursor{chunks: col.Data().Chunks()}}
}

func (c int64Column) at(row int) int64 {
	arr, i := c.locate(row)
	if arr == nil {
		return 0
	}
	return arr.(*array.Int64).Value(i)
}

type stringColumn struct{ chunkCursor }

func newStringColumn(col *arrow.Column) stringColumn {
	return stringColumn{chunkCursor{chunks: col.Data().Chunks()}}
}

func (c stringColumn) at(row int) string {
	arr, i := c.locate(row)
	if arr == nil {
		return ""
	}
	return arr.(*array.String).Value(i)
}

type boolColumn struct{ chunkCursor }

func newBoolColumn(col *arrow.Column) boolColumn {
	return boolColumn{chunkCursor{chunks: col.Data().Chunks()}}
}

func (c boolColumn) at(row int) bool {
	arr, i := c.locate(row)
	if arr == nil {
		return false
	}
	return arr.(*array.Boolean).Value(i)
}

type stringListColumn struct{ chunkCursor }

func newStringListColumn(col *arrow.Column) stringListColumn {
	return stringListColumn{chunkCursor{chunks: col.Data().Chunks()}}
}

func (c stringListColumn) at(row int) []string {
	arr, i := c.locate(row)
	if arr == nil {
		return nil
	}
	list := arr.(*array.List)
	values, ok := list.ListValues().(*array.String)
	if !ok {
		return nil
	}

	start, end := list.ValueOffsets(i)
	var out []string
	for j := start; j < end; j++ {
		out = append(out, values.Value(int(j)))
	}
	return out
}
