package decode

import (
	"fmt"
	"math/big"

	"github.com/chainlake/chainlake/internal/abi"
	"github.com/chainlake/chainlake/internal/fetcher"
)

// DecodeUniswapV2Swaps decodes Swap(address indexed sender, uint256
// amount0In, uint256 amount1In, uint256 amount0Out, uint256 amount1Out,
// address indexed to) events out of logs.
func DecodeUniswapV2Swaps(registry *abi.Registry, logs []fetcher.LogRow) ([]UniswapV2SwapRow, error) {
	var rows []UniswapV2SwapRow

	for _, log := range logs {
		blockNumber := log.BlockNumber
		event, err := registry.GetEvent("uniswap_v2", "Swap", &blockNumber, nil)
		if err != nil {
			return nil, fmt.Errorf("resolve uniswap_v2 Swap abi: %w", err)
		}
		topic0 := abi.EventTopic(*event)

		if !matchesEvent(log, *event, topic0) {
			recordSkipped("uniswap_v2")
			continue
		}

		data, err := decodeHexData(log.Data)
		if err != nil {
			recordSkipped("uniswap_v2")
			continue
		}
		values, err := unpackNonIndexed(event.NonIndexedTypes(), data)
		if err != nil || len(values) != 4 {
			recordSkipped("uniswap_v2")
			continue
		}

		amount0In, ok0 := values[0].(*big.Int)
		amount1In, ok1 := values[1].(*big.Int)
		amount0Out, ok2 := values[2].(*big.Int)
		amount1Out, ok3 := values[3].(*big.Int)
		if !ok0 || !ok1 || !ok2 || !ok3 {
			recordSkipped("uniswap_v2")
			continue
		}

		rows = append(rows, UniswapV2SwapRow{
			ChainID:     log.ChainID,
			BlockNumber: log.BlockNumber,
			TxHash:      log.TxHash,
			LogIndex:    log.LogIndex,
			PairAddress: log.Address,
			Sender:      topicToAddress(log.Topics[1]),
			ToAddress:   topicToAddress(log.Topics[2]),
			Amount0In:   amount0In.String(),
			Amount1In:   amount1In.String(),
			Amount0Out:  amount0Out.String(),
			Amount1Out:  amount1Out.String(),
		})
	}

	recordDecoded("uniswap_v2", len(rows))
	return rows, nil
}
