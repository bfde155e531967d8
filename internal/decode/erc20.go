package decode

import (
	"fmt"
	"math/big"

	"github.com/chainlake/chainlake/internal/abi"
	"github.com/chainlake/chainlake/internal/fetcher"
)

// DecodeERC20Transfers decodes Transfer(address indexed from, address
// indexed to, uint256 value) events out of logs, resolving the ABI per
// log's block number.
func DecodeERC20Transfers(registry *abi.Registry, logs []fetcher.LogRow) ([]ERC20TransferRow, error) {
	var rows []ERC20TransferRow

	for _, log := range logs {
		blockNumber := log.BlockNumber
		event, err := registry.GetEvent("erc20", "Transfer", &blockNumber, nil)
		if err != nil {
			return nil, fmt.Errorf("resolve erc20 Transfer abi: %w", err)
		}
		topic0 := abi.EventTopic(*event)

		if !matchesEvent(log, *event, topic0) {
			recordSkipped("erc20")
			continue
		}

		data, err := decodeHexData(log.Data)
		if err != nil {
			recordSkipped("erc20")
			continue
		}
		values, err := unpackNonIndexed(event.NonIndexedTypes(), data)
		if err != nil || len(values) != 1 {
			recordSkipped("erc20")
			continue
		}
		value, ok := values[0].(*big.Int)
		if !ok {
			recordSkipped("erc20")
			continue
		}

		rows = append(rows, ERC20TransferRow{
			ChainID:         log.ChainID,
			BlockNumber:     log.BlockNumber,
			TxHash:          log.TxHash,
			LogIndex:        log.LogIndex,
			ContractAddress: log.Address,
			FromAddress:     topicToAddress(log.Topics[1]),
			ToAddress:       topicToAddress(log.Topics[2]),
			ValueRaw:        value.String(),
		})
	}

	recordDecoded("erc20", len(rows))
	return rows, nil
}
