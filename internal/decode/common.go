package decode

import (
	"encoding/hex"
	"fmt"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	gethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/chainlake/chainlake/internal/abi"
	"github.com/chainlake/chainlake/internal/fetcher"
)

// matchesEvent applies the common decode-loop skip rules: empty topics,
// a topic0 mismatch (case-insensitive), too few topics for the event's
// indexed arguments, or a data payload too short for its non-indexed
// arguments.
func matchesEvent(log fetcher.LogRow, event abi.EventABI, topic0 gethcommon.Hash) bool {
	if len(log.Topics) == 0 {
		return false
	}
	if !strings.EqualFold(log.Topics[0], topic0.Hex()) {
		return false
	}

	indexedCount := len(event.IndexedInputs())
	if len(log.Topics) < 1+indexedCount {
		return false
	}

	nonIndexedCount := len(event.NonIndexedTypes())
	if len(log.Data) < 2+64*nonIndexedCount {
		return false
	}

	return true
}

// topicToAddress extracts the right 40 hex chars (20 bytes) of a 32-byte
// topic, the encoding an indexed address argument takes in a log topic.
func topicToAddress(topic string) string {
	topic = strings.TrimPrefix(topic, "0x")
	if len(topic) < 40 {
		return "0x" + topic
	}
	return "0x" + topic[len(topic)-40:]
}

func decodeHexData(data string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(data, "0x"))
}

// unpackNonIndexed ABI-decodes data against an ordered list of Solidity
// types, returning the decoded Go values in declaration order.
func unpackNonIndexed(types []string, data []byte) ([]interface{}, error) {
	args := make(gethabi.Arguments, len(types))
	for i, t := range types {
		abiType, err := gethabi.NewType(t, "", nil)
		if err != nil {
			return nil, fmt.Errorf("build abi type %s: %w", t, err)
		}
		args[i] = gethabi.Argument{Type: abiType}
	}
	return args.UnpackValues(data)
}
