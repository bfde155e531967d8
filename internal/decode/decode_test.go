package decode

import (
	"encoding/hex"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainlake/chainlake/internal/abi"
	"github.com/chainlake/chainlake/internal/fetcher"
)

const erc20ABI = `{
  "events": [
    {"name": "Transfer", "inputs": [
      {"name": "from", "type": "address", "indexed": true},
      {"name": "to", "type": "address", "indexed": true},
      {"name": "value", "type": "uint256", "indexed": false}
    ]}
  ]
}`

const uniswapV2ABI = `{
  "events": [
    {"name": "Swap", "inputs": [
      {"name": "sender", "type": "address", "indexed": true},
      {"name": "amount0In", "type": "uint256", "indexed": false},
      {"name": "amount1In", "type": "uint256", "indexed": false},
      {"name": "amount0Out", "type": "uint256", "indexed": false},
      {"name": "amount1Out", "type": "uint256", "indexed": false},
      {"name": "to", "type": "address", "indexed": true}
    ]}
  ]
}`

func newRegistry(t *testing.T, files map[string]string) *abi.Registry {
	t.Helper()
	dir := t.TempDir()
	for name, contents := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
	}
	r, err := abi.NewRegistry(dir)
	require.NoError(t, err)
	return r
}

func padAddressTopic(addr string) string {
	addr = addr[2:]
	return "0x" + pad(addr, 64)
}

func pad(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func encodeUint256Words(values ...*big.Int) string {
	out := "0x"
	for _, v := range values {
		out += pad(v.Text(16), 64)
	}
	return out
}

func TestDecodeERC20Transfers_HappyPath(t *testing.T) {
	r := newRegistry(t, map[string]string{"erc20.json": erc20ABI})

	event, err := r.GetEvent("erc20", "Transfer", nil, nil)
	require.NoError(t, err)
	topic0 := abi.EventTopic(*event).Hex()

	from := "0x000000000000000000000000aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	to := "0x000000000000000000000000bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	value := big.NewInt(1_000_000)

	logs := []fetcher.LogRow{{
		ChainID:     1,
		BlockNumber: 100,
		TxHash:      "0xtx1",
		LogIndex:    2,
		Address:     "0xcontract",
		Topics:      []string{topic0, from[:66], to[:66]},
		Data:        encodeUint256Words(value),
	}}

	rows, err := DecodeERC20Transfers(r, logs)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "1000000", rows[0].ValueRaw)
	require.Equal(t, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", rows[0].FromAddress)
}

func TestDecodeERC20Transfers_SkipsWrongTopic0(t *testing.T) {
	r := newRegistry(t, map[string]string{"erc20.json": erc20ABI})

	logs := []fetcher.LogRow{{
		Topics: []string{"0xdeadbeef", padAddressTopic("0xaaaa"), padAddressTopic("0xbbbb")},
		Data:   encodeUint256Words(big.NewInt(1)),
	}}

	rows, err := DecodeERC20Transfers(r, logs)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestDecodeERC20Transfers_SkipsEmptyTopics(t *testing.T) {
	r := newRegistry(t, map[string]string{"erc20.json": erc20ABI})

	rows, err := DecodeERC20Transfers(r, []fetcher.LogRow{{Topics: nil}})
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestDecodeERC20Transfers_SkipsShortData(t *testing.T) {
	r := newRegistry(t, map[string]string{"erc20.json": erc20ABI})

	event, err := r.GetEvent("erc20", "Transfer", nil, nil)
	require.NoError(t, err)
	topic0 := abi.EventTopic(*event).Hex()

	logs := []fetcher.LogRow{{
		Topics: []string{topic0, padAddressTopic("0xaaaa"), padAddressTopic("0xbbbb")},
		Data:   "0x01",
	}}

	rows, err := DecodeERC20Transfers(r, logs)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestDecodeUniswapV2Swaps_HappyPath(t *testing.T) {
	r := newRegistry(t, map[string]string{"uniswap_v2.json": uniswapV2ABI})

	event, err := r.GetEvent("uniswap_v2", "Swap", nil, nil)
	require.NoError(t, err)
	topic0 := abi.EventTopic(*event).Hex()

	sender := padAddressTopic("0xaaaa")
	to := padAddressTopic("0xbbbb")

	logs := []fetcher.LogRow{{
		ChainID:     1,
		BlockNumber: 200,
		TxHash:      "0xtx2",
		LogIndex:    5,
		Address:     "0xpair",
		Topics:      []string{topic0, sender, to},
		Data: encodeUint256Words(
			big.NewInt(100),
			big.NewInt(0),
			big.NewInt(0),
			big.NewInt(98),
		),
	}}

	rows, err := DecodeUniswapV2Swaps(r, logs)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "100", rows[0].Amount0In)
	require.Equal(t, "98", rows[0].Amount1Out)
}

func TestTopicToAddress(t *testing.T) {
	got := topicToAddress("0x000000000000000000000000aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	require.Equal(t, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", got)
}

func TestDecodeHexData(t *testing.T) {
	b, err := decodeHexData("0x" + hex.EncodeToString([]byte{1, 2, 3}))
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, b)
}
