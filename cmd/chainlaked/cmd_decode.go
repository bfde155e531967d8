package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainlake/chainlake/internal/abi"
	"github.com/chainlake/chainlake/internal/common"
	"github.com/chainlake/chainlake/internal/config"
	"github.com/chainlake/chainlake/internal/decode"
	"github.com/chainlake/chainlake/internal/logger"
	"github.com/chainlake/chainlake/internal/warehouse"
)

var (
	decodeProtocol string
	decodeLogsFile string
	decodeOutFile  string
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a logs_raw partition into a protocol event table",
	RunE:  runDecode,
}

func init() {
	decodeCmd.Flags().StringVar(&decodeProtocol, "protocol", "", "protocol to decode: erc20 or uniswap_v2")
	decodeCmd.Flags().StringVar(&decodeLogsFile, "logs", "", "path to a logs_raw Parquet partition to decode")
	decodeCmd.Flags().StringVar(&decodeOutFile, "out", "", "output filename under the silver layer")
	decodeCmd.MarkFlagRequired("protocol")
	decodeCmd.MarkFlagRequired("logs")
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	log = log.WithComponent(common.ComponentDecode)

	registry, err := abi.NewRegistry(cfg.ABI.Dir)
	if err != nil {
		return fmt.Errorf("open abi registry: %w", err)
	}

	logs, err := warehouse.ReadLogs(decodeLogsFile)
	if err != nil {
		return fmt.Errorf("read logs partition: %w", err)
	}

	w := warehouse.New(cfg.Warehouse.Dir, warehouse.Silver)
	outFile := decodeOutFile
	if outFile == "" {
		outFile = decodeProtocol + ".parquet"
	}

	switch decodeProtocol {
	case "erc20":
		rows, err := decode.DecodeERC20Transfers(registry, logs)
		if err != nil {
			return fmt.Errorf("decode erc20 transfers: %w", err)
		}
		if _, err := w.WriteERC20Transfers(rows, outFile); err != nil {
			return fmt.Errorf("write erc20 transfers: %w", err)
		}
		log.Infof("decoded %d erc20 transfers", len(rows))

	case "uniswap_v2":
		rows, err := decode.DecodeUniswapV2Swaps(registry, logs)
		if err != nil {
			return fmt.Errorf("decode uniswap v2 swaps: %w", err)
		}
		if _, err := w.WriteUniswapV2Swaps(rows, outFile); err != nil {
			return fmt.Errorf("write uniswap v2 swaps: %w", err)
		}
		log.Infof("decoded %d uniswap v2 swaps", len(rows))

	default:
		return fmt.Errorf("unsupported protocol %q (supported: erc20, uniswap_v2)", decodeProtocol)
	}

	return nil
}
