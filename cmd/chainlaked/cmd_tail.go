package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainlake/chainlake/internal/chainstate"
	"github.com/chainlake/chainlake/internal/common"
	"github.com/chainlake/chainlake/internal/config"
	"github.com/chainlake/chainlake/internal/logger"
	"github.com/chainlake/chainlake/internal/metrics"
	"github.com/chainlake/chainlake/internal/rpc"
	"github.com/chainlake/chainlake/internal/tailer"
	"github.com/chainlake/chainlake/internal/warehouse"
)

const tailPollInterval = 12 * time.Second

var (
	tailStartBlock uint64
	tailEndBlock   uint64
	tailOnce       bool
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Tail the chain tip, writing newly finalized ranges as they appear",
	RunE:  runTail,
}

func init() {
	tailCmd.Flags().Uint64Var(&tailStartBlock, "start", 0, "override the resume point instead of reading chain state (0 = use chain state)")
	tailCmd.Flags().Uint64Var(&tailEndBlock, "end", 0, "stop advancing past this block (0 = unbounded)")
	tailCmd.Flags().BoolVar(&tailOnce, "once", false, "run a single cycle and exit instead of polling")
}

func runTail(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	log = log.WithComponent(common.ComponentTailer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down gracefully")
		cancel()
	}()

	var metricsServer *metrics.Server
	if cfg.Metrics.ListenAddr != "" {
		metricsServer = metrics.NewServer(cfg.Metrics.ListenAddr)
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		defer func() {
			if err := metricsServer.Stop(ctx); err != nil {
				log.Warnf("stop metrics server: %v", err)
			}
		}()
	}

	client, err := rpc.NewClient(ctx, cfg.RPC.URL, cfg.RPC.MaxConcurrency, cfg.RPC.Timeout)
	if err != nil {
		return fmt.Errorf("connect rpc client: %w", err)
	}
	defer client.Close()

	cs, err := chainstate.Open(filepath.Join(cfg.Warehouse.Dir, "state", "canonical_state.json"))
	if err != nil {
		return fmt.Errorf("open chain state store: %w", err)
	}

	w := warehouse.New(cfg.Warehouse.Dir, warehouse.Bronze)

	opts := tailer.Options{
		ChainID:       cfg.ChainID,
		FinalityDepth: cfg.Ingestion.FinalityDepth,
		ChunkSize:     cfg.Ingestion.ChunkSize,
		LogChunk:      cfg.Ingestion.LogChunk,
	}
	if tailStartBlock != 0 {
		opts.StartBlock = &tailStartBlock
	}
	if tailEndBlock != 0 {
		opts.UserEnd = &tailEndBlock
	}

	for {
		res, err := tailer.Run(ctx, client, cs, w, opts)
		if err != nil {
			return fmt.Errorf("tail cycle: %w", err)
		}

		if res.CaughtUp {
			log.Debug("caught up to finalized tip")
		} else {
			log.Infof("processed %d ranges", res.RangesProcessed)
		}

		if tailOnce {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(tailPollInterval):
		}
	}
}
