package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chainlake/chainlake/internal/chainstate"
	"github.com/chainlake/chainlake/internal/checkpoint"
	"github.com/chainlake/chainlake/internal/common"
	"github.com/chainlake/chainlake/internal/config"
	"github.com/chainlake/chainlake/internal/logger"
	"github.com/chainlake/chainlake/internal/metrics"
	"github.com/chainlake/chainlake/internal/planner"
	"github.com/chainlake/chainlake/internal/rpc"
	"github.com/chainlake/chainlake/internal/warehouse"
	"github.com/chainlake/chainlake/internal/worker"
)

var (
	ingestPlanPath      string
	ingestIgnoreFinality bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the batch worker over a plan file",
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestPlanPath, "plan", "plan.jsonl", "plan file to read ranges from")
	ingestCmd.Flags().BoolVar(&ingestIgnoreFinality, "ignore-finality", false, "bypass the finality gate entirely")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	log = log.WithComponent(common.ComponentWorker)

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

	planFile, err := os.Open(ingestPlanPath)
	if err != nil {
		return fmt.Errorf("open plan file: %w", err)
	}
	defer planFile.Close()

	plan, err := planner.ReadPlan(planFile)
	if err != nil {
		return fmt.Errorf("read plan file: %w", err)
	}

	client, err := rpc.NewClient(ctx, cfg.RPC.URL, cfg.RPC.MaxConcurrency, cfg.RPC.Timeout)
	if err != nil {
		return fmt.Errorf("connect rpc client: %w", err)
	}
	defer client.Close()

	cp, err := checkpoint.Open(filepath.Join(cfg.Warehouse.Dir, "state", "checkpoint.json"))
	if err != nil {
		return fmt.Errorf("open checkpoint store: %w", err)
	}

	cs, err := chainstate.Open(filepath.Join(cfg.Warehouse.Dir, "state", "canonical_state.json"))
	if err != nil {
		return fmt.Errorf("open chain state store: %w", err)
	}

	w := warehouse.New(cfg.Warehouse.Dir, warehouse.Bronze)

	wrk := worker.New(client, cp, cs, w, log, worker.Options{
		RPCConcurrency:  cfg.RPC.MaxConcurrency,
		LogChunk:        cfg.Ingestion.LogChunk,
		FinalityDepth:   cfg.Ingestion.FinalityDepth,
		SkipUnfinalized: !ingestIgnoreFinality && !cfg.Ingestion.IgnoreFinality,
		IgnoreFinality:  ingestIgnoreFinality || cfg.Ingestion.IgnoreFinality,
	})

	log.Infof("ingesting %d ranges from %s", len(plan), ingestPlanPath)
	if err := wrk.Run(ctx, plan); err != nil {
		return fmt.Errorf("run worker: %w", err)
	}

	log.Info("ingest complete")
	return nil
}
