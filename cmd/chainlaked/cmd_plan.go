package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainlake/chainlake/internal/config"
	"github.com/chainlake/chainlake/internal/planner"
)

var (
	planStart  uint64
	planEnd    uint64
	planOut    string
	planAppend bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a contiguous range of blocks into a line-delimited plan file",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().Uint64Var(&planStart, "start", 0, "first block (inclusive)")
	planCmd.Flags().Uint64Var(&planEnd, "end", 0, "last block (inclusive)")
	planCmd.Flags().StringVar(&planOut, "out", "plan.jsonl", "output plan file path")
	planCmd.Flags().BoolVar(&planAppend, "append", false, "append to out instead of truncating it")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ranges, err := planner.Plan(cfg.ChainID, planStart, planEnd, cfg.Ingestion.ChunkSize)
	if err != nil {
		return fmt.Errorf("plan ranges: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE
	if planAppend {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(planOut, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open plan file: %w", err)
	}
	defer f.Close()

	if err := planner.WritePlan(f, ranges); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}

	fmt.Printf("Planned %d ranges into %s\n", len(ranges), planOut)
	return nil
}
