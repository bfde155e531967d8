package main

import (
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "chainlaked",
	Short:   "chainlaked ingests EVM chain data into a Parquet lake",
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(decodeCmd)
}
