package config

import (
	"os"
	"strconv"
)

// OverrideFromEnv overlays any of the five documented environment variables
// that are set onto a Config already loaded from a file, environment values
// taking precedence.
func OverrideFromEnv(cfg *Config) error {
	if v := os.Getenv("CHAIN"); v != "" {
		cfg.Chain = v
	}
	if v := os.Getenv("RPC_URL"); v != "" {
		cfg.RPC.URL = v
	}
	if v := os.Getenv("WAREHOUSE_DIR"); v != "" {
		cfg.Warehouse.Dir = v
	}
	if v := os.Getenv("CHAIN_ID"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		cfg.ChainID = id
	}
	if v := os.Getenv("FINALITY_DEPTH"); v != "" {
		depth, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		cfg.Ingestion.FinalityDepth = depth
	}
	return nil
}
