package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chainlake/chainlake/pkg/config"
	"github.com/stretchr/testify/require"
)

const yamlFixture = `
chain: testnet
chain_id: 1337
rpc:
  url: https://rpc.test.local
warehouse:
  dir: /tmp/chainlake-warehouse
`

func writeFixture(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := writeFixture(t, "config.yaml", yamlFixture)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	validateConfig(t, cfg)
}

func TestLoadFromFile_JSON(t *testing.T) {
	const jsonFixture = `{"chain":"testnet","chain_id":1337,"rpc":{"url":"https://rpc.test.local"},"warehouse":{"dir":"/tmp/chainlake-warehouse"}}`
	path := writeFixture(t, "config.json", jsonFixture)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	validateConfig(t, cfg)
}

func TestLoadFromFile_TOML(t *testing.T) {
	const tomlFixture = "chain = \"testnet\"\nchain_id = 1337\n\n[rpc]\nurl = \"https://rpc.test.local\"\n\n[warehouse]\ndir = \"/tmp/chainlake-warehouse\"\n"
	path := writeFixture(t, "config.toml", tomlFixture)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	validateConfig(t, cfg)
}

func TestLoadFromFile_UnsupportedFormat(t *testing.T) {
	_, err := LoadFromFile("config.txt")
	require.Contains(t, err.Error(), "unsupported config file format")
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	path := writeFixture(t, "config.yaml", yamlFixture)
	t.Setenv("RPC_URL", "https://override.local")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "https://override.local", cfg.RPC.URL)
}

func validateConfig(t *testing.T, cfg *config.Config) {
	t.Helper()

	require.NotEmpty(t, cfg.RPC.URL)
	require.NotZero(t, cfg.ChainID)
	require.NotEmpty(t, cfg.Warehouse.Dir)

	require.NotZero(t, cfg.Ingestion.ChunkSize, "chunk_size should have default value applied")
	require.NotZero(t, cfg.Ingestion.LogChunk, "log_chunk should have default value applied")
	require.NotZero(t, cfg.RPC.MaxConcurrency, "max_concurrency should have default value applied")
	require.NotEmpty(t, cfg.Logging.Level, "logging.level should have default value applied")
}

func TestConfigDefaults(t *testing.T) {
	cfg := &config.Config{
		ChainID: 1,
		RPC:     config.RPCConfig{URL: "https://test.local"},
	}
	cfg.ApplyDefaults()

	require.Equal(t, uint64(100), cfg.Ingestion.ChunkSize)
	require.Equal(t, uint64(100), cfg.Ingestion.LogChunk)
	require.Equal(t, 6, cfg.RPC.MaxConcurrency)
	require.Equal(t, "warehouse", cfg.Warehouse.Dir)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: &config.Config{
				ChainID: 1,
				RPC:     config.RPCConfig{URL: "https://test.local"},
			},
			wantErr: false,
		},
		{
			name: "missing rpc url",
			cfg: &config.Config{
				ChainID: 1,
			},
			wantErr: true,
		},
		{
			name: "missing chain id",
			cfg: &config.Config{
				RPC: config.RPCConfig{URL: "https://test.local"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.ApplyDefaults()
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
