package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 70.0, cfg.Pipeline.MasteryThreshold)
	assert.Equal(t, 4, cfg.Pipeline.Clusters)
	assert.Equal(t, int64(42), cfg.Pipeline.Seed)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown db type", func(c *Config) { c.Database.Type = "oracle" }},
		{"postgres without host", func(c *Config) { c.Database.Type = "postgres"; c.Database.Host = "" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"zero clusters", func(c *Config) { c.Pipeline.Clusters = 0 }},
		{"test ratio of one", func(c *Config) { c.Pipeline.ClassifierTestRatio = 1 }},
		{"threshold above 100", func(c *Config) { c.Pipeline.MasteryThreshold = 101 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte("server:\n  port: 8181\n  read_timeout: 5s\npipeline:\n  clusters: 3\n")
	require.NoError(t, os.WriteFile(path, yaml, 0o644))

	t.Setenv("LEARNPATH_CONFIG", path)
	t.Setenv("LEARNPATH_SIMILAR_TOP_K", "7")
	t.Setenv("LEARNPATH_SERVER_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 3, cfg.Pipeline.Clusters)
	assert.Equal(t, 7, cfg.Pipeline.SimilarTopK)
	assert.Equal(t, 10, cfg.Pipeline.ContentLimit)
}

func TestDSN(t *testing.T) {
	db := Default().Database
	assert.Contains(t, db.DSN(), "./data/learnpath.db?")

	db.Type = "postgres"
	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=learnpath sslmode=disable", db.DSN())
}
