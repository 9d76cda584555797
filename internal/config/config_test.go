package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GRAPHBATCH_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "nebula", cfg.Graph.Driver)
	assert.Equal(t, []string{"127.0.0.1:9669"}, cfg.Graph.Hosts)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "ngql", cfg.Dialect())
	assert.Equal(t, 0, cfg.Batch.Size)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphbatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
graph:
  driver: nebula
  hosts: ["graphd1:9669", "graphd2:9669"]
  space: basketball
  timeout: 5s
batch:
  size: 500
  workers: 8
logging:
  format: json
`), 0o600))

	t.Setenv("BATCH_SIZE", "250")
	t.Setenv("GRAPH_HOSTS", "graphd3:9669, graphd4:9669")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://localhost:3000,")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "basketball", cfg.Graph.Space)
	assert.Equal(t, 5*time.Second, cfg.Graph.Timeout)
	assert.Equal(t, []string{"graphd3:9669", "graphd4:9669"}, cfg.Graph.Hosts)
	assert.Equal(t, 250, cfg.Batch.Size)
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, defaultBatchConcurrency, cfg.Batch.Concurrency)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.AllowedOrigins)
}

func TestDialectFollowsDriver(t *testing.T) {
	t.Setenv("GRAPH_DRIVER", "neo4j")
	t.Setenv("GRAPH_HOSTS", "bolt://localhost:7687")

	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "cypher", cfg.Dialect())
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"GRAPH_DRIVER": "gremlin"}},
		{"missing space", map[string]string{"GRAPH_DRIVER": "nebula", "GRAPH_SPACE": " "}},
		{"bad dialect", map[string]string{"BATCH_DIALECT": "sql"}},
		{"mismatched dialect", map[string]string{"GRAPH_DRIVER": "neo4j", "BATCH_DIALECT": "ngql"}},
		{"zero workers", map[string]string{"BATCH_WORKERS": "0"}},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFile("")
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestEnvErrors(t *testing.T) {
	t.Setenv("SERVER_PORT", "70000")
	_, err := LoadFile("")
	assert.Error(t, err)

	t.Setenv("SERVER_PORT", "")
	t.Setenv("GRAPH_TIMEOUT", "soon")
	_, err = LoadFile("")
	assert.ErrorContains(t, err, "GRAPH_TIMEOUT")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
