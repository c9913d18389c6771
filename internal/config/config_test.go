package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, DriverMongoDB, cfg.StoreDriver)
	assert.Equal(t, 10, cfg.DefaultLimit)
	assert.Equal(t, 100, cfg.MaxLimit)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.UseKafka)
}

func TestLoad_FileThenEnv(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "insightdash.yaml")
	content := `
http_port: "9090"
store_driver: sqlite
sqlite_path: /tmp/insights.db
request_timeout: 2s
max_limit: 50
kafka_brokers: ["k1:9092", "k2:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("USE_KAFKA", "true")

	// Act
	cfg, err := Load(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.HTTPPort, "el entorno manda sobre el fichero")
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/insights.db", cfg.SQLitePath)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 50, cfg.MaxLimit)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.UseKafka)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "driver desconocido", env: map[string]string{"STORE_DRIVER": "redis"}},
		{name: "postgres sin url", env: map[string]string{"STORE_DRIVER": "postgres"}},
		{name: "limit no numérico", env: map[string]string{"DEFAULT_LIMIT": "ten"}},
		{name: "max por debajo del default", env: map[string]string{"MAX_LIMIT": "5"}},
		{name: "timeout mal formado", env: map[string]string{"REQUEST_TIMEOUT": "soon"}},
		{name: "use kafka mal formado", env: map[string]string{"USE_KAFKA": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")

			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}
