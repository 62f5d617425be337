package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "cre-analytics.db", cfg.Store.Path)
	assert.Equal(t, 8, cfg.Store.MaxConns)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/cre-market", cfg.Market.CacheDir)
	assert.Contains(t, cfg.Geo.ShapefileURL, "tl_2024_us_cbsa.zip")
	assert.Equal(t, "/tmp/cre-tiger", cfg.Geo.CacheDir)
	assert.Equal(t, "local", cfg.OCR.Provider)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, 4000, cfg.Anthropic.MaxTokens)
	assert.InDelta(t, 0.3, cfg.Anthropic.Temperature, 0.001)
	assert.InDelta(t, 3, cfg.Notion.RPS, 0.001)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentProperties)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/cre
log:
  level: debug
  format: console
server:
  port: 9090
batch:
  max_concurrent_properties: 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/cre", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Batch.MaxConcurrentProperties)
	// Defaults still apply for unset values
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("CRE_STORE_DRIVER", "sqlite")
	t.Setenv("CRE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("CRE_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = "cre-analytics.db"
	cfg.Server.Port = 8080
	cfg.Anthropic.Temperature = 0.3
	cfg.Batch.MaxConcurrentProperties = 4
	return cfg
}

func TestValidateStore_SQLite(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("store"))
}

func TestValidateStore_SQLiteMissingPath(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Path = ""

	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.path is required")
}

func TestValidateStore_PostgresMissingURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateStore_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mongo"

	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateExport_AllPresent(t *testing.T) {
	cfg := validDefaults()
	cfg.Notion.Token = "ntn_token"
	cfg.Notion.AnalysisDB = "analysis-db-id"

	assert.NoError(t, cfg.Validate("export"))
}

func TestValidateExport_MissingFields(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("export")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "notion.token is required")
	assert.Contains(t, err.Error(), "notion.analysis_db is required")
}

func TestValidateCRM_AllPresent(t *testing.T) {
	cfg := validDefaults()
	cfg.Salesforce.ClientID = "client-id"
	cfg.Salesforce.Username = "analyst@example.com"
	cfg.Salesforce.KeyPath = "/etc/sf/key.pem"

	assert.NoError(t, cfg.Validate("crm"))
}

func TestValidateCRM_MissingFields(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("crm")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "salesforce.client_id is required")
	assert.Contains(t, err.Error(), "salesforce.username is required")
	assert.Contains(t, err.Error(), "salesforce.key_path is required")
}

func TestValidateInsights_MissingKey(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("insights")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Batch.MaxConcurrentProperties = 0
	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_properties must be between 1 and 32")

	cfg.Batch.MaxConcurrentProperties = 33
	err = cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_properties must be between 1 and 32")

	cfg.Batch.MaxConcurrentProperties = 32
	err = cfg.Validate("store")
	assert.NoError(t, err)
}

func TestValidateTemperatureBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Anthropic.Temperature = -0.1
	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.temperature")

	cfg.Anthropic.Temperature = 1.1
	err = cfg.Validate("store")
	assert.Error(t, err)

	cfg.Anthropic.Temperature = 1.0
	err = cfg.Validate("store")
	assert.NoError(t, err)
}
