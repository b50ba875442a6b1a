package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"storage": { "type": "sqlite", "postgres": { "host": "10.0.0.1", "port": "5433" } }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vehsim.cfg.json"), []byte(cfg), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "sqlite", viper.GetString("storage.type"))
	assert.Equal(t, "10.0.0.1", viper.GetString("storage.postgres.host"))
	assert.Equal(t, "5433", viper.GetString("storage.postgres.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vehsim.cfg.json"), []byte(`{}`), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./simlogs", viper.GetString("logsDir"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "./saves", viper.GetString("storage.memory.outputDir"))
	assert.Equal(t, "localhost", viper.GetString("storage.postgres.host"))
	assert.Equal(t, "5432", viper.GetString("storage.postgres.port"))
	assert.Equal(t, "postgres", viper.GetString("storage.postgres.username"))
	assert.Equal(t, "vehsim", viper.GetString("storage.postgres.database"))
	assert.Equal(t, 0.6, viper.GetFloat64("sim.breakoffFraction"))
	assert.Equal(t, 200, viper.GetInt("sim.collisionConstant"))
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestStorage_PartialFileKeepsDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"storage": {
			"type": "postgres",
			"postgres": { "host": "db.internal", "database": "fleet" }
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vehsim.cfg.json"), []byte(cfg), 0644))
	require.NoError(t, Load(dir))

	sc := Storage()
	assert.Equal(t, "postgres", sc.Type)
	assert.Equal(t, "db.internal", sc.Postgres.Host)
	assert.Equal(t, "fleet", sc.Postgres.Database)
	// Keys the file does not mention keep their defaults.
	assert.Equal(t, "5432", sc.Postgres.Port)
	assert.Equal(t, "postgres", sc.Postgres.Username)
	assert.Equal(t, "./saves", sc.Memory.OutputDir)
	assert.Equal(t, 30, sc.Sqlite.DumpIntervalSec)
}
