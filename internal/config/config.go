package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// StorageConfig selects and parameterizes the persistence backend.
type StorageConfig struct {
	Type     string         `json:"type"`
	Memory   MemoryConfig   `json:"memory"`
	Sqlite   SqliteConfig   `json:"sqlite"`
	Postgres PostgresConfig `json:"postgres"`
}

// MemoryConfig holds in-memory/JSON storage backend settings.
type MemoryConfig struct {
	OutputDir string `json:"outputDir"`
}

// SqliteConfig holds SQLite storage backend settings.
type SqliteConfig struct {
	DumpPath        string `json:"dumpPath"`
	DumpIntervalSec int    `json:"dumpIntervalSec"`
}

// PostgresConfig holds PostgreSQL storage backend settings.
type PostgresConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./simlogs")
	viper.SetDefault("dataDir", "./data")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "vehsim")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./saves")
	viper.SetDefault("storage.sqlite.dumpPath", "./saves/vehsim.db")
	viper.SetDefault("storage.sqlite.dumpIntervalSec", 30)
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", "5432")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "postgres")
	viper.SetDefault("storage.postgres.database", "vehsim")

	viper.SetDefault("sim.breakoffFraction", 0.6)
	viper.SetDefault("sim.collisionConstant", 200)
	viper.SetDefault("sim.scatterDistance", 3)
	viper.SetDefault("sim.transferLossPercent", 10)
	viper.SetDefault("sim.frictionBase", 1000.0)
	viper.SetDefault("sim.aeroBase", 200.0)
	viper.SetDefault("sim.massBase", 100.0)
	viper.SetDefault("sim.safeFraction", 0.7)
	viper.SetDefault("sim.optimalFraction", 0.5)
	viper.SetDefault("sim.fuelUsagePerPower", 0.01)

	viper.SetConfigName("vehsim.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// Storage assembles the storage section. Fields are read key by key so the
// defaults from Load survive a partial config file.
func Storage() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir: viper.GetString("storage.memory.outputDir"),
		},
		Sqlite: SqliteConfig{
			DumpPath:        viper.GetString("storage.sqlite.dumpPath"),
			DumpIntervalSec: viper.GetInt("storage.sqlite.dumpIntervalSec"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("storage.postgres.host"),
			Port:     viper.GetString("storage.postgres.port"),
			Username: viper.GetString("storage.postgres.username"),
			Password: viper.GetString("storage.postgres.password"),
			Database: viper.GetString("storage.postgres.database"),
		},
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat returns a float config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}
