// Package config holds the environment-driven settings for the ETL binary.
//
// Settings load from process environment variables, with a .env file picked up
// for local development. No credentials are hardcoded; the DSN is assembled
// from individual DB_* variables so secrets stay out of command lines.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Source kinds accepted by SOURCE_KIND.
const (
	SourceSheets = "sheets"
	SourceXLSX   = "xlsx"
	SourceCSV    = "csv"
)

// Config is the full configuration surface of the engine.
type Config struct {
	// Database.
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME" envDefault:"etl_db"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxConns int32  `env:"DB_MAX_CONNS" envDefault:"5"`

	// Source.
	SourceKind      string `env:"SOURCE_KIND" envDefault:"sheets"`
	SheetID         string `env:"GOOGLE_SHEET_ID"`
	CredentialsPath string `env:"GOOGLE_CREDENTIALS_PATH" envDefault:"credentials.json"`
	SheetName       string `env:"SHEET_NAME" envDefault:"Students"`
	SourcePath      string `env:"SOURCE_PATH"`
	SkipRows        int    `env:"SKIP_ROWS" envDefault:"0"`

	// Load.
	BatchSize        int  `env:"BATCH_SIZE" envDefault:"100"`
	LoaderWorkers    int  `env:"LOADER_WORKERS" envDefault:"1"`
	MaxRetries       int  `env:"MAX_RETRIES" envDefault:"3"`
	AutoCreateTables bool `env:"AUTO_CREATE_TABLES" envDefault:"false"`

	// Quality.
	QualityThresholdPct float64 `env:"QUALITY_THRESHOLD_PCT" envDefault:"90"`

	// Logging.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// Load reads the optional .env file and parses the environment into a Config.
// A missing .env file is not an error; production supplies real env vars.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// DSN returns the Postgres connection string for pgxpool.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}
