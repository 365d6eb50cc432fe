package config

import (
	"os"
	"strconv"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	HTTPAddr  string
	DB        PostgresConfig
	Engine    EngineConfig
	QueueURL  string
	BatchSize int // positions per batch job
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
}

type EngineConfig struct {
	Path          string // engine executable; resolved via PATH if bare name
	TablebasePath string // Syzygy directory handed to the engine verbatim
}

const (
	defaultEnginePath    = "stockfish"
	defaultTablebasePath = "/usr/share/syzygy"
	defaultHTTPAddr      = "0.0.0.0:8080"
	defaultBatchSize     = 100
)

func LoadConfig() (*Config, error) {
	cfg := &Config{
		HTTPAddr: os.Getenv("HTTP_ADDR"),
		QueueURL: os.Getenv("QUEUE_URL"),
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     os.Getenv("POSTGRES_PORT"),
		},
		Engine: EngineConfig{
			Path:          os.Getenv("ENGINE_PATH"),
			TablebasePath: os.Getenv("TABLEBASE_PATH"),
		},
		BatchSize: defaultBatchSize,
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.Engine.Path == "" {
		cfg.Engine.Path = defaultEnginePath
	}
	if cfg.Engine.TablebasePath == "" {
		cfg.Engine.TablebasePath = defaultTablebasePath
	}
	if v := os.Getenv("BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BatchSize = n
		}
	}

	return cfg, nil
}
