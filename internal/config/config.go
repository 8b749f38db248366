package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	GeminiModel       string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"60s"`

	HTTPPort             string        `env:"HTTP_PORT" envDefault:"8080"`
	StaticDir            string        `env:"STATIC_DIR" envDefault:"web"`
	Workers              int           `env:"WORKERS" envDefault:"10"`
	WorkerBacklog        int           `env:"WORKER_BACKLOG" envDefault:"1000"`
	WorkerBacklogTimeout time.Duration `env:"WORKER_BACKLOG_TIMEOUT" envDefault:"5m"`

	// Storage
	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`
	UsersFile    string `env:"USERS_FILE" envDefault:"users.json"`
	HistoryFile  string `env:"HISTORY_FILE" envDefault:"history.json"`
	DatabaseURL  string `env:"DATABASE_URL" envDefault:"microlearn.db"`

	LogMode string `env:"LOG_MODE" envDefault:"development"`
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var AppConfig Config

// LoadConfig reads .env (if present) and the process environment into AppConfig.
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := Parse()
	if err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// Parse builds a Config from the current environment without touching AppConfig.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	switch c.StoreBackend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want %q or %q)", c.StoreBackend, BackendFile, BackendSQLite)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Workers)
	}
	if c.WorkerBacklog < 0 {
		return fmt.Errorf("WORKER_BACKLOG must not be negative, got %d", c.WorkerBacklog)
	}
	return nil
}
