// Package config reads application configuration from environment variables,
// with an optional .env file, and constructs the shared logger.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/piwi3910/BarNest/internal/model"
	"github.com/piwi3910/BarNest/internal/project"
)

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	LogLevel     string
	DataDir      string
	StockLengths []float64
	KerfMM       float64
	MinOffcutMM  float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	defaults := model.DefaultSettings()

	stockLengths, err := parseStockLengths(getEnv("DEFAULT_STOCK_LENGTHS", ""))
	if err != nil {
		return nil, err
	}
	if len(stockLengths) == 0 {
		stockLengths = defaults.StockLengths
	}

	cfg := &Config{
		Port:         getEnvAsInt("BARNEST_PORT", 8080),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DataDir:      getEnv("DATA_DIR", project.DefaultDataDir()),
		StockLengths: stockLengths,
		KerfMM:       getEnvAsFloat("KERF_MM", defaults.KerfMM),
		MinOffcutMM:  getEnvAsFloat("MIN_OFFCUT_MM", defaults.MinOffcutMM),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("BARNEST_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.KerfMM < 0 {
		return fmt.Errorf("KERF_MM must not be negative, got %g", c.KerfMM)
	}
	for _, l := range c.StockLengths {
		if l <= 0 {
			return fmt.Errorf("stock lengths must be positive, got %g", l)
		}
	}
	return nil
}

// Settings returns the engine settings derived from this configuration.
func (c *Config) Settings() model.NestSettings {
	s := model.DefaultSettings()
	s.StockLengths = c.StockLengths
	s.KerfMM = c.KerfMM
	s.MinOffcutMM = c.MinOffcutMM
	return s
}

// NewLogger creates the application logger at the configured level. Pretty
// console output in dev mode, JSON otherwise.
func (c *Config) NewLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	switch c.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout
	if c.DevMode {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// parseStockLengths parses a comma-separated list of bar lengths in mm,
// e.g. "6000,12000".
func parseStockLengths(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var lengths []float64
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("DEFAULT_STOCK_LENGTHS: invalid length %q", tok)
		}
		lengths = append(lengths, v)
	}
	return lengths, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
