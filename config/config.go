/*
Package config loads server settings from the environment.

SOURCES (later wins):
  1. Built-in defaults
  2. Optional YAML file named by CONFIG_FILE
  3. Process environment, after loading .env files if present

KEYS:
  PORT                   HTTP port (default 8080)
  DATABASE_PATH          SQLite path, ":memory:" for a throwaway database
  LOG_LEVEL              debug | info | warn | error
  LOG_FORMAT             json | text
  CORS_ALLOWED_ORIGINS   comma-separated origins, "*" for any
  REMINDER_INTERVAL      how often reminders are evaluated (Go duration)
  REMINDERS_ENABLED      run the reminder scheduler

cmd/server exposes -port and -db flags that override PORT and DATABASE_PATH.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Port               int
	DatabasePath       string
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins []string
	ReminderInterval   time.Duration
	RemindersEnabled   bool
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return errors.New("DATABASE_PATH must not be empty")
	}
	if c.RemindersEnabled && c.ReminderInterval <= 0 {
		return fmt.Errorf("invalid REMINDER_INTERVAL %s", c.ReminderInterval)
	}
	return nil
}

// LoadEnv loads variables from .env files into the process environment.
// Variables already set in the environment are kept.
func LoadEnv(logger *logrus.Logger) {
	files := []string{".env", ".env.local"}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("Failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if logger == nil {
		return
	}
	if len(loaded) == 0 {
		logger.Debug("No local env files loaded; relying on process environment")
	} else {
		logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
	}
}

// Load reads the configuration. Call LoadEnv first to pick up .env files.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("database_path", "./data/rent-ledger.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("reminder_interval", "1h")
	v.SetDefault("reminders_enabled", true)

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:               v.GetInt("port"),
		DatabasePath:       v.GetString("database_path"),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		ReminderInterval:   v.GetDuration("reminder_interval"),
		RemindersEnabled:   v.GetBool("reminders_enabled"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
