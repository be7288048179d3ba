// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Defaults
const (
	DefaultPort         = 3318
	DefaultDatabaseType = "sqlite"
	DefaultLogLevel     = "info"
	DefaultEnvFile      = ".env"
)

type Config struct {
	Port          int    `validate:"min=1,max=65535"`
	DatabaseURL   string `validate:"required"`
	DatabaseType  string `validate:"oneof=sqlite postgres"`
	AdminKeySalt  string `validate:"required"`
	ReferencePath string `validate:"required"`
	RedisURL      string `validate:"omitempty,url"`
	LogLevel      string `validate:"oneof=debug info warn error"`
}

// envNames maps Config fields to their environment variables
var envNames = map[string]string{
	"Port":          "PORT",
	"DatabaseURL":   "DATABASE_URL",
	"DatabaseType":  "DATABASE_TYPE",
	"AdminKeySalt":  "ADMIN_KEY_SALT",
	"ReferencePath": "REFERENCE_PATH",
	"RedisURL":      "REDIS_URL",
	"LogLevel":      "LOG_LEVEL",
}

var validate = validator.New()

// RegisterFlags adds the server flags to fs
func RegisterFlags(fs *pflag.FlagSet) {
	// Network config (can be CLI args or env)
	fs.IntP("port", "p", 0, "Server port")
	fs.StringP("database-url", "d", "", "Database URL")
	fs.StringP("database-type", "t", "", "Database type (sqlite or postgres)")
	fs.String("reference", "", "Reference tables YAML file")
	fs.String("redis-url", "", "Redis URL for the report cache (optional)")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.String("env-file", DefaultEnvFile, "Optional .env file")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.String("admin-salt", "", "Admin key salt (prefer env)")
}

// ParseFlags validates flags and fills in the rest from the environment
func ParseFlags(args []string) (Config, error) {
	fs := pflag.NewFlagSet("ballotcheck", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return FromFlags(fs)
}

// FromFlags resolves a Config from flags registered with RegisterFlags.
// An explicit flag wins over the environment, which wins over defaults.
func FromFlags(fs *pflag.FlagSet) (Config, error) {
	envFile, _ := fs.GetString("env-file")
	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	var cfg Config
	cfg.DatabaseURL = stringSetting(fs, "database-url", "DATABASE_URL", "")
	cfg.DatabaseType = stringSetting(fs, "database-type", "DATABASE_TYPE", DefaultDatabaseType)
	cfg.AdminKeySalt = stringSetting(fs, "admin-salt", "ADMIN_KEY_SALT", "")
	cfg.ReferencePath = stringSetting(fs, "reference", "REFERENCE_PATH", "")
	cfg.RedisURL = stringSetting(fs, "redis-url", "REDIS_URL", "")
	cfg.LogLevel = strings.ToLower(stringSetting(fs, "log-level", "LOG_LEVEL", DefaultLogLevel))

	cfg.Port, _ = fs.GetInt("port")
	if !fs.Changed("port") || cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks a Config and names the setting at fault
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fe := verrs[0]
	name := envNames[fe.Field()]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s required", name)
	case "oneof":
		return fmt.Errorf("invalid %s %q (want one of: %s)", name, fe.Value(), fe.Param())
	default:
		return fmt.Errorf("invalid %s %v", name, fe.Value())
	}
}

func stringSetting(fs *pflag.FlagSet, flagName, envName, def string) string {
	if fs.Changed(flagName) {
		v, _ := fs.GetString(flagName)
		if v != "" {
			return v
		}
	}
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return def
}

// loadEnvFile loads an optional .env file without overriding variables
// already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
