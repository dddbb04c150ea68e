package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// DefaultDotenvPath is used when MG_DOTENV_PATH isn't set.
const DefaultDotenvPath = "~/.mergington/config.env"

// Keys understood by the activities daemon and the mgctl client.
const (
	KeyPort             = "MG_PORT"
	KeyStore            = "MG_STORE"
	KeySqliteDSN        = "MG_SQLITE_DSN"
	KeyTxRetry          = "MG_TX_RETRY"
	KeyEnforceCapacity  = "MG_ENFORCE_CAPACITY"
	KeyLogLevel         = "MG_LOG_LEVEL"
	KeyLogFile          = "MG_LOG_FILE"
	KeySeedFile         = "MG_SEED_FILE"
	KeyServerURL        = "MG_SERVER_URL"
	KeyDotenvPath       = "MG_DOTENV_PATH"
	KeyEnableAdmin      = "MG_ENABLE_ADMIN"
	KeyRedisAddr        = "MG_REDIS_ADDR"
	KeyRedisPassword    = "MG_REDIS_PASSWORD"
	KeyRedisDB          = "MG_REDIS_DB"
	DefaultRedisAddr    = "127.0.0.1:6379"
	DefaultPort         = "8000"
	DefaultServerURL    = "http://localhost:8000"
	DefaultSqliteDSN    = "file::memory:?cache=shared"
	DefaultStoreBackend = "memory"
)

// Open picks a Configer from the file extension: .yaml, .yml, .toml and .json
// go through viper, anything else is treated as a dotenv file. The returned
// Configer has already been loaded and installed as the package config.
func Open(path string) (Configer, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to expand config path %s", path)
	}

	var c Configer
	switch strings.ToLower(filepath.Ext(expanded)) {
	case ".yaml", ".yml", ".toml", ".json":
		c = NewViperConfig(expanded)
	default:
		c = NewDotenvConfig(expanded)
	}

	if err := c.Load(); err != nil {
		return nil, errors.Wrapf(err, "unable to load config %s", expanded)
	}

	SetConfig(c)
	return c, nil
}

// MustLoadFromDotenv loads MG_DOTENV_PATH (or DefaultDotenvPath). A missing
// file isn't an error, the process environment is used on its own in that
// case. Any other failure is fatal.
func MustLoadFromDotenv() Configer {
	path := os.Getenv(KeyDotenvPath)
	if path == "" {
		path = DefaultDotenvPath
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		log.Fatalf("Unable to expand dotenv path %s: %s", path, err)
	}

	c := NewDotenvConfig(expanded)
	if _, err := os.Stat(expanded); err != nil {
		log.Infof("No dotenv file at %s, using environment only", expanded)
		SetConfig(c)
		return c
	}

	if err := c.Load(); err != nil {
		log.Fatalf("Unable to load dotenv file %s: %s", expanded, err)
	}

	SetConfig(c)
	return c
}
