package config

import (
	"os"

	"github.com/subosito/gotenv"
)

// DotenvConfig reads KEY=value files into the process environment. Values
// already present in the environment win over the file.
type DotenvConfig struct {
	DotenvPath string
}

func NewDotenvConfig(path string) *DotenvConfig {
	return &DotenvConfig{DotenvPath: path}
}

func (c *DotenvConfig) LoadFromPath(path string) error {
	c.DotenvPath = path
	return c.Load()
}

func (c *DotenvConfig) Load() error {
	return gotenv.Load(c.DotenvPath)
}

func (c *DotenvConfig) GetKey(key string) string {
	return os.Getenv(key)
}

func (c *DotenvConfig) MustGetKey(key string) string {
	return keyLookup(c.GetKey).mustGet(key)
}

func (c *DotenvConfig) GetKeyWithDefault(key, defaultValue string) string {
	return keyLookup(c.GetKey).withDefault(key, defaultValue)
}

func (c *DotenvConfig) GetIntKey(key string) int {
	return keyLookup(c.GetKey).intOr(key, 0)
}

func (c *DotenvConfig) MustGetIntKey(key string) int {
	return keyLookup(c.GetKey).mustGetInt(key)
}

func (c *DotenvConfig) GetIntKeyWithDefault(key string, defaultValue int) int {
	return keyLookup(c.GetKey).intOr(key, defaultValue)
}

func (c *DotenvConfig) GetBoolKeyWithDefault(key string, defaultValue bool) bool {
	return keyLookup(c.GetKey).boolOr(key, defaultValue)
}
