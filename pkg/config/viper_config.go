package config

import (
	"github.com/spf13/viper"
)

// ViperConfig reads a YAML/TOML/JSON config file. Environment variables with
// the same name as a key override the file.
type ViperConfig struct {
	ConfigPath string
	v          *viper.Viper
}

func NewViperConfig(path string) *ViperConfig {
	v := viper.New()
	v.AutomaticEnv()
	return &ViperConfig{ConfigPath: path, v: v}
}

func (c *ViperConfig) LoadFromPath(path string) error {
	c.ConfigPath = path
	return c.Load()
}

func (c *ViperConfig) Load() error {
	if c.ConfigPath == "" {
		return nil
	}

	c.v.SetConfigFile(c.ConfigPath)
	return c.v.ReadInConfig()
}

func (c *ViperConfig) GetKey(key string) string {
	return c.v.GetString(key)
}

func (c *ViperConfig) MustGetKey(key string) string {
	return keyLookup(c.GetKey).mustGet(key)
}

func (c *ViperConfig) GetKeyWithDefault(key, defaultValue string) string {
	return keyLookup(c.GetKey).withDefault(key, defaultValue)
}

func (c *ViperConfig) GetIntKey(key string) int {
	return keyLookup(c.GetKey).intOr(key, 0)
}

func (c *ViperConfig) MustGetIntKey(key string) int {
	return keyLookup(c.GetKey).mustGetInt(key)
}

func (c *ViperConfig) GetIntKeyWithDefault(key string, defaultValue int) int {
	return keyLookup(c.GetKey).intOr(key, defaultValue)
}

func (c *ViperConfig) GetBoolKeyWithDefault(key string, defaultValue bool) bool {
	return keyLookup(c.GetKey).boolOr(key, defaultValue)
}
