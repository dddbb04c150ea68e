package config

import (
	"fmt"
	"sync"
)

// MapConfig is a fixed set of values, used by tests and by callers that build
// their configuration in code.
type MapConfig struct {
	configValues sync.Map
}

func NewMapConfig(entries map[string]string) *MapConfig {
	c := &MapConfig{}

	for key, entry := range entries {
		c.configValues.Store(key, entry)
	}

	return c
}

// Set adds or replaces a single value.
func (c *MapConfig) Set(key, value string) {
	c.configValues.Store(key, value)
}

func (c *MapConfig) LoadFromPath(_ string) error {
	return fmt.Errorf("LoadFromPath not supported for MapConfig")
}

func (c *MapConfig) Load() error {
	return nil
}

func (c *MapConfig) GetKey(key string) string {
	v, ok := c.configValues.Load(key)
	if !ok || v == nil {
		return ""
	}

	return v.(string)
}

func (c *MapConfig) MustGetKey(key string) string {
	return keyLookup(c.GetKey).mustGet(key)
}

func (c *MapConfig) GetKeyWithDefault(key, defaultValue string) string {
	return keyLookup(c.GetKey).withDefault(key, defaultValue)
}

func (c *MapConfig) GetIntKey(key string) int {
	return keyLookup(c.GetKey).intOr(key, 0)
}

func (c *MapConfig) MustGetIntKey(key string) int {
	return keyLookup(c.GetKey).mustGetInt(key)
}

func (c *MapConfig) GetIntKeyWithDefault(key string, defaultValue int) int {
	return keyLookup(c.GetKey).intOr(key, defaultValue)
}

func (c *MapConfig) GetBoolKeyWithDefault(key string, defaultValue bool) bool {
	return keyLookup(c.GetKey).boolOr(key, defaultValue)
}
