package config

import (
	"strconv"

	"github.com/apex/log"
)

// keyLookup holds the conversions shared by the Configer implementations. Each
// implementation only has to say how a raw string value is found.
type keyLookup func(key string) string

func (lookup keyLookup) mustGet(key string) string {
	val := lookup(key)
	if val == "" {
		log.Fatalf("No such required config key: '%s'", key)
	}

	return val
}

func (lookup keyLookup) withDefault(key, defaultValue string) string {
	if val := lookup(key); val != "" {
		return val
	}

	return defaultValue
}

func (lookup keyLookup) intOr(key string, defaultValue int) int {
	intVal, err := strconv.Atoi(lookup(key))
	if err != nil {
		return defaultValue
	}

	return intVal
}

func (lookup keyLookup) mustGetInt(key string) int {
	intVal, err := strconv.Atoi(lookup(key))
	if err != nil {
		log.Fatalf("Required config key either doesn't exist or isn't an int: '%s': %s", key, err)
	}

	return intVal
}

func (lookup keyLookup) boolOr(key string, defaultValue bool) bool {
	boolVal, err := strconv.ParseBool(lookup(key))
	if err != nil {
		return defaultValue
	}

	return boolVal
}
