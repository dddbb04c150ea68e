package tutil

import (
	"os"
	"strings"
)

// IsIntegrationTest reports whether MG_TEST=integration, which gates tests
// that need a running MySQL or server.
func IsIntegrationTest() bool {
	testType := os.Getenv("MG_TEST")
	return strings.ToLower(testType) == "integration"
}
