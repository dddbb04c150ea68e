package clog

import (
	"io"
	"os"

	"github.com/apex/log"
)

var clogger = NewContextLogger(os.Stdout)

// Default returns the package wide ContextLogger.
func Default() *ContextLogger {
	return clogger
}

// UseAsApexDefault routes the apex package level logger (log.Infof and friends)
// through the global clog handler so that all output shares one format and
// one destination.
func UseAsApexDefault() {
	log.Log = clogger.GlobalLogger
}

func SetGlobalLoggerLevelFromString(s string) error {
	return clogger.SetLevelFromString(GlobalLoggerCtx, s)
}

func SetGlobalOutput(w io.WriteCloser) {
	clogger.SetGlobalOutput(w)
}

func UsingCtx(ctx string) *log.Entry {
	return clogger.UsingCtx(ctx)
}

func Global() *log.Entry {
	return clogger.Global()
}
