package clog

import (
	"io"
	"sync"

	"github.com/apex/log"
)

// ContextLogger keeps one apex logger per named context. A context that was
// never added logs through the global logger, tagged with its name.
type ContextLogger struct {
	GlobalLogger   *log.Logger
	ContextLoggers sync.Map
}

// CtxField is the entry field carrying the context name.
const CtxField = "ctx"

// Well known contexts.
const (
	GlobalLoggerCtx = "global"
	RegistryCtx     = "registry"
	WebAPICtx       = "webapi"
	DBCtx           = "mgdb"
)

func NewContextLogger(globalLoggerWriter io.WriteCloser) *ContextLogger {
	return &ContextLogger{GlobalLogger: newLogger(globalLoggerWriter, log.InfoLevel)}
}

// newLogger builds an apex logger that passes everything to its Handler. The
// Handler does the level filtering, so Logger.Level is never written again.
func newLogger(w io.WriteCloser, level log.Level) *log.Logger {
	h := NewHandler(w)
	h.SetLevel(level)

	return &log.Logger{
		Handler: h,
		Level:   log.DebugLevel,
	}
}

func (l *ContextLogger) AddLoggingContext(ctx string, w io.WriteCloser) {
	l.ContextLoggers.Store(ctx, newLogger(w, l.Level(GlobalLoggerCtx)))
}

func (l *ContextLogger) RemoveLoggingContext(ctx string) {
	logger, ok := l.ContextLoggers.LoadAndDelete(ctx)
	if !ok {
		return
	}

	handlerOf(logger.(*log.Logger)).Close()
}

// SetLevel sets the level for ctx. Setting the global level also sets it on
// every added context. Safe to call while other goroutines log.
func (l *ContextLogger) SetLevel(ctx string, level log.Level) {
	if ctx == GlobalLoggerCtx {
		handlerOf(l.GlobalLogger).SetLevel(level)
		l.ContextLoggers.Range(func(_, logger any) bool {
			handlerOf(logger.(*log.Logger)).SetLevel(level)
			return true
		})
		return
	}

	if logger := l.contextLogger(ctx); logger != nil {
		handlerOf(logger).SetLevel(level)
	}
}

func (l *ContextLogger) SetLevelFromString(ctx, s string) error {
	level, err := log.ParseLevel(s)
	if err != nil {
		return err
	}

	l.SetLevel(ctx, level)
	return nil
}

// Level reports the level in effect for ctx.
func (l *ContextLogger) Level(ctx string) log.Level {
	if logger := l.contextLogger(ctx); logger != nil {
		return handlerOf(logger).Level()
	}

	return handlerOf(l.GlobalLogger).Level()
}

// SetGlobalOutput redirects the global logger. Contexts with their own
// writer are left alone.
func (l *ContextLogger) SetGlobalOutput(w io.WriteCloser) {
	handlerOf(l.GlobalLogger).SetOutput(w)
}

func (l *ContextLogger) UsingCtx(ctx string) *log.Entry {
	if logger := l.contextLogger(ctx); logger != nil {
		return logger.WithField(CtxField, ctx)
	}

	return l.GlobalLogger.WithField(CtxField, ctx)
}

func (l *ContextLogger) Global() *log.Entry {
	return l.UsingCtx(GlobalLoggerCtx)
}

func (l *ContextLogger) contextLogger(ctx string) *log.Logger {
	logger, ok := l.ContextLoggers.Load(ctx)
	if !ok {
		return nil
	}

	return logger.(*log.Logger)
}

// handlerOf returns the clog Handler behind logger. Every logger a
// ContextLogger holds is built by newLogger.
func handlerOf(logger *log.Logger) *Handler {
	return logger.Handler.(*Handler)
}
