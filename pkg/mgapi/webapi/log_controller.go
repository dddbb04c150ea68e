package webapi

import (
	"net/http"
	"os"
	"sync"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/mergington/activities/pkg/clog"
	"github.com/pkg/errors"
)

// LogController lets an operator change the global log level and output of a
// running server.
type LogController struct {
	mu              sync.Mutex
	logger          *clog.ContextLogger
	CurrentLogLevel string `json:"current_log_level"`
	CurrentLogFile  string `json:"current_log_file"`
}

func NewLogController(logger *clog.ContextLogger) *LogController {
	return &LogController{
		logger:          logger,
		CurrentLogLevel: logger.Level(clog.GlobalLoggerCtx).String(),
		CurrentLogFile:  "stdout",
	}
}

func (c *LogController) SetLogging(ctx echo.Context) error {
	var req struct {
		LogLevel  string `json:"log_level"`
		LogOutput string `json:"log_output"`
	}

	if err := ctx.Bind(&req); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if req.LogLevel != "" {
		if err := c.setLoggingLevel(req.LogLevel); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	if req.LogOutput != "" {
		if err := c.setLoggingOutput(req.LogOutput); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	return ctx.JSON(http.StatusOK, c)
}

func (c *LogController) ShowCurrentLogging(ctx echo.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return ctx.JSON(http.StatusOK, c)
}

func (c *LogController) setLoggingLevel(logLevel string) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %s", logLevel)
	}

	c.logger.SetLevel(clog.GlobalLoggerCtx, level)
	c.CurrentLogLevel = level.String()

	return nil
}

func (c *LogController) setLoggingOutput(logOutput string) error {
	switch logOutput {
	case "stdout":
		c.logger.SetGlobalOutput(os.Stdout)
	case "stderr":
		c.logger.SetGlobalOutput(os.Stderr)
	default:
		f, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return errors.Wrapf(err, "failed to open log output %s", logOutput)
		}
		c.logger.SetGlobalOutput(f)
	}

	c.CurrentLogFile = logOutput
	return nil
}
