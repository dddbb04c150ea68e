package webapi

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/mergington/activities/pkg/clog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putLogging(t *testing.T, controller *LogController, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/admin/logging", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, controller.SetLogging(e.NewContext(req, rec))
}

func TestLogControllerSetLevelAndOutput(t *testing.T) {
	logger := clog.NewContextLogger(os.Stdout)
	controller := NewLogController(logger)
	assert.Equal(t, "info", controller.CurrentLogLevel)

	logFile := filepath.Join(t.TempDir(), "mgactd.log")
	rec, err := putLogging(t, controller, `{"log_level":"debug","log_output":"`+logFile+`"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"current_log_level":"debug"`)
	assert.Equal(t, log.DebugLevel, logger.Level(clog.GlobalLoggerCtx))

	logger.UsingCtx(clog.WebAPICtx).Debug("written to file")
	logger.SetGlobalOutput(os.Stdout)

	contents, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "[webapi] written to file")
}

func TestLogControllerRejectsBadLevel(t *testing.T) {
	controller := NewLogController(clog.NewContextLogger(os.Stdout))

	_, err := putLogging(t, controller, `{"log_level":"chatty"}`)
	requireHTTPError(t, err, http.StatusBadRequest)
	assert.Equal(t, "info", controller.CurrentLogLevel)
}
