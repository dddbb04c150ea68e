package mgapi

import (
	"embed"
	"io/fs"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mergington/activities/pkg/clog"
	"github.com/mergington/activities/pkg/mgapi/metrics"
	"github.com/mergington/activities/pkg/mgapi/webapi"
	"github.com/mergington/activities/pkg/mgdb/stor"
)

//go:embed static
var staticFiles embed.FS

type RouteOpts struct {
	ActivityStor stor.ActivityStor
	Metrics      *metrics.Metrics
	Logger       *clog.ContextLogger

	// EnableAdmin mounts /admin/logging, which can redirect logs to any
	// file the process can write.
	EnableAdmin bool
}

// NewServer builds the echo instance serving the activities API and the
// front-end. The caller starts and stops it.
func NewServer(opts RouteOpts) *echo.Echo {
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	if opts.Logger == nil {
		opts.Logger = clog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = webapi.HTTPErrorHandler
	e.Use(middleware.Recover())
	e.Use(requestLogger(opts.Logger))
	e.Use(opts.Metrics.Middleware())

	SetupRoutes(e, opts)

	return e
}

func requestLogger(logger *clog.ContextLogger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.UsingCtx(clog.WebAPICtx).WithFields(log.Fields{
				"status":  v.Status,
				"latency": v.Latency,
			})
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Debugf("%s %s", v.Method, v.URI)
			return nil
		},
	})
}

func mustStaticFS() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatalf("Embedded static files missing: %s", err)
	}

	return sub
}
