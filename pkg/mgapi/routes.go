package mgapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mergington/activities/pkg/mgapi/webapi"
)

const indexPath = "/static/index.html"

func SetupRoutes(e *echo.Echo, opts RouteOpts) {
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusTemporaryRedirect, indexPath)
	})
	e.StaticFS("/static", mustStaticFS())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))

	activitiesController := webapi.NewActivitiesController(opts.ActivityStor, opts.Metrics)

	g := e.Group("/activities")
	g.GET("", activitiesController.ListActivities)
	g.GET("/:activity_name", activitiesController.GetActivity)
	g.POST("/:activity_name/signup", activitiesController.Signup)
	g.POST("/:activity_name/unregister", activitiesController.Unregister)

	e.GET("/participants/:email", activitiesController.FindParticipant)

	if !opts.EnableAdmin {
		return
	}

	logController := webapi.NewLogController(opts.Logger)
	admin := e.Group("/admin")
	admin.GET("/logging", logController.ShowCurrentLogging)
	admin.PUT("/logging", logController.SetLogging)
}
