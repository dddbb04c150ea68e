package webapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mergington/activities/pkg/clog"
	"github.com/mergington/activities/pkg/mgdb/stor"
	"github.com/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HTTPErrorHandler replaces echo's default so errors are rendered as
// {"detail": "..."}.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		detail = fmt.Sprint(he.Message)
	}

	if code >= http.StatusInternalServerError {
		clog.UsingCtx(clog.WebAPICtx).Errorf("%s %s failed: %s", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, ErrorResponse{Detail: detail})
	}

	if err != nil {
		clog.UsingCtx(clog.WebAPICtx).Errorf("Unable to write error response: %s", err)
	}
}

// toHTTPError maps registry errors onto status codes. Unknown activities and
// unknown students are 404; everything else the registry refuses, including
// unregistering a student who isn't on that roster, is 400.
func toHTTPError(err error) error {
	storErr, ok := stor.AsError(err)
	if !ok {
		return err
	}

	code := http.StatusBadRequest
	switch storErr {
	case stor.ErrActivityNotFound, stor.ErrParticipantNotSignedUp:
		code = http.StatusNotFound
	}

	return echo.NewHTTPError(code, storErr.Detail).SetInternal(err)
}
