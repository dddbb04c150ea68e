package webapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/labstack/echo/v4"
	"github.com/mergington/activities/pkg/mgapi/metrics"
	"github.com/mergington/activities/pkg/mgdb/stor"
)

type ActivitiesController struct {
	activityStor stor.ActivityStor
	metrics      *metrics.Metrics
}

func NewActivitiesController(activityStor stor.ActivityStor, m *metrics.Metrics) *ActivitiesController {
	return &ActivitiesController{activityStor: activityStor, metrics: m}
}

// MessageResponse is the body of a successful signup or unregister.
type MessageResponse struct {
	Message string `json:"message"`
}

// ParticipantResponse answers GET /participants/:email.
type ParticipantResponse struct {
	Email    string `json:"email"`
	Activity string `json:"activity"`
}

func (c *ActivitiesController) ListActivities(ctx echo.Context) error {
	activities, err := c.activityStor.ListActivities()
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, activities)
}

func (c *ActivitiesController) GetActivity(ctx echo.Context) error {
	activityName, err := activityNameParam(ctx)
	if err != nil {
		return err
	}

	activity, err := c.activityStor.GetActivityByName(activityName)
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(http.StatusOK, activity)
}

func (c *ActivitiesController) Signup(ctx echo.Context) error {
	activityName, email, err := c.signupParams(ctx)
	if err != nil {
		return err
	}

	_, err = c.activityStor.Signup(activityName, email)
	c.metrics.ObserveSignup(err)
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: fmt.Sprintf("Signed up %s for %s", email, activityName)})
}

func (c *ActivitiesController) Unregister(ctx echo.Context) error {
	activityName, email, err := c.signupParams(ctx)
	if err != nil {
		return err
	}

	_, err = c.activityStor.Unregister(activityName, email)
	c.metrics.ObserveUnregister(err)
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: fmt.Sprintf("Unregistered %s from %s", email, activityName)})
}

func (c *ActivitiesController) FindParticipant(ctx echo.Context) error {
	email, err := pathParam(ctx, "email")
	if err != nil || !govalidator.IsEmail(email) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid email address")
	}

	activityName, err := c.activityStor.FindActivityForParticipant(email)
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(http.StatusOK, ParticipantResponse{Email: email, Activity: activityName})
}

// signupParams reads the activity name and email. An unknown activity is
// reported before a missing or malformed email.
func (c *ActivitiesController) signupParams(ctx echo.Context) (activityName, email string, err error) {
	if activityName, err = activityNameParam(ctx); err != nil {
		return "", "", err
	}

	email = emailParam(ctx)
	if email != "" && govalidator.IsEmail(email) {
		return activityName, email, nil
	}

	if _, err := c.activityStor.GetActivityByName(activityName); err != nil {
		return "", "", toHTTPError(err)
	}

	if email == "" {
		return "", "", echo.NewHTTPError(http.StatusUnprocessableEntity, "The email query parameter is required")
	}

	return "", "", echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("'%s' is not a valid email address", email))
}

// emailParam returns the email query parameter. Query decoding turns an
// unescaped '+' into a space; an address never contains a bare space, so it
// is turned back.
func emailParam(ctx echo.Context) string {
	return strings.ReplaceAll(strings.TrimSpace(ctx.QueryParam("email")), " ", "+")
}

// activityNameParam returns the activity name exactly as the client sent it,
// spaces included.
func activityNameParam(ctx echo.Context) (string, error) {
	name, err := pathParam(ctx, "activity_name")
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Malformed activity name")
	}

	return name, nil
}

// pathParam decodes a route param. echo only leaves params escaped when it
// routed on the request's RawPath.
func pathParam(ctx echo.Context, name string) (string, error) {
	if ctx.Request().URL.RawPath == "" {
		return ctx.Param(name), nil
	}

	return url.PathUnescape(ctx.Param(name))
}
