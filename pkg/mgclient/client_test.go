package mgclient

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mergington/activities/pkg/mgapi"
	"github.com/mergington/activities/pkg/mgdb/stor"
	"github.com/mergington/activities/pkg/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	activities, err := seed.Default()
	require.NoError(t, err)

	srv := httptest.NewServer(mgapi.NewServer(mgapi.RouteOpts{ActivityStor: stor.NewInMemoryActivityStor(activities)}))
	t.Cleanup(srv.Close)

	return New(srv.URL)
}

func TestClientSignupAndUnregister(t *testing.T) {
	c := newTestClient(t)
	email := "client@mergington.edu"

	msg, err := c.Signup("Chess Club", email)
	require.NoError(t, err)
	assert.Equal(t, "Signed up client@mergington.edu for Chess Club", msg)

	activity, err := c.GetActivity("Chess Club")
	require.NoError(t, err)
	assert.Contains(t, activity.Participants, email)

	name, err := c.FindParticipant(email)
	require.NoError(t, err)
	assert.Equal(t, "Chess Club", name)

	_, err = c.Signup("Drama Club", email)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Student is already signed up", apiErr.Detail)
	assert.True(t, errors.Is(err, ErrMGAPI))

	msg, err = c.Unregister("Chess Club", email)
	require.NoError(t, err)
	assert.Equal(t, "Unregistered client@mergington.edu from Chess Club", msg)

	_, err = c.FindParticipant(email)
	assert.True(t, IsNotFound(err))
}

func TestClientListActivities(t *testing.T) {
	c := newTestClient(t)

	activities, err := c.ListActivities()
	require.NoError(t, err)
	require.Contains(t, activities, "Programming Class")
	assert.NotEmpty(t, activities["Programming Class"].Participants)
	assert.Positive(t, activities["Programming Class"].MaxParticipants)
}

func TestClientUnknownActivity(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Signup("Nonexistent Activity", "test@mergington.edu")
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Activity not found")

	_, err = c.GetActivity("Nonexistent Activity")
	assert.True(t, IsNotFound(err))
}

func TestToErrorFromResponseWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListActivities()
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Detail)
}
