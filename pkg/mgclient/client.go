package mgclient

import (
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mergington/activities/pkg/mgdb/mgmodel"
	"github.com/pkg/errors"
)

// Client talks to a running activities server.
type Client struct {
	client *resty.Client
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ParticipantResponse struct {
	Email    string `json:"email"`
	Activity string `json:"activity"`
}

func New(baseURL string) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Accept", "application/json"),
	}
}

func (c *Client) ListActivities() (map[string]mgmodel.Activity, error) {
	var activities map[string]mgmodel.Activity
	resp, err := c.client.R().SetResult(&activities).Get("/activities")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}

	return activities, nil
}

func (c *Client) GetActivity(name string) (*mgmodel.Activity, error) {
	var activity mgmodel.Activity
	resp, err := c.client.R().SetResult(&activity).Get(activityPath(name, ""))
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}

	activity.Name = name
	return &activity, nil
}

// Signup returns the server's confirmation message.
func (c *Client) Signup(activityName, email string) (string, error) {
	return c.post(activityPath(activityName, "signup"), email)
}

func (c *Client) Unregister(activityName, email string) (string, error) {
	return c.post(activityPath(activityName, "unregister"), email)
}

// FindParticipant returns the activity email is signed up for.
func (c *Client) FindParticipant(email string) (string, error) {
	var participant ParticipantResponse
	resp, err := c.client.R().SetResult(&participant).Get("/participants/" + url.PathEscape(email))
	if err := checkResponse(resp, err); err != nil {
		return "", err
	}

	return participant.Activity, nil
}

func (c *Client) post(path, email string) (string, error) {
	var msg MessageResponse
	resp, err := c.client.R().
		SetQueryParam("email", email).
		SetResult(&msg).
		Post(path)
	if err := checkResponse(resp, err); err != nil {
		return "", err
	}

	return msg.Message, nil
}

func activityPath(name, action string) string {
	p := "/activities/" + url.PathEscape(name)
	if action != "" {
		p += "/" + action
	}

	return p
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return errors.Wrap(err, "request failed")
	}

	if resp.IsError() {
		return ToErrorFromResponse(resp)
	}

	return nil
}
