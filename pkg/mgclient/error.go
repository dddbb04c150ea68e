package mgclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

var ErrMGAPI = errors.New("activities api")

// ErrorResponse is the body the server sends for every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// APIError is returned for any non 2xx response. It wraps ErrMGAPI.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("(HTTP Status: %d)- %s", e.StatusCode, e.Detail)
}

func (e *APIError) Unwrap() error {
	return ErrMGAPI
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func ToErrorFromResponse(resp *resty.Response) error {
	var errorResponse ErrorResponse
	if err := json.Unmarshal(resp.Body(), &errorResponse); err != nil || errorResponse.Detail == "" {
		return &APIError{StatusCode: resp.StatusCode(), Detail: http.StatusText(resp.StatusCode())}
	}

	return &APIError{StatusCode: resp.StatusCode(), Detail: errorResponse.Detail}
}
