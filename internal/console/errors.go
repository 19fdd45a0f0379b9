package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")
)

// APIError is a non-2xx answer from the server. Message is the server's
// user-facing message and is what the notifier shows.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// UserMessage returns the text to show for err: the server's message for
// APIErrors, a generic line for everything else.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "request failed, please try again"
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	var body struct {
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(resp.Body()))
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
		msg = body.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}

	apiErr := &APIError{Status: resp.StatusCode(), Message: msg}
	switch {
	case resp.StatusCode() == http.StatusBadRequest:
		apiErr.kind = ErrBadRequest
	case resp.StatusCode() == http.StatusUnauthorized:
		apiErr.kind = ErrUnauthorized
	case resp.StatusCode() == http.StatusNotFound:
		apiErr.kind = ErrNotFound
	case resp.StatusCode() == http.StatusConflict:
		apiErr.kind = ErrConflict
	case resp.StatusCode() >= http.StatusInternalServerError:
		apiErr.kind = ErrInternalServerError
	default:
		apiErr.kind = fmt.Errorf("http %d", resp.StatusCode())
	}
	return apiErr
}
