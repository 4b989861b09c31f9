// Package transport sends account requests to the backend.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrStatus is returned by Check when the backend answered with a non-success status.
var ErrStatus = errors.New("unsuccessful response")

// Response is what the backend answered. Any HTTP status produces a Response;
// only network-level failures surface as errors.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if r == nil {
		return errors.New("nil response")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ErrorMessage extracts the backend's error_message field, if present.
func (r *Response) ErrorMessage() string {
	var body struct {
		Message string `json:"error_message"`
	}
	if r == nil || r.JSON(&body) != nil {
		return ""
	}
	return body.Message
}

// Transport is a single-attempt request channel to the backend.
type Transport interface {
	// Send issues method on path with payload encoded as JSON (nil means no body).
	Send(ctx context.Context, method, path string, payload any) (*Response, error)
	// SendMultipart posts the contents of r as a form file named field.
	SendMultipart(ctx context.Context, path, field, filename string, r io.Reader) (*Response, error)
}

// Check folds a transport failure and a non-success status into one error, so
// callers can treat both the same way.
func Check(resp *Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.OK() {
		status := 0
		if resp != nil {
			status = resp.Status
		}
		return fmt.Errorf("%w: status %d", ErrStatus, status)
	}
	return nil
}
