// Package transporttest provides a scripted Transport for tests.
package transporttest

import (
	"context"
	"errors"
	"io"
	"net/http"

	"acctdesk/internal/transport"
)

// ErrNetwork is what Fake returns when a call is scripted to fail at the network level.
var ErrNetwork = errors.New("network unreachable")

// Call records one request made through Fake.
type Call struct {
	Method   string
	Path     string
	Payload  any
	Field    string
	Filename string
	Data     []byte
}

// Fake answers every request with Status and Body, or with Err when set.
// OnSend, if set, runs before the answer is produced; tests use it to
// simulate gestures arriving while a request is outstanding.
type Fake struct {
	Status int
	Body   []byte
	Err    error
	OnSend func(Call)

	Calls []Call
}

var _ transport.Transport = (*Fake)(nil)

// OK returns a Fake that answers 200 with body.
func OK(body string) *Fake {
	return &Fake{Status: http.StatusOK, Body: []byte(body)}
}

// Failing returns a Fake that answers with status.
func Failing(status int) *Fake {
	return &Fake{Status: status}
}

func (f *Fake) Send(_ context.Context, method, path string, payload any) (*transport.Response, error) {
	return f.answer(Call{Method: method, Path: path, Payload: payload})
}

func (f *Fake) SendMultipart(_ context.Context, path, field, filename string, r io.Reader) (*transport.Response, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return f.answer(Call{Method: http.MethodPost, Path: path, Field: field, Filename: filename, Data: data})
}

func (f *Fake) answer(c Call) (*transport.Response, error) {
	f.Calls = append(f.Calls, c)
	if f.OnSend != nil {
		f.OnSend(c)
	}
	if f.Err != nil {
		return nil, f.Err
	}
	status := f.Status
	if status == 0 {
		status = http.StatusOK
	}
	return &transport.Response{Status: status, Header: http.Header{}, Body: f.Body}, nil
}
