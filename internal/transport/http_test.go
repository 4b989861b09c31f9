package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acctdesk/internal/logging"
)

func newTestHTTP(t *testing.T, h http.HandlerFunc) *HTTP {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	tr, err := NewHTTP(srv.URL+"/", time.Second, logging.Nop())
	require.NoError(t, err)
	return tr
}

func TestHTTP_SendJSON(t *testing.T) {
	tr := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/accounts/update", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(requestIDHeader))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(7), body["id"])
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	resp, err := tr.Send(context.Background(), http.MethodPatch, "/accounts/update", map[string]any{"id": 7})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.NoError(t, Check(resp, err))
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
}

func TestHTTP_NonSuccessIsAResponse(t *testing.T) {
	tr := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Type"), "nil payload sends no body")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error_message":"exists"}`))
	})

	resp, err := tr.Send(context.Background(), http.MethodDelete, "accounts/delete/3", nil)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, "exists", resp.ErrorMessage())
	assert.ErrorIs(t, Check(resp, err), ErrStatus)
}

func TestHTTP_NetworkFailureIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	tr, err := NewHTTP(srv.URL, time.Second, logging.Nop())
	require.NoError(t, err)

	resp, err := tr.Send(context.Background(), http.MethodGet, "/accounts", nil)
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Error(t, Check(resp, err))
	assert.False(t, errors.Is(Check(resp, err), ErrStatus))
}

func TestHTTP_SendMultipart(t *testing.T) {
	tr := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "accounts.txt", hdr.Filename)
		assert.Equal(t, "Name: Bob\n", string(data))
		assert.Equal(t, "acctdesk (Windows)", r.UserAgent())
		w.WriteHeader(http.StatusCreated)
	})
	tr.WithUserAgent("acctdesk (Windows)")

	resp, err := tr.SendMultipart(context.Background(), "/accounts/upload", "file", "accounts.txt", strings.NewReader("Name: Bob\n"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
}

func TestNewHTTP_RejectsBadURL(t *testing.T) {
	_, err := NewHTTP("ftp://example.com", time.Second, logging.Nop())
	assert.Error(t, err)
	_, err = NewHTTP("://bad", time.Second, logging.Nop())
	assert.Error(t, err)
}

func TestResponse_NilSafe(t *testing.T) {
	var r *Response
	assert.False(t, r.OK())
	assert.Empty(t, r.ErrorMessage())
	assert.Error(t, r.JSON(&struct{}{}))
}
