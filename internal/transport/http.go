package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"acctdesk/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// HTTP is the net/http backed Transport.
type HTTP struct {
	base      *url.URL
	client    *http.Client
	log       logging.Logger
	userAgent string
}

var _ Transport = (*HTTP)(nil)

// NewHTTP builds a transport rooted at baseURL. The timeout bounds every
// request; the core never cancels a submission itself.
func NewHTTP(baseURL string, timeout time.Duration, log logging.Logger) (*HTTP, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse server url: unsupported scheme %q", u.Scheme)
	}
	return &HTTP{
		base:      u,
		client:    &http.Client{Timeout: timeout},
		log:       log,
		userAgent: "acctdesk",
	}, nil
}

// WithUserAgent overrides the User-Agent header, which the backend uses to
// pick the export/upload text encoding.
func (h *HTTP) WithUserAgent(ua string) *HTTP {
	h.userAgent = ua
	return h
}

func (h *HTTP) Send(ctx context.Context, method, path string, payload any) (*Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, h.resolve(path), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return h.do(req)
}

func (h *HTTP) SendMultipart(ctx context.Context, path, field, filename string, r io.Reader) (*Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copy form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.resolve(path), &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return h.do(req)
}

func (h *HTTP) do(req *http.Request) (*Response, error) {
	id := uuid.NewString()
	req.Header.Set(requestIDHeader, id)
	req.Header.Set("User-Agent", h.userAgent)

	log := h.log.With("request_id", id, "method", req.Method, "path", req.URL.Path)
	started := time.Now()

	res, err := h.client.Do(req)
	if err != nil {
		log.Warn(req.Context(), "request failed", "err", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		log.Warn(req.Context(), "read response failed", "err", err)
		return nil, fmt.Errorf("read response: %w", err)
	}
	log.Debug(req.Context(), "request done", "status", res.StatusCode, "took", time.Since(started))
	return &Response{Status: res.StatusCode, Header: res.Header, Body: data}, nil
}

func (h *HTTP) resolve(path string) string {
	return h.base.String() + "/" + strings.TrimLeft(path, "/")
}
