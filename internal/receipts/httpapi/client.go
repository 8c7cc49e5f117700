// Package httpapi talks to the receipt-parsing backend over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"payperless/internal/core"
	"payperless/internal/log"
	"payperless/internal/receipts"
)

const maxBodyBytes = 32 << 20

var _ receipts.Backend = (*Client)(nil)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("receipt backend unavailable")

// Config configures the backend client.
type Config struct {
	BaseURL            string
	Timeout            time.Duration
	BreakerFailures    uint32
	BreakerOpenTimeout time.Duration
	// OnStateChange is called after the breaker changes state.
	OnStateChange func(name string, to gobreaker.State)
	HTTPClient    *http.Client
	Logger        *log.Logger
}

type response struct {
	body        []byte
	contentType string
}

// Client implements receipts.Backend. Calls are not retried; repeated
// failures open the breaker and fail fast until it half-opens.
type Client struct {
	base    *url.URL
	timeout time.Duration
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[response]
	logger  *log.Logger
}

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid receipts API URL %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerOpenTimeout <= 0 {
		cfg.BreakerOpenTimeout = 30 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentUpstream)

	c := &Client{base: base, timeout: cfg.Timeout, http: hc, logger: logger}
	c.breaker = gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
		Name:        "receipts-backend",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, to)
			}
		},
	})
	return c, nil
}

// isSuccessful keeps client-side errors from tripping the breaker: a 404
// or a cancelled request says nothing about backend health.
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, receipts.ErrNotFound) || errors.Is(err, context.Canceled) {
		return true
	}
	var se *receipts.StatusError
	if errors.As(err, &se) {
		return !se.Temporary()
	}
	return false
}

// State exposes the breaker state.
func (c *Client) State() gobreaker.State { return c.breaker.State() }

// ListRaw fetches GET /receipts.
func (c *Client) ListRaw(ctx context.Context) ([]any, error) {
	resp, err := c.do(ctx, "list receipts", http.MethodGet, "/receipts", nil, "")
	if err != nil {
		return nil, err
	}
	return core.DecodeList(resp.body)
}

// GetRaw fetches GET /receipts/{id}.
func (c *Client) GetRaw(ctx context.Context, id string) (any, error) {
	resp, err := c.do(ctx, "get receipt", http.MethodGet, "/receipts/"+url.PathEscape(id), nil, "")
	if err != nil {
		return nil, err
	}
	return core.DecodeOne(resp.body)
}

// Image fetches GET /receipts/{id}/image.
func (c *Client) Image(ctx context.Context, id string) (receipts.Image, error) {
	resp, err := c.do(ctx, "receipt image", http.MethodGet, "/receipts/"+url.PathEscape(id)+"/image", nil, "")
	if err != nil {
		return receipts.Image{}, err
	}
	ct := resp.contentType
	if ct == "" {
		ct = http.DetectContentType(resp.body)
	}
	return receipts.Image{Data: resp.body, ContentType: ct}, nil
}

type uploadResponse struct {
	ID        json.RawMessage `json:"id"`
	Name      string          `json:"name"`
	Key       string          `json:"key"`
	Timestamp string          `json:"timestamp"`
}

// Upload posts a multipart form with the fields name and image.
func (c *Client) Upload(ctx context.Context, label, filename string, image io.Reader) (receipts.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("name", label); err != nil {
		return receipts.UploadResult{}, fmt.Errorf("build upload form: %w", err)
	}
	if filename == "" {
		filename = "receipt"
	}
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return receipts.UploadResult{}, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(fw, image); err != nil {
		return receipts.UploadResult{}, fmt.Errorf("read upload image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return receipts.UploadResult{}, fmt.Errorf("build upload form: %w", err)
	}

	resp, err := c.do(ctx, "upload receipt", http.MethodPost, "/receipts", buf.Bytes(), mw.FormDataContentType())
	if err != nil {
		return receipts.UploadResult{}, err
	}
	var ur uploadResponse
	if err := json.Unmarshal(resp.body, &ur); err != nil {
		return receipts.UploadResult{}, fmt.Errorf("decode upload response: %w", err)
	}
	out := receipts.UploadResult{
		ID:    strings.Trim(string(ur.ID), `"`),
		Label: ur.Name,
		Key:   ur.Key,
	}
	if out.Label == "" {
		out.Label = label
	}
	if ts, err := time.Parse(time.RFC3339Nano, ur.Timestamp); err == nil {
		out.Timestamp = ts
	} else if ts, err := time.Parse("2006-01-02T15:04:05.999999", ur.Timestamp); err == nil {
		out.Timestamp = ts
	} else {
		out.Timestamp = time.Now().UTC()
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, contentType string) (response, error) {
	resp, err := c.breaker.Execute(func() (response, error) {
		return c.roundTrip(ctx, op, method, path, body, contentType)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return response{}, fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	return resp, err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body []byte, contentType string) (response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rdr)
	if err != nil {
		return response{}, fmt.Errorf("%s: build request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json, image/*")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "backend request failed", log.FieldOperation, op, log.FieldError, err.Error())
		return response{}, fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return response{}, fmt.Errorf("%s: read body: %w", op, err)
	}
	c.logger.DebugContext(ctx, "backend request", log.FieldOperation, op,
		log.FieldStatusCode, res.StatusCode, log.FieldDuration, time.Since(start).Milliseconds())

	switch {
	case res.StatusCode == http.StatusNotFound:
		return response{}, fmt.Errorf("%s: %w", op, receipts.ErrNotFound)
	case res.StatusCode < 200 || res.StatusCode > 299:
		return response{}, &receipts.StatusError{Op: op, StatusCode: res.StatusCode, Body: snippet(data)}
	}
	return response{body: data, contentType: res.Header.Get("Content-Type")}, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
