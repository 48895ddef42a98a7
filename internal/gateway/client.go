package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultRetryBudget  = 2
	defaultBackoff      = time.Second
	defaultMaxBodyBytes = 10 << 20
)

type Options struct {
	Timeout      time.Duration
	RetryBudget  int
	Backoff      time.Duration
	MaxBodyBytes int64
}

// Client performs gateway calls with a per-attempt timeout, a bounded
// retry loop and a body-size ceiling. It knows nothing about envelopes
// or business meaning; adapters layer that on top.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	retries int
	backoff time.Duration
	maxBody int64

	// sleep is swapped out in tests to observe backoff delays.
	sleep func(time.Duration)
}

func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryBudget < 0 {
		opts.RetryBudget = defaultRetryBudget
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Client{
		base:    baseURL,
		http:    &http.Client{},
		timeout: opts.Timeout,
		retries: opts.RetryBudget,
		backoff: opts.Backoff,
		maxBody: opts.MaxBodyBytes,
		sleep:   time.Sleep,
	}
}

type bearerKey struct{}

// WithBearer returns a context carrying the caller's access token. Do
// attaches it to every attempt as an Authorization header; an empty
// token leaves the context untouched.
func WithBearer(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, bearerKey{}, token)
}

func bearerFrom(ctx context.Context) string {
	tok, _ := ctx.Value(bearerKey{}).(string)
	return tok
}

// Do issues one logical request. Server-class responses (>= 500) and
// network-level failures are retried up to the retry budget with a
// constant backoff between attempts; client-class responses (400-499)
// are returned as-is without retrying. The returned bytes are the raw
// body, size-capped but not yet decoded.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, int, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, 0, WrapError(KindDecode, 0, "failed to encode request body", err)
		}
	}

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var lastErr error
	var lastStatus int
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.sleep(c.backoff)
		}

		raw, status, err := c.attempt(ctx, method, u, payload)
		if err != nil {
			var os *oversizeSignal
			if errors.As(err, &os) {
				// oversize is final, never worth a retry
				return nil, status, NewError(KindOversize, status, os.Error())
			}
			// network failure or timeout abort
			lastErr = err
			lastStatus = 0
			continue
		}
		if status < 500 {
			return raw, status, nil
		}
		lastErr = fmt.Errorf("server returned %d", status)
		lastStatus = status
	}
	return nil, lastStatus, WrapError(KindTransport, lastStatus, "retries exhausted", lastErr)
}

func (c *Client) attempt(ctx context.Context, method, u string, payload []byte) ([]byte, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, u, rd)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if tok := bearerFrom(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		// drain so the connection can be reused before the retry
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode, nil
	}

	if resp.ContentLength > c.maxBody {
		return nil, resp.StatusCode, &oversizeSignal{declared: resp.ContentLength}
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if int64(len(raw)) > c.maxBody {
		return nil, resp.StatusCode, &oversizeSignal{declared: int64(len(raw))}
	}
	return raw, resp.StatusCode, nil
}

// oversizeSignal escapes the retry loop without consuming retry budget.
type oversizeSignal struct{ declared int64 }

func (o *oversizeSignal) Error() string {
	return fmt.Sprintf("body of %d bytes exceeds ceiling", o.declared)
}

// DecodeJSON applies the size ceiling, repairs the text encoding and
// syntax-checks the body. Oversize bodies are rejected before any JSON
// work happens. Byte-order marks and malformed UTF-8 sequences are
// tolerated rather than raised: the decoder strips the BOM and replaces
// bad sequences with U+FFFD.
func DecodeJSON(raw []byte, maxBytes int64) (json.RawMessage, error) {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}
	if int64(len(raw)) > maxBytes {
		return nil, NewError(KindOversize, 0, fmt.Sprintf("payload of %d bytes exceeds %d byte ceiling", len(raw), maxBytes))
	}
	clean, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), raw)
	if err != nil {
		// the UTF8 decoder substitutes rather than fails; treat any
		// residual transform error as a decode failure
		return nil, WrapError(KindDecode, 0, "failed to repair text encoding", err)
	}
	if !json.Valid(clean) {
		return nil, NewError(KindDecode, 0, "response is not valid JSON")
	}
	return clean, nil
}

// GetJSON is Do followed by DecodeJSON; the common read-path shape.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values) (json.RawMessage, int, error) {
	return c.roundTrip(ctx, http.MethodGet, path, query, nil)
}

// PostJSON sends a JSON body and decodes the JSON reply.
func (c *Client) PostJSON(ctx context.Context, path string, body any) (json.RawMessage, int, error) {
	return c.roundTrip(ctx, http.MethodPost, path, nil, body)
}

// PutJSON sends a JSON body and decodes the JSON reply.
func (c *Client) PutJSON(ctx context.Context, path string, body any) (json.RawMessage, int, error) {
	return c.roundTrip(ctx, http.MethodPut, path, nil, body)
}

// DeleteJSON issues a DELETE and decodes the JSON reply.
func (c *Client) DeleteJSON(ctx context.Context, path string, query url.Values) (json.RawMessage, int, error) {
	return c.roundTrip(ctx, http.MethodDelete, path, query, nil)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, int, error) {
	raw, status, err := c.Do(ctx, method, path, query, body)
	if err != nil {
		return nil, status, err
	}
	decoded, err := DecodeJSON(raw, c.maxBody)
	if err != nil {
		return nil, status, err
	}
	return decoded, status, nil
}
