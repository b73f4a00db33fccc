package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nytevibe/nytevibe/internal/common"
	"github.com/sethvargo/go-retry"
)

// Client sends one JSON request to the REST API and returns the raw,
// un-normalized response. Any HTTP status is a successful exchange; only
// transport failures produce an error.
type Client interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Request describes a call relative to the API base URL.
type Request struct {
	Method string
	Path   string
	Body   any
	// Token, when set, is sent as a bearer credential.
	Token string
}

// Response is the decoded reply. Body is nil when the payload was empty or
// not a JSON object.
type Response struct {
	Status     int
	StatusLine string
	Header     http.Header
	Body       map[string]any
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// HTTPClient is the net/http implementation of Client.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	retries uint64
	backoff time.Duration
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithRetries retries GET requests up to n times on transport failure,
// with exponential backoff starting at base. Other methods are never
// retried.
func WithRetries(n uint64, base time.Duration) Option {
	return func(c *HTTPClient) {
		c.retries = n
		c.backoff = base
	}
}

// NewHTTPClient returns a client rooted at baseURL (e.g. https://host/api).
// A zero timeout leaves requests bounded only by their context.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *HTTPClient) Do(ctx context.Context, r Request) (*Response, error) {
	if r.Method != http.MethodGet || c.retries == 0 || c.backoff <= 0 {
		return c.do(ctx, r)
	}

	var out *Response
	b := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		resp, err := c.do(ctx, r)
		if errors.Is(err, ErrUnavailable) {
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		out = resp
		return nil
	})
	if err != nil && !errors.Is(err, ErrUnavailable) && !errors.Is(err, ErrCanceled) {
		return nil, c.mapError(err)
	}
	return out, err
}

func (c *HTTPClient) do(ctx context.Context, r Request) (*Response, error) {
	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.baseURL+"/"+strings.TrimLeft(r.Path, "/"), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+r.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.mapError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.mapError(err)
	}

	out := &Response{
		Status:     resp.StatusCode,
		StatusLine: resp.Status,
		Header:     resp.Header,
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		var decoded map[string]any
		if json.Unmarshal(raw, &decoded) == nil {
			out.Body = decoded
		}
	}
	return out, nil
}

func (c *HTTPClient) mapError(err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrCanceled, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
