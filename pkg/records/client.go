package records

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/samvad-hq/recordkv/pkg/httpclient"
	"github.com/tidwall/gjson"
)

// Config describes the remote database a Client talks to.
type Config struct {
	Host   string
	Port   int
	Debug  bool
	Routes Routes
}

// Client issues create/fetch/update/delete calls against one remote database.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	endpoint string
	debug    bool
	routes   Routes
	http     httpclient.Client
	log      Logger
}

// New validates cfg and builds a Client. A nil transport falls back to a resty
// client without its own timeout.
func New(cfg Config, transport httpclient.Client, log Logger) (*Client, error) {
	endpoint, err := Endpoint(cfg.Host, cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("build endpoint: %w", err)
	}
	routes := cfg.Routes.withDefaults()
	if err := routes.validate(); err != nil {
		return nil, err
	}
	if transport == nil {
		transport = httpclient.NewRestyClient(0)
	}
	return &Client{
		endpoint: endpoint,
		debug:    cfg.Debug,
		routes:   routes,
		http:     transport,
		log:      ensureLogger(log),
	}, nil
}

// Endpoint returns the base URL of the remote database.
func (c *Client) Endpoint() string { return c.endpoint }

// Debug reports whether request/response tracing is enabled.
func (c *Client) Debug() bool { return c.debug }

// Create stores rec under a key chosen by the remote and returns that key.
func (c *Client) Create(ctx context.Context, rec Record) (string, error) {
	const op = "create"

	body, err := encodeEnvelope(rec)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	target := c.endpoint + c.routes.Create
	resp, err := c.roundTrip(ctx, op, http.MethodPost, target, body)
	if err != nil {
		return "", err
	}
	if !isSuccess(resp.StatusCode()) {
		return "", newStatusError(op, http.MethodPost, target, resp.StatusCode(), resp.Body())
	}

	key, err := decodeKey(resp.Body())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return key, nil
}

// Fetch returns the record stored under key. A 404 from the remote, or a null
// value, yields found=false with a nil error.
func (c *Client) Fetch(ctx context.Context, key string) (Record, bool, error) {
	const op = "fetch"

	target, err := c.keyedURL(c.routes.Fetch, key)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.roundTrip(ctx, op, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, false, nil
	}
	if !isSuccess(resp.StatusCode()) {
		return nil, false, newStatusError(op, http.MethodGet, target, resp.StatusCode(), resp.Body())
	}

	rec, found, err := decodeRecord(resp.Body())
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return rec, found, nil
}

// Update replaces the record stored under key.
func (c *Client) Update(ctx context.Context, key string, rec Record) error {
	const op = "update"

	target, err := c.keyedURL(c.routes.Update, key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	body, err := encodeEnvelope(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.roundTrip(ctx, op, http.MethodPatch, target, body)
	if err != nil {
		return err
	}
	if !isSuccess(resp.StatusCode()) {
		return newStatusError(op, http.MethodPatch, target, resp.StatusCode(), resp.Body())
	}
	return nil
}

// Delete removes the record stored under key. Deleting an unknown key fails
// with an error matching ErrNotFound.
func (c *Client) Delete(ctx context.Context, key string) error {
	const op = "delete"

	target, err := c.keyedURL(c.routes.Delete, key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.roundTrip(ctx, op, http.MethodDelete, target, nil)
	if err != nil {
		return err
	}
	if !isSuccess(resp.StatusCode()) {
		return newStatusError(op, http.MethodDelete, target, resp.StatusCode(), resp.Body())
	}
	return nil
}

func (c *Client) keyedURL(route, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrInvalidKey
	}
	return c.endpoint + strings.Replace(route, keyPlaceholder, url.PathEscape(key), 1), nil
}

func (c *Client) roundTrip(ctx context.Context, op, method, target string, body []byte) (httpclient.Response, error) {
	req := httpclient.Request{Method: method, URL: target}
	if body != nil {
		req.Body = body
		req.Headers = map[string]string{"Content-Type": "application/json"}
	}

	if c.debug {
		c.log.InfoObj("record request", "record_request", map[string]any{
			"op":     op,
			"method": method,
			"url":    target,
			"body":   string(body),
		})
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %s %s: %w: %w", op, method, target, ErrTransport, err)
	}

	if c.debug {
		c.log.InfoObj("record response", "record_response", map[string]any{
			"op":     op,
			"status": resp.StatusCode(),
			"body":   string(resp.Body()),
		})
	}
	return resp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// decodeKey extracts the generated key from a create response.
func decodeKey(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: invalid json", ErrMalformedResponse)
	}
	res := gjson.GetBytes(body, "key")
	switch res.Type {
	case gjson.String, gjson.Number:
		if key := res.String(); key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: missing key field", ErrMalformedResponse)
}

// decodeRecord unwraps the value envelope when present and falls back to the
// whole body otherwise.
func decodeRecord(body []byte) (Record, bool, error) {
	if !gjson.ValidBytes(body) {
		return nil, false, fmt.Errorf("%w: invalid json", ErrMalformedResponse)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, false, fmt.Errorf("%w: expected json object", ErrMalformedResponse)
	}

	raw := root
	if value := root.Get("value"); value.Exists() {
		if value.Type == gjson.Null {
			return nil, false, nil
		}
		if !value.IsObject() {
			return nil, false, fmt.Errorf("%w: value is not an object", ErrMalformedResponse)
		}
		raw = value
	}

	rec, err := decodeObject([]byte(raw.Raw))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return rec, true, nil
}
