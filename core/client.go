package core

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

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnavailable is returned for transport errors, timeouts, and
// non-success HTTP statuses. The client never retries; retry policy
// belongs to the caller, and only on the authentication path.
var ErrUnavailable = errors.New("core unavailable")

const (
	defaultTimeout    = 8 * time.Second
	defaultQueryPath  = "/core/query"
	defaultStatusPath = "/status"

	signedTokenTTL = time.Minute
)

// Config configures a [Client]. BaseURL is required; everything else has
// a default or is optional.
type Config struct {
	// BaseURL is the Core API base, e.g. https://api.synian.app.
	BaseURL string
	// APIKey, when set, is sent as a static bearer token.
	APIKey string
	// APISecret, when set, takes precedence over APIKey: each call carries
	// a short-lived HS256 bearer token signed with this secret.
	APISecret string
	// CompanyID is stamped into signed-token claims.
	CompanyID string
	// Timeout bounds one round trip. Defaults to 8 seconds.
	Timeout time.Duration
	// QueryPath and StatusPath override the Core endpoints; used by tests.
	QueryPath  string
	StatusPath string

	// HTTPClient overrides the underlying client; its Timeout is still
	// replaced by Timeout above.
	HTTPClient *http.Client
}

// Client performs one synchronous network round trip to Core per call.
// It holds no session state.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient validates cfg and returns a ready client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("core: base URL required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.QueryPath == "" {
		cfg.QueryPath = defaultQueryPath
	}
	if cfg.StatusPath == "" {
		cfg.StatusPath = defaultStatusPath
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	hc.Timeout = cfg.Timeout

	return &Client{cfg: cfg, http: hc}, nil
}

// Do posts one request to the Core query endpoint and decodes the result.
func (c *Client) Do(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(&req)
	if err != nil {
		return nil, fmt.Errorf("core: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+c.cfg.QueryPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("core: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if err := c.authorize(httpReq); err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: http status %d", ErrUnavailable, resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return &result, nil
}

// Status probes the Core status endpoint.
func (c *Client) Status(ctx context.Context) (*StatusResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+c.cfg.StatusPath, nil)
	if err != nil {
		return nil, fmt.Errorf("core: build request: %w", err)
	}
	if err := c.authorize(httpReq); err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: http status %d", ErrUnavailable, resp.StatusCode)
	}

	var status StatusResult
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return &status, nil
}

func (c *Client) authorize(req *http.Request) error {
	if c.cfg.APISecret != "" {
		now := time.Now()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"iss":       "synbridge",
			"companyId": c.cfg.CompanyID,
			"iat":       now.Unix(),
			"exp":       now.Add(signedTokenTTL).Unix(),
		})
		signed, err := token.SignedString([]byte(c.cfg.APISecret))
		if err != nil {
			return fmt.Errorf("core: sign token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+signed)
		return nil
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	return nil
}
