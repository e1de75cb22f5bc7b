package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/curvectl/internal/infra/buildinfo"
)

// DefaultTimeout bounds a single RPC round trip.
const DefaultTimeout = 30 * time.Second

// ErrUnexpectedResult is returned when a call succeeds with a result of
// the wrong shape.
var ErrUnexpectedResult = errors.New("connection: unexpected RPC result")

// Observer is notified after every RPC call. result is "ok" or "error".
type Observer interface {
	RPCCall(method, result string)
}

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// HTTPClient is a JSON-RPC 2.0 client for one endpoint.
type HTTPClient struct {
	baseURL  string
	client   *http.Client
	limiter  *rate.Limiter
	observer Observer
	nextID   atomic.Uint64
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithRateLimit caps outgoing requests per second. Zero or less disables
// limiting.
func WithRateLimit(perSecond int) Option {
	return func(c *HTTPClient) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
		}
	}
}

// WithTLSConfig sets the TLS configuration used for https endpoints.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *HTTPClient) {
		if cfg == nil {
			return
		}
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = cfg
		c.client.Transport = tr
	}
}

// WithObserver reports every call to o.
func WithObserver(o Observer) Option {
	return func(c *HTTPClient) {
		c.observer = o
	}
}

// NewHTTPClient creates a client for endpoint. An endpoint without a
// scheme is treated as plain http.
func NewHTTPClient(endpoint string, opts ...Option) *HTTPClient {
	baseURL := endpoint
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &HTTPClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the endpoint URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// Call invokes method with params and decodes the result into result,
// which may be nil.
func (c *HTTPClient) Call(ctx context.Context, method string, params []any, result any) (err error) {
	defer func() {
		if c.observer != nil {
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			c.observer.RPCCall(method, outcome)
		}
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "curvectl/"+buildinfo.Version)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return parseResponse(resp, method, result)
}

func parseResponse(resp *http.Response, method string, target any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}

	var rr rpcResponse
	if err := json.Unmarshal(data, &rr); err != nil {
		if resp.StatusCode >= 400 {
			return fmt.Errorf("%s: request failed with status %d", method, resp.StatusCode)
		}
		return fmt.Errorf("%s: parse response: %w", method, err)
	}
	if rr.Error != nil {
		return rr.Error
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s: request failed with status %d", method, resp.StatusCode)
	}

	if target != nil {
		if err := json.Unmarshal(rr.Result, target); err != nil {
			return fmt.Errorf("%s: %w: %v", method, ErrUnexpectedResult, err)
		}
	}
	return nil
}

// GetHealth returns nil when the node reports "ok".
func (c *HTTPClient) GetHealth(ctx context.Context) error {
	var status string
	if err := c.Call(ctx, "getHealth", nil, &status); err != nil {
		return err
	}
	if status != "ok" {
		return fmt.Errorf("getHealth: node reports %q", status)
	}
	return nil
}

// AccountInfo is the decoded value of getAccountInfo.
type AccountInfo struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Executable bool     `json:"executable"`
	RentEpoch  uint64   `json:"rentEpoch"`
	Space      uint64   `json:"space"`
	Data       []string `json:"data"`
}

// GetAccountInfo fetches the account at address with base64 data. It
// returns nil and no error when the account does not exist.
func (c *HTTPClient) GetAccountInfo(ctx context.Context, address string) (*AccountInfo, error) {
	var res struct {
		Value *AccountInfo `json:"value"`
	}
	params := []any{address, map[string]string{"encoding": "base64"}}
	if err := c.Call(ctx, "getAccountInfo", params, &res); err != nil {
		return nil, err
	}
	return res.Value, nil
}
