// ABOUTME: HTTP gateway for the CRM backend with cookie-session credentials
// ABOUTME: Resolves the base URL, decodes JSON bodies and turns failures into notices and APIErrors
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/harperreed/crmtui/logging"
)

const (
	// ProductionURL is the hosted CRM API.
	ProductionURL = "https://crmapi.editedgemultimedia.com"

	// DevelopmentURL is the local backend origin.
	DevelopmentURL = "http://localhost:3000"

	// DefaultBaseURL is used when no base URL option is given.
	DefaultBaseURL = ProductionURL

	// RequestIDHeader carries a per-request id for backend log correlation.
	RequestIDHeader = "X-Request-ID"
)

// Client issues requests against the CRM backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	notifier   Notifier
	logger     *log.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL sets the backend origin. A trailing slash is dropped.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client. Its Jar is used for the session unless
// WithCookieJar is also given.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		jar := c.httpClient.Jar
		c.httpClient = client
		if c.httpClient.Jar == nil {
			c.httpClient.Jar = jar
		}
	}
}

// WithCookieJar sets the jar carrying the session cookie.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.httpClient.Jar = jar
	}
}

// WithTimeout sets a client-wide timeout. Zero, the default, means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithNotifier sets where failure notices go.
func WithNotifier(n Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = logging.OrDiscard(l)
	}
}

// NewJar returns an in-memory cookie jar with public suffix rules.
func NewJar() http.CookieJar {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		// cookiejar.New has no failing path today.
		panic(err)
	}
	return jar
}

// NewClient creates a new gateway with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Jar: NewJar(),
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		notifier: discardNotifier{},
		logger:   logging.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL resolves a relative API path against the base URL.
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Jar returns the session cookie jar.
func (c *Client) Jar() http.CookieJar {
	return c.httpClient.Jar
}

// Notifier returns the notifier failures are reported to.
func (c *Client) Notifier() Notifier {
	return c.notifier
}

// request describes a single call. probe marks calls where a 401 is an answer rather than a
// failure, e.g. the session check and login.
type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	out         any
	probe       bool
}

// Do sends body as JSON (when non-nil) and decodes a 2xx response into out (when non-nil).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	req := request{method: method, path: path, out: out}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return NewAPIError(operation(method, path), 0, fmt.Errorf("failed to encode body: %w", err))
		}
		req.body = bytes.NewReader(data)
		req.contentType = "application/json"
	}
	return c.send(ctx, req)
}

// Get is shorthand for Do with GET.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post is shorthand for Do with POST.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put is shorthand for Do with PUT.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete is shorthand for Do with DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

func operation(method, path string) string {
	return method + " " + path
}

func (c *Client) send(ctx context.Context, r request) error {
	op := operation(r.method, r.path)
	requestID := uuid.NewString()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, r.method, c.URL(r.path), r.body)
	if err != nil {
		return NewAPIError(op, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cause := ErrNetwork
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			cause = ErrTimeout
		}
		c.logger.Warn("request failed", "op", op, "request_id", requestID, "err", err)
		apiErr := NewAPIError(op, 0, cause)
		apiErr.Message = err.Error()
		c.fail(ctx, r, apiErr)
		return apiErr
	}
	defer resp.Body.Close()

	c.logger.Debug("request", "op", op, "status", resp.StatusCode, "request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := NewAPIError(op, resp.StatusCode, sentinelForStatus(resp.StatusCode))
		apiErr.Message = readMessage(resp.Body)
		c.fail(ctx, r, apiErr)
		return apiErr
	}

	if r.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		apiErr := NewAPIError(op, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
		c.fail(ctx, r, apiErr)
		return apiErr
	}
	return nil
}

// fail raises the notice for a failed call. Probes stay silent on 401 because the caller
// handles "not logged in" itself.
func (c *Client) fail(ctx context.Context, r request, apiErr *APIError) {
	if apiErr.StatusCode == http.StatusUnauthorized {
		if r.probe {
			return
		}
		c.notifier.Notify(Notice{Kind: NoticeSessionExpired, Title: "Error", Message: MessageSessionExpired})
		return
	}
	if isQuiet(ctx) {
		return
	}
	c.notifier.Notify(Notice{Kind: NoticeError, Title: "Error", Message: MessageLoadFailed})
}

func readMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}
	return ""
}
