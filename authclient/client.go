package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/monerokon/xmrpos-login/logutil"
	"github.com/monerokon/xmrpos-login/urlutil"
)

// LoginPath is the POS login endpoint relative to the instance URL.
const LoginPath = "auth/login-pos"

const (
	// DefaultTimeout bounds a single login request.
	DefaultTimeout = 15 * time.Second
	// DefaultMaxResponseSize caps how much of a response body is read.
	DefaultMaxResponseSize = 1 << 20
	// maxMessageLength caps a plain-text error message shown to the operator.
	maxMessageLength = 256
)

// Options configures a Client. Zero durations, sizes and strings take the
// values from DefaultOptions; a zero RateLimit or BreakerFailures disables
// that guard.
type Options struct {
	// Timeout bounds each HTTP request.
	Timeout time.Duration
	// RateLimit is the sustained number of login calls per second. Zero or
	// negative disables limiting.
	RateLimit float64
	// RateBurst is the number of calls allowed at once.
	RateBurst int
	// BreakerFailures is the number of consecutive instance failures that
	// open the breaker. Zero disables the breaker.
	BreakerFailures uint32
	// BreakerTimeout is how long an open breaker stays open.
	BreakerTimeout time.Duration
	// MaxResponseSize caps the response body read.
	MaxResponseSize int64
	// UserAgent is sent with every request.
	UserAgent string
	// HTTPClient overrides the HTTP client. Its Timeout is left untouched.
	HTTPClient *http.Client
	// Logger receives request logs. Defaults to the "authclient" component.
	Logger *logutil.ComponentLogger
}

// DefaultOptions returns the options used for zero fields.
func DefaultOptions() Options {
	return Options{
		Timeout:         DefaultTimeout,
		RateLimit:       1,
		RateBurst:       3,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
		MaxResponseSize: DefaultMaxResponseSize,
		UserAgent:       "xmrpos-login",
	}
}

// Client logs POS devices into XMRpos backend instances.
type Client struct {
	opts       Options
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logutil.ComponentLogger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// New creates a Client.
func New(opts Options) *Client {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = def.RateBurst
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = def.BreakerTimeout
	}
	if opts.MaxResponseSize <= 0 {
		opts.MaxResponseSize = def.MaxResponseSize
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst)
	}

	log := opts.Logger
	if log == nil {
		log = logutil.NewLogger("authclient")
	}

	return &Client{
		opts:       opts,
		httpClient: httpClient,
		limiter:    limiter,
		log:        log,
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Login exchanges POS credentials for a Session. It issues exactly one HTTP
// request and never retries.
func (c *Client) Login(ctx context.Context, instanceURL urlutil.NormalizedURL, vendorID int, username, password string) (*Session, error) {
	start := time.Now()
	log := c.log.WithInstance(instanceURL.Host()).WithOperation("login")

	session, err := c.login(ctx, instanceURL, vendorID, username, password)

	outcome := outcomeFor(err)
	recordLogin(outcome, time.Since(start))
	if err != nil {
		log.LogError("login failed", err)
		return nil, err
	}

	log.Info("login succeeded", "session", session, "duration", time.Since(start))
	return session, nil
}

func (c *Client) login(ctx context.Context, instanceURL urlutil.NormalizedURL, vendorID int, username, password string) (*Session, error) {
	endpoint, err := instanceURL.JoinPath(LoginPath)
	if err != nil {
		return nil, oops.Code(CodeTransport).Wrapf(err, "Instance URL is invalid")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, oops.Code(CodeThrottled).
				With("instance", instanceURL.Host()).
				With("cause", err.Error()).
				Errorf(MsgThrottled)
		}
	}

	send := func() (interface{}, error) {
		return c.send(ctx, endpoint, vendorID, username, password)
	}

	breaker := c.breakerFor(instanceURL.Host())
	var out interface{}
	if breaker != nil {
		out, err = breaker.Execute(send)
	} else {
		out, err = send()
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, oops.Code(CodeUnavailable).
			With("instance", instanceURL.Host()).
			With("breaker", err.Error()).
			Errorf(MsgUnavailable)
	}
	if err != nil {
		return nil, err
	}

	tokens, ok := out.(*tokenResponse)
	if !ok {
		return nil, oops.Code(CodeDecode).Errorf(MsgBadResponse)
	}

	return &Session{
		InstanceURL:  instanceURL,
		VendorID:     vendorID,
		Username:     username,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		IssuedAt:     time.Now(),
	}, nil
}

// send performs the HTTP round trip and classifies the response.
func (c *Client) send(ctx context.Context, endpoint string, vendorID int, username, password string) (*tokenResponse, error) {
	body, err := json.Marshal(loginRequest{VendorID: vendorID, Name: username, Password: password})
	if err != nil {
		return nil, oops.Code(CodeTransport).Wrapf(err, "failed to encode login request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, oops.Code(CodeTransport).Wrapf(err, "failed to create login request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, oops.Code(CodeTransport).
			With("endpoint", endpoint).
			Wrapf(err, "Could not reach instance")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxResponseSize+1))
	if err != nil {
		return nil, oops.Code(CodeTransport).
			With("endpoint", endpoint).
			With("status", resp.StatusCode).
			Wrapf(err, "failed to read login response")
	}
	if int64(len(data)) > c.opts.MaxResponseSize {
		return nil, oops.Code(CodeDecode).
			With("endpoint", endpoint).
			With("limit", c.opts.MaxResponseSize).
			Errorf("login response exceeds maximum size of %d bytes", c.opts.MaxResponseSize)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		code := CodeRejected
		if resp.StatusCode >= 500 {
			code = CodeServer
		}
		return nil, oops.Code(code).
			With("endpoint", endpoint).
			With("status", resp.StatusCode).
			Errorf("%s", extractMessage(data))
	}

	var tokens tokenResponse
	if err := json.Unmarshal(data, &tokens); err != nil || tokens.AccessToken == "" {
		return nil, oops.Code(CodeDecode).
			With("endpoint", endpoint).
			With("status", resp.StatusCode).
			Errorf(MsgBadResponse)
	}

	return &tokens, nil
}

// extractMessage pulls an operator-facing message out of an error body. The
// backend answers either with JSON carrying "message" or "error", or with a
// plain-text body. HTML error pages from proxies yield "".
func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "{") {
		var resp errorResponse
		if err := json.Unmarshal([]byte(trimmed), &resp); err == nil {
			if msg := strings.TrimSpace(resp.Message); msg != "" {
				return msg
			}
			return strings.TrimSpace(resp.Error)
		}
	}

	if strings.HasPrefix(trimmed, "<") {
		return ""
	}

	if len(trimmed) > maxMessageLength {
		trimmed = trimmed[:maxMessageLength]
	}
	return trimmed
}

// breakerFor returns the circuit breaker for an instance host, creating it on
// first use. Returns nil when breaking is disabled.
func (c *Client) breakerFor(host string) *gobreaker.CircuitBreaker {
	if c.opts.BreakerFailures == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if breaker, ok := c.breakers[host]; ok {
		return breaker
	}

	threshold := c.opts.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Timeout:     c.opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return !countsAsBreakerFailure(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			recordCircuitBreakerState(name, to)
			c.log.WithInstance(name).Warn("login circuit breaker state changed",
				"from", from.String(), "to", to.String())
		},
	})
	c.breakers[host] = breaker
	return breaker
}

// BreakerState reports the circuit breaker state for an instance host.
func (c *Client) BreakerState(host string) (gobreaker.State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	breaker, ok := c.breakers[host]
	if !ok {
		return gobreaker.StateClosed, false
	}
	return breaker.State(), true
}

// String describes the client configuration.
func (c *Client) String() string {
	return fmt.Sprintf("authclient(timeout=%s, rate=%g/s, breaker=%d)", c.opts.Timeout, c.opts.RateLimit, c.opts.BreakerFailures)
}
