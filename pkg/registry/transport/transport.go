// Package transport provides the retrying HTTP client shared by all registry requests.
// It wraps go-retryablehttp with exponential backoff and maps failures onto the registry error taxonomy.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultRetryMax is the number of retries after the first attempt.
	DefaultRetryMax = 3
	// DefaultTimeout bounds a single attempt, connection and body included.
	DefaultTimeout = 30 * time.Second
	// defaultRetryWaitMin is the first backoff interval.
	defaultRetryWaitMin = 500 * time.Millisecond
	// defaultRetryWaitMax caps the backoff interval.
	defaultRetryWaitMax = 8 * time.Second
)

// Client performs registry requests.
//
// A single Client is shared read-only by every concurrent check.
type Client struct {
	http      *retryablehttp.Client
	userAgent string
}

// Options configures a Client.
type Options struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
	UserAgent    string
}

// DefaultOptions returns the options used outside of tests.
func DefaultOptions(userAgent string) Options {
	return Options{
		RetryMax:     DefaultRetryMax,
		RetryWaitMin: defaultRetryWaitMin,
		RetryWaitMax: defaultRetryWaitMax,
		Timeout:      DefaultTimeout,
		UserAgent:    userAgent,
	}
}

// New creates a Client.
//
// Parameters:
//   - opts: Retry, backoff and timeout settings.
//
// Returns:
//   - *Client: Client ready for concurrent use.
func New(opts Options) *Client {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = opts.RetryWaitMin
	client.RetryWaitMax = opts.RetryWaitMax
	client.HTTPClient.Timeout = opts.Timeout
	client.Logger = leveledLogger{entry: logrus.WithField("component", "transport")}
	client.ErrorHandler = passthroughErrorHandler
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logrus.WithFields(logrus.Fields{
				"method":  req.Method,
				"url":     req.URL.String(),
				"attempt": attempt,
			}).Debug("Retrying registry request")
		}
	}

	return &Client{http: client, userAgent: opts.UserAgent}
}

// passthroughErrorHandler returns the last response and error once retries are exhausted,
// leaving status interpretation to the caller.
func passthroughErrorHandler(resp *http.Response, err error, _ int) (*http.Response, error) {
	return resp, err
}

// Do sends a request and returns the response for any status code.
//
// Parameters:
//   - ctx: Context bounding the request and its retries.
//   - method: HTTP method.
//   - url: Absolute request URL.
//   - header: Extra request headers, may be nil.
//
// Returns:
//   - *http.Response: The response; the caller closes its body.
//   - error: ErrTimeout or ErrConnectionFailed on transport failure.
func (c *Client) Do(
	ctx context.Context,
	method, url string,
	header http.Header,
) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrConnectionFailed, method, url, err)
	}

	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}

		return nil, classifyTransportError(method, url, err)
	}

	return resp, nil
}

// classifyTransportError maps a failed round trip onto the taxonomy.
func classifyTransportError(method, url string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s %s: %w", ErrTimeout, method, url, err)
	}

	return fmt.Errorf("%w: %s %s: %w", ErrConnectionFailed, method, url, err)
}

// CheckStatus maps an error status code onto the taxonomy.
//
// Parameters:
//   - resp: The response to inspect.
//   - tokenSent: Whether the request carried a bearer token, distinguishing rejected from required auth.
//
// Returns:
//   - error: nil for statuses below 400.
func CheckStatus(resp *http.Response, tokenSent bool) error {
	method, url := resp.Request.Method, resp.Request.URL.String()

	switch code := resp.StatusCode; {
	case code < http.StatusBadRequest:
		return nil
	case code == http.StatusUnauthorized && tokenSent:
		return fmt.Errorf("%w: %s %s", ErrAuthRejected, method, url)
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s %s", ErrAuthRequired, method, url)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, url)
	case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s %s: status %d", ErrRetriesExhausted, method, url, code)
	default:
		return fmt.Errorf("%w: %s %s: status %d", ErrUnexpectedStatus, method, url, code)
	}
}

// leveledLogger routes retryablehttp's logging through logrus at debug and trace level.
type leveledLogger struct {
	entry *logrus.Entry
}

func (l leveledLogger) Error(msg string, keysAndValues ...any) {
	l.entry.WithFields(toFields(keysAndValues)).Debug(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...any) {
	l.entry.WithFields(toFields(keysAndValues)).Debug(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...any) {
	l.entry.WithFields(toFields(keysAndValues)).Trace(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...any) {
	l.entry.WithFields(toFields(keysAndValues)).Trace(msg)
}

// toFields converts alternating keys and values into logrus fields.
func toFields(keysAndValues []any) logrus.Fields {
	fields := make(logrus.Fields, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}
