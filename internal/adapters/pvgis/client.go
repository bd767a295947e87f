// Package pvgis fetches monthly solar irradiance from the JRC PVGIS
// MRcalc service.
package pvgis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/samirrijal/solarsite/internal/core/domain"
	"github.com/samirrijal/solarsite/internal/pkg/metrics"
)

const upstreamName = "pvgis"

// DefaultBaseURL is the public MRcalc endpoint.
const DefaultBaseURL = "https://re.jrc.ec.europa.eu/api/MRcalc"

// decimalRe matches the monthly H(h)_m values in the basic text output;
// year and month columns are integers or names and never match.
var decimalRe = regexp.MustCompile(`\d+\.\d+`)

// Client implements ports.IrradianceSource against PVGIS.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	maxAttempts    int
	initialBackoff time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the MRcalc endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets the total attempts per cell and the first backoff delay.
func WithRetry(maxAttempts int, initial time.Duration) Option {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if initial > 0 {
			c.initialBackoff = initial
		}
	}
}

// New creates a PVGIS client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		httpClient:     &http.Client{Timeout: 20 * time.Second},
		maxAttempts:    3,
		initialBackoff: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// statusError is a non-200 reply.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("pvgis returned status %d", e.code)
}

// MonthlyIrradiance returns the twelve monthly horizontal irradiation
// values for one year at c.
func (c *Client) MonthlyIrradiance(ctx context.Context, coord domain.Coordinate, year int) ([]float64, error) {
	reqURL := c.requestURL(coord, year)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0

	var policy backoff.BackOff = backoff.WithMaxRetries(b, uint64(c.maxAttempts-1))
	policy = backoff.WithContext(policy, ctx)

	attempt := 0
	return backoff.RetryWithData(func() ([]float64, error) {
		attempt++
		if attempt > 1 {
			metrics.UpstreamRetries.WithLabelValues(upstreamName).Inc()
		}
		values, err := c.fetch(ctx, reqURL)
		if err != nil && !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return values, err
	}, policy)
}

func (c *Client) requestURL(coord domain.Coordinate, year int) string {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("horirrad", "1")
	params.Set("startyear", strconv.Itoa(year))
	params.Set("endyear", strconv.Itoa(year))
	params.Set("outputformat", "basic")
	return c.baseURL + "?" + params.Encode()
}

func (c *Client) fetch(ctx context.Context, reqURL string) (values []float64, err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(upstreamName, start, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return ParseMonthly(body)
}

// ParseMonthly extracts the monthly values from a basic-format body.
// Anything other than exactly twelve values is an error.
func ParseMonthly(body []byte) ([]float64, error) {
	matches := decimalRe.FindAll(body, -1)
	if len(matches) != 12 {
		return nil, fmt.Errorf("expected 12 monthly values, found %d", len(matches))
	}
	values := make([]float64, 0, 12)
	for _, m := range matches {
		v, err := strconv.ParseFloat(string(m), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", m, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// retryable reports whether err is worth another attempt: throttling,
// server errors and network failures.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ne net.Error
	return errors.As(err, &ne)
}
