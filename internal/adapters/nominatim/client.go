// Package nominatim reverse-geocodes coordinates with the OpenStreetMap
// Nominatim API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/samirrijal/solarsite/internal/core/domain"
	"github.com/samirrijal/solarsite/internal/pkg/metrics"
)

const upstreamName = "nominatim"

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "solarsite/1.0 (+https://github.com/samirrijal/solarsite)"
)

// Client implements ports.ReverseGeocoder.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the Nominatim host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithUserAgent sets the identifying User-Agent required by the
// Nominatim usage policy.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit sets the maximum requests per second. Zero or negative
// disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New creates a Nominatim client throttled to one request per second.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(1, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type reverseResponse struct {
	Lat     string          `json:"lat"`
	Lon     string          `json:"lon"`
	Error   string          `json:"error"`
	Address *domain.Address `json:"address"`
}

// Reverse returns the address of the place nearest to c together with
// the place's own coordinates.
func (c *Client) Reverse(ctx context.Context, coord domain.Coordinate) (addr domain.Address, at domain.Coordinate, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return addr, at, fmt.Errorf("%w: %v", domain.ErrSettlementLookupFailure, err)
	}

	start := time.Now()
	defer func() { metrics.ObserveUpstream(upstreamName, start, err) }()

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return addr, at, fmt.Errorf("%w: creating request: %v", domain.ErrSettlementLookupFailure, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return addr, at, fmt.Errorf("%w: %v", domain.ErrSettlementLookupFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return addr, at, fmt.Errorf("%w: status %d", domain.ErrSettlementLookupFailure, resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return addr, at, fmt.Errorf("%w: decoding response: %v", domain.ErrSettlementLookupFailure, err)
	}
	if body.Error != "" {
		return addr, at, fmt.Errorf("%w: %s", domain.ErrSettlementLookupFailure, body.Error)
	}
	if body.Address == nil {
		return addr, at, fmt.Errorf("%w: response has no address", domain.ErrSettlementLookupFailure)
	}

	lat, err := strconv.ParseFloat(body.Lat, 64)
	if err != nil {
		return addr, at, fmt.Errorf("%w: latitude %q", domain.ErrSettlementLookupFailure, body.Lat)
	}
	lon, err := strconv.ParseFloat(body.Lon, 64)
	if err != nil {
		return addr, at, fmt.Errorf("%w: longitude %q", domain.ErrSettlementLookupFailure, body.Lon)
	}

	return *body.Address, domain.Coordinate{Lat: lat, Lon: lon}, nil
}
