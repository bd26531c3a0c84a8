package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/phonedir/contact-reports/internal/model"
	"github.com/phonedir/contact-reports/pkg/logger"
	"github.com/phonedir/contact-reports/pkg/prom"
	"github.com/valyala/fasthttp"
)

var (
	ErrStatsUnavailable = errors.New("stats endpoint unavailable")
)

type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
	MaxConns        int
	ReadBufferSize  int
	WriteBufferSize int
}

// StatsProvider answers location aggregation queries. It is the one
// collaborator the report pipeline talks to outside its own store.
type StatsProvider interface {
	GetLocationStats(ctx context.Context, location string) (*model.LocationStats, error)
}

// ContactClient queries the contact service's stats endpoint over HTTP.
type ContactClient struct {
	config *Config
	client *fasthttp.Client
}

func NewContactClient(config *Config) (*ContactClient, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 200 * time.Millisecond
	}

	client := &fasthttp.Client{
		MaxConnsPerHost:     config.MaxConns,
		ReadTimeout:         config.Timeout,
		WriteTimeout:        config.Timeout,
		MaxIdleConnDuration: 60 * time.Second,
		ReadBufferSize:      config.ReadBufferSize,
		WriteBufferSize:     config.WriteBufferSize,
	}

	logger.Info("Contact stats client initialized", "base_url", config.BaseURL, "timeout", config.Timeout)

	return &ContactClient{
		config: config,
		client: client,
	}, nil
}

// GetLocationStats fetches the person and phone number counts for a
// location. Failed attempts are retried with a fixed delay; the caller's
// context bounds the whole exchange.
func (c *ContactClient) GetLocationStats(ctx context.Context, location string) (*model.LocationStats, error) {
	path := "/api/v1/locations/stats?location=" + url.QueryEscape(location)

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		startTime := time.Now()
		response, err := c.doRequest(ctx, "GET", path, nil)
		elapsed := time.Since(startTime)

		if err != nil {
			prom.AddStatsRequestDuration(elapsed.Seconds(), "error")
			logger.Warn("Stats request failed, retrying", "error", err, "location", location, "attempt", attempt+1)
			lastErr = err
			continue
		}

		prom.AddStatsRequestDuration(elapsed.Seconds(), "success")

		var stats model.LocationStats
		if err := json.Unmarshal(response, &stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		if stats.Location == "" {
			stats.Location = location
		}

		logger.Debug("Stats fetched", "location", location, "person_count", stats.PersonCount, "phone_number_count", stats.PhoneNumberCount, "latency", elapsed)

		return &stats, nil
	}

	return nil, fmt.Errorf("%w: failed after %d attempts: %v", ErrStatsUnavailable, c.config.MaxRetries+1, lastErr)
}

func (c *ContactClient) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.config.BaseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")

	if body != nil {
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode != fasthttp.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", statusCode, resp.Body())
	}

	result := make([]byte, len(resp.Body()))
	copy(result, resp.Body())

	return result, nil
}
