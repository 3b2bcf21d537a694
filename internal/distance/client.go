package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"placebot/core/logger"

	"log/slog"
)

const (
	// NearbyThresholdMeters is the strict upper bound for a match.
	NearbyThresholdMeters = 500

	defaultTimeoutSeconds = 5

	elementStatusOK = "OK"
)

// Config holds distance-matrix service settings.
type Config struct {
	URL    string `yaml:"url" envconfig:"DISTANCEMATRIX_URL"`
	APIKey string `yaml:"api_key" envconfig:"DISTANCEMATRIX_API_KEY"`
	// TimeoutSeconds bounds a single request; 0 -> default (5).
	TimeoutSeconds int `yaml:"timeout_seconds" envconfig:"DISTANCEMATRIX_TIMEOUT_SECONDS"`
}

// Point is a geographic coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Client queries a distance-matrix web service to answer proximity
// questions. Every kind of failure degrades to "nothing nearby": one
// attempt, bounded by the configured timeout, and any transport error,
// non-200 status or unexpected response shape yields an empty result.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a distance-matrix client.
func NewClient(cfg Config) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// matrix response as returned by the service; only the fields the
// matcher reads are declared.
type matrixResponse struct {
	Rows []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int `json:"value"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// FindNearby returns the indices of destinations strictly closer than
// NearbyThresholdMeters to the origin, preserving input order.
func (c *Client) FindNearby(ctx context.Context, origin Point, destinations []Point) []int {
	if len(destinations) == 0 {
		return nil
	}

	start := time.Now()
	resp, err := c.query(ctx, origin, destinations)
	if err != nil {
		logger.LogEvent(ctx, logger.DIST, slog.LevelDebug, "matrix.query",
			slog.String("status", "fail"),
			slog.Int("destinations", len(destinations)),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return nil
	}

	if len(resp.Rows) == 0 {
		logger.LogEvent(ctx, logger.DIST, slog.LevelDebug, "matrix.query",
			slog.String("status", "fail"),
			slog.String("reason", "no_rows"),
			slog.Int("destinations", len(destinations)),
		)
		return nil
	}

	elements := resp.Rows[0].Elements
	if len(elements) > len(destinations) {
		elements = elements[:len(destinations)]
	}

	var matched []int
	statuses := make(map[string]int, 2)
	for idx, el := range elements {
		statuses[el.Status]++
		if el.Status == elementStatusOK && el.Distance.Value < NearbyThresholdMeters {
			matched = append(matched, idx)
		}
	}

	logger.LogEvent(ctx, logger.DIST, slog.LevelDebug, "matrix.query",
		slog.String("status", "ok"),
		slog.Int("destinations", len(destinations)),
		slog.Int("matched", len(matched)),
		slog.String("statuses", summarizeStatuses(statuses)),
		slog.Duration("duration", logger.Took(start)),
	)
	return matched
}

func (c *Client) query(ctx context.Context, origin Point, destinations []Point) (*matrixResponse, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse matrix url: %w", err)
	}
	params := u.Query()
	params.Set("origins", formatPoint(origin))
	params.Set("destinations", joinPoints(destinations))
	params.Set("key", c.cfg.APIKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("matrix request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("matrix status: %s", resp.Status)
	}

	var parsed matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}
	return &parsed, nil
}

func formatPoint(p Point) string {
	return strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}

func joinPoints(points []Point) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, formatPoint(p))
	}
	return strings.Join(parts, "|")
}

func summarizeStatuses(statuses map[string]int) string {
	parts := make([]string, 0, len(statuses))
	for status, n := range statuses {
		parts = append(parts, fmt.Sprintf("%s=%d", status, n))
	}
	return strings.Join(parts, ",")
}
