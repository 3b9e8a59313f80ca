package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/lazypower/pacing/internal/engine"
)

const (
	defaultServerURL = "http://127.0.0.1:37778"
	httpTimeout      = 5 * time.Second
)

// Client talks to a running pacing server.
type Client struct {
	http      *http.Client
	serverURL string
}

// New creates a client for serverURL.
func New(serverURL string) *Client {
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		serverURL: serverURL,
	}
}

// NewFromEnv respects PACING_URL and falls back to http://127.0.0.1:37778.
func NewFromEnv() *Client {
	u := os.Getenv("PACING_URL")
	if u == "" {
		u = defaultServerURL
	}
	return New(u)
}

// URL returns the server base URL.
func (c *Client) URL() string {
	return c.serverURL
}

func (c *Client) do(method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.serverURL+path, rd)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, data)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return nil
}

// Healthy checks if the server is reachable.
func (c *Client) Healthy() bool {
	resp, err := c.http.Get(c.serverURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Today returns the server's score for the current day.
func (c *Client) Today() (*engine.DayLoad, error) {
	var day engine.DayLoad
	if err := c.do(http.MethodGet, "/api/load/today", nil, &day); err != nil {
		return nil, err
	}
	return &day, nil
}

// Timeline returns scores for the YYYY-MM-DD days from..to inclusive.
func (c *Client) Timeline(from, to string) ([]engine.DayLoad, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	var body struct {
		Days []engine.DayLoad `json:"days"`
	}
	if err := c.do(http.MethodGet, "/api/load?"+q.Encode(), nil, &body); err != nil {
		return nil, err
	}
	return body.Days, nil
}

// Capacity returns the server's personalization.
func (c *Client) Capacity() (engine.CapacityInfo, error) {
	var info engine.CapacityInfo
	err := c.do(http.MethodGet, "/api/capacity", nil, &info)
	return info, err
}

// UpdateCapacity applies u on the server.
func (c *Client) UpdateCapacity(u engine.CapacityUpdate) (engine.CapacityInfo, error) {
	var info engine.CapacityInfo
	err := c.do(http.MethodPut, "/api/capacity", u, &info)
	return info, err
}

// StartCalibration begins a calibration run on the server.
func (c *Client) StartCalibration() (engine.CapacityInfo, error) {
	var info engine.CapacityInfo
	err := c.do(http.MethodPost, "/api/calibration/start", nil, &info)
	return info, err
}

// RecordGoodDay samples day (YYYY-MM-DD, empty for today).
func (c *Client) RecordGoodDay(day string) (engine.CapacityInfo, bool, error) {
	var res struct {
		Completed bool                `json:"completed"`
		Capacity  engine.CapacityInfo `json:"capacity"`
	}
	err := c.do(http.MethodPost, "/api/calibration/good-day", map[string]string{"day": day}, &res)
	return res.Capacity, res.Completed, err
}

// CancelCalibration discards the running calibration.
func (c *Client) CancelCalibration() (engine.CapacityInfo, error) {
	var info engine.CapacityInfo
	err := c.do(http.MethodPost, "/api/calibration/cancel", nil, &info)
	return info, err
}

// ResetBaseline clears the calibrated baseline.
func (c *Client) ResetBaseline() (engine.CapacityInfo, error) {
	var info engine.CapacityInfo
	err := c.do(http.MethodDelete, "/api/baseline", nil, &info)
	return info, err
}
