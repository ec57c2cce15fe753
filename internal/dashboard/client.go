package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"solarweather/internal/models"

	"github.com/google/uuid"
)

const (
	snapshotPath         = "/dataajax/"
	requestIDHeader      = "X-Request-ID"
	defaultClientTimeout = 30 * time.Second
)

// Query selects the snapshot to fetch.
type Query struct {
	Dashboard string // "" for weather, "solar"
	History   bool
	Timestamp int64 // epoch seconds, history only
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Dashboard != "" {
		v.Set("dashboard", q.Dashboard)
	}
	if q.History {
		v.Set("history", "1")
		v.Set("timestamp", strconv.FormatInt(q.Timestamp, 10))
	}
	return v
}

// Source supplies dashboard snapshots.
type Source interface {
	Snapshot(ctx context.Context, q Query) (models.Snapshot, error)
}

// Client fetches snapshots from a SolarWeather server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient targets baseURL, e.g. "http://localhost:8080". A nil hc uses a
// client with a 30s timeout.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: defaultClientTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Snapshot performs GET /dataajax/ and decodes the body.
func (c *Client) Snapshot(ctx context.Context, q Query) (models.Snapshot, error) {
	u := c.baseURL + snapshotPath
	if v := q.values(); len(v) > 0 {
		u += "?" + v.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return nil, fmt.Errorf("fetch snapshot: status %d: %s", resp.StatusCode, body.Error)
	}

	var snap models.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
