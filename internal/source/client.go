package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mr1hm/go-migrant-health/internal/models"
)

// Client reads collections from the remote health API. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Locations(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	if err := c.get(ctx, "/locations", "fetch locations", false, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (c *Client) Migrants(ctx context.Context) ([]models.Migrant, error) {
	var migrants []models.Migrant
	if err := c.get(ctx, "/migrants", "fetch migrants", false, &migrants); err != nil {
		return nil, err
	}
	return migrants, nil
}

func (c *Client) MigrantByPhone(ctx context.Context, phone string) (*models.Migrant, error) {
	var migrant models.Migrant
	if err := c.get(ctx, "/migrants/"+url.PathEscape(phone), "fetch migrant", true, &migrant); err != nil {
		return nil, err
	}
	return &migrant, nil
}

// get decodes a JSON body into out. A 404 is only NotFound for by-key
// lookups; on a collection endpoint it is a network failure like any
// other non-2xx.
func (c *Client) get(ctx context.Context, path, op string, byKey bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if byKey && resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("upstream request failed", "path", path, "status", resp.StatusCode)
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("status: %s", resp.Status)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("error decoding resp.Body: %w", err)}
	}
	return nil
}
