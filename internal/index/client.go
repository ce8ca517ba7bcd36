package index

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the Geode mod index REST API
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a mod index client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Mod is one entry of the mod index
type Mod struct {
	ID            string       `json:"id"`
	Featured      bool         `json:"featured"`
	DownloadCount int64        `json:"download_count"`
	Developers    []Developer  `json:"developers"`
	Versions      []ModVersion `json:"versions"`
}

// Developer is a mod index account credited on a mod
type Developer struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// ModVersion is one released version of a mod
type ModVersion struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	Description   string `json:"description"`
	DownloadCount int64  `json:"download_count"`
}

// DisplayName returns the mod's name from its latest version, falling back
// to the mod ID for index entries without versions.
func (m *Mod) DisplayName() string {
	if len(m.Versions) > 0 && m.Versions[0].Name != "" {
		return m.Versions[0].Name
	}
	return m.ID
}

// envelope is the index API response wrapper
type envelope struct {
	Error   string          `json:"error"`
	Payload json.RawMessage `json:"payload"`
}

// page is the paginated payload shape
type page struct {
	Data  []Mod `json:"data"`
	Count int64 `json:"count"`
}

// Search queries the index and returns up to limit matching mods
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Mod, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", fmt.Sprintf("%d", limit))

	var result page
	if err := c.get(ctx, "/v1/mods?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// GetMod fetches a single mod by its index ID
func (c *Client) GetMod(ctx context.Context, id string) (*Mod, error) {
	var mod Mod
	if err := c.get(ctx, "/v1/mods/"+url.PathEscape(id), &mod); err != nil {
		return nil, err
	}
	return &mod, nil
}

// PendingCount returns how many mods await index verification
func (c *Client) PendingCount(ctx context.Context) (int64, error) {
	var result page
	if err := c.get(ctx, "/v1/mods?status=pending&per_page=1", &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build index request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("index request failed: %w", err)
	}
	defer resp.Body.Close()

	var body envelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode index response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if body.Error != "" {
			return fmt.Errorf("index API returned status %d: %s", resp.StatusCode, body.Error)
		}
		return fmt.Errorf("index API returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body.Payload, out); err != nil {
		return fmt.Errorf("failed to decode index payload: %w", err)
	}
	return nil
}
