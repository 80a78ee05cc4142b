package modelfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// Client fetches engine payloads from the external model feed.
// Each sport engine asks for its own path; the feed owns the predictions.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	userAgent  string
}

// New creates a model feed client. timeout bounds a single HTTP exchange and
// is independent of the engine generate deadline.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "WizJockReportService/1.0",
	}
}

// FetchReport fetches the latest engine output for a sport
func (c *Client) FetchReport(ctx context.Context, sport models.Sport) (*models.EngineOutput, error) {
	url := fmt.Sprintf("%s/v1/sports/%s/report", c.baseURL, sport)

	var output models.EngineOutput
	if err := c.fetch(ctx, url, &output); err != nil {
		return nil, err
	}

	return &output, nil
}

// healthResponse is the feed's health payload
type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Ping checks that the feed can serve a sport
func (c *Client) Ping(ctx context.Context, sport models.Sport) error {
	url := fmt.Sprintf("%s/v1/sports/%s/health", c.baseURL, sport)

	var health healthResponse
	if err := c.fetch(ctx, url, &health); err != nil {
		return err
	}

	if health.Status != "ok" && health.Status != "healthy" {
		if health.Message != "" {
			return fmt.Errorf("model feed %s status %q: %s", sport, health.Status, health.Message)
		}
		return fmt.Errorf("model feed %s status %q", sport, health.Status)
	}

	return nil
}

// fetch makes an HTTP GET request and decodes the JSON body into out
func (c *Client) fetch(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("model feed error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
