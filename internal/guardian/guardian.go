package guardian

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client is a thin proxy for the Guardian content API. Results are passed
// through as-is; no normalization into the main article model happens here.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://content.guardianapis.com",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Item is one Guardian search result.
type Item struct {
	ID                 string `json:"id"`
	SectionID          string `json:"sectionId"`
	SectionName        string `json:"sectionName"`
	WebPublicationDate string `json:"webPublicationDate"`
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	Fields             struct {
		Thumbnail string `json:"thumbnail"`
		TrailText string `json:"trailText"`
	} `json:"fields"`
}

type searchResponse struct {
	Response struct {
		Status  string `json:"status"`
		Results []Item `json:"results"`
	} `json:"response"`
}

// Search fetches the latest Guardian items for a section.
func (c *Client) Search(ctx context.Context, section string) ([]Item, error) {
	q := url.Values{}
	q.Set("section", section)
	q.Set("show-fields", "thumbnail,trailText")
	q.Set("api-key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("guardian: unexpected status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("guardian: malformed payload: %w", err)
	}
	if payload.Response.Status != "ok" {
		return nil, fmt.Errorf("guardian: status %q", payload.Response.Status)
	}

	return payload.Response.Results, nil
}
