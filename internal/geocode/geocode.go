// Package geocode queries the French national address API (BAN) for
// address autocompletion on the submission form.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// MinQueryLength is the shortest query worth sending upstream; the API
// itself rejects shorter ones.
const MinQueryLength = 3

const defaultLimit = 5

type Suggestion struct {
	Label     string  `json:"label"`
	City      string  `json:"city,omitempty"`
	Postcode  string  `json:"postcode,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

func NewClient(baseURL string) *Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 2
	c.HTTPClient.Timeout = 5 * time.Second
	c.Logger = nil
	return &Client{baseURL: baseURL, http: c}
}

// banResponse is the subset of the API's GeoJSON FeatureCollection we use.
type banResponse struct {
	Features []struct {
		Properties struct {
			Label    string `json:"label"`
			City     string `json:"city"`
			Postcode string `json:"postcode"`
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
	} `json:"features"`
}

// Search queries /search/ and maps the features to suggestions. Queries
// below the minimum length return an empty result without a network call.
func (c *Client) Search(ctx context.Context, q string, limit int) ([]Suggestion, error) {
	if len(q) < MinQueryLength {
		return []Suggestion{}, nil
	}
	if limit <= 0 || limit > 20 {
		limit = defaultLimit
	}

	u := c.baseURL + "/search/?q=" + url.QueryEscape(q) + "&limit=" + strconv.Itoa(limit)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("address search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("address search: unexpected status %d", resp.StatusCode)
	}

	var body banResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("address search: decode: %w", err)
	}

	out := make([]Suggestion, 0, len(body.Features))
	for _, f := range body.Features {
		s := Suggestion{
			Label:    f.Properties.Label,
			City:     f.Properties.City,
			Postcode: f.Properties.Postcode,
		}
		if len(f.Geometry.Coordinates) == 2 {
			s.Longitude = f.Geometry.Coordinates[0]
			s.Latitude = f.Geometry.Coordinates[1]
		}
		out = append(out, s)
	}
	return out, nil
}
