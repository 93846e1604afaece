package imagery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"spacezoom-desktop/internal/common"
	"spacezoom-desktop/internal/quality"
	"spacezoom-desktop/internal/ratelimit"
)

const (
	// NASA Image and Video Library search endpoint
	ImageSearchURL = "https://images-api.nasa.gov/search"

	// Astronomy Picture of the Day endpoint
	APODURL = "https://api.nasa.gov/planetary/apod"

	// DemoAPIKey is NASA's shared rate-limited key, used when none is configured
	DemoAPIKey = "DEMO_KEY"

	// User agent
	UserAgent = "SpaceZoom-Desktop/1.0"
)

// SearchResult is one image returned by the NASA library search
type SearchResult struct {
	GalleryImage
	DateCreated string `json:"dateCreated,omitempty"`
	Center      string `json:"center,omitempty"`
	Thumbnail   string `json:"thumbnail"`
}

// APOD is the Astronomy Picture of the Day
type APOD struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	URL         string `json:"url"`
	HDURL       string `json:"hdurl,omitempty"`
	MediaType   string `json:"media_type"`
	Copyright   string `json:"copyright,omitempty"`

	// DisplayDate is Date in long form, filled by the client
	DisplayDate string `json:"displayDate,omitempty"`
}

// IsImage reports whether the entry can be shown in the image viewer
func (a APOD) IsImage() bool {
	return a.MediaType == "image"
}

// ID is the viewer image ID of the entry
func (a APOD) ID() string {
	return "apod-" + a.Date
}

// Sources returns the standard image as the low tier and the HD image as the high tier
func (a APOD) Sources() quality.Sources {
	return quality.Sources{Low: a.URL, High: a.HDURL}
}

// Client talks to the public NASA APIs. Every call is a single request
// without retries.
type Client struct {
	httpClient *http.Client
	searchURL  string
	apodURL    string

	limiter *ratelimit.Handler

	mu     sync.RWMutex
	apiKey string
}

// NewClient creates a NASA API client with system proxy support
func NewClient(apiKey string) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}
	if apiKey == "" {
		apiKey = DemoAPIKey
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		searchURL: ImageSearchURL,
		apodURL:   APODURL,
		apiKey:    apiKey,
	}
}

// SetEndpoints overrides the upstream URLs
func (c *Client) SetEndpoints(searchURL, apodURL string) {
	if searchURL != "" {
		c.searchURL = searchURL
	}
	if apodURL != "" {
		c.apodURL = apodURL
	}
}

// SetRateLimiter reports every response to h
func (c *Client) SetRateLimiter(h *ratelimit.Handler) {
	c.limiter = h
}

// SetAPIKey replaces the api.nasa.gov key
func (c *Client) SetAPIKey(key string) {
	if key == "" {
		key = DemoAPIKey
	}
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
}

type searchResponse struct {
	Collection struct {
		Items []struct {
			Href  string       `json:"href"`
			Data  []searchData `json:"data"`
			Links []struct {
				Href   string `json:"href"`
				Rel    string `json:"rel"`
				Render string `json:"render"`
			} `json:"links"`
		} `json:"items"`
	} `json:"collection"`
}

type searchData struct {
	NasaID      string `json:"nasa_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DateCreated string `json:"date_created"`
	Center      string `json:"center"`
	MediaType   string `json:"media_type"`
}

// Search queries the NASA image library. At most limit results are
// returned in upstream order; limit <= 0 returns all.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("media_type", "image")

	var resp searchResponse
	if err := c.getJSON(ctx, common.ProviderNASAImages, c.searchURL+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("failed to search images: %w", err)
	}

	results := make([]SearchResult, 0, len(resp.Collection.Items))
	for _, item := range resp.Collection.Items {
		if len(item.Data) == 0 {
			continue
		}
		d := item.Data[0]
		if d.NasaID == "" || (d.MediaType != "" && d.MediaType != "image") {
			continue
		}
		r := SearchResult{
			GalleryImage: GalleryImage{
				ID:          d.NasaID,
				Title:       d.Title,
				Description: d.Description,
				Sources:     AssetSources(d.NasaID),
			},
			DateCreated: d.DateCreated,
			Center:      d.Center,
		}
		for _, l := range item.Links {
			if l.Rel == "preview" || l.Render == "image" {
				r.Thumbnail = l.Href
				break
			}
		}
		if r.Thumbnail == "" {
			r.Thumbnail = r.Sources.Low
		}
		results = append(results, r)
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results, nil
}

// APOD fetches the picture of the day. An empty date means today.
func (c *Client) APOD(ctx context.Context, date string) (*APOD, error) {
	c.mu.RLock()
	key := c.apiKey
	c.mu.RUnlock()

	q := url.Values{}
	q.Set("api_key", key)
	if date != "" {
		q.Set("date", date)
	}

	var apod APOD
	if err := c.getJSON(ctx, common.ProviderAPOD, c.apodURL+"?"+q.Encode(), &apod); err != nil {
		return nil, fmt.Errorf("failed to fetch APOD: %w", err)
	}
	apod.Copyright = strings.TrimSpace(apod.Copyright)
	apod.DisplayDate = common.FormatDisplay(apod.Date)
	return &apod, nil
}

func (c *Client) getJSON(ctx context.Context, provider, rawURL string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if c.limiter != nil && c.limiter.CheckResponse(provider, resp) {
		return fmt.Errorf("%s %w (HTTP %d)", common.DisplayNames[provider], ratelimit.ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed with status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
