// Package catalog queries the Google Books volumes API and normalizes the
// response into BookRecord values.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// DefaultEndpoint is the public Google Books search endpoint.
	DefaultEndpoint = "https://www.googleapis.com/books/v1/volumes"

	// DefaultMaxResults bounds one search when the caller does not.
	DefaultMaxResults = 10
)

// BookRecord is one normalized catalog search result. Every field is
// optional upstream; missing values are substituted with defaults.
type BookRecord struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description"`
	AverageRating float64  `json:"averageRating"`
	RatingsCount  int      `json:"ratingsCount"`
	PublishedDate string   `json:"publishedDate"`
	Categories    []string `json:"categories"`
	Snippet       string   `json:"snippet"`
	InfoLink      string   `json:"infoLink"`
}

// RequestError wraps a failed catalog request. It is fatal for the run in
// which it occurs; there is no retry.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("catalog request %s failed: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Client issues search requests against a books catalog endpoint.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client

	sanitizer *bluemonday.Policy
}

func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Endpoint: endpoint,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// Snippets from the API carry inline HTML (<b> markers etc.);
		// strip everything before handing them to a UI.
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// volumesResponse mirrors the parts of the API response we read.
type volumesResponse struct {
	Items []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			Description   string   `json:"description"`
			AverageRating float64  `json:"averageRating"`
			RatingsCount  int      `json:"ratingsCount"`
			PublishedDate string   `json:"publishedDate"`
			Categories    []string `json:"categories"`
			InfoLink      string   `json:"infoLink"`
		} `json:"volumeInfo"`
		SearchInfo struct {
			TextSnippet string `json:"textSnippet"`
		} `json:"searchInfo"`
	} `json:"items"`
}

// Search fetches up to maxResults books for the given subject, ordered by
// relevance. An empty upstream result set yields an empty, non-nil slice.
func (c *Client) Search(ctx context.Context, subject string, maxResults int) ([]BookRecord, error) {
	if maxResults <= 0 || maxResults > DefaultMaxResults {
		maxResults = DefaultMaxResults
	}

	params := url.Values{}
	params.Set("q", "subject:"+subject)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("printType", "books")
	params.Set("orderBy", "relevance")
	reqURL := c.Endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &RequestError{URL: reqURL, Err: err}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &RequestError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{URL: reqURL, Err: fmt.Errorf("status code %d", resp.StatusCode)}
	}

	var body volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &RequestError{URL: reqURL, Err: fmt.Errorf("decoding response: %w", err)}
	}

	books := make([]BookRecord, 0, len(body.Items))
	for _, item := range body.Items {
		info := item.VolumeInfo

		rec := BookRecord{
			Title:         info.Title,
			Authors:       info.Authors,
			Description:   info.Description,
			AverageRating: info.AverageRating,
			RatingsCount:  info.RatingsCount,
			PublishedDate: info.PublishedDate,
			Categories:    info.Categories,
			Snippet:       c.sanitizer.Sanitize(item.SearchInfo.TextSnippet),
			InfoLink:      info.InfoLink,
		}
		if rec.Title == "" {
			rec.Title = "N/A"
		}
		if len(rec.Authors) == 0 {
			rec.Authors = []string{"N/A"}
		}
		if rec.Description == "" {
			rec.Description = "No summary found."
		}
		if len(rec.Categories) == 0 {
			rec.Categories = []string{}
		}
		if rec.Snippet == "" {
			rec.Snippet = "No review snippet found."
		}
		books = append(books, rec)
	}

	return books, nil
}
