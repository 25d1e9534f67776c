// Package youtube lists trending videos via the YouTube Data API v3
// mostPopular chart endpoint.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pramudya/trendcut/internal/types"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

type Adapter struct {
	apiKey  string
	baseURL string
	client  *http.Client

	// Source videos outside this duration band are filtered out; when the
	// filter empties the list, the unfiltered chart is returned instead so
	// a strict band never blanks a run.
	minSourceSec float64
	maxSourceSec float64
}

type Option func(*Adapter)

// WithBaseURL overrides the API endpoint, for tests.
func WithBaseURL(u string) Option { return func(a *Adapter) { a.baseURL = u } }

// WithDurationBand sets the acceptable source video duration range.
func WithDurationBand(minSec, maxSec float64) Option {
	return func(a *Adapter) {
		a.minSourceSec = minSec
		a.maxSourceSec = maxSec
	}
}

func New(apiKey string, opts ...Option) *Adapter {
	a := &Adapter{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		client:       &http.Client{Timeout: 30 * time.Second},
		minSourceSec: 60,
		maxSourceSec: 2400,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

type listResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// ListTrending fetches the mostPopular chart for a region/category. Some
// region/category pairs come back empty, so an empty result retries once
// without the category filter. All failures wrap as recoverable
// FetchErrors; retry policy belongs to the caller.
func (a *Adapter) ListTrending(ctx context.Context, region, category string, maxResults int) ([]types.Video, error) {
	resp, err := a.query(ctx, region, category, maxResults)
	if err != nil {
		return nil, &types.FetchError{Op: "list trending", Err: err}
	}
	if len(resp.Items) == 0 && category != "" {
		resp, err = a.query(ctx, region, "", maxResults)
		if err != nil {
			return nil, &types.FetchError{Op: "list trending", Err: err}
		}
	}

	var filtered, all []types.Video
	for _, item := range resp.Items {
		views, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
		v := types.Video{
			ID:          item.ID,
			Title:       item.Snippet.Title,
			Channel:     item.Snippet.ChannelTitle,
			Views:       views,
			DurationSec: float64(ParseISO8601Duration(item.ContentDetails.Duration)),
			PublishedAt: item.Snippet.PublishedAt,
		}
		all = append(all, v)
		if v.DurationSec >= a.minSourceSec && v.DurationSec <= a.maxSourceSec {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) > 0 {
		return filtered, nil
	}
	return all, nil
}

func (a *Adapter) query(ctx context.Context, region, category string, maxResults int) (*listResponse, error) {
	q := url.Values{}
	q.Set("part", "snippet,statistics,contentDetails")
	q.Set("chart", "mostPopular")
	q.Set("regionCode", region)
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("key", a.apiKey)
	if category != "" {
		q.Set("videoCategoryId", category)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/videos?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("youtube api status %d: %s", resp.StatusCode, string(body))
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &lr, nil
}
