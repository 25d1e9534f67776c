package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pramudya/trendcut/internal/types"
)

func item(id, title, dur, views string) map[string]any {
	return map[string]any{
		"id": id,
		"snippet": map[string]any{
			"title":        title,
			"channelTitle": "ch",
			"publishedAt":  "2026-08-20T10:00:00Z",
		},
		"statistics":     map[string]any{"viewCount": views},
		"contentDetails": map[string]any{"duration": dur},
	}
}

func TestListTrending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("chart") != "mostPopular" || q.Get("key") != "test-key" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []any{
				item("a1", "first", "PT5M", "1000"),
				item("b2", "too short", "PT30S", "50"),
				item("c3", "third", "PT10M30S", "2000"),
			},
		})
	}))
	defer srv.Close()

	a := New("test-key", WithBaseURL(srv.URL), WithDurationBand(60, 2400))
	got, err := a.ListTrending(context.Background(), "ID", "24", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// 30s video filtered out by the duration band.
	if len(got) != 2 {
		t.Fatalf("expected 2 videos, got %d: %+v", len(got), got)
	}
	if got[0].ID != "a1" || got[0].DurationSec != 300 || got[0].Views != 1000 {
		t.Fatalf("unexpected first video: %+v", got[0])
	}
	if got[1].DurationSec != 630 {
		t.Fatalf("unexpected duration: %v", got[1].DurationSec)
	}
}

func TestListTrending_BandFilterFallsBackUnfiltered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []any{item("a1", "short", "PT20S", "10")},
		})
	}))
	defer srv.Close()

	a := New("k", WithBaseURL(srv.URL), WithDurationBand(60, 2400))
	got, err := a.ListTrending(context.Background(), "ID", "24", 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected unfiltered fallback, got %+v", got)
	}
}

func TestListTrending_EmptyCategoryRetriesWithoutFilter(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Query().Get("videoCategoryId"))
		if r.URL.Query().Get("videoCategoryId") != "" {
			_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []any{item("a1", "v", "PT2M", "7")},
		})
	}))
	defer srv.Close()

	a := New("k", WithBaseURL(srv.URL))
	got, err := a.ListTrending(context.Background(), "ID", "24", 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(calls) != 2 || calls[0] != "24" || calls[1] != "" {
		t.Fatalf("expected category retry, calls: %v", calls)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 video from retry, got %d", len(got))
	}
}

func TestListTrending_HTTPErrorIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	a := New("k", WithBaseURL(srv.URL))
	_, err := a.ListTrending(context.Background(), "ID", "", 5)
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %T: %v", err, err)
	}
}

func TestParseISO8601Duration(t *testing.T) {
	tests := map[string]int{
		"PT30S":     30,
		"PT5M":      300,
		"PT1H2M3S":  3723,
		"PT1H":      3600,
		"P1DT1M":    60, // date part ignored, only the time part counts
		"PT0S":      0,
		"":          0,
		"not-a-dur": 0,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := ParseISO8601Duration(in); got != want {
				t.Fatalf("ParseISO8601Duration(%q) = %d, want %d", in, got, want)
			}
		})
	}
}
