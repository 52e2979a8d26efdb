package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func requestWithQuery(t *testing.T, query string) *http.Request {
	t.Helper()
	return httptest.NewRequest(http.MethodGet, "/api/v1/packets?"+query, nil)
}

func TestParsePacketsQuery(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		from, to, limit, err := parsePacketsQuery(requestWithQuery(t, ""))
		if err != nil {
			t.Fatalf("parsePacketsQuery: %v", err)
		}
		if !from.IsZero() || !to.IsZero() {
			t.Errorf("from/to = %v/%v; want zero times", from, to)
		}
		if limit != 100 {
			t.Errorf("limit = %d; want 100", limit)
		}
	})

	t.Run("valid range and limit", func(t *testing.T) {
		from, to, limit, err := parsePacketsQuery(requestWithQuery(t,
			"from=2023-01-01T00:00:00Z&to=2023-01-02T00:00:00Z&limit=10"))
		if err != nil {
			t.Fatalf("parsePacketsQuery: %v", err)
		}
		wantFrom := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		if !from.Equal(wantFrom) {
			t.Errorf("from = %v; want %v", from, wantFrom)
		}
		if !to.Equal(wantFrom.Add(24 * time.Hour)) {
			t.Errorf("to = %v; want %v", to, wantFrom.Add(24*time.Hour))
		}
		if limit != 10 {
			t.Errorf("limit = %d; want 10", limit)
		}
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name  string
			query string
		}{
			{"bad from", "from=yesterday"},
			{"bad to", "to=tomorrow"},
			{"from after to", "from=2023-01-02T00:00:00Z&to=2023-01-01T00:00:00Z"},
			{"non-integer limit", "limit=ten"},
			{"zero limit", "limit=0"},
			{"negative limit", "limit=-5"},
			{"limit too large", "limit=1001"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, _, _, err := parsePacketsQuery(requestWithQuery(t, tt.query)); err == nil {
					t.Errorf("parsePacketsQuery(%q) = nil error; want error", tt.query)
				}
			})
		}
	})
}
