package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/harvester/internal/model"
)

func TestFetch_ReturnsBody(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html><h1>Jazz Night</h1></html>"))
	}))
	defer srv.Close()

	f := New(Options{UserAgent: "TestBot/1.0", RatePerHost: 100, Burst: 10})
	html, err := f.Fetch(context.Background(), srv.URL, model.FetchConfig{})
	require.NoError(t, err)
	assert.Contains(t, html, "Jazz Night")
	assert.Equal(t, "TestBot/1.0", gotUA)
}

func TestFetch_ProfileUserAgentOverrides(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	f := New(Options{UserAgent: "TestBot/1.0", RatePerHost: 100, Burst: 10})
	_, err := f.Fetch(context.Background(), srv.URL, model.FetchConfig{UserAgent: "SourceBot/2.0"})
	require.NoError(t, err)
	assert.Equal(t, "SourceBot/2.0", gotUA)
}

func TestFetch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(Options{RatePerHost: 100, Burst: 10})
	_, err := f.Fetch(context.Background(), srv.URL, model.FetchConfig{})
	assert.ErrorContains(t, err, "status 500")
}

func TestFetch_BlockDetection(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		blocked string
	}{
		{"rate limited", http.StatusTooManyRequests, "", "rate_limited"},
		{"forbidden", http.StatusForbidden, "", "forbidden"},
		{"bot wall body", http.StatusOK, "<html>Checking your browser before accessing</html>", "bot_wall"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := New(Options{RatePerHost: 100, Burst: 10})
			_, err := f.Fetch(context.Background(), srv.URL, model.FetchConfig{})
			assert.ErrorContains(t, err, tt.blocked)
		})
	}
}

func TestFetch_ContextCancelled(t *testing.T) {
	f := New(Options{RatePerHost: 0.001, Burst: 1})
	ctx, cancel := context.WithCancel(context.Background())

	// Drain the burst token, then cancel so the rate wait aborts.
	_, _ = f.Fetch(ctx, "http://127.0.0.1:0/nope", model.FetchConfig{})
	cancel()
	_, err := f.Fetch(ctx, "http://127.0.0.1:0/nope", model.FetchConfig{})
	assert.Error(t, err)
}
