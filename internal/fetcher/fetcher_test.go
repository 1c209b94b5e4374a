package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchReturnsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>snapshot</html>"))
	}))
	defer srv.Close()

	f := New(Config{Timeout: 2 * time.Second, MaxAttempts: 1}, zap.NewNop())
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "<html>snapshot</html>", body)
}

func TestFetchFollowsRedirects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/final", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("landed"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := New(Config{Timeout: 2 * time.Second, MaxAttempts: 1}, zap.NewNop())
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "landed", body)
}

func TestFetchNonSuccessStatusIsFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := New(Config{Timeout: time.Second, MaxAttempts: 2, BackoffBase: time.Millisecond}, zap.NewNop())
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	base := 40 * time.Millisecond
	f := New(Config{Timeout: time.Second, MaxAttempts: 4, BackoffBase: base}, zap.NewNop())

	start := time.Now()
	body, err := f.Fetch(context.Background(), srv.URL)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Equal(t, "recovered", body)
	require.EqualValues(t, 3, calls.Load())
	// Two failures mean waits of base*2^0 and base*2^1 before success.
	require.GreaterOrEqual(t, elapsed, 3*base, "cumulative backoff lower bound")
}

func TestFetchExhaustsAttempts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	f := New(Config{Timeout: time.Second, MaxAttempts: 3, BackoffBase: time.Millisecond}, zap.NewNop())
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	require.EqualValues(t, 3, calls.Load())
}

func TestFetchHonorsContextCancel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(Config{Timeout: time.Second, MaxAttempts: 5, BackoffBase: time.Hour}, zap.NewNop())
	start := time.Now()
	_, err := f.Fetch(ctx, srv.URL)
	require.Error(t, err)
	require.Less(t, time.Since(start), time.Second, "backoff sleep must exit on canceled context")
}

func TestBackoffPolicyDoubles(t *testing.T) {
	t.Parallel()

	p := BackoffPolicy{MaxAttempts: 4, Base: 100 * time.Millisecond}
	require.Equal(t, 100*time.Millisecond, p.Delay(0))
	require.Equal(t, 200*time.Millisecond, p.Delay(1))
	require.Equal(t, 400*time.Millisecond, p.Delay(2))
	require.Equal(t, 100*time.Millisecond, p.Delay(-1))
}
