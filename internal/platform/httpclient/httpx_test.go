package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"exposechain/internal/platform/errors"
	"exposechain/internal/platform/logx"
	"exposechain/internal/testutil"
)

func newTestClient(maxRetries int) *Client {
	return New(Config{
		Timeout:         2 * time.Second,
		MaxRetries:      maxRetries,
		RetryBackoff:    5 * time.Millisecond,
		MaxRetryBackoff: 20 * time.Millisecond,
	}, logx.NewSilent())
}

func TestClient_FetchJSON(t *testing.T) {
	t.Run("returns body on success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			testutil.AssertEqual(t, r.Header.Get("User-Agent"), "ExposeChain/1.0", "user agent header")
			w.Write([]byte(`{"status":"success"}`))
		}))
		defer srv.Close()

		body, err := newTestClient(1).FetchJSON(context.Background(), srv.URL)
		testutil.AssertNoError(t, err, "fetch should succeed")
		testutil.AssertContains(t, string(body), "success", "body content")
	})

	t.Run("maps 429 to upstream rate limit", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := newTestClient(0).FetchJSON(context.Background(), srv.URL)
		testutil.AssertError(t, err, "429 should fail")
	})

	t.Run("maps 404 to not found", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		_, err := newTestClient(0).FetchJSON(context.Background(), srv.URL)
		testutil.AssertTrue(t, errors.IsNotFound(err), "404 should map to ErrNotFound")
	})
}

func TestClient_Retries(t *testing.T) {
	t.Run("retries on 503 then succeeds", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		_, err := newTestClient(3).FetchJSON(context.Background(), srv.URL)
		testutil.AssertNoError(t, err, "should succeed after retries")
		testutil.AssertEqual(t, atomic.LoadInt32(&calls), int32(3), "two retries before success")
	})

	t.Run("does not retry on 400", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := newTestClient(3).FetchJSON(context.Background(), srv.URL)
		testutil.AssertError(t, err, "400 should fail")
		testutil.AssertEqual(t, atomic.LoadInt32(&calls), int32(1), "client errors are not retried")
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := newTestClient(2).Get(context.Background(), srv.URL, nil)
		testutil.AssertError(t, err, "persistent 503 should fail")
		testutil.AssertEqual(t, atomic.LoadInt32(&calls), int32(3), "initial attempt plus two retries")
	})
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		wantErr error
	}{
		{name: "200 ok", code: http.StatusOK, wantErr: nil},
		{name: "429 upstream rate limit", code: http.StatusTooManyRequests, wantErr: errors.ErrUpstreamRateLimit},
		{name: "404 not found", code: http.StatusNotFound, wantErr: errors.ErrNotFound},
		{name: "503 unavailable", code: http.StatusServiceUnavailable, wantErr: errors.ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.code, Status: http.StatusText(tt.code)}
			err := CheckStatus(resp)
			if tt.wantErr == nil {
				testutil.AssertNoError(t, err, "2xx should pass")
			} else {
				testutil.AssertTrue(t, errors.Is(err, tt.wantErr), "status should map to sentinel")
			}
		})
	}
}
