package http_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/opdscli"
	opdshttp "github.com/fwojciec/opdscli/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func okResponse(r *http.Request, body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    r,
	}
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/atom+xml")
			_, _ = w.Write([]byte("<feed/>"))
		}))
		defer server.Close()

		fetcher := opdshttp.NewFetcher()

		body, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<feed/>", body)
	})

	t.Run("sends basic auth credentials", func(t *testing.T) {
		t.Parallel()

		var user, pass string
		var ok bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok = r.BasicAuth()
			_, _ = w.Write([]byte("<feed/>"))
		}))
		defer server.Close()

		fetcher := opdshttp.NewFetcher(opdshttp.WithAuth(&opdscli.Auth{
			Type:     opdscli.AuthBasic,
			Username: "reader",
			Password: "secret",
		}))

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "reader", user)
		assert.Equal(t, "secret", pass)
	})

	t.Run("sends bearer token", func(t *testing.T) {
		t.Parallel()

		var header string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header = r.Header.Get("Authorization")
			_, _ = w.Write([]byte("<feed/>"))
		}))
		defer server.Close()

		fetcher := opdshttp.NewCatalogFetcher(&opdscli.Catalog{
			Name: "private",
			URL:  server.URL,
			Auth: &opdscli.Auth{Type: opdscli.AuthBearer, Token: "tok123"},
		})

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok123", header)
	})

	t.Run("sends no credentials without auth", func(t *testing.T) {
		t.Parallel()

		var header string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header = r.Header.Get("Authorization")
			_, _ = w.Write([]byte("<feed/>"))
		}))
		defer server.Close()

		_, err := opdshttp.NewFetcher().Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Empty(t, header)
	})

	t.Run("follows redirects", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("moved"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		body, err := opdshttp.NewFetcher().Fetch(context.Background(), server.URL+"/old")
		require.NoError(t, err)
		assert.Equal(t, "moved", body)
	})

	t.Run("classifies 401 and 403 as authentication failures without retry", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(status)
			}))

			fetcher := opdshttp.NewFetcher(opdshttp.WithRetryDelay(time.Millisecond))
			_, err := fetcher.Fetch(context.Background(), server.URL)
			server.Close()

			require.Error(t, err)
			assert.Equal(t, opdscli.EAUTH, opdscli.ErrorCode(err))
			assert.Equal(t, status, opdscli.ErrorStatus(err))
			assert.Equal(t, int32(1), hits.Load())
		}
	})

	t.Run("classifies other statuses as HTTP errors with reason phrase", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		fetcher := opdshttp.NewFetcher(opdshttp.WithRetryDelay(time.Millisecond))
		_, err := fetcher.Fetch(context.Background(), server.URL)

		require.Error(t, err)
		assert.Equal(t, opdscli.EHTTP, opdscli.ErrorCode(err))
		assert.Equal(t, http.StatusNotFound, opdscli.ErrorStatus(err))
		assert.Contains(t, opdscli.ErrorMessage(err), "404")
		assert.Contains(t, opdscli.ErrorMessage(err), "Not Found")
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("retries once after a connect error", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32
		rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if attempts.Add(1) == 1 {
				return nil, errors.New("connection refused")
			}
			return okResponse(r, "<feed/>"), nil
		})

		delay := 50 * time.Millisecond
		fetcher := opdshttp.NewFetcher(opdshttp.WithTransport(rt), opdshttp.WithRetryDelay(delay))

		begin := time.Now()
		body, err := fetcher.Fetch(context.Background(), "http://catalog.test/opds")

		require.NoError(t, err)
		assert.Equal(t, "<feed/>", body)
		assert.Equal(t, int32(2), attempts.Load())
		assert.GreaterOrEqual(t, time.Since(begin), delay)
	})

	t.Run("returns network error after second failure", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32
		rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
			attempts.Add(1)
			return nil, errors.New("connection refused")
		})

		fetcher := opdshttp.NewFetcher(opdshttp.WithTransport(rt), opdshttp.WithRetryDelay(time.Millisecond))
		_, err := fetcher.Fetch(context.Background(), "http://catalog.test/opds")

		require.Error(t, err)
		assert.Equal(t, opdscli.ENETWORK, opdscli.ErrorCode(err))
		assert.Contains(t, opdscli.ErrorMessage(err), "connection refused")
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("applies timeout to each attempt", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		}))
		defer server.Close()

		fetcher := opdshttp.NewFetcher(
			opdshttp.WithTimeout(10*time.Millisecond),
			opdshttp.WithRetryDelay(time.Millisecond),
		)
		_, err := fetcher.Fetch(context.Background(), server.URL)

		require.Error(t, err)
		assert.Equal(t, opdscli.ENETWORK, opdscli.ErrorCode(err))
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("does not retry a canceled context", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32
		rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
			attempts.Add(1)
			return nil, r.Context().Err()
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fetcher := opdshttp.NewFetcher(opdshttp.WithTransport(rt), opdshttp.WithRetryDelay(time.Millisecond))
		_, err := fetcher.Fetch(ctx, "http://catalog.test/opds")

		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.LessOrEqual(t, attempts.Load(), int32(1))
	})

	t.Run("rejects invalid URLs without retry", func(t *testing.T) {
		t.Parallel()

		_, err := opdshttp.NewFetcher().Fetch(context.Background(), "://bad")

		require.Error(t, err)
		assert.Equal(t, opdscli.EINVALID, opdscli.ErrorCode(err))
	})

	t.Run("sends user agent", func(t *testing.T) {
		t.Parallel()

		var ua string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua = r.UserAgent()
		}))
		defer server.Close()

		_, err := opdshttp.NewFetcher(opdshttp.WithUserAgent("test-agent/1.0")).Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "test-agent/1.0", ua)
	})
}

func TestDefaultRetryDelay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second, opdshttp.DefaultRetryDelay)
	assert.Equal(t, 30*time.Second, opdshttp.DefaultFetchTimeout)
}

func TestFetcher_Download(t *testing.T) {
	t.Parallel()

	t.Run("streams body and reports progress", func(t *testing.T) {
		t.Parallel()

		payload := bytes.Repeat([]byte("x"), 100_000)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/epub+zip")
			w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
			_, _ = w.Write(payload)
		}))
		defer server.Close()

		var events []opdscli.DownloadProgress
		var buf bytes.Buffer
		n, err := opdshttp.NewFetcher().Download(context.Background(), server.URL, &buf, func(p opdscli.DownloadProgress) {
			events = append(events, p)
		})

		require.NoError(t, err)
		assert.Equal(t, int64(len(payload)), n)
		assert.Equal(t, payload, buf.Bytes())
		require.NotEmpty(t, events)
		last := events[len(events)-1]
		assert.Equal(t, int64(len(payload)), last.Received)
		assert.Equal(t, int64(len(payload)), last.Total)
		assert.Equal(t, server.URL, last.URL)
	})

	t.Run("classifies status errors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		var buf bytes.Buffer
		_, err := opdshttp.NewFetcher().Download(context.Background(), server.URL, &buf, nil)

		require.Error(t, err)
		assert.Equal(t, opdscli.EAUTH, opdscli.ErrorCode(err))
		assert.Zero(t, buf.Len())
	})

	t.Run("returns destination write errors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("data"))
		}))
		defer server.Close()

		diskFull := errors.New("disk full")
		_, err := opdshttp.NewFetcher().Download(context.Background(), server.URL, failingWriter{err: diskFull}, nil)

		assert.ErrorIs(t, err, diskFull)
	})
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }
