package http_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/fedcrawl"
	fedhttp "github.com/fwojciec/fedcrawl/http"
	"github.com/fwojciec/fedcrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newServer starts a test server and returns it with the domain that reaches it.
func newServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, fedcrawl.Domain) {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return server, fedcrawl.Domain(server.Listener.Addr().String())
}

func requireKind(t *testing.T, err error, kind fedcrawl.ErrorKind) *fedcrawl.FetchError {
	t.Helper()
	require.Error(t, err)
	var fe *fedcrawl.FetchError
	require.True(t, errors.As(err, &fe), "expected *FetchError, got %T: %v", err, err)
	assert.Equal(t, kind, fe.Kind, "error: %v", err)
	return fe
}

func TestPeerFetcher_FetchPeers(t *testing.T) {
	t.Parallel()

	t.Run("returns peers from the peers endpoint", func(t *testing.T) {
		t.Parallel()

		var gotPath, gotAccept, gotUA string
		_, domain := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAccept = r.Header.Get("Accept")
			gotUA = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`["b.social","c.social"]`))
		})

		fetcher := fedhttp.NewPeerFetcher(fedhttp.WithScheme("http"))
		peers, err := fetcher.FetchPeers(context.Background(), domain)

		require.NoError(t, err)
		assert.Equal(t, []string{"b.social", "c.social"}, peers)
		assert.Equal(t, fedcrawl.DefaultPeersPath, gotPath)
		assert.Equal(t, "application/json", gotAccept)
		assert.Equal(t, fedhttp.DefaultUserAgent, gotUA)
	})

	t.Run("accepts an empty list", func(t *testing.T) {
		t.Parallel()

		_, domain := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})

		peers, err := fedhttp.NewPeerFetcher(fedhttp.WithScheme("http")).FetchPeers(context.Background(), domain)

		require.NoError(t, err)
		assert.NotNil(t, peers)
		assert.Empty(t, peers)
	})

	t.Run("uses custom path", func(t *testing.T) {
		t.Parallel()

		var gotPath string
		_, domain := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte(`[]`))
		})

		fetcher := fedhttp.NewPeerFetcher(fedhttp.WithScheme("http"), fedhttp.WithPath("/peers.json"))
		_, err := fetcher.FetchPeers(context.Background(), domain)

		require.NoError(t, err)
		assert.Equal(t, "/peers.json", gotPath)
	})

	t.Run("classifies non-2xx as HTTP error with status", func(t *testing.T) {
		t.Parallel()

		_, domain := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := fedhttp.NewPeerFetcher(fedhttp.WithScheme("http")).FetchPeers(context.Background(), domain)

		fe := requireKind(t, err, fedcrawl.KindHTTP)
		assert.Equal(t, http.StatusServiceUnavailable, fe.Status)
		assert.Equal(t, "HTTPError(503)", fe.Label())
	})

	t.Run("classifies slow responses as timeout", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		_, domain := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-time.After(2 * time.Second):
			}
			_, _ = w.Write([]byte(`[]`))
		})
		defer close(release)

		fetcher := fedhttp.NewPeerFetcher(fedhttp.WithScheme("http"), fedhttp.WithTimeout(20*time.Millisecond))
		_, err := fetcher.FetchPeers(context.Background(), domain)

		requireKind(t, err, fedcrawl.KindTimeout)
	})

	t.Run("zero timeout waits for the server", func(t *testing.T) {
		t.Parallel()

		_, domain := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(30 * time.Millisecond)
			_, _ = w.Write([]byte(`["b.social"]`))
		})

		fetcher := fedhttp.NewPeerFetcher(fedhttp.WithScheme("http"), fedhttp.WithTimeout(0))
		peers, err := fetcher.FetchPeers(context.Background(), domain)

		require.NoError(t, err)
		assert.Equal(t, []string{"b.social"}, peers)
	})

	t.Run("classifies refused connections", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		domain := fedcrawl.Domain(ln.Addr().String())
		require.NoError(t, ln.Close())

		_, err = fedhttp.NewPeerFetcher(fedhttp.WithScheme("http")).FetchPeers(context.Background(), domain)

		requireKind(t, err, fedcrawl.KindConnection)
	})

	t.Run("classifies unresolvable hosts as connection errors", func(t *testing.T) {
		t.Parallel()

		fetcher := fedhttp.NewPeerFetcher(fedhttp.WithTimeout(2 * time.Second))
		_, err := fetcher.FetchPeers(context.Background(), "non-existent-host.invalid")

		fe := requireKind(t, err, fedcrawl.KindConnection)
		var dnsErr *net.DNSError
		assert.True(t, errors.As(fe, &dnsErr))
	})

	t.Run("classifies dropped connections", func(t *testing.T) {
		t.Parallel()

		_, domain := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
		})

		_, err := fedhttp.NewPeerFetcher(fedhttp.WithScheme("http")).FetchPeers(context.Background(), domain)

		requireKind(t, err, fedcrawl.KindConnection)
	})

	t.Run("classifies malformed bodies as decode errors", func(t *testing.T) {
		t.Parallel()

		for _, body := range []string{`{"peers":[]}`, `null`, `[1,2,3]`, `<html>`, ``} {
			_, domain := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			_, err := fedhttp.NewPeerFetcher(fedhttp.WithScheme("http")).FetchPeers(context.Background(), domain)

			requireKind(t, err, fedcrawl.KindDecode)
		}
	})

	t.Run("classifies oversized bodies as decode errors", func(t *testing.T) {
		t.Parallel()

		_, domain := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`["` + strings.Repeat("a", 100) + `"]`))
		})

		fetcher := fedhttp.NewPeerFetcher(fedhttp.WithScheme("http"), fedhttp.WithMaxBodySize(16))
		_, err := fetcher.FetchPeers(context.Background(), domain)

		requireKind(t, err, fedcrawl.KindDecode)
	})

	t.Run("keeps cancellation detectable", func(t *testing.T) {
		t.Parallel()

		_, domain := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fedhttp.NewPeerFetcher(fedhttp.WithScheme("http")).FetchPeers(ctx, domain)

		requireKind(t, err, fedcrawl.KindUnknown)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("waits on the limiter before each request", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32
		_, domain := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			_, _ = w.Write([]byte(`[]`))
		})
		var waits atomic.Int32
		limiter := &mock.Limiter{WaitFn: func(_ context.Context) error {
			waits.Add(1)
			return nil
		}}

		fetcher := fedhttp.NewPeerFetcher(fedhttp.WithScheme("http"), fedhttp.WithLimiter(limiter))
		_, err := fetcher.FetchPeers(context.Background(), domain)

		require.NoError(t, err)
		assert.Equal(t, int32(1), waits.Load())
		assert.Equal(t, int32(1), requests.Load())
	})

	t.Run("limiter failure skips the request", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32
		_, domain := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
		})
		limiter := &mock.Limiter{WaitFn: func(_ context.Context) error {
			return context.Canceled
		}}

		fetcher := fedhttp.NewPeerFetcher(fedhttp.WithScheme("http"), fedhttp.WithLimiter(limiter))
		_, err := fetcher.FetchPeers(context.Background(), domain)

		requireKind(t, err, fedcrawl.KindUnknown)
		assert.Equal(t, int32(0), requests.Load())
	})
}

func TestPeerFetcher_URL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://a.social/api/v1/instance/peers", fedhttp.NewPeerFetcher().URL("a.social"))
	assert.Equal(t, "http://a.social/p", fedhttp.NewPeerFetcher(fedhttp.WithScheme("http"), fedhttp.WithPath("/p")).URL("a.social"))
}
