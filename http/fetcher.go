// Package http provides an HTTP implementation of fedcrawl.PeerFetcher
// that reads a server's peer list and classifies every failure.
package http

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/fwojciec/fedcrawl"
)

// DefaultFetchTimeout is the default per-request timeout.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodySize limits how much of a peer-list response is read.
// Large servers report tens of thousands of peers, well under this limit.
const DefaultMaxBodySize = 16 << 20

// DefaultUserAgent identifies the crawler to server operators.
const DefaultUserAgent = "fedcrawl/1.0 (+https://github.com/fwojciec/fedcrawl)"

// Ensure PeerFetcher implements fedcrawl.PeerFetcher at compile time.
var _ fedcrawl.PeerFetcher = (*PeerFetcher)(nil)

// PeerFetcher retrieves peer lists over HTTP.
// It issues exactly one request per call and never retries.
type PeerFetcher struct {
	client      *http.Client
	timeout     time.Duration
	scheme      string
	path        string
	userAgent   string
	maxBodySize int64
	limiter     fedcrawl.Limiter
}

// Option configures a PeerFetcher.
type Option func(*PeerFetcher)

// WithTimeout sets the per-request timeout. Zero disables the timeout.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *PeerFetcher) {
		f.timeout = d
	}
}

// WithClient sets the HTTP client used for requests.
func WithClient(c *http.Client) Option {
	return func(f *PeerFetcher) {
		f.client = c
	}
}

// WithScheme sets the URL scheme. Defaults to https.
func WithScheme(scheme string) Option {
	return func(f *PeerFetcher) {
		f.scheme = scheme
	}
}

// WithPath sets the peer-list endpoint path.
// Defaults to fedcrawl.DefaultPeersPath.
func WithPath(path string) Option {
	return func(f *PeerFetcher) {
		f.path = path
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *PeerFetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum number of response bytes read.
func WithMaxBodySize(n int64) Option {
	return func(f *PeerFetcher) {
		f.maxBodySize = n
	}
}

// WithLimiter makes every request wait on the limiter first.
func WithLimiter(l fedcrawl.Limiter) Option {
	return func(f *PeerFetcher) {
		f.limiter = l
	}
}

// NewPeerFetcher creates a new HTTP-based PeerFetcher.
func NewPeerFetcher(opts ...Option) *PeerFetcher {
	f := &PeerFetcher{
		timeout:     DefaultFetchTimeout,
		scheme:      "https",
		path:        fedcrawl.DefaultPeersPath,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{}
	}

	return f
}

// URL returns the peer-list URL for the domain.
func (f *PeerFetcher) URL(domain fedcrawl.Domain) string {
	return f.scheme + "://" + string(domain) + f.path
}

// FetchPeers requests the domain's peer list.
// All failures are returned as *fedcrawl.FetchError.
func (f *PeerFetcher) FetchPeers(ctx context.Context, domain fedcrawl.Domain) ([]string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &fedcrawl.FetchError{Kind: fedcrawl.KindUnknown, Err: fmt.Errorf("rate limiter: %w", err)}
		}
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(domain), nil)
	if err != nil {
		return nil, &fedcrawl.FetchError{Kind: fedcrawl.KindUnknown, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &fedcrawl.FetchError{
			Kind:   fedcrawl.KindHTTP,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("HTTP %d for %s", resp.StatusCode, domain),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, classify(err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, &fedcrawl.FetchError{
			Kind: fedcrawl.KindDecode,
			Err:  fmt.Errorf("response exceeds %d bytes", f.maxBodySize),
		}
	}

	return decodePeers(body)
}

// decodePeers parses a JSON array of domain strings.
func decodePeers(body []byte) ([]string, error) {
	var peers []string
	if err := json.Unmarshal(body, &peers); err != nil {
		return nil, &fedcrawl.FetchError{Kind: fedcrawl.KindDecode, Err: err}
	}
	if peers == nil {
		return nil, &fedcrawl.FetchError{Kind: fedcrawl.KindDecode, Err: errors.New("peer list is null")}
	}
	return peers, nil
}

// classify maps a transport error onto a fetch error kind.
func classify(err error) *fedcrawl.FetchError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &fedcrawl.FetchError{Kind: fedcrawl.KindTimeout, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &fedcrawl.FetchError{Kind: fedcrawl.KindTimeout, Err: err}
	case errors.Is(err, context.Canceled):
		return &fedcrawl.FetchError{Kind: fedcrawl.KindUnknown, Err: err}
	case isConnectionError(err):
		return &fedcrawl.FetchError{Kind: fedcrawl.KindConnection, Err: err}
	default:
		return &fedcrawl.FetchError{Kind: fedcrawl.KindUnknown, Err: err}
	}
}

func isConnectionError(err error) bool {
	var (
		dnsErr      *net.DNSError
		opErr       *net.OpError
		recordErr   tls.RecordHeaderError
		certErr     *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostErr     x509.HostnameError
	)
	return errors.As(err, &dnsErr) ||
		errors.As(err, &opErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &certErr) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &hostErr) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
