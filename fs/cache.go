// Package fs provides file-based storage for peer caches and crawl output logs.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/fedcrawl"
)

// cacheExt is the file extension of cache entries: brotli-compressed JSON.
const cacheExt = ".json.br"

// Ensure PeerCache implements fedcrawl.PeerCache at compile time.
var _ fedcrawl.PeerCache = (*PeerCache)(nil)

// PeerCache implements fedcrawl.PeerCache with one compressed file per domain.
// Entries are spread over 256 shard directories keyed by the domain's hash.
// Stores write to a temporary file and rename it into place, so an
// interrupted write never leaves a partial entry behind.
type PeerCache struct {
	dir string
}

// NewPeerCache creates a PeerCache rooted at dir.
func NewPeerCache(dir string) *PeerCache {
	return &PeerCache{dir: dir}
}

// Dir returns the cache root directory.
func (c *PeerCache) Dir() string {
	return c.dir
}

// Check creates the cache root and verifies that it accepts new files.
func (c *PeerCache) Check() error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(c.dir, ".check.*.tmp")
	if err != nil {
		return err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return err
	}
	return os.Remove(name)
}

// Path returns the cache file path for the domain.
// Example: mastodon.social → <dir>/3f/mastodon.social.json.br
func (c *PeerCache) Path(domain fedcrawl.Domain) (string, error) {
	name := string(domain) + cacheExt
	if domain == "" || strings.ContainsAny(string(domain), `/\`) || !filepath.IsLocal(name) {
		return "", fedcrawl.Errorf(fedcrawl.EINVALID, "path traversal in domain %q", domain)
	}
	return filepath.Join(c.dir, shard(domain), name), nil
}

func shard(domain fedcrawl.Domain) string {
	return fmt.Sprintf("%02x", xxhash.Sum64String(string(domain))>>56)
}

// Load reads the cached peer list for the domain.
// Missing, truncated, or undecodable entries are reported as a miss.
func (c *PeerCache) Load(ctx context.Context, domain fedcrawl.Domain) ([]string, bool) {
	path, err := c.Path(domain)
	if err != nil {
		return nil, false
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var peers []string
	if err := json.NewDecoder(brotli.NewReader(f)).Decode(&peers); err != nil {
		return nil, false
	}
	if peers == nil {
		// JSON null is not a peer list.
		return nil, false
	}
	return peers, true
}

// Store replaces the cached peer list for the domain.
func (c *PeerCache) Store(ctx context.Context, domain fedcrawl.Domain, peers []string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := c.Path(domain)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if peers == nil {
		peers = []string{}
	}
	w := brotli.NewWriterLevel(tmp, brotli.DefaultCompression)
	if err := json.NewEncoder(w).Encode(peers); err != nil {
		return fmt.Errorf("encoding peers for %s: %w", domain, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("compressing peers for %s: %w", domain, err)
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
