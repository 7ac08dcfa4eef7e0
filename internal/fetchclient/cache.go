package fetchclient

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Meta is the minimal metadata stored alongside each cached body.
type Meta struct {
	URL         string    `json:"url"`
	FetchedAt   time.Time `json:"fetched_at"`
	Status      int       `json:"status"`
	ContentType string    `json:"content_type"`
}

// DiskCache is a content-addressed on-disk cache of fetched bodies. Entries
// are keyed by the SHA-256 of the URL; each entry is a body file plus a JSON
// metadata sidecar. Writes happen immediately after a successful fetch so a
// crash between fetch and use does not lose the download.
type DiskCache struct {
	dir string
}

// NewDiskCache creates the cache directory if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %s: %w", dir, err)
	}
	return &DiskCache{dir: dir}, nil
}

// Get returns the cached body and metadata for url if the entry is younger
// than ttl. The second return is false on miss, expiry, or unreadable entry.
func (c *DiskCache) Get(url string, ttl time.Duration) ([]byte, *Meta, bool) {
	base := c.entryPath(url)

	raw, err := os.ReadFile(base + ".json")
	if err != nil {
		return nil, nil, false
	}
	var meta Meta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, nil, false
	}
	if time.Since(meta.FetchedAt) > ttl {
		return nil, nil, false
	}

	body, err := os.ReadFile(base + ".body")
	if err != nil {
		return nil, nil, false
	}
	return body, &meta, true
}

// Put stores a fetched body and its metadata. A failed write is reported but
// must not fail the fetch itself; callers log and continue.
func (c *DiskCache) Put(url string, body []byte, meta Meta) error {
	base := c.entryPath(url)

	if err := os.WriteFile(base+".body", body, 0o644); err != nil {
		return fmt.Errorf("failed to write cache body: %w", err)
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal cache meta: %w", err)
	}
	if err := os.WriteFile(base+".json", raw, 0o644); err != nil {
		return fmt.Errorf("failed to write cache meta: %w", err)
	}
	return nil
}

func (c *DiskCache) entryPath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:]))
}
