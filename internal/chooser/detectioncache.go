package chooser

import (
	"errors"
	"fmt"
	"io"
	"os"

	lru "github.com/hashicorp/golang-lru"

	"github.com/chrisant-go/list/internal/content"
)

// DetectionCache remembers each file's detected encoding so that redrawing
// the directory listing (e.g. after a resize, or paging back to a
// previously visited directory) doesn't re-open and re-sniff every file's
// leading bytes again. This repurposes the teacher's LRU dependency — used
// there to rate-limit Sentry error uploads — for caching detection results
// instead (see DESIGN.md).
type DetectionCache struct {
	cache *lru.Cache
}

type detectionKey struct {
	path    string
	size    int64
	modUnix int64
}

// NewDetectionCache creates a cache holding up to size entries.
func NewDetectionCache(size int) (*DetectionCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &DetectionCache{cache: c}, nil
}

// Detect returns the cached encoding for path if its size/mtime haven't
// changed since it was last sniffed, else reads a prefix and detects fresh.
func (d *DetectionCache) Detect(path string, multibyteEnabled bool) (content.Encoding, error) {
	info, err := os.Stat(path)
	if err != nil {
		return content.Encoding{}, err
	}

	key := detectionKey{path: path, size: info.Size(), modUnix: info.ModTime().Unix()}
	if v, ok := d.cache.Get(key); ok {
		return v.(content.Encoding), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return content.Encoding{}, err
	}
	defer f.Close()

	prefix := make([]byte, 4096)
	n, err := f.Read(prefix)
	if err != nil && !errors.Is(err, io.EOF) {
		return content.Encoding{}, fmt.Errorf("chooser: reading %s: %w", path, err)
	}

	enc := content.DetectEncoding(prefix[:n], multibyteEnabled)
	d.cache.Add(key, enc)
	return enc, nil
}

// Invalidate drops every cached entry recorded for path, whatever size and
// modification time it was keyed under.
func (d *DetectionCache) Invalidate(path string) {
	for _, k := range d.cache.Keys() {
		if dk, ok := k.(detectionKey); ok && dk.path == path {
			d.cache.Remove(k)
		}
	}
}
