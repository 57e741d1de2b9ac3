package synth

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/codestory-build/gitsynth/pkg/alg/lru"
)

// blobCacheMaxBytes bounds the staging cache's compressed footprint. It is
// deliberately generous: the cache only ever holds base-tree blob content
// that every commit group re-reads, never the freshly synthesized blobs
// themselves.
const blobCacheMaxBytes = 256 * 1024 * 1024

// BlobCache holds lz4-compressed copies of base-tree blob content so that
// the O(groups * files) re-application of cumulative chunks against the
// base tree doesn't re-run `cat-file --batch` for a blob it already read.
// It never caches the synthesized result: final blob bytes always go
// straight to `hash-object` and are discarded from process memory once
// written.
type BlobCache struct {
	cache *lru.Cache[string, []byte]
}

// NewBlobCache constructs an empty cache.
func NewBlobCache() *BlobCache {
	return &BlobCache{
		cache: lru.New(lru.WithMaxBytes[string, []byte](blobCacheMaxBytes, func(v []byte) int64 {
			return int64(len(v))
		})),
	}
}

// Get returns the decompressed content for hash, if cached.
func (c *BlobCache) Get(hash string) ([]byte, bool) {
	compressed, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}

	out := new(bytes.Buffer)
	if _, err := io.Copy(out, lz4.NewReader(bytes.NewReader(compressed))); err != nil {
		return nil, false
	}

	return out.Bytes(), true
}

// Put stores content under hash, compressed.
func (c *BlobCache) Put(hash string, content []byte) {
	var buf bytes.Buffer

	w := lz4.NewWriter(&buf)
	if _, err := w.Write(content); err != nil {
		return
	}
	if err := w.Close(); err != nil {
		return
	}

	c.cache.Put(hash, buf.Bytes())
}
