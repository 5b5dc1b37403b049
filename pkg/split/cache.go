package split

import (
	"sync/atomic"

	"github.com/bastiangx/wordsplit/pkg/segment"
	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheKey struct {
	chunk    string
	previous string
	maxLen   int
}

// hotCache keeps the segmentations of recently seen chunks.
// The model behind a Splitter never changes, so entries never go stale.
type hotCache struct {
	entries    *lru.Cache[cacheKey, segment.Segmentation]
	hits       atomic.Int64
	maxEntries int
}

func newHotCache(maxEntries int) (*hotCache, error) {
	entries, err := lru.New[cacheKey, segment.Segmentation](maxEntries)
	if err != nil {
		return nil, err
	}
	return &hotCache{entries: entries, maxEntries: maxEntries}, nil
}

func (hc *hotCache) get(key cacheKey) (segment.Segmentation, bool) {
	seg, ok := hc.entries.Get(key)
	if ok {
		hc.hits.Add(1)
	}
	return seg, ok
}

func (hc *hotCache) put(key cacheKey, seg segment.Segmentation) {
	hc.entries.Add(key, seg)
}

func (hc *hotCache) stats() map[string]int {
	return map[string]int{
		"cacheEntries": hc.entries.Len(),
		"cacheMax":     hc.maxEntries,
		"cacheHits":    int(hc.hits.Load()),
	}
}
