package artifacts

import (
	"os"
	"time"

	"github.com/NilFoundation/diamond/diamond/internal/types"
	lru "github.com/hashicorp/golang-lru/v2"
)

const lruCacheSize = 1024

type cacheValue struct {
	modTime time.Time
	size    int64
	facets  []*types.FacetContract
}

// decodeCache keeps decoded facets per file. An entry is valid while the file's
// modification time and size are unchanged. Facets are immutable, so hits are shared.
type decodeCache struct {
	lru *lru.Cache[string, cacheValue]
}

func newDecodeCache() (*decodeCache, error) {
	cache, err := lru.New[string, cacheValue](lruCacheSize)
	if err != nil {
		return nil, err
	}
	return &decodeCache{lru: cache}, nil
}

func (c *decodeCache) get(path string, info os.FileInfo) ([]*types.FacetContract, bool) {
	value, ok := c.lru.Get(path)
	if !ok {
		return nil, false
	}
	if !value.modTime.Equal(info.ModTime()) || value.size != info.Size() {
		c.lru.Remove(path)
		return nil, false
	}
	return value.facets, true
}

func (c *decodeCache) add(path string, info os.FileInfo, facets []*types.FacetContract) {
	c.lru.Add(path, cacheValue{modTime: info.ModTime(), size: info.Size(), facets: facets})
}

func (c *decodeCache) len() int {
	return c.lru.Len()
}
