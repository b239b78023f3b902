package embedding

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedProvider memoizes embeddings by text content. Topic labels repeat
// across retrieval calls within a session, so a hit skips a network call.
type CachedProvider struct {
	inner EmbeddingProvider
	cache *cache.Cache
}

func NewCachedProvider(inner EmbeddingProvider) EmbeddingProvider {
	// Entries expire after an hour, purged every 10 minutes.
	return &CachedProvider{
		inner: inner,
		cache: cache.New(1*time.Hour, 10*time.Minute),
	}
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	key := cacheKey(text, taskType)
	if x, found := p.cache.Get(key); found {
		return x.(*EmbeddingResponse), nil
	}

	res, err := p.inner.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}

	p.cache.Set(key, res, cache.DefaultExpiration)
	return res, nil
}

func cacheKey(text, taskType string) string {
	sum := sha256.Sum256([]byte(taskType + "\x00" + text))
	return fmt.Sprintf("%x", sum)
}
