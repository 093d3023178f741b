package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/georepute/domain-intelligence/internal/urlutil"
)

// RecentStore guards against redundant re-analysis of the same domain
// within a dedup window.
type RecentStore struct {
	client *redis.Client
}

// NewRecentStore connects the dedup cache.
func NewRecentStore(addr string) *RecentStore {
	return &RecentStore{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (s *RecentStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// MarkAnalyzed records a completed analysis for the domain with a TTL.
func (s *RecentStore) MarkAnalyzed(ctx context.Context, domainURL string, ttl time.Duration) error {
	key := fmt.Sprintf("analyzed:%s", urlutil.Hash(urlutil.Hostname(domainURL)))
	return s.client.Set(ctx, key, "1", ttl).Err()
}

// IsRecentlyAnalyzed checks whether the domain was analyzed within the TTL.
func (s *RecentStore) IsRecentlyAnalyzed(ctx context.Context, domainURL string) (bool, error) {
	key := fmt.Sprintf("analyzed:%s", urlutil.Hash(urlutil.Hostname(domainURL)))
	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}
