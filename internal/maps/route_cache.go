// README: Redis read-through cache in front of a distance.Router.
package maps

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"vanbook/internal/metrics"
	"vanbook/internal/modules/distance"
)

const DefaultRouteCacheTTL = 24 * time.Hour

type CachedRouter struct {
	next   distance.Router
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedRouter(next distance.Router, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedRouter {
	if ttl <= 0 {
		ttl = DefaultRouteCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRouter{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// Route serves a cached leg when present. Cache failures never block the
// lookup; only successful routes are stored.
func (c *CachedRouter) Route(ctx context.Context, origin, destination string) (distance.RouteResult, error) {
	key := routeCacheKey(origin, destination)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var res distance.RouteResult
		if jerr := json.Unmarshal(raw, &res); jerr == nil {
			metrics.RoutingLookups.WithLabelValues("cache_hit").Inc()
			return res, nil
		}
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("route cache read failed", zap.Error(err))
	}

	res, err := c.next.Route(ctx, origin, destination)
	if err != nil {
		return res, err
	}
	if b, jerr := json.Marshal(res); jerr == nil {
		if serr := c.rdb.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			c.logger.Warn("route cache write failed", zap.Error(serr))
		}
	}
	return res, nil
}

// routeCacheKey is direction-sensitive; one-way systems make A->B differ from B->A.
func routeCacheKey(origin, destination string) string {
	norm := func(s string) string { return strings.Join(strings.Fields(strings.ToLower(s)), " ") }
	sum := sha1.Sum([]byte(norm(origin) + "\x00" + norm(destination)))
	return "route:" + hex.EncodeToString(sum[:])
}
