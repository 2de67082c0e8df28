package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
	"github.com/jellydator/ttlcache/v3"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

const (
	cacheState    = "state"
	cacheRound    = "round"
	cachePromoter = "promoter"
)

// CacheRecorder observes cache lookups.
type CacheRecorder interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

type roundKey struct {
	chainID int64
	id      uint32
}

type promoterKey struct {
	chainID int64
	lookup  string
}

// cache is one TTL cache whose misses load at most once per key.
type cache[K comparable, V any] struct {
	name    string
	entries *ttlcache.Cache[K, V]
	loads   singleflight.Group
}

func newCache[K comparable, V any](name string, ttl time.Duration) *cache[K, V] {
	return &cache[K, V]{
		name: name,
		entries: ttlcache.New[K, V](
			ttlcache.WithTTL[K, V](ttl),
			ttlcache.WithDisableTouchOnHit[K, V](),
		),
	}
}

// get returns the cached value for key, calling load on a miss. Concurrent
// misses on the same key share one load; other keys load in parallel.
func (ca *cache[K, V]) get(c *CachedReader, key K, load func() (V, error)) (V, error) {
	if item := ca.entries.Get(key); item != nil {
		c.hit(ca.name)
		return item.Value(), nil
	}
	v, err, _ := ca.loads.Do(fmt.Sprint(key), func() (any, error) {
		if item := ca.entries.Get(key); item != nil {
			c.hit(ca.name)
			return item.Value(), nil
		}
		c.miss(ca.name)
		value, err := load()
		if err != nil {
			return nil, err
		}
		ca.entries.Set(key, value, ttlcache.DefaultTTL)
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// CachedReader serves round, presale and promoter reads from TTL caches.
// Purchases and claim state change with every buy and claim and always go to
// the underlying reader.
type CachedReader struct {
	reader   Reader
	recorder CacheRecorder

	states    *cache[int64, *round.State]
	rounds    *cache[roundKey, *round.Round]
	promoters *cache[promoterKey, *promoter.Stats]
}

// NewCachedReader wraps reader with caches holding entries for ttl.
// recorder may be nil.
func NewCachedReader(reader Reader, ttl time.Duration, recorder CacheRecorder) *CachedReader {
	c := &CachedReader{
		reader:    reader,
		recorder:  recorder,
		states:    newCache[int64, *round.State](cacheState, ttl),
		rounds:    newCache[roundKey, *round.Round](cacheRound, ttl),
		promoters: newCache[promoterKey, *promoter.Stats](cachePromoter, ttl),
	}
	go c.states.entries.Start()
	go c.rounds.entries.Start()
	go c.promoters.entries.Start()
	return c
}

// Stop halts the cache expiry loops.
func (c *CachedReader) Stop() {
	c.states.entries.Stop()
	c.rounds.entries.Stop()
	c.promoters.entries.Stop()
}

// Invalidate drops every cached entry, e.g. after a snapshot import.
func (c *CachedReader) Invalidate() {
	c.states.entries.DeleteAll()
	c.rounds.entries.DeleteAll()
	c.promoters.entries.DeleteAll()
}

func (c *CachedReader) State(ctx context.Context, chainID int64) (*round.State, error) {
	state, err := c.states.get(c, chainID, func() (*round.State, error) {
		return c.reader.State(ctx, chainID)
	})
	if err != nil {
		return nil, errors.Wrap(err, "loading presale state")
	}
	return state, nil
}

func (c *CachedReader) Round(ctx context.Context, chainID int64, id uint32) (*round.Round, error) {
	r, err := c.rounds.get(c, roundKey{chainID: chainID, id: id}, func() (*round.Round, error) {
		return c.reader.Round(ctx, chainID, id)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "loading round %d", id)
	}
	return r, nil
}

func (c *CachedReader) Purchase(ctx context.Context, chainID int64, wallet string, roundID uint32) (*vesting.Purchase, error) {
	return c.reader.Purchase(ctx, chainID, wallet, roundID)
}

func (c *CachedReader) Claimed(ctx context.Context, chainID int64, wallet string, roundID uint32) (vesting.Claimed, error) {
	return c.reader.Claimed(ctx, chainID, wallet, roundID)
}

func (c *CachedReader) Promoter(ctx context.Context, chainID int64, address string) (*promoter.Stats, error) {
	return c.promoter(promoterKey{chainID: chainID, lookup: "address:" + strings.ToLower(address)}, func() (*promoter.Stats, error) {
		return c.reader.Promoter(ctx, chainID, address)
	})
}

func (c *CachedReader) PromoterByCode(ctx context.Context, chainID int64, code string) (*promoter.Stats, error) {
	return c.promoter(promoterKey{chainID: chainID, lookup: "code:" + code}, func() (*promoter.Stats, error) {
		return c.reader.PromoterByCode(ctx, chainID, code)
	})
}

func (c *CachedReader) promoter(key promoterKey, load func() (*promoter.Stats, error)) (*promoter.Stats, error) {
	stats, err := c.promoters.get(c, key, load)
	if err != nil {
		return nil, errors.Wrap(err, "loading promoter")
	}
	return stats, nil
}

func (c *CachedReader) hit(cache string) {
	if c.recorder != nil {
		c.recorder.CacheHit(cache)
	}
}

func (c *CachedReader) miss(cache string) {
	if c.recorder != nil {
		c.recorder.CacheMiss(cache)
	}
}
