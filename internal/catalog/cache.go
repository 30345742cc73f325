package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/hongminglow/all-in-store/internal/models"
)

// Source is the uncached catalog API.
type Source interface {
	Games(ctx context.Context) ([]models.Game, error)
	GameWithPacks(ctx context.Context, gameID string) (models.Game, []models.DiamondPack, error)
}

type entry struct {
	games []models.Game
	game  models.Game
	packs []models.DiamondPack
}

// Cache is a read-through cache in front of the public catalog reads.
// Identity validation, orders and anything user-specific never pass through it.
type Cache struct {
	src   Source
	ttl   time.Duration
	cache *ristretto.Cache[string, entry]
}

// NewCache wraps src. A zero ttl disables caching.
func NewCache(src Source, ttl time.Duration) (*Cache, error) {
	c := &Cache{src: src, ttl: ttl}
	if ttl <= 0 {
		return c, nil
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, entry]{
		NumCounters:        10000,
		MaxCost:            1 << 16,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("init catalog cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

const gamesKey = "games"

func packsKey(gameID string) string { return "packs|" + gameID }

// Games returns the game list.
func (c *Cache) Games(ctx context.Context) ([]models.Game, error) {
	if e, ok := c.get(gamesKey); ok {
		return e.games, nil
	}
	games, err := c.src.Games(ctx)
	if err != nil {
		return nil, err
	}
	c.set(gamesKey, entry{games: games}, int64(len(games))+1)
	return games, nil
}

// GameWithPacks returns a game and its packs.
func (c *Cache) GameWithPacks(ctx context.Context, gameID string) (models.Game, []models.DiamondPack, error) {
	if e, ok := c.get(packsKey(gameID)); ok {
		return e.game, e.packs, nil
	}
	game, packs, err := c.src.GameWithPacks(ctx, gameID)
	if err != nil {
		return models.Game{}, nil, err
	}
	c.set(packsKey(gameID), entry{game: game, packs: packs}, int64(len(packs))+1)
	return game, packs, nil
}

func (c *Cache) get(key string) (entry, bool) {
	if c.cache == nil {
		return entry{}, false
	}
	return c.cache.Get(key)
}

func (c *Cache) set(key string, e entry, cost int64) {
	if c.cache == nil {
		return
	}
	c.cache.SetWithTTL(key, e, cost, c.ttl)
	c.cache.Wait()
}

// Close stops the cache's background goroutines.
func (c *Cache) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}
