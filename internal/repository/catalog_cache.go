package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pizzeria-api/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const (
	pizzasCacheKey    = "catalog:pizzas"
	menuItemsCacheKey = "catalog:menu_items"
)

// cachedCatalogRepository is a read-through Redis cache in front of a CatalogRepository.
// Cache failures fall back to the underlying store.
type cachedCatalogRepository struct {
	next   CatalogRepository
	client redis.Cmdable
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedCatalogRepository wraps next with a Redis cache.
func NewCachedCatalogRepository(next CatalogRepository, client redis.Cmdable, ttl time.Duration, logger zerolog.Logger) CatalogRepository {
	return &cachedCatalogRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("repository", "catalog-cache").Logger(),
	}
}

func (r *cachedCatalogRepository) ListAvailablePizzas(ctx context.Context) ([]model.Pizza, error) {
	var pizzas []model.Pizza
	if r.get(ctx, pizzasCacheKey, &pizzas) {
		return pizzas, nil
	}

	pizzas, err := r.next.ListAvailablePizzas(ctx)
	if err != nil {
		return nil, err
	}
	r.set(ctx, pizzasCacheKey, pizzas)
	return pizzas, nil
}

func (r *cachedCatalogRepository) ListAvailableMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	var items []model.MenuItem
	if r.get(ctx, menuItemsCacheKey, &items) {
		return items, nil
	}

	items, err := r.next.ListAvailableMenuItems(ctx)
	if err != nil {
		return nil, err
	}
	r.set(ctx, menuItemsCacheKey, items)
	return items, nil
}

func (r *cachedCatalogRepository) CountPizzas(ctx context.Context) (int, error) {
	return r.next.CountPizzas(ctx)
}

func (r *cachedCatalogRepository) CreatePizza(ctx context.Context, pizza *model.Pizza) error {
	if err := r.next.CreatePizza(ctx, pizza); err != nil {
		return err
	}
	r.invalidate(ctx, pizzasCacheKey)
	return nil
}

func (r *cachedCatalogRepository) CreateMenuItem(ctx context.Context, item *model.MenuItem) error {
	if err := r.next.CreateMenuItem(ctx, item); err != nil {
		return err
	}
	r.invalidate(ctx, menuItemsCacheKey)
	return nil
}

func (r *cachedCatalogRepository) get(ctx context.Context, key string, dst any) bool {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return false
	}
	return true
}

func (r *cachedCatalogRepository) set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (r *cachedCatalogRepository) invalidate(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
	}
}
