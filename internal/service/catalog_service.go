package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pizzeria-api/internal/model"
	"pizzeria-api/internal/repository"
	"pizzeria-api/internal/seed"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	catalogRepo  repository.CatalogRepository
	storeTimeout time.Duration
	logger       zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(catalogRepo repository.CatalogRepository, storeTimeout time.Duration, logger zerolog.Logger) CatalogService {
	return &catalogService{
		catalogRepo:  catalogRepo,
		storeTimeout: storeTimeout,
		logger:       logger.With().Str("service", "catalog").Logger(),
	}
}

func (s *catalogService) ListPizzas(ctx context.Context) ([]model.Pizza, error) {
	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	pizzas, err := s.catalogRepo.ListAvailablePizzas(storeCtx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list pizzas")
		return nil, storeError("list pizzas", err)
	}

	s.logger.Debug().Int("count", len(pizzas)).Msg("retrieved pizzas")
	return pizzas, nil
}

func (s *catalogService) ListMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	items, err := s.catalogRepo.ListAvailableMenuItems(storeCtx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list menu items")
		return nil, storeError("list menu items", err)
	}

	s.logger.Debug().Int("count", len(items)).Msg("retrieved menu items")
	return items, nil
}

func (s *catalogService) Categories() model.Categories {
	return model.MenuCategories
}

// CreatePizza validates and stores a pizza, assigning an id when none is given.
func (s *catalogService) CreatePizza(ctx context.Context, pizza *model.Pizza) (*model.Pizza, error) {
	if pizza == nil {
		return nil, model.ErrInvalidCatalogItem.WithDetail("pizza is empty", nil)
	}
	if strings.TrimSpace(pizza.Name) == "" || strings.TrimSpace(pizza.Category) == "" {
		return nil, model.ErrInvalidCatalogItem.WithDetail("name and category are required", nil)
	}
	if len(pizza.Sizes) == 0 {
		return nil, model.ErrInvalidCatalogItem.WithDetail("at least one size is required", nil)
	}
	for size, price := range pizza.Sizes {
		if price.IsNegative() {
			return nil, model.ErrInvalidCatalogItem.WithDetail(fmt.Sprintf("size %s has a negative price", size), nil)
		}
	}
	if pizza.ID == "" {
		pizza.ID = uuid.NewString()
	}

	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.catalogRepo.CreatePizza(storeCtx, pizza); err != nil {
		s.logger.Error().Err(err).Str("pizza_id", pizza.ID).Msg("failed to create pizza")
		return nil, storeError("create pizza", err)
	}

	s.logger.Info().Str("pizza_id", pizza.ID).Str("name", pizza.Name).Msg("pizza created")
	return pizza, nil
}

// CreateMenuItem validates and stores a menu item, assigning an id when none is given.
func (s *catalogService) CreateMenuItem(ctx context.Context, item *model.MenuItem) (*model.MenuItem, error) {
	if item == nil {
		return nil, model.ErrInvalidCatalogItem.WithDetail("menu item is empty", nil)
	}
	if strings.TrimSpace(item.Name) == "" || strings.TrimSpace(item.Category) == "" {
		return nil, model.ErrInvalidCatalogItem.WithDetail("name and category are required", nil)
	}
	if item.Price.IsNegative() {
		return nil, model.ErrInvalidCatalogItem.WithDetail("price must not be negative", nil)
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.catalogRepo.CreateMenuItem(storeCtx, item); err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to create menu item")
		return nil, storeError("create menu item", err)
	}

	s.logger.Info().Str("item_id", item.ID).Str("name", item.Name).Msg("menu item created")
	return item, nil
}

// Seed loads the menu at path and applies it to an empty catalog.
func (s *catalogService) Seed(ctx context.Context, loader seed.Loader, path string) (bool, error) {
	menu, err := loader.Load(ctx, path)
	if err != nil {
		return false, fmt.Errorf("failed to load seed menu: %w", err)
	}
	return seed.Apply(ctx, s.catalogRepo, menu, s.logger)
}
