// Package seed loads the initial menu and applies it to an empty catalog.
package seed

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"pizzeria-api/internal/model"

	"github.com/rs/zerolog"
)

// Menu is the seed document: every pizza and menu item to create.
type Menu struct {
	Pizzas    []model.Pizza    `json:"pizzas"`
	MenuItems []model.MenuItem `json:"menuItems"`
}

// Loader fetches a seed menu by path or key.
type Loader interface {
	Load(ctx context.Context, path string) (*Menu, error)
}

// Store is the catalog the seed is written to.
type Store interface {
	CountPizzas(ctx context.Context) (int, error)
	CreatePizza(ctx context.Context, pizza *model.Pizza) error
	CreateMenuItem(ctx context.Context, item *model.MenuItem) error
}

// Apply writes menu into store when the store has no pizzas yet.
// It returns whether anything was written.
func Apply(ctx context.Context, store Store, menu *Menu, logger zerolog.Logger) (bool, error) {
	logger = logger.With().Str("component", "seed").Logger()

	count, err := store.CountPizzas(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count pizzas: %w", err)
	}
	if count > 0 {
		logger.Debug().Int("pizzas", count).Msg("catalog already populated, skipping seed")
		return false, nil
	}

	for i := range menu.Pizzas {
		if err := store.CreatePizza(ctx, &menu.Pizzas[i]); err != nil {
			return false, fmt.Errorf("failed to seed pizza %q: %w", menu.Pizzas[i].Name, err)
		}
	}
	for i := range menu.MenuItems {
		if err := store.CreateMenuItem(ctx, &menu.MenuItems[i]); err != nil {
			return false, fmt.Errorf("failed to seed menu item %q: %w", menu.MenuItems[i].Name, err)
		}
	}

	logger.Info().
		Int("pizzas", len(menu.Pizzas)).
		Int("menu_items", len(menu.MenuItems)).
		Msg("catalog seeded")
	return true, nil
}

// decode reads a JSON menu, transparently gunzipping when name ends in .gz.
func decode(r io.Reader, name string) (*Menu, error) {
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		defer gz.Close()
		r = gz
	}

	var menu Menu
	if err := json.NewDecoder(r).Decode(&menu); err != nil {
		return nil, fmt.Errorf("failed to decode seed %s: %w", name, err)
	}
	return &menu, nil
}
