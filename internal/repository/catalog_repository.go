package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"pizzeria-api/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// catalogRepository implements the CatalogRepository interface using PostgreSQL.
type catalogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	return &catalogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

func (r *catalogRepository) ListAvailablePizzas(ctx context.Context) ([]model.Pizza, error) {
	query := `
		SELECT id, name, description, category, image_url, sizes, toppings, is_available
		FROM pizzas
		WHERE is_available
		ORDER BY category, name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query pizzas")
		return nil, fmt.Errorf("failed to query pizzas: %w", err)
	}
	defer rows.Close()

	pizzas := []model.Pizza{}
	for rows.Next() {
		var p model.Pizza
		var sizes, toppings []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.ImageURL, &sizes, &toppings, &p.IsAvailable); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan pizza row")
			return nil, fmt.Errorf("failed to scan pizza: %w", err)
		}
		if err := json.Unmarshal(sizes, &p.Sizes); err != nil {
			return nil, fmt.Errorf("failed to decode sizes of pizza %s: %w", p.ID, err)
		}
		if err := json.Unmarshal(toppings, &p.Toppings); err != nil {
			return nil, fmt.Errorf("failed to decode toppings of pizza %s: %w", p.ID, err)
		}
		pizzas = append(pizzas, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating pizza rows")
		return nil, fmt.Errorf("error iterating pizzas: %w", err)
	}

	return pizzas, nil
}

func (r *catalogRepository) ListAvailableMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	query := `
		SELECT id, name, description, category, price_cents, image_url, is_available
		FROM menu_items
		WHERE is_available
		ORDER BY category, name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query menu items")
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := []model.MenuItem{}
	for rows.Next() {
		var item model.MenuItem
		var cents int64
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Category, &cents, &item.ImageURL, &item.IsAvailable); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan menu item row")
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		item.Price = fromCents(cents)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating menu item rows")
		return nil, fmt.Errorf("error iterating menu items: %w", err)
	}

	return items, nil
}

func (r *catalogRepository) CountPizzas(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pizzas`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pizzas: %w", err)
	}
	return count, nil
}

func (r *catalogRepository) CreatePizza(ctx context.Context, pizza *model.Pizza) error {
	sizes, err := json.Marshal(pizza.Sizes)
	if err != nil {
		return fmt.Errorf("failed to encode pizza sizes: %w", err)
	}
	toppings := pizza.Toppings
	if toppings == nil {
		toppings = []string{}
	}
	toppingsJSON, err := json.Marshal(toppings)
	if err != nil {
		return fmt.Errorf("failed to encode pizza toppings: %w", err)
	}

	query := `
		INSERT INTO pizzas (id, name, description, category, image_url, sizes, toppings, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.pool.Exec(ctx, query,
		pizza.ID, pizza.Name, pizza.Description, pizza.Category, pizza.ImageURL, sizes, toppingsJSON, pizza.IsAvailable)
	if err != nil {
		r.logger.Error().Err(err).Str("pizza_id", pizza.ID).Msg("failed to create pizza")
		return fmt.Errorf("failed to create pizza: %w", err)
	}

	return nil
}

func (r *catalogRepository) CreateMenuItem(ctx context.Context, item *model.MenuItem) error {
	price, err := toCents(item.Price)
	if err != nil {
		return fmt.Errorf("failed to encode menu item price: %w", err)
	}

	query := `
		INSERT INTO menu_items (id, name, description, category, price_cents, image_url, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.pool.Exec(ctx, query,
		item.ID, item.Name, item.Description, item.Category, price, item.ImageURL, item.IsAvailable)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to create menu item")
		return fmt.Errorf("failed to create menu item: %w", err)
	}

	return nil
}
