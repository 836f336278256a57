package model

import "github.com/shopspring/decimal"

// Pizza is a catalog pizza priced per size.
type Pizza struct {
	ID          string                     `json:"id" db:"id"`
	Name        string                     `json:"name" db:"name"`
	Description string                     `json:"description" db:"description"`
	Category    string                     `json:"category" db:"category"`
	ImageURL    string                     `json:"imageUrl" db:"image_url"`
	Sizes       map[string]decimal.Decimal `json:"sizes" db:"sizes"`
	Toppings    []string                   `json:"toppings" db:"toppings"`
	IsAvailable bool                       `json:"isAvailable" db:"is_available"`
}

// MenuItem is a non-pizza catalog item with a single price.
type MenuItem struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Category    string          `json:"category" db:"category"`
	Price       decimal.Decimal `json:"price" db:"price_cents"`
	ImageURL    string          `json:"imageUrl" db:"image_url"`
	IsAvailable bool            `json:"isAvailable" db:"is_available"`
}

// Categories lists the menu sections shown by the storefront.
type Categories struct {
	PizzaCategories []string `json:"pizzaCategories"`
	OtherCategories []string `json:"otherCategories"`
}

// MenuCategories is the fixed category layout of the menu.
var MenuCategories = Categories{
	PizzaCategories: []string{"classic", "specialty"},
	OtherCategories: []string{
		"pasta", "calzone", "stromboli", "appetizers", "salads", "desserts", "wings",
		"burgers", "hot_subs", "cold_subs", "gyros", "sides", "beverages", "slice",
	},
}
