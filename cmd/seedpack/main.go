package main

import (
	"compress/gzip"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"pizzeria-api/internal/seed"
)

// seedpack validates a seed menu and writes a gzipped copy next to it, ready
// to upload under the S3 seed prefix.
func main() {
	src := flag.String("in", "data/seed/menu.json", "seed menu to pack")
	dst := flag.String("out", "", "output path (default: <in>.gz)")
	flag.Parse()

	if *dst == "" {
		*dst = *src + ".gz"
	}

	menu, err := readMenu(*src)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *src, err)
	}

	if err := writeMenu(*dst, menu); err != nil {
		log.Fatalf("Failed to write %s: %v", *dst, err)
	}

	fmt.Printf("Packed %d pizzas and %d menu items into %s\n", len(menu.Pizzas), len(menu.MenuItems), *dst)
}

func readMenu(path string) (*seed.Menu, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var menu seed.Menu
	if err := json.NewDecoder(file).Decode(&menu); err != nil {
		return nil, fmt.Errorf("failed to decode menu: %w", err)
	}
	if len(menu.Pizzas) == 0 {
		return nil, fmt.Errorf("menu has no pizzas")
	}
	return &menu, nil
}

func writeMenu(path string, menu *seed.Menu) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	if err := json.NewEncoder(gzipWriter).Encode(menu); err != nil {
		return fmt.Errorf("failed to write menu: %w", err)
	}
	return gzipWriter.Close()
}
