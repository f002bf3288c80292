package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/coldfrontcalls/cart-service-go/internal/cart"
)

// Catalog resolves a recommended category to the product offered in the
// upsell interstitial.
type Catalog struct {
	products map[cart.Category]cart.Candidate
}

// Default returns the storefront's built-in upsell products.
func Default() *Catalog {
	return &Catalog{products: map[cart.Category]cart.Candidate{
		cart.CategoryDuck: {
			ID:       "down-draft",
			Name:     "Down Draft",
			Price:    decimal.RequireFromString("149.99"),
			Image:    "/assets/products/down-draft-enhanced.png",
			Category: "Duck",
		},
		cart.CategoryGoose: {
			ID:       "perfect-storm",
			Name:     "Perfect Storm",
			Price:    decimal.RequireFromString("189.99"),
			Image:    "/assets/products/perfect-storm-enhanced.png",
			Category: "Goose",
		},
	}}
}

// Lookup returns the product offered for c. The second result is false when
// c is none or has no product configured.
func (c *Catalog) Lookup(cat cart.Category) (cart.Candidate, bool) {
	p, ok := c.products[cat]
	return p, ok
}

type entry struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Price    string `yaml:"price"`
	Image    string `yaml:"image"`
	Category string `yaml:"category"`
}

// Load returns the defaults with any entries from the YAML file at path laid
// over them. An empty path yields the defaults.
//
//	goose:
//	  id: perfect-storm
//	  name: Perfect Storm
//	  price: "189.99"
//	  image: /assets/products/perfect-storm-enhanced.png
//	  category: Goose
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read upsell catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("upsell catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse is Load on raw YAML.
func Parse(data []byte) (*Catalog, error) {
	var entries map[string]entry
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}

	c := Default()
	for key, e := range entries {
		cat, err := cart.ParseCategory(key)
		if err != nil {
			return nil, err
		}
		p, err := e.candidate()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		c.products[cat] = p
	}
	return c, nil
}

func (e entry) candidate() (cart.Candidate, error) {
	if strings.TrimSpace(e.ID) == "" {
		return cart.Candidate{}, errors.New("id is required")
	}
	if strings.TrimSpace(e.Name) == "" {
		return cart.Candidate{}, errors.New("name is required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(e.Price))
	if err != nil {
		return cart.Candidate{}, fmt.Errorf("price: %w", err)
	}
	if price.IsNegative() {
		return cart.Candidate{}, errors.New("price must not be negative")
	}
	return cart.Candidate{
		ID:       cart.ID(e.ID),
		Name:     e.Name,
		Price:    price,
		Image:    e.Image,
		Category: e.Category,
	}, nil
}
