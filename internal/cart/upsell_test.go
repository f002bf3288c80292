package cart

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecideUpsell(t *testing.T) {
	tests := map[string]struct {
		categories []string
		want       Category
	}{
		"empty cart":                 {categories: nil, want: CategoryNone},
		"duck only":                  {categories: []string{"Duck"}, want: CategoryGoose},
		"goose only":                 {categories: []string{"Goose"}, want: CategoryDuck},
		"duck and goose":             {categories: []string{"Duck", "Goose"}, want: CategoryNone},
		"accessories only":           {categories: []string{"Accessories"}, want: CategoryNone},
		"duck with accessory":        {categories: []string{"Duck", "Accessories"}, want: CategoryGoose},
		"substring match":            {categories: []string{"Duck Calls"}, want: CategoryGoose},
		"case insensitive":           {categories: []string{"GOOSE FLUTES"}, want: CategoryDuck},
		"hyphenated label":           {categories: []string{"duck-something"}, want: CategoryGoose},
		"many ducks still one offer": {categories: []string{"Duck", "duck", "Duck Calls"}, want: CategoryGoose},
		"blank category":             {categories: []string{""}, want: CategoryNone},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			items := make([]Item, 0, len(tt.categories))
			for i, c := range tt.categories {
				items = append(items, Item{
					Candidate: Candidate{ID: ID(fmt.Sprintf("p%d", i)), Category: c},
					Quantity:  1,
				})
			}
			assert.Equal(t, tt.want, DecideUpsell(items))
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Goose ")
	assert.NoError(t, err)
	assert.Equal(t, CategoryGoose, c)
	assert.Equal(t, "Goose", c.Label())

	_, err = ParseCategory("accessories")
	assert.Error(t, err)
}
