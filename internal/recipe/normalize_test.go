package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProductName(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    string
	}{
		{
			name: "brand appended to generic name with detected flavor",
			product: Product{
				Name:            "Greek Yogurt",
				BrandName:       "Oikos",
				IngredientsText: "milk, strawberry puree, cultures",
			},
			want: "Greek Yogurt, Oikos, Strawberry",
		},
		{
			name:    "distinctive name keeps brand out",
			product: Product{Name: "Cheerios Honey Nut", BrandName: "Cheerios"},
			want:    "Cheerios Honey Nut",
		},
		{
			name:    "trailing punctuation stripped",
			product: Product{Name: "Whole Milk..."},
			want:    "Whole Milk",
		},
		{
			name:    "acronym preserved",
			product: Product{Name: "BBQ sauce"},
			want:    "BBQ Sauce",
		},
		{
			name:    "brand fallback when name empty",
			product: Product{BrandName: "acme foods"},
			want:    "Acme Foods",
		},
		{
			name:    "generic fallback when name and brand empty",
			product: Product{GenericName: "rolled oats"},
			want:    "Rolled Oats",
		},
		{
			name:    "empty record degrades to placeholder",
			product: Product{},
			want:    "Unknown Product",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeProductName(tt.product))
		})
	}
}

func TestNormalizeProductNameIdempotent(t *testing.T) {
	products := []Product{
		{Name: "Greek Yogurt", BrandName: "Oikos", IngredientsText: "strawberry puree"},
		{Name: "Cheddar Chips!!", BrandName: "Crunchy Co"},
		{Name: "BBQ sauce"},
		{BrandName: "acme foods"},
		{},
	}
	for _, p := range products {
		once := NormalizeProductName(p)
		twice := NormalizeProductName(Product{Name: once})
		assert.Equal(t, once, twice, "normalization must be idempotent for %q", once)
	}
}

func TestNormalizeProductNameDedupesWordsAcrossParts(t *testing.T) {
	got := NormalizeProductName(Product{
		Name:        "Tomato Soup",
		GenericName: "soup tomato condensed",
	})
	// "soup" and "tomato" already appear in the name; only the new word
	// survives from the generic part.
	assert.Equal(t, "Tomato Soup, Condensed", got)
}

func TestExtractSearchTokens(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Organic Chicken Breast Strips", []string{"chicken"}},
		{"chicken and rice with onion soup", []string{"chicken", "rice", "onion"}},
		{"Brandname Crunchy Bites", []string{"brandname"}},
		{"Organic Goodness", nil},
		{"ab", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSearchTokens(tt.input))
		})
	}
}
