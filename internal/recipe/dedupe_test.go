package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeKeyInvariance(t *testing.T) {
	first := Recipe{ID: "a", Title: "Chicken Soup"}
	second := Recipe{ID: "b", Title: "chicken, soup!!"}

	out := Dedupe([]Recipe{first, second})

	assert.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ID)
}

func TestDedupeKeepsFirstOccurrenceOrder(t *testing.T) {
	out := Dedupe([]Recipe{
		{ID: "1", Title: "Pasta Primavera"},
		{ID: "2", Title: "Chicken Soup"},
		{ID: "3", Title: "PASTA   primavera"},
		{ID: "4", Title: "Beef Stew"},
	})

	assert.Len(t, out, 3)
	assert.Equal(t, []string{"1", "2", "4"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func TestDedupeKey(t *testing.T) {
	assert.Equal(t, "chicken soup", DedupeKey("  Chicken,   SOUP!! "))
	assert.Equal(t, DedupeKey("Chicken Soup"), DedupeKey("chicken, soup!!"))
}

func TestDedupeEmpty(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
}
