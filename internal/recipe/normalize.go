package recipe

import (
	"regexp"
	"strings"
)

// Product is an externally fetched product record, e.g. an OpenFoodFacts
// entry resolved from a barcode. Every field is optional; normalization
// degrades instead of failing.
type Product struct {
	Name            string `json:"product_name"`
	BrandName       string `json:"brands"`
	GenericName     string `json:"generic_name"`
	IngredientsText string `json:"ingredients_text"`
	Flavor          string `json:"flavor"`
	Category        string `json:"categories"`
}

// flavorVocabulary is scanned against the concatenated product text with
// word-boundary matching. First hit wins.
var flavorVocabulary = []string{
	"chocolate", "vanilla", "strawberry", "raspberry", "blueberry",
	"banana", "caramel", "hazelnut", "peanut butter", "almond",
	"coconut", "lemon", "lime", "orange", "mango", "peach", "apple",
	"cherry", "grape", "watermelon", "cinnamon", "honey", "maple",
	"mint", "coffee", "mocha", "matcha", "pumpkin", "ginger",
	"barbecue", "bbq", "sour cream", "cheddar", "ranch", "salted",
	"spicy", "garlic", "onion", "original",
}

// categoryWords marks names that read as a bare category ("Yogurt",
// "Chips") rather than a distinctive product name. A generic-looking name
// gets the brand prepended so the pantry entry stays distinguishable.
var categoryWords = []string{
	"yogurt", "yoghurt", "milk", "cheese", "bread", "cereal", "chips",
	"crackers", "juice", "soda", "water", "tea", "coffee", "butter",
	"cream", "sauce", "soup", "pasta", "rice", "beans", "oil",
	"flour", "sugar", "salt", "snack", "bar", "bars", "cookies",
	"candy", "drink", "spread", "dressing", "granola", "oats",
}

// searchVocabulary backs ExtractSearchTokens: the common ingredients worth
// querying an external recipe source for.
var searchVocabulary = []string{
	"chicken", "beef", "pork", "lamb", "turkey", "fish", "salmon",
	"tuna", "shrimp", "egg", "eggs", "rice", "pasta", "noodles",
	"potato", "potatoes", "tomato", "tomatoes", "onion", "garlic",
	"carrot", "broccoli", "spinach", "mushroom", "pepper", "corn",
	"beans", "lentils", "chickpeas", "tofu", "cheese", "milk",
	"yogurt", "butter", "cream", "bread", "flour", "oats", "quinoa",
	"avocado", "lemon", "lime", "apple", "banana", "honey",
}

// searchStopWords are brand/marketing words that make a useless first-word
// fallback query.
var searchStopWords = map[string]bool{
	"organic": true, "natural": true, "premium": true, "fresh": true,
	"original": true, "classic": true, "deluxe": true, "select": true,
	"great": true, "value": true, "brand": true, "style": true,
	"lite": true, "light": true, "low": true, "reduced": true,
	"free": true, "extra": true, "simply": true, "pure": true,
}

var (
	trailingPunct  = regexp.MustCompile(`[\s.,;:!?\-–—]+$`)
	nonWordChars   = regexp.MustCompile(`[^\w\s]`)
	multiSpace     = regexp.MustCompile(`\s+`)
	wordSplitter   = regexp.MustCompile(`\s+`)
	firstWordSplit = regexp.MustCompile(`[\s,]+`)
)

// NormalizeProductName turns a noisy product record into a canonical
// display name. It never fails; with nothing usable it returns
// "Unknown Product".
func NormalizeProductName(p Product) string {
	name := trailingPunct.ReplaceAllString(strings.TrimSpace(p.Name), "")
	brand := trailingPunct.ReplaceAllString(strings.TrimSpace(p.BrandName), "")
	generic := trailingPunct.ReplaceAllString(strings.TrimSpace(p.GenericName), "")

	detectedFlavor := detectFlavor(name + " " + generic + " " + p.IngredientsText)

	// Ordered candidate parts. Each is included only when it is not
	// already a case-insensitive substring of the name.
	var parts []string
	if name != "" {
		parts = append(parts, name)
	}
	if brand != "" && !containsFold(name, brand) && looksGeneric(name, generic) {
		parts = append(parts, brand)
	}
	for _, extra := range []string{detectedFlavor, strings.TrimSpace(p.Flavor), generic} {
		if extra != "" && !containsFold(name, extra) {
			parts = append(parts, extra)
		}
	}

	parts = dedupeWordsAcross(parts)
	if len(parts) == 0 {
		if brand != "" {
			return smartTitleCase(brand)
		}
		if generic != "" {
			return smartTitleCase(generic)
		}
		return "Unknown Product"
	}

	return smartTitleCase(strings.Join(parts, ", "))
}

// detectFlavor scans the flavor vocabulary against text with word-boundary
// matching. First vocabulary hit wins, not best match.
func detectFlavor(text string) string {
	lower := strings.ToLower(text)
	for _, flavor := range flavorVocabulary {
		if matchesWholeWord(lower, flavor) {
			return flavor
		}
	}
	return ""
}

// looksGeneric reports whether the product name reads as a bare category
// word. An explicit generic-name field also counts.
func looksGeneric(name, generic string) bool {
	if generic != "" {
		return true
	}
	lower := strings.ToLower(name)
	for _, w := range categoryWords {
		if matchesWholeWord(lower, w) {
			return true
		}
	}
	return false
}

// dedupeWordsAcross removes repeated whole words across the assembled
// parts, not just within one field. Parts left empty are dropped.
func dedupeWordsAcross(parts []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		words := wordSplitter.Split(strings.TrimSpace(part), -1)
		kept := make([]string, 0, len(words))
		for _, w := range words {
			key := strings.ToLower(nonWordChars.ReplaceAllString(w, ""))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			kept = append(kept, w)
		}
		if len(kept) > 0 {
			out = append(out, strings.Join(kept, " "))
		}
	}
	return out
}

// smartTitleCase capitalizes each token, preserving multi-character
// all-caps tokens as acronyms (e.g. "BBQ").
func smartTitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 1 && w == strings.ToUpper(w) && w != strings.ToLower(w) {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// ExtractSearchTokens picks up to three short tokens from free text for
// querying an external recipe source. Vocabulary words win; otherwise the
// first word is used unless it is a stop word or too short to query.
func ExtractSearchTokens(freeText string) []string {
	lower := strings.ToLower(freeText)

	var tokens []string
	for _, word := range searchVocabulary {
		if matchesWholeWord(lower, word) {
			tokens = append(tokens, word)
			if len(tokens) == 3 {
				return tokens
			}
		}
	}
	if len(tokens) > 0 {
		return tokens
	}

	fields := firstWordSplit.Split(strings.TrimSpace(lower), -1)
	if len(fields) == 0 {
		return nil
	}
	first := nonWordChars.ReplaceAllString(fields[0], "")
	if len(first) <= 2 || searchStopWords[first] {
		return nil
	}
	return []string{first}
}

func matchesWholeWord(haystack, needle string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(needle) + `\b`)
	return re.MatchString(haystack)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
