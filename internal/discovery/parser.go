package discovery

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"cooksmart/internal/recipe"
)

// Defaults applied when the model omits or mangles a field.
const (
	defaultCookTimeMinutes = 30
	defaultServings        = 4
	fallbackConfidence     = 75
	diagnosticConfidence   = 50
	diagnosticSnippetLen   = 500
)

var arraySpan = regexp.MustCompile(`\[[\s\S]*\]`)

// ParseRecipes converts a generative model's raw text response into
// validated recipes. It never fails: repair tiers are attempted in order,
// first success wins, and total failure yields a single diagnostic recipe
// embedding the start of the raw response. The result is truncated to
// expectedCount but never padded.
func ParseRecipes(raw string, expectedCount int) []recipe.Recipe {
	cleaned := stripMarkdownFences(raw)
	cleaned = repairTruncatedArray(cleaned)

	records, ok := parseArraySpan(cleaned)
	if !ok {
		records, ok = parseStitchedObjects(cleaned)
	}
	if !ok {
		records, ok = parseWholeText(cleaned)
	}
	if !ok || len(records) == 0 {
		return []recipe.Recipe{diagnosticRecipe(raw)}
	}

	recipes := make([]recipe.Recipe, 0, len(records))
	for _, rec := range records {
		recipes = append(recipes, coerceRecord(rec))
	}
	if expectedCount > 0 && len(recipes) > expectedCount {
		recipes = recipes[:expectedCount]
	}
	return recipes
}

// stripMarkdownFences removes ```json / ``` fencing anywhere in the text.
// Applied unconditionally before any parse attempt.
func stripMarkdownFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// repairTruncatedArray targets output cut off mid-record: when the text
// contains '[' but does not end with ']', missing '}' closers are appended
// (opens minus closes) and then the trailing ']' if still absent.
func repairTruncatedArray(s string) string {
	if !strings.Contains(s, "[") || strings.HasSuffix(strings.TrimSpace(s), "]") {
		return s
	}
	opens := strings.Count(s, "{")
	closes := strings.Count(s, "}")
	if opens > closes {
		s += strings.Repeat("}", opens-closes)
	}
	if !strings.HasSuffix(strings.TrimSpace(s), "]") {
		s += "]"
	}
	return s
}

// parseArraySpan extracts the first '[' through the last ']' and parses
// that span.
func parseArraySpan(s string) ([]map[string]any, bool) {
	span := arraySpan.FindString(s)
	if span == "" {
		return nil, false
	}
	return unmarshalRecords(span)
}

// parseStitchedObjects salvages individual top-level {...} objects and
// wraps them in synthesized brackets. This recovers output where the model
// emitted records without the surrounding array.
func parseStitchedObjects(s string) ([]map[string]any, bool) {
	objects := extractBalancedObjects(s)
	if len(objects) == 0 {
		return nil, false
	}
	return unmarshalRecords("[" + strings.Join(objects, ",") + "]")
}

// parseWholeText parses the entire cleaned text directly, accepted only
// when the result is an array.
func parseWholeText(s string) ([]map[string]any, bool) {
	return unmarshalRecords(s)
}

func unmarshalRecords(s string) ([]map[string]any, bool) {
	var records []map[string]any
	if err := json.Unmarshal([]byte(s), &records); err != nil {
		return nil, false
	}
	return records, true
}

// extractBalancedObjects scans for top-level balanced {...} spans,
// ignoring braces inside string literals.
func extractBalancedObjects(s string) []string {
	var objects []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, ch := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					objects = append(objects, s[start:i+1])
					start = -1
				}
			}
		}
	}
	return objects
}

// coerceRecord converts one loosely-typed model record into a Recipe with
// typed defaults. The model's own id is never trusted; IDs are always
// synthesized.
func coerceRecord(rec map[string]any) recipe.Recipe {
	r := recipe.Recipe{
		ID:              newRecipeID(),
		Title:           coerceString(rec["title"], "Untitled Recipe"),
		Calories:        coerceFloat(rec["calories"], 0),
		Protein:         coerceFloat(rec["protein"], 0),
		Carbs:           coerceFloat(rec["carbs"], 0),
		Fat:             coerceFloat(rec["fat"], 0),
		CookTimeMinutes: coerceInt(rec["cook_time_minutes"], defaultCookTimeMinutes),
		Servings:        coerceInt(rec["servings"], defaultServings),
		Ingredients:     coerceIngredients(rec["ingredients"]),
		Instructions:    coerceInstructions(rec["instructions"]),
		Tags:            coerceTags(rec["tags"]),
		Source:          "ai",
	}
	confidence := clampScore(coerceInt(rec["confidence_score"], fallbackConfidence))
	r.ConfidenceScore = &confidence
	return r
}

func newRecipeID() string {
	return fmt.Sprintf("ai-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// diagnosticRecipe is the total-failure placeholder: a single recipe whose
// instructions embed a truncated copy of the raw response for debugging,
// so the UI never shows a blank crash state.
func diagnosticRecipe(raw string) recipe.Recipe {
	snippet := strings.TrimSpace(raw)
	if len(snippet) > diagnosticSnippetLen {
		snippet = snippet[:diagnosticSnippetLen]
	}
	confidence := diagnosticConfidence
	return recipe.Recipe{
		ID:              newRecipeID(),
		Title:           "Recipe generation needs another try",
		CookTimeMinutes: defaultCookTimeMinutes,
		Servings:        defaultServings,
		Ingredients:     []recipe.IngredientItem{},
		Instructions: []string{
			"The recipe service returned a response we could not read. Please try generating again.",
			"Raw response (truncated): " + snippet,
		},
		Tags:            []string{"ai-generated", "parsing-error"},
		ConfidenceScore: &confidence,
		Source:          "ai",
	}
}

func coerceString(v any, fallback string) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return strings.TrimSpace(s)
}

func coerceFloat(v any, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	case int:
		return float64(n)
	}
	return fallback
}

func coerceInt(v any, fallback int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil {
			return int(f)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return int(f)
		}
	case int:
		return n
	}
	return fallback
}

// coerceIngredients accepts either an array of {name, amount, unit}
// objects or a bare array of strings.
func coerceIngredients(v any) []recipe.IngredientItem {
	list, ok := v.([]any)
	if !ok {
		return []recipe.IngredientItem{}
	}
	items := make([]recipe.IngredientItem, 0, len(list))
	for _, entry := range list {
		switch e := entry.(type) {
		case string:
			if strings.TrimSpace(e) != "" {
				items = append(items, recipe.IngredientItem{Name: strings.TrimSpace(e)})
			}
		case map[string]any:
			name := coerceString(e["name"], "")
			if name == "" {
				continue
			}
			items = append(items, recipe.IngredientItem{
				Name:   name,
				Amount: coerceFloat(e["amount"], 0),
				Unit:   coerceString(e["unit"], ""),
			})
		}
	}
	return items
}

func coerceInstructions(v any) []string {
	steps := coerceStringSlice(v)
	if len(steps) == 0 {
		return []string{"No instructions provided"}
	}
	return steps
}

func coerceTags(v any) []string {
	tags := coerceStringSlice(v)
	if len(tags) == 0 {
		return []string{"ai-generated"}
	}
	return tags
}

func coerceStringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if s, ok := entry.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
