// Package recipe defines the Recipe aggregate, the canonical unit stored by
// the knowledge store.
package recipe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tastebase/recipedex/internal/domain"
)

// DefaultReadyInMinutes is used when a source record carries no timing.
const DefaultReadyInMinutes = 30

// Ingredient is a single recipe ingredient with human-style quantities.
type Ingredient struct {
	Name   string
	Amount float64
	Unit   string
}

// Nutrition holds optional per-serving macros. All values are non-negative.
type Nutrition struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// Recipe is an immutable value object. Cuisine and diet tags are normalized
// to lowercase sorted sets; id is unique within a store and re-ingestion with
// the same id is an upsert, never a duplicate.
type Recipe struct {
	id             string
	title          string
	description    string
	ingredients    []Ingredient
	instructions   []string
	cuisines       []string
	diets          []string
	nutrition      *Nutrition
	source         string
	readyInMinutes int
}

// New validates and creates a Recipe.
func New(
	id, title, description string,
	ingredients []Ingredient, instructions []string,
	cuisines, diets []string,
	nutrition *Nutrition, source string, readyInMinutes int,
) (Recipe, error) {
	if id == "" {
		return Recipe{}, domain.NewMalformedRecord("id", "required")
	}
	if readyInMinutes <= 0 {
		readyInMinutes = DefaultReadyInMinutes
	}
	if nutrition != nil {
		if nutrition.Calories < 0 || nutrition.Protein < 0 || nutrition.Carbs < 0 || nutrition.Fat < 0 {
			return Recipe{}, domain.NewMalformedRecord("nutrition", "values must be non-negative")
		}
		n := *nutrition
		nutrition = &n
	}

	return Recipe{
		id:             id,
		title:          title,
		description:    description,
		ingredients:    cloneIngredients(ingredients),
		instructions:   append([]string(nil), instructions...),
		cuisines:       NormalizeTags(cuisines),
		diets:          NormalizeTags(diets),
		nutrition:      nutrition,
		source:         source,
		readyInMinutes: readyInMinutes,
	}, nil
}

// Reconstruct creates a Recipe without validation (storage hydration).
func Reconstruct(
	id, title, description string,
	ingredients []Ingredient, instructions []string,
	cuisines, diets []string,
	nutrition *Nutrition, source string, readyInMinutes int,
) Recipe {
	return Recipe{
		id: id, title: title, description: description,
		ingredients: ingredients, instructions: instructions,
		cuisines: cuisines, diets: diets,
		nutrition: nutrition, source: source, readyInMinutes: readyInMinutes,
	}
}

// ID returns the stable recipe identifier.
func (r *Recipe) ID() string { return r.id }

// Title returns the recipe title.
func (r *Recipe) Title() string { return r.title }

// Description returns the free-text description.
func (r *Recipe) Description() string { return r.description }

// Ingredients returns the ordered ingredient list.
func (r *Recipe) Ingredients() []Ingredient { return r.ingredients }

// Instructions returns the ordered step texts.
func (r *Recipe) Instructions() []string { return r.instructions }

// Cuisines returns the normalized cuisine tag set.
func (r *Recipe) Cuisines() []string { return r.cuisines }

// Diets returns the normalized diet tag set, explicit and inferred combined.
func (r *Recipe) Diets() []string { return r.diets }

// Nutrition returns the optional nutrition facts, nil when unknown.
func (r *Recipe) Nutrition() *Nutrition { return r.nutrition }

// Source returns the provenance tag.
func (r *Recipe) Source() string { return r.source }

// ReadyInMinutes returns the preparation time.
func (r *Recipe) ReadyInMinutes() int { return r.readyInMinutes }

// IngredientNames returns the ingredient names in order.
func (r *Recipe) IngredientNames() []string {
	names := make([]string, len(r.ingredients))
	for i, ing := range r.ingredients {
		names[i] = ing.Name
	}
	return names
}

// WithDiets returns a copy with the diet set replaced (used to merge
// inferred dietary tags during ingestion).
func (r Recipe) WithDiets(diets []string) Recipe {
	r.diets = NormalizeTags(diets)
	return r
}

// EmbeddingText builds the document body used as embedding input for
// semantic search: title, cuisines and diet tags. The full recipe JSON is
// stored separately so the embedding input stays focused.
func (r *Recipe) EmbeddingText() string {
	parts := make([]string, 0, 3)
	if r.title != "" {
		parts = append(parts, r.title)
	}
	if len(r.cuisines) > 0 {
		parts = append(parts, strings.Join(r.cuisines, " "))
	}
	if len(r.diets) > 0 {
		parts = append(parts, strings.Join(r.diets, " "))
	}
	return strings.Join(parts, " ")
}

// NormalizeTags lowercases, trims, deduplicates and sorts a tag set.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// HasTag reports whether a normalized tag set contains tag.
func HasTag(tags []string, tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func cloneIngredients(in []Ingredient) []Ingredient {
	if len(in) == 0 {
		return nil
	}
	out := make([]Ingredient, len(in))
	copy(out, in)
	return out
}

// String implements fmt.Stringer for log output.
func (r Recipe) String() string {
	return fmt.Sprintf("recipe(%s: %s)", r.id, r.title)
}
