// Package filter evaluates structured recipe filters: cuisine and diet tag
// sets with OR semantics inside a dimension, case-insensitive substring
// matches for ingredient and free text, AND across supplied dimensions.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tastebase/recipedex/internal/domain"
	"github.com/tastebase/recipedex/internal/domain/recipe"
)

// Supported filter dimension keys.
const (
	KeyCuisines   = "cuisines"
	KeyDiets      = "diets"
	KeyIngredient = "ingredient"
	KeyFreeText   = "freeText"
)

// Filter is a validated, immutable filter expression. An absent dimension
// means no constraint on that dimension, not "must be empty".
type Filter struct {
	cuisines   []string
	diets      []string
	ingredient string
	freeText   string
}

// New validates and creates a Filter. Tag sets are normalized so that two
// semantically equal filters compare equal regardless of input order.
func New(cuisines, diets []string, ingredient, freeText string) Filter {
	return Filter{
		cuisines:   recipe.NormalizeTags(cuisines),
		diets:      recipe.NormalizeTags(diets),
		ingredient: strings.ToLower(strings.TrimSpace(ingredient)),
		freeText:   strings.ToLower(strings.TrimSpace(freeText)),
	}
}

// FromMap builds a Filter from an untyped request map. Unknown keys or
// wrongly-typed values are a client-input error, not an internal fault.
func FromMap(m map[string]any) (Filter, error) {
	var cuisines, diets []string
	var ingredient, freeText string

	for key, val := range m {
		switch key {
		case KeyCuisines, KeyDiets:
			tags, err := tagList(val)
			if err != nil {
				return Filter{}, fmt.Errorf("%w: %s: %w", domain.ErrInvalidFilter, key, err)
			}
			if key == KeyCuisines {
				cuisines = tags
			} else {
				diets = tags
			}
		case KeyIngredient, KeyFreeText:
			s, ok := val.(string)
			if !ok {
				return Filter{}, fmt.Errorf("%w: %s must be a string", domain.ErrInvalidFilter, key)
			}
			if key == KeyIngredient {
				ingredient = s
			} else {
				freeText = s
			}
		default:
			return Filter{}, fmt.Errorf("%w: unsupported key %q", domain.ErrInvalidFilter, key)
		}
	}

	return New(cuisines, diets, ingredient, freeText), nil
}

func tagList(val any) ([]string, error) {
	switch v := val.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("list values must be strings")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("must be a list of strings")
	}
}

// Cuisines returns the requested cuisine set.
func (f Filter) Cuisines() []string { return f.cuisines }

// Diets returns the requested diet set.
func (f Filter) Diets() []string { return f.diets }

// Ingredient returns the ingredient substring constraint.
func (f Filter) Ingredient() string { return f.ingredient }

// FreeText returns the free-text substring constraint.
func (f Filter) FreeText() string { return f.freeText }

// IsEmpty reports whether the filter has no constraints.
func (f Filter) IsEmpty() bool {
	return len(f.cuisines) == 0 && len(f.diets) == 0 && f.ingredient == "" && f.freeText == ""
}

// Matches evaluates the filter against one recipe. Each supplied dimension
// must hold; tag dimensions match on set intersection, so a recipe tagged
// with several requested cuisines still counts exactly once.
func (f Filter) Matches(rec *recipe.Recipe) bool {
	if len(f.cuisines) > 0 && !intersects(rec.Cuisines(), f.cuisines) {
		return false
	}
	if len(f.diets) > 0 && !intersects(rec.Diets(), f.diets) {
		return false
	}
	if f.ingredient != "" && !anyIngredientContains(rec, f.ingredient) {
		return false
	}
	if f.freeText != "" {
		if !strings.Contains(strings.ToLower(rec.Title()), f.freeText) &&
			!strings.Contains(strings.ToLower(rec.Description()), f.freeText) &&
			!anyIngredientContains(rec, f.freeText) {
			return false
		}
	}
	return true
}

func intersects(have, want []string) bool {
	for _, w := range want {
		if recipe.HasTag(have, w) {
			return true
		}
	}
	return false
}

func anyIngredientContains(rec *recipe.Recipe, substr string) bool {
	for _, ing := range rec.Ingredients() {
		if strings.Contains(strings.ToLower(ing.Name), substr) {
			return true
		}
	}
	return false
}

// Canonical renders the filter as a stable string: dimensions in fixed
// order, tag values sorted. Used for content-addressed cache keys.
func (f Filter) Canonical() string {
	var b strings.Builder
	writeDim := func(key string, vals []string) {
		sorted := append([]string(nil), vals...)
		sort.Strings(sorted)
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(strings.Join(sorted, ","))
		b.WriteByte(';')
	}
	writeDim(KeyCuisines, f.cuisines)
	writeDim(KeyDiets, f.diets)
	b.WriteString(KeyIngredient)
	b.WriteByte('=')
	b.WriteString(f.ingredient)
	b.WriteByte(';')
	b.WriteString(KeyFreeText)
	b.WriteByte('=')
	b.WriteString(f.freeText)
	return b.String()
}
