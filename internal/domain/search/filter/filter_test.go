package filter

import (
	"errors"
	"testing"

	"github.com/tastebase/recipedex/internal/domain"
	"github.com/tastebase/recipedex/internal/domain/recipe"
)

func mustRecipe(t *testing.T, id, title string, ingredients []string, cuisines, diets []string) recipe.Recipe {
	t.Helper()
	ings := make([]recipe.Ingredient, len(ingredients))
	for i, name := range ingredients {
		ings[i] = recipe.Ingredient{Name: name}
	}
	r, err := recipe.New(id, title, "", ings, nil, cuisines, diets, nil, "", 0)
	if err != nil {
		t.Fatalf("build recipe: %v", err)
	}
	return r
}

func TestFromMap_UnknownKey(t *testing.T) {
	_, err := FromMap(map[string]any{"cusine": []any{"thai"}})
	if !errors.Is(err, domain.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestFromMap_WrongTypes(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
	}{
		{"cuisines scalar", map[string]any{"cuisines": "thai"}},
		{"diets mixed list", map[string]any{"diets": []any{"vegan", 3}}},
		{"ingredient number", map[string]any{"ingredient": 7}},
		{"freeText list", map[string]any{"freeText": []any{"x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromMap(tt.in); !errors.Is(err, domain.ErrInvalidFilter) {
				t.Errorf("expected ErrInvalidFilter, got %v", err)
			}
		})
	}
}

func TestFromMap_Valid(t *testing.T) {
	f, err := FromMap(map[string]any{
		"cuisines":   []any{"Thai", "Italian"},
		"diets":      []string{"vegan"},
		"ingredient": "Tofu",
		"freeText":   "Spicy",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Cuisines()) != 2 || f.Cuisines()[0] != "italian" {
		t.Errorf("expected normalized cuisines, got %v", f.Cuisines())
	}
	if f.Ingredient() != "tofu" || f.FreeText() != "spicy" {
		t.Errorf("expected lowercased substrings, got %q %q", f.Ingredient(), f.FreeText())
	}
}

func TestMatches_EmptyFilterMatchesEverything(t *testing.T) {
	r := mustRecipe(t, "r1", "Plain Rice", []string{"rice"}, nil, nil)
	f := New(nil, nil, "", "")
	if !f.IsEmpty() {
		t.Fatal("expected empty filter")
	}
	if !f.Matches(&r) {
		t.Error("empty filter must match")
	}
}

func TestMatches_TagOrWithinDimension(t *testing.T) {
	r := mustRecipe(t, "r1", "Green Curry", []string{"coconut milk"}, []string{"thai"}, nil)

	if !New([]string{"thai", "italian"}, nil, "", "").Matches(&r) {
		t.Error("any requested cuisine should match (OR)")
	}
	if New([]string{"italian", "french"}, nil, "", "").Matches(&r) {
		t.Error("no overlapping cuisine, must not match")
	}
}

func TestMatches_AndAcrossDimensions(t *testing.T) {
	r := mustRecipe(t, "r1", "Green Curry",
		[]string{"tofu", "coconut milk"}, []string{"thai"}, []string{"vegan"})

	if !New([]string{"thai"}, []string{"vegan"}, "tofu", "").Matches(&r) {
		t.Error("all dimensions satisfied, must match")
	}
	if New([]string{"thai"}, []string{"vegan"}, "beef", "").Matches(&r) {
		t.Error("failed ingredient dimension, must not match")
	}
}

func TestMatches_IngredientSubstringCaseInsensitive(t *testing.T) {
	r := mustRecipe(t, "r1", "Stir Fry", []string{"Baby Corn"}, nil, nil)
	if !New(nil, nil, "CORN", "").Matches(&r) {
		t.Error("expected case-insensitive substring match")
	}
}

func TestMatches_FreeTextTitleDescriptionIngredients(t *testing.T) {
	r := mustRecipe(t, "r1", "Spicy Noodles", []string{"chili oil"}, nil, nil)

	if !New(nil, nil, "", "spicy").Matches(&r) {
		t.Error("free text should match title")
	}
	if !New(nil, nil, "", "chili").Matches(&r) {
		t.Error("free text should match ingredient names")
	}
	if New(nil, nil, "", "chocolate").Matches(&r) {
		t.Error("free text present nowhere, must not match")
	}
}

func TestCanonical_OrderIndependent(t *testing.T) {
	a := New([]string{"thai", "italian"}, []string{"vegan", "gluten-free"}, "tofu", "curry")
	b := New([]string{"Italian", "THAI"}, []string{"gluten-free", "Vegan"}, " Tofu ", "Curry")

	if a.Canonical() != b.Canonical() {
		t.Errorf("equivalent filters disagree:\n%s\n%s", a.Canonical(), b.Canonical())
	}
}

func TestCanonical_DistinguishesFilters(t *testing.T) {
	a := New([]string{"thai"}, nil, "", "")
	b := New(nil, []string{"thai"}, "", "")
	if a.Canonical() == b.Canonical() {
		t.Error("cuisine and diet constraints must not collide")
	}
}
