package recipe

import (
	"errors"
	"testing"

	"github.com/tastebase/recipedex/internal/domain"
)

func TestNew_RequiresID(t *testing.T) {
	_, err := New("", "Pad Thai", "", nil, nil, nil, nil, nil, "", 0)
	if !errors.Is(err, domain.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestNew_DefaultReadyInMinutes(t *testing.T) {
	r, err := New("r1", "Pad Thai", "", nil, nil, nil, nil, nil, "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ReadyInMinutes() != DefaultReadyInMinutes {
		t.Errorf("expected default %d, got %d", DefaultReadyInMinutes, r.ReadyInMinutes())
	}

	r, err = New("r1", "Pad Thai", "", nil, nil, nil, nil, nil, "", 45)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ReadyInMinutes() != 45 {
		t.Errorf("expected 45, got %d", r.ReadyInMinutes())
	}
}

func TestNew_RejectsNegativeNutrition(t *testing.T) {
	_, err := New("r1", "Cake", "", nil, nil, nil, nil, &Nutrition{Calories: -1}, "", 0)
	if !errors.Is(err, domain.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestNew_NormalizesTags(t *testing.T) {
	r, err := New("r1", "Tacos", "",
		nil, nil,
		[]string{"Mexican", " mexican ", "TEX-MEX"},
		[]string{"Vegan", "vegan"},
		nil, "", 0,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCuisines := []string{"mexican", "tex-mex"}
	if got := r.Cuisines(); len(got) != len(wantCuisines) {
		t.Fatalf("expected cuisines %v, got %v", wantCuisines, got)
	}
	for i, c := range wantCuisines {
		if r.Cuisines()[i] != c {
			t.Errorf("cuisine[%d]: expected %q, got %q", i, c, r.Cuisines()[i])
		}
	}
	if len(r.Diets()) != 1 || r.Diets()[0] != "vegan" {
		t.Errorf("expected diets [vegan], got %v", r.Diets())
	}
}

func TestNormalizeTags_SortedDeduped(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, nil},
		{"all blank", []string{"", "  "}, nil},
		{"mixed case dupes", []string{"Thai", "thai", "Italian"}, []string{"italian", "thai"}},
		{"trims", []string{" asian  "}, []string{"asian"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTags(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("index %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestWithDiets_DoesNotMutateOriginal(t *testing.T) {
	r, _ := New("r1", "Soup", "", nil, nil, nil, []string{"vegan"}, nil, "", 0)

	r2 := r.WithDiets([]string{"vegetarian", "gluten-free"})

	if len(r.Diets()) != 1 || r.Diets()[0] != "vegan" {
		t.Errorf("original mutated: %v", r.Diets())
	}
	if len(r2.Diets()) != 2 {
		t.Errorf("expected 2 diets on copy, got %v", r2.Diets())
	}
}

func TestEmbeddingText(t *testing.T) {
	r, _ := New("r1", "Green Curry", "",
		nil, nil,
		[]string{"thai"}, []string{"vegan"},
		nil, "", 0,
	)
	want := "Green Curry thai vegan"
	if got := r.EmbeddingText(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEmbeddingText_TitleOnly(t *testing.T) {
	r, _ := New("r1", "Toast", "", nil, nil, nil, nil, nil, "", 0)
	if got := r.EmbeddingText(); got != "Toast" {
		t.Errorf("expected %q, got %q", "Toast", got)
	}
}

func TestFromRaw_Defaults(t *testing.T) {
	r, err := FromRaw(map[string]any{"id": "r1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID() != "r1" {
		t.Errorf("expected id r1, got %q", r.ID())
	}
	if r.ReadyInMinutes() != DefaultReadyInMinutes {
		t.Errorf("expected default ready time, got %d", r.ReadyInMinutes())
	}
	if r.Title() != "" || len(r.Ingredients()) != 0 {
		t.Errorf("expected empty fields, got %v", r)
	}
}

func TestFromRaw_MissingID(t *testing.T) {
	_, err := FromRaw(map[string]any{"title": "No ID"})
	if !errors.Is(err, domain.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestFromRaw_NumericID(t *testing.T) {
	r, err := FromRaw(map[string]any{"id": float64(42)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID() != "42" {
		t.Errorf("expected id 42, got %q", r.ID())
	}
}

func TestFromRaw_LegacyCuisineFolded(t *testing.T) {
	r, err := FromRaw(map[string]any{
		"id":      "r1",
		"cuisine": "Thai",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Cuisines()) != 1 || r.Cuisines()[0] != "thai" {
		t.Errorf("expected cuisines [thai], got %v", r.Cuisines())
	}

	// Both fields present, plural wins and singular merges in.
	r, err = FromRaw(map[string]any{
		"id":       "r2",
		"cuisines": []any{"italian"},
		"cuisine":  "Thai",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Cuisines()) != 2 {
		t.Errorf("expected merged cuisine set, got %v", r.Cuisines())
	}
}

func TestFromRaw_IngredientShapes(t *testing.T) {
	r, err := FromRaw(map[string]any{
		"id": "r1",
		"ingredients": []any{
			"salt",
			map[string]any{"name": "rice", "amount": float64(200), "unit": "g"},
			float64(3), // unknown shape, dropped
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Ingredients()) != 2 {
		t.Fatalf("expected 2 ingredients, got %v", r.Ingredients())
	}
	if r.Ingredients()[0].Name != "salt" {
		t.Errorf("expected salt, got %q", r.Ingredients()[0].Name)
	}
	if r.Ingredients()[1].Amount != 200 || r.Ingredients()[1].Unit != "g" {
		t.Errorf("expected 200g rice, got %+v", r.Ingredients()[1])
	}
}

func TestFromRaw_Nutrition(t *testing.T) {
	r, err := FromRaw(map[string]any{
		"id": "r1",
		"nutrition": map[string]any{
			"calories": float64(520),
			"protein":  "12.5", // string-typed numerics tolerated
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := r.Nutrition()
	if n == nil {
		t.Fatal("expected nutrition")
	}
	if n.Calories != 520 || n.Protein != 12.5 {
		t.Errorf("expected calories=520 protein=12.5, got %+v", n)
	}
}

func TestHasTag(t *testing.T) {
	tags := []string{"thai", "vegan"}
	if !HasTag(tags, "Thai") {
		t.Error("expected case-insensitive match")
	}
	if HasTag(tags, "italian") {
		t.Error("expected no match")
	}
}
