package recipe

import (
	"strconv"
	"strings"
)

// FromRaw builds a Recipe from a heterogeneous source record (JSON-like
// map). Sources disagree on field shapes, so every field tolerates missing
// or oddly-typed values and falls back to a default; only a missing id is
// fatal. The legacy singular "cuisine" field is folded into the canonical
// "cuisines" set.
func FromRaw(raw map[string]any) (Recipe, error) {
	id := rawString(raw, "id")
	if id == "" {
		// Some sources ship numeric ids.
		if f, ok := raw["id"].(float64); ok {
			id = strconv.FormatFloat(f, 'f', -1, 64)
		}
	}

	cuisines := rawStringList(raw, "cuisines")
	if c := rawString(raw, "cuisine"); c != "" {
		cuisines = append(cuisines, c)
	}

	var nutrition *Nutrition
	if m, ok := raw["nutrition"].(map[string]any); ok {
		nutrition = &Nutrition{
			Calories: rawFloat(m, "calories"),
			Protein:  rawFloat(m, "protein"),
			Carbs:    rawFloat(m, "carbs"),
			Fat:      rawFloat(m, "fat"),
		}
	}

	ready := int(rawFloat(raw, "readyInMinutes"))

	return New(
		id,
		rawString(raw, "title"),
		rawString(raw, "description"),
		rawIngredients(raw),
		rawStringList(raw, "instructions"),
		cuisines,
		rawStringList(raw, "diets"),
		nutrition,
		rawString(raw, "source"),
		ready,
	)
}

func rawIngredients(raw map[string]any) []Ingredient {
	list, ok := raw["ingredients"].([]any)
	if !ok {
		return nil
	}
	out := make([]Ingredient, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case string:
			out = append(out, Ingredient{Name: v})
		case map[string]any:
			out = append(out, Ingredient{
				Name:   rawString(v, "name"),
				Amount: rawFloat(v, "amount"),
				Unit:   rawString(v, "unit"),
			})
		}
	}
	return out
}

func rawString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func rawFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

func rawStringList(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		// Comma-joined form from flattened metadata.
		if v == "" {
			return nil
		}
		return strings.Split(v, ",")
	}
	return nil
}
