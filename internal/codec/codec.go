// Package codec flattens recipes into the scalar-only metadata form the
// document+vector backend accepts, and recovers the filterable subset.
//
// The per-field encoding table is fixed:
//
//	id, title, description, source  -> string passthrough
//	cuisines, diets                 -> comma-joined string sets
//	cuisine                         -> legacy alias, first canonical cuisine
//	readyInMinutes                  -> integer string
//	calories, protein, carbs, fat   -> numeric strings (from nutrition)
//	ingredients, instructions       -> opaque JSON blobs
//
// Decode reverses only what FilterEngine and the dietary tagger need; the
// opaque blobs round-trip for filtering but full fidelity lives in the
// paired document field.
package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tastebase/recipedex/internal/domain/recipe"
)

// Metadata field names.
const (
	FieldID             = "id"
	FieldTitle          = "title"
	FieldDescription    = "description"
	FieldSource         = "source"
	FieldCuisines       = "cuisines"
	FieldCuisine        = "cuisine" // legacy singular alias
	FieldDiets          = "diets"
	FieldReadyInMinutes = "readyInMinutes"
	FieldCalories       = "calories"
	FieldProtein        = "protein"
	FieldCarbs          = "carbs"
	FieldFat            = "fat"
	FieldIngredients    = "ingredients"
	FieldInstructions   = "instructions"
)

const setSeparator = ","

type ingredientDTO struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount,omitempty"`
	Unit   string  `json:"unit,omitempty"`
}

// Encode flattens a recipe into scalar-only metadata.
func Encode(rec *recipe.Recipe) (map[string]string, error) {
	m := map[string]string{
		FieldID:             rec.ID(),
		FieldTitle:          rec.Title(),
		FieldDescription:    rec.Description(),
		FieldSource:         rec.Source(),
		FieldCuisines:       strings.Join(rec.Cuisines(), setSeparator),
		FieldDiets:          strings.Join(rec.Diets(), setSeparator),
		FieldReadyInMinutes: strconv.Itoa(rec.ReadyInMinutes()),
	}
	if cs := rec.Cuisines(); len(cs) > 0 {
		m[FieldCuisine] = cs[0]
	}
	if n := rec.Nutrition(); n != nil {
		m[FieldCalories] = formatFloat(n.Calories)
		m[FieldProtein] = formatFloat(n.Protein)
		m[FieldCarbs] = formatFloat(n.Carbs)
		m[FieldFat] = formatFloat(n.Fat)
	}

	ings := make([]ingredientDTO, len(rec.Ingredients()))
	for i, ing := range rec.Ingredients() {
		ings[i] = ingredientDTO{Name: ing.Name, Amount: ing.Amount, Unit: ing.Unit}
	}
	ingJSON, err := json.Marshal(ings)
	if err != nil {
		return nil, fmt.Errorf("encode ingredients: %w", err)
	}
	m[FieldIngredients] = string(ingJSON)

	instJSON, err := json.Marshal(rec.Instructions())
	if err != nil {
		return nil, fmt.Errorf("encode instructions: %w", err)
	}
	m[FieldInstructions] = string(instJSON)

	return m, nil
}

// Decode reconstructs the filterable subset of a recipe from flattened
// metadata. Malformed blob fields decode to empty values rather than
// failing: one bad field must never abort ingestion or serving.
func Decode(m map[string]string) (recipe.Recipe, error) {
	id := m[FieldID]
	if id == "" {
		return recipe.Recipe{}, fmt.Errorf("decode metadata: missing id")
	}

	var ingredients []recipe.Ingredient
	if raw := m[FieldIngredients]; raw != "" {
		var dtos []ingredientDTO
		if err := json.Unmarshal([]byte(raw), &dtos); err == nil {
			ingredients = make([]recipe.Ingredient, len(dtos))
			for i, d := range dtos {
				ingredients[i] = recipe.Ingredient{Name: d.Name, Amount: d.Amount, Unit: d.Unit}
			}
		}
	}

	var instructions []string
	if raw := m[FieldInstructions]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &instructions)
	}

	cuisines := splitSet(m[FieldCuisines])
	if len(cuisines) == 0 && m[FieldCuisine] != "" {
		// Legacy records carry only the singular field.
		cuisines = []string{m[FieldCuisine]}
	}

	var nutrition *recipe.Nutrition
	if m[FieldCalories] != "" || m[FieldProtein] != "" || m[FieldCarbs] != "" || m[FieldFat] != "" {
		nutrition = &recipe.Nutrition{
			Calories: parseFloat(m[FieldCalories]),
			Protein:  parseFloat(m[FieldProtein]),
			Carbs:    parseFloat(m[FieldCarbs]),
			Fat:      parseFloat(m[FieldFat]),
		}
	}

	ready, _ := strconv.Atoi(m[FieldReadyInMinutes])
	if ready <= 0 {
		ready = recipe.DefaultReadyInMinutes
	}

	return recipe.Reconstruct(
		id,
		m[FieldTitle],
		m[FieldDescription],
		ingredients,
		instructions,
		cuisines,
		splitSet(m[FieldDiets]),
		nutrition,
		m[FieldSource],
		ready,
	), nil
}

// FlattenValue coerces an arbitrary raw-record value to its scalar string
// form per the encoding table: scalars verbatim, flat string lists joined,
// everything else JSON-encoded. Values that fail JSON encoding fall back to
// fmt.Sprint so ingestion never aborts on one malformed field.
func FlattenValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatFloat(val)
	case int:
		return strconv.Itoa(val)
	case []string:
		return strings.Join(val, setSeparator)
	case []any:
		if flat, ok := flatStringList(val); ok {
			return strings.Join(flat, setSeparator)
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func flatStringList(list []any) ([]string, bool) {
	out := make([]string, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

func splitSet(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, setSeparator)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
