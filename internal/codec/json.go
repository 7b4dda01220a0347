package codec

import (
	"encoding/json"
	"fmt"

	"github.com/tastebase/recipedex/internal/domain/recipe"
)

// RecipeDTO is the full-fidelity JSON form of a recipe. It backs the stored
// document body and the sync export file format.
type RecipeDTO struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Ingredients    []ingredientDTO `json:"ingredients,omitempty"`
	Instructions   []string        `json:"instructions,omitempty"`
	Cuisines       []string        `json:"cuisines,omitempty"`
	Diets          []string        `json:"diets,omitempty"`
	Nutrition      *nutritionDTO   `json:"nutrition,omitempty"`
	Source         string          `json:"source,omitempty"`
	ReadyInMinutes int             `json:"readyInMinutes,omitempty"`
}

type nutritionDTO struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// ToDTO converts a recipe to its JSON transfer form.
func ToDTO(rec *recipe.Recipe) RecipeDTO {
	dto := RecipeDTO{
		ID:             rec.ID(),
		Title:          rec.Title(),
		Description:    rec.Description(),
		Instructions:   rec.Instructions(),
		Cuisines:       rec.Cuisines(),
		Diets:          rec.Diets(),
		Source:         rec.Source(),
		ReadyInMinutes: rec.ReadyInMinutes(),
	}
	for _, ing := range rec.Ingredients() {
		dto.Ingredients = append(dto.Ingredients, ingredientDTO{
			Name: ing.Name, Amount: ing.Amount, Unit: ing.Unit,
		})
	}
	if n := rec.Nutrition(); n != nil {
		dto.Nutrition = &nutritionDTO{
			Calories: n.Calories, Protein: n.Protein, Carbs: n.Carbs, Fat: n.Fat,
		}
	}
	return dto
}

// FromDTO reconstructs a recipe from its JSON transfer form.
func FromDTO(dto RecipeDTO) recipe.Recipe {
	ingredients := make([]recipe.Ingredient, len(dto.Ingredients))
	for i, ing := range dto.Ingredients {
		ingredients[i] = recipe.Ingredient{Name: ing.Name, Amount: ing.Amount, Unit: ing.Unit}
	}
	var nutrition *recipe.Nutrition
	if dto.Nutrition != nil {
		nutrition = &recipe.Nutrition{
			Calories: dto.Nutrition.Calories,
			Protein:  dto.Nutrition.Protein,
			Carbs:    dto.Nutrition.Carbs,
			Fat:      dto.Nutrition.Fat,
		}
	}
	ready := dto.ReadyInMinutes
	if ready <= 0 {
		ready = recipe.DefaultReadyInMinutes
	}
	return recipe.Reconstruct(
		dto.ID, dto.Title, dto.Description,
		ingredients, dto.Instructions,
		dto.Cuisines, dto.Diets,
		nutrition, dto.Source, ready,
	)
}

// EncodeJSON serializes a recipe to its stored JSON document body.
func EncodeJSON(rec *recipe.Recipe) (string, error) {
	data, err := json.Marshal(ToDTO(rec))
	if err != nil {
		return "", fmt.Errorf("encode recipe json: %w", err)
	}
	return string(data), nil
}

// DecodeJSON parses a stored JSON document body back into a recipe.
func DecodeJSON(s string) (recipe.Recipe, error) {
	var dto RecipeDTO
	if err := json.Unmarshal([]byte(s), &dto); err != nil {
		return recipe.Recipe{}, fmt.Errorf("decode recipe json: %w", err)
	}
	if dto.ID == "" {
		return recipe.Recipe{}, fmt.Errorf("decode recipe json: missing id")
	}
	return FromDTO(dto), nil
}
