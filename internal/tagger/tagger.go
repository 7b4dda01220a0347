// Package tagger infers cuisine-adjacent dietary restriction tags from
// ingredient text using ordered keyword heuristics.
//
// The heuristic is conservative: a tag is added only when no indicator for
// its restriction appears anywhere in the ingredient text. It can still
// mislabel (meat synonyms it does not know about), so callers must treat
// the output as a best-effort hint, never a certified claim.
package tagger

import "strings"

// Dietary tags the tagger can infer.
const (
	TagVegetarian = "vegetarian"
	TagVegan      = "vegan"
	TagGlutenFree = "gluten-free"
	TagDairyFree  = "dairy-free"
	TagNutFree    = "nut-free"
)

var (
	meatIndicators = []string{
		"chicken", "beef", "pork", "lamb", "turkey", "duck", "veal", "bacon",
		"ham", "sausage", "salami", "prosciutto", "fish", "salmon", "tuna",
		"cod", "anchovy", "shrimp", "prawn", "crab", "lobster", "clam",
		"mussel", "oyster", "squid", "octopus", "meat", "steak", "mince",
		"gelatin",
	}
	animalProductIndicators = []string{
		"egg", "honey", "milk", "cream", "butter", "cheese", "yogurt",
		"yoghurt", "ghee", "whey", "casein", "lard", "mayonnaise",
	}
	glutenIndicators = []string{
		"wheat", "flour", "bread", "pasta", "noodle", "couscous", "barley",
		"rye", "semolina", "spelt", "bulgur", "cracker", "breadcrumb",
		"tortilla", "soy sauce", "beer", "seitan",
	}
	dairyIndicators = []string{
		"milk", "cream", "butter", "cheese", "yogurt", "yoghurt", "ghee",
		"whey", "casein", "custard", "parmesan", "mozzarella", "cheddar",
		"ricotta", "mascarpone", "feta",
	}
	nutIndicators = []string{
		"almond", "cashew", "walnut", "pecan", "pistachio", "hazelnut",
		"macadamia", "peanut", "pine nut", "brazil nut", "chestnut",
		"nut butter", "praline", "marzipan", "nutella",
	}
)

// Infer returns the dietary tags supported by the given ingredient names.
// Pure function of its input: re-running on the same list is idempotent.
func Infer(ingredientNames []string) []string {
	blob := strings.ToLower(strings.Join(ingredientNames, " "))

	hasMeat := containsAny(blob, meatIndicators)
	hasAnimal := containsAny(blob, animalProductIndicators)
	// Flax is a common egg substitute; its presence suppresses the
	// animal-product signal. Documented heuristic override, not a general rule.
	if strings.Contains(blob, "flax") {
		hasAnimal = false
	}

	var tags []string
	if !hasMeat {
		tags = append(tags, TagVegetarian)
		if !hasAnimal {
			tags = append(tags, TagVegan)
		}
	}
	if !containsAny(blob, glutenIndicators) {
		tags = append(tags, TagGlutenFree)
	}
	if !containsAny(blob, dairyIndicators) {
		tags = append(tags, TagDairyFree)
	}
	if !containsAny(blob, nutIndicators) {
		tags = append(tags, TagNutFree)
	}
	return tags
}

// Heuristic is an injectable wrapper around Infer for services that take a
// tagger dependency.
type Heuristic struct{}

// Infer implements the tagger contract.
func (Heuristic) Infer(ingredientNames []string) []string {
	return Infer(ingredientNames)
}

func containsAny(blob string, indicators []string) bool {
	for _, ind := range indicators {
		if strings.Contains(blob, ind) {
			return true
		}
	}
	return false
}
