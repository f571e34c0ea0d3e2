package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/recipebox/recipe-api/internal/model"
)

// ParseIDList parses a comma-separated list of integer IDs such as "1, 2,3".
// Whitespace around each ID is ignored. An empty value yields a nil slice,
// meaning no filter. param names the query parameter in errors.
func ParseIDList(param, raw string) ([]int64, error) {
	ids, verr := parseIDList(param, raw)
	if verr != nil {
		return nil, verr
	}
	return ids, nil
}

func parseIDList(param, raw string) ([]int64, *ValidationError) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	tokens := strings.Split(raw, ",")
	ids := make([]int64, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		id, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, newValidationError(param, fmt.Sprintf("%q is not a valid integer id.", tok))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseRecipeFilter builds a filter from the raw tags and ingredients query values.
func ParseRecipeFilter(tags, ingredients string) (model.RecipeFilter, error) {
	verr := &ValidationError{}

	tagIDs, tagErr := parseIDList("tags", tags)
	verr.Merge(tagErr)
	ingredientIDs, ingredientErr := parseIDList("ingredients", ingredients)
	verr.Merge(ingredientErr)

	if verr.HasErrors() {
		return model.RecipeFilter{}, verr
	}
	return model.RecipeFilter{TagIDs: tagIDs, IngredientIDs: ingredientIDs}, nil
}
