package service

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TriState is a three-valued query filter: not applied, require-true
// or require-false. Query values are parsed once at the HTTP boundary;
// everything below works with the enum only.
type TriState int

const (
	TriUnset TriState = iota
	TriTrue
	TriFalse
)

// ParseTriState accepts the encodings observed in the wild: 0/1 and
// boolean literals. The empty string means the filter is not applied.
func ParseTriState(raw string) (TriState, error) {
	switch raw {
	case "":
		return TriUnset, nil
	case "1", "true", "True":
		return TriTrue, nil
	case "0", "false", "False":
		return TriFalse, nil
	}
	return TriUnset, &ValidationError{Message: "expected 0, 1, true or false, got " + raw}
}

// RecipeFilter collects the supported recipe list filters.
type RecipeFilter struct {
	IsFavorited      TriState
	IsInShoppingCart TriState
	AuthorID         *uuid.UUID
	TagSlugs         []string
}

// applyLinkFilter restricts or excludes recipes by the set of recipe
// ids linked to the user. An anonymous user trivially has no links, so
// require-true yields the empty set and require-false is a no-op. The
// two membership filters intersect, so application order does not
// matter.
func applyLinkFilter(query *gorm.DB, state TriState, userID *uuid.UUID, linkedIDs func(uuid.UUID) ([]uuid.UUID, error)) (*gorm.DB, error) {
	if state == TriUnset {
		return query, nil
	}
	if userID == nil {
		if state == TriTrue {
			return query.Where("1 = 0"), nil
		}
		return query, nil
	}

	ids, err := linkedIDs(*userID)
	if err != nil {
		return nil, err
	}
	if state == TriTrue {
		if len(ids) == 0 {
			return query.Where("1 = 0"), nil
		}
		return query.Where("recipes.id IN ?", ids), nil
	}
	if len(ids) == 0 {
		return query, nil
	}
	return query.Where("recipes.id NOT IN ?", ids), nil
}
