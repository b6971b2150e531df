package query

import (
	"math"

	"github.com/kalasangam/search-service/internal/domain"
)

// Relevance tuning for the free-text clause. The autocomplete sub-clause is
// boosted over plain text matches so exact prefixes win typeahead-driven
// searches; the fuzzy clause requires the first two characters to match
// exactly and tolerates a single edit in the remainder.
const (
	AutocompleteBoost = 3.0
	FuzzyMaxEdits     = 1
	FuzzyPrefixLength = 2
)

// MaxPriceBound is the open upper bound emitted when only a minimum price is
// given. Values are minor currency units, so this is effectively +infinity.
const MaxPriceBound = int64(math.MaxInt64)

// Clause is a single search operator document, e.g.
// {"range": {"path": "price", "gte": 500}}.
type Clause = map[string]any

// CompoundQuery groups clauses into the three compound lists: must is
// scored, filter is an unscored AND across all entries, should is reserved
// for optional boosts.
type CompoundQuery struct {
	Must   []Clause `json:"must,omitempty" bson:"must,omitempty"`
	Filter []Clause `json:"filter,omitempty" bson:"filter,omitempty"`
	Should []Clause `json:"should,omitempty" bson:"should,omitempty"`
}

// IsEmpty reports whether the query carries no constraint at all. Callers
// treat an empty compound as "match everything", never as an error.
func (q CompoundQuery) IsEmpty() bool {
	return len(q.Must) == 0 && len(q.Filter) == 0 && len(q.Should) == 0
}

// Document renders the compound operator body. Empty clause lists are left
// out entirely rather than emitted as empty arrays, which some backends
// would read as "match nothing".
func (q CompoundQuery) Document() map[string]any {
	doc := map[string]any{}
	if len(q.Must) > 0 {
		doc["must"] = q.Must
	}
	if len(q.Filter) > 0 {
		doc["filter"] = q.Filter
	}
	if len(q.Should) > 0 {
		doc["should"] = q.Should
	}
	return doc
}

// Build translates a free-text term plus a structured filter set into a
// compound query against the marketplace index. The term contributes one
// scored must clause; every active filter contributes exactly one filter
// clause, independent of the others. Filters are passed through as given:
// out-of-range input produces an out-of-range clause, not a clamped one.
func Build(term string, filters domain.FilterSet) CompoundQuery {
	var q CompoundQuery

	if term != "" {
		q.Must = append(q.Must, textSearchClause(term))
	}

	if filters.Category != nil {
		q.Filter = append(q.Filter, textClause(*filters.Category, FieldCategory))
	}
	if len(filters.Subcategories) > 0 {
		// A text clause with multiple queries matches documents whose facet
		// array intersects the given list.
		q.Filter = append(q.Filter, Clause{
			"text": map[string]any{
				"query": filters.Subcategories,
				"path":  FieldSubcategories,
			},
		})
	}
	if filters.City != nil {
		q.Filter = append(q.Filter, textClause(*filters.City, FieldCity))
	}
	if filters.MinPrice != nil || filters.MaxPrice != nil {
		gte := int64(0)
		if filters.MinPrice != nil {
			gte = *filters.MinPrice
		}
		lte := MaxPriceBound
		if filters.MaxPrice != nil {
			lte = *filters.MaxPrice
		}
		q.Filter = append(q.Filter, Clause{
			"range": map[string]any{
				"path": FieldPrice,
				"gte":  gte,
				"lte":  lte,
			},
		})
	}
	if filters.MinRating != nil {
		q.Filter = append(q.Filter, Clause{
			"range": map[string]any{
				"path": FieldRating,
				"gte":  *filters.MinRating,
			},
		})
	}
	if filters.Available != nil {
		// Pointer nil-ness, not truthiness: an explicit false is a real
		// filter and must be emitted.
		q.Filter = append(q.Filter, Clause{
			"equals": map[string]any{
				"path":  FieldAvailable,
				"value": *filters.Available,
			},
		})
	}
	if filters.Mode != nil {
		q.Filter = append(q.Filter, textClause(*filters.Mode, FieldModes))
	}
	if g := filters.Geo; g != nil && g.RadiusKm > 0 {
		q.Filter = append(q.Filter, geoWithinClause(g))
	}

	return q
}

// textSearchClause is the scored free-text clause: a disjunction of a
// boosted prefix match on the name autocomplete sub-index and a fuzzy match
// fanned out over the text fields.
func textSearchClause(term string) Clause {
	return Clause{
		"compound": map[string]any{
			"should": []Clause{
				{
					"autocomplete": map[string]any{
						"query": term,
						"path":  AutocompletePath(FieldName),
						"score": map[string]any{
							"boost": map[string]any{"value": AutocompleteBoost},
						},
					},
				},
				{
					"text": map[string]any{
						"query": term,
						"path":  MarketplaceIndex().TextPaths(),
						"fuzzy": map[string]any{
							"maxEdits":     FuzzyMaxEdits,
							"prefixLength": FuzzyPrefixLength,
						},
					},
				},
			},
			"minimumShouldMatch": 1,
		},
	}
}

// textClause is an exact-match text clause on a single facet field. Case
// handling is the index analyzer's job, not the builder's.
func textClause(value, path string) Clause {
	return Clause{
		"text": map[string]any{
			"query": value,
			"path":  path,
		},
	}
}

// geoWithinClause restricts results to a circle. Atlas expects the radius in
// meters and the center as a GeoJSON [longitude, latitude] point.
func geoWithinClause(g *domain.GeoFilter) Clause {
	return Clause{
		"geoWithin": map[string]any{
			"path": FieldLocation,
			"circle": map[string]any{
				"center": map[string]any{
					"type":        "Point",
					"coordinates": []float64{g.Center[0], g.Center[1]},
				},
				"radius": g.RadiusKm * 1000,
			},
		},
	}
}

// ScopeClause is the filter pinning a query to one document type. The
// engine appends it so the builder and its tests stay scope-agnostic.
func ScopeClause(scope string) Clause {
	return textClause(scope, FieldType)
}
