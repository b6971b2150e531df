// Package memory provides an in-memory search engine used by unit tests and
// as a development fallback when no Atlas cluster is available. Matching is
// a semantic interpretation of the compound query contract: prefix matching
// for autocomplete, substring matching for text, exact ranges, and haversine
// distance for the geo circle.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kalasangam/search-service/internal/domain"
	"github.com/kalasangam/search-service/internal/query"
	"github.com/kalasangam/search-service/internal/ranking"
)

// Engine is an in-memory implementation of the SearchEngine interface.
// Thread-safe via sync.RWMutex.
type Engine struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

// New creates a new in-memory search engine.
func New() *Engine {
	return &Engine{
		docs: make(map[string]domain.Document),
	}
}

// Index adds or updates a single document in the in-memory index.
func (e *Engine) Index(_ context.Context, doc *domain.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.docs[doc.ID] = *doc
	return nil
}

// Delete removes a document from the in-memory index by its ID.
func (e *Engine) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.docs, id)
	return nil
}

// BulkIndex adds or updates multiple documents in the in-memory index.
func (e *Engine) BulkIndex(_ context.Context, docs []domain.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range docs {
		e.docs[docs[i].ID] = docs[i]
	}
	return nil
}

// Search executes a search query against the in-memory index.
func (e *Engine) Search(_ context.Context, q *domain.SearchQuery) (*domain.SearchResult, error) {
	start := time.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	termLower := strings.ToLower(strings.TrimSpace(q.Term))

	matched := make([]domain.Document, 0)
	for _, d := range e.docs {
		if d.Type != q.Scope {
			continue
		}
		if !e.matches(d, q, termLower) {
			continue
		}
		matched = append(matched, d)
	}

	e.sortDocuments(matched, q.SortBy)

	total := len(matched)

	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	offset := (page - 1) * perPage
	if offset > total {
		offset = total
	}
	end := offset + perPage
	if end > total {
		end = total
	}

	return &domain.SearchResult{
		Documents: matched[offset:end],
		Total:     total,
		Page:      page,
		PerPage:   perPage,
		TookMs:    time.Since(start).Milliseconds(),
	}, nil
}

// Suggest executes a scope-bound prefix query against the in-memory index.
func (e *Engine) Suggest(_ context.Context, sq query.SuggestionQuery) ([]domain.Suggestion, error) {
	prefix := autocompletePrefix(sq.Operator)
	if prefix == "" {
		return nil, nil
	}
	prefixLower := strings.ToLower(prefix)

	e.mu.RLock()
	defer e.mu.RUnlock()

	matched := make([]domain.Document, 0)
	for _, d := range e.docs {
		if d.Type != sq.Scope {
			continue
		}
		if strings.HasPrefix(strings.ToLower(d.Name), prefixLower) {
			matched = append(matched, d)
		}
	}

	// Default ranking order, then cap.
	ranking.SortDocuments(matched)
	if sq.Limit > 0 && len(matched) > sq.Limit {
		matched = matched[:sq.Limit]
	}

	suggestions := make([]domain.Suggestion, 0, len(matched))
	for _, d := range matched {
		suggestions = append(suggestions, domain.Suggestion{
			ID:   d.ID,
			Name: d.Name,
			Type: d.Type,
		})
	}
	return suggestions, nil
}

// autocompletePrefix pulls the query string out of an autocomplete operator
// document built by the composer.
func autocompletePrefix(op query.Clause) string {
	inner, ok := op["autocomplete"].(map[string]any)
	if !ok {
		return ""
	}
	prefix, _ := inner["query"].(string)
	return prefix
}

// matches checks whether a document satisfies the term and every active
// filter. Filters AND together; each is evaluated independently.
func (e *Engine) matches(d domain.Document, q *domain.SearchQuery, termLower string) bool {
	if termLower != "" && !e.matchesTerm(d, termLower) {
		return false
	}

	f := q.Filters

	if f.Category != nil && !strings.EqualFold(d.Category, *f.Category) {
		return false
	}
	if len(f.Subcategories) > 0 && !intersects(d.Subcategories, f.Subcategories) {
		return false
	}
	if f.City != nil && !strings.EqualFold(d.City, *f.City) {
		return false
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		gte := int64(0)
		if f.MinPrice != nil {
			gte = *f.MinPrice
		}
		lte := query.MaxPriceBound
		if f.MaxPrice != nil {
			lte = *f.MaxPrice
		}
		if d.Price < gte || d.Price > lte {
			return false
		}
	}
	if f.MinRating != nil && d.Rating < *f.MinRating {
		return false
	}
	if f.Available != nil && d.Available != *f.Available {
		return false
	}
	if f.Mode != nil && !containsFold(d.Modes, *f.Mode) {
		return false
	}
	if g := f.Geo; g != nil && g.RadiusKm > 0 {
		if d.Location == nil {
			return false
		}
		dist := haversineKm(
			g.Center[1], g.Center[0],
			d.Location.Coordinates[1], d.Location.Coordinates[0],
		)
		if dist > g.RadiusKm {
			return false
		}
	}

	return true
}

// matchesTerm approximates the scored must clause: a name prefix match or a
// substring match in any text field.
func (e *Engine) matchesTerm(d domain.Document, termLower string) bool {
	if strings.HasPrefix(strings.ToLower(d.Name), termLower) {
		return true
	}
	for _, field := range []string{d.Name, d.Description, d.Category, d.SearchText} {
		if strings.Contains(strings.ToLower(field), termLower) {
			return true
		}
	}
	return false
}

// sortDocuments orders matched documents. Relevance (the default) uses the
// ranking score; explicit sorts bypass it. Every branch tie-breaks by ID so
// pagination is stable.
func (e *Engine) sortDocuments(docs []domain.Document, sortBy string) {
	switch sortBy {
	case domain.SortPriceAsc:
		sort.SliceStable(docs, func(i, j int) bool {
			if docs[i].Price != docs[j].Price {
				return docs[i].Price < docs[j].Price
			}
			return docs[i].ID < docs[j].ID
		})
	case domain.SortPriceDesc:
		sort.SliceStable(docs, func(i, j int) bool {
			if docs[i].Price != docs[j].Price {
				return docs[i].Price > docs[j].Price
			}
			return docs[i].ID < docs[j].ID
		})
	case domain.SortRatingDesc:
		sort.SliceStable(docs, func(i, j int) bool {
			if docs[i].Rating != docs[j].Rating {
				return docs[i].Rating > docs[j].Rating
			}
			return docs[i].ID < docs[j].ID
		})
	case domain.SortNewest:
		sort.SliceStable(docs, func(i, j int) bool {
			if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
				return docs[i].CreatedAt.After(docs[j].CreatedAt)
			}
			return docs[i].ID < docs[j].ID
		})
	default:
		ranking.SortDocuments(docs)
	}
}

// intersects reports whether the two string slices share at least one value,
// compared case-insensitively.
func intersects(have, want []string) bool {
	for _, w := range want {
		if containsFold(have, w) {
			return true
		}
	}
	return false
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

// haversineKm returns the great-circle distance between two points in km.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const rad = math.Pi / 180
	a := 0.5 - math.Cos((lat2-lat1)*rad)/2 +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*(1-math.Cos((lon2-lon1)*rad))/2
	return 12742 * math.Asin(math.Sqrt(a))
}
