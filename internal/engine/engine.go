package engine

import (
	"context"

	"github.com/kalasangam/search-service/internal/domain"
	"github.com/kalasangam/search-service/internal/query"
)

// SearchEngine defines the interface for indexing and searching marketplace
// documents. Implementations may use Atlas Search, in-memory storage, or
// other backends, but all must honor the compound query semantics and the
// default ranking order.
type SearchEngine interface {
	// Index adds or updates a single document in the search index.
	Index(ctx context.Context, doc *domain.Document) error

	// Delete removes a document from the search index by its ID.
	Delete(ctx context.Context, id string) error

	// Search executes a search query and returns matching documents.
	Search(ctx context.Context, q *domain.SearchQuery) (*domain.SearchResult, error)

	// Suggest executes one scope-bound autocomplete query.
	Suggest(ctx context.Context, sq query.SuggestionQuery) ([]domain.Suggestion, error)

	// BulkIndex adds or updates multiple documents in the search index.
	BulkIndex(ctx context.Context, docs []domain.Document) error
}
