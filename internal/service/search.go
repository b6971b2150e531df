package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kalasangam/search-service/internal/domain"
	"github.com/kalasangam/search-service/internal/engine"
	"github.com/kalasangam/search-service/internal/query"
	apperrors "github.com/kalasangam/search-service/pkg/errors"
)

// SearchService implements the business logic for search operations.
type SearchService struct {
	engine     engine.SearchEngine
	logger     *slog.Logger
	catalogURL string
	httpClient *http.Client
}

// NewSearchService creates a new search service. catalogURL is the base URL
// of the catalog service used for full reindexing.
func NewSearchService(eng engine.SearchEngine, logger *slog.Logger, catalogURL string) *SearchService {
	return &SearchService{
		engine:     eng,
		logger:     logger,
		catalogURL: catalogURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// IndexDocumentInput holds the parameters for indexing an artist or workshop.
type IndexDocumentInput struct {
	ID              string           `json:"id"`
	Type            string           `json:"type"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Category        string           `json:"category"`
	Subcategories   []string         `json:"subcategories"`
	City            string           `json:"city"`
	State           string           `json:"state"`
	Price           int64            `json:"price"`
	Modes           []string         `json:"modes"`
	Rating          float64          `json:"rating"`
	Featured        bool             `json:"featured"`
	Available       bool             `json:"available"`
	Popularity      int              `json:"popularity"`
	ExperienceYears int              `json:"experience_years"`
	Location        *domain.GeoPoint `json:"location,omitempty"`
	SearchText      string           `json:"search_text"`
	NextAvailableAt *time.Time       `json:"next_available_at,omitempty"`
}

// document converts the input into an index document stamped with now.
func (in *IndexDocumentInput) document(now time.Time) domain.Document {
	doc := domain.Document{
		ID:              in.ID,
		Type:            in.Type,
		Name:            in.Name,
		Description:     in.Description,
		Category:        in.Category,
		Subcategories:   in.Subcategories,
		City:            in.City,
		State:           in.State,
		Price:           in.Price,
		Modes:           in.Modes,
		Rating:          in.Rating,
		Featured:        in.Featured,
		Available:       in.Available,
		Popularity:      in.Popularity,
		ExperienceYears: in.ExperienceYears,
		Location:        in.Location,
		SearchText:      in.SearchText,
		NextAvailableAt: in.NextAvailableAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if doc.Subcategories == nil {
		doc.Subcategories = []string{}
	}
	if doc.Modes == nil {
		doc.Modes = []string{}
	}
	return doc
}

func (in *IndexDocumentInput) validate() error {
	if in.ID == "" {
		return fmt.Errorf("id is required")
	}
	if in.Name == "" {
		return fmt.Errorf("name is required")
	}
	if in.Type != domain.ScopeArtist && in.Type != domain.ScopeWorkshop {
		return fmt.Errorf("type must be %q or %q", domain.ScopeArtist, domain.ScopeWorkshop)
	}
	return nil
}

// IndexDocument indexes a single document in the search engine.
func (s *SearchService) IndexDocument(ctx context.Context, input *IndexDocumentInput) error {
	if err := input.validate(); err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	doc := input.document(time.Now().UTC())
	if err := s.engine.Index(ctx, &doc); err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	s.logger.InfoContext(ctx, "document indexed",
		slog.String("document_id", input.ID),
		slog.String("type", input.Type),
		slog.String("name", input.Name),
	)

	return nil
}

// DeleteDocument removes a document from the search index.
func (s *SearchService) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete document: id is required")
	}

	if err := s.engine.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	s.logger.InfoContext(ctx, "document deleted from index",
		slog.String("document_id", id),
	)

	return nil
}

// BulkIndex indexes multiple documents, skipping entries that fail
// validation.
func (s *SearchService) BulkIndex(ctx context.Context, inputs []IndexDocumentInput) error {
	docs := make([]domain.Document, 0, len(inputs))
	now := time.Now().UTC()

	for i := range inputs {
		if err := inputs[i].validate(); err != nil {
			s.logger.WarnContext(ctx, "skipping invalid document in bulk index",
				slog.String("document_id", inputs[i].ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		docs = append(docs, inputs[i].document(now))
	}

	if err := s.engine.BulkIndex(ctx, docs); err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}

	s.logger.InfoContext(ctx, "bulk index completed",
		slog.Int("count", len(docs)),
	)

	return nil
}

// Search executes a search query against the search engine.
func (s *SearchService) Search(ctx context.Context, q *domain.SearchQuery) (*domain.SearchResult, error) {
	if q.Scope != domain.ScopeArtist && q.Scope != domain.ScopeWorkshop {
		return nil, apperrors.InvalidInput(fmt.Sprintf("scope must be %q or %q", domain.ScopeArtist, domain.ScopeWorkshop))
	}

	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = 20
	}
	if q.PerPage > 100 {
		q.PerPage = 100
	}
	if q.SortBy == "" {
		q.SortBy = domain.SortRelevance
	}

	result, err := s.engine.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	s.logger.DebugContext(ctx, "search executed",
		slog.String("scope", q.Scope),
		slog.String("term", q.Term),
		slog.Int("total", result.Total),
		slog.Int64("took_ms", result.TookMs),
	)

	return result, nil
}

// Suggest returns typeahead suggestions for the given prefix. A prefix
// shorter than the autocomplete minimum yields an empty list without
// touching the engine. Scope "all" concatenates artist and workshop
// suggestions in that order, each capped independently; interleaving across
// types is presentation policy and deliberately not done here.
func (s *SearchService) Suggest(ctx context.Context, prefix, scope string, limit int) ([]domain.Suggestion, error) {
	if scope == "" {
		scope = domain.ScopeAll
	}
	if !domain.ValidScope(scope) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("scope must be %q, %q, or %q", domain.ScopeArtist, domain.ScopeWorkshop, domain.ScopeAll))
	}

	queries := query.BuildAutocomplete(prefix, scope, limit)
	if len(queries) == 0 {
		return []domain.Suggestion{}, nil
	}

	suggestions := make([]domain.Suggestion, 0, len(queries)*query.DefaultSuggestionLimit)
	for _, sq := range queries {
		res, err := s.engine.Suggest(ctx, sq)
		if err != nil {
			return nil, fmt.Errorf("suggest %s: %w", sq.Scope, err)
		}
		suggestions = append(suggestions, res...)
	}

	return suggestions, nil
}
