package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalasangam/search-service/internal/domain"
	"github.com/kalasangam/search-service/internal/engine/memory"
	"github.com/kalasangam/search-service/internal/query"
	apperrors "github.com/kalasangam/search-service/pkg/errors"
)

// failingEngine errors on every call; used to prove short-circuit paths
// never reach the engine.
type failingEngine struct{}

func (failingEngine) Index(context.Context, *domain.Document) error { return errEngine }
func (failingEngine) Delete(context.Context, string) error          { return errEngine }
func (failingEngine) Search(context.Context, *domain.SearchQuery) (*domain.SearchResult, error) {
	return nil, errEngine
}
func (failingEngine) Suggest(context.Context, query.SuggestionQuery) ([]domain.Suggestion, error) {
	return nil, errEngine
}
func (failingEngine) BulkIndex(context.Context, []domain.Document) error { return errEngine }

var errEngine = errors.New("engine should not be called")

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService() *SearchService {
	eng := memory.New()
	return NewSearchService(eng, newTestLogger(), "http://localhost:8080")
}

func newArtistInput(name string) *IndexDocumentInput {
	return &IndexDocumentInput{
		ID:       uuid.New().String(),
		Type:     domain.ScopeArtist,
		Name:     name,
		Category: "music",
		City:     "Mumbai",
		Price:    1500,
		Rating:   4.2,
	}
}

func TestSearchService_IndexAndSearch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	input := newArtistInput("Prerna Sharma")
	input.Description = "Classical tabla artist"

	require.NoError(t, svc.IndexDocument(ctx, input))

	result, err := svc.Search(ctx, &domain.SearchQuery{
		Scope:   domain.ScopeArtist,
		Term:    "prerna",
		Page:    1,
		PerPage: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, input.ID, result.Documents[0].ID)
}

func TestSearchService_IndexDocument_RequiresID(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	err := svc.IndexDocument(ctx, &IndexDocumentInput{
		Type: domain.ScopeArtist,
		Name: "No ID",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id is required")
}

func TestSearchService_IndexDocument_RequiresKnownType(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	input := newArtistInput("Wrong Type")
	input.Type = "venue"

	err := svc.IndexDocument(ctx, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type must be")
}

func TestSearchService_DeleteDocument(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	input := newArtistInput("Soon Gone")
	require.NoError(t, svc.IndexDocument(ctx, input))
	require.NoError(t, svc.DeleteDocument(ctx, input.ID))

	result, err := svc.Search(ctx, &domain.SearchQuery{
		Scope: domain.ScopeArtist, Page: 1, PerPage: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
}

func TestSearchService_DeleteDocument_RequiresID(t *testing.T) {
	err := newTestService().DeleteDocument(context.Background(), "")
	require.Error(t, err)
}

func TestSearchService_BulkIndex_SkipsInvalid(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	valid := newArtistInput("Valid Artist")
	invalid := IndexDocumentInput{Name: "Missing ID And Type"}

	require.NoError(t, svc.BulkIndex(ctx, []IndexDocumentInput{*valid, invalid}))

	result, err := svc.Search(ctx, &domain.SearchQuery{
		Scope: domain.ScopeArtist, Page: 1, PerPage: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
}

func TestSearchService_Search_RejectsUnknownScope(t *testing.T) {
	_, err := newTestService().Search(context.Background(), &domain.SearchQuery{
		Scope: "everything",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_INPUT", appErr.Code)
}

func TestSearchService_Search_AppliesDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	require.NoError(t, svc.IndexDocument(ctx, newArtistInput("Defaults")))

	result, err := svc.Search(ctx, &domain.SearchQuery{Scope: domain.ScopeArtist})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 20, result.PerPage)
}

func TestSearchService_Suggest_ShortPrefixSkipsEngine(t *testing.T) {
	svc := NewSearchService(failingEngine{}, newTestLogger(), "http://localhost:8080")

	suggestions, err := svc.Suggest(context.Background(), "p", domain.ScopeArtist, 5)
	require.NoError(t, err)
	assert.NotNil(t, suggestions)
	assert.Empty(t, suggestions)
}

func TestSearchService_Suggest_DefaultsToAllScopes(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	artist := newArtistInput("Prerna Sharma")
	require.NoError(t, svc.IndexDocument(ctx, artist))

	workshop := newArtistInput("Prerna's Kathak Workshop")
	workshop.Type = domain.ScopeWorkshop
	require.NoError(t, svc.IndexDocument(ctx, workshop))

	suggestions, err := svc.Suggest(ctx, "pre", "", 5)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	// Artist suggestions come first, then workshops.
	assert.Equal(t, domain.ScopeArtist, suggestions[0].Type)
	assert.Equal(t, domain.ScopeWorkshop, suggestions[1].Type)
}

func TestSearchService_Suggest_RejectsUnknownScope(t *testing.T) {
	_, err := newTestService().Suggest(context.Background(), "pre", "venue", 5)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_INPUT", appErr.Code)
}
