package query

import (
	"strings"
	"unicode/utf8"

	"github.com/kalasangam/search-service/internal/domain"
)

// Suggestion query limits. MinPrefixLength matches the autocomplete
// analyzer's minimum gram: shorter input cannot match anything, so the
// composer refuses to produce a query for it and the backend is never
// contacted. The per-scope cap keeps a merged dropdown readable.
const (
	MinPrefixLength        = 2
	DefaultSuggestionLimit = 5
	MaxSuggestionLimit     = 20
)

// SuggestionQuery is one scope-bound prefix query ready for execution.
type SuggestionQuery struct {
	Scope    string
	Operator Clause
	Limit    int
}

// BuildAutocomplete produces the suggestion queries for the given prefix and
// scope. Scope "all" yields one query per document type; results are meant
// to be concatenated per scope, not interleaved. A prefix shorter than
// MinPrefixLength yields nil. The composer is stateless: callers own
// debounce and stale-response handling.
func BuildAutocomplete(prefix, scope string, limit int) []SuggestionQuery {
	prefix = strings.TrimSpace(prefix)
	if utf8.RuneCountInString(prefix) < MinPrefixLength {
		return nil
	}

	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	if limit > MaxSuggestionLimit {
		limit = MaxSuggestionLimit
	}

	scopes := []string{scope}
	if scope == domain.ScopeAll {
		scopes = []string{domain.ScopeArtist, domain.ScopeWorkshop}
	}

	queries := make([]SuggestionQuery, 0, len(scopes))
	for _, s := range scopes {
		queries = append(queries, SuggestionQuery{
			Scope: s,
			Operator: Clause{
				"autocomplete": map[string]any{
					"query": prefix,
					"path":  AutocompletePath(FieldName),
				},
			},
			Limit: limit,
		})
	}
	return queries
}
