package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalasangam/search-service/internal/domain"
)

func TestBuildAutocomplete_ShortPrefix_NoQueries(t *testing.T) {
	assert.Nil(t, BuildAutocomplete("", domain.ScopeArtist, 5))
	assert.Nil(t, BuildAutocomplete("p", domain.ScopeArtist, 5))
	assert.Nil(t, BuildAutocomplete("  p  ", domain.ScopeArtist, 5))
}

func TestBuildAutocomplete_PrefixCountedInRunes(t *testing.T) {
	// Two runes, more than two bytes.
	queries := BuildAutocomplete("रा", domain.ScopeArtist, 5)
	assert.Len(t, queries, 1)
}

func TestBuildAutocomplete_SingleScope(t *testing.T) {
	queries := BuildAutocomplete("pre", domain.ScopeWorkshop, 5)

	require.Len(t, queries, 1)
	assert.Equal(t, domain.ScopeWorkshop, queries[0].Scope)
	assert.Equal(t, 5, queries[0].Limit)

	auto := queries[0].Operator["autocomplete"].(map[string]any)
	assert.Equal(t, "pre", auto["query"])
	assert.Equal(t, "name.autocomplete", auto["path"])
}

func TestBuildAutocomplete_ScopeAll_FansOut(t *testing.T) {
	queries := BuildAutocomplete("prerna", domain.ScopeAll, 5)

	require.Len(t, queries, 2)
	assert.Equal(t, domain.ScopeArtist, queries[0].Scope)
	assert.Equal(t, domain.ScopeWorkshop, queries[1].Scope)

	for _, q := range queries {
		auto := q.Operator["autocomplete"].(map[string]any)
		assert.Equal(t, "prerna", auto["query"])
		assert.Equal(t, 5, q.Limit)
	}
}

func TestBuildAutocomplete_DefaultLimit(t *testing.T) {
	queries := BuildAutocomplete("sitar", domain.ScopeArtist, 0)

	require.Len(t, queries, 1)
	assert.Equal(t, DefaultSuggestionLimit, queries[0].Limit)
}

func TestBuildAutocomplete_LimitCapped(t *testing.T) {
	queries := BuildAutocomplete("sitar", domain.ScopeArtist, 100)

	require.Len(t, queries, 1)
	assert.Equal(t, MaxSuggestionLimit, queries[0].Limit)
}

func TestBuildAutocomplete_TrimsPrefix(t *testing.T) {
	queries := BuildAutocomplete("  veena  ", domain.ScopeArtist, 5)

	require.Len(t, queries, 1)
	auto := queries[0].Operator["autocomplete"].(map[string]any)
	assert.Equal(t, "veena", auto["query"])
}
