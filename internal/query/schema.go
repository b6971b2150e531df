// Package query builds the compound search requests executed against the
// Atlas Search index, and declares the index schema those requests target.
package query

// FieldKind classifies how an index field is analyzed and which clause types
// may target it.
type FieldKind string

const (
	KindText         FieldKind = "text"
	KindFacet        FieldKind = "facet"
	KindNumber       FieldKind = "number"
	KindBoolean      FieldKind = "boolean"
	KindDate         FieldKind = "date"
	KindGeo          FieldKind = "geo"
	KindAutocomplete FieldKind = "autocomplete"
)

// Autocomplete analyzer parameters. The name field carries an edge-ngram
// sub-index so prefix queries stay cheap; diacritic folding keeps
// transliterated artist names matchable either way.
const (
	AutocompleteMinGrams = 2
	AutocompleteMaxGrams = 15
	FoldDiacritics       = true
)

// Canonical field paths. The builder targets these instead of repeating
// string literals; prefix clauses must use the autocomplete sub-field, exact
// facet filters the bare facet field.
const (
	FieldName          = "name"
	FieldDescription   = "description"
	FieldCategory      = "category"
	FieldSubcategories = "subcategories"
	FieldCity          = "city"
	FieldState         = "state"
	FieldPrice         = "price"
	FieldModes         = "modes"
	FieldRating        = "rating"
	FieldFeatured      = "featured"
	FieldAvailable     = "available"
	FieldLocation      = "location"
	FieldSearchText    = "search_text"
	FieldNextAvailable = "next_available_at"
	FieldCreatedAt     = "created_at"
	FieldType          = "type"
)

// AutocompleteSubField is the suffix of the edge-ngram sub-index.
const AutocompleteSubField = "autocomplete"

// AutocompletePath returns the path of a field's edge-ngram sub-index.
func AutocompletePath(field string) string {
	return field + "." + AutocompleteSubField
}

// Field describes a single index field.
type Field struct {
	Name string
	Kind FieldKind

	// HasAutocomplete marks text fields that carry an edge-ngram sub-index
	// reachable at AutocompletePath(Name).
	HasAutocomplete bool
}

// IndexSchema is the declarative description of the search index. It has no
// runtime behavior; a malformed schema is a deployment error, not something
// the query path validates.
type IndexSchema struct {
	Name   string
	Fields []Field
}

// Field looks up a field by name. The second return is false when the schema
// does not declare the field.
func (s IndexSchema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// TextPaths returns the text fields of the schema in declaration order.
// This is the path list the fuzzy full-text clause fans out over.
func (s IndexSchema) TextPaths() []string {
	var paths []string
	for _, f := range s.Fields {
		if f.Kind == KindText {
			paths = append(paths, f.Name)
		}
	}
	return paths
}

// MarketplaceIndex describes the shared artist/workshop search index.
//
// Both document types map onto the same vocabulary: Name is the artist name
// or workshop title, Description the bio or workshop description, Modes the
// artist availability modes or the workshop delivery mode. Case handling and
// stemming belong to the index analyzers; the builder never normalizes
// client input itself.
func MarketplaceIndex() IndexSchema {
	return IndexSchema{
		Name: "marketplace_search",
		Fields: []Field{
			{Name: FieldName, Kind: KindText, HasAutocomplete: true},
			{Name: FieldDescription, Kind: KindText},
			{Name: FieldCategory, Kind: KindText},
			{Name: FieldSearchText, Kind: KindText},
			{Name: FieldSubcategories, Kind: KindFacet},
			{Name: FieldCity, Kind: KindFacet},
			{Name: FieldState, Kind: KindFacet},
			{Name: FieldModes, Kind: KindFacet},
			{Name: FieldType, Kind: KindFacet},
			{Name: FieldPrice, Kind: KindNumber},
			{Name: FieldRating, Kind: KindNumber},
			{Name: FieldFeatured, Kind: KindBoolean},
			{Name: FieldAvailable, Kind: KindBoolean},
			{Name: FieldLocation, Kind: KindGeo},
			{Name: FieldNextAvailable, Kind: KindDate},
			{Name: FieldCreatedAt, Kind: KindDate},
		},
	}
}
