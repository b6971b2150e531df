package domain

import (
	"time"
)

// Document scopes. Artist and workshop documents live in the same search
// index and are told apart by their Type field.
const (
	ScopeArtist   = "artist"
	ScopeWorkshop = "workshop"
	ScopeAll      = "all"
)

// ValidScope checks whether the given scope is one of artist, workshop, or all.
func ValidScope(scope string) bool {
	return scope == ScopeArtist || scope == ScopeWorkshop || scope == ScopeAll
}

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type" bson:"type"`
	Coordinates [2]float64 `json:"coordinates" bson:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from a longitude/latitude pair.
func NewGeoPoint(lng, lat float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

// Document represents an artist or workshop in the search index.
//
// Name holds the artist name or workshop title, Description the bio or
// workshop description, and Popularity the bookings or enrollments counter.
// SearchText is a pre-synthesized aggregate of the free-text fields built by
// the producing service; the search service never derives it.
type Document struct {
	ID              string     `json:"id" bson:"_id"`
	Type            string     `json:"type" bson:"type"`
	Name            string     `json:"name" bson:"name"`
	Description     string     `json:"description" bson:"description"`
	Category        string     `json:"category" bson:"category"`
	Subcategories   []string   `json:"subcategories" bson:"subcategories"`
	City            string     `json:"city" bson:"city"`
	State           string     `json:"state" bson:"state"`
	Price           int64      `json:"price" bson:"price"`
	Modes           []string   `json:"modes" bson:"modes"`
	Rating          float64    `json:"rating" bson:"rating"`
	Featured        bool       `json:"featured" bson:"featured"`
	Available       bool       `json:"available" bson:"available"`
	Popularity      int        `json:"popularity" bson:"popularity"`
	ExperienceYears int        `json:"experience_years" bson:"experience_years"`
	Location        *GeoPoint  `json:"location,omitempty" bson:"location,omitempty"`
	SearchText      string     `json:"search_text" bson:"search_text"`
	NextAvailableAt *time.Time `json:"next_available_at,omitempty" bson:"next_available_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updated_at"`
}

// GeoFilter restricts results to a circle around a center point. Center and
// radius always travel together: a half-specified geo filter cannot be
// represented.
type GeoFilter struct {
	// Center is [longitude, latitude].
	Center   [2]float64 `json:"center"`
	RadiusKm float64    `json:"radius_km"`
}

// FilterSet holds the structured filters of a search request. A nil field
// means "do not filter on this dimension". Available is a pointer so that an
// explicit false ("only unavailable") is distinguishable from the filter not
// being requested at all.
type FilterSet struct {
	Category      *string    `json:"category,omitempty"`
	Subcategories []string   `json:"subcategories,omitempty"`
	City          *string    `json:"city,omitempty"`
	MinPrice      *int64     `json:"min_price,omitempty"`
	MaxPrice      *int64     `json:"max_price,omitempty"`
	MinRating     *float64   `json:"min_rating,omitempty"`
	Available     *bool      `json:"available,omitempty"`
	Mode          *string    `json:"mode,omitempty"`
	Geo           *GeoFilter `json:"geo,omitempty"`
}

// IsZero reports whether no filter dimension is active.
func (f FilterSet) IsZero() bool {
	return f.Category == nil &&
		len(f.Subcategories) == 0 &&
		f.City == nil &&
		f.MinPrice == nil &&
		f.MaxPrice == nil &&
		f.MinRating == nil &&
		f.Available == nil &&
		f.Mode == nil &&
		f.Geo == nil
}

// Sort options for search results.
const (
	SortRelevance  = "relevance"
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortRatingDesc = "rating_desc"
	SortNewest     = "newest"
)

// ValidSortOptions returns the list of valid sort options.
func ValidSortOptions() []string {
	return []string{SortRelevance, SortPriceAsc, SortPriceDesc, SortRatingDesc, SortNewest}
}

// IsValidSort checks whether the given sort string is a valid sort option.
func IsValidSort(sort string) bool {
	for _, s := range ValidSortOptions() {
		if s == sort {
			return true
		}
	}
	return false
}

// SearchQuery holds all parameters for a search request. Scope must be
// artist or workshop; cross-scope lookups go through suggestions.
type SearchQuery struct {
	Scope   string    `json:"scope"`
	Term    string    `json:"term"`
	Filters FilterSet `json:"filters"`
	SortBy  string    `json:"sort_by"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
}

// SearchResult holds the paginated search response.
type SearchResult struct {
	Documents []Document `json:"documents"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	PerPage   int        `json:"per_page"`
	TookMs    int64      `json:"took_ms"`
}

// Suggestion is a single typeahead entry tagged with the scope it came from.
type Suggestion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}
