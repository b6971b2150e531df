package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kalasangam/search-service/internal/domain"
	"github.com/kalasangam/search-service/internal/service"
	"github.com/kalasangam/search-service/pkg/httputil"
	"github.com/kalasangam/search-service/pkg/validator"
)

// SearchHandler handles HTTP requests for search endpoints.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// IndexDocumentRequest is the JSON request body for indexing a document.
type IndexDocumentRequest struct {
	ID              string           `json:"id" validate:"required"`
	Type            string           `json:"type" validate:"required,oneof=artist workshop"`
	Name            string           `json:"name" validate:"required,min=1"`
	Description     string           `json:"description"`
	Category        string           `json:"category"`
	Subcategories   []string         `json:"subcategories"`
	City            string           `json:"city"`
	State           string           `json:"state"`
	Price           int64            `json:"price" validate:"gte=0"`
	Modes           []string         `json:"modes"`
	Rating          float64          `json:"rating" validate:"gte=0,lte=5"`
	Featured        bool             `json:"featured"`
	Available       bool             `json:"available"`
	Popularity      int              `json:"popularity" validate:"gte=0"`
	ExperienceYears int              `json:"experience_years" validate:"gte=0"`
	Location        *domain.GeoPoint `json:"location,omitempty"`
	SearchText      string           `json:"search_text"`
}

// BulkIndexRequest is the JSON request body for bulk indexing documents.
type BulkIndexRequest struct {
	Documents []IndexDocumentRequest `json:"documents" validate:"required,min=1,max=500,dive"`
}

func (r *IndexDocumentRequest) input() service.IndexDocumentInput {
	return service.IndexDocumentInput{
		ID:              r.ID,
		Type:            r.Type,
		Name:            r.Name,
		Description:     r.Description,
		Category:        r.Category,
		Subcategories:   r.Subcategories,
		City:            r.City,
		State:           r.State,
		Price:           r.Price,
		Modes:           r.Modes,
		Rating:          r.Rating,
		Featured:        r.Featured,
		Available:       r.Available,
		Popularity:      r.Popularity,
		ExperienceYears: r.ExperienceYears,
		Location:        r.Location,
		SearchText:      r.SearchText,
	}
}

// --- Handlers ---

// SearchArtists handles GET /api/v1/search/artists
func (h *SearchHandler) SearchArtists(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, domain.ScopeArtist)
}

// SearchWorkshops handles GET /api/v1/search/workshops
func (h *SearchHandler) SearchWorkshops(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, domain.ScopeWorkshop)
}

func (h *SearchHandler) search(w http.ResponseWriter, r *http.Request, scope string) {
	q := &domain.SearchQuery{
		Scope:   scope,
		Term:    strings.TrimSpace(r.URL.Query().Get("q")),
		Page:    1,
		PerPage: 20,
	}

	sortBy := r.URL.Query().Get("sort")
	if sortBy != "" && !domain.IsValidSort(sortBy) {
		writeInvalidParam(w, "sort must be one of: "+strings.Join(domain.ValidSortOptions(), ", "))
		return
	}
	q.SortBy = sortBy

	filters, ok := h.parseFilters(w, r)
	if !ok {
		return
	}
	q.Filters = filters

	if v := r.URL.Query().Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			q.Page = page
		}
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		if perPage, err := strconv.Atoi(v); err == nil && perPage > 0 && perPage <= 100 {
			q.PerPage = perPage
		}
	}

	result, err := h.service.Search(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// parseFilters builds the typed filter set from query parameters. Absence
// and explicit false are kept distinct for the available filter, and the
// geo filter is only assembled when center and radius are both given.
func (h *SearchHandler) parseFilters(w http.ResponseWriter, r *http.Request) (domain.FilterSet, bool) {
	var filters domain.FilterSet
	params := r.URL.Query()

	if v := params.Get("category"); v != "" {
		filters.Category = &v
	}
	if v := params.Get("subcategories"); v != "" {
		for _, sub := range strings.Split(v, ",") {
			if sub = strings.TrimSpace(sub); sub != "" {
				filters.Subcategories = append(filters.Subcategories, sub)
			}
		}
	}
	if v := params.Get("city"); v != "" {
		filters.City = &v
	}
	if v := params.Get("mode"); v != "" {
		filters.Mode = &v
	}

	if v := params.Get("min_price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil || price < 0 {
			writeInvalidParam(w, "min_price must be a non-negative number")
			return filters, false
		}
		filters.MinPrice = &price
	}
	if v := params.Get("max_price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil || price < 0 {
			writeInvalidParam(w, "max_price must be a non-negative number")
			return filters, false
		}
		filters.MaxPrice = &price
	}
	if filters.MinPrice != nil && filters.MaxPrice != nil && *filters.MinPrice > *filters.MaxPrice {
		writeInvalidParam(w, "min_price must not exceed max_price")
		return filters, false
	}

	if v := params.Get("min_rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil || rating < 0 || rating > 5 {
			writeInvalidParam(w, "min_rating must be between 0 and 5")
			return filters, false
		}
		filters.MinRating = &rating
	}

	if v := params.Get("available"); v != "" {
		avail, err := strconv.ParseBool(v)
		if err != nil {
			writeInvalidParam(w, "available must be true or false")
			return filters, false
		}
		filters.Available = &avail
	}

	// lat, lng, and radius_km must all be present for a geo filter; a
	// partial set is ignored rather than rejected, since the UI enables
	// the radius control independently of the location picker.
	latStr, lngStr, radStr := params.Get("lat"), params.Get("lng"), params.Get("radius_km")
	if latStr != "" && lngStr != "" && radStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		radius, errRad := strconv.ParseFloat(radStr, 64)
		if errLat != nil || errLng != nil || errRad != nil {
			writeInvalidParam(w, "lat, lng, and radius_km must be valid numbers")
			return filters, false
		}
		if radius > 0 {
			filters.Geo = &domain.GeoFilter{
				Center:   [2]float64{lng, lat},
				RadiusKm: radius,
			}
		}
	}

	return filters, true
}

// Suggest handles GET /api/v1/search/suggest
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("q"))

	scope := r.URL.Query().Get("scope")
	if scope != "" && !domain.ValidScope(scope) {
		writeInvalidParam(w, "scope must be one of: artist, workshop, all")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			limit = l
		}
	}

	suggestions, err := h.service.Suggest(r.Context(), prefix, scope, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"suggestions": suggestions}})
}

// IndexDocument handles POST /api/v1/search/index
func (h *SearchHandler) IndexDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req IndexDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := req.input()
	if err := h.service.IndexDocument(r.Context(), &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": req.ID, "status": "indexed"}})
}

// BulkIndex handles POST /api/v1/search/bulk
func (h *SearchHandler) BulkIndex(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)

	var req BulkIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	inputs := make([]service.IndexDocumentInput, 0, len(req.Documents))
	for i := range req.Documents {
		inputs = append(inputs, req.Documents[i].input())
	}

	if err := h.service.BulkIndex(r.Context(), inputs); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"indexed": len(inputs), "status": "ok"}})
}

// DeleteDocument handles DELETE /api/v1/search/{id}
func (h *SearchHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeInvalidParam(w, "id is required")
		return
	}

	if err := h.service.DeleteDocument(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// Reindex handles POST /api/v1/search/reindex
func (h *SearchHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx := context.Background()
		if err := h.service.Reindex(ctx); err != nil {
			h.logger.ErrorContext(ctx, "background reindex failed", "error", err)
		}
	}()

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "reindex started"}})
}

func writeInvalidParam(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: message},
	})
}
