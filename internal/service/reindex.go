package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kalasangam/search-service/internal/domain"
)

// reindexPageSize is how many records are fetched from the catalog service
// per page during a full reindex.
const reindexPageSize = 100

// catalogPage is the paginated envelope the catalog service returns.
type catalogPage struct {
	Data       []IndexDocumentInput `json:"data"`
	TotalCount int                  `json:"total_count"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
}

// Reindex rebuilds the search index from the catalog service, paging through
// artists and then workshops. Documents are bulk-indexed page by page, so a
// failure partway leaves earlier pages indexed; the operation is safe to
// rerun.
func (s *SearchService) Reindex(ctx context.Context) error {
	total := 0
	for _, scope := range []string{domain.ScopeArtist, domain.ScopeWorkshop} {
		n, err := s.reindexScope(ctx, scope)
		if err != nil {
			return fmt.Errorf("reindex %s: %w", scope, err)
		}
		total += n
	}

	s.logger.InfoContext(ctx, "reindex completed",
		slog.Int("count", total),
	)
	return nil
}

// reindexScope pages through one catalog collection and bulk-indexes it.
func (s *SearchService) reindexScope(ctx context.Context, scope string) (int, error) {
	count := 0
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/api/v1/%ss?page=%d&per_page=%d", s.catalogURL, scope, page, reindexPageSize)

		pageData, err := s.fetchCatalogPage(ctx, url)
		if err != nil {
			return count, err
		}
		if len(pageData.Data) == 0 {
			return count, nil
		}

		inputs := pageData.Data
		for i := range inputs {
			inputs[i].Type = scope
		}

		if err := s.BulkIndex(ctx, inputs); err != nil {
			return count, err
		}
		count += len(inputs)

		if pageData.TotalPages > 0 && page >= pageData.TotalPages {
			return count, nil
		}
	}
}

func (s *SearchService) fetchCatalogPage(ctx context.Context, url string) (*catalogPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog page: unexpected status %s", resp.Status)
	}

	var pageData catalogPage
	if err := json.NewDecoder(resp.Body).Decode(&pageData); err != nil {
		return nil, fmt.Errorf("decode catalog page: %w", err)
	}
	return &pageData, nil
}
