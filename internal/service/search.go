package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/citybreaker/citybreaker-server/internal/domain"
	"github.com/citybreaker/citybreaker-server/internal/search"
	"github.com/citybreaker/citybreaker-server/internal/store"
)

// SearchService keeps the scan search index in sync with the store and
// answers search queries. It implements store.SearchIndexer so the store can
// push index updates on commit and delete.
type SearchService struct {
	store  *store.Store
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store *store.Store, index *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// IndexScan adds or updates a scan in the search index.
func (s *SearchService) IndexScan(ctx context.Context, scan *domain.ScanRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.index.IndexDocument(search.ScanToDocument(scan))
}

// DeleteScan removes a scan from the search index.
func (s *SearchService) DeleteScan(ctx context.Context, scanID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.index.DeleteDocument(scanID)
}

// SearchScans runs a query against the index and resolves each hit to its
// pool record. Hits whose record has since been deleted are dropped from the
// results rather than failing the whole query.
func (s *SearchService) SearchScans(ctx context.Context, params search.SearchParams) (*search.SearchResult, []*domain.ScanRecord, error) {
	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, nil, fmt.Errorf("search: %w", err)
	}

	records := make([]*domain.ScanRecord, 0, len(result.Hits))
	for _, hit := range result.Hits {
		scan, err := s.store.GetScan(ctx, hit.ID)
		if err != nil {
			if errors.Is(err, store.ErrScanNotFound) {
				if s.logger != nil {
					s.logger.Debug("Search hit with no pool record", "scan_id", hit.ID)
				}
				continue
			}
			return nil, nil, fmt.Errorf("resolve search hit %s: %w", hit.ID, err)
		}
		records = append(records, scan)
	}

	return result, records, nil
}

// DocumentCount returns the number of indexed scans.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the search index from the global scan pool.
// Run at startup so the index catches up with writes it missed.
func (s *SearchService) ReindexAll(ctx context.Context) (int, error) {
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	var docs []*search.ScanDocument
	for scan := range s.store.ListGlobalScans(ctx) {
		docs = append(docs, search.ScanToDocument(scan))
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if len(docs) > 0 {
		if err := s.index.IndexDocuments(docs); err != nil {
			return 0, fmt.Errorf("index documents: %w", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("Rebuilt scan search index", "documents", len(docs))
	}
	return len(docs), nil
}
