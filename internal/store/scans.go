package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"iter"

	"github.com/dgraph-io/badger/v4"

	"github.com/citybreaker/citybreaker-server/internal/domain"
)

const (
	scanPoolPrefix    = "scan:"       // Global pool, public scans only
	publicScanPrefix  = "uscan:pub:"  // uscan:pub:{userID}:{scanID} -> ScanRef
	privateScanPrefix = "uscan:priv:" // uscan:priv:{userID}:{scanID} -> full record
)

// ErrScanNotFound is returned when a scan cannot be found.
var ErrScanNotFound = ErrNotFound.WithMessage("scan not found")

// CommitPublicScan durably stores a public scan: the full record goes into
// the global pool and a pointer entry goes under the owner's branch. Both
// writes happen in one transaction so the pool and the pointer cannot
// diverge.
func (s *Store) CommitPublicScan(ctx context.Context, scan *domain.ScanRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	poolKey := scanPoolPrefix + scan.ID
	refKey := publicScanPrefix + scan.OwnerID + ":" + scan.ID

	recordData, err := json.Marshal(scan)
	if err != nil {
		return fmt.Errorf("marshal scan: %w", err)
	}
	refData, err := json.Marshal(domain.ScanRef{ID: scan.ID})
	if err != nil {
		return fmt.Errorf("marshal scan ref: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(poolKey), recordData); err != nil {
			return err
		}
		return txn.Set([]byte(refKey), refData)
	})
	if err != nil {
		return fmt.Errorf("commit public scan: %w", err)
	}

	s.indexScan(ctx, scan)
	return nil
}

// CommitPrivateScan durably stores a private scan as a full record under the
// owner's branch only. The duplication (full record, not a pointer into the
// pool) is intentional: private scans must survive even if the shared pool
// is wiped, and they must never be visible to other users' ranking.
func (s *Store) CommitPrivateScan(ctx context.Context, scan *domain.ScanRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := privateScanPrefix + scan.OwnerID + ":" + scan.ID

	if err := s.set([]byte(key), scan); err != nil {
		return fmt.Errorf("commit private scan: %w", err)
	}
	return nil
}

// GetScan retrieves a scan from the global pool.
func (s *Store) GetScan(ctx context.Context, scanID string) (*domain.ScanRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := buildKey(scanPoolPrefix, scanID)
	defer releaseKey(key)

	var scan domain.ScanRecord
	if err := s.get(key, &scan); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrScanNotFound
		}
		return nil, fmt.Errorf("get scan: %w", err)
	}
	return &scan, nil
}

// GetPrivateScan retrieves one of the owner's private scans.
func (s *Store) GetPrivateScan(ctx context.Context, userID, scanID string) (*domain.ScanRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := buildKey(privateScanPrefix, userID+":"+scanID)
	defer releaseKey(key)

	var scan domain.ScanRecord
	if err := s.get(key, &scan); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrScanNotFound
		}
		return nil, fmt.Errorf("get private scan: %w", err)
	}
	return &scan, nil
}

// GetPublicScanIDs returns the set of scan IDs in the user's public branch.
// The ranker uses this as its exclusion set so users never see their own
// scans recommended back to them.
func (s *Store) GetPublicScanIDs(ctx context.Context, userID string) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := publicScanPrefix + userID + ":"
	ids := make(map[string]bool)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			var ref domain.ScanRef
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ref)
			})
			if err != nil || ref.ID == "" {
				// Malformed pointer, fall back to the key suffix
				ids[string(it.Item().Key())[len(prefix):]] = true
				continue
			}
			ids[ref.ID] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list public scan ids: %w", err)
	}
	return ids, nil
}

// ListPrivateScans returns all of the user's private scans.
func (s *Store) ListPrivateScans(ctx context.Context, userID string) ([]*domain.ScanRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := privateScanPrefix + userID + ":"
	var results []*domain.ScanRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			var scan domain.ScanRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &scan)
			})
			if err != nil {
				return err
			}
			results = append(results, &scan)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list private scans: %w", err)
	}
	return results, nil
}

// ListGlobalScans iterates the global scan pool.
// Malformed entries are skipped and logged, never fatal: the pool has been
// written by several app versions and one bad record must not break ranking
// for everyone.
func (s *Store) ListGlobalScans(ctx context.Context) iter.Seq[*domain.ScanRecord] {
	return func(yield func(*domain.ScanRecord) bool) {
		_ = s.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(scanPoolPrefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek([]byte(scanPoolPrefix)); it.ValidForPrefix([]byte(scanPoolPrefix)); it.Next() {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				var scan domain.ScanRecord
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &scan)
				})
				if err != nil {
					if s.logger != nil {
						s.logger.Warn("Skipping malformed scan record",
							"key", string(it.Item().Key()),
							"error", err)
					}
					continue
				}

				if !yield(&scan) {
					return nil // Consumer stopped early
				}
			}
			return nil
		})
	}
}

// DeleteScan removes a scan owned by userID.
// For public scans it removes both the pool record and the owner's pointer
// in one transaction; for private scans it removes the private record.
// Returns ErrScanNotFound if the user owns no such scan.
func (s *Store) DeleteScan(ctx context.Context, userID, scanID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	poolKey := []byte(scanPoolPrefix + scanID)
	refKey := []byte(publicScanPrefix + userID + ":" + scanID)
	privKey := []byte(privateScanPrefix + userID + ":" + scanID)

	err := s.db.Update(func(txn *badger.Txn) error {
		// Private branch first: private scans never touch the pool.
		if _, err := txn.Get(privKey); err == nil {
			return txn.Delete(privKey)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		// Public: the pointer proves ownership before the pool record goes.
		if _, err := txn.Get(refKey); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrScanNotFound
			}
			return err
		}
		if err := txn.Delete(refKey); err != nil {
			return err
		}
		return txn.Delete(poolKey)
	})
	if err != nil {
		return err
	}

	s.deleteScanFromIndex(ctx, scanID)
	return nil
}

// indexScan updates the search index after a successful commit.
// Index failures are logged, not returned: search lags rather than blocking
// durable writes.
func (s *Store) indexScan(ctx context.Context, scan *domain.ScanRecord) {
	if s.searchIndexer == nil {
		return
	}
	if err := s.searchIndexer.IndexScan(ctx, scan); err != nil && s.logger != nil {
		s.logger.Warn("Failed to index scan", "scan_id", scan.ID, "error", err)
	}
}

// deleteScanFromIndex removes a scan from the search index after deletion.
func (s *Store) deleteScanFromIndex(ctx context.Context, scanID string) {
	if s.searchIndexer == nil {
		return
	}
	if err := s.searchIndexer.DeleteScan(ctx, scanID); err != nil && s.logger != nil {
		s.logger.Warn("Failed to remove scan from index", "scan_id", scanID, "error", err)
	}
}
