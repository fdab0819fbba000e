package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/citybreaker/citybreaker-server/internal/describe"
	"github.com/citybreaker/citybreaker-server/internal/domain"
	domainerrors "github.com/citybreaker/citybreaker-server/internal/errors"
	"github.com/citybreaker/citybreaker-server/internal/geo"
	"github.com/citybreaker/citybreaker-server/internal/id"
	"github.com/citybreaker/citybreaker-server/internal/media"
	"github.com/citybreaker/citybreaker-server/internal/store"
	"github.com/citybreaker/citybreaker-server/internal/vision"
)

// LandmarkDetector identifies the landmark in a photo.
// Satisfied by *vision.Client.
type LandmarkDetector interface {
	DetectLandmark(ctx context.Context, imageData []byte) (*vision.Landmark, error)
}

// LandmarkDescriber generates a description and taxonomy tags for a landmark
// from the identified name and the original photo.
// Satisfied by *describe.Client.
type LandmarkDescriber interface {
	DescribeLandmark(ctx context.Context, imageData []byte, name string, location geo.Coordinate) (*describe.Result, error)
}

// ScanService runs the identify pipeline and manages committed scans.
type ScanService struct {
	store     *store.Store
	detector  LandmarkDetector
	describer LandmarkDescriber
	logger    *slog.Logger
}

// NewScanService creates a new scan service.
func NewScanService(
	store *store.Store,
	detector LandmarkDetector,
	describer LandmarkDescriber,
	logger *slog.Logger,
) *ScanService {
	return &ScanService{
		store:     store,
		detector:  detector,
		describer: describer,
		logger:    logger,
	}
}

// Identify runs the scan pipeline on a photo: landmark detection, photo
// processing, then description and tag generation. Nothing is persisted;
// the returned draft becomes durable only on an explicit commit.
func (s *ScanService) Identify(ctx context.Context, imageData []byte) (*domain.ScanDraft, error) {
	if len(imageData) == 0 {
		return nil, domainerrors.Validation("image data is required")
	}

	landmark, err := s.detector.DetectLandmark(ctx, imageData)
	if err != nil {
		if errors.Is(err, vision.ErrNoLandmark) {
			return nil, domainerrors.NoLandmarkDetected("no landmark recognized in the photo")
		}
		return nil, domainerrors.Upstream("landmark detection failed").WithCause(err)
	}

	photo, err := media.ProcessPhoto(imageData)
	if err != nil {
		return nil, domainerrors.Validation("image could not be decoded").WithCause(err)
	}

	result, err := s.describer.DescribeLandmark(ctx, imageData, landmark.Name, landmark.Location)
	if err != nil {
		return nil, domainerrors.Upstream("description generation failed").WithCause(err)
	}

	if s.logger != nil {
		s.logger.Info("Identified landmark",
			"name", landmark.Name,
			"confidence", landmark.Confidence,
			"tags", len(result.Tags.Flatten()),
		)
	}

	return &domain.ScanDraft{
		Name:        landmark.Name,
		Location:    landmark.Location,
		Description: result.Description,
		Tags:        result.Tags,
		PhotoHash:   photo.Hash,
		BlurHash:    photo.BlurHash,
		CapturedAt:  time.Now(),
	}, nil
}

// CommitScanRequest carries the confirmed draft plus the user's choices.
type CommitScanRequest struct {
	Draft      domain.ScanDraft  `json:"draft"`
	Visibility domain.Visibility `json:"visibility" validate:"required"`
	Rating     int               `json:"rating" validate:"gte=0,lte=5"` // 0 = unrated
}

// CommitScan makes a confirmed draft durable. This is the single point where
// a scan becomes persistent; storage failures surface as WriteFailed.
func (s *ScanService) CommitScan(ctx context.Context, userID string, req CommitScanRequest) (*domain.ScanRecord, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if !req.Visibility.IsValid() {
		return nil, domainerrors.Validation("visibility must be public or private")
	}
	if req.Draft.Name == "" {
		return nil, domainerrors.Validation("draft has no landmark name")
	}

	// Re-validate tags at the trust boundary: the draft round-tripped
	// through the client.
	tags, rejected := domain.NormalizeTagSet(tagSetToRaw(req.Draft.Tags))
	if len(rejected) > 0 && s.logger != nil {
		s.logger.Warn("Dropping unknown tags at commit",
			"user_id", userID,
			"rejected", rejected,
		)
	}

	scanID, err := id.Generate("scan")
	if err != nil {
		return nil, fmt.Errorf("generate scan ID: %w", err)
	}

	capturedAt := req.Draft.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}

	scan := &domain.ScanRecord{
		ID:          scanID,
		OwnerID:     userID,
		Name:        req.Draft.Name,
		Location:    req.Draft.Location,
		Description: req.Draft.Description,
		Tags:        tags,
		Rating:      req.Rating,
		PhotoHash:   req.Draft.PhotoHash,
		BlurHash:    req.Draft.BlurHash,
		Visibility:  req.Visibility,
		CapturedAt:  capturedAt,
		CreatedAt:   time.Now(),
	}

	switch req.Visibility {
	case domain.VisibilityPublic:
		err = s.store.CommitPublicScan(ctx, scan)
	case domain.VisibilityPrivate:
		err = s.store.CommitPrivateScan(ctx, scan)
	}
	if err != nil {
		return nil, domainerrors.WriteFailed("scan could not be saved").WithCause(err)
	}

	if s.logger != nil {
		s.logger.Info("Committed scan",
			"scan_id", scanID,
			"user_id", userID,
			"visibility", req.Visibility,
		)
	}

	return scan, nil
}

// GetScan retrieves a scan the user is allowed to see: any public pool
// record, or one of their own private scans.
func (s *ScanService) GetScan(ctx context.Context, userID, scanID string) (*domain.ScanRecord, error) {
	scan, err := s.store.GetScan(ctx, scanID)
	if err == nil {
		return scan, nil
	}
	if !errors.Is(err, store.ErrScanNotFound) {
		return nil, fmt.Errorf("get scan: %w", err)
	}

	scan, err = s.store.GetPrivateScan(ctx, userID, scanID)
	if err != nil {
		if errors.Is(err, store.ErrScanNotFound) {
			return nil, domainerrors.NotFound("scan not found")
		}
		return nil, fmt.Errorf("get private scan: %w", err)
	}
	return scan, nil
}

// ListUserScans returns all of the user's scans: public pointers resolved
// against the pool, plus private records. A public pointer whose pool record
// has vanished is skipped and logged, not fatal.
func (s *ScanService) ListUserScans(ctx context.Context, userID string) ([]*domain.ScanRecord, error) {
	publicIDs, err := s.store.GetPublicScanIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list public scan ids: %w", err)
	}

	results := make([]*domain.ScanRecord, 0, len(publicIDs))
	for scanID := range publicIDs {
		scan, err := s.store.GetScan(ctx, scanID)
		if err != nil {
			if errors.Is(err, store.ErrScanNotFound) {
				if s.logger != nil {
					s.logger.Warn("Public scan pointer with no pool record",
						"user_id", userID,
						"scan_id", scanID,
					)
				}
				continue
			}
			return nil, fmt.Errorf("resolve public scan %s: %w", scanID, err)
		}
		results = append(results, scan)
	}

	private, err := s.store.ListPrivateScans(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list private scans: %w", err)
	}
	results = append(results, private...)

	return results, nil
}

// DeleteScan removes one of the user's scans.
func (s *ScanService) DeleteScan(ctx context.Context, userID, scanID string) error {
	if err := s.store.DeleteScan(ctx, userID, scanID); err != nil {
		if errors.Is(err, store.ErrScanNotFound) {
			return domainerrors.NotFound("scan not found")
		}
		return fmt.Errorf("delete scan: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Deleted scan", "scan_id", scanID, "user_id", userID)
	}
	return nil
}

// tagSetToRaw converts a TagSet back to the raw map form for re-validation.
func tagSetToRaw(tags domain.TagSet) map[string][]string {
	raw := make(map[string][]string, len(tags))
	for cat, values := range tags {
		raw[string(cat)] = values
	}
	return raw
}
