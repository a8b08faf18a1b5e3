package inbound

import (
	"context"
	"errors"
	"fmt"

	"challan-reconciler/core/extractor"
	"challan-reconciler/core/reconcile"
	"challan-reconciler/core/session"
	"challan-reconciler/feature/archive"
	"challan-reconciler/feature/archive/models"

	"go.uber.org/zap"
)

var (
	// ErrExtractorDisabled means no extraction model is configured.
	ErrExtractorDisabled = errors.New("document extraction is not configured")
	// ErrNoImages is returned for a sticker upload without files.
	ErrNoImages = errors.New("no images uploaded")
)

// Archiver stores finished reports and uploaded images.
type Archiver interface {
	Enabled() bool
	ArchiveReport(ctx context.Context, sessionID string, report *reconcile.Report) (*models.ReportRecord, error)
	SaveImage(ctx context.Context, folder, sessionID string, img extractor.Image) (string, error)
}

// FileError reports one image of a batch that could not be read.
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
	// Raw is the model output when it was received but unusable.
	Raw string `json:"raw,omitempty"`
}

// StickerBatch is the outcome of a multi-image sticker upload.
type StickerBatch struct {
	Added    []reconcile.Sticker `json:"added"`
	Failures []FileError         `json:"failures"`
	Total    int                 `json:"total"`
}

// Service runs the inbound workflow: sessions, extraction, reconciliation
// and archiving.
type Service struct {
	store       *session.Store
	extractor   extractor.Extractor
	archiver    Archiver
	concurrency int
	logger      *zap.Logger
}

// NewService creates the inbound service. ex and arc may be nil.
func NewService(store *session.Store, ex extractor.Extractor, arc Archiver, concurrency int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		store:       store,
		extractor:   ex,
		archiver:    arc,
		concurrency: concurrency,
		logger:      logger,
	}
}

// CreateSession opens a new session.
func (s *Service) CreateSession() (string, error) {
	id, err := s.store.Create()
	if err != nil {
		return "", err
	}
	s.logger.Info("Session created", zap.String("session_id", id))
	return id, nil
}

// Status summarizes a session.
func (s *Service) Status(id string) (*session.Status, error) {
	return s.store.Status(id)
}

// Reset clears a session's challan and scan log.
func (s *Service) Reset(id string) error {
	if err := s.store.Reset(id); err != nil {
		return err
	}
	s.logger.Info("Session cleared", zap.String("session_id", id))
	return nil
}

// Close removes a session.
func (s *Service) Close(id string) error {
	return s.store.Delete(id)
}

// UploadChallan extracts a challan from an image and makes it the session
// challan. A failed extraction leaves the previous challan in place.
func (s *Service) UploadChallan(ctx context.Context, id string, img extractor.Image) (*reconcile.Challan, error) {
	if s.extractor == nil {
		return nil, ErrExtractorDisabled
	}
	if _, err := s.store.Status(id); err != nil {
		return nil, err
	}

	challan, err := s.extractor.ExtractChallan(ctx, img)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetChallan(id, challan); err != nil {
		return nil, err
	}

	s.saveImage(ctx, archive.FolderChallans, id, img)
	s.logger.Info("Challan loaded",
		zap.String("session_id", id),
		zap.Int("lines", len(challan.Lines)))
	return challan, nil
}

// SetChallan replaces the session challan with a supplied record.
func (s *Service) SetChallan(id string, challan *reconcile.Challan) error {
	return s.store.SetChallan(id, challan)
}

// Challan returns the session challan, or reconcile.ErrNoChallan.
func (s *Service) Challan(id string) (*reconcile.Challan, error) {
	snap, err := s.store.Snapshot(id)
	if err != nil {
		return nil, err
	}
	if snap.Challan == nil {
		return nil, reconcile.ErrNoChallan
	}
	return snap.Challan, nil
}

// UploadStickers extracts every image and appends the successes to the
// scan log in upload order. Failed images are reported, not fatal.
func (s *Service) UploadStickers(ctx context.Context, id string, images []extractor.Image) (*StickerBatch, error) {
	if s.extractor == nil {
		return nil, ErrExtractorDisabled
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	remaining, err := s.store.Remaining(id)
	if err != nil {
		return nil, err
	}
	if remaining >= 0 && len(images) > remaining {
		return nil, fmt.Errorf("%w: %d images uploaded, room for %d more stickers",
			session.ErrLimitReached, len(images), remaining)
	}

	results := extractor.ExtractStickers(ctx, s.extractor, images, s.concurrency)

	batch := &StickerBatch{Added: []reconcile.Sticker{}, Failures: []FileError{}}
	read := make([]extractor.Image, 0, len(results))
	for i, r := range results {
		if r.Err != nil {
			fe := FileError{File: r.Name, Error: r.Err.Error()}
			var exErr *extractor.ExtractionError
			if errors.As(r.Err, &exErr) {
				fe.Raw = exErr.Raw
			}
			batch.Failures = append(batch.Failures, fe)
			s.logger.Warn("Sticker extraction failed",
				zap.String("session_id", id),
				zap.String("file", r.Name),
				zap.Error(r.Err))
			continue
		}
		batch.Added = append(batch.Added, *r.Sticker)
		read = append(read, images[i])
	}

	total, err := s.store.AppendStickers(id, batch.Added...)
	if err != nil {
		return nil, err
	}
	batch.Total = total

	for _, img := range read {
		s.saveImage(ctx, archive.FolderStickers, id, img)
	}

	s.logger.Info("Stickers processed",
		zap.String("session_id", id),
		zap.Int("added", len(batch.Added)),
		zap.Int("failed", len(batch.Failures)),
		zap.Int("total", total))
	return batch, nil
}

// AddStickers appends supplied sticker records to the scan log.
func (s *Service) AddStickers(id string, stickers []reconcile.Sticker) (int, error) {
	return s.store.AppendStickers(id, stickers...)
}

// Stickers returns the scan log in scan order.
func (s *Service) Stickers(id string) ([]reconcile.Sticker, error) {
	snap, err := s.store.Snapshot(id)
	if err != nil {
		return nil, err
	}
	if snap.Stickers == nil {
		return []reconcile.Sticker{}, nil
	}
	return snap.Stickers, nil
}

// Reconcile runs the engine over a consistent snapshot of the session.
func (s *Service) Reconcile(id string) (*reconcile.Report, error) {
	snap, err := s.store.Snapshot(id)
	if err != nil {
		return nil, err
	}
	return reconcile.Reconcile(snap.Challan, snap.Stickers)
}

// Archive reconciles the session and archives the report.
func (s *Service) Archive(ctx context.Context, id string) (*models.ReportRecord, error) {
	if s.archiver == nil || !s.archiver.Enabled() {
		return nil, archive.ErrDisabled
	}
	report, err := s.Reconcile(id)
	if err != nil {
		return nil, err
	}
	return s.archiver.ArchiveReport(ctx, id, report)
}

// saveImage keeps an uploaded image when storage archiving is on. Failures
// are logged only; the upload itself has succeeded.
func (s *Service) saveImage(ctx context.Context, folder, id string, img extractor.Image) {
	if s.archiver == nil || !s.archiver.Enabled() {
		return
	}
	key, err := s.archiver.SaveImage(ctx, folder, id, img)
	switch {
	case errors.Is(err, archive.ErrNoStorage):
	case err != nil:
		s.logger.Warn("Failed to archive image", zap.String("session_id", id), zap.String("file", img.Name), zap.Error(err))
	default:
		s.logger.Debug("Image archived", zap.String("key", key))
	}
}
