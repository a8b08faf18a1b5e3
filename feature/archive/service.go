package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"challan-reconciler/core/export"
	"challan-reconciler/core/extractor"
	"challan-reconciler/core/reconcile"
	"challan-reconciler/core/storage"
	"challan-reconciler/feature/archive/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Storage folders used by the archive.
const (
	FolderChallans = "challans"
	FolderStickers = "stickers"
	FolderReports  = "reports"
)

var (
	// ErrDisabled means neither storage nor a database is configured.
	ErrDisabled = errors.New("archiving is not configured")
	// ErrNoDatabase means the operation needs the archive database.
	ErrNoDatabase = errors.New("archive database is not configured")
	// ErrNoStorage means the operation needs the archive bucket.
	ErrNoStorage = errors.New("archive storage is not configured")
	// ErrNotFound is returned for unknown report ids.
	ErrNotFound = errors.New("archived report not found")
)

// storedFormats are written to the bucket for every archived report.
var storedFormats = []export.Format{export.FormatCSV, export.FormatJSON}

// Service archives finished reports and uploaded documents. Either backend
// may be nil.
type Service struct {
	db     *gorm.DB
	client storage.Client
	bucket string
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates an archive service.
func NewService(db *gorm.DB, client storage.Client, bucket string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:     db,
		client: client,
		bucket: bucket,
		logger: logger,
		now:    time.Now,
	}
}

// Enabled reports whether any backend is configured.
func (s *Service) Enabled() bool {
	return s != nil && (s.db != nil || s.client != nil)
}

// Migrate creates or updates the archive tables.
func (s *Service) Migrate() error {
	if s.db == nil {
		return ErrNoDatabase
	}
	if err := s.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate archive tables: %w", err)
	}
	return nil
}

// ArchiveReport stores a report under a new id. Exported files go to the
// bucket first; when the database write then fails they are removed again.
func (s *Service) ArchiveReport(ctx context.Context, sessionID string, report *reconcile.Report) (*models.ReportRecord, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	id := uuid.NewString()
	rec := models.FromReport(id, sessionID, report, s.now().UTC())
	l := s.logger.With(zap.String("report_id", id), zap.String("session_id", sessionID))

	var uploaded []string
	if s.client != nil {
		rec.ObjectKey = path.Join(FolderReports, id)
		for _, f := range storedFormats {
			var buf bytes.Buffer
			if err := export.Write(&buf, report, f); err != nil {
				return nil, err
			}
			key := rec.ObjectKey + "." + f.Extension()
			if err := storage.PutBytes(ctx, s.client, s.bucket, key, buf.Bytes(), f.ContentType()); err != nil {
				s.rollback(ctx, uploaded)
				return nil, err
			}
			uploaded = append(uploaded, key)
		}
	}

	if s.db != nil {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(rec).Error
		})
		if err != nil {
			l.Error("Failed to store archived report", zap.Error(err))
			s.rollback(ctx, uploaded)
			return nil, fmt.Errorf("failed to store archived report: %w", err)
		}
	}

	l.Info("Report archived", zap.Int("rows", len(rec.Rows)), zap.String("object_key", rec.ObjectKey))
	return rec, nil
}

func (s *Service) rollback(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			s.logger.Warn("Failed to remove archived object", zap.String("key", key), zap.Error(err))
		}
	}
}

// List returns archived reports, newest first, without rows.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.ReportRecord, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var out []models.ReportRecord
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(max(offset, 0)).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list archived reports: %w", err)
	}
	return out, nil
}

// Get returns one archived report with its rows.
func (s *Service) Get(ctx context.Context, id string) (*models.ReportRecord, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	var rec models.ReportRecord
	err := s.db.WithContext(ctx).
		Preload("Rows", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load archived report: %w", err)
	}
	return &rec, nil
}

// Delete removes an archived report, its rows and its stored files. Files
// that cannot be removed are logged; the database record is authoritative.
func (s *Service) Delete(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", id).Delete(&models.RowRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ReportRecord{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete archived report: %w", err)
	}

	if s.client != nil && rec.ObjectKey != "" {
		keys := make([]string, 0, len(storedFormats))
		for _, f := range storedFormats {
			keys = append(keys, rec.ObjectKey+"."+f.Extension())
		}
		s.rollback(ctx, keys)
	}

	s.logger.Info("Archived report deleted", zap.String("report_id", id), zap.Int("rows", len(rec.Rows)))
	return nil
}

// Open streams an archived report in the given format. Stored files are
// served from the bucket; other formats are rendered from the database.
func (s *Service) Open(ctx context.Context, id string, f export.Format) (io.ReadCloser, error) {
	if s.client != nil && isStored(f) {
		key := path.Join(FolderReports, id) + "." + f.Extension()
		obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
		if err == nil {
			return obj, nil
		}
		if s.db == nil {
			if storage.IsNotFound(err) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to open %s: %w", key, err)
		}
		s.logger.Warn("Archived object unavailable, rendering from database", zap.String("key", key), zap.Error(err))
	}

	if s.db == nil {
		if s.client == nil {
			return nil, ErrDisabled
		}
		return nil, ErrNoDatabase
	}

	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, rec.ToReport(), f); err != nil {
		return nil, err
	}
	return io.NopCloser(&buf), nil
}

// SaveImage keeps an uploaded document image and returns its key.
func (s *Service) SaveImage(ctx context.Context, folder, sessionID string, img extractor.Image) (string, error) {
	if s == nil || s.client == nil {
		return "", ErrNoStorage
	}
	name := sanitizeName(img.Name)
	if name == "" {
		name = "image"
	}
	key := path.Join(folder, sessionID, fmt.Sprintf("%d-%s", s.now().UnixNano(), name))
	mime := img.MIMEType
	if mime == "" {
		mime = extractor.DefaultMIMEType
	}
	if err := storage.PutBytes(ctx, s.client, s.bucket, key, img.Data, mime); err != nil {
		return "", err
	}
	return key, nil
}

func isStored(f export.Format) bool {
	for _, sf := range storedFormats {
		if sf == f {
			return true
		}
	}
	return false
}

func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
