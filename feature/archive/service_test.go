package archive

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"challan-reconciler/core/database"
	"challan-reconciler/core/export"
	"challan-reconciler/core/extractor"
	"challan-reconciler/core/reconcile"
	"challan-reconciler/core/storage"
	"challan-reconciler/core/storage/mocks"
	"challan-reconciler/feature/archive/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	if migrate {
		require.NoError(t, NewService(db, nil, "", nil).Migrate())
	}
	return db
}

func testReport(t *testing.T) *reconcile.Report {
	t.Helper()
	number := "DC-71"
	report, err := reconcile.Reconcile(&reconcile.Challan{
		Number: &number,
		Lines: []reconcile.ChallanLine{
			{Description: "Kurta", Size: "M", ExpectedQty: 2},
			{Description: "Kurta", Size: "L", ExpectedQty: 1},
		},
	}, []reconcile.Sticker{
		{Style: "Kurta", CodeSize: "M"},
		{Style: "Kurta", CodeSize: "L"},
		{Style: "Dupatta", CodeSize: "FREE"},
	})
	require.NoError(t, err)
	return report
}

func TestArchiveReport_Database(t *testing.T) {
	ctx := context.Background()
	svc := NewService(setupDB(t, true), nil, "", zap.NewNop())

	rec, err := svc.ArchiveReport(ctx, "sess-1", testReport(t))
	require.NoError(t, err)
	assert.Empty(t, rec.ObjectKey)

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.SessionID)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, "(UNMATCHED SCAN) Dupatta", got.Rows[2].Description)
	assert.Equal(t, testReport(t).Rows, got.ToReport().Rows)

	list, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Rows)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchiveReport_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := NewService(setupDB(t, true), nil, "", zap.NewNop())
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return at }
		rec, err := svc.ArchiveReport(ctx, "sess", testReport(t))
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	list, err := svc.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)
}

func TestArchiveReport_Storage(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("PutObject", ctx, "reconciler", mock.MatchedBy(func(k string) bool {
		return strings.HasPrefix(k, "reports/") && strings.HasSuffix(k, ".csv")
	}), mock.Anything, mock.Anything, minio.PutObjectOptions{ContentType: "text/csv"}).Return(minio.UploadInfo{}, nil).Once()
	client.On("PutObject", ctx, "reconciler", mock.MatchedBy(func(k string) bool {
		return strings.HasSuffix(k, ".json")
	}), mock.Anything, mock.Anything, minio.PutObjectOptions{ContentType: "application/json"}).Return(minio.UploadInfo{}, nil).Once()

	svc := NewService(nil, client, "reconciler", zap.NewNop())
	rec, err := svc.ArchiveReport(ctx, "sess-2", testReport(t))
	require.NoError(t, err)
	assert.Equal(t, "reports/"+rec.ID, rec.ObjectKey)
	client.AssertExpectations(t)

	_, err = svc.List(ctx, 0, 0)
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func TestArchiveReport_RollsBackObjects(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("PutObject", ctx, "reconciler", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)
	client.On("RemoveObject", ctx, "reconciler", mock.Anything, minio.RemoveObjectOptions{}).Return(nil)

	svc := NewService(setupDB(t, false), client, "reconciler", zap.NewNop())
	_, err := svc.ArchiveReport(ctx, "sess-3", testReport(t))
	require.Error(t, err)

	client.AssertNumberOfCalls(t, "PutObject", 2)
	client.AssertNumberOfCalls(t, "RemoveObject", 2)
}

func TestArchiveReport_UploadFails(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("PutObject", ctx, "reconciler", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("bucket gone"))

	svc := NewService(nil, client, "reconciler", zap.NewNop())
	_, err := svc.ArchiveReport(ctx, "sess", testReport(t))
	assert.ErrorContains(t, err, "bucket gone")
	client.AssertNotCalled(t, "RemoveObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestArchiveReport_Disabled(t *testing.T) {
	svc := NewService(nil, nil, "", nil)
	assert.False(t, svc.Enabled())
	_, err := svc.ArchiveReport(context.Background(), "s", testReport(t))
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("FromStorage", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", ctx, "reconciler", "reports/abc.csv", minio.GetObjectOptions{}).
			Return(io.NopCloser(strings.NewReader("Description,Size\n")), nil)

		svc := NewService(nil, client, "reconciler", zap.NewNop())
		rc, err := svc.Open(ctx, "abc", export.FormatCSV)
		require.NoError(t, err)
		data, _ := io.ReadAll(rc)
		assert.Equal(t, "Description,Size\n", string(data))
	})

	t.Run("RenderedFromDatabase", func(t *testing.T) {
		svc := NewService(setupDB(t, true), nil, "", zap.NewNop())
		rec, err := svc.ArchiveReport(ctx, "sess", testReport(t))
		require.NoError(t, err)

		rc, err := svc.Open(ctx, rec.ID, export.FormatCSV)
		require.NoError(t, err)
		data, _ := io.ReadAll(rc)
		assert.Contains(t, string(data), "Kurta,L,1,1,0,MATCH")
	})

	t.Run("StorageMissFallsBack", func(t *testing.T) {
		db := setupDB(t, true)
		seed := NewService(db, nil, "", zap.NewNop())
		rec, err := seed.ArchiveReport(ctx, "sess", testReport(t))
		require.NoError(t, err)

		client := new(mocks.Client)
		client.On("GetObject", ctx, "reconciler", "reports/"+rec.ID+".json", minio.GetObjectOptions{}).
			Return(nil, errors.New("no such key"))

		svc := NewService(db, client, "reconciler", zap.NewNop())
		rc, err := svc.Open(ctx, rec.ID, export.FormatJSON)
		require.NoError(t, err)
		data, _ := io.ReadAll(rc)
		assert.Contains(t, string(data), `"challan_number": "DC-71"`)
	})

	t.Run("EmptyBucketFallsBack", func(t *testing.T) {
		db := setupDB(t, true)
		rec, err := NewService(db, nil, "", zap.NewNop()).ArchiveReport(ctx, "sess", testReport(t))
		require.NoError(t, err)

		svc := NewService(db, emptyBucket(t), "reconciler", zap.NewNop())
		rc, err := svc.Open(ctx, rec.ID, export.FormatCSV)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Kurta,L,1,1,0,MATCH")
	})

	t.Run("EmptyBucketNotFound", func(t *testing.T) {
		svc := NewService(nil, emptyBucket(t), "reconciler", zap.NewNop())
		_, err := svc.Open(ctx, "unknown", export.FormatJSON)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Disabled", func(t *testing.T) {
		_, err := NewService(nil, nil, "", nil).Open(ctx, "x", export.FormatCSV)
		assert.ErrorIs(t, err, ErrDisabled)
	})
}

// emptyBucket is a real minio client talking to an S3 endpoint that
// answers NoSuchKey for every object.
func emptyBucket(t *testing.T) storage.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		if r.Method != http.MethodHead {
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
		}
	}))
	t.Cleanup(srv.Close)

	client, err := storage.NewClient(storage.Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "k",
		SecretKey: "s",
		Region:    "us-east-1",
	})
	require.NoError(t, err)
	return client
}

func TestSaveImage(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("PutObject", ctx, "reconciler", "stickers/sess-9/42-IMG_0001__1_.jpg", mock.Anything, int64(3),
		minio.PutObjectOptions{ContentType: extractor.DefaultMIMEType}).Return(minio.UploadInfo{}, nil)

	svc := NewService(nil, client, "reconciler", zap.NewNop())
	svc.now = func() time.Time { return time.Unix(0, 42) }

	key, err := svc.SaveImage(ctx, FolderStickers, "sess-9", extractor.Image{Data: []byte("abc"), Name: "../IMG_0001 (1).jpg"})
	require.NoError(t, err)
	assert.Equal(t, "stickers/sess-9/42-IMG_0001__1_.jpg", key)

	_, err = NewService(nil, nil, "", nil).SaveImage(ctx, FolderChallans, "s", extractor.Image{})
	assert.ErrorIs(t, err, ErrNoStorage)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t, true)
	client := new(mocks.Client)
	client.Stored("bucket")
	svc := NewService(db, client, "bucket", zap.NewNop())

	rec, err := svc.ArchiveReport(ctx, "sess", testReport(t))
	require.NoError(t, err)

	client.On("RemoveObject", mock.Anything, "bucket", "reports/"+rec.ID+".csv", mock.Anything).Return(nil)
	client.On("RemoveObject", mock.Anything, "bucket", "reports/"+rec.ID+".json", mock.Anything).Return(errors.New("gone"))

	require.NoError(t, svc.Delete(ctx, rec.ID))
	client.AssertNumberOfCalls(t, "RemoveObject", 2)

	_, err = svc.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var rows int64
	require.NoError(t, db.Model(&models.RowRecord{}).Where("report_id = ?", rec.ID).Count(&rows).Error)
	assert.Zero(t, rows)

	assert.ErrorIs(t, svc.Delete(ctx, rec.ID), ErrNotFound)
	assert.ErrorIs(t, NewService(nil, client, "bucket", nil).Delete(ctx, rec.ID), ErrNoDatabase)
}
