package integrity

import (
	"context"
	"testing"

	"challan-reconciler/core/database"
	"challan-reconciler/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupSQLite(t *testing.T) *gorm.DB {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	return db
}

func TestService_Structure(t *testing.T) {
	mockClient := new(mocks.Client)
	svc := NewService(mockClient, "test-bucket", zap.NewNop(), nil)

	t.Run("CheckStructure", func(t *testing.T) {
		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(mocks.Listing())

		missing, err := svc.CheckStructure(context.Background())
		assert.NoError(t, err)
		assert.Len(t, missing, 3)
	})

	t.Run("FixStructure", func(t *testing.T) {
		mockClient.On("PutObject", mock.Anything, "test-bucket", mock.Anything, mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)
		err := svc.FixStructure(context.Background(), []string{"reports"})
		assert.NoError(t, err)
	})
}

func TestService_Database(t *testing.T) {
	t.Run("No Database", func(t *testing.T) {
		svc := NewService(nil, "", zap.NewNop(), nil)
		_, err := svc.CheckDatabase()
		assert.Error(t, err)
	})

	t.Run("Fix Then Check", func(t *testing.T) {
		svc := NewService(nil, "", zap.NewNop(), setupSQLite(t))

		report, err := svc.CheckDatabase()
		require.NoError(t, err)
		assert.False(t, report.Matched)

		require.NoError(t, svc.FixDatabase())
		report, err = svc.CheckDatabase()
		require.NoError(t, err)
		assert.True(t, report.Matched)
	})
}
