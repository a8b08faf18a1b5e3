package archive

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"challan-reconciler/feature/archive/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T, svc *Service) *fiber.App {
	app := fiber.New()
	feature := NewFeature(svc, zap.NewNop())
	require.NoError(t, feature.Load(app))
	return app
}

func TestHandleList(t *testing.T) {
	svc := NewService(setupDB(t, true), nil, "", zap.NewNop())
	_, err := svc.ArchiveReport(context.Background(), "sess", testReport(t))
	require.NoError(t, err)

	resp, err := setupTestApp(t, svc).Test(httptest.NewRequest("GET", "/archives?limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list []models.ReportRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 1)
}

func TestHandleGet(t *testing.T) {
	svc := NewService(setupDB(t, true), nil, "", zap.NewNop())
	rec, err := svc.ArchiveReport(context.Background(), "sess", testReport(t))
	require.NoError(t, err)
	app := setupTestApp(t, svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/archives/"+rec.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got models.ReportRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Len(t, got.Rows, 3)

	resp, err = app.Test(httptest.NewRequest("GET", "/archives/unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleDownload(t *testing.T) {
	svc := NewService(setupDB(t, true), nil, "", zap.NewNop())
	rec, err := svc.ArchiveReport(context.Background(), "sess", testReport(t))
	require.NoError(t, err)
	app := setupTestApp(t, svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/archives/"+rec.ID+"/download?format=csv", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), rec.ID+".csv")
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Description,Size,Expected,Received,Variance,Status")

	resp, err = app.Test(httptest.NewRequest("GET", "/archives/"+rec.ID+"/download?format=pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleList_NoDatabase(t *testing.T) {
	app := fiber.New()
	NewHandler(NewService(nil, nil, "", nil), zap.NewNop()).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/archives", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestFeature(t *testing.T) {
	f := NewFeature(NewService(nil, nil, "", nil), zap.NewNop())
	assert.Equal(t, "archive", f.Name())
	assert.False(t, f.IsEnabled())
}

func TestHandleDelete(t *testing.T) {
	svc := NewService(setupDB(t, true), nil, "", zap.NewNop())
	rec, err := svc.ArchiveReport(context.Background(), "sess", testReport(t))
	require.NoError(t, err)
	app := setupTestApp(t, svc)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/archives/"+rec.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("DELETE", "/archives/"+rec.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleDownload_EmptyBucket(t *testing.T) {
	db := setupDB(t, true)
	rec, err := NewService(db, nil, "", zap.NewNop()).ArchiveReport(context.Background(), "sess", testReport(t))
	require.NoError(t, err)

	app := setupTestApp(t, NewService(db, emptyBucket(t), "reconciler", zap.NewNop()))
	resp, err := app.Test(httptest.NewRequest("GET", "/archives/"+rec.ID+"/download?format=json", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"challan_number": "DC-71"`)

	app = setupTestApp(t, NewService(nil, emptyBucket(t), "reconciler", zap.NewNop()))
	resp, err = app.Test(httptest.NewRequest("GET", "/archives/unknown/download", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
