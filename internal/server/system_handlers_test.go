package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/precept/internal/database"
	"github.com/aristath/precept/internal/modules/refdata"
)

func setupSystemHandlers(t *testing.T) *SystemHandlers {
	t.Helper()

	dir := t.TempDir()
	db, err := database.New(database.Config{
		Path: filepath.Join(dir, "precept.db"),
		Name: "precept",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSystemHandlers(zerolog.Nop(), dir, db, refdata.NewStore(), nil, nil)
}

func TestSystemHandlers_HandleSystemStatus(t *testing.T) {
	h := setupSystemHandlers(t)

	t.Run("reports unloaded dataset before first swap", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
		rec := httptest.NewRecorder()

		h.HandleSystemStatus(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var response SystemStatusResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

		assert.Equal(t, "running", response.Status)
		assert.False(t, response.DatasetLoaded)
		assert.Greater(t, response.Goroutines, 0)
	})

	t.Run("reports loaded dataset after swap", func(t *testing.T) {
		h.store.Swap(&refdata.Dataset{LoadedAt: time.Now()})

		req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
		rec := httptest.NewRecorder()

		h.HandleSystemStatus(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var response SystemStatusResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

		assert.True(t, response.DatasetLoaded)
		assert.GreaterOrEqual(t, response.DatasetAgeSec, 0)
	})
}

func TestSystemHandlers_HandleDatabaseStats(t *testing.T) {
	h := setupSystemHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/system/database/stats", nil)
	rec := httptest.NewRecorder()

	h.HandleDatabaseStats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response DatabaseStatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

	assert.Equal(t, "precept", response.Name)
	assert.NotEmpty(t, response.Path)
	assert.GreaterOrEqual(t, response.SizeMB, 0.0)
	assert.GreaterOrEqual(t, response.PageCount, int64(0))
	assert.Greater(t, response.PageSize, int64(0))
}

func TestSystemHandlers_HandleDiskUsage(t *testing.T) {
	h := setupSystemHandlers(t)

	// Drop a known file into the data directory so usage is non-zero
	require.NoError(t, os.WriteFile(filepath.Join(h.dataDir, "seed.csv"), make([]byte, 2048), 0644))

	req := httptest.NewRequest(http.MethodGet, "/api/system/disk", nil)
	rec := httptest.NewRecorder()

	h.HandleDiskUsage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response DiskUsageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

	assert.Greater(t, response.DataDirMB, 0.0)
	assert.Equal(t, response.DataDirMB, response.TotalMB)
}

func TestSystemHandlers_HandleTriggerRefresh_NotConfigured(t *testing.T) {
	h := setupSystemHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/system/jobs/refdata-refresh", nil)
	rec := httptest.NewRecorder()

	h.HandleTriggerRefresh(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
