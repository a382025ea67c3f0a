package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/precept/internal/database"
	"github.com/aristath/precept/internal/modules/refdata"
	"github.com/aristath/precept/internal/scheduler"
)

// SystemHandlers provides system monitoring endpoints
type SystemHandlers struct {
	log        zerolog.Logger
	dataDir    string
	db         *database.DB
	store      *refdata.Store
	refreshJob scheduler.Job
	scheduler  *scheduler.Scheduler
	startedAt  time.Time
}

// NewSystemHandlers creates system monitoring handlers
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	db *database.DB,
	store *refdata.Store,
	refreshJob scheduler.Job,
	sched *scheduler.Scheduler,
) *SystemHandlers {
	return &SystemHandlers{
		log:        log.With().Str("component", "system_handlers").Logger(),
		dataDir:    dataDir,
		db:         db,
		store:      store,
		refreshJob: refreshJob,
		scheduler:  sched,
		startedAt:  time.Now(),
	}
}

// SystemStatusResponse is the payload of GET /api/system/status
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds int     `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	RAMPercent    float64 `json:"ram_percent"`
	Goroutines    int     `json:"goroutines"`
	DatasetLoaded bool    `json:"dataset_loaded"`
	DatasetAgeSec int     `json:"dataset_age_seconds"`
	Timestamp     string  `json:"timestamp"`
}

// DatabaseStatsResponse is the payload of GET /api/system/database/stats
type DatabaseStatsResponse struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	SizeMB      float64 `json:"size_mb"`
	WALSizeMB   float64 `json:"wal_size_mb"`
	PageCount   int64   `json:"page_count"`
	PageSize    int64   `json:"page_size"`
	LastChecked string  `json:"last_checked"`
}

// DiskUsageResponse is the payload of GET /api/system/disk
type DiskUsageResponse struct {
	DataDirMB float64 `json:"data_dir_mb"`
	TotalMB   float64 `json:"total_mb"`
}

// HandleSystemStatus returns process and dataset health
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, ramPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        "running",
		UptimeSeconds: int(time.Since(h.startedAt).Seconds()),
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
		Goroutines:    runtime.NumGoroutine(),
		Timestamp:     time.Now().Format(time.RFC3339),
	}

	if d := h.store.Current(); d != nil {
		response.DatasetLoaded = true
		response.DatasetAgeSec = int(time.Since(d.LoadedAt).Seconds())
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleDatabaseStats returns SQLite file and page statistics
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")

	stats, err := h.db.GetStats()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get database stats")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get database stats"})
		return
	}

	response := DatabaseStatsResponse{
		Name:        h.db.Name(),
		Path:        h.db.Path(),
		SizeMB:      float64(stats.SizeBytes) / 1024 / 1024,
		WALSizeMB:   float64(stats.WALSizeBytes) / 1024 / 1024,
		PageCount:   stats.PageCount,
		PageSize:    stats.PageSize,
		LastChecked: time.Now().Format(time.RFC3339),
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleDiskUsage returns disk usage of the data directory
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting disk usage")

	dataDirSize := h.getDirSize(h.dataDir)

	response := DiskUsageResponse{
		DataDirMB: dataDirSize,
		TotalMB:   dataDirSize,
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleTriggerRefresh runs the reference-data refresh job immediately
func (h *SystemHandlers) HandleTriggerRefresh(w http.ResponseWriter, r *http.Request) {
	if h.refreshJob == nil || h.scheduler == nil {
		http.Error(w, "Refresh job not configured", http.StatusServiceUnavailable)
		return
	}

	if err := h.scheduler.RunNow(h.refreshJob); err != nil {
		h.log.Error().Err(err).Msg("Manual refresh failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "failed",
			"error":  err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "completed",
		"job":    h.refreshJob.Name(),
	})
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})

	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats calculates CPU and RAM usage percentages.
// Uses a 100ms sampling interval so the status call stays fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuValue := 0.0
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(cpuPercent) == 0 {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	} else {
		cpuValue = cpuPercent[0]
	}

	ramValue := 0.0
	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
	} else {
		ramValue = memStat.UsedPercent
	}

	return cpuValue, ramValue
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
