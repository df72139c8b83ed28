package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/uploads"
)

// StatusHandler reports host resource usage for operators. Admin only.
type StatusHandler struct {
	storage *uploads.Storage
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(storage *uploads.Storage) *StatusHandler {
	return &StatusHandler{storage: storage}
}

// Get handles the request for current memory and upload-disk usage.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Error().Err(err).Msg("Failed to read memory stats")
		respondError(w, err)
		return
	}

	du, err := disk.Usage(h.storage.Dir())
	if err != nil {
		log.Error().Err(err).Str("path", h.storage.Dir()).Msg("Failed to read disk stats")
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"memory": map[string]interface{}{
			"total":       vm.Total,
			"used":        vm.Used,
			"usedPercent": vm.UsedPercent,
		},
		"uploads": map[string]interface{}{
			"path":        h.storage.Dir(),
			"total":       du.Total,
			"free":        du.Free,
			"usedPercent": du.UsedPercent,
		},
	})
}
