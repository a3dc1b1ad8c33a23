package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/driftfs/driftfs/pkg/coordinator"
	"github.com/driftfs/driftfs/pkg/metadata"
)

// healthCheckTimeout bounds how long a readiness probe may wait on the
// metadata store.
const healthCheckTimeout = 5 * time.Second

type healthHandler struct {
	coordinator *coordinator.Coordinator
	store       metadata.Store
	startTime   time.Time
}

func newHealthHandler(coord *coordinator.Coordinator, store metadata.Store) *healthHandler {
	return &healthHandler{
		coordinator: coord,
		store:       store,
		startTime:   time.Now(),
	}
}

// Liveness reports that the process is up. It never touches the
// metadata store, so it stays green while dependencies flap.
func (h *healthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	writeJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"service":    "driftfs",
		"started_at": h.startTime.UTC().Format(time.RFC3339),
		"uptime":     uptime.Round(time.Second).String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// Readiness reports whether the server can actually answer commands,
// which comes down to the metadata store being reachable.
func (h *healthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Healthcheck(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable,
			unhealthyResponse(fmt.Sprintf("metadata store: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"metadata_store": "healthy",
	}))
}

// Nodes lists every registered storage node with its probe state and
// free space, plus the usable capacity of the cluster as a whole.
func (h *healthHandler) Nodes(w http.ResponseWriter, r *http.Request) {
	nodes := h.coordinator.NodesStatus(r.Context())
	writeJSON(w, http.StatusOK, okResponse(map[string]any{
		"nodes":           nodes,
		"count":           len(nodes),
		"available_space": h.coordinator.AvailableSpace(r.Context()),
	}))
}
