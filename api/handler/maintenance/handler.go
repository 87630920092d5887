package maintenance

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/biffcrash1/image-viewer/api/common"
	"github.com/biffcrash1/image-viewer/internal/catalog"
	"github.com/biffcrash1/image-viewer/internal/scanner"
	"github.com/biffcrash1/image-viewer/internal/worker"
)

// Handler serves the catalog maintenance endpoints.
type Handler struct {
	catalog *catalog.Service
	scanner *scanner.Scanner
}

// NewHandler creates the maintenance handler.
func NewHandler(catalogService *catalog.Service, sc *scanner.Scanner) *Handler {
	return &Handler{
		catalog: catalogService,
		scanner: sc,
	}
}

// scanTask runs one rescan on the worker pool and invalidates the
// cached listings when the catalog changed.
type scanTask struct {
	catalog *catalog.Service
	scanner *scanner.Scanner
	jobID   string
}

// Execute implements worker.Task.
func (t *scanTask) Execute() {
	summary, err := t.scanner.RunJob(context.Background(), t.jobID, true)
	if err != nil {
		log.Printf("[Maintenance] Scan job %s failed: %v", t.jobID, err)
		return
	}
	if summary.Added > 0 || summary.Removed > 0 {
		t.catalog.InvalidateListings(context.Background())
	}
}

// TriggerScan starts an asynchronous rescan and returns its job id.
func (h *Handler) TriggerScan(c *gin.Context) {
	jobID := uuid.NewString()
	task := &scanTask{
		catalog: h.catalog,
		scanner: h.scanner,
		jobID:   jobID,
	}

	if !worker.Submit(task) {
		common.RespondError(c, http.StatusServiceUnavailable, "scan queue is full")
		return
	}

	common.RespondSuccessMessage(c, "scan started", gin.H{
		"job_id": jobID,
	})
}

// GetStats returns catalog statistics.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.catalog.GetStats(c.Request.Context())
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to get stats")
		return
	}

	common.RespondSuccess(c, stats)
}
