package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"mailsweep/internal/service"
)

type ScanHandler struct {
	sweepService *service.SweepService
}

func NewScanHandler(sweepService *service.SweepService) *ScanHandler {
	return &ScanHandler{
		sweepService: sweepService,
	}
}

// RequestScan handles POST /scan
func (h *ScanHandler) RequestScan(c *gin.Context) {
	var req struct {
		MaxResults int64 `json:"max_results"`
	}

	// body 可以为空，直接用默认值
	_ = c.ShouldBindJSON(&req)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	err := h.sweepService.RequestScan(c.Request.Context(), userID.(int), req.MaxResults)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusPreconditionFailed, gin.H{"error": "no gmail account connected"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request scan"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
