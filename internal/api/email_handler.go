package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mailsweep/internal/repository"
	"mailsweep/internal/service"
)

const defaultListLimit = 100

type EmailHandler struct {
	emailRepo    *repository.EmailRepository
	usageRepo    *repository.UsageRepository
	sweepService *service.SweepService
	unsubService *service.UnsubscribeService
}

func NewEmailHandler(
	emailRepo *repository.EmailRepository,
	usageRepo *repository.UsageRepository,
	sweepService *service.SweepService,
	unsubService *service.UnsubscribeService,
) *EmailHandler {
	return &EmailHandler{
		emailRepo:    emailRepo,
		usageRepo:    usageRepo,
		sweepService: sweepService,
		unsubService: unsubService,
	}
}

// GetEmails handles GET /emails?category=promotional&limit=50
func (h *EmailHandler) GetEmails(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	category := c.Query("category")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit <= 0 || limit > 500 {
		limit = defaultListLimit
	}

	emails, err := h.emailRepo.ListByUser(c.Request.Context(), userID.(int), category, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load emails"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"emails": emails})
}

// GetStats handles GET /emails/stats
func (h *EmailHandler) GetStats(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	stats, err := h.emailRepo.Stats(c.Request.Context(), userID.(int))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	// 本月用量,配合统计一起返回
	usage := gin.H{}
	for _, action := range []string{"scan", "delete", "unsubscribe"} {
		count, err := h.usageRepo.MonthlyCount(c.Request.Context(), userID.(int), action)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load usage"})
			return
		}
		usage[action] = count
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":         stats,
		"monthly_usage": usage,
	})
}

// BulkDelete handles POST /emails/delete
func (h *EmailHandler) BulkDelete(c *gin.Context) {
	var req struct {
		MessageIDs []string `json:"message_ids" binding:"required,min=1"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	deleted, refused, err := h.sweepService.BulkDelete(c.Request.Context(), userID.(int), req.MessageIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete emails"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": deleted,
		"refused": refused,
	})
}

// Unsubscribe handles POST /emails/:message_id/unsubscribe
func (h *EmailHandler) Unsubscribe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	messageID := c.Param("message_id")
	if messageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing message id"})
		return
	}

	err := h.unsubService.RequestUnsubscribe(c.Request.Context(), userID.(int), messageID)
	if err != nil {
		if errors.Is(err, service.ErrNoUnsubscribeLinks) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "email has no unsubscribe links"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request unsubscribe"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
