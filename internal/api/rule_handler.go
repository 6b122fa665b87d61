package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mailsweep/internal/model"
	"mailsweep/internal/repository"
)

type RuleHandler struct {
	ruleRepo *repository.RuleRepository
}

func NewRuleHandler(ruleRepo *repository.RuleRepository) *RuleHandler {
	return &RuleHandler{
		ruleRepo: ruleRepo,
	}
}

// CreateRule handles POST /rules
func (h *RuleHandler) CreateRule(c *gin.Context) {
	var req struct {
		Name       string                  `json:"name" binding:"required"`
		Conditions model.CleanupConditions `json:"conditions"`
		Actions    model.CleanupActions    `json:"actions"`
		Schedule   *model.CleanupSchedule  `json:"schedule"`
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

	rule := &model.CleanupRule{
		UserID:     userID.(int),
		Name:       req.Name,
		Conditions: req.Conditions,
		Actions:    req.Actions,
		Schedule:   req.Schedule,
		IsActive:   true,
	}

	if err := h.ruleRepo.CreateRule(c.Request.Context(), rule); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create rule"})
		return
	}

	c.JSON(http.StatusCreated, rule)
}

// GetRules handles GET /rules
func (h *RuleHandler) GetRules(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	rules, err := h.ruleRepo.ListByUser(c.Request.Context(), userID.(int))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rules"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// SetRuleActive handles POST /rules/:id/active
func (h *RuleHandler) SetRuleActive(c *gin.Context) {
	var req struct {
		Active bool `json:"active"`
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

	ruleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
		return
	}

	if err := h.ruleRepo.SetActive(c.Request.Context(), userID.(int), ruleID, req.Active); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update rule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// DeleteRule handles DELETE /rules/:id
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ruleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
		return
	}

	if err := h.ruleRepo.DeleteRule(c.Request.Context(), userID.(int), ruleID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete rule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
