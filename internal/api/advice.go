package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/RichardoC/parentpal/internal/llm"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdviceRequest struct {
	ChildAge string `json:"childAge" binding:"required"`
	Topic    string `json:"topic" binding:"required"`
}

type MilestonesRequest struct {
	AgeGroup string `json:"ageGroup" binding:"required"`
}

type ChallengesRequest struct {
	AgeGroup string `json:"ageGroup" binding:"required"`
	Topic    string `json:"topic" binding:"required"`
}

type RoutineRequest struct {
	AgeGroup     string `json:"ageGroup" binding:"required"`
	ActivityType string `json:"activityType" binding:"required"`
}

func (h *Handler) GenerateAdvice(c *gin.Context) {
	var req AdviceRequest
	if !bindJSON(c, &req) {
		return
	}
	advice, err := h.llm.GenerateParentingAdvice(c.Request.Context(), req.ChildAge, req.Topic)
	h.respondGenerated(c, "advice", advice, err)
}

func (h *Handler) GenerateMilestones(c *gin.Context) {
	var req MilestonesRequest
	if !bindJSON(c, &req) {
		return
	}
	milestones, err := h.llm.GenerateDevelopmentMilestones(c.Request.Context(), req.AgeGroup)
	h.respondGenerated(c, "milestones", milestones, err)
}

func (h *Handler) GenerateChallenges(c *gin.Context) {
	var req ChallengesRequest
	if !bindJSON(c, &req) {
		return
	}
	challenges, err := h.llm.GenerateCommonChallenges(c.Request.Context(), req.AgeGroup, req.Topic)
	h.respondGenerated(c, "challenges", challenges, err)
}

func (h *Handler) GenerateRoutine(c *gin.Context) {
	var req RoutineRequest
	if !bindJSON(c, &req) {
		return
	}
	routine, err := h.llm.GenerateRoutinePlanner(c.Request.Context(), req.AgeGroup, req.ActivityType)
	h.respondGenerated(c, "routine", routine, err)
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *Handler) respondGenerated(c *gin.Context, kind string, v any, err error) {
	if err == nil {
		c.JSON(http.StatusOK, v)
		return
	}

	h.logger.Error("Failed to generate object", zap.Error(err), zap.String("kind", kind))
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "the model took too long to answer"})
	case errors.Is(err, llm.ErrInvalidObject):
		c.JSON(http.StatusBadGateway, gin.H{"error": "the model returned an unusable answer"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "the model is unavailable"})
	}
}
