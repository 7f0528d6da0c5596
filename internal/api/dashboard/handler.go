// Package dashboard provides REST API handlers for the progression
// dashboard: completions, leaderboards, user statistics, streaks,
// achievements, and the level catalog.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/akarsten/habitquest/internal/levels"
	"github.com/akarsten/habitquest/internal/models"
	"github.com/akarsten/habitquest/internal/service/achievements"
	"github.com/akarsten/habitquest/internal/service/engine"
	"github.com/akarsten/habitquest/internal/service/leaderboard"
	"github.com/akarsten/habitquest/pkg/logger"
)

// EngineService interface for award and streak operations.
type EngineService interface {
	AwardXP(ctx context.Context, award engine.Award) (*engine.AwardResult, error)
	UserStreaks(ctx context.Context, userID uint) (*engine.Streaks, error)
}

// AchievementService interface for achievement queries.
type AchievementService interface {
	GetUserAchievements(ctx context.Context, userID uint) ([]models.LevelAchievement, error)
	EvaluateSpecial(ctx context.Context, userID uint) ([]achievements.Status, error)
}

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error)
	GetUserStats(ctx context.Context, userID uint) (*leaderboard.UserStats, error)
}

// Handler handles dashboard API requests.
type Handler struct {
	engineService      EngineService
	achievementService AchievementService
	leaderboardService LeaderboardService
	catalog            *levels.Catalog
	log                *logger.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(
	engineService EngineService,
	achievementService AchievementService,
	leaderboardService LeaderboardService,
	catalog *levels.Catalog,
	log *logger.Logger,
) *Handler {
	return &Handler{
		engineService:      engineService,
		achievementService: achievementService,
		leaderboardService: leaderboardService,
		catalog:            catalog,
		log:                log,
	}
}

// RegisterRoutes mounts the dashboard endpoints.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/leaderboard", h.GetLeaderboard)
		v1.GET("/levels", h.GetLevelCatalog)
		v1.POST("/users/:id/completions", h.RecordCompletion)
		v1.GET("/users/:id/stats", h.GetUserStats)
		v1.GET("/users/:id/streaks", h.GetUserStreaks)
		v1.GET("/users/:id/achievements", h.GetUserAchievements)
	}
}

// completionRequest is the payload for recording a completion.
type completionRequest struct {
	Amount      int    `json:"amount" binding:"required"`
	Source      string `json:"source" binding:"required"`
	HabitID     *uint  `json:"habit_id"`
	Description string `json:"description"`
}

// RecordCompletion credits XP for a qualifying completion event.
// POST /api/v1/users/:id/completions.
func (h *Handler) RecordCompletion(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req completionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.engineService.AwardXP(c.Request.Context(), engine.Award{
		UserID:      userID,
		Amount:      req.Amount,
		Source:      req.Source,
		HabitID:     req.HabitID,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidAmount), errors.Is(err, engine.ErrInvalidSource):
			h.errorResponse(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, engine.ErrUserNotFound):
			h.errorResponse(c, http.StatusNotFound, err.Error())
		default:
			h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to award XP")
			h.errorResponse(c, http.StatusInternalServerError, "Failed to record completion")
		}
		return
	}

	h.log.Info().
		Uint("user_id", userID).
		Str("source", req.Source).
		Int("amount", req.Amount).
		Bool("leveled_up", result.LeveledUp).
		Msg("Completion recorded")

	c.JSON(http.StatusOK, result)
}

// GetLeaderboard returns the global XP leaderboard.
// GET /api/v1/leaderboard?limit=10.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, err := h.parseLimit(c, 10)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.leaderboardService.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   entries,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// GetUserStats returns a user's progression snapshot.
// GET /api/v1/users/:id/stats.
func (h *Handler) GetUserStats(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.leaderboardService.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.errorResponse(c, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get user stats")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve user stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetUserStreaks returns a user's current and longest streaks.
// GET /api/v1/users/:id/streaks.
func (h *Handler) GetUserStreaks(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	streaks, err := h.engineService.UserStreaks(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to compute streaks")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to compute streaks")
		return
	}

	c.JSON(http.StatusOK, streaks)
}

// GetUserAchievements returns a user's level achievements plus the evaluated
// special achievement statuses.
// GET /api/v1/users/:id/achievements.
func (h *Handler) GetUserAchievements(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	levelAchievements, err := h.achievementService.GetUserAchievements(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get achievements")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve achievements")
		return
	}

	special, err := h.achievementService.EvaluateSpecial(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to evaluate special achievements")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to evaluate special achievements")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"level_achievements":   levelAchievements,
		"special_achievements": special,
	})
}

// GetLevelCatalog returns the static level catalog.
// GET /api/v1/levels.
func (h *Handler) GetLevelCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"levels":    h.catalog.Definitions(),
		"max_level": h.catalog.MaxLevel(),
	})
}

// parseUserID extracts the :id path parameter.
func (h *Handler) parseUserID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.New("invalid user id")
	}
	return uint(id), nil
}

// parseLimit extracts the limit query parameter with a default.
func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	raw := c.DefaultQuery("limit", strconv.Itoa(defaultLimit))
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.New("invalid limit parameter")
	}
	return limit, nil
}

// errorResponse sends a JSON error response.
func (h *Handler) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
