package user

import (
	"net/http"
	"strconv"

	"github.com/clatprep/backend/internal/dto"
	"github.com/clatprep/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AnalyticsController struct {
	analyticsService service.AnalyticsService
	insightService   service.InsightService
}

func NewAnalyticsController(as service.AnalyticsService, is service.InsightService) *AnalyticsController {
	return &AnalyticsController{analyticsService: as, insightService: is}
}

// GetUserAnalytics godoc
// @Summary Get a user's practice analytics
// @Description Computes daily rollups, per-section accuracy and timing, activity streaks, and derived insights over the user's completed attempts.
// @Tags Analytics
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} dto.AnalyticsReport
// @Failure 400 {object} dto.ErrorResponse "Invalid User ID format or malformed attempt data"
// @Router /users/{user_id}/analytics [get]
func (c *AnalyticsController) GetUserAnalytics(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("user_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid User ID format"})
		return
	}

	report, err := c.analyticsService.GetUserAnalytics(uint(userID))
	if err != nil {
		log.Error().Err(err).Uint64("userID", userID).Msg("GetUserAnalytics: Service error")
		respondError(ctx, err, "Failed to compute analytics")
		return
	}

	// Reports are idempotent per user; let clients cache briefly.
	ctx.Header("Cache-Control", "private, max-age=300")
	ctx.JSON(http.StatusOK, report)
}

// GetStudyPlan godoc
// @Summary Get an AI-generated study plan
// @Description Computes the user's analytics and asks the AI model for a short study plan targeting the weakest section.
// @Tags Analytics
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} dto.ErrorResponse "Invalid User ID format"
// @Failure 500 {object} dto.ErrorResponse "AI service unavailable"
// @Router /users/{user_id}/study-plan [get]
func (c *AnalyticsController) GetStudyPlan(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("user_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid User ID format"})
		return
	}

	report, err := c.analyticsService.GetUserAnalytics(uint(userID))
	if err != nil {
		log.Error().Err(err).Uint64("userID", userID).Msg("GetStudyPlan: analytics error")
		respondError(ctx, err, "Failed to compute analytics")
		return
	}

	plan, err := c.insightService.GenerateStudyPlan(ctx.Request.Context(), report)
	if err != nil {
		log.Error().Err(err).Uint64("userID", userID).Msg("GetStudyPlan: insight service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to generate study plan", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"study_plan": plan})
}
