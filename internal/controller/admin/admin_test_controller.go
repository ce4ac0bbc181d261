package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/clatprep/backend/internal/apperror"
	"github.com/clatprep/backend/internal/dto"
	"github.com/clatprep/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AdminTestController struct {
	adminTestService service.AdminTestService
	lineageService   service.AttemptLineageService
}

func NewAdminTestController(adminTestService service.AdminTestService, lineageService service.AttemptLineageService) *AdminTestController {
	return &AdminTestController{adminTestService: adminTestService, lineageService: lineageService}
}

// CreateTest godoc
// @Summary (Admin) Create a new complete test
// @Description Admin creates a new test with its sectioned questions.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param test_data body dto.TestCreateDTO true "Test creation data including all questions"
// @Success 201 {object} dto.TestResponseDTO "Test created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests [post]
func (c *AdminTestController) CreateTest(ctx *gin.Context) {
	var req dto.TestCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateTest: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	testResp, err := c.adminTestService.CreateTest(req)
	if err != nil {
		log.Error().Err(err).Msg("Admin CreateTest: Service error")
		if errors.Is(err, apperror.ErrInvalidArgument) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create test", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, testResp)
}

// AddQuestion godoc
// @Summary (Admin) Add a question to an existing test
// @Description Admin appends a single sectioned question to an already created test.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param test_id path int true "Test ID"
// @Param question_data body dto.QuestionCreateDTO true "Question creation data"
// @Success 201 {object} dto.QuestionResponseDTO "Question created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests/{test_id}/questions [post]
func (c *AdminTestController) AddQuestion(ctx *gin.Context) {
	testID, err := strconv.ParseUint(ctx.Param("test_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Test ID format"})
		return
	}

	var req dto.QuestionCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin AddQuestion: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	questionResp, err := c.adminTestService.AddQuestion(uint(testID), req)
	if err != nil {
		log.Error().Err(err).Uint64("testID", testID).Msg("Admin AddQuestion: Service error")
		switch {
		case errors.Is(err, apperror.ErrNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		case errors.Is(err, apperror.ErrInvalidArgument):
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		default:
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to add question", Details: []string{err.Error()}})
		}
		return
	}
	ctx.JSON(http.StatusCreated, questionResp)
}

// RebuildLineage godoc
// @Summary (Admin) Rebuild a user's attempt lineage for a test
// @Description Renumbers attempts from 1 by start time, rechains previous-attempt references, and reflags the latest attempt. Idempotent repair operation.
// @Tags Admin - Tests
// @Produce json
// @Param test_id path int true "Test ID"
// @Param user_id query int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests/{test_id}/attempts/rebuild [post]
func (c *AdminTestController) RebuildLineage(ctx *gin.Context) {
	testID, err := strconv.ParseUint(ctx.Param("test_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Test ID format"})
		return
	}
	userID, err := strconv.ParseUint(ctx.Query("user_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid User ID format in query"})
		return
	}

	if err := c.lineageService.RebuildLineage(uint(userID), uint(testID)); err != nil {
		log.Error().Err(err).Uint64("testID", testID).Uint64("userID", userID).Msg("Admin RebuildLineage: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to rebuild lineage", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "lineage rebuilt"})
}
