package user

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/clatprep/backend/internal/apperror"
	"github.com/clatprep/backend/internal/dto"
	"github.com/clatprep/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type UserTestController struct {
	userTestService       service.UserTestService
	testSubmissionService service.TestSubmissionService
	lineageService        service.AttemptLineageService
}

func NewUserTestController(
	uts service.UserTestService,
	tss service.TestSubmissionService,
	ls service.AttemptLineageService,
) *UserTestController {
	return &UserTestController{
		userTestService:       uts,
		testSubmissionService: tss,
		lineageService:        ls,
	}
}

func respondError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperror.ErrInvalidArgument):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperror.ErrIntegrity):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: fallback, Details: []string{err.Error()}})
	}
}

// GetAllTests godoc
// @Summary List all available tests
// @Description Get a list of tests with question counts.
// @Tags Tests & Attempts
// @Produce json
// @Success 200 {array} dto.TestSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tests [get]
func (c *UserTestController) GetAllTests(ctx *gin.Context) {
	tests, err := c.userTestService.GetAllTests()
	if err != nil {
		log.Error().Err(err).Msg("GetAllTests: Service error")
		respondError(ctx, err, "Failed to retrieve tests")
		return
	}
	ctx.JSON(http.StatusOK, tests)
}

// GetTestDetails godoc
// @Summary Get details of a specific test
// @Description Get full details of a test, including all its questions, for a user to start an attempt.
// @Tags Tests & Attempts
// @Produce json
// @Param test_id path int true "Test ID"
// @Success 200 {object} dto.TestResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Test ID format"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /tests/{test_id} [get]
func (c *UserTestController) GetTestDetails(ctx *gin.Context) {
	testID, err := strconv.ParseUint(ctx.Param("test_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Test ID format"})
		return
	}
	testDetails, err := c.userTestService.GetTestDetails(uint(testID))
	if err != nil {
		log.Warn().Err(err).Uint64("testID", testID).Msg("GetTestDetails: service error")
		respondError(ctx, err, "Failed to retrieve test")
		return
	}
	ctx.JSON(http.StatusOK, testDetails)
}

// StartTestAttempt godoc
// @Summary Start a new attempt on a test
// @Description Creates the next attempt in the user's lineage for this test: attempt numbers are contiguous and the new attempt becomes the latest.
// @Tags Tests & Attempts
// @Accept json
// @Produce json
// @Param test_id path int true "Test ID"
// @Param body body dto.AttemptStartDTO true "User starting the attempt"
// @Success 201 {object} model.TestAttempt
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "User or test not found"
// @Failure 409 {object} dto.ErrorResponse "Lineage integrity violation"
// @Router /tests/{test_id}/attempts [post]
func (c *UserTestController) StartTestAttempt(ctx *gin.Context) {
	testID, err := strconv.ParseUint(ctx.Param("test_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Test ID format"})
		return
	}

	var req dto.AttemptStartDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("StartTestAttempt: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	attempt, err := c.lineageService.RecordNewAttempt(req.UserID, uint(testID), time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Uint64("testID", testID).Uint("userID", req.UserID).Msg("StartTestAttempt: Service error")
		respondError(ctx, err, "Failed to start test attempt")
		return
	}
	ctx.JSON(http.StatusCreated, attempt)
}

// SubmitTestAttempt godoc
// @Summary Submit answers for an attempt
// @Description Grades the submitted answers, fills the attempt's score fields, and marks it completed.
// @Tags Tests & Attempts
// @Accept json
// @Produce json
// @Param attempt_id path int true "Test Attempt ID"
// @Param body body dto.AttemptSubmitDTO true "All answers of the attempt"
// @Success 200 {object} dto.AttemptDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input or attempt already completed"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /test-attempts/{attempt_id}/submit [put]
func (c *UserTestController) SubmitTestAttempt(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("attempt_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Test Attempt ID format"})
		return
	}

	var req dto.AttemptSubmitDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("SubmitTestAttempt: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	log.Info().Uint64("attemptID", attemptID).Int("answerCount", len(req.Answers)).Msg("Received attempt submission")

	detail, err := c.testSubmissionService.SubmitAttempt(uint(attemptID), req)
	if err != nil {
		log.Error().Err(err).Uint64("attemptID", attemptID).Msg("SubmitTestAttempt: Service error")
		respondError(ctx, err, "Failed to submit test attempt")
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// GetUserTestAttempts godoc
// @Summary Get all attempts by a user for a specific test
// @Description Retrieve a user's attempts on a test, latest attempt first.
// @Tags Tests & Attempts
// @Produce json
// @Param test_id path int true "Test ID"
// @Param user_id query int true "User ID"
// @Success 200 {array} dto.AttemptSummaryDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Router /tests/{test_id}/my-attempts [get]
func (c *UserTestController) GetUserTestAttempts(ctx *gin.Context) {
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

	attempts, err := c.testSubmissionService.GetUserAttemptsForTest(uint(userID), uint(testID))
	if err != nil {
		log.Error().Err(err).Uint64("testID", testID).Uint64("userID", userID).Msg("GetUserTestAttempts: Service error")
		respondError(ctx, err, "Failed to retrieve attempts")
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}

// GetTestAttemptDetails godoc
// @Summary Get details of a specific test attempt
// @Description Retrieve full details of a single attempt, including answers with correctness and marks.
// @Tags Tests & Attempts
// @Produce json
// @Param attempt_id path int true "Test Attempt ID"
// @Success 200 {object} dto.AttemptDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Test Attempt ID format"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /test-attempts/{attempt_id} [get]
func (c *UserTestController) GetTestAttemptDetails(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("attempt_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Test Attempt ID format"})
		return
	}

	details, err := c.testSubmissionService.GetAttemptDetails(uint(attemptID))
	if err != nil {
		log.Warn().Err(err).Uint64("attemptID", attemptID).Msg("GetTestAttemptDetails: service error")
		respondError(ctx, err, "Failed to retrieve attempt")
		return
	}
	ctx.JSON(http.StatusOK, details)
}
