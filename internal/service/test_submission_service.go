package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/clatprep/backend/internal/apperror"
	"github.com/clatprep/backend/internal/dto"
	"github.com/clatprep/backend/internal/model"
	"github.com/clatprep/backend/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// TestSubmissionService handles grading and completing attempts and serving
// attempt details and history.
type TestSubmissionService interface {
	SubmitAttempt(attemptID uint, req dto.AttemptSubmitDTO) (*dto.AttemptDetailDTO, error)
	GetAttemptDetails(attemptID uint) (*dto.AttemptDetailDTO, error)
	GetUserAttemptsForTest(userID, testID uint) ([]dto.AttemptSummaryDTO, error)
}

type testSubmissionService struct {
	testRepo        repository.TestRepository
	testAttemptRepo repository.TestAttemptRepository
	scoring         ScoringService
	db              *gorm.DB // transactions for the grade-and-complete write
}

func NewTestSubmissionService(
	testRepo repository.TestRepository,
	testAttemptRepo repository.TestAttemptRepository,
	scoring ScoringService,
	db *gorm.DB,
) TestSubmissionService {
	return &testSubmissionService{
		testRepo:        testRepo,
		testAttemptRepo: testAttemptRepo,
		scoring:         scoring,
		db:              db,
	}
}

// SubmitAttempt grades the submitted answers against the test's questions,
// fills the attempt's score fields, and marks it completed. One transaction
// covers the answer inserts and the attempt update.
func (s *testSubmissionService) SubmitAttempt(attemptID uint, req dto.AttemptSubmitDTO) (*dto.AttemptDetailDTO, error) {
	attempt, err := s.testAttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("attempt %d: %w", attemptID, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("looking up attempt %d: %w", attemptID, err)
	}
	if attempt.Completed {
		return nil, fmt.Errorf("attempt %d is already completed: %w", attemptID, apperror.ErrInvalidArgument)
	}

	test, err := s.testRepo.FindByIDWithQuestions(attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("test %d for attempt %d: %w", attempt.TestID, attemptID, err)
	}
	if len(test.Questions) == 0 {
		return nil, fmt.Errorf("test %d has no questions: %w", test.ID, apperror.ErrInvalidArgument)
	}
	questionMap := make(map[uint]model.Question, len(test.Questions))
	for _, q := range test.Questions {
		questionMap[q.ID] = q
	}

	var answers []model.Answer
	correct, wrong := 0, 0
	for _, userAnswer := range req.Answers {
		question, exists := questionMap[userAnswer.QuestionID]
		if !exists {
			log.Warn().Uint("questionID", userAnswer.QuestionID).Uint("testID", test.ID).
				Msg("SubmitAttempt: answer for a question not part of this test, skipping")
			continue
		}

		answer := model.Answer{
			TestAttemptID:  attempt.ID,
			QuestionID:     question.ID,
			SelectedOption: userAnswer.SelectedOption,
			TimeTakenSec:   userAnswer.TimeTakenSec,
		}
		if userAnswer.SelectedOption != "" {
			isCorrect := userAnswer.SelectedOption == question.CorrectOption
			answer.IsCorrect = &isCorrect
			if isCorrect {
				answer.MarksObtained = question.PositiveMarks
				correct++
			} else {
				answer.MarksObtained = -question.NegativeMarks
				wrong++
			}
		}
		answers = append(answers, answer)
	}

	unattempted := len(test.Questions) - correct - wrong
	summary, err := s.scoring.CalculateScore(len(test.Questions), correct, wrong, unattempted)
	if err != nil {
		return nil, fmt.Errorf("scoring attempt %d: %w", attemptID, err)
	}

	now := time.Now().UTC()
	attempt.Completed = true
	attempt.CompletedAt = &now
	attempt.Score = summary.MarksObtained
	attempt.Percentage = summary.Percentage
	attempt.CorrectAnswers = summary.CorrectAnswers
	attempt.WrongAnswers = summary.WrongAnswers
	attempt.Unattempted = summary.Unattempted
	attempt.TotalTimeSec = req.TotalTimeSec

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return fmt.Errorf("creating answers: %w", err)
			}
		}
		if err := tx.Model(&model.TestAttempt{}).
			Where("id = ?", attempt.ID).
			Updates(map[string]interface{}{
				"completed":       attempt.Completed,
				"completed_at":    attempt.CompletedAt,
				"score":           attempt.Score,
				"percentage":      attempt.Percentage,
				"correct_answers": attempt.CorrectAnswers,
				"wrong_answers":   attempt.WrongAnswers,
				"unattempted":     attempt.Unattempted,
				"total_time_sec":  attempt.TotalTimeSec,
			}).Error; err != nil {
			return fmt.Errorf("completing attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("SubmitAttempt: transaction failed")
		return nil, err
	}

	log.Info().
		Uint("attemptID", attempt.ID).
		Float64("percentage", attempt.Percentage).
		Int("correct", correct).Int("wrong", wrong).Int("unattempted", unattempted).
		Msg("Test attempt submitted and scored")

	return s.GetAttemptDetails(attempt.ID)
}

func (s *testSubmissionService) GetAttemptDetails(attemptID uint) (*dto.AttemptDetailDTO, error) {
	attempt, err := s.testAttemptRepo.FindByIDWithDetails(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("attempt %d: %w", attemptID, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("looking up attempt %d: %w", attemptID, err)
	}

	sort.SliceStable(attempt.Answers, func(i, j int) bool {
		return attempt.Answers[i].Question.QuestionNumber < attempt.Answers[j].Question.QuestionNumber
	})

	var resp dto.AttemptDetailDTO
	if err := copier.Copy(&resp, attempt); err != nil {
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("GetAttemptDetails: failed to copy attempt to DTO")
		return nil, fmt.Errorf("preparing attempt response: %w", err)
	}
	if attempt.Test.ID != 0 {
		resp.TestTitle = attempt.Test.Title
	}

	resp.Answers = make([]dto.AnswerResponseDTO, len(attempt.Answers))
	for i := range attempt.Answers {
		var ansDTO dto.AnswerResponseDTO
		copier.Copy(&ansDTO, &attempt.Answers[i])
		var qDTO dto.QuestionReviewDTO
		copier.Copy(&qDTO, &attempt.Answers[i].Question)
		ansDTO.Question = qDTO
		resp.Answers[i] = ansDTO
	}
	return &resp, nil
}

func (s *testSubmissionService) GetUserAttemptsForTest(userID, testID uint) ([]dto.AttemptSummaryDTO, error) {
	attempts, err := s.testAttemptRepo.FindHistory(userID, testID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Uint("testID", testID).Msg("GetUserAttemptsForTest: repository error")
		return nil, fmt.Errorf("fetching attempts for test %d: %w", testID, err)
	}

	dtos := make([]dto.AttemptSummaryDTO, 0, len(attempts))
	for i := range attempts {
		var summary dto.AttemptSummaryDTO
		if err := copier.Copy(&summary, &attempts[i]); err != nil {
			log.Error().Err(err).Uint("attemptID", attempts[i].ID).Msg("GetUserAttemptsForTest: error copying attempt summary")
			continue
		}
		dtos = append(dtos, summary)
	}
	return dtos, nil
}
