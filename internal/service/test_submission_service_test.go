package service

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/clatprep/backend/internal/apperror"
	"github.com/clatprep/backend/internal/dto"
	"github.com/clatprep/backend/internal/model"
	"github.com/clatprep/backend/internal/repository"
	"gorm.io/gorm"
)

func newSubmissionService(db *gorm.DB) TestSubmissionService {
	return NewTestSubmissionService(
		repository.NewTestRepository(db),
		repository.NewTestAttemptRepository(db),
		NewScoringService(),
		db,
	)
}

func startAttempt(t *testing.T, db *gorm.DB, userID, testID uint) *model.TestAttempt {
	t.Helper()
	attempt, err := newLineageService(db).RecordNewAttempt(userID, testID, time.Now().UTC())
	if err != nil {
		t.Fatalf("startAttempt: %v", err)
	}
	return attempt
}

func TestSubmitAttempt_GradesAndCompletes(t *testing.T) {
	db := newTestDB(t)
	userID, testID := seedUserAndTest(t, db)
	s := newSubmissionService(db)
	attempt := startAttempt(t, db, userID, testID)

	var questions []model.Question
	if err := db.Where("test_id = ?", testID).Order("question_number ASC").Find(&questions).Error; err != nil {
		t.Fatalf("loading questions: %v", err)
	}

	// Q1 correct (A), Q2 wrong (correct is B).
	detail, err := s.SubmitAttempt(attempt.ID, dto.AttemptSubmitDTO{
		Answers: []dto.UserAnswerDTO{
			{QuestionID: questions[0].ID, SelectedOption: "A", TimeTakenSec: 40},
			{QuestionID: questions[1].ID, SelectedOption: "A", TimeTakenSec: 70},
		},
		TotalTimeSec: 110,
	})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	if !detail.Completed || detail.CompletedAt == nil {
		t.Error("attempt should be completed with a completion time")
	}
	if detail.CorrectAnswers != 1 || detail.WrongAnswers != 1 || detail.Unattempted != 0 {
		t.Errorf("expected counts 1/1/0, got %d/%d/%d",
			detail.CorrectAnswers, detail.WrongAnswers, detail.Unattempted)
	}
	// (1 - 0.25*1) / 2 * 100 = 37.5
	if math.Abs(detail.Percentage-37.5) > 1e-9 {
		t.Errorf("expected percentage 37.5, got %f", detail.Percentage)
	}
	if math.Abs(detail.Score-0.75) > 1e-9 {
		t.Errorf("expected score 0.75, got %f", detail.Score)
	}
	if len(detail.Answers) != 2 {
		t.Fatalf("expected 2 answer rows, got %d", len(detail.Answers))
	}
	if detail.Answers[0].IsCorrect == nil || !*detail.Answers[0].IsCorrect {
		t.Error("first answer should be graded correct")
	}
	if detail.Answers[1].IsCorrect == nil || *detail.Answers[1].IsCorrect {
		t.Error("second answer should be graded wrong")
	}
	if math.Abs(detail.Answers[1].MarksObtained-(-0.25)) > 1e-9 {
		t.Errorf("expected negative marks -0.25, got %f", detail.Answers[1].MarksObtained)
	}
	if detail.TestTitle == "" {
		t.Error("expected test title on attempt detail")
	}
}

func TestSubmitAttempt_BlankSelectionIsUnattempted(t *testing.T) {
	db := newTestDB(t)
	userID, testID := seedUserAndTest(t, db)
	s := newSubmissionService(db)
	attempt := startAttempt(t, db, userID, testID)

	var questions []model.Question
	if err := db.Where("test_id = ?", testID).Order("question_number ASC").Find(&questions).Error; err != nil {
		t.Fatalf("loading questions: %v", err)
	}

	detail, err := s.SubmitAttempt(attempt.ID, dto.AttemptSubmitDTO{
		Answers: []dto.UserAnswerDTO{
			{QuestionID: questions[0].ID, SelectedOption: "A", TimeTakenSec: 30},
			{QuestionID: questions[1].ID, SelectedOption: "", TimeTakenSec: 5},
		},
		TotalTimeSec: 35,
	})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	if detail.CorrectAnswers != 1 || detail.WrongAnswers != 0 || detail.Unattempted != 1 {
		t.Errorf("expected counts 1/0/1, got %d/%d/%d",
			detail.CorrectAnswers, detail.WrongAnswers, detail.Unattempted)
	}
	// Blank answers are stored with nil correctness so analytics can count
	// the row without attributing it to correct or wrong.
	if detail.Answers[1].IsCorrect != nil {
		t.Error("blank selection should keep nil correctness")
	}
	// (1 - 0) / 2 * 100 = 50
	if math.Abs(detail.Percentage-50) > 1e-9 {
		t.Errorf("expected percentage 50, got %f", detail.Percentage)
	}
}

func TestSubmitAttempt_Errors(t *testing.T) {
	db := newTestDB(t)
	userID, testID := seedUserAndTest(t, db)
	s := newSubmissionService(db)

	if _, err := s.SubmitAttempt(9999, dto.AttemptSubmitDTO{}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown attempt, got %v", err)
	}

	attempt := startAttempt(t, db, userID, testID)
	var questions []model.Question
	if err := db.Where("test_id = ?", testID).Find(&questions).Error; err != nil {
		t.Fatalf("loading questions: %v", err)
	}
	req := dto.AttemptSubmitDTO{
		Answers: []dto.UserAnswerDTO{{QuestionID: questions[0].ID, SelectedOption: "A", TimeTakenSec: 10}},
	}
	if _, err := s.SubmitAttempt(attempt.ID, req); err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	// A second submission of the same attempt must be rejected.
	if _, err := s.SubmitAttempt(attempt.ID, req); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for double submission, got %v", err)
	}
}

func TestGetUserAttemptsForTest_LatestFirst(t *testing.T) {
	db := newTestDB(t)
	userID, testID := seedUserAndTest(t, db)
	s := newSubmissionService(db)

	base := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	ls := newLineageService(db)
	for i := 0; i < 3; i++ {
		if _, err := ls.RecordNewAttempt(userID, testID, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("RecordNewAttempt: %v", err)
		}
	}

	summaries, err := s.GetUserAttemptsForTest(userID, testID)
	if err != nil {
		t.Fatalf("GetUserAttemptsForTest: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}
	for i, want := range []int{3, 2, 1} {
		if summaries[i].AttemptNumber != want {
			t.Errorf("position %d: expected attempt number %d, got %d", i, want, summaries[i].AttemptNumber)
		}
	}
	if !summaries[0].IsLatest {
		t.Error("first summary should be the latest attempt")
	}
}
