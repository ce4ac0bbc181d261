package service

import (
	"fmt"
	"math"

	"github.com/clatprep/backend/internal/apperror"
)

// NegativeMarkFraction is the CLAT penalty per wrong answer.
// Percentage = ((C - 0.25*W) / T) * 100.
const NegativeMarkFraction = 0.25

// ScoreSummary carries the outcome of scoring one attempt.
type ScoreSummary struct {
	TotalQuestions int
	CorrectAnswers int
	WrongAnswers   int
	Unattempted    int
	MarksObtained  float64
	Percentage     float64
}

type ScoringService interface {
	CalculateScore(totalQuestions, correctAnswers, wrongAnswers, unattempted int) (*ScoreSummary, error)
}

type scoringService struct{}

func NewScoringService() ScoringService {
	return &scoringService{}
}

func (s *scoringService) CalculateScore(totalQuestions, correctAnswers, wrongAnswers, unattempted int) (*ScoreSummary, error) {
	if totalQuestions <= 0 {
		return nil, fmt.Errorf("total questions must be greater than 0: %w", apperror.ErrInvalidArgument)
	}
	if correctAnswers < 0 || wrongAnswers < 0 || unattempted < 0 {
		return nil, fmt.Errorf("answer counts cannot be negative: %w", apperror.ErrInvalidArgument)
	}

	marksObtained := float64(correctAnswers) - NegativeMarkFraction*float64(wrongAnswers)
	percentage := (marksObtained / float64(totalQuestions)) * 100

	// Rounded to 2 decimal places for display.
	percentage = math.Round(percentage*100) / 100

	return &ScoreSummary{
		TotalQuestions: totalQuestions,
		CorrectAnswers: correctAnswers,
		WrongAnswers:   wrongAnswers,
		Unattempted:    unattempted,
		MarksObtained:  marksObtained,
		Percentage:     percentage,
	}, nil
}
