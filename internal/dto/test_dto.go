package dto

import (
	"time"

	"github.com/clatprep/backend/internal/model"
)

// QuestionResponseDTO is used for displaying question details to users.
type QuestionResponseDTO struct {
	ID             uint          `json:"id"`
	TestID         uint          `json:"test_id"`
	QuestionNumber int           `json:"question_number"`
	QuestionText   string        `json:"question_text"`
	Options        []string      `json:"options"`
	Section        model.Section `json:"section"`
	PositiveMarks  float64       `json:"positive_marks"`
	NegativeMarks  float64       `json:"negative_marks"`
}

// QuestionReviewDTO additionally exposes the correct option and explanation.
// Only served after an attempt is completed.
type QuestionReviewDTO struct {
	QuestionResponseDTO
	CorrectOption string `json:"correct_option"`
	Explanation   string `json:"explanation,omitempty"`
}

// TestResponseDTO is used for displaying full test details to users.
type TestResponseDTO struct {
	ID                uint                  `json:"id"`
	Title             string                `json:"title"`
	Description       string                `json:"description,omitempty"`
	DurationInMinutes int                   `json:"duration_in_minutes"`
	Questions         []QuestionResponseDTO `json:"questions,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
}

// TestSummaryDTO is used for listing tests available to users.
type TestSummaryDTO struct {
	ID                uint      `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	DurationInMinutes int       `json:"duration_in_minutes"`
	QuestionCount     int       `json:"question_count"`
	CreatedAt         time.Time `json:"created_at"`
}
