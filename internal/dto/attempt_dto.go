package dto

import "time"

// AttemptStartDTO is the request body for starting a new attempt on a test.
type AttemptStartDTO struct {
	UserID uint `json:"user_id" binding:"required"`
}

// UserAnswerDTO represents a user's answer to a single question within a
// test submission. An empty SelectedOption marks the question unattempted.
type UserAnswerDTO struct {
	QuestionID     uint   `json:"question_id" binding:"required"`
	SelectedOption string `json:"selected_option"`
	TimeTakenSec   int    `json:"time_taken_sec" binding:"gte=0"`
}

// AttemptSubmitDTO is the request DTO for submitting all answers of an attempt.
type AttemptSubmitDTO struct {
	Answers      []UserAnswerDTO `json:"answers" binding:"required,dive"`
	TotalTimeSec int             `json:"total_time_sec" binding:"gte=0"`
}

// AnswerResponseDTO is used for displaying individual answer details within
// a completed attempt.
type AnswerResponseDTO struct {
	ID             uint              `json:"id"`
	QuestionID     uint              `json:"question_id"`
	Question       QuestionReviewDTO `json:"question,omitempty"`
	SelectedOption string            `json:"selected_option"`
	IsCorrect      *bool             `json:"is_correct,omitempty"`
	MarksObtained  float64           `json:"marks_obtained"`
	TimeTakenSec   int               `json:"time_taken_sec"`
}

// AttemptDetailDTO is for displaying the full details of a test attempt.
type AttemptDetailDTO struct {
	ID                uint                `json:"id"`
	TestID            uint                `json:"test_id"`
	TestTitle         string              `json:"test_title,omitempty"`
	UserID            uint                `json:"user_id"`
	StartedAt         time.Time           `json:"started_at"`
	CompletedAt       *time.Time          `json:"completed_at,omitempty"`
	Completed         bool                `json:"completed"`
	Score             float64             `json:"score"`
	Percentage        float64             `json:"percentage"`
	CorrectAnswers    int                 `json:"correct_answers"`
	WrongAnswers      int                 `json:"wrong_answers"`
	Unattempted       int                 `json:"unattempted"`
	TotalTimeSec      int                 `json:"total_time_sec"`
	AttemptNumber     int                 `json:"attempt_number"`
	IsLatest          bool                `json:"is_latest"`
	PreviousAttemptID *uint               `json:"previous_attempt_id,omitempty"`
	Answers           []AnswerResponseDTO `json:"answers,omitempty"`
}

// AttemptSummaryDTO is for listing a user's attempts for a particular test.
type AttemptSummaryDTO struct {
	ID                uint       `json:"id"`
	TestID            uint       `json:"test_id"`
	UserID            uint       `json:"user_id"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	Completed         bool       `json:"completed"`
	Score             float64    `json:"score"`
	Percentage        float64    `json:"percentage"`
	CorrectAnswers    int        `json:"correct_answers"`
	WrongAnswers      int        `json:"wrong_answers"`
	AttemptNumber     int        `json:"attempt_number"`
	IsLatest          bool       `json:"is_latest"`
	PreviousAttemptID *uint      `json:"previous_attempt_id,omitempty"`
}
