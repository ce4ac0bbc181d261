package model

import (
	"time"

	"gorm.io/gorm"
)

// Answer is one user response within a TestAttempt. IsCorrect is tri-state:
// true, false, or nil for an unanswered question.
type Answer struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	TestAttemptID  uint           `json:"test_attempt_id" gorm:"not null;index"`
	QuestionID     uint           `json:"question_id" gorm:"not null;index"`
	Question       Question       `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	SelectedOption string         `json:"selected_option"`
	IsCorrect      *bool          `json:"is_correct,omitempty"`
	MarksObtained  float64        `json:"marks_obtained"`
	TimeTakenSec   int            `json:"time_taken_sec"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
