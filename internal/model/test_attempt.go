package model

import (
	"time"

	"gorm.io/gorm"
)

// TestAttempt is one sitting of a test by a user. Repeated sittings for the
// same (user, test) pair form a lineage: AttemptNumber is contiguous from 1,
// PreviousAttemptID links each attempt to the one before it, and exactly one
// attempt per pair carries IsLatest=true.
type TestAttempt struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	UserID            uint           `json:"user_id" gorm:"not null;index:idx_user_test"`
	TestID            uint           `json:"test_id" gorm:"not null;index:idx_user_test"`
	Test              Test           `json:"test,omitempty" gorm:"foreignKey:TestID"`
	StartedAt         time.Time      `json:"started_at" gorm:"not null"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
	Completed         bool           `json:"completed" gorm:"default:false"`
	Score             float64        `json:"score"`
	Percentage        float64        `json:"percentage"`
	CorrectAnswers    int            `json:"correct_answers"`
	WrongAnswers      int            `json:"wrong_answers"`
	Unattempted       int            `json:"unattempted"`
	TotalTimeSec      int            `json:"total_time_sec"`
	AttemptNumber     int            `json:"attempt_number" gorm:"not null;default:1"`
	IsLatest          bool           `json:"is_latest" gorm:"not null;default:true"`
	PreviousAttemptID *uint          `json:"previous_attempt_id,omitempty"`
	Answers           []Answer       `json:"answers,omitempty" gorm:"foreignKey:TestAttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}
