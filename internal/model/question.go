package model

import (
	"time"

	"gorm.io/gorm"
)

type Question struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	TestID         uint           `json:"test_id" gorm:"not null;index"`
	QuestionNumber int            `json:"question_number" gorm:"not null"`
	QuestionText   string         `json:"question_text" gorm:"type:text;not null"`
	Options        []string       `json:"options" gorm:"serializer:json"`
	CorrectOption  string         `json:"correct_option" gorm:"not null"`
	Section        Section        `json:"section" gorm:"not null;index"`
	PositiveMarks  float64        `json:"positive_marks" gorm:"default:1"`
	NegativeMarks  float64        `json:"negative_marks" gorm:"default:0.25"`
	Explanation    string         `json:"explanation,omitempty" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
