package repository

import (
	"github.com/clatprep/backend/internal/model"
	"gorm.io/gorm"
)

type TestAttemptRepository interface {
	FindByID(id uint) (*model.TestAttempt, error)
	FindByIDWithDetails(id uint) (*model.TestAttempt, error)

	// FindHistory returns a user's attempts for a test latest-first.
	FindHistory(userID, testID uint) ([]model.TestAttempt, error)

	// FindCompletedByUser returns all completed attempts for a user ordered
	// by completed_at descending, with answers, their questions, and the
	// test's questions preloaded. This is the analytics input shape.
	FindCompletedByUser(userID uint) ([]model.TestAttempt, error)
}

type testAttemptRepository struct {
	db *gorm.DB
}

func NewTestAttemptRepository(db *gorm.DB) TestAttemptRepository {
	return &testAttemptRepository{db: db}
}

func (r *testAttemptRepository) FindByID(id uint) (*model.TestAttempt, error) {
	var attempt model.TestAttempt
	err := r.db.First(&attempt, id).Error
	return &attempt, err
}

func (r *testAttemptRepository) FindByIDWithDetails(id uint) (*model.TestAttempt, error) {
	var attempt model.TestAttempt
	err := r.db.
		Preload("Test").
		Preload("Answers.Question").
		First(&attempt, id).Error
	return &attempt, err
}

func (r *testAttemptRepository) FindHistory(userID, testID uint) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.db.
		Where("user_id = ? AND test_id = ?", userID, testID).
		Order("attempt_number DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *testAttemptRepository) FindCompletedByUser(userID uint) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.db.
		Preload("Test.Questions").
		Preload("Answers.Question").
		Where("user_id = ? AND completed = ?", userID, true).
		Order("completed_at DESC").
		Find(&attempts).Error
	return attempts, err
}
