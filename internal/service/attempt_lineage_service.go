package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/clatprep/backend/internal/apperror"
	"github.com/clatprep/backend/internal/model"
	"github.com/clatprep/backend/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttemptLineageService maintains the version-chain metadata for repeated
// test attempts: contiguous attempt numbers, the previous-attempt back
// reference, and the single is_latest flag per (user, test) pair.
type AttemptLineageService interface {
	// RecordNewAttempt creates the next attempt in the lineage. The flag
	// flip on the previous latest attempt and the insert of the new one
	// happen in a single transaction.
	RecordNewAttempt(userID, testID uint, startedAt time.Time) (*model.TestAttempt, error)

	// RebuildLineage renumbers all attempts for the pair from 1 by
	// started_at ascending, rechains previous_attempt_id, and leaves
	// is_latest set only on the last. Idempotent; this is the deliberate
	// repair path for corrupted lineages.
	RebuildLineage(userID, testID uint) error
}

type attemptLineageService struct {
	userRepo repository.UserRepository
	testRepo repository.TestRepository
	db       *gorm.DB
}

func NewAttemptLineageService(userRepo repository.UserRepository, testRepo repository.TestRepository, db *gorm.DB) AttemptLineageService {
	return &attemptLineageService{userRepo: userRepo, testRepo: testRepo, db: db}
}

// lineageScope narrows a query to one (user, test) pair. On Postgres the
// rows are locked for the duration of the transaction so concurrent attempt
// starts serialize; SQLite (used in tests) has no FOR UPDATE and serializes
// writers on its own.
func lineageScope(tx *gorm.DB, userID, testID uint) *gorm.DB {
	q := tx.Where("user_id = ? AND test_id = ?", userID, testID)
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (s *attemptLineageService) RecordNewAttempt(userID, testID uint, startedAt time.Time) (*model.TestAttempt, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("looking up user %d: %w", userID, err)
	}
	if _, err := s.testRepo.FindByID(testID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("test %d: %w", testID, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("looking up test %d: %w", testID, err)
	}

	newAttempt := model.TestAttempt{
		UserID:    userID,
		TestID:    testID,
		StartedAt: startedAt,
		IsLatest:  true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var prior []model.TestAttempt
		if err := lineageScope(tx, userID, testID).
			Order("started_at ASC").
			Find(&prior).Error; err != nil {
			return fmt.Errorf("loading existing attempts: %w", err)
		}

		newAttempt.AttemptNumber = len(prior) + 1

		if len(prior) > 0 {
			var latest []model.TestAttempt
			for i := range prior {
				if prior[i].IsLatest {
					latest = append(latest, prior[i])
				}
			}
			if len(latest) != 1 {
				return fmt.Errorf("found %d attempts flagged latest for user %d test %d: %w",
					len(latest), userID, testID, apperror.ErrIntegrity)
			}

			prevLatest := latest[0]
			if err := tx.Model(&model.TestAttempt{}).
				Where("id = ?", prevLatest.ID).
				Update("is_latest", false).Error; err != nil {
				return fmt.Errorf("unflagging previous latest attempt %d: %w", prevLatest.ID, err)
			}
			newAttempt.PreviousAttemptID = &prevLatest.ID
		}

		if err := tx.Create(&newAttempt).Error; err != nil {
			return fmt.Errorf("creating attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Uint("testID", testID).Msg("RecordNewAttempt failed")
		return nil, err
	}

	log.Info().
		Uint("userID", userID).
		Uint("testID", testID).
		Int("attemptNumber", newAttempt.AttemptNumber).
		Msg("New test attempt recorded")
	return &newAttempt, nil
}

func (s *attemptLineageService) RebuildLineage(userID, testID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var attempts []model.TestAttempt
		if err := lineageScope(tx, userID, testID).
			Order("started_at ASC").
			Find(&attempts).Error; err != nil {
			return fmt.Errorf("loading attempts: %w", err)
		}

		for i := range attempts {
			attempts[i].AttemptNumber = i + 1
			if i > 0 {
				attempts[i].PreviousAttemptID = &attempts[i-1].ID
			} else {
				attempts[i].PreviousAttemptID = nil
			}
			attempts[i].IsLatest = i == len(attempts)-1

			if err := tx.Model(&model.TestAttempt{}).
				Where("id = ?", attempts[i].ID).
				Updates(map[string]interface{}{
					"attempt_number":      attempts[i].AttemptNumber,
					"previous_attempt_id": attempts[i].PreviousAttemptID,
					"is_latest":           attempts[i].IsLatest,
				}).Error; err != nil {
				return fmt.Errorf("updating attempt %d: %w", attempts[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Uint("testID", testID).Msg("RebuildLineage failed")
		return err
	}

	log.Info().Uint("userID", userID).Uint("testID", testID).Msg("Attempt lineage rebuilt")
	return nil
}
