package service

import (
	"errors"
	"fmt"

	"github.com/clatprep/backend/internal/apperror"
	"github.com/clatprep/backend/internal/dto"
	"github.com/clatprep/backend/internal/model"
	"github.com/clatprep/backend/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AdminTestService interface {
	CreateTest(req dto.TestCreateDTO) (*dto.TestResponseDTO, error)
	AddQuestion(testID uint, req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error)
}

type adminTestService struct {
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
}

func NewAdminTestService(testRepo repository.TestRepository, questionRepo repository.QuestionRepository) AdminTestService {
	return &adminTestService{testRepo: testRepo, questionRepo: questionRepo}
}

func validateQuestion(req dto.QuestionCreateDTO) (model.Section, error) {
	section := model.Section(req.Section)
	if !section.IsValid() {
		return "", fmt.Errorf("unknown section %q for question %d: %w", req.Section, req.QuestionNumber, apperror.ErrInvalidArgument)
	}
	for _, opt := range req.Options {
		if opt == req.CorrectOption {
			return section, nil
		}
	}
	return "", fmt.Errorf("correct option of question %d is not among its options: %w", req.QuestionNumber, apperror.ErrInvalidArgument)
}

// AddQuestion appends a single question to an existing test.
func (s *adminTestService) AddQuestion(testID uint, req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error) {
	if _, err := s.testRepo.FindByID(testID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("test %d: %w", testID, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("looking up test %d: %w", testID, err)
	}

	section, err := validateQuestion(req)
	if err != nil {
		return nil, err
	}

	var questionModel model.Question
	copier.Copy(&questionModel, &req)
	questionModel.TestID = testID
	questionModel.Section = section

	if err := s.questionRepo.Create(&questionModel); err != nil {
		log.Error().Err(err).Uint("testID", testID).Msg("Failed to create question in database")
		return nil, fmt.Errorf("database error creating question: %w", err)
	}

	var resp dto.QuestionResponseDTO
	if err := copier.Copy(&resp, &questionModel); err != nil {
		return nil, fmt.Errorf("error preparing question response: %w", err)
	}
	return &resp, nil
}

func (s *adminTestService) CreateTest(req dto.TestCreateDTO) (*dto.TestResponseDTO, error) {
	numberMap := make(map[int]bool)
	var questionsToCreate []model.Question

	for _, qDto := range req.Questions {
		if numberMap[qDto.QuestionNumber] {
			return nil, fmt.Errorf("duplicate question number %d: %w", qDto.QuestionNumber, apperror.ErrInvalidArgument)
		}
		numberMap[qDto.QuestionNumber] = true

		section, err := validateQuestion(qDto)
		if err != nil {
			return nil, err
		}

		var questionModel model.Question
		copier.Copy(&questionModel, &qDto)
		questionModel.Section = section
		questionsToCreate = append(questionsToCreate, questionModel)
	}

	testModel := model.Test{
		Title:             req.Title,
		Description:       req.Description,
		DurationInMinutes: req.DurationInMinutes,
		Questions:         questionsToCreate,
	}

	if err := s.testRepo.Create(&testModel); err != nil {
		log.Error().Err(err).Msg("Failed to create test in database")
		return nil, fmt.Errorf("database error creating test: %w", err)
	}

	createdTest, err := s.testRepo.FindByIDWithQuestions(testModel.ID)
	if err != nil {
		log.Error().Err(err).Uint("testID", testModel.ID).Msg("Failed to reload newly created test for response")
		var fallbackResp dto.TestResponseDTO
		copier.Copy(&fallbackResp, &testModel)
		return &fallbackResp, nil
	}

	var resp dto.TestResponseDTO
	if err := copier.Copy(&resp, createdTest); err != nil {
		log.Error().Err(err).Msg("Failed to copy created Test model to TestResponseDTO")
		return nil, fmt.Errorf("error preparing response data: %w", err)
	}
	return &resp, nil
}
