package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/onerilhan/survey-rewards-api/internal/interfaces"
	"github.com/onerilhan/survey-rewards-api/internal/models"
)

// MockSurveyRepository, SurveyRepositoryInterface için sahte (mock) bir yapıdır.
type MockSurveyRepository struct {
	mock.Mock
}

var _ interfaces.SurveyRepositoryInterface = (*MockSurveyRepository)(nil)

func (m *MockSurveyRepository) GetByID(ctx context.Context, id string) (*models.Survey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Survey), args.Error(1)
}
func (m *MockSurveyRepository) ListActive(ctx context.Context, limit, offset int) ([]*models.Survey, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Survey), args.Error(1)
}

// MockCompletionRepository, CompletionRepositoryInterface için sahte (mock) bir yapıdır.
type MockCompletionRepository struct {
	mock.Mock
}

var _ interfaces.CompletionRepositoryInterface = (*MockCompletionRepository)(nil)

func (m *MockCompletionRepository) GetByUserAndSurvey(ctx context.Context, userID, surveyID string) (*models.UserSurvey, error) {
	args := m.Called(ctx, userID, surveyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSurvey), args.Error(1)
}
func (m *MockCompletionRepository) CreateStarted(ctx context.Context, userID, surveyID string) (*models.UserSurvey, error) {
	args := m.Called(ctx, userID, surveyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSurvey), args.Error(1)
}
func (m *MockCompletionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.UserSurvey, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*models.UserSurvey), args.Error(1)
}

// MockCompletionProcessor, CompletionServiceInterface için sahte (mock) bir yapıdır.
type MockCompletionProcessor struct {
	mock.Mock
}

var _ interfaces.CompletionServiceInterface = (*MockCompletionProcessor)(nil)

func (m *MockCompletionProcessor) ProcessCompletion(ctx context.Context, input *models.CompletionInput) (*models.CompletionOutcome, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CompletionOutcome), args.Error(1)
}
func (m *MockCompletionProcessor) ProcessCancellation(ctx context.Context, userID, externalReference string) (*models.CompletionOutcome, error) {
	args := m.Called(ctx, userID, externalReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CompletionOutcome), args.Error(1)
}

func activeSurvey() *models.Survey {
	return &models.Survey{
		ID:           "survey-uuid-1",
		Title:        "Tüketici Alışkanlıkları Anketi",
		RewardAmount: 5.00,
		Provider:     "internal",
		Status:       "active",
		CreatedAt:    time.Now(),
	}
}

// TestSurveyService_Start_Success, anket başlatma happy path'ini test eder.
func TestSurveyService_Start_Success(t *testing.T) {
	// Arrange
	mockSurveyRepo := new(MockSurveyRepository)
	mockCompletionRepo := new(MockCompletionRepository)
	service := NewSurveyService(mockSurveyRepo, mockCompletionRepo, nil)

	mockSurveyRepo.On("GetByID", mock.Anything, "survey-uuid-1").Return(activeSurvey(), nil)
	mockCompletionRepo.On("GetByUserAndSurvey", mock.Anything, testUserID, "survey-uuid-1").Return(nil, nil)
	mockCompletionRepo.On("CreateStarted", mock.Anything, testUserID, "survey-uuid-1").
		Return(&models.UserSurvey{ID: "record-uuid-1", Status: models.CompletionStatusStarted}, nil)

	// Act
	err := service.Start(context.Background(), testUserID, "survey-uuid-1")

	// Assert
	assert.NoError(t, err)
	mockCompletionRepo.AssertExpectations(t)
}

// TestSurveyService_Start_AlreadyStarted, double-start'ın reddedildiğini test eder.
func TestSurveyService_Start_AlreadyStarted(t *testing.T) {
	// Arrange
	mockSurveyRepo := new(MockSurveyRepository)
	mockCompletionRepo := new(MockCompletionRepository)
	service := NewSurveyService(mockSurveyRepo, mockCompletionRepo, nil)

	mockSurveyRepo.On("GetByID", mock.Anything, "survey-uuid-1").Return(activeSurvey(), nil)
	mockCompletionRepo.On("GetByUserAndSurvey", mock.Anything, testUserID, "survey-uuid-1").
		Return(&models.UserSurvey{Status: models.CompletionStatusStarted}, nil)

	// Act
	err := service.Start(context.Background(), testUserID, "survey-uuid-1")

	// Assert
	assert.ErrorIs(t, err, ErrAlreadyStarted)
	mockCompletionRepo.AssertNotCalled(t, "CreateStarted", mock.Anything, mock.Anything, mock.Anything)
}

// TestSurveyService_Start_AlreadyCompleted, tamamlanmış anketin tekrar
// başlatılamadığını test eder.
func TestSurveyService_Start_AlreadyCompleted(t *testing.T) {
	// Arrange
	mockSurveyRepo := new(MockSurveyRepository)
	mockCompletionRepo := new(MockCompletionRepository)
	service := NewSurveyService(mockSurveyRepo, mockCompletionRepo, nil)

	mockSurveyRepo.On("GetByID", mock.Anything, "survey-uuid-1").Return(activeSurvey(), nil)
	mockCompletionRepo.On("GetByUserAndSurvey", mock.Anything, testUserID, "survey-uuid-1").
		Return(&models.UserSurvey{Status: models.CompletionStatusCompleted}, nil)

	// Act
	err := service.Start(context.Background(), testUserID, "survey-uuid-1")

	// Assert
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

// TestSurveyService_Start_InactiveSurvey, aktif olmayan anketin başlatılamadığını test eder.
func TestSurveyService_Start_InactiveSurvey(t *testing.T) {
	// Arrange
	mockSurveyRepo := new(MockSurveyRepository)
	mockCompletionRepo := new(MockCompletionRepository)
	service := NewSurveyService(mockSurveyRepo, mockCompletionRepo, nil)

	inactive := activeSurvey()
	inactive.Status = "paused"
	mockSurveyRepo.On("GetByID", mock.Anything, "survey-uuid-1").Return(inactive, nil)

	// Act
	err := service.Start(context.Background(), testUserID, "survey-uuid-1")

	// Assert
	assert.ErrorIs(t, err, ErrSurveyNotFound)
}

// TestSurveyService_Complete_Success, in-app tamamlamanın ödül tutarını
// katalogdan okuyarak processor'a ilettiğini test eder.
func TestSurveyService_Complete_Success(t *testing.T) {
	// Arrange
	mockSurveyRepo := new(MockSurveyRepository)
	mockCompletionRepo := new(MockCompletionRepository)
	mockProcessor := new(MockCompletionProcessor)
	service := NewSurveyService(mockSurveyRepo, mockCompletionRepo, mockProcessor)

	mockSurveyRepo.On("GetByID", mock.Anything, "survey-uuid-1").Return(activeSurvey(), nil)
	mockProcessor.On("ProcessCompletion", mock.Anything, mock.MatchedBy(func(input *models.CompletionInput) bool {
		// Ödül katalogdan gelir, client'tan değil; external reference boş
		return input.UserID == testUserID &&
			input.SurveyID == "survey-uuid-1" &&
			input.RewardAmount == 5.00 &&
			input.ExternalReference == ""
	})).Return(&models.CompletionOutcome{
		Code:        models.OutcomeAccepted,
		NewBalance:  5.00,
		TotalEarned: 5.00,
		Reward:      5.00,
	}, nil)

	// Act
	outcome, err := service.Complete(context.Background(), testUserID, "survey-uuid-1")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeAccepted, outcome.Code)
	assert.Equal(t, 5.00, outcome.NewBalance)
	mockProcessor.AssertExpectations(t)
}

// TestSurveyService_ListActive_LimitClamp, limit'in üst sınıra sabitlendiğini test eder.
func TestSurveyService_ListActive_LimitClamp(t *testing.T) {
	// Arrange
	mockSurveyRepo := new(MockSurveyRepository)
	service := NewSurveyService(mockSurveyRepo, nil, nil)

	mockSurveyRepo.On("ListActive", mock.Anything, 100, 0).Return([]*models.Survey{activeSurvey()}, nil)

	// Act
	surveys, err := service.ListActive(context.Background(), 500, -3)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, surveys, 1)
	mockSurveyRepo.AssertExpectations(t)
}
