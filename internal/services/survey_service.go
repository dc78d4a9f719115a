package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/survey-rewards-api/internal/interfaces"
	"github.com/onerilhan/survey-rewards-api/internal/models"
)

// SurveyService in-app anket akışı business logic
// Completion geçişinin kendisi CompletionService'e delege edilir; burada
// sadece katalog okuma ve start/dedup kapıları var
type SurveyService struct {
	surveyRepo     interfaces.SurveyRepositoryInterface
	completionRepo interfaces.CompletionRepositoryInterface
	processor      interfaces.CompletionServiceInterface
}

// NewSurveyService yeni service oluşturur
func NewSurveyService(
	surveyRepo interfaces.SurveyRepositoryInterface,
	completionRepo interfaces.CompletionRepositoryInterface,
	processor interfaces.CompletionServiceInterface,
) *SurveyService {
	return &SurveyService{
		surveyRepo:     surveyRepo,
		completionRepo: completionRepo,
		processor:      processor,
	}
}

// ListActive aktif anketleri listeler
func (s *SurveyService) ListActive(ctx context.Context, limit, offset int) ([]*models.Survey, error) {
	// Default ve maksimum limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return s.surveyRepo.ListActive(ctx, limit, offset)
}

// Start kullanıcı için anketi başlatır
// Aynı anket için mevcut started/completed kayıt varsa reddedilir
func (s *SurveyService) Start(ctx context.Context, userID, surveyID string) error {
	// 1. Anket var mı kontrol et
	survey, err := s.surveyRepo.GetByID(ctx, surveyID)
	if err != nil {
		return ErrSurveyNotFound
	}
	if survey.Status != "active" {
		return ErrSurveyNotFound
	}

	// 2. Double-start kapısı
	existing, err := s.completionRepo.GetByUserAndSurvey(ctx, userID, surveyID)
	if err != nil {
		return fmt.Errorf("mevcut kayıt kontrolü hatası: %w", err)
	}
	if existing != nil {
		switch existing.Status {
		case models.CompletionStatusStarted:
			return ErrAlreadyStarted
		case models.CompletionStatusCompleted:
			return ErrAlreadyCompleted
		}
	}

	// 3. Started kaydı aç
	if _, err := s.completionRepo.CreateStarted(ctx, userID, surveyID); err != nil {
		return err
	}

	log.Debug().
		Str("user_id", userID).
		Str("survey_id", surveyID).
		Msg("Anket başlatıldı")

	return nil
}

// Complete in-app tamamlamayı completion processor'a iletir
// Ödül tutarı client'tan değil katalogdan okunur
func (s *SurveyService) Complete(ctx context.Context, userID, surveyID string) (*models.CompletionOutcome, error) {
	survey, err := s.surveyRepo.GetByID(ctx, surveyID)
	if err != nil {
		return nil, ErrSurveyNotFound
	}

	input := &models.CompletionInput{
		UserID:       userID,
		SurveyID:     survey.ID,
		RewardAmount: survey.RewardAmount,
	}

	return s.processor.ProcessCompletion(ctx, input)
}

// History kullanıcının tamamlama geçmişini getirir
func (s *SurveyService) History(ctx context.Context, userID string, limit, offset int) ([]*models.UserSurvey, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return s.completionRepo.ListByUser(ctx, userID, limit, offset)
}
