// internal/interfaces/service.go
package interfaces

import (
	"context"

	"github.com/onerilhan/survey-rewards-api/internal/models"
)

// CompletionServiceInterface completion/cancellation event'lerini işleyen
// tek yetkili yer (ledger ve cüzdan mutasyonları sadece buradan geçer)
type CompletionServiceInterface interface {
	// ProcessCompletion completion event'ini tek atomik işlemde uygular
	// Duplicate teslimatta AlreadyProcessed döner, cüzdanı tekrar kredilemez
	ProcessCompletion(ctx context.Context, input *models.CompletionInput) (*models.CompletionOutcome, error)

	// ProcessCancellation daha önce kabul edilmiş completion'ı geri alır
	// Kayıt yoksa NothingToReverse döner, cüzdana dokunmaz
	ProcessCancellation(ctx context.Context, userID, externalReference string) (*models.CompletionOutcome, error)
}

// UserServiceInterface kullanıcı business logic için interface
type UserServiceInterface interface {
	// Register yeni kullanıcı kaydeder
	Register(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)

	// Login kullanıcı girişi yapar ve token döner
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}

// SurveyServiceInterface in-app anket akışı için interface
type SurveyServiceInterface interface {
	// ListActive aktif anketleri listeler
	ListActive(ctx context.Context, limit, offset int) ([]*models.Survey, error)

	// Start kullanıcı için anketi başlatır (double-start reddedilir)
	Start(ctx context.Context, userID, surveyID string) error

	// Complete in-app tamamlamayı processor'a iletir
	// Dedup (user_id, survey_id) üzerinden yapılır
	Complete(ctx context.Context, userID, surveyID string) (*models.CompletionOutcome, error)

	// History kullanıcının tamamlama geçmişini getirir
	History(ctx context.Context, userID string, limit, offset int) ([]*models.UserSurvey, error)
}

// NotificationServiceInterface kredi sonrası bildirim collaborator'ı
type NotificationServiceInterface interface {
	// NotifyReward fire-and-forget ödül bildirimi yazar
	// Hatası krediyi asla geri almaz, sadece loglanır
	NotifyReward(userID, surveyTitle string, amount float64)
}
