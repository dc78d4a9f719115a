// internal/interfaces/repository.go
package interfaces

import (
	"context"

	"github.com/onerilhan/survey-rewards-api/internal/models"
)

// UserRepositoryInterface kullanıcı database işlemleri için interface
type UserRepositoryInterface interface {
	// Create yeni kullanıcı oluşturur
	Create(ctx context.Context, user *models.CreateUserRequest) (*models.User, error)

	// GetByEmail email ile kullanıcı bulur
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID ID ile kullanıcı bulur
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// WalletRepositoryInterface cüzdan database işlemleri için interface
// (transaction dışı okuma yolları; kredilendirme completion processor'da
// transaction içinde yapılır)
type WalletRepositoryInterface interface {
	// GetOrCreate kullanıcının cüzdanını getirir, yoksa sıfır bakiyeyle oluşturur
	GetOrCreate(ctx context.Context, userID string) (*models.Wallet, error)
}

// SurveyRepositoryInterface anket kataloğu database işlemleri için interface
type SurveyRepositoryInterface interface {
	// GetByID ID ile anket getirir
	GetByID(ctx context.Context, id string) (*models.Survey, error)

	// ListActive aktif anketleri listeler (pagination ile)
	ListActive(ctx context.Context, limit, offset int) ([]*models.Survey, error)
}

// CompletionRepositoryInterface completion ledger database işlemleri için interface
type CompletionRepositoryInterface interface {
	// GetByUserAndSurvey kullanıcının anket için en güncel kaydını getirir
	// Kayıt yoksa (nil, nil) döner
	GetByUserAndSurvey(ctx context.Context, userID, surveyID string) (*models.UserSurvey, error)

	// CreateStarted 'started' kaydı açar (in-app akışın double-start kapısı)
	CreateStarted(ctx context.Context, userID, surveyID string) (*models.UserSurvey, error)

	// ListByUser kullanıcının tamamlama geçmişini getirir
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.UserSurvey, error)
}

// NotificationRepositoryInterface bildirim database işlemleri için interface
type NotificationRepositoryInterface interface {
	// Create yeni bildirim kaydı oluşturur
	Create(ctx context.Context, n *models.Notification) error
}
