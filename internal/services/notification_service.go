package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/survey-rewards-api/internal/interfaces"
	"github.com/onerilhan/survey-rewards-api/internal/models"
)

// NotificationService kredi sonrası bildirim collaborator'ı
// Yazma fire-and-forget yapılır: bildirim hatası kabul edilmiş krediyi
// asla geri almaz, sadece loglanır
type NotificationService struct {
	notificationRepo interfaces.NotificationRepositoryInterface
}

// NewNotificationService yeni service oluşturur
func NewNotificationService(notificationRepo interfaces.NotificationRepositoryInterface) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// NotifyReward ödül bildirimi yazar
// Çağıranın request context'ine bağlanmaz; kendi timeout'u ile
// arka planda çalışır
func (s *NotificationService) NotifyReward(userID, surveyTitle string, amount float64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		n := &models.Notification{
			UserID:  userID,
			Type:    models.NotificationTypeSurveyReward,
			Title:   "Ödül kazandınız!",
			Message: fmt.Sprintf("%s anketi için %.2f kazandınız", surveyTitle, amount),
		}

		if err := s.notificationRepo.Create(ctx, n); err != nil {
			log.Warn().
				Err(err).
				Str("user_id", userID).
				Msg("Ödül bildirimi yazılamadı")
		}
	}()
}
