package models

import "time"

// Notification tipleri
const (
	NotificationTypeSurveyReward = "survey_reward"
)

// Notification kullanıcıya gösterilecek bildirim kaydı
// Kredi sonrası fire-and-forget yazılır; yazma hatası krediyi geri almaz
type Notification struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Type      string    `json:"type" db:"type"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
