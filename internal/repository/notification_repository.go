package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/onerilhan/survey-rewards-api/internal/models"
)

// NotificationRepository bildirim database işlemleri
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository yeni repository oluşturur
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create yeni bildirim kaydı oluşturur
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, title, message)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, n.UserID, n.Type, n.Title, n.Message)
	if err != nil {
		return fmt.Errorf("bildirim oluşturulamadı: %w", err)
	}

	return nil
}
