package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/onerilhan/survey-rewards-api/internal/models"
)

// CompletionRepository completion ledger database işlemleri
// (transaction dışı okuma ve 'started' kaydı yolları; completed/cancelled
// geçişleri sadece completion processor yazar)
type CompletionRepository struct {
	db *sql.DB
}

// NewCompletionRepository yeni repository oluşturur
func NewCompletionRepository(db *sql.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// GetByUserAndSurvey kullanıcının anket için en güncel kaydını getirir
// Kayıt yoksa (nil, nil) döner
func (r *CompletionRepository) GetByUserAndSurvey(ctx context.Context, userID, surveyID string) (*models.UserSurvey, error) {
	query := `
		SELECT id, user_id, survey_id, external_reference, offer_id, status, reward_earned, amount_usd, ip_address, started_at, completed_at
		FROM user_surveys
		WHERE user_id = $1 AND survey_id = $2
		ORDER BY started_at DESC
		LIMIT 1
	`

	var record models.UserSurvey
	err := r.db.QueryRowContext(ctx, query, userID, surveyID).Scan(
		&record.ID,
		&record.UserID,
		&record.SurveyID,
		&record.ExternalReference,
		&record.OfferID,
		&record.Status,
		&record.RewardEarned,
		&record.AmountUSD,
		&record.IPAddress,
		&record.StartedAt,
		&record.CompletedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("completion kaydı arama hatası: %w", err)
	}

	return &record, nil
}

// CreateStarted 'started' kaydı açar (in-app akışın double-start kapısı)
func (r *CompletionRepository) CreateStarted(ctx context.Context, userID, surveyID string) (*models.UserSurvey, error) {
	query := `
		INSERT INTO user_surveys (user_id, survey_id, status, reward_earned, started_at)
		VALUES ($1, $2, 'started', 0.00, NOW())
		RETURNING id, user_id, survey_id, external_reference, offer_id, status, reward_earned, amount_usd, ip_address, started_at, completed_at
	`

	var record models.UserSurvey
	err := r.db.QueryRowContext(ctx, query, userID, surveyID).Scan(
		&record.ID,
		&record.UserID,
		&record.SurveyID,
		&record.ExternalReference,
		&record.OfferID,
		&record.Status,
		&record.RewardEarned,
		&record.AmountUSD,
		&record.IPAddress,
		&record.StartedAt,
		&record.CompletedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("started kaydı oluşturulamadı: %w", err)
	}

	return &record, nil
}

// ListByUser kullanıcının tamamlama geçmişini getirir
func (r *CompletionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.UserSurvey, error) {
	query := `
		SELECT id, user_id, survey_id, external_reference, offer_id, status, reward_earned, amount_usd, ip_address, started_at, completed_at
		FROM user_surveys
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("completion geçmişi alınamadı: %w", err)
	}
	defer rows.Close()

	var records []*models.UserSurvey
	for rows.Next() {
		var record models.UserSurvey
		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.SurveyID,
			&record.ExternalReference,
			&record.OfferID,
			&record.Status,
			&record.RewardEarned,
			&record.AmountUSD,
			&record.IPAddress,
			&record.StartedAt,
			&record.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("completion scan hatası: %w", err)
		}
		records = append(records, &record)
	}

	return records, nil
}
