package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/onerilhan/survey-rewards-api/internal/models"
)

// SurveyRepository anket kataloğu database işlemleri
type SurveyRepository struct {
	db *sql.DB
}

// NewSurveyRepository yeni repository oluşturur
func NewSurveyRepository(db *sql.DB) *SurveyRepository {
	return &SurveyRepository{db: db}
}

// GetByID ID ile anket getirir
func (r *SurveyRepository) GetByID(ctx context.Context, id string) (*models.Survey, error) {
	query := `
		SELECT id, external_survey_id, title, description, reward_amount, provider, status, current_completions, created_at
		FROM surveys
		WHERE id = $1
	`

	var survey models.Survey
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&survey.ID,
		&survey.ExternalSurveyID,
		&survey.Title,
		&survey.Description,
		&survey.RewardAmount,
		&survey.Provider,
		&survey.Status,
		&survey.CurrentCompletions,
		&survey.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("anket bulunamadı")
		}
		return nil, fmt.Errorf("anket arama hatası: %w", err)
	}

	return &survey, nil
}

// ListActive aktif anketleri listeler (pagination ile)
func (r *SurveyRepository) ListActive(ctx context.Context, limit, offset int) ([]*models.Survey, error) {
	query := `
		SELECT id, external_survey_id, title, description, reward_amount, provider, status, current_completions, created_at
		FROM surveys
		WHERE status = 'active'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("anket listesi alınamadı: %w", err)
	}
	defer rows.Close()

	var surveys []*models.Survey
	for rows.Next() {
		var survey models.Survey
		err := rows.Scan(
			&survey.ID,
			&survey.ExternalSurveyID,
			&survey.Title,
			&survey.Description,
			&survey.RewardAmount,
			&survey.Provider,
			&survey.Status,
			&survey.CurrentCompletions,
			&survey.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("anket scan hatası: %w", err)
		}
		surveys = append(surveys, &survey)
	}

	return surveys, nil
}
