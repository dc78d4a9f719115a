package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/onerilhan/survey-rewards-api/internal/models"
)

// UserRepository kullanıcı database işlemleri
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository yeni repository oluşturur
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create yeni kullanıcı oluşturur
func (r *UserRepository) Create(ctx context.Context, user *models.CreateUserRequest) (*models.User, error) {
	query := `
		INSERT INTO profiles (email, password, first_name, last_name, country)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, first_name, last_name, country, status, created_at
	`

	var result models.User
	err := r.db.QueryRowContext(ctx, query,
		user.Email,
		user.Password,
		user.FirstName,
		user.LastName,
		user.Country,
	).Scan(
		&result.ID,
		&result.Email,
		&result.FirstName,
		&result.LastName,
		&result.Country,
		&result.Status,
		&result.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("kullanıcı oluşturulamadı: %w", err)
	}

	return &result, nil
}

// GetByEmail email ile kullanıcı bulur
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password, first_name, last_name, country, status, created_at
		FROM profiles
		WHERE email = $1
	`

	var user models.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.FirstName,
		&user.LastName,
		&user.Country,
		&user.Status,
		&user.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("kullanıcı bulunamadı")
		}
		return nil, fmt.Errorf("kullanıcı arama hatası: %w", err)
	}

	return &user, nil
}

// GetByID ID ile kullanıcı bulur
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, password, first_name, last_name, country, status, created_at
		FROM profiles
		WHERE id = $1
	`

	var user models.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.FirstName,
		&user.LastName,
		&user.Country,
		&user.Status,
		&user.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("kullanıcı bulunamadı")
		}
		return nil, fmt.Errorf("kullanıcı arama hatası: %w", err)
	}

	return &user, nil
}
