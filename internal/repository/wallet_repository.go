package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/onerilhan/survey-rewards-api/internal/models"
)

// WalletRepository cüzdan database işlemleri (transaction dışı okuma yolu)
// Kredilendirme/debit her zaman completion processor'ın transaction'ı
// içinde yapılır; bu repository sadece UI okumaları içindir
type WalletRepository struct {
	db *sql.DB
}

// NewWalletRepository yeni repository oluşturur
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetOrCreate kullanıcının cüzdanını getirir, yoksa sıfır bakiyeyle oluşturur
// İlk okuma da lazy-create tetikler; aynı anda iki create denemesi
// ON CONFLICT ile çözülür
func (r *WalletRepository) GetOrCreate(ctx context.Context, userID string) (*models.Wallet, error) {
	query := `
		SELECT user_id, balance, total_earned, total_withdrawn, updated_at
		FROM wallets
		WHERE user_id = $1
	`

	var wallet models.Wallet
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&wallet.UserID,
		&wallet.Balance,
		&wallet.TotalEarned,
		&wallet.TotalWithdrawn,
		&wallet.UpdatedAt,
	)

	if err == nil {
		return &wallet, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("cüzdan arama hatası: %w", err)
	}

	// Cüzdan yoksa sıfır bakiyeyle oluştur
	insertQuery := `
		INSERT INTO wallets (user_id, balance, total_earned, total_withdrawn)
		VALUES ($1, 0.00, 0.00, 0.00)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, balance, total_earned, total_withdrawn, updated_at
	`

	err = r.db.QueryRowContext(ctx, insertQuery, userID).Scan(
		&wallet.UserID,
		&wallet.Balance,
		&wallet.TotalEarned,
		&wallet.TotalWithdrawn,
		&wallet.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("cüzdan oluşturulamadı: %w", err)
	}

	return &wallet, nil
}
