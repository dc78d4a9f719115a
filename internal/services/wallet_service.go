package services

import (
	"context"

	"github.com/onerilhan/survey-rewards-api/internal/interfaces"
	"github.com/onerilhan/survey-rewards-api/internal/models"
)

// WalletService cüzdan okuma business logic
// Kredilendirme ve debit sadece CompletionService transaction'ında yapılır;
// burası sadece okuma yoludur
type WalletService struct {
	walletRepo interfaces.WalletRepositoryInterface
}

// NewWalletService yeni service oluşturur
func NewWalletService(walletRepo interfaces.WalletRepositoryInterface) *WalletService {
	return &WalletService{walletRepo: walletRepo}
}

// GetWallet kullanıcının cüzdanını getirir, yoksa sıfır bakiyeyle oluşturur
func (s *WalletService) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	return s.walletRepo.GetOrCreate(ctx, userID)
}
