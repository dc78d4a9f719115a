package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/survey-rewards-api/internal/auth"
	"github.com/onerilhan/survey-rewards-api/internal/middleware"
	"github.com/onerilhan/survey-rewards-api/internal/services"
)

// WalletHandler cüzdan HTTP isteklerini yönetir
type WalletHandler struct {
	walletService *services.WalletService
}

// NewWalletHandler yeni handler oluşturur
func NewWalletHandler(walletService *services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// GetWallet kullanıcının cüzdanını döner (protected)
// GET /api/v1/wallet
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*auth.Claims)
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	wallet, err := h.walletService.GetWallet(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Cüzdan getirilemedi")
		http.Error(w, "Cüzdan bilgisi alınamadı. Lütfen tekrar deneyin.", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"success": true,
		"data":    wallet,
		"message": "Cüzdan bilgisi başarıyla getirildi",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)

	log.Info().Str("user_id", claims.UserID).Float64("balance", wallet.Balance).Msg("Cüzdan bilgisi getirildi")
}
