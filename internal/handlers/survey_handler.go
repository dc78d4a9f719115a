package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/survey-rewards-api/internal/auth"
	"github.com/onerilhan/survey-rewards-api/internal/interfaces"
	"github.com/onerilhan/survey-rewards-api/internal/middleware"
	"github.com/onerilhan/survey-rewards-api/internal/models"
	"github.com/onerilhan/survey-rewards-api/internal/services"
)

// SurveyHandler anket HTTP isteklerini yönetir
type SurveyHandler struct {
	surveyService interfaces.SurveyServiceInterface
}

// NewSurveyHandler yeni handler oluşturur
func NewSurveyHandler(surveyService interfaces.SurveyServiceInterface) *SurveyHandler {
	return &SurveyHandler{surveyService: surveyService}
}

// ListSurveys aktif anket listesi endpoint'i (protected)
func (h *SurveyHandler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	surveys, err := h.surveyService.ListActive(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Anket listesi getirilemedi")
		http.Error(w, "Anket listesi alınamadı. Lütfen tekrar deneyin.", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"surveys": surveys,
			"limit":   limit,
			"offset":  offset,
			"count":   len(surveys),
		},
		"message": "Anket listesi başarıyla getirildi",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// StartSurvey anket başlatma endpoint'i (protected)
// POST /api/v1/surveys/{id}/start
func (h *SurveyHandler) StartSurvey(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*auth.Claims)
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	surveyID := mux.Vars(r)["id"]

	err := h.surveyService.Start(r.Context(), claims.UserID, surveyID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSurveyNotFound):
			http.Error(w, "Anket bulunamadı", http.StatusNotFound)
		case errors.Is(err, services.ErrAlreadyStarted):
			http.Error(w, "Bu anketi zaten başlattınız", http.StatusConflict)
		case errors.Is(err, services.ErrAlreadyCompleted):
			http.Error(w, "Bu anketi zaten tamamladınız", http.StatusConflict)
		default:
			log.Error().Err(err).Str("user_id", claims.UserID).Str("survey_id", surveyID).Msg("Anket başlatılamadı")
			http.Error(w, "Anket başlatılamadı. Lütfen tekrar deneyin.", http.StatusInternalServerError)
		}
		return
	}

	response := map[string]interface{}{
		"success": true,
		"message": "Anket başlatıldı",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)

	log.Info().Str("user_id", claims.UserID).Str("survey_id", surveyID).Msg("Anket başlatıldı")
}

// CompleteSurvey in-app anket tamamlama endpoint'i (protected)
// POST /api/v1/surveys/{id}/complete
// Ödül tutarı client'tan alınmaz, katalogdan okunur; kredilenecek kullanıcı
// her zaman token sahibidir
func (h *SurveyHandler) CompleteSurvey(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*auth.Claims)
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	surveyID := mux.Vars(r)["id"]

	outcome, err := h.surveyService.Complete(r.Context(), claims.UserID, surveyID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSurveyNotFound):
			http.Error(w, "Anket bulunamadı", http.StatusNotFound)
		case errors.Is(err, services.ErrAlreadyCompleted):
			http.Error(w, "Bu anketi zaten tamamladınız", http.StatusConflict)
		case errors.Is(err, services.ErrUserNotFound):
			http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		default:
			log.Error().Err(err).Str("user_id", claims.UserID).Str("survey_id", surveyID).Msg("Anket tamamlanamadı")
			http.Error(w, "Anket tamamlanamadı. Lütfen tekrar deneyin.", http.StatusInternalServerError)
		}
		return
	}

	response := models.CompleteSurveyResponse{
		Success: true,
		Wallet: &models.WalletSnapshot{
			Balance:     outcome.NewBalance,
			TotalEarned: outcome.TotalEarned,
		},
		Message: "Anket tamamlandı, ödül cüzdanınıza eklendi",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)

	log.Info().
		Str("user_id", claims.UserID).
		Str("survey_id", surveyID).
		Float64("reward", outcome.Reward).
		Float64("new_balance", outcome.NewBalance).
		Msg("💰 Anket tamamlandı")
}

// GetHistory tamamlama geçmişi endpoint'i (protected)
func (h *SurveyHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*auth.Claims)
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	limit, offset := parsePagination(r)

	history, err := h.surveyService.History(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Tamamlama geçmişi getirilemedi")
		http.Error(w, "Geçmiş alınamadı. Lütfen tekrar deneyin.", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"history": history,
			"limit":   limit,
			"offset":  offset,
			"count":   len(history),
		},
		"message": "Tamamlama geçmişi başarıyla getirildi",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// parsePagination query'den limit/offset okur
func parsePagination(r *http.Request) (int, int) {
	limit := 20
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return limit, offset
}
