package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/survey-rewards-api/internal/interfaces"
	"github.com/onerilhan/survey-rewards-api/internal/models"
)

// UserHandler kullanıcı HTTP isteklerini yönetir
type UserHandler struct {
	userService interfaces.UserServiceInterface
}

// NewUserHandler yeni handler oluşturur
func NewUserHandler(userService interfaces.UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register yeni kullanıcı kayıt endpoint'i
// POST /api/v1/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Geçersiz istek formatı", http.StatusBadRequest)
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Kullanıcı kaydı başarısız")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response := map[string]interface{}{
		"success": true,
		"data":    user,
		"message": "Kullanıcı başarıyla oluşturuldu",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)

	log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("Yeni kullanıcı kaydedildi")
}

// Login kullanıcı giriş endpoint'i
// POST /api/v1/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Geçersiz istek formatı", http.StatusBadRequest)
		return
	}

	result, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Giriş başarısız")
		http.Error(w, "Email veya şifre hatalı", http.StatusUnauthorized)
		return
	}

	response := map[string]interface{}{
		"success": true,
		"data":    result,
		"message": "Giriş başarılı",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)

	log.Info().Str("user_id", result.User.ID).Msg("Kullanıcı giriş yaptı")
}
