package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/onerilhan/survey-rewards-api/internal/auth"
	"github.com/onerilhan/survey-rewards-api/internal/interfaces"
	"github.com/onerilhan/survey-rewards-api/internal/models"
)

// UserService kullanıcı business logic
type UserService struct {
	userRepo interfaces.UserRepositoryInterface
}

// NewUserService yeni service oluşturur
func NewUserService(userRepo interfaces.UserRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register yeni kullanıcı kaydeder
func (s *UserService) Register(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	// Validation
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, fmt.Errorf("geçersiz email adresi")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("şifre en az 8 karakter olmalı")
	}

	// Email zaten kayıtlı mı kontrol et
	if existing, _ := s.userRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, fmt.Errorf("bu email adresi zaten kayıtlı")
	}

	// Şifreyi hash'le
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("şifre hash hatası: %w", err)
	}
	req.Password = string(hashedPassword)

	return s.userRepo.Create(ctx, req)
}

// Login kullanıcı girişi yapar ve JWT token döner
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Email mi şifre mi yanlış belli etme
		return nil, fmt.Errorf("email veya şifre hatalı")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("email veya şifre hatalı")
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("token oluşturulamadı: %w", err)
	}

	// Şifre hash'i response'a sızmasın
	user.Password = ""

	return &models.LoginResponse{
		User:  user,
		Token: token,
	}, nil
}
