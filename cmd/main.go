package main

import (
	"context"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/survey-rewards-api/internal/auth"
	"github.com/onerilhan/survey-rewards-api/internal/config"
	"github.com/onerilhan/survey-rewards-api/internal/db"
	"github.com/onerilhan/survey-rewards-api/internal/handlers"
	"github.com/onerilhan/survey-rewards-api/internal/logger"
	"github.com/onerilhan/survey-rewards-api/internal/middleware"
	"github.com/onerilhan/survey-rewards-api/internal/repository"
	"github.com/onerilhan/survey-rewards-api/internal/services"
)

func main() {
	// .env dosyasını yükle
	if err := godotenv.Load(); err != nil {
		stdlog.Println(".env dosyası bulunamadı, ortam değişkenlerinden okunacak.")
	}

	// config yükle
	cfg := config.LoadConfig()

	// logger başlat
	logger.Init(cfg.AppEnv)

	log.Info().
		Str("environment", cfg.AppEnv).
		Str("port", cfg.Port).
		Msg("🚀 Survey Rewards API başlatıldı")

	if cfg.PostbackSecret == "" {
		log.Warn().Msg("⚠️  CPX_POSTBACK_SECRET tanımlı değil, postback endpoint'i tüm istekleri reddedecek")
	}

	// JWT imzalama anahtarını ayarla
	auth.Init(cfg.JWTSecret)

	// Database bağlantısı
	database, err := db.Connect(cfg.GetDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Veritabanı bağlantısı başarısız")
	}
	defer database.Close()

	// Repository, Service, Handler katmanları
	userRepo := repository.NewUserRepository(database)
	walletRepo := repository.NewWalletRepository(database)
	surveyRepo := repository.NewSurveyRepository(database)
	completionRepo := repository.NewCompletionRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)

	notificationService := services.NewNotificationService(notificationRepo)
	completionService := services.NewCompletionService(database, notificationService)
	surveyService := services.NewSurveyService(surveyRepo, completionRepo, completionService)
	userService := services.NewUserService(userRepo)
	walletService := services.NewWalletService(walletRepo)

	userHandler := handlers.NewUserHandler(userService)
	walletHandler := handlers.NewWalletHandler(walletService)
	surveyHandler := handlers.NewSurveyHandler(surveyService)
	postbackHandler := handlers.NewPostbackHandler(completionService, cfg.PostbackSecret, cfg.StorageTimeout)

	// Gorilla Mux Router Setup
	router := setupRouter(cfg, userHandler, walletHandler, surveyHandler, postbackHandler)

	// HTTP Server configuration
	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown setup
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Server'ı goroutine'de başlat
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("addr", serverAddr).
			Msg("🌐 HTTP Server (Gorilla Mux) başlatıldı")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("❌ Server başlatma hatası")
		}
	}()

	// Shutdown signal'ını bekle
	<-shutdown
	log.Info().Msg("🛑 Shutdown signal alındı, server kapatılıyor...")

	// Graceful shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// HTTP Server'ı kapat (aktif bağlantıları bekle)
	log.Info().Msg("📡 HTTP Server kapatılıyor...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ HTTP Server kapatma hatası")
	} else {
		log.Info().Msg("✅ HTTP Server başarıyla kapatıldı")
	}

	log.Info().Msg("👋 Survey Rewards API başarıyla kapatıldı")
}

// setupRouter Gorilla Mux router'ını ayarlar
func setupRouter(
	cfg *config.Config,
	userHandler *handlers.UserHandler,
	walletHandler *handlers.WalletHandler,
	surveyHandler *handlers.SurveyHandler,
	postbackHandler *handlers.PostbackHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Global middleware
	router.Use(middleware.RequestLoggingMiddleware(nil))

	// Health check
	router.HandleFunc("/health", healthCheck).Methods("GET")

	// API v1 subrouter
	api := router.PathPrefix("/api/v1").Subrouter()

	// Postback endpoint (partner server-to-server, kendi CORS ve rate limit'i var)
	postbackRateLimit := middleware.NewRateLimitMiddleware(middleware.PostbackRateLimitConfig(cfg.PostbackRatePerMinute))
	postback := api.PathPrefix("/postback").Subrouter()
	postback.Use(middleware.CORSMiddleware(middleware.PostbackCORSConfig()))
	postback.Use(postbackRateLimit.Handler())
	postback.HandleFunc("/cpx", postbackHandler.HandleCPXPostback).Methods("GET", "OPTIONS")

	// Public endpoints (Authentication)
	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.Use(middleware.CORSMiddleware(nil))
	authRoutes.HandleFunc("/register", userHandler.Register).Methods("POST", "OPTIONS")
	authRoutes.HandleFunc("/login", userHandler.Login).Methods("POST", "OPTIONS")

	// Protected endpoints (Authentication required)
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.CORSMiddleware(nil))
	protected.Use(middleware.AuthMiddleware)

	// Survey endpoints
	surveys := protected.PathPrefix("/surveys").Subrouter()
	surveys.HandleFunc("", surveyHandler.ListSurveys).Methods("GET")
	surveys.HandleFunc("/history", surveyHandler.GetHistory).Methods("GET")
	surveys.HandleFunc("/{id}/start", surveyHandler.StartSurvey).Methods("POST")
	surveys.HandleFunc("/{id}/complete", surveyHandler.CompleteSurvey).Methods("POST")

	// Wallet endpoint
	protected.HandleFunc("/wallet", walletHandler.GetWallet).Methods("GET")

	// Route listesini log'la (development için)
	router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err == nil {
			methods, _ := route.GetMethods()
			log.Debug().
				Str("path", pathTemplate).
				Strs("methods", methods).
				Msg("📍 Route registered")
		}
		return nil
	})

	return router
}

// healthCheck basit sağlık kontrolü endpoint'i
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}
