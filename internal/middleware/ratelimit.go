package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/onerilhan/survey-rewards-api/internal/utils"
)

// RateLimitConfig rate limiting ayarları
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
	SkipPaths         []string
}

// DefaultRateLimitConfig varsayılan rate limit ayarları
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerMinute: 60,
		Burst:             10,
		SkipPaths: []string{
			"/health",
			"/favicon.ico",
		},
	}
}

// PostbackRateLimitConfig postback endpoint'i için ayarlar
// Partner retry'ları agresif olabilir, limit daha geniş tutulur
func PostbackRateLimitConfig(requestsPerMinute int) *RateLimitConfig {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 120
	}
	return &RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		Burst:             20,
		SkipPaths:         []string{},
	}
}

// ipLimiter tek bir IP için rate limiter
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware IP bazlı rate limiting middleware
type RateLimitMiddleware struct {
	config   *RateLimitConfig
	limiters map[string]*ipLimiter
	mutex    sync.Mutex
}

// NewRateLimitMiddleware yeni rate limit middleware oluşturur
func NewRateLimitMiddleware(config *RateLimitConfig) *RateLimitMiddleware {
	if config == nil {
		config = DefaultRateLimitConfig()
	}

	m := &RateLimitMiddleware{
		config:   config,
		limiters: make(map[string]*ipLimiter),
	}

	go m.cleanupLimiters()

	return m
}

// Handler rate limiting middleware handler döner
func (rlm *RateLimitMiddleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rlm.shouldSkipPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := utils.GetClientIP(r)

			if !rlm.allow(clientIP) {
				log.Warn().Str("client_ip", clientIP).Str("path", r.URL.Path).Msg("Request blocked - rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(60))
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// allow IP'nin rate limit'ini kontrol eder
func (rlm *RateLimitMiddleware) allow(ip string) bool {
	rlm.mutex.Lock()
	defer rlm.mutex.Unlock()

	limiter, exists := rlm.limiters[ip]
	if !exists {
		limit := rate.Every(time.Minute / time.Duration(rlm.config.RequestsPerMinute))
		limiter = &ipLimiter{
			limiter: rate.NewLimiter(limit, rlm.config.Burst),
		}
		rlm.limiters[ip] = limiter
	}

	limiter.lastSeen = time.Now()
	return limiter.limiter.Allow()
}

// shouldSkipPath path kontrolü
func (rlm *RateLimitMiddleware) shouldSkipPath(path string) bool {
	for _, skipPath := range rlm.config.SkipPaths {
		if path == skipPath {
			return true
		}
	}
	return false
}

// cleanupLimiters eski limiter'ları temizler
func (rlm *RateLimitMiddleware) cleanupLimiters() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rlm.mutex.Lock()

		now := time.Now()
		for ip, limiter := range rlm.limiters {
			if now.Sub(limiter.lastSeen) > 30*time.Minute {
				delete(rlm.limiters, ip)
			}
		}

		log.Debug().Int("active_limiters", len(rlm.limiters)).Msg("Rate limiter cleanup completed")

		rlm.mutex.Unlock()
	}
}
