package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config ortam yapılandırmalarını tutar
type Config struct {
	AppEnv string
	Port   string
	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	// JWT imzalama anahtarı (in-app endpoint'ler için)
	JWTSecret string

	// CPX postback hash doğrulaması için paylaşılan secret
	PostbackSecret string

	// Storage işlemleri için üst süre limiti
	// Süre aşılırsa postback "0" döner ve partner retry yapar
	StorageTimeout time.Duration

	// Postback endpoint'i için dakika başına istek limiti
	PostbackRatePerMinute int
}

// yardımcı fonksiyon: ortam değişkeni yoksa default değeri döner
func getEnv(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// yardımcı fonksiyon: integer ortam değişkeni okur, parse edilemezse default döner
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// LoadConfig tüm yapılandırmayı yükler
func LoadConfig() *Config {
	return &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),
		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBUser: getEnv("DB_USER", "ilhan"),
		DBPass: getEnv("DB_PASS", "password"),
		DBName: getEnv("DB_NAME", "surveydb"),

		JWTSecret:      getEnv("JWT_SECRET", "change-this-in-production"),
		PostbackSecret: getEnv("CPX_POSTBACK_SECRET", ""),

		StorageTimeout:        time.Duration(getEnvInt("STORAGE_TIMEOUT_SECONDS", 10)) * time.Second,
		PostbackRatePerMinute: getEnvInt("POSTBACK_RATE_PER_MINUTE", 120),
	}
}

// GetDSN veritabanı bağlantı URL'sini döner
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName,
	)
}
