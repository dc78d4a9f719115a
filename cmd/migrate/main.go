package main

import (
	"flag"
	stdlog "log"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/survey-rewards-api/internal/config"
	"github.com/onerilhan/survey-rewards-api/internal/db"
	"github.com/onerilhan/survey-rewards-api/internal/logger"
	"github.com/onerilhan/survey-rewards-api/internal/migration"
)

func main() {
	path := flag.String("path", "migrations", "migration dosyalarının klasörü")
	flag.Parse()

	// .env dosyasını yükle
	if err := godotenv.Load(); err != nil {
		stdlog.Println(".env dosyası bulunamadı, ortam değişkenlerinden okunacak.")
	}

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)

	database, err := db.Connect(cfg.GetDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Veritabanı bağlantısı başarısız")
	}
	defer database.Close()

	runner := migration.NewRunner(database, *path)
	if err := runner.Up(); err != nil {
		log.Fatal().Err(err).Msg("❌ Migration başarısız")
	}
}
