// internal/migration/runner.go
package migration

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Runner migration işlemlerini yöneten ana yapı
// Migrations klasöründeki .sql dosyaları isim sırasına göre uygulanır;
// uygulanan her dosya schema_migrations tablosuna kaydedilir
type Runner struct {
	db   *sql.DB
	path string
}

// NewRunner yeni migration runner oluşturur
func NewRunner(db *sql.DB, path string) *Runner {
	if path == "" {
		path = "migrations"
	}
	return &Runner{db: db, path: path}
}

// Initialize migration tracking tablosunu oluşturur
func (r *Runner) Initialize() error {
	createTableSQL := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`

	if _, err := r.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("migration tracking tablosu oluşturulamadı: %w", err)
	}

	return nil
}

// Up uygulanmamış migration'ları sırayla uygular
func (r *Runner) Up() error {
	if err := r.Initialize(); err != nil {
		return err
	}

	applied, err := r.appliedMigrations()
	if err != nil {
		return err
	}

	files, err := r.migrationFiles()
	if err != nil {
		return err
	}

	pending := 0
	for _, file := range files {
		if applied[file] {
			continue
		}

		start := time.Now()
		if err := r.apply(file); err != nil {
			return fmt.Errorf("migration uygulanamadı (%s): %w", file, err)
		}

		log.Info().
			Str("migration", file).
			Dur("duration", time.Since(start)).
			Msg("✅ Migration uygulandı")
		pending++
	}

	if pending == 0 {
		log.Info().Msg("Uygulanacak yeni migration yok")
	} else {
		log.Info().Int("count", pending).Msg("🗄️  Migration'lar tamamlandı")
	}

	return nil
}

// apply tek bir migration dosyasını transaction içinde uygular ve kaydeder
func (r *Runner) apply(file string) error {
	content, err := os.ReadFile(filepath.Join(r.path, file))
	if err != nil {
		return fmt.Errorf("migration dosyası okunamadı: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("transaction başlatılamadı: %w", err)
	}

	if _, err := tx.Exec(string(content)); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.Exec(`INSERT INTO schema_migrations (name) VALUES ($1)`, file); err != nil {
		tx.Rollback()
		return fmt.Errorf("migration kaydı yazılamadı: %w", err)
	}

	return tx.Commit()
}

// appliedMigrations daha önce uygulanmış migration isimlerini döner
func (r *Runner) appliedMigrations() (map[string]bool, error) {
	rows, err := r.db.Query(`SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("uygulanan migration'lar okunamadı: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("migration scan hatası: %w", err)
		}
		applied[name] = true
	}

	return applied, nil
}

// migrationFiles klasördeki .sql dosyalarını isim sırasıyla döner
func (r *Runner) migrationFiles() ([]string, error) {
	entries, err := os.ReadDir(r.path)
	if err != nil {
		return nil, fmt.Errorf("migration klasörü okunamadı: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}

	sort.Strings(files)
	return files, nil
}
