package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// TransactionFunc database transaction içinde çalışacak fonksiyon tipi
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction database transaction'ı yönetir
// Hata durumunda otomatik rollback, başarı durumunda commit yapar
// Context iptal/timeout olursa transaction da iptal olur; postback tarafında
// bu durum partner'a "0" (retry) olarak yansır
func WithTransaction(ctx context.Context, db *sql.DB, fn TransactionFunc) error {
	// Transaction başlat (read committed yeterli, unique index backstop var)
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("transaction başlatılamadı: %w", err)
	}

	// Defer ile transaction'ı yönet
	defer func() {
		if r := recover(); r != nil {
			// Panic durumunda rollback
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.Error().Err(rollbackErr).Msg("Rollback hatası (panic)")
			}
			log.Error().Interface("panic", r).Msg("Transaction panic ile rollback yapıldı")
			panic(r) // Panic'i yeniden fırlat
		}
	}()

	// İş mantığını çalıştır
	if err := fn(tx); err != nil {
		// Hata durumunda rollback
		if rollbackErr := tx.Rollback(); rollbackErr != nil && rollbackErr != sql.ErrTxDone {
			log.Error().Err(rollbackErr).Msg("Rollback hatası")
			return fmt.Errorf("transaction hatası ve rollback hatası: %w, rollback: %v", err, rollbackErr)
		}
		log.Warn().Err(err).Msg("Transaction rollback yapıldı")
		return err
	}

	// Başarı durumunda commit
	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Msg("Commit hatası")
		return fmt.Errorf("transaction commit hatası: %w", err)
	}

	log.Debug().Msg("Transaction başarıyla commit edildi")
	return nil
}

// TxQuerier transaction içinde repository işlemleri için helper
type TxQuerier struct {
	tx *sql.Tx
}

// NewTxQuerier transaction-aware querier oluşturur
func NewTxQuerier(tx *sql.Tx) *TxQuerier {
	return &TxQuerier{tx: tx}
}

// Exec transaction içinde SQL çalıştırır
func (q *TxQuerier) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return q.tx.ExecContext(ctx, query, args...)
}

// QueryRow transaction içinde tek satır sorgusu çalıştırır
func (q *TxQuerier) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return q.tx.QueryRowContext(ctx, query, args...)
}

// Query transaction içinde çoklu satır sorgusu çalıştırır
func (q *TxQuerier) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return q.tx.QueryContext(ctx, query, args...)
}
