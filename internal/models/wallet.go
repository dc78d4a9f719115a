package models

import "time"

// Wallet kullanıcı cüzdan modelini temsil eder
// balance hiçbir zaman negatif olamaz; total_earned sadece kabul edilen
// kazançlarla artar (reversal hariç azalmaz)
type Wallet struct {
	UserID         string    `json:"user_id" db:"user_id"`
	Balance        float64   `json:"balance" db:"balance"`
	TotalEarned    float64   `json:"total_earned" db:"total_earned"`
	TotalWithdrawn float64   `json:"total_withdrawn" db:"total_withdrawn"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// WalletSnapshot UI'a dönen özet cüzdan görünümü
type WalletSnapshot struct {
	Balance     float64 `json:"balance"`
	TotalEarned float64 `json:"total_earned"`
}
