package models

import "time"

// Completion record status değerleri
const (
	CompletionStatusStarted   = "started"
	CompletionStatusCompleted = "completed"
	CompletionStatusCancelled = "cancelled"
)

// Survey anket kataloğundaki tek bir anketi temsil eder
// Partner offer'ları ilk görüldüğünde external_survey_id üzerinden
// lookup-or-create ile oluşturulur
type Survey struct {
	ID                 string    `json:"id" db:"id"`
	ExternalSurveyID   *string   `json:"external_survey_id" db:"external_survey_id"` // internal anketlerde NULL
	Title              string    `json:"title" db:"title"`
	Description        string    `json:"description" db:"description"`
	RewardAmount       float64   `json:"reward_amount" db:"reward_amount"`
	Provider           string    `json:"provider" db:"provider"`
	Status             string    `json:"status" db:"status"`
	CurrentCompletions int       `json:"current_completions" db:"current_completions"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// UserSurvey bir kullanıcının anket tamamlama ledger kaydıdır
// (user_id, external_reference) çifti için status='completed' en fazla
// bir kayıt olabilir; bu kural DB'de partial unique index ile korunur
type UserSurvey struct {
	ID                string     `json:"id" db:"id"`
	UserID            string     `json:"user_id" db:"user_id"`
	SurveyID          string     `json:"survey_id" db:"survey_id"`
	ExternalReference *string    `json:"external_reference" db:"external_reference"`
	OfferID           *string    `json:"offer_id" db:"offer_id"`
	Status            string     `json:"status" db:"status"`
	RewardEarned      float64    `json:"reward_earned" db:"reward_earned"`
	AmountUSD         *float64   `json:"amount_usd" db:"amount_usd"`
	IPAddress         *string    `json:"ip_address" db:"ip_address"`
	StartedAt         time.Time  `json:"started_at" db:"started_at"`
	CompletedAt       *time.Time `json:"completed_at" db:"completed_at"`
}

// CompleteSurveyRequest in-app anket tamamlama isteği
type CompleteSurveyRequest struct {
	SurveyID string `json:"survey_id"`
}

// CompleteSurveyResponse in-app anket tamamlama yanıtı
type CompleteSurveyResponse struct {
	Success bool            `json:"success"`
	Wallet  *WalletSnapshot `json:"wallet"`
	Message string          `json:"message"`
}
