package models

import "time"

// OutcomeCode completion processor'ın dönebileceği sonuç kodları
type OutcomeCode string

const (
	// OutcomeAccepted yeni kayıt oluşturuldu, cüzdan kredilendi
	OutcomeAccepted OutcomeCode = "accepted"

	// OutcomeAlreadyProcessed aynı transaction daha önce işlendi (idempotent replay)
	// Terminal cancelled kayıttan sonra gelen tekrar completion da bu koda düşer
	OutcomeAlreadyProcessed OutcomeCode = "already_processed"

	// OutcomeNothingToReverse hiç kabul edilmemiş bir transaction için
	// cancellation geldi; cüzdan değişmeden success olarak kabul edilir
	OutcomeNothingToReverse OutcomeCode = "nothing_to_reverse"

	// OutcomeReversed completed kayıt cancelled'a çevrildi, cüzdan debit edildi
	OutcomeReversed OutcomeCode = "reversed"
)

// Success outcome'un partner açısından final-success sayılıp sayılmadığını döner
func (c OutcomeCode) Success() bool {
	switch c {
	case OutcomeAccepted, OutcomeAlreadyProcessed, OutcomeNothingToReverse, OutcomeReversed:
		return true
	}
	return false
}

// CompletionInput completion processor'a giren normalize edilmiş event
// ExternalReference partner event'lerinde trans_id'dir; in-app
// tamamlamalarda boş bırakılır ve dedup (user_id, survey_id) üzerinden yapılır
type CompletionInput struct {
	UserID            string
	ExternalReference string
	OfferID           string
	SurveyID          string
	RewardAmount      float64
	AmountUSD         float64
	ClientIP          string
	StartedAt         time.Time
	CompletedAt       time.Time
}

// CompletionOutcome processor'ın tek atomik işleminin sonucu
type CompletionOutcome struct {
	Code        OutcomeCode `json:"code"`
	NewBalance  float64     `json:"new_balance"`
	TotalEarned float64     `json:"total_earned"`
	SurveyID    string      `json:"survey_id,omitempty"`
	SurveyTitle string      `json:"survey_title,omitempty"`
	Reward      float64     `json:"reward,omitempty"`
}
