package handlers

import (
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/survey-rewards-api/internal/interfaces"
	"github.com/onerilhan/survey-rewards-api/internal/models"
	"github.com/onerilhan/survey-rewards-api/internal/utils"
)

// CPX status parametresi değerleri
const (
	postbackStatusComplete = "1"
	postbackStatusCancel   = "2"
)

// PostbackHandler CPX Research server-to-server postback endpoint'i
//
// Partner sözleşmesi: yanıt her zaman HTTP 200 text/plain, body tam olarak
// "1" (kabul/ack) veya "0" (işlenemedi, partner retry eder). HTTP status
// kodları ile hata anlatmak partner tarafında retry fırtınası yaratır
type PostbackHandler struct {
	completionService interfaces.CompletionServiceInterface
	secret            string
	storageTimeout    time.Duration
}

// NewPostbackHandler yeni handler oluşturur
func NewPostbackHandler(completionService interfaces.CompletionServiceInterface, secret string, storageTimeout time.Duration) *PostbackHandler {
	return &PostbackHandler{
		completionService: completionService,
		secret:            secret,
		storageTimeout:    storageTimeout,
	}
}

// HandleCPXPostback GET /api/v1/postback/cpx
func (h *PostbackHandler) HandleCPXPostback(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	userID := params.Get("user_id")
	transID := params.Get("trans_id")
	offerID := params.Get("offer_id")
	amountLocal := params.Get("amount_local")
	amountUSD := params.Get("amount_usd")
	status := params.Get("status")
	hash := params.Get("hash")
	ipClick := params.Get("ip_click")

	// 1. Zorunlu parametre kontrolü
	if userID == "" || transID == "" || offerID == "" {
		log.Warn().
			Str("user_id", userID).
			Str("trans_id", transID).
			Str("offer_id", offerID).
			Msg("Postback zorunlu parametre eksik")
		writeAck(w, false)
		return
	}

	// 2. Hash doğrulaması: md5(trans_id + "-" + secret)
	if !h.verifyHash(transID, hash) {
		log.Warn().
			Str("trans_id", transID).
			Str("remote_addr", utils.GetClientIP(r)).
			Msg("Postback hash doğrulaması başarısız")
		writeAck(w, false)
		return
	}

	// 3. user_id format kontrolü (storage'a gitmeden ucuz red)
	if _, err := uuid.Parse(userID); err != nil {
		log.Warn().Str("user_id", userID).Msg("Postback geçersiz user_id formatı")
		writeAck(w, false)
		return
	}

	// Storage işlemleri için üst süre limiti; aşılırsa "0" döner ve
	// partner daha sonra tekrar dener
	ctx, cancel := context.WithTimeout(r.Context(), h.storageTimeout)
	defer cancel()

	switch status {
	case postbackStatusComplete:
		h.handleComplete(ctx, w, userID, transID, offerID, amountLocal, amountUSD, ipClick)

	case postbackStatusCancel:
		h.handleCancel(ctx, w, userID, transID)

	default:
		// Tanınmayan status: işlem yapmadan acknowledge et, partner
		// bilinmeyen event tipini sonsuza kadar retry etmesin
		log.Info().
			Str("trans_id", transID).
			Str("status", status).
			Msg("Postback tanınmayan status, işlem yapılmadan acknowledge edildi")
		writeAck(w, true)
	}
}

// handleComplete status=1 completion event'ini işler
func (h *PostbackHandler) handleComplete(ctx context.Context, w http.ResponseWriter, userID, transID, offerID, amountLocal, amountUSD, ipClick string) {
	reward, err := utils.ParseAmount(amountLocal)
	if err != nil {
		log.Warn().
			Err(err).
			Str("trans_id", transID).
			Str("amount_local", amountLocal).
			Msg("Postback geçersiz tutar")
		writeAck(w, false)
		return
	}

	// amount_usd sadece audit için taşınır, parse edilemezse 0 geçilir
	usd, _ := utils.ParseAmount(amountUSD)

	input := &models.CompletionInput{
		UserID:            userID,
		ExternalReference: transID,
		OfferID:           offerID,
		RewardAmount:      reward,
		AmountUSD:         usd,
		ClientIP:          ipClick,
	}

	outcome, err := h.completionService.ProcessCompletion(ctx, input)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("trans_id", transID).
			Msg("Postback completion işlenemedi")
		writeAck(w, false)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("trans_id", transID).
		Str("outcome", string(outcome.Code)).
		Float64("reward", reward).
		Float64("new_balance", outcome.NewBalance).
		Msg("💰 Postback completion işlendi")

	writeAck(w, outcome.Code.Success())
}

// handleCancel status=2 cancellation (chargeback) event'ini işler
func (h *PostbackHandler) handleCancel(ctx context.Context, w http.ResponseWriter, userID, transID string) {
	outcome, err := h.completionService.ProcessCancellation(ctx, userID, transID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("trans_id", transID).
			Msg("Postback cancellation işlenemedi")
		writeAck(w, false)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("trans_id", transID).
		Str("outcome", string(outcome.Code)).
		Msg("Postback cancellation işlendi")

	writeAck(w, outcome.Code.Success())
}

// verifyHash partner imzasını kontrol eder: md5(trans_id + "-" + secret)
// Partner sözleşmesi MD5 dayatıyor; karşılaştırma timing-safe yapılır
func (h *PostbackHandler) verifyHash(transID, providedHash string) bool {
	if h.secret == "" || providedHash == "" {
		return false
	}

	sum := md5.Sum([]byte(transID + "-" + h.secret))
	expected := hex.EncodeToString(sum[:])

	return subtle.ConstantTimeCompare([]byte(expected), []byte(providedHash)) == 1
}

// writeAck partner sözleşmesine uygun yanıt yazar: her zaman 200, body "1" veya "0"
func writeAck(w http.ResponseWriter, ok bool) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if ok {
		w.Write([]byte("1"))
	} else {
		w.Write([]byte("0"))
	}
}
