package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/survey-rewards-api/internal/db"
	"github.com/onerilhan/survey-rewards-api/internal/interfaces"
	"github.com/onerilhan/survey-rewards-api/internal/models"
	"github.com/onerilhan/survey-rewards-api/internal/utils"
)

// CompletionService completion/cancellation event'lerini ledger ve cüzdan
// mutasyonlarına çeviren tek yetkili yer
// Idempotency kontrolü, kayıt insert'i ve bakiye güncellemesi tek database
// transaction içinde yapılır; ya hepsi uygulanır ya hiçbiri
type CompletionService struct {
	database *sql.DB
	notifier interfaces.NotificationServiceInterface
}

// NewCompletionService yeni service oluşturur
func NewCompletionService(database *sql.DB, notifier interfaces.NotificationServiceInterface) *CompletionService {
	return &CompletionService{
		database: database,
		notifier: notifier,
	}
}

// ProcessCompletion completion event'ini tek atomik işlemde uygular
// State machine: Unseen -> Completed. Completed -> Completed ve
// Cancelled -> Completed tekrar kredi uygulamaz (AlreadyProcessed);
// terminal cancellation finaldir
func (s *CompletionService) ProcessCompletion(ctx context.Context, input *models.CompletionInput) (*models.CompletionOutcome, error) {
	// Amount validation (terminal hata, storage'a dokunmadan)
	if !utils.ValidAmount(input.RewardAmount) {
		return nil, ErrInvalidAmount
	}

	var outcome *models.CompletionOutcome

	// Database transaction ile rollback mechanism
	err := db.WithTransaction(ctx, s.database, func(tx *sql.Tx) error {
		q := db.NewTxQuerier(tx)

		// 1. Kullanıcı var mı kontrol et
		var userExists bool
		err := q.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1)
		`, input.UserID).Scan(&userExists)
		if err != nil {
			return fmt.Errorf("kullanıcı sorgusu hatası: %w", err)
		}
		if !userExists {
			return ErrUserNotFound
		}

		// 2. Anketi çöz: in-app event'te katalogdan, partner event'inde
		// lookup-or-create (unique constraint korumalı)
		surveyID, surveyTitle, err := s.resolveSurvey(ctx, q, input)
		if err != nil {
			return err
		}

		// 3. Idempotency guard, insert ile aynı transaction içinde
		// (partner'lar non-2xx'te agresif retry yapar, race burada kapanır)
		if input.ExternalReference != "" {
			var existingStatus string
			err = q.QueryRow(ctx, `
				SELECT status FROM user_surveys
				WHERE user_id = $1 AND external_reference = $2 AND status IN ('completed', 'cancelled')
				ORDER BY started_at DESC
				LIMIT 1
			`, input.UserID, input.ExternalReference).Scan(&existingStatus)

			if err == nil {
				// Duplicate teslimat veya terminal cancel sonrası replay:
				// orijinal işlem başarılı kabul edilir, kredi tekrar uygulanmaz
				balance, totalEarned := s.readWalletSnapshot(ctx, q, input.UserID)
				outcome = &models.CompletionOutcome{
					Code:        models.OutcomeAlreadyProcessed,
					NewBalance:  balance,
					TotalEarned: totalEarned,
					SurveyID:    surveyID,
					SurveyTitle: surveyTitle,
				}
				return nil
			}
			if err != sql.ErrNoRows {
				return fmt.Errorf("idempotency sorgusu hatası: %w", err)
			}
		} else {
			// In-app event: dedup (user_id, survey_id) üzerinden
			var existingStatus string
			err = q.QueryRow(ctx, `
				SELECT status FROM user_surveys
				WHERE user_id = $1 AND survey_id = $2 AND status = 'completed'
				LIMIT 1
			`, input.UserID, surveyID).Scan(&existingStatus)

			if err == nil {
				return ErrAlreadyCompleted
			}
			if err != sql.ErrNoRows {
				return fmt.Errorf("idempotency sorgusu hatası: %w", err)
			}
		}

		// 4. Cüzdanı al ve lock et, yoksa sıfır bakiyeyle oluştur
		balance, totalEarned, err := s.lockWallet(ctx, q, input.UserID)
		if err != nil {
			return err
		}

		// 5. Completion kaydını yaz
		if err := s.insertCompletedRecord(ctx, q, input, surveyID); err != nil {
			return err
		}

		// 6. Bakiyeyi güncelle (2 basamak yuvarlama her toplama işleminde)
		newBalance := utils.AddRound2(balance, input.RewardAmount)
		newTotalEarned := utils.AddRound2(totalEarned, input.RewardAmount)

		_, err = q.Exec(ctx, `
			UPDATE wallets SET balance = $1, total_earned = $2, updated_at = NOW() WHERE user_id = $3
		`, newBalance, newTotalEarned, input.UserID)
		if err != nil {
			return fmt.Errorf("cüzdan güncellenemedi: %w", err)
		}

		// 7. Anket tamamlama sayacını artır
		_, err = q.Exec(ctx, `
			UPDATE surveys SET current_completions = current_completions + 1, updated_at = NOW() WHERE id = $1
		`, surveyID)
		if err != nil {
			return fmt.Errorf("anket sayacı güncellenemedi: %w", err)
		}

		outcome = &models.CompletionOutcome{
			Code:        models.OutcomeAccepted,
			NewBalance:  newBalance,
			TotalEarned: newTotalEarned,
			SurveyID:    surveyID,
			SurveyTitle: surveyTitle,
			Reward:      input.RewardAmount,
		}

		return nil // SUCCESS - transaction commit edilecek
	})

	if err != nil {
		// Unique index backstop: iki eşzamanlı teslimat uygulama seviyesindeki
		// kontrolü aynı anda geçerse insert'lerden biri 23505 ile düşer;
		// partner açısından idempotent replay ile aynı sonuçtur.
		// Sadece idempotency index'inin ihlali çevrilir; başka bir
		// constraint'ten gelen 23505 transient hatadır ve partner'ın retry
		// etmesi gerekir (aksi halde farklı trans_id'nin kredisi kaybolur)
		if isDuplicateCompletion(err) {
			log.Info().
				Str("user_id", input.UserID).
				Str("external_reference", input.ExternalReference).
				Msg("Eşzamanlı duplicate teslimat unique index ile yakalandı")

			balance, totalEarned := s.walletSnapshotOutsideTx(ctx, input.UserID)
			return &models.CompletionOutcome{
				Code:        models.OutcomeAlreadyProcessed,
				NewBalance:  balance,
				TotalEarned: totalEarned,
			}, nil
		}
		return nil, err
	}

	// Kredi sonrası bildirim (fire-and-forget, hatası krediyi geri almaz)
	if outcome.Code == models.OutcomeAccepted && s.notifier != nil {
		s.notifier.NotifyReward(input.UserID, outcome.SurveyTitle, input.RewardAmount)
	}

	return outcome, nil
}

// ProcessCancellation daha önce kabul edilmiş completion'ı geri alır
// Kayıt yoksa NothingToReverse döner (partner hiç kabul edilmemiş event'in
// acknowledge'ı yüzünden cezalandırılmaz); bulunan kayıt cancelled'a çevrilir
// ve cüzdan orijinal reward_earned kadar, 0'a clamp'lenerek debit edilir
func (s *CompletionService) ProcessCancellation(ctx context.Context, userID, externalReference string) (*models.CompletionOutcome, error) {
	var outcome *models.CompletionOutcome

	err := db.WithTransaction(ctx, s.database, func(tx *sql.Tx) error {
		q := db.NewTxQuerier(tx)

		// 1. Geri alınacak completed kaydı bul ve lock et
		var recordID, surveyID string
		var rewardEarned float64
		err := q.QueryRow(ctx, `
			SELECT id, survey_id, reward_earned FROM user_surveys
			WHERE user_id = $1 AND external_reference = $2 AND status = 'completed'
			LIMIT 1
			FOR UPDATE
		`, userID, externalReference).Scan(&recordID, &surveyID, &rewardEarned)

		if err == sql.ErrNoRows {
			// Hiç completion yok veya zaten cancelled: no-op, cüzdana dokunma
			outcome = &models.CompletionOutcome{Code: models.OutcomeNothingToReverse}
			return nil
		}
		if err != nil {
			return fmt.Errorf("cancellation sorgusu hatası: %w", err)
		}

		// 2. Kaydı cancelled'a geçir (terminal durum)
		_, err = q.Exec(ctx, `
			UPDATE user_surveys SET status = 'cancelled' WHERE id = $1
		`, recordID)
		if err != nil {
			return fmt.Errorf("kayıt cancelled yapılamadı: %w", err)
		}

		// 3. Cüzdanı lock et ve debit et
		balance, totalEarned, err := s.lockWallet(ctx, q, userID)
		if err != nil {
			return err
		}

		// Clamp politikası: kısmen çekilmiş bakiye reversal ile negatife
		// düşmez, 0'a sabitlenir
		newBalance := utils.SubClampZero(balance, rewardEarned)
		newTotalEarned := utils.SubClampZero(totalEarned, rewardEarned)

		_, err = q.Exec(ctx, `
			UPDATE wallets SET balance = $1, total_earned = $2, updated_at = NOW() WHERE user_id = $3
		`, newBalance, newTotalEarned, userID)
		if err != nil {
			return fmt.Errorf("cüzdan güncellenemedi: %w", err)
		}

		// 4. Anket sayacını geri al
		_, err = q.Exec(ctx, `
			UPDATE surveys SET current_completions = GREATEST(current_completions - 1, 0), updated_at = NOW() WHERE id = $1
		`, surveyID)
		if err != nil {
			return fmt.Errorf("anket sayacı güncellenemedi: %w", err)
		}

		outcome = &models.CompletionOutcome{
			Code:        models.OutcomeReversed,
			NewBalance:  newBalance,
			TotalEarned: newTotalEarned,
			SurveyID:    surveyID,
			Reward:      rewardEarned,
		}

		return nil // SUCCESS - transaction commit edilecek
	})

	if err != nil {
		return nil, err
	}

	return outcome, nil
}

// resolveSurvey in-app event'te anketi katalogdan bulur; partner event'inde
// offer'ı ilk görüşte oluşturur (insert-then-ignore-conflict yerine unique
// constraint korumalı lookup-or-create, eşzamanlı ilk görüşte duplicate
// satır oluşmaz)
func (s *CompletionService) resolveSurvey(ctx context.Context, q *db.TxQuerier, input *models.CompletionInput) (string, string, error) {
	if input.SurveyID != "" {
		var id, title string
		err := q.QueryRow(ctx, `
			SELECT id, title FROM surveys WHERE id = $1
		`, input.SurveyID).Scan(&id, &title)
		if err == sql.ErrNoRows {
			return "", "", ErrSurveyNotFound
		}
		if err != nil {
			return "", "", fmt.Errorf("anket sorgusu hatası: %w", err)
		}
		return id, title, nil
	}

	// Partner offer: ilk görüşte oluştur
	title := fmt.Sprintf("CPX Offer %s", input.OfferID)
	_, err := q.Exec(ctx, `
		INSERT INTO surveys (external_survey_id, title, reward_amount, provider, status)
		VALUES ($1, $2, $3, 'cpx', 'active')
		ON CONFLICT (external_survey_id) DO NOTHING
	`, input.OfferID, title, input.RewardAmount)
	if err != nil {
		return "", "", fmt.Errorf("partner anketi oluşturulamadı: %w", err)
	}

	var id, existingTitle string
	err = q.QueryRow(ctx, `
		SELECT id, title FROM surveys WHERE external_survey_id = $1
	`, input.OfferID).Scan(&id, &existingTitle)
	if err != nil {
		return "", "", fmt.Errorf("partner anketi sorgusu hatası: %w", err)
	}

	return id, existingTitle, nil
}

// lockWallet cüzdan satırını FOR UPDATE ile lock eder, yoksa sıfır bakiyeyle oluşturur
func (s *CompletionService) lockWallet(ctx context.Context, q *db.TxQuerier, userID string) (float64, float64, error) {
	var balance, totalEarned float64
	err := q.QueryRow(ctx, `
		SELECT balance, total_earned FROM wallets WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&balance, &totalEarned)

	if err == sql.ErrNoRows {
		// Cüzdan yoksa oluştur (lazy create). Aynı kullanıcının iki farklı
		// event'i aynı anda ilk krediyi denerse insert ON CONFLICT ile
		// sessizce düşer; sonraki select kazananın satırını lock'lar
		_, err = q.Exec(ctx, `
			INSERT INTO wallets (user_id, balance, total_earned, total_withdrawn)
			VALUES ($1, 0.00, 0.00, 0.00)
			ON CONFLICT (user_id) DO NOTHING
		`, userID)
		if err != nil {
			return 0, 0, fmt.Errorf("cüzdan oluşturulamadı: %w", err)
		}

		err = q.QueryRow(ctx, `
			SELECT balance, total_earned FROM wallets WHERE user_id = $1 FOR UPDATE
		`, userID).Scan(&balance, &totalEarned)
		if err != nil {
			return 0, 0, fmt.Errorf("cüzdan sorgusu hatası: %w", err)
		}
		return balance, totalEarned, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("cüzdan sorgusu hatası: %w", err)
	}

	return balance, totalEarned, nil
}

// insertCompletedRecord completion kaydını yazar
// In-app akışta mevcut 'started' satırı completed'a çevrilir, partner
// event'inde yeni satır eklenir
func (s *CompletionService) insertCompletedRecord(ctx context.Context, q *db.TxQuerier, input *models.CompletionInput, surveyID string) error {
	if input.ExternalReference == "" {
		// Önce started kaydını completed'a geçirmeyi dene
		var updatedID string
		err := q.QueryRow(ctx, `
			UPDATE user_surveys
			SET status = 'completed', reward_earned = $1, completed_at = NOW()
			WHERE user_id = $2 AND survey_id = $3 AND status = 'started'
			RETURNING id
		`, input.RewardAmount, input.UserID, surveyID).Scan(&updatedID)

		if err == nil {
			return nil
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("started kaydı güncellenemedi: %w", err)
		}
		// Started kaydı yoksa yeni completed satır ekle (manuel tamamlama)
	}

	var externalRef, offerID, clientIP interface{}
	if input.ExternalReference != "" {
		externalRef = input.ExternalReference
	}
	if input.OfferID != "" {
		offerID = input.OfferID
	}
	if input.ClientIP != "" {
		clientIP = input.ClientIP
	}

	_, err := q.Exec(ctx, `
		INSERT INTO user_surveys (user_id, survey_id, external_reference, offer_id, status, reward_earned, amount_usd, ip_address, started_at, completed_at)
		VALUES ($1, $2, $3, $4, 'completed', $5, $6, $7, NOW(), NOW())
	`, input.UserID, surveyID, externalRef, offerID, input.RewardAmount, input.AmountUSD, clientIP)
	if err != nil {
		return fmt.Errorf("completion kaydı oluşturulamadı: %w", err)
	}

	return nil
}

// readWalletSnapshot transaction içinde lock almadan bakiye okur
// (AlreadyProcessed yanıtındaki snapshot için)
func (s *CompletionService) readWalletSnapshot(ctx context.Context, q *db.TxQuerier, userID string) (float64, float64) {
	var balance, totalEarned float64
	err := q.QueryRow(ctx, `
		SELECT balance, total_earned FROM wallets WHERE user_id = $1
	`, userID).Scan(&balance, &totalEarned)
	if err != nil {
		return 0, 0
	}
	return balance, totalEarned
}

// walletSnapshotOutsideTx unique violation sonrası (transaction rollback
// olmuştur) bakiyeyi ayrı sorguyla okur
func (s *CompletionService) walletSnapshotOutsideTx(ctx context.Context, userID string) (float64, float64) {
	var balance, totalEarned float64
	err := s.database.QueryRowContext(ctx, `
		SELECT balance, total_earned FROM wallets WHERE user_id = $1
	`, userID).Scan(&balance, &totalEarned)
	if err != nil {
		return 0, 0
	}
	return balance, totalEarned
}

// user_surveys üzerindeki idempotency backstop index'i (migration 004)
const completedRefIndex = "idx_user_surveys_completed_ref"

// isDuplicateCompletion idempotency index'inin unique violation'ını tanır
// (23505 + constraint adı). Diğer 23505'ler (örn. wallets_pkey) duplicate
// teslimat anlamına gelmez ve çevrilmez
func isDuplicateCompletion(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == completedRefIndex
	}
	return false
}
