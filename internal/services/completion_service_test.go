package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/onerilhan/survey-rewards-api/internal/interfaces"
	"github.com/onerilhan/survey-rewards-api/internal/models"
)

// MockNotificationService, NotificationServiceInterface için sahte (mock) bir yapıdır.
type MockNotificationService struct {
	mock.Mock
}

var _ interfaces.NotificationServiceInterface = (*MockNotificationService)(nil)

func (m *MockNotificationService) NotifyReward(userID, surveyTitle string, amount float64) {
	m.Called(userID, surveyTitle, amount)
}

const (
	testUserID  = "3f2b8c1a-9d4e-4f6a-8b2c-1d3e5f7a9b0c"
	testTransID = "cpx-tx-001"
	testOfferID = "offer-42"
)

// expectPartnerCompletion happy path'in transaction içi sorgularını sırasıyla kurar
func expectPartnerCompletion(dbmock sqlmock.Sqlmock, balance, totalEarned float64) {
	dbmock.ExpectBegin()

	// Kullanıcı kontrolü
	dbmock.ExpectQuery("SELECT EXISTS").
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	// Partner anketi lookup-or-create
	dbmock.ExpectExec("INSERT INTO surveys").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectQuery("SELECT id, title FROM surveys").
		WithArgs(testOfferID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("survey-uuid-1", "CPX Offer offer-42"))

	// Idempotency kontrolü: kayıt yok
	dbmock.ExpectQuery("SELECT status FROM user_surveys").
		WillReturnError(sql.ErrNoRows)

	// Cüzdan lock
	dbmock.ExpectQuery("SELECT balance, total_earned FROM wallets").
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"balance", "total_earned"}).AddRow(balance, totalEarned))

	// Completion kaydı + cüzdan + sayaç
	dbmock.ExpectExec("INSERT INTO user_surveys").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectExec("UPDATE wallets").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectExec("UPDATE surveys").
		WillReturnResult(sqlmock.NewResult(0, 1))

	dbmock.ExpectCommit()
}

// TestCompletionService_ProcessCompletion_Accepted, partner completion happy path'ini test eder.
func TestCompletionService_ProcessCompletion_Accepted(t *testing.T) {
	// Arrange
	database, dbmock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	mockNotifier := new(MockNotificationService)
	mockNotifier.On("NotifyReward", testUserID, "CPX Offer offer-42", 2.50).Return()

	service := NewCompletionService(database, mockNotifier)

	expectPartnerCompletion(dbmock, 10.00, 50.00)

	input := &models.CompletionInput{
		UserID:            testUserID,
		ExternalReference: testTransID,
		OfferID:           testOfferID,
		RewardAmount:      2.50,
		AmountUSD:         0.25,
		ClientIP:          "203.0.113.7",
	}

	// Act
	outcome, err := service.ProcessCompletion(context.Background(), input)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, outcome)
	assert.Equal(t, models.OutcomeAccepted, outcome.Code)
	assert.Equal(t, 12.50, outcome.NewBalance)
	assert.Equal(t, 52.50, outcome.TotalEarned)
	assert.NoError(t, dbmock.ExpectationsWereMet())
	mockNotifier.AssertExpectations(t)
}

// TestCompletionService_ProcessCompletion_Duplicate, aynı trans_id'nin ikinci teslimatını test eder.
// Cüzdana dokunulmadan AlreadyProcessed dönmeli, bildirim gitmemeli.
func TestCompletionService_ProcessCompletion_Duplicate(t *testing.T) {
	// Arrange
	database, dbmock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	mockNotifier := new(MockNotificationService)
	service := NewCompletionService(database, mockNotifier)

	dbmock.ExpectBegin()
	dbmock.ExpectQuery("SELECT EXISTS").
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	dbmock.ExpectExec("INSERT INTO surveys").
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbmock.ExpectQuery("SELECT id, title FROM surveys").
		WithArgs(testOfferID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("survey-uuid-1", "CPX Offer offer-42"))

	// Idempotency kontrolü: kayıt zaten completed
	dbmock.ExpectQuery("SELECT status FROM user_surveys").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("completed"))

	// Yanıt için snapshot okuması (lock yok, mutasyon yok)
	dbmock.ExpectQuery("SELECT balance, total_earned FROM wallets").
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"balance", "total_earned"}).AddRow(12.50, 52.50))

	dbmock.ExpectCommit()

	input := &models.CompletionInput{
		UserID:            testUserID,
		ExternalReference: testTransID,
		OfferID:           testOfferID,
		RewardAmount:      2.50,
	}

	// Act
	outcome, err := service.ProcessCompletion(context.Background(), input)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeAlreadyProcessed, outcome.Code)
	assert.Equal(t, 12.50, outcome.NewBalance)
	assert.NoError(t, dbmock.ExpectationsWereMet())
	mockNotifier.AssertNotCalled(t, "NotifyReward", mock.Anything, mock.Anything, mock.Anything)
}

// TestCompletionService_ProcessCompletion_CancelledReplay, terminal cancel sonrası
// gelen tekrar completion'ın kredi uygulamadığını test eder.
func TestCompletionService_ProcessCompletion_CancelledReplay(t *testing.T) {
	// Arrange
	database, dbmock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service := NewCompletionService(database, nil)

	dbmock.ExpectBegin()
	dbmock.ExpectQuery("SELECT EXISTS").
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	dbmock.ExpectExec("INSERT INTO surveys").
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbmock.ExpectQuery("SELECT id, title FROM surveys").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("survey-uuid-1", "CPX Offer offer-42"))

	// Kayıt cancelled durumda: terminal, yeniden kredi yok
	dbmock.ExpectQuery("SELECT status FROM user_surveys").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("cancelled"))

	dbmock.ExpectQuery("SELECT balance, total_earned FROM wallets").
		WillReturnRows(sqlmock.NewRows([]string{"balance", "total_earned"}).AddRow(0.00, 0.00))

	dbmock.ExpectCommit()

	input := &models.CompletionInput{
		UserID:            testUserID,
		ExternalReference: testTransID,
		OfferID:           testOfferID,
		RewardAmount:      2.50,
	}

	// Act
	outcome, err := service.ProcessCompletion(context.Background(), input)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeAlreadyProcessed, outcome.Code)
	assert.NoError(t, dbmock.ExpectationsWereMet())
}

// TestCompletionService_ProcessCompletion_UserNotFound, olmayan kullanıcı senaryosunu test eder.
func TestCompletionService_ProcessCompletion_UserNotFound(t *testing.T) {
	// Arrange
	database, dbmock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service := NewCompletionService(database, nil)

	dbmock.ExpectBegin()
	dbmock.ExpectQuery("SELECT EXISTS").
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	dbmock.ExpectRollback()

	input := &models.CompletionInput{
		UserID:            testUserID,
		ExternalReference: testTransID,
		OfferID:           testOfferID,
		RewardAmount:      2.50,
	}

	// Act
	outcome, err := service.ProcessCompletion(context.Background(), input)

	// Assert
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, dbmock.ExpectationsWereMet())
}

// TestCompletionService_ProcessCompletion_InvalidAmount, geçersiz tutarın
// storage'a hiç gitmeden reddedildiğini test eder.
func TestCompletionService_ProcessCompletion_InvalidAmount(t *testing.T) {
	// Arrange
	database, dbmock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service := NewCompletionService(database, nil)

	input := &models.CompletionInput{
		UserID:            testUserID,
		ExternalReference: testTransID,
		OfferID:           testOfferID,
		RewardAmount:      -1.00,
	}

	// Act
	outcome, err := service.ProcessCompletion(context.Background(), input)

	// Assert
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.NoError(t, dbmock.ExpectationsWereMet())
}

// TestCompletionService_ProcessCompletion_ConcurrentDuplicate, iki eşzamanlı
// teslimatın unique index backstop'una düşen kolunu test eder.
func TestCompletionService_ProcessCompletion_ConcurrentDuplicate(t *testing.T) {
	// Arrange
	database, dbmock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	mockNotifier := new(MockNotificationService)
	service := NewCompletionService(database, mockNotifier)

	dbmock.ExpectBegin()
	dbmock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	dbmock.ExpectExec("INSERT INTO surveys").
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbmock.ExpectQuery("SELECT id, title FROM surveys").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("survey-uuid-1", "CPX Offer offer-42"))
	dbmock.ExpectQuery("SELECT status FROM user_surveys").
		WillReturnError(sql.ErrNoRows)
	dbmock.ExpectQuery("SELECT balance, total_earned FROM wallets").
		WillReturnRows(sqlmock.NewRows([]string{"balance", "total_earned"}).AddRow(10.00, 50.00))

	// Diğer teslimat aynı anda commit etmiş: insert idempotency index'inden
	// 23505 ile düşer
	dbmock.ExpectExec("INSERT INTO user_surveys").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_user_surveys_completed_ref"})
	dbmock.ExpectRollback()

	// Rollback sonrası yanıt için snapshot okuması
	dbmock.ExpectQuery("SELECT balance, total_earned FROM wallets").
		WillReturnRows(sqlmock.NewRows([]string{"balance", "total_earned"}).AddRow(12.50, 52.50))

	input := &models.CompletionInput{
		UserID:            testUserID,
		ExternalReference: testTransID,
		OfferID:           testOfferID,
		RewardAmount:      2.50,
	}

	// Act
	outcome, err := service.ProcessCompletion(context.Background(), input)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeAlreadyProcessed, outcome.Code)
	assert.Equal(t, 12.50, outcome.NewBalance)
	assert.NoError(t, dbmock.ExpectationsWereMet())
	mockNotifier.AssertNotCalled(t, "NotifyReward", mock.Anything, mock.Anything, mock.Anything)
}

// TestCompletionService_ProcessCompletion_WalletPkeyViolation, idempotency
// index'i DIŞINDAKİ bir 23505'in AlreadyProcessed'a çevrilmediğini test eder.
// Farklı trans_id'li iki ilk kredi cüzdan insert'inde yarışırsa kaybeden
// taraf transient hata almalı ki partner retry etsin ve kredi kaybolmasın.
func TestCompletionService_ProcessCompletion_WalletPkeyViolation(t *testing.T) {
	// Arrange
	database, dbmock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	mockNotifier := new(MockNotificationService)
	service := NewCompletionService(database, mockNotifier)

	dbmock.ExpectBegin()
	dbmock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	dbmock.ExpectExec("INSERT INTO surveys").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectQuery("SELECT id, title FROM surveys").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("survey-uuid-1", "CPX Offer offer-42"))
	dbmock.ExpectQuery("SELECT status FROM user_surveys").
		WillReturnError(sql.ErrNoRows)
	dbmock.ExpectQuery("SELECT balance, total_earned FROM wallets").
		WillReturnError(sql.ErrNoRows)

	// Cüzdan lazy create başka bir constraint'ten 23505 ile düşüyor
	dbmock.ExpectExec("INSERT INTO wallets").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "wallets_pkey"})
	dbmock.ExpectRollback()

	input := &models.CompletionInput{
		UserID:            testUserID,
		ExternalReference: testTransID,
		OfferID:           testOfferID,
		RewardAmount:      2.50,
	}

	// Act
	outcome, err := service.ProcessCompletion(context.Background(), input)

	// Assert
	assert.Nil(t, outcome)
	assert.Error(t, err)
	var pqErr *pq.Error
	assert.ErrorAs(t, err, &pqErr)
	assert.Equal(t, "wallets_pkey", pqErr.Constraint)
	assert.NoError(t, dbmock.ExpectationsWereMet())
	mockNotifier.AssertNotCalled(t, "NotifyReward", mock.Anything, mock.Anything, mock.Anything)
}

// TestCompletionService_ProcessCompletion_ConcurrentWalletCreate, iki farklı
// event'in aynı anda ilk krediyi denediği senaryoda kaybedenin ON CONFLICT
// üzerinden devam edip kendi kredisini uyguladığını test eder.
func TestCompletionService_ProcessCompletion_ConcurrentWalletCreate(t *testing.T) {
	// Arrange
	database, dbmock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	mockNotifier := new(MockNotificationService)
	mockNotifier.On("NotifyReward", testUserID, "CPX Offer offer-42", 2.50).Return()
	service := NewCompletionService(database, mockNotifier)

	dbmock.ExpectBegin()
	dbmock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	dbmock.ExpectExec("INSERT INTO surveys").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectQuery("SELECT id, title FROM surveys").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("survey-uuid-1", "CPX Offer offer-42"))
	dbmock.ExpectQuery("SELECT status FROM user_surveys").
		WillReturnError(sql.ErrNoRows)

	// İlk select boş, insert diğer event'in satırına çarpıp sessizce düşüyor,
	// ikinci select kazananın satırını lock'luyor
	dbmock.ExpectQuery("SELECT balance, total_earned FROM wallets").
		WillReturnError(sql.ErrNoRows)
	dbmock.ExpectExec("INSERT INTO wallets").
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbmock.ExpectQuery("SELECT balance, total_earned FROM wallets").
		WillReturnRows(sqlmock.NewRows([]string{"balance", "total_earned"}).AddRow(5.00, 5.00))

	dbmock.ExpectExec("INSERT INTO user_surveys").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectExec("UPDATE wallets").
		WithArgs(7.50, 7.50, testUserID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectExec("UPDATE surveys").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectCommit()

	input := &models.CompletionInput{
		UserID:            testUserID,
		ExternalReference: testTransID,
		OfferID:           testOfferID,
		RewardAmount:      2.50,
	}

	// Act
	outcome, err := service.ProcessCompletion(context.Background(), input)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeAccepted, outcome.Code)
	assert.Equal(t, 7.50, outcome.NewBalance)
	assert.NoError(t, dbmock.ExpectationsWereMet())
	mockNotifier.AssertExpectations(t)
}

// TestCompletionService_ProcessCompletion_StorageError, transient storage
// hatasının çağırana aynen döndüğünü test eder.
func TestCompletionService_ProcessCompletion_StorageError(t *testing.T) {
	// Arrange
	database, dbmock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service := NewCompletionService(database, nil)

	storageErr := errors.New("connection reset by peer")
	dbmock.ExpectBegin()
	dbmock.ExpectQuery("SELECT EXISTS").
		WillReturnError(storageErr)
	dbmock.ExpectRollback()

	input := &models.CompletionInput{
		UserID:            testUserID,
		ExternalReference: testTransID,
		OfferID:           testOfferID,
		RewardAmount:      2.50,
	}

	// Act
	outcome, err := service.ProcessCompletion(context.Background(), input)

	// Assert
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, storageErr)
	assert.NoError(t, dbmock.ExpectationsWereMet())
}

// TestCompletionService_ProcessCancellation_Reversed, chargeback happy path'ini test eder.
func TestCompletionService_ProcessCancellation_Reversed(t *testing.T) {
	// Arrange
	database, dbmock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service := NewCompletionService(database, nil)

	dbmock.ExpectBegin()
	dbmock.ExpectQuery("SELECT id, survey_id, reward_earned FROM user_surveys").
		WithArgs(testUserID, testTransID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "survey_id", "reward_earned"}).
			AddRow("record-uuid-1", "survey-uuid-1", 2.50))
	dbmock.ExpectExec("UPDATE user_surveys SET status = 'cancelled'").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectQuery("SELECT balance, total_earned FROM wallets").
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"balance", "total_earned"}).AddRow(12.50, 52.50))
	dbmock.ExpectExec("UPDATE wallets").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectExec("UPDATE surveys").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectCommit()

	// Act
	outcome, err := service.ProcessCancellation(context.Background(), testUserID, testTransID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeReversed, outcome.Code)
	assert.Equal(t, 10.00, outcome.NewBalance)
	assert.Equal(t, 50.00, outcome.TotalEarned)
	assert.Equal(t, 2.50, outcome.Reward)
	assert.NoError(t, dbmock.ExpectationsWereMet())
}

// TestCompletionService_ProcessCancellation_ClampToZero, kısmen çekilmiş
// bakiyenin reversal'da negatife düşmediğini test eder.
func TestCompletionService_ProcessCancellation_ClampToZero(t *testing.T) {
	// Arrange
	database, dbmock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service := NewCompletionService(database, nil)

	dbmock.ExpectBegin()
	dbmock.ExpectQuery("SELECT id, survey_id, reward_earned FROM user_surveys").
		WillReturnRows(sqlmock.NewRows([]string{"id", "survey_id", "reward_earned"}).
			AddRow("record-uuid-1", "survey-uuid-1", 5.00))
	dbmock.ExpectExec("UPDATE user_surveys SET status = 'cancelled'").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Bakiye ödülden küçük (arada para çekilmiş)
	dbmock.ExpectQuery("SELECT balance, total_earned FROM wallets").
		WillReturnRows(sqlmock.NewRows([]string{"balance", "total_earned"}).AddRow(1.75, 3.00))
	dbmock.ExpectExec("UPDATE wallets").
		WithArgs(0.00, 0.00, testUserID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectExec("UPDATE surveys").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectCommit()

	// Act
	outcome, err := service.ProcessCancellation(context.Background(), testUserID, testTransID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeReversed, outcome.Code)
	assert.Equal(t, 0.00, outcome.NewBalance)
	assert.Equal(t, 0.00, outcome.TotalEarned)
	assert.NoError(t, dbmock.ExpectationsWereMet())
}

// TestCompletionService_ProcessCancellation_NothingToReverse, hiç kabul
// edilmemiş transaction için cancellation'ın no-op olduğunu test eder.
func TestCompletionService_ProcessCancellation_NothingToReverse(t *testing.T) {
	// Arrange
	database, dbmock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service := NewCompletionService(database, nil)

	dbmock.ExpectBegin()
	dbmock.ExpectQuery("SELECT id, survey_id, reward_earned FROM user_surveys").
		WillReturnError(sql.ErrNoRows)
	dbmock.ExpectCommit()

	// Act
	outcome, err := service.ProcessCancellation(context.Background(), testUserID, testTransID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeNothingToReverse, outcome.Code)
	assert.Equal(t, 0.00, outcome.NewBalance)
	assert.NoError(t, dbmock.ExpectationsWereMet())
}
