package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// TestSurveyRepository_GetByID_NullExternalID, internal anketlerin (partner
// id'si olmayan, external_survey_id NULL) sorunsuz okunduğunu test eder.
func TestSurveyRepository_GetByID_NullExternalID(t *testing.T) {
	// Arrange
	database, dbmock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	repo := NewSurveyRepository(database)

	columns := []string{"id", "external_survey_id", "title", "description", "reward_amount", "provider", "status", "current_completions", "created_at"}
	dbmock.ExpectQuery("SELECT id, external_survey_id, title").
		WithArgs("survey-uuid-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("survey-uuid-1", nil, "Tüketici Alışkanlıkları Anketi", "", 5.00, "internal", "active", 3, time.Now()))

	// Act
	survey, err := repo.GetByID(context.Background(), "survey-uuid-1")

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, survey)
	assert.Nil(t, survey.ExternalSurveyID)
	assert.Equal(t, "internal", survey.Provider)
	assert.NoError(t, dbmock.ExpectationsWereMet())
}

// TestSurveyRepository_ListActive_MixedProviders, NULL ve dolu
// external_survey_id'li satırların aynı listede okunabildiğini test eder.
func TestSurveyRepository_ListActive_MixedProviders(t *testing.T) {
	// Arrange
	database, dbmock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	repo := NewSurveyRepository(database)

	columns := []string{"id", "external_survey_id", "title", "description", "reward_amount", "provider", "status", "current_completions", "created_at"}
	dbmock.ExpectQuery("SELECT id, external_survey_id, title").
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("survey-uuid-1", nil, "Internal Anket", "", 5.00, "internal", "active", 0, time.Now()).
			AddRow("survey-uuid-2", "offer-42", "CPX Offer offer-42", "", 2.50, "cpx", "active", 7, time.Now()))

	// Act
	surveys, err := repo.ListActive(context.Background(), 20, 0)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, surveys, 2)
	assert.Nil(t, surveys[0].ExternalSurveyID)
	assert.NotNil(t, surveys[1].ExternalSurveyID)
	assert.Equal(t, "offer-42", *surveys[1].ExternalSurveyID)
	assert.NoError(t, dbmock.ExpectationsWereMet())
}
