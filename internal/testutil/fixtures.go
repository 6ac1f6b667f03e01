package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"cardwise/internal/models"
	"cardwise/internal/uuid"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewUserID returns a fresh UUID usable as a user ID.
func NewUserID() string {
	return uuid.New()
}

// CreateTestStatement creates a completed statement row for a user.
func CreateTestStatement(t *testing.T, db *gorm.DB, userID string) *models.Statement {
	t.Helper()

	statement := &models.Statement{
		UserID:   userID,
		FileName: fmt.Sprintf("statement%d.csv", nextID()),
		Kind:     models.StatementKindCSV,
		Status:   models.StatementStatusCompleted,
	}
	if err := db.Create(statement).Error; err != nil {
		t.Fatalf("failed to create test statement: %v", err)
	}
	return statement
}

// CreateTestTransaction creates a persisted transaction attached to a
// statement.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, statementID string, date time.Time, description string, amount float64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		StatementID: statementID,
		UserID:      userID,
		Date:        date,
		Description: description,
		Amount:      amount,
		Category:    models.CategoryOthers,
	}
	tx.Hash = tx.Fingerprint()
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestMerchantMapping persists a merchant-to-category mapping.
func CreateTestMerchantMapping(t *testing.T, db *gorm.DB, merchant string, category models.Category) *models.MerchantMapping {
	t.Helper()

	mapping := &models.MerchantMapping{Merchant: merchant, Category: category}
	if err := db.Create(mapping).Error; err != nil {
		t.Fatalf("failed to create test merchant mapping: %v", err)
	}
	return mapping
}

// Tx builds an in-memory transaction without persisting it.
func Tx(date time.Time, description string, amount float64, category models.Category) models.Transaction {
	return models.Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Category:    category,
	}
}

// BasicCard builds a flat-rate card with no bonuses or caps.
func BasicCard(name string, defaultRate, annualFee float64) models.CardProfile {
	return models.CardProfile{
		ID:          uuid.New(),
		Name:        name,
		AnnualFee:   annualFee,
		DefaultRate: defaultRate,
	}
}

// DiningCard builds a card with an elevated food rate and a monthly food
// reward cap, the shape most reward tests exercise.
func DiningCard(foodRate, foodCap float64) models.CardProfile {
	card := BasicCard(fmt.Sprintf("Dining Card %d", nextID()), 1.0, 0)
	card.CategoryRates = map[string]float64{string(models.CategoryFood): foodRate}
	if foodCap > 0 {
		card.CategoryCaps = map[string]float64{string(models.CategoryFood): foodCap}
	}
	return card
}
