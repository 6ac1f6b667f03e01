package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Transaction is one line item extracted from a statement. Amount is always
// non-negative: statements are assumed to list card spend, and the sign of
// debit/credit is normalized away during parsing.
type Transaction struct {
	Base
	StatementID string    `gorm:"type:uuid;index" json:"statement_id,omitempty"`
	UserID      string    `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Date        time.Time `gorm:"not null" json:"date"`
	Description string    `gorm:"not null" json:"description"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Merchant    string    `json:"merchant"`
	Category    Category  `gorm:"default:others" json:"category"`
	Confidence  float64   `json:"confidence"`
	IsRecurring bool      `json:"is_recurring"`
	Hash        string    `gorm:"index" json:"hash"`
}

// Fingerprint returns the stable hash of date+description+amount used for
// de-duplication and idempotent re-processing.
func (t *Transaction) Fingerprint() string {
	raw := fmt.Sprintf("%s|%s|%.2f", t.Date.Format("2006-01-02"), t.Description, t.Amount)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:16]
}

// Month returns the transaction's calendar month key, e.g. "2025-08".
func (t *Transaction) Month() string {
	return t.Date.Format("2006-01")
}
