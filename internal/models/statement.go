package models

import "time"

// StatementKind is the file format of an uploaded statement.
type StatementKind string

const (
	StatementKindPDF  StatementKind = "pdf"
	StatementKindCSV  StatementKind = "csv"
	StatementKindXLSX StatementKind = "xlsx"
)

// StatementStatus tracks the processing lifecycle of an uploaded statement.
type StatementStatus string

const (
	StatementStatusProcessing StatementStatus = "processing"
	StatementStatusCompleted  StatementStatus = "completed"
	StatementStatusError      StatementStatus = "error"
)

// Statement is the processing-status record for one uploaded file. It is
// queryable independently of the synchronous parse call so large-file
// workflows can poll for completion.
type Statement struct {
	Base
	UserID           string          `gorm:"type:uuid;index;not null" json:"user_id"`
	FileName         string          `gorm:"not null" json:"file_name"`
	Kind             StatementKind   `gorm:"not null" json:"kind"`
	Status           StatementStatus `gorm:"not null;default:processing" json:"status"`
	Error            string          `json:"error,omitempty"`
	TransactionCount int             `json:"transaction_count"`
	SkippedRows      int             `json:"skipped_rows"`
	TotalAmount      float64         `json:"total_amount"`
	StartDate        *time.Time      `json:"start_date,omitempty"`
	EndDate          *time.Time      `json:"end_date,omitempty"`
	ProcessingMs     int64           `json:"processing_ms"`

	Transactions []Transaction `gorm:"foreignKey:StatementID" json:"transactions,omitempty"`
}

// MerchantTotal is one entry of a statement's top-merchants ranking.
type MerchantTotal struct {
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Count    int     `json:"count"`
}

// StatementSummary aggregates a parsed transaction set.
type StatementSummary struct {
	TransactionCount int                `json:"transaction_count"`
	TotalAmount      float64            `json:"total_amount"`
	StartDate        *time.Time         `json:"start_date,omitempty"`
	EndDate          *time.Time         `json:"end_date,omitempty"`
	ByCategory       map[string]float64 `json:"by_category,omitempty"`
	TopMerchants     []MerchantTotal    `json:"top_merchants"`
}
