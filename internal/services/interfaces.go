package services

import (
	"context"

	"cardwise/internal/models"
	"cardwise/internal/pagination"
)

// ParseResult is the outcome of parsing one uploaded statement.
type ParseResult struct {
	Statement    *models.Statement       `json:"statement"`
	Transactions []models.Transaction    `json:"transactions"`
	Summary      models.StatementSummary `json:"summary"`
	SkippedRows  int                     `json:"skipped_rows"`
}

// StatementServicer defines the contract for statement parsing and lookup.
type StatementServicer interface {
	ParseStatement(ctx context.Context, userID, fileName string, data []byte) (*ParseResult, error)
	GetStatement(userID, statementID string) (*models.Statement, error)
	GetStatementTransactions(userID, statementID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

// CategorizerServicer defines the contract for transaction categorization.
// Categorize and CategorizeBatch are pure reads; Learn is the explicit
// mutating step so callers can opt out of pattern learning.
type CategorizerServicer interface {
	Categorize(ctx context.Context, tx *models.Transaction, userID string) models.CategoryResult
	CategorizeBatch(ctx context.Context, txs []models.Transaction, userID string) []models.CategoryResult
	Learn(userID string, tx *models.Transaction, result models.CategoryResult) error
}

// RewardOptions controls optional output of CalculateTotalRewards.
type RewardOptions struct {
	IncludeProjections bool
	IncludeResults     bool
}

// RewardServicer defines the contract for reward calculation.
type RewardServicer interface {
	CalculateTransactionReward(tx *models.Transaction, card *models.CardProfile, cycle *SpendCycle) models.RewardResult
	CalculateTotalRewards(txs []models.Transaction, card *models.CardProfile, opts RewardOptions) (*models.AggregateResult, error)
}

// OptimizerServicer defines the contract for card comparison and
// recommendation generation.
type OptimizerServicer interface {
	FindOptimalCard(txs []models.Transaction, cards []models.CardProfile) ([]models.CardComparison, error)
	GenerateRecommendations(txs []models.Transaction, current *models.CardProfile, alternatives []models.CardProfile) ([]models.Recommendation, error)
}
