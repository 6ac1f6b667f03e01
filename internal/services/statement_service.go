package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "cardwise/internal/errors"
	"cardwise/internal/logger"
	"cardwise/internal/models"
	"cardwise/internal/pagination"
)

// statementService parses uploaded statements and tracks their processing
// status.
type statementService struct {
	db *gorm.DB
}

// NewStatementService creates a new StatementServicer.
func NewStatementService(db *gorm.DB) StatementServicer {
	return &statementService{db: db}
}

// detectKind maps a file extension to a statement kind.
func detectKind(fileName string) (models.StatementKind, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return models.StatementKindPDF, nil
	case ".csv":
		return models.StatementKindCSV, nil
	case ".xlsx":
		return models.StatementKindXLSX, nil
	default:
		return "", apperrors.WithMessage(apperrors.ErrUnsupportedFileType,
			fmt.Sprintf("Unsupported statement file type %q (want .pdf, .csv or .xlsx)", filepath.Ext(fileName)))
	}
}

// ParseStatement converts an uploaded file into an ordered, de-duplicated
// transaction set and records the processing status for the (user, file)
// pair. Fatal input conditions fail the whole request; unparsable rows are
// skipped and counted.
func (s *statementService) ParseStatement(ctx context.Context, userID, fileName string, data []byte) (*ParseResult, error) {
	kind, err := detectKind(fileName)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "user_id is required")
	}

	start := time.Now()
	statement := &models.Statement{
		UserID:   userID,
		FileName: fileName,
		Kind:     kind,
		Status:   models.StatementStatusProcessing,
	}
	if err := s.db.WithContext(ctx).Create(statement).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rows, skipped, extractErr := extract(kind, data)
	if extractErr == nil && len(rows) == 0 {
		extractErr = apperrors.ErrEmptyStatement
	}
	if extractErr != nil {
		s.markFailed(statement, extractErr)
		return nil, extractErr
	}

	transactions := s.normalize(statement, rows)

	if err := s.db.WithContext(ctx).CreateInBatches(transactions, 200).Error; err != nil {
		wrapped := apperrors.Wrap(apperrors.ErrInternalServer, err)
		s.markFailed(statement, wrapped)
		return nil, wrapped
	}

	summary := BuildSummary(transactions)

	statement.Status = models.StatementStatusCompleted
	statement.TransactionCount = len(transactions)
	statement.SkippedRows = skipped
	statement.TotalAmount = summary.TotalAmount
	statement.StartDate = summary.StartDate
	statement.EndDate = summary.EndDate
	statement.ProcessingMs = time.Since(start).Milliseconds()
	if err := s.db.Save(statement).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("statement parsed",
		"statement_id", statement.ID,
		"user_id", userID,
		"kind", kind,
		"transactions", len(transactions),
		"skipped_rows", skipped,
		"processing_ms", statement.ProcessingMs,
	)

	return &ParseResult{
		Statement:    statement,
		Transactions: transactions,
		Summary:      summary,
		SkippedRows:  skipped,
	}, nil
}

func extract(kind models.StatementKind, data []byte) ([]rawRow, int, error) {
	switch kind {
	case models.StatementKindPDF:
		return extractPDF(data)
	case models.StatementKindCSV:
		return extractCSV(data)
	case models.StatementKindXLSX:
		return extractXLSX(data)
	default:
		return nil, 0, apperrors.ErrUnsupportedFileType
	}
}

// normalize sorts rows by date, derives merchants, assigns stable hashes,
// drops duplicates, and flags recurring spend (same description and amount
// on a different date within the batch).
func (s *statementService) normalize(statement *models.Statement, rows []rawRow) []models.Transaction {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	type seenKey struct {
		desc   string
		amount float64
	}
	dates := make(map[seenKey]map[string]bool, len(rows))
	for _, row := range rows {
		key := seenKey{desc: row.description, amount: row.amount}
		if dates[key] == nil {
			dates[key] = make(map[string]bool)
		}
		dates[key][row.date.Format("2006-01-02")] = true
	}

	seenHashes := make(map[string]bool, len(rows))
	transactions := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		tx := models.Transaction{
			StatementID: statement.ID,
			UserID:      statement.UserID,
			Date:        row.date,
			Description: row.description,
			Amount:      row.amount,
			Merchant:    DeriveMerchant(row.description),
			Category:    models.CategoryOthers,
		}
		tx.Hash = tx.Fingerprint()
		if seenHashes[tx.Hash] {
			continue
		}
		seenHashes[tx.Hash] = true

		key := seenKey{desc: row.description, amount: row.amount}
		tx.IsRecurring = len(dates[key]) > 1

		transactions = append(transactions, tx)
	}

	return transactions
}

// BuildSummary aggregates a transaction set: count, total, date range,
// per-category subtotals (once categorization has run) and the top five
// merchants by spend.
func BuildSummary(transactions []models.Transaction) models.StatementSummary {
	summary := models.StatementSummary{
		TransactionCount: len(transactions),
		TopMerchants:     []models.MerchantTotal{},
	}
	if len(transactions) == 0 {
		return summary
	}

	byCategory := make(map[string]float64)
	type merchantAgg struct {
		amount float64
		count  int
	}
	merchants := make(map[string]*merchantAgg)

	for i := range transactions {
		tx := &transactions[i]
		summary.TotalAmount += tx.Amount
		byCategory[string(tx.Category)] += tx.Amount

		if summary.StartDate == nil || tx.Date.Before(*summary.StartDate) {
			d := tx.Date
			summary.StartDate = &d
		}
		if summary.EndDate == nil || tx.Date.After(*summary.EndDate) {
			d := tx.Date
			summary.EndDate = &d
		}

		if tx.Merchant != "" {
			if merchants[tx.Merchant] == nil {
				merchants[tx.Merchant] = &merchantAgg{}
			}
			merchants[tx.Merchant].amount += tx.Amount
			merchants[tx.Merchant].count++
		}
	}
	summary.ByCategory = byCategory

	top := make([]models.MerchantTotal, 0, len(merchants))
	for name, agg := range merchants {
		top = append(top, models.MerchantTotal{Merchant: name, Amount: agg.amount, Count: agg.count})
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Amount != top[j].Amount {
			return top[i].Amount > top[j].Amount
		}
		return top[i].Merchant < top[j].Merchant
	})
	if len(top) > 5 {
		top = top[:5]
	}
	summary.TopMerchants = top

	return summary
}

// markFailed records a terminal error state on the statement. The original
// error is returned to the caller; failures to persist the state are only
// logged.
func (s *statementService) markFailed(statement *models.Statement, cause error) {
	statement.Status = models.StatementStatusError
	statement.Error = cause.Error()
	if err := s.db.Save(statement).Error; err != nil {
		logger.Get().Errorw("failed to record statement error state",
			"statement_id", statement.ID, "error", err.Error())
	}
}

// GetStatement retrieves the processing-status record for a statement.
func (s *statementService) GetStatement(userID, statementID string) (*models.Statement, error) {
	var statement models.Statement
	err := s.db.Where("id = ? AND user_id = ?", statementID, userID).First(&statement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStatementNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &statement, nil
}

// GetStatementTransactions retrieves a paginated list of a statement's
// transactions, ordered by date ascending.
func (s *statementService) GetStatementTransactions(userID, statementID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if _, err := s.GetStatement(userID, statementID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("statement_id = ? AND user_id = ?", statementID, userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date ASC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}
