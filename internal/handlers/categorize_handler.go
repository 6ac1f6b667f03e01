package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "cardwise/internal/errors"
	"cardwise/internal/models"
	"cardwise/internal/services"
)

// CategorizeHandler handles ad-hoc categorization requests.
type CategorizeHandler struct {
	categorizerService services.CategorizerServicer
}

// NewCategorizeHandler creates a new CategorizeHandler.
func NewCategorizeHandler(categorizerService services.CategorizerServicer) *CategorizeHandler {
	return &CategorizeHandler{categorizerService: categorizerService}
}

// TransactionInput is a caller-supplied transaction. Dates accept RFC 3339
// or plain YYYY-MM-DD.
type TransactionInput struct {
	Date        string  `json:"date" binding:"required"`
	Description string  `json:"description" binding:"required,max=500"`
	Amount      float64 `json:"amount" binding:"gte=0"`
	Merchant    string  `json:"merchant" binding:"max=200"`
	Category    string  `json:"category" binding:"omitempty,txn_category"`
}

// toModel converts the input into a Transaction, deriving the merchant from
// the description when the caller did not supply one.
func (in *TransactionInput) toModel() (*models.Transaction, error) {
	date, err := time.Parse(time.RFC3339, in.Date)
	if err != nil {
		date, err = time.Parse("2006-01-02", in.Date)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidTransaction, "invalid date "+in.Date)
		}
	}

	tx := &models.Transaction{
		Date:        date,
		Description: in.Description,
		Amount:      in.Amount,
		Merchant:    in.Merchant,
		Category:    models.CategoryOthers,
	}
	if tx.Merchant == "" {
		tx.Merchant = services.DeriveMerchant(in.Description)
	}
	if in.Category != "" {
		tx.Category = models.Category(in.Category)
	}
	return tx, nil
}

func toModels(inputs []TransactionInput) ([]models.Transaction, error) {
	txs := make([]models.Transaction, 0, len(inputs))
	for i := range inputs {
		tx, err := inputs[i].toModel()
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, nil
}

// CategorizeRequest represents the request payload for batch categorization.
// Learn opts in to persisting user patterns from high-confidence results and
// requires a user_id.
type CategorizeRequest struct {
	Transactions []TransactionInput `json:"transactions" binding:"required,min=1,max=500,dive"`
	UserID       string             `json:"user_id" binding:"omitempty,uuid"`
	Learn        bool               `json:"learn"`
}

// Categorize assigns a category, confidence and method to each transaction,
// preserving input order.
func (h *CategorizeHandler) Categorize(c *gin.Context) {
	var req CategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.Learn && req.UserID == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "learn requires a user_id"))
		return
	}

	txs, err := toModels(req.Transactions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	results := h.categorizerService.CategorizeBatch(c.Request.Context(), txs, req.UserID)

	if req.Learn {
		for i := range results {
			if err := h.categorizerService.Learn(req.UserID, &txs[i], results[i]); err != nil {
				respondWithError(c, err)
				return
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
