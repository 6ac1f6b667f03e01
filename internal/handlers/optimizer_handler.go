package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cardwise/internal/errors"
	"cardwise/internal/models"
	"cardwise/internal/services"
)

// OptimizerHandler handles card comparison and recommendation requests.
type OptimizerHandler struct {
	optimizerService services.OptimizerServicer
}

// NewOptimizerHandler creates a new OptimizerHandler.
func NewOptimizerHandler(optimizerService services.OptimizerServicer) *OptimizerHandler {
	return &OptimizerHandler{optimizerService: optimizerService}
}

// CompareCardsRequest represents the request payload for ranking candidate
// cards against a spend history.
type CompareCardsRequest struct {
	Transactions []TransactionInput   `json:"transactions" binding:"required,min=1,max=2000,dive"`
	Cards        []models.CardProfile `json:"cards" binding:"required,min=1,max=20"`
}

// CompareCards ranks the candidate cards against the transaction set and
// returns the comparisons best-first.
func (h *OptimizerHandler) CompareCards(c *gin.Context) {
	var req CompareCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	txs, err := toModels(req.Transactions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	comparisons, err := h.optimizerService.FindOptimalCard(txs, req.Cards)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comparisons": comparisons})
}

// OptimizeRequest represents the request payload for generating
// recommendations against the user's current card.
type OptimizeRequest struct {
	Transactions []TransactionInput   `json:"transactions" binding:"required,min=1,max=2000,dive"`
	CurrentCard  models.CardProfile   `json:"current_card" binding:"required"`
	Alternatives []models.CardProfile `json:"alternatives" binding:"omitempty,max=20"`
}

// Optimize produces card-switch, weak-category and milestone
// recommendations for the current card and spend pattern.
func (h *OptimizerHandler) Optimize(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	txs, err := toModels(req.Transactions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recommendations, err := h.optimizerService.GenerateRecommendations(txs, &req.CurrentCard, req.Alternatives)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recommendations})
}
