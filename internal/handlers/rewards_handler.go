package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cardwise/internal/errors"
	"cardwise/internal/models"
	"cardwise/internal/services"
)

// RewardsHandler handles reward calculation requests.
type RewardsHandler struct {
	rewardService services.RewardServicer
}

// NewRewardsHandler creates a new RewardsHandler.
func NewRewardsHandler(rewardService services.RewardServicer) *RewardsHandler {
	return &RewardsHandler{rewardService: rewardService}
}

// CalculateRewardsRequest represents the request payload for reward
// calculation against a single card.
type CalculateRewardsRequest struct {
	Transactions       []TransactionInput `json:"transactions" binding:"required,min=1,max=2000,dive"`
	Card               models.CardProfile `json:"card" binding:"required"`
	IncludeProjections bool               `json:"include_projections"`
	IncludeResults     bool               `json:"include_results"`
}

// CalculateRewards scores the supplied transactions against one card
// profile and returns the aggregate with category and month breakdowns.
func (h *RewardsHandler) CalculateRewards(c *gin.Context) {
	var req CalculateRewardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	txs, err := toModels(req.Transactions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	aggregate, err := h.rewardService.CalculateTotalRewards(txs, &req.Card, services.RewardOptions{
		IncludeProjections: req.IncludeProjections,
		IncludeResults:     req.IncludeResults,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rewards": aggregate})
}
