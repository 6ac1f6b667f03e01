package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"cardwise/internal/models"
	"cardwise/internal/services"
)

type mockRewardService struct {
	calculateTotalFn func(txs []models.Transaction, card *models.CardProfile, opts services.RewardOptions) (*models.AggregateResult, error)
}

func (m *mockRewardService) CalculateTransactionReward(tx *models.Transaction, card *models.CardProfile, cycle *services.SpendCycle) models.RewardResult {
	return models.RewardResult{}
}

func (m *mockRewardService) CalculateTotalRewards(txs []models.Transaction, card *models.CardProfile, opts services.RewardOptions) (*models.AggregateResult, error) {
	if m.calculateTotalFn != nil {
		return m.calculateTotalFn(txs, card, opts)
	}
	return &models.AggregateResult{}, nil
}

var _ services.RewardServicer = (*mockRewardService)(nil)

func setupRewardsRouter(handler *RewardsHandler) *gin.Engine {
	r := gin.New()
	r.POST("/rewards/calculate", handler.CalculateRewards)
	return r
}

func TestRewardsHandler_CalculateRewards(t *testing.T) {
	t.Run("returns aggregate", func(t *testing.T) {
		svc := &mockRewardService{
			calculateTotalFn: func(txs []models.Transaction, card *models.CardProfile, opts services.RewardOptions) (*models.AggregateResult, error) {
				if len(txs) != 1 {
					t.Errorf("expected 1 transaction, got %d", len(txs))
				}
				if card.Name != "Dining Card" {
					t.Errorf("expected card name to bind, got %q", card.Name)
				}
				if !opts.IncludeProjections {
					t.Error("expected projections flag to bind")
				}
				return &models.AggregateResult{TotalSpend: 540, TotalReward: 27}, nil
			},
		}
		r := setupRewardsRouter(NewRewardsHandler(svc))

		rec := doRequest(r, "POST", "/rewards/calculate",
			`{"transactions":[{"date":"2025-08-10","description":"Zomato Order","amount":540}],`+
				`"card":{"name":"Dining Card","category_rates":{"food":5}},"include_projections":true}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Rewards models.AggregateResult `json:"rewards"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Rewards.TotalReward != 27 {
			t.Errorf("expected total reward 27, got %.2f", resp.Rewards.TotalReward)
		}
	})

	t.Run("rejects unknown benefit type", func(t *testing.T) {
		r := setupRewardsRouter(NewRewardsHandler(&mockRewardService{}))

		rec := doRequest(r, "POST", "/rewards/calculate",
			`{"transactions":[{"date":"2025-08-10","description":"Zomato Order","amount":540}],`+
				`"card":{"name":"Dining Card","offers":[{"rate":3,"type":"airmiles"}]}}`)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for unknown benefit type, got %d", rec.Code)
		}
	})

	t.Run("rejects missing card", func(t *testing.T) {
		r := setupRewardsRouter(NewRewardsHandler(&mockRewardService{}))

		rec := doRequest(r, "POST", "/rewards/calculate",
			`{"transactions":[{"date":"2025-08-10","description":"Zomato Order","amount":540}]}`)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for missing card, got %d", rec.Code)
		}
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		r := setupRewardsRouter(NewRewardsHandler(&mockRewardService{}))

		rec := doRequest(r, "POST", "/rewards/calculate",
			`{"transactions":[{"date":"2025-08-10","description":"Refund","amount":-540}],"card":{"name":"X"}}`)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for negative amount, got %d", rec.Code)
		}
	})
}
