package services

import (
	"fmt"
	"math"
	"sort"

	apperrors "cardwise/internal/errors"
	"cardwise/internal/models"
)

const (
	// Category-optimization thresholds: a category is flagged when its
	// effective rate falls below lowRateThreshold percent and its spend
	// exceeds materialSpendFloor rupees.
	lowRateThreshold   = 1.0
	materialSpendFloor = 5000.0

	// Milestone recommendations below this bonus value are noise.
	minMilestoneBonus = 100.0

	maxCategoryRecommendations = 3
)

// optimizerService ranks card profiles against an observed spend history and
// turns the comparison into actionable recommendations.
type optimizerService struct {
	rewards RewardServicer
}

// NewOptimizerService creates a new OptimizerServicer backed by the given
// reward calculator.
func NewOptimizerService(rewards RewardServicer) OptimizerServicer {
	return &optimizerService{rewards: rewards}
}

// FindOptimalCard scores every candidate card against the transaction set
// and returns the comparisons ranked best-first. Ties keep input order.
func (s *optimizerService) FindOptimalCard(txs []models.Transaction, cards []models.CardProfile) ([]models.CardComparison, error) {
	if len(cards) == 0 {
		return nil, apperrors.ErrNoCandidateCards
	}

	comparisons := make([]models.CardComparison, 0, len(cards))
	for i := range cards {
		card := cards[i]
		aggregate, err := s.rewards.CalculateTotalRewards(txs, &card, RewardOptions{})
		if err != nil {
			return nil, err
		}
		comparisons = append(comparisons, models.CardComparison{
			Card:        card,
			TotalReward: aggregate.TotalReward,
			NetBenefit:  round2(aggregate.TotalReward - card.AnnualFee),
			AverageRate: aggregate.AverageRate,
			Score:       scoreCard(&card, aggregate),
		})
	}

	sort.SliceStable(comparisons, func(i, j int) bool {
		return comparisons[i].Score > comparisons[j].Score
	})
	for i := range comparisons {
		comparisons[i].Rank = i + 1
	}
	return comparisons, nil
}

// scoreCard combines the average reward rate, the annual fee drag, rate
// consistency across categories, and premium coverage into one comparable
// number. Higher is better.
func scoreCard(card *models.CardProfile, aggregate *models.AggregateResult) float64 {
	score := aggregate.AverageRate * 20
	score -= card.AnnualFee / 1000

	// Consistency: a card that earns evenly across categories beats one
	// that spikes on a single category, all else equal.
	score += 10 - categoryRateStddev(aggregate.ByCategory)

	if len(card.PremiumCategories) > 0 && card.PremiumBonusRate > 0 {
		score += card.PremiumBonusRate
	}
	return round2(score)
}

func categoryRateStddev(byCategory map[string]models.GroupTotal) float64 {
	if len(byCategory) == 0 {
		return 0
	}
	rates := make([]float64, 0, len(byCategory))
	sum := 0.0
	for _, g := range byCategory {
		rates = append(rates, g.AverageRate)
		sum += g.AverageRate
	}
	mean := sum / float64(len(rates))
	variance := 0.0
	for _, r := range rates {
		variance += (r - mean) * (r - mean)
	}
	return math.Sqrt(variance / float64(len(rates)))
}

// GenerateRecommendations compares the current card against the
// alternatives and the spend pattern, producing card-switch, weak-category
// and milestone suggestions ordered by priority.
func (s *optimizerService) GenerateRecommendations(txs []models.Transaction, current *models.CardProfile, alternatives []models.CardProfile) ([]models.Recommendation, error) {
	currentAgg, err := s.rewards.CalculateTotalRewards(txs, current, RewardOptions{IncludeProjections: true})
	if err != nil {
		return nil, err
	}

	var recommendations []models.Recommendation

	if rec := s.cardSwitchRecommendation(txs, current, currentAgg, alternatives); rec != nil {
		recommendations = append(recommendations, *rec)
	}
	recommendations = append(recommendations, categoryRecommendations(currentAgg)...)
	recommendations = append(recommendations, milestoneRecommendations(currentAgg)...)

	sort.SliceStable(recommendations, func(i, j int) bool {
		return priorityWeight(recommendations[i].Priority) > priorityWeight(recommendations[j].Priority)
	})
	return recommendations, nil
}

// cardSwitchRecommendation suggests the alternative with the best net
// benefit, but only when that net benefit beats the current card's. A card
// with a higher gross reward and a fee that eats the difference is not a
// win.
func (s *optimizerService) cardSwitchRecommendation(txs []models.Transaction, current *models.CardProfile, currentAgg *models.AggregateResult, alternatives []models.CardProfile) *models.Recommendation {
	currentNet := currentAgg.TotalReward - current.AnnualFee

	var best *models.CardProfile
	bestNet := currentNet
	for i := range alternatives {
		alt := &alternatives[i]
		aggregate, err := s.rewards.CalculateTotalRewards(txs, alt, RewardOptions{})
		if err != nil {
			continue
		}
		net := aggregate.TotalReward - alt.AnnualFee
		if net > bestNet {
			best = alt
			bestNet = net
		}
	}
	if best == nil {
		return nil
	}

	gain := round2(bestNet - currentNet)
	return &models.Recommendation{
		Type:     models.RecommendationCardSwitch,
		Priority: models.PriorityHigh,
		Title:    fmt.Sprintf("Switch to %s", best.Name),
		Description: fmt.Sprintf(
			"%s would net ₹%.2f more per period than %s after annual fees (₹%.2f vs ₹%.2f).",
			best.Name, gain, current.Name, round2(bestNet), round2(currentNet)),
		Savings: gain,
	}
}

// categoryRecommendations flags high-spend categories earning under the
// low-rate threshold, largest spend first, capped at three.
func categoryRecommendations(aggregate *models.AggregateResult) []models.Recommendation {
	type weakCategory struct {
		name  string
		group models.GroupTotal
	}
	var weak []weakCategory
	for name, g := range aggregate.ByCategory {
		if g.AverageRate < lowRateThreshold && g.Spend > materialSpendFloor {
			weak = append(weak, weakCategory{name: name, group: g})
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		if weak[i].group.Spend != weak[j].group.Spend {
			return weak[i].group.Spend > weak[j].group.Spend
		}
		return weak[i].name < weak[j].name
	})
	if len(weak) > maxCategoryRecommendations {
		weak = weak[:maxCategoryRecommendations]
	}

	recommendations := make([]models.Recommendation, 0, len(weak))
	for _, w := range weak {
		// Savings estimate: lifting the category to the threshold rate.
		potential := round2(w.group.Spend*lowRateThreshold/100 - w.group.Reward)
		recommendations = append(recommendations, models.Recommendation{
			Type:     models.RecommendationCategoryFix,
			Priority: models.PriorityMedium,
			Title:    fmt.Sprintf("Low rewards on %s spend", w.name),
			Description: fmt.Sprintf(
				"You spent ₹%.2f on %s but earned only %.2f%% back. A card with a %s rate of at least %.1f%% would improve this.",
				w.group.Spend, w.name, w.group.AverageRate, w.name, lowRateThreshold),
			Savings: potential,
		})
	}
	return recommendations
}

// milestoneRecommendations surfaces the projected milestone shortfalls whose
// bonus is worth chasing.
func milestoneRecommendations(aggregate *models.AggregateResult) []models.Recommendation {
	if aggregate.Projections == nil {
		return nil
	}
	var recommendations []models.Recommendation
	for _, opp := range aggregate.Projections.MilestoneShortfalls {
		if opp.PotentialBonus <= minMilestoneBonus {
			continue
		}
		recommendations = append(recommendations, models.Recommendation{
			Type:     models.RecommendationMilestone,
			Priority: models.PriorityMedium,
			Title:    fmt.Sprintf("Milestone within reach in %s", opp.Month),
			Description: fmt.Sprintf(
				"Spending ₹%.2f more in %s would cross the ₹%.0f milestone and unlock about ₹%.2f in bonus rewards.",
				opp.Shortfall, opp.Month, opp.Threshold, opp.PotentialBonus),
			Savings: opp.PotentialBonus,
		})
	}
	return recommendations
}

func priorityWeight(p models.RecommendationPriority) int {
	switch p {
	case models.PriorityHigh:
		return 3
	case models.PriorityMedium:
		return 2
	case models.PriorityLow:
		return 1
	}
	return 0
}
