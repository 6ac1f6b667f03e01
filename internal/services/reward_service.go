package services

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "cardwise/internal/errors"
	"cardwise/internal/models"
)

// globalDefaultRates is the per-category fallback used when a card declares
// no rate at all for a category. Values are percentage points.
var globalDefaultRates = map[models.Category]float64{
	models.CategoryFood:          1.0,
	models.CategoryFuel:          1.0,
	models.CategoryGrocery:       1.0,
	models.CategoryShopping:      1.0,
	models.CategoryTravel:        1.0,
	models.CategoryEntertainment: 0.5,
	models.CategoryUtilities:     0.5,
	models.CategoryMedical:       0.5,
}

// floorRate applies when neither the card nor the global table has an
// opinion.
const floorRate = 0.5

// onlineTokens mark a description as online/e-commerce spend. This is a
// keyword heuristic with no ground truth; treat it as an imprecise signal.
var onlineTokens = []string{
	"amazon", "flipkart", "myntra", "ajio", "nykaa", "swiggy", "zomato",
	"bookmyshow", "netflix", "upi", "paytm", "razorpay", "phonepe", "gpay",
	"online", "www", ".com", "ecom",
}

// IsOnlineTransaction reports whether the description looks like online
// spend, by keyword match.
func IsOnlineTransaction(description string) bool {
	lowered := strings.ToLower(description)
	for _, token := range onlineTokens {
		if strings.Contains(lowered, token) {
			return true
		}
	}
	return false
}

// SpendCycle accumulates the running state reward calculation needs across
// one ordered transaction set: cumulative spend per month (for milestones),
// reward accrued per category-month (for category caps), and total reward
// (for the annual cap). One cycle must not be shared between cards.
type SpendCycle struct {
	monthlySpend   map[string]float64
	categoryReward map[string]float64
	totalReward    float64
}

// NewSpendCycle creates an empty spend cycle.
func NewSpendCycle() *SpendCycle {
	return &SpendCycle{
		monthlySpend:   make(map[string]float64),
		categoryReward: make(map[string]float64),
	}
}

// MonthSpend returns the cumulative spend recorded for a month so far.
func (c *SpendCycle) MonthSpend(month string) float64 {
	return c.monthlySpend[month]
}

// rewardService computes per-transaction and aggregate rewards for a card.
type rewardService struct{}

// NewRewardService creates a new RewardServicer.
func NewRewardService() RewardServicer {
	return &rewardService{}
}

// round2 rounds a reward amount to two decimal places using decimal
// arithmetic, avoiding float drift at the paise boundary.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// CalculateTransactionReward computes one transaction's reward against a
// card, in order: base rate, structural category bonuses, milestone bonus
// (single-fire per threshold per month), offer bonuses, then caps.
func (s *rewardService) CalculateTransactionReward(tx *models.Transaction, card *models.CardProfile, cycle *SpendCycle) models.RewardResult {
	if cycle == nil {
		cycle = NewSpendCycle()
	}

	result := models.RewardResult{TransactionID: tx.ID}

	// 1. Base rate.
	base := card.RateFor(tx.Category)
	if base == 0 {
		if global, ok := globalDefaultRates[tx.Category]; ok {
			base = global
		} else {
			base = floorRate
		}
	}
	result.Breakdown.BaseRate = base

	// 2. Structural category bonuses, independent of offers.
	categoryBonus := 0.0
	if card.WeekendDiningBonus > 0 && tx.Category == models.CategoryFood {
		if weekday := tx.Date.Weekday(); weekday == time.Saturday || weekday == time.Sunday {
			categoryBonus += card.WeekendDiningBonus
		}
	}
	if card.OnlineShoppingBonus > 0 && tx.Category == models.CategoryShopping && IsOnlineTransaction(tx.Description) {
		categoryBonus += card.OnlineShoppingBonus
	}
	for _, premium := range card.PremiumCategories {
		if premium == string(tx.Category) {
			categoryBonus += card.PremiumBonusRate
			break
		}
	}
	result.Breakdown.CategoryBonus = categoryBonus

	// 3. Milestone bonus. Only the first threshold crossed by this
	// transaction fires; thresholds crossed earlier in the month do not
	// re-fire.
	month := tx.Month()
	pre := cycle.monthlySpend[month]
	post := pre + tx.Amount
	milestoneBonus := 0.0
	for _, m := range sortedMilestones(card.Milestones) {
		if pre < m.Threshold && post >= m.Threshold {
			milestoneBonus = m.BonusRate
			break
		}
	}
	cycle.monthlySpend[month] = post
	result.Breakdown.MilestoneBonus = milestoneBonus

	// 4. Offer bonuses: every active matching offer contributes its rate.
	offerBonus := 0.0
	offerCapCut := 0.0
	for i := range card.Offers {
		offer := &card.Offers[i]
		if !offerApplies(offer, tx) {
			continue
		}
		offerBonus += offer.Rate
		if offer.MaxBenefit > 0 {
			benefit := tx.Amount * offer.Rate / 100
			if benefit > offer.MaxBenefit {
				offerCapCut += benefit - offer.MaxBenefit
			}
		}
	}
	result.Breakdown.OfferBonus = offerBonus

	// 5. Reward amount, then caps.
	totalRate := base + categoryBonus + milestoneBonus + offerBonus
	result.Rate = totalRate

	reward := decimal.NewFromFloat(tx.Amount).
		Mul(decimal.NewFromFloat(totalRate)).
		Div(decimal.NewFromInt(100)).
		InexactFloat64()
	if offerCapCut > 0 {
		reward -= offerCapCut
		result.Capped = true
	}

	categoryKey := string(tx.Category) + "|" + month
	categoryCap, hasCategoryCap := card.CategoryCaps[string(tx.Category)]
	if hasCategoryCap && categoryCap > 0 {
		remaining := categoryCap - cycle.categoryReward[categoryKey]
		if remaining < 0 {
			remaining = 0
		}
		if reward > remaining {
			reward = remaining
			result.Capped = true
		}
	}

	if card.AnnualCap > 0 {
		remaining := card.AnnualCap - cycle.totalReward
		if remaining < 0 {
			remaining = 0
		}
		if reward > remaining {
			reward = remaining
			result.Capped = true
		}
	}

	// Accumulators track the reward actually paid, so a reward truncated by
	// the annual cap must not consume category-cap headroom.
	if hasCategoryCap && categoryCap > 0 {
		cycle.categoryReward[categoryKey] += reward
	}
	cycle.totalReward += reward

	result.Reward = round2(reward)
	return result
}

// offerApplies checks the offer's date range, merchant/category scope and
// minimum spend against one transaction.
func offerApplies(offer *models.Offer, tx *models.Transaction) bool {
	if tx.Date.Before(offer.ValidFrom) || tx.Date.After(offer.ValidTo) {
		return false
	}
	if tx.Amount < offer.MinSpend {
		return false
	}

	if offer.Category != "" && offer.Category == tx.Category {
		return true
	}
	merchant := strings.ToLower(tx.Merchant)
	for _, m := range offer.Merchants {
		if m == "" {
			continue
		}
		if strings.Contains(merchant, strings.ToLower(m)) {
			return true
		}
	}
	// An unscoped offer applies to all spend.
	return offer.Category == "" && len(offer.Merchants) == 0
}

// sortedMilestones returns the card's milestones ordered by ascending
// threshold without mutating the profile.
func sortedMilestones(milestones []models.Milestone) []models.Milestone {
	if len(milestones) < 2 {
		return milestones
	}
	out := make([]models.Milestone, len(milestones))
	copy(out, milestones)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Threshold < out[j].Threshold })
	return out
}

// validateInputs rejects malformed shapes before any computation begins.
func validateInputs(txs []models.Transaction, card *models.CardProfile) error {
	if card == nil || card.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidCardProfile, "card profile requires a name")
	}
	if card.AnnualFee < 0 || card.DefaultRate < 0 || card.AnnualCap < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidCardProfile, "card rates, fees and caps must be non-negative")
	}
	for _, offer := range card.Offers {
		if !models.IsValidBenefitType(string(offer.Type)) {
			return apperrors.WithMessage(apperrors.ErrInvalidCardProfile, "unknown offer benefit type "+string(offer.Type))
		}
	}
	for i := range txs {
		if txs[i].Amount < 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidTransaction, "transaction amounts must be non-negative")
		}
		if txs[i].Date.IsZero() {
			return apperrors.WithMessage(apperrors.ErrInvalidTransaction, "transaction date is required")
		}
	}
	return nil
}

// CalculateTotalRewards scores a transaction set against a card and groups
// the results by category and calendar month.
func (s *rewardService) CalculateTotalRewards(txs []models.Transaction, card *models.CardProfile, opts RewardOptions) (*models.AggregateResult, error) {
	if err := validateInputs(txs, card); err != nil {
		return nil, err
	}

	ordered := make([]models.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	cycle := NewSpendCycle()
	aggregate := &models.AggregateResult{
		ByCategory: make(map[string]models.GroupTotal),
		ByMonth:    make(map[string]models.GroupTotal),
	}

	for i := range ordered {
		tx := &ordered[i]
		result := s.CalculateTransactionReward(tx, card, cycle)

		aggregate.TotalSpend += tx.Amount
		aggregate.TotalReward += result.Reward
		if result.Capped {
			aggregate.CappedCount++
		}

		accumulate(aggregate.ByCategory, string(tx.Category), tx.Amount, result.Reward)
		accumulate(aggregate.ByMonth, tx.Month(), tx.Amount, result.Reward)

		if opts.IncludeResults {
			aggregate.Results = append(aggregate.Results, result)
		}
	}

	aggregate.TotalReward = round2(aggregate.TotalReward)
	if aggregate.TotalSpend > 0 {
		aggregate.AverageRate = round2(aggregate.TotalReward / aggregate.TotalSpend * 100)
	}
	finalizeGroups(aggregate.ByCategory)
	finalizeGroups(aggregate.ByMonth)

	if opts.IncludeProjections {
		aggregate.Projections = buildProjections(aggregate, card, cycle)
	}

	return aggregate, nil
}

func accumulate(groups map[string]models.GroupTotal, key string, amount, reward float64) {
	g := groups[key]
	g.Spend += amount
	g.Reward += reward
	g.Count++
	groups[key] = g
}

func finalizeGroups(groups map[string]models.GroupTotal) {
	for key, g := range groups {
		g.Reward = round2(g.Reward)
		if g.Spend > 0 {
			g.AverageRate = round2(g.Reward / g.Spend * 100)
		}
		groups[key] = g
	}
}

// buildProjections annualizes the observed reward and ranks milestone
// shortfalls by their potential bonus value, keeping the top five.
func buildProjections(aggregate *models.AggregateResult, card *models.CardProfile, cycle *SpendCycle) *models.Projections {
	months := len(aggregate.ByMonth)
	if months == 0 {
		return &models.Projections{}
	}

	monthlyAverage := aggregate.TotalReward / float64(months)
	projections := &models.Projections{
		MonthlyAverage:   round2(monthlyAverage),
		AnnualizedReward: round2(monthlyAverage * 12),
	}

	milestones := sortedMilestones(card.Milestones)
	for month := range aggregate.ByMonth {
		spend := cycle.MonthSpend(month)
		for _, m := range milestones {
			if spend >= m.Threshold {
				continue
			}
			projections.MilestoneShortfalls = append(projections.MilestoneShortfalls, models.MilestoneOpportunity{
				Month:          month,
				Threshold:      m.Threshold,
				Shortfall:      round2(m.Threshold - spend),
				PotentialBonus: round2(m.Threshold * m.BonusRate / 100),
			})
		}
	}

	sort.SliceStable(projections.MilestoneShortfalls, func(i, j int) bool {
		a, b := projections.MilestoneShortfalls[i], projections.MilestoneShortfalls[j]
		if a.PotentialBonus != b.PotentialBonus {
			return a.PotentialBonus > b.PotentialBonus
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Threshold < b.Threshold
	})
	if len(projections.MilestoneShortfalls) > 5 {
		projections.MilestoneShortfalls = projections.MilestoneShortfalls[:5]
	}

	return projections
}
