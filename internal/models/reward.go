package models

// RewardBreakdown itemizes the rate components that produced a reward.
// All values are percentage points.
type RewardBreakdown struct {
	BaseRate       float64 `json:"base_rate"`
	CategoryBonus  float64 `json:"category_bonus"`
	MilestoneBonus float64 `json:"milestone_bonus"`
	OfferBonus     float64 `json:"offer_bonus"`
}

// RewardResult is the computed reward for a single transaction.
type RewardResult struct {
	TransactionID string          `json:"transaction_id,omitempty"`
	Reward        float64         `json:"reward"`
	Rate          float64         `json:"rate"`
	Breakdown     RewardBreakdown `json:"breakdown"`
	Capped        bool            `json:"capped"`
}

// GroupTotal aggregates rewards within one category or month bucket.
type GroupTotal struct {
	Spend       float64 `json:"spend"`
	Reward      float64 `json:"reward"`
	AverageRate float64 `json:"average_rate"`
	Count       int     `json:"count"`
}

// MilestoneOpportunity describes how much more spend, in which month, would
// cross the next milestone and what the bonus would be worth.
type MilestoneOpportunity struct {
	Month          string  `json:"month"`
	Threshold      float64 `json:"threshold"`
	Shortfall      float64 `json:"shortfall"`
	PotentialBonus float64 `json:"potential_bonus"`
}

// Projections extrapolates the aggregate result forward: a naive
// annualization plus the ranked milestone shortfalls.
type Projections struct {
	MonthlyAverage      float64                `json:"monthly_average"`
	AnnualizedReward    float64                `json:"annualized_reward"`
	MilestoneShortfalls []MilestoneOpportunity `json:"milestone_shortfalls,omitempty"`
}

// AggregateResult sums RewardResults across a transaction set, grouped by
// category and calendar month.
type AggregateResult struct {
	TotalSpend  float64               `json:"total_spend"`
	TotalReward float64               `json:"total_reward"`
	AverageRate float64               `json:"average_rate"`
	CappedCount int                   `json:"capped_count"`
	ByCategory  map[string]GroupTotal `json:"by_category"`
	ByMonth     map[string]GroupTotal `json:"by_month"`
	Results     []RewardResult        `json:"results,omitempty"`
	Projections *Projections          `json:"projections,omitempty"`
}

// CardComparison is one entry of a ranked card comparison.
type CardComparison struct {
	Card        CardProfile `json:"card"`
	TotalReward float64     `json:"total_reward"`
	NetBenefit  float64     `json:"net_benefit"`
	AverageRate float64     `json:"average_rate"`
	Score       float64     `json:"score"`
	Rank        int         `json:"rank"`
}

// RecommendationType tags the kind of optimization recommendation.
type RecommendationType string

const (
	RecommendationCardSwitch  RecommendationType = "card_switch"
	RecommendationCategoryFix RecommendationType = "category_optimization"
	RecommendationMilestone   RecommendationType = "milestone"
)

// RecommendationPriority orders recommendations when presented to the user.
type RecommendationPriority string

const (
	PriorityHigh   RecommendationPriority = "high"
	PriorityMedium RecommendationPriority = "medium"
	PriorityLow    RecommendationPriority = "low"
)

// Recommendation is one actionable suggestion produced by the optimizer.
type Recommendation struct {
	Type        RecommendationType     `json:"type"`
	Priority    RecommendationPriority `json:"priority"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Savings     float64                `json:"savings,omitempty"`
}
