package models

import "time"

// BenefitType is the closed set of offer benefit kinds. Keeping this a
// tagged type makes the reward-calculation switch exhaustive instead of a
// loose string comparison.
type BenefitType string

const (
	BenefitCashback        BenefitType = "cashback"
	BenefitPoints          BenefitType = "points"
	BenefitDiscount        BenefitType = "discount"
	BenefitSurchargeWaiver BenefitType = "surcharge-waiver"
)

// IsValidBenefitType reports whether s names a known benefit type.
func IsValidBenefitType(s string) bool {
	switch BenefitType(s) {
	case BenefitCashback, BenefitPoints, BenefitDiscount, BenefitSurchargeWaiver:
		return true
	}
	return false
}

// Offer is a time-bounded, merchant- or category-scoped bonus layered on top
// of a card's base rates. An offer applies to a transaction only if the
// transaction date falls within [ValidFrom, ValidTo], the merchant or
// category matches, and the amount meets MinSpend.
type Offer struct {
	Rate       float64     `json:"rate" binding:"min=0"`
	Type       BenefitType `json:"type" binding:"required,benefit_type"`
	Category   Category    `json:"category,omitempty"`
	Merchants  []string    `json:"merchants,omitempty"`
	MinSpend   float64     `json:"min_spend"`
	MaxBenefit float64     `json:"max_benefit,omitempty"`
	ValidFrom  time.Time   `json:"valid_from"`
	ValidTo    time.Time   `json:"valid_to"`
}

// Milestone is a cumulative monthly-spend threshold that unlocks an additive
// reward-rate bonus once crossed.
type Milestone struct {
	Threshold float64 `json:"threshold" binding:"min=0"`
	BonusRate float64 `json:"bonus_rate" binding:"min=0"`
}

// CardProfile describes the reward-earning rules of one credit card. It is
// supplied by the caller per request; this core does not scrape or persist
// card data.
type CardProfile struct {
	ID              string             `json:"id"`
	Name            string             `json:"name" binding:"required"`
	Issuer          string             `json:"issuer,omitempty"`
	AnnualFee       float64            `json:"annual_fee" binding:"min=0"`
	DefaultRate     float64            `json:"default_rate" binding:"min=0"`
	PrimaryCategory Category           `json:"primary_category,omitempty"`
	PrimaryRate     float64            `json:"primary_rate,omitempty"`
	CategoryRates   map[string]float64 `json:"category_rates,omitempty"`

	// Structural bonuses independent of offers.
	PremiumCategories   []string `json:"premium_categories,omitempty"`
	PremiumBonusRate    float64  `json:"premium_bonus_rate,omitempty"`
	WeekendDiningBonus  float64  `json:"weekend_dining_bonus,omitempty"`
	OnlineShoppingBonus float64  `json:"online_shopping_bonus,omitempty"`

	Milestones []Milestone `json:"milestones,omitempty" binding:"dive"`

	// Caps. CategoryCaps bound the reward per category per month; AnnualCap
	// bounds total reward across the whole set.
	CategoryCaps map[string]float64 `json:"category_caps,omitempty"`
	AnnualCap    float64            `json:"annual_cap,omitempty"`

	Offers []Offer `json:"offers,omitempty" binding:"dive"`
}

// RateFor resolves the card's base rate for a category: an explicit
// per-category rate wins, then the declared primary-category rate, then the
// card's default rate. A zero result means the caller should fall back to
// the global default table.
func (c *CardProfile) RateFor(category Category) float64 {
	if r, ok := c.CategoryRates[string(category)]; ok {
		return r
	}
	if c.PrimaryCategory != "" && c.PrimaryCategory == category && c.PrimaryRate > 0 {
		return c.PrimaryRate
	}
	return c.DefaultRate
}
