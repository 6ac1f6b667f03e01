package models

// UserPattern is one learned categorization rule for a user: a regular
// expression derived from a previously high-confidence categorization.
// Repeated sightings of the same (category, pattern) pair raise Confidence
// (capped at 1.0) and HitCount; the per-user set is pruned to the top 50
// patterns by Confidence × HitCount to bound growth.
type UserPattern struct {
	Base
	UserID     string   `gorm:"type:uuid;index;not null" json:"user_id"`
	Category   Category `gorm:"not null" json:"category"`
	Pattern    string   `gorm:"not null" json:"pattern"`
	Confidence float64  `gorm:"not null" json:"confidence"`
	HitCount   int      `gorm:"not null;default:1" json:"hit_count"`
}

// Weight is the eviction score used when pruning a user's pattern store.
func (p *UserPattern) Weight() float64 {
	return p.Confidence * float64(p.HitCount)
}

// MerchantMapping is one row of the curated merchant → category table
// consulted by the second categorization tier.
type MerchantMapping struct {
	Base
	Merchant string   `gorm:"uniqueIndex;not null" json:"merchant"`
	Category Category `gorm:"not null" json:"category"`
}
