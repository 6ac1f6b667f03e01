package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"cardwise/internal/classifier"
	apperrors "cardwise/internal/errors"
	"cardwise/internal/logger"
	"cardwise/internal/models"
)

const (
	// confidenceThreshold gates fallback to the next resolution tier.
	confidenceThreshold = 0.7
	// learnThreshold gates pattern learning from a categorization result.
	learnThreshold = 0.8
	// maxUserPatterns bounds the learned store per user; lowest
	// confidence × hits are evicted first.
	maxUserPatterns = 50

	merchantDBConfidence = 0.85
	fallbackConfidence   = 0.5
)

// strategy is one categorization tier. attempt returns nil when the tier has
// no opinion; the categorizer runs tiers in order until one clears the
// confidence threshold.
type strategy interface {
	method() models.CategorizationMethod
	attempt(ctx context.Context, tx *models.Transaction, userID string) *models.CategoryResult
}

// categorizerService resolves transaction categories through an ordered
// strategy chain and owns the per-user learned-pattern store.
type categorizerService struct {
	db         *gorm.DB
	strategies []strategy
	batchSize  int
	batchDelay time.Duration
}

// NewCategorizerService creates a new CategorizerServicer. cls may be nil,
// in which case the external-classifier tier is skipped entirely.
func NewCategorizerService(db *gorm.DB, cls classifier.Classifier, batchSize int, batchDelay time.Duration) CategorizerServicer {
	if batchSize <= 0 {
		batchSize = 10
	}
	strategies := []strategy{
		&ruleStrategy{},
		&merchantStrategy{db: db},
		&patternStrategy{db: db},
	}
	if cls != nil {
		strategies = append(strategies, &classifierStrategy{cls: cls})
	}
	return &categorizerService{
		db:         db,
		strategies: strategies,
		batchSize:  batchSize,
		batchDelay: batchDelay,
	}
}

// Categorize resolves one transaction's category. It never fails: every
// failure mode degrades to the default fallback result.
func (s *categorizerService) Categorize(ctx context.Context, tx *models.Transaction, userID string) models.CategoryResult {
	for _, strat := range s.strategies {
		result := strat.attempt(ctx, tx, userID)
		if result == nil {
			continue
		}
		if result.Confidence >= confidenceThreshold {
			return *result
		}
	}
	return models.CategoryResult{
		Category:   models.CategoryOthers,
		Confidence: fallbackConfidence,
		Method:     models.MethodFallback,
	}
}

// CategorizeBatch processes transactions in fixed-size chunks with a pacing
// delay between chunks to respect the external classifier's rate limits.
// Output order matches input order; a failed chunk degrades to the default
// result for every transaction in it.
func (s *categorizerService) CategorizeBatch(ctx context.Context, txs []models.Transaction, userID string) []models.CategoryResult {
	results := make([]models.CategoryResult, len(txs))

	for start := 0; start < len(txs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(txs) {
			end = len(txs)
		}

		s.categorizeChunk(ctx, txs[start:end], userID, results[start:end])

		if end < len(txs) && s.batchDelay > 0 {
			select {
			case <-ctx.Done():
				// Caller abandoned the batch; fill the rest with defaults.
				for i := end; i < len(txs); i++ {
					results[i] = models.CategoryResult{
						Category:   models.CategoryOthers,
						Confidence: fallbackConfidence,
						Method:     models.MethodFallback,
					}
				}
				return results
			case <-time.After(s.batchDelay):
			}
		}
	}

	return results
}

// categorizeChunk isolates one chunk: a panic inside a tier degrades the
// whole chunk to defaults instead of aborting the batch.
func (s *categorizerService) categorizeChunk(ctx context.Context, txs []models.Transaction, userID string, out []models.CategoryResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Get().Errorw("categorizer chunk failed, degrading to defaults", "panic", fmt.Sprint(r))
			for i := range out {
				out[i] = models.CategoryResult{
					Category:   models.CategoryOthers,
					Confidence: fallbackConfidence,
					Method:     models.MethodFallback,
				}
			}
		}
	}()

	for i := range txs {
		out[i] = s.Categorize(ctx, &txs[i], userID)
	}
}

// Learn derives a regex from the transaction's merchant token and upserts it
// into the user's pattern store. Only results at or above the learning
// threshold are recorded; repeated sightings raise confidence (capped at
// 1.0) and the hit counter. The store is pruned to the top patterns by
// confidence × hits.
func (s *categorizerService) Learn(userID string, tx *models.Transaction, result models.CategoryResult) error {
	if userID == "" || result.Confidence < learnThreshold {
		return nil
	}
	merchant := tx.Merchant
	if merchant == "" {
		merchant = DeriveMerchant(tx.Description)
	}
	if merchant == "" {
		return nil
	}
	// Lowercase before building the pattern so the same merchant seen with
	// different statement casing reinforces one row instead of forking.
	pattern := `(?i)` + regexp.QuoteMeta(strings.ToLower(merchant))

	var existing models.UserPattern
	err := s.db.Where("user_id = ? AND category = ? AND pattern = ?", userID, result.Category, pattern).
		First(&existing).Error
	switch {
	case err == nil:
		existing.Confidence += 0.05
		if existing.Confidence > 1.0 {
			existing.Confidence = 1.0
		}
		existing.HitCount++
		if err := s.db.Save(&existing).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		created := models.UserPattern{
			UserID:     userID,
			Category:   result.Category,
			Pattern:    pattern,
			Confidence: result.Confidence,
			HitCount:   1,
		}
		if err := s.db.Create(&created).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	default:
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.prune(userID)
}

// prune evicts the weakest patterns once a user's store exceeds the cap.
func (s *categorizerService) prune(userID string) error {
	var patterns []models.UserPattern
	if err := s.db.Where("user_id = ?", userID).Find(&patterns).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(patterns) <= maxUserPatterns {
		return nil
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Weight() > patterns[j].Weight()
	})

	for _, p := range patterns[maxUserPatterns:] {
		if err := s.db.Unscoped().Delete(&models.UserPattern{}, "id = ?", p.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// ruleStrategy scores the description against the fixed keyword/regex rules.
type ruleStrategy struct{}

func (r *ruleStrategy) method() models.CategorizationMethod { return models.MethodRule }

func (r *ruleStrategy) attempt(_ context.Context, tx *models.Transaction, _ string) *models.CategoryResult {
	category, confidence, detail := scoreAgainstRules(tx.Description)
	if category == "" {
		return nil
	}
	return &models.CategoryResult{
		Category:   category,
		Confidence: confidence,
		Method:     models.MethodRule,
		Details:    detail,
	}
}

// merchantStrategy looks the derived merchant up in the curated table.
type merchantStrategy struct {
	db *gorm.DB
}

func (m *merchantStrategy) method() models.CategorizationMethod { return models.MethodMerchantDB }

func (m *merchantStrategy) attempt(_ context.Context, tx *models.Transaction, _ string) *models.CategoryResult {
	merchant := tx.Merchant
	if merchant == "" {
		merchant = DeriveMerchant(tx.Description)
	}
	if merchant == "" {
		return nil
	}
	// The curated table stores lowercase names; derived merchants keep
	// their statement casing.
	merchant = strings.ToLower(merchant)

	var mapping models.MerchantMapping
	err := m.db.Where("merchant = ?", merchant).First(&mapping).Error
	if err != nil {
		// Partial match: any curated merchant contained in the derived name.
		var mappings []models.MerchantMapping
		if listErr := m.db.Find(&mappings).Error; listErr != nil {
			return nil
		}
		for _, candidate := range mappings {
			if strings.Contains(merchant, strings.ToLower(candidate.Merchant)) {
				mapping = candidate
				err = nil
				break
			}
		}
	}
	if err != nil {
		return nil
	}

	return &models.CategoryResult{
		Category:   mapping.Category,
		Confidence: merchantDBConfidence,
		Method:     models.MethodMerchantDB,
		Details:    "merchant " + mapping.Merchant,
	}
}

// patternStrategy applies the user's learned regexes. Skipped when no user
// is supplied.
type patternStrategy struct {
	db *gorm.DB
}

func (p *patternStrategy) method() models.CategorizationMethod { return models.MethodUserPattern }

func (p *patternStrategy) attempt(_ context.Context, tx *models.Transaction, userID string) *models.CategoryResult {
	if userID == "" {
		return nil
	}

	var patterns []models.UserPattern
	if err := p.db.Where("user_id = ?", userID).Find(&patterns).Error; err != nil {
		return nil
	}

	var best *models.UserPattern
	for i := range patterns {
		re, err := regexp.Compile(patterns[i].Pattern)
		if err != nil {
			continue
		}
		if !re.MatchString(tx.Description) && !re.MatchString(tx.Merchant) {
			continue
		}
		if best == nil || patterns[i].Confidence > best.Confidence {
			best = &patterns[i]
		}
	}
	if best == nil {
		return nil
	}

	return &models.CategoryResult{
		Category:   best.Category,
		Confidence: best.Confidence,
		Method:     models.MethodUserPattern,
		Details:    "pattern " + best.Pattern,
	}
}

// classifierStrategy consults the external natural-language classifier.
// Errors and malformed responses are swallowed: the classifier is treated
// as unreliable infrastructure, never a hard dependency.
type classifierStrategy struct {
	cls classifier.Classifier
}

func (c *classifierStrategy) method() models.CategorizationMethod { return models.MethodClassifier }

func (c *classifierStrategy) attempt(ctx context.Context, tx *models.Transaction, _ string) *models.CategoryResult {
	opinion, err := c.cls.Classify(ctx, tx.Description, tx.Amount)
	if err != nil {
		logger.Get().Debugw("external classifier unavailable",
			"classifier", c.cls.Name(), "error", err.Error())
		return nil
	}

	return &models.CategoryResult{
		Category:   models.Category(opinion.Category),
		Confidence: opinion.Confidence,
		Method:     models.MethodClassifier,
		Details:    opinion.Reasoning,
	}
}
