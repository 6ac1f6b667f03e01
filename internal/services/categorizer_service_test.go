package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cardwise/internal/classifier"
	"cardwise/internal/models"
	"cardwise/internal/testutil"
)

// stubClassifier is a canned external classifier for tests.
type stubClassifier struct {
	result *classifier.Classification
	err    error
	calls  int
}

func (s *stubClassifier) Name() string { return "stub" }

func (s *stubClassifier) Classify(_ context.Context, _ string, _ float64) (*classifier.Classification, error) {
	s.calls++
	return s.result, s.err
}

func txOn(date, description string, amount float64) models.Transaction {
	d, _ := time.Parse("2006-01-02", date)
	return testutil.Tx(d, description, amount, models.CategoryOthers)
}

func TestCategorize(t *testing.T) {
	t.Run("rule_tier", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategorizerService(db, nil, 10, 0)

		tx := txOn("2025-08-10", "Zomato Order", 540)
		result := svc.Categorize(context.Background(), &tx, "")

		if result.Category != models.CategoryFood {
			t.Errorf("expected food, got %s", result.Category)
		}
		if result.Method != models.MethodRule {
			t.Errorf("expected rule method, got %s", result.Method)
		}
		testutil.AssertFloatEquals(t, 0.7, result.Confidence, "single keyword hit confidence")
	})

	t.Run("specific_beats_broad", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategorizerService(db, nil, 10, 0)

		// "amazon" is a shopping keyword at priority 2; "swiggy" is a food
		// keyword at priority 1 and must win.
		tx := txOn("2025-08-10", "Swiggy via Amazon Pay", 320)
		result := svc.Categorize(context.Background(), &tx, "")

		if result.Category != models.CategoryFood {
			t.Errorf("expected food to shadow shopping, got %s", result.Category)
		}
	})

	t.Run("merchant_db_tier", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategorizerService(db, nil, 10, 0)
		testutil.CreateTestMerchantMapping(t, db, "chaayos", models.CategoryFood)

		tx := txOn("2025-08-10", "CHAAYOS *4821", 250)
		result := svc.Categorize(context.Background(), &tx, "")

		if result.Category != models.CategoryFood {
			t.Errorf("expected food from merchant table, got %s", result.Category)
		}
		if result.Method != models.MethodMerchantDB {
			t.Errorf("expected merchant-db method, got %s", result.Method)
		}
		testutil.AssertFloatEquals(t, 0.85, result.Confidence, "merchant db confidence")
	})

	t.Run("user_pattern_tier", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategorizerService(db, nil, 10, 0)
		userID := testutil.NewUserID()

		pattern := models.UserPattern{
			UserID:     userID,
			Category:   models.CategoryGrocery,
			Pattern:    `(?i)corner stores`,
			Confidence: 0.9,
			HitCount:   3,
		}
		if err := db.Create(&pattern).Error; err != nil {
			t.Fatalf("failed to seed pattern: %v", err)
		}

		tx := txOn("2025-08-10", "CORNER STORES 99", 780)
		result := svc.Categorize(context.Background(), &tx, userID)

		if result.Category != models.CategoryGrocery {
			t.Errorf("expected grocery from learned pattern, got %s", result.Category)
		}
		if result.Method != models.MethodUserPattern {
			t.Errorf("expected user-pattern method, got %s", result.Method)
		}
	})

	t.Run("classifier_tier", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stub := &stubClassifier{result: &classifier.Classification{
			Category:   "travel",
			Confidence: 0.9,
			Reasoning:  "looks like an airline",
		}}
		svc := NewCategorizerService(db, stub, 10, 0)

		tx := txOn("2025-08-10", "AKX9912 BOOKING REF", 5600)
		result := svc.Categorize(context.Background(), &tx, "")

		if result.Category != models.CategoryTravel {
			t.Errorf("expected travel from classifier, got %s", result.Category)
		}
		if result.Method != models.MethodClassifier {
			t.Errorf("expected classifier method, got %s", result.Method)
		}
		if stub.calls != 1 {
			t.Errorf("expected 1 classifier call, got %d", stub.calls)
		}
	})

	t.Run("classifier_not_consulted_when_rules_match", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stub := &stubClassifier{result: &classifier.Classification{Category: "travel", Confidence: 0.99}}
		svc := NewCategorizerService(db, stub, 10, 0)

		tx := txOn("2025-08-10", "Zomato Order", 540)
		result := svc.Categorize(context.Background(), &tx, "")

		if result.Category != models.CategoryFood {
			t.Errorf("expected rule tier to win, got %s", result.Category)
		}
		if stub.calls != 0 {
			t.Errorf("expected classifier to be skipped, got %d calls", stub.calls)
		}
	})

	t.Run("classifier_failure_degrades_to_fallback", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		stub := &stubClassifier{err: errors.New("quota exhausted")}
		svc := NewCategorizerService(db, stub, 10, 0)

		tx := txOn("2025-08-10", "UNKNOWN VENDOR XK", 100)
		result := svc.Categorize(context.Background(), &tx, "")

		if result.Category != models.CategoryOthers {
			t.Errorf("expected others fallback, got %s", result.Category)
		}
		if result.Method != models.MethodFallback {
			t.Errorf("expected fallback method, got %s", result.Method)
		}
		testutil.AssertFloatEquals(t, 0.5, result.Confidence, "fallback confidence")
	})

	t.Run("fallback_without_classifier", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategorizerService(db, nil, 10, 0)

		tx := txOn("2025-08-10", "XJKW 441", 99)
		result := svc.Categorize(context.Background(), &tx, "")

		if result.Category != models.CategoryOthers || result.Method != models.MethodFallback {
			t.Errorf("expected others/fallback, got %s/%s", result.Category, result.Method)
		}
	})
}

func TestCategorizeBatch(t *testing.T) {
	t.Run("preserves_order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategorizerService(db, nil, 2, 0)

		txs := []models.Transaction{
			txOn("2025-08-01", "Zomato Order", 540),
			txOn("2025-08-02", "HPCL Fuel Station", 2000),
			txOn("2025-08-03", "XJKW 441", 99),
			txOn("2025-08-04", "Netflix Subscription", 649),
			txOn("2025-08-05", "Apollo Pharmacy", 430),
		}

		results := svc.CategorizeBatch(context.Background(), txs, "")

		if len(results) != len(txs) {
			t.Fatalf("expected %d results, got %d", len(txs), len(results))
		}
		expected := []models.Category{
			models.CategoryFood,
			models.CategoryFuel,
			models.CategoryOthers,
			models.CategoryEntertainment,
			models.CategoryMedical,
		}
		for i, want := range expected {
			if results[i].Category != want {
				t.Errorf("result %d: expected %s, got %s", i, want, results[i].Category)
			}
		}
	})

	t.Run("cancelled_context_fills_defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategorizerService(db, nil, 1, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		txs := []models.Transaction{
			txOn("2025-08-01", "Zomato Order", 540),
			txOn("2025-08-02", "HPCL Fuel Station", 2000),
			txOn("2025-08-03", "Netflix Subscription", 649),
		}
		results := svc.CategorizeBatch(ctx, txs, "")

		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		// First chunk completes; everything after the cancelled pacing wait
		// degrades to the default.
		for _, r := range results[1:] {
			if r.Method != models.MethodFallback {
				t.Errorf("expected fallback after cancellation, got %s", r.Method)
			}
		}
	})
}

func TestLearn(t *testing.T) {
	t.Run("creates_and_reinforces", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategorizerService(db, nil, 10, 0)
		userID := testutil.NewUserID()

		tx := txOn("2025-08-10", "Zomato Order", 540)
		tx.Merchant = "zomato order"
		result := models.CategoryResult{Category: models.CategoryFood, Confidence: 0.85}

		testutil.AssertNoError(t, svc.Learn(userID, &tx, result))

		var pattern models.UserPattern
		if err := db.Where("user_id = ?", userID).First(&pattern).Error; err != nil {
			t.Fatalf("expected a learned pattern: %v", err)
		}
		if pattern.HitCount != 1 {
			t.Errorf("expected hit count 1, got %d", pattern.HitCount)
		}
		testutil.AssertFloatEquals(t, 0.85, pattern.Confidence, "initial confidence")

		// Second sighting reinforces rather than duplicating.
		testutil.AssertNoError(t, svc.Learn(userID, &tx, result))

		var count int64
		db.Model(&models.UserPattern{}).Where("user_id = ?", userID).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 pattern after reinforcement, got %d", count)
		}
		db.Where("user_id = ?", userID).First(&pattern)
		if pattern.HitCount != 2 {
			t.Errorf("expected hit count 2, got %d", pattern.HitCount)
		}
		testutil.AssertFloatEquals(t, 0.90, pattern.Confidence, "reinforced confidence")
	})

	t.Run("confidence_capped_at_one", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategorizerService(db, nil, 10, 0)
		userID := testutil.NewUserID()

		tx := txOn("2025-08-10", "Zomato Order", 540)
		tx.Merchant = "zomato order"
		result := models.CategoryResult{Category: models.CategoryFood, Confidence: 0.99}

		for i := 0; i < 5; i++ {
			testutil.AssertNoError(t, svc.Learn(userID, &tx, result))
		}

		var pattern models.UserPattern
		db.Where("user_id = ?", userID).First(&pattern)
		if pattern.Confidence > 1.0 {
			t.Errorf("expected confidence capped at 1.0, got %f", pattern.Confidence)
		}
	})

	t.Run("skips_low_confidence", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategorizerService(db, nil, 10, 0)
		userID := testutil.NewUserID()

		tx := txOn("2025-08-10", "Zomato Order", 540)
		result := models.CategoryResult{Category: models.CategoryFood, Confidence: 0.75}

		testutil.AssertNoError(t, svc.Learn(userID, &tx, result))

		var count int64
		db.Model(&models.UserPattern{}).Where("user_id = ?", userID).Count(&count)
		if count != 0 {
			t.Errorf("expected no pattern below learn threshold, got %d", count)
		}
	})

	t.Run("skips_anonymous", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategorizerService(db, nil, 10, 0)

		tx := txOn("2025-08-10", "Zomato Order", 540)
		result := models.CategoryResult{Category: models.CategoryFood, Confidence: 0.95}

		testutil.AssertNoError(t, svc.Learn("", &tx, result))

		var count int64
		db.Model(&models.UserPattern{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no pattern for anonymous learn, got %d", count)
		}
	})

	t.Run("prunes_weakest_patterns", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategorizerService(db, nil, 10, 0)
		userID := testutil.NewUserID()

		// Fill the store to the cap with strong patterns.
		for i := 0; i < maxUserPatterns; i++ {
			p := models.UserPattern{
				UserID:     userID,
				Category:   models.CategoryFood,
				Pattern:    fmt.Sprintf(`(?i)vendor %03d`, i),
				Confidence: 0.9,
				HitCount:   10,
			}
			if err := db.Create(&p).Error; err != nil {
				t.Fatalf("failed to seed pattern: %v", err)
			}
		}

		// A new weak pattern should be the one evicted.
		tx := txOn("2025-08-10", "Fresh Vendor", 100)
		tx.Merchant = "fresh vendor"
		result := models.CategoryResult{Category: models.CategoryGrocery, Confidence: 0.8}
		testutil.AssertNoError(t, svc.Learn(userID, &tx, result))

		var count int64
		db.Model(&models.UserPattern{}).Where("user_id = ?", userID).Count(&count)
		if count != maxUserPatterns {
			t.Errorf("expected store pruned to %d, got %d", maxUserPatterns, count)
		}
		var evicted int64
		db.Model(&models.UserPattern{}).
			Where("user_id = ? AND pattern = ?", userID, `(?i)fresh vendor`).
			Count(&evicted)
		if evicted != 0 {
			t.Error("expected the weakest (newest) pattern to be evicted")
		}
	})
}
