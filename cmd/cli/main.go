// Command cli parses a statement file locally and prints its transactions,
// categories and (optionally) rewards for a card profile, without a running
// API server or Postgres. State lives in an in-memory SQLite database for
// the duration of the run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"cardwise/internal/database"
	"cardwise/internal/logger"
	"cardwise/internal/models"
	"cardwise/internal/services"
	"cardwise/internal/uuid"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	logger.Init("production") // keep CLI stdout clean of debug logs
	defer logger.Sync()

	filePath := flag.String("file", "", "statement file to parse (.pdf, .csv or .xlsx)")
	cardPath := flag.String("card", "", "optional card profile JSON to score rewards against")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: cli -file statement.csv [-card card.json]")
		os.Exit(2)
	}

	if err := run(*filePath, *cardPath); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(filePath, cardPath string) error {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("open in-memory database: %w", err)
	}
	if err := db.AutoMigrate(&models.Statement{}, &models.Transaction{}, &models.UserPattern{}, &models.MerchantMapping{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := database.SeedMerchants(db); err != nil {
		return fmt.Errorf("seed merchants: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", filePath, err)
	}

	ctx := context.Background()
	userID := uuid.New()

	statements := services.NewStatementService(db)
	result, err := statements.ParseStatement(ctx, userID, filepath.Base(filePath), data)
	if err != nil {
		return err
	}

	// No external classifier on the CLI path; the rule, merchant and
	// pattern tiers still apply.
	categorizer := services.NewCategorizerService(db, nil, 10, 0)
	categories := categorizer.CategorizeBatch(ctx, result.Transactions, userID)
	for i := range result.Transactions {
		result.Transactions[i].Category = categories[i].Category
		result.Transactions[i].Confidence = categories[i].Confidence
	}

	output := map[string]interface{}{
		"statement":    result.Statement,
		"summary":      result.Summary,
		"transactions": result.Transactions,
		"skipped_rows": result.SkippedRows,
	}

	if cardPath != "" {
		cardData, err := os.ReadFile(cardPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", cardPath, err)
		}
		var card models.CardProfile
		if err := json.Unmarshal(cardData, &card); err != nil {
			return fmt.Errorf("parse card profile: %w", err)
		}

		rewards := services.NewRewardService()
		aggregate, err := rewards.CalculateTotalRewards(result.Transactions, &card, services.RewardOptions{
			IncludeProjections: true,
		})
		if err != nil {
			return err
		}
		output["rewards"] = aggregate
	}

	encoded, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
