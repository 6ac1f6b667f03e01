package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cardwise/internal/database"
	"cardwise/internal/handlers"
	"cardwise/internal/logger"
	"cardwise/internal/middleware"
	"cardwise/internal/models"
	"cardwise/internal/services"
	"cardwise/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single
// test, migrated and seeded with the curated merchant table.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.Statement{},
		&models.Transaction{},
		&models.UserPattern{},
		&models.MerchantMapping{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := database.SeedMerchants(db); err != nil {
		t.Fatalf("failed to seed merchants: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite. No external classifier is wired; the rule and merchant tiers carry
// categorization.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	statementService := services.NewStatementService(db)
	categorizerService := services.NewCategorizerService(db, nil, 10, 0)
	rewardService := services.NewRewardService()
	optimizerService := services.NewOptimizerService(rewardService)

	statementHandler := handlers.NewStatementHandler(statementService)
	categorizeHandler := handlers.NewCategorizeHandler(categorizerService)
	rewardsHandler := handlers.NewRewardsHandler(rewardService)
	optimizerHandler := handlers.NewOptimizerHandler(optimizerService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	statements := v1.Group("/statements")
	statements.POST("/parse", statementHandler.ParseStatement)
	statements.GET("/:id", statementHandler.GetStatement)
	statements.GET("/:id/transactions", statementHandler.GetStatementTransactions)

	v1.POST("/categorize", categorizeHandler.Categorize)
	v1.POST("/rewards/calculate", rewardsHandler.CalculateRewards)

	cards := v1.Group("/cards")
	cards.POST("/compare", optimizerHandler.CompareCards)
	cards.POST("/optimize", optimizerHandler.Optimize)

	return &testApp{DB: db, Router: router}
}

// request makes a JSON request to the test router and returns the recorder.
func (app *testApp) request(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// upload posts a multipart statement file.
func (app *testApp) upload(t *testing.T, userID, fileName, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("user_id", userID); err != nil {
		t.Fatalf("failed to write user_id field: %v", err)
	}
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write file content: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/v1/statements/parse", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}
