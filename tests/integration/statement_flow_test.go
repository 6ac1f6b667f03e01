package integration

import (
	"net/http"
	"testing"
)

const flowUserID = "0198b0f2-4c5a-7bb1-9e4d-6a2f8c3d5e01"

const flowCSV = `Date,Merchant,Amount
05/08/2025,HPCL Petrol Pump,2000
09/08/2025,Zomato Order,540
12/08/2025,Amazon Marketplace,1299.50
18/08/2025,Netflix Subscription,649
`

// TestStatementPipeline walks the full flow: upload a statement, read it
// back, categorize its transactions and run them through the reward engine.
func TestStatementPipeline(t *testing.T) {
	app := setupApp(t)

	// Upload.
	rec := app.upload(t, flowUserID, "aug.csv", flowCSV)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := parseJSON(t, rec)
	statement, ok := body["statement"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing statement in response: %v", body)
	}
	statementID, _ := statement["id"].(string)
	if statementID == "" {
		t.Fatal("expected a statement id")
	}
	if got := statement["status"]; got != "completed" {
		t.Errorf("expected status completed, got %v", got)
	}
	if got := statement["transaction_count"]; got != float64(4) {
		t.Errorf("expected 4 transactions, got %v", got)
	}
	summary, ok := body["summary"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing summary in response: %v", body)
	}
	if got := summary["total_amount"]; got != 4488.5 {
		t.Errorf("expected total 4488.50, got %v", got)
	}
	parsed, ok := body["transactions"].([]interface{})
	if !ok || len(parsed) != 4 {
		t.Fatalf("expected 4 transactions in parse response, got %v", body["transactions"])
	}
	if desc := parsed[0].(map[string]interface{})["description"]; desc != "HPCL Petrol Pump" {
		t.Errorf("expected date-ordered transactions in parse response, got first %v", desc)
	}

	// Read the statement back.
	rec = app.request("GET", "/api/v1/statements/"+statementID+"?user_id="+flowUserID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// List its transactions, paginated and ordered by date.
	rec = app.request("GET", "/api/v1/statements/"+statementID+"/transactions?user_id="+flowUserID+"&page=1&page_size=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	page := parseJSON(t, rec)
	if got := page["total_items"]; got != float64(4) {
		t.Errorf("expected 4 total items, got %v", got)
	}
	data, ok := page["data"].([]interface{})
	if !ok || len(data) != 2 {
		t.Fatalf("expected 2 rows on page 1, got %v", page["data"])
	}
	first := data[0].(map[string]interface{})
	if desc := first["description"]; desc != "HPCL Petrol Pump" {
		t.Errorf("expected earliest transaction first, got %v", desc)
	}

	// Categorize. The fuel and food rows match built-in rules; the rest
	// fall through to the merchant table or the fallback.
	rec = app.request("POST", "/api/v1/categorize", `{
		"user_id": "`+flowUserID+`",
		"transactions": [
			{"date": "2025-08-09", "description": "Zomato Order", "amount": 540},
			{"date": "2025-08-05", "description": "HPCL Petrol Pump", "amount": 2000},
			{"date": "2025-08-18", "description": "Netflix Subscription", "amount": 649}
		]
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	results, ok := parseJSON(t, rec)["results"].([]interface{})
	if !ok || len(results) != 3 {
		t.Fatalf("expected 3 results, got %v", results)
	}
	wantCategories := []string{"food", "fuel", "entertainment"}
	for i, want := range wantCategories {
		r := results[i].(map[string]interface{})
		if got := r["category"]; got != want {
			t.Errorf("result %d: expected category %s, got %v", i, want, got)
		}
	}

	// Rewards on a flat 1% card.
	rec = app.request("POST", "/api/v1/rewards/calculate", `{
		"card": {"name": "Everyday Cashback", "default_rate": 1.0},
		"transactions": [
			{"date": "2025-08-09", "description": "Zomato Order", "amount": 540, "category": "food"},
			{"date": "2025-08-05", "description": "HPCL Petrol Pump", "amount": 2000, "category": "fuel"}
		]
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rewards, ok := parseJSON(t, rec)["rewards"].(map[string]interface{})
	if !ok {
		t.Fatal("missing rewards in response")
	}
	if got := rewards["total_reward"]; got != 25.4 {
		t.Errorf("expected total reward 25.40, got %v", got)
	}
	if got := rewards["total_spend"]; got != float64(2540) {
		t.Errorf("expected total spend 2540, got %v", got)
	}
}

func TestCardComparisonFlow(t *testing.T) {
	app := setupApp(t)

	rec := app.request("POST", "/api/v1/cards/compare", `{
		"cards": [
			{"name": "Basic", "default_rate": 1.0},
			{"name": "Premium Flat", "default_rate": 2.0}
		],
		"transactions": [
			{"date": "2025-08-05", "description": "HPCL Petrol Pump", "amount": 10000, "category": "fuel"}
		]
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	comparisons, ok := parseJSON(t, rec)["comparisons"].([]interface{})
	if !ok || len(comparisons) != 2 {
		t.Fatalf("expected 2 comparisons, got %v", comparisons)
	}
	top := comparisons[0].(map[string]interface{})
	card := top["card"].(map[string]interface{})
	if got := card["name"]; got != "Premium Flat" {
		t.Errorf("expected Premium Flat ranked first, got %v", got)
	}
	if got := top["rank"]; got != float64(1) {
		t.Errorf("expected rank 1, got %v", got)
	}
	if got := top["total_reward"]; got != float64(200) {
		t.Errorf("expected reward 200, got %v", got)
	}

	rec = app.request("POST", "/api/v1/cards/optimize", `{
		"current_card": {"name": "Basic", "default_rate": 0.5},
		"alternatives": [
			{"name": "Premium Flat", "default_rate": 2.0}
		],
		"transactions": [
			{"date": "2025-08-05", "description": "HPCL Petrol Pump", "amount": 10000, "category": "fuel"}
		]
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	recommendations, ok := parseJSON(t, rec)["recommendations"].([]interface{})
	if !ok || len(recommendations) == 0 {
		t.Fatalf("expected recommendations, got %v", recommendations)
	}
	if got := recommendations[0].(map[string]interface{})["type"]; got != "card_switch" {
		t.Errorf("expected a card_switch recommendation first, got %v", got)
	}
}

func TestUploadValidation(t *testing.T) {
	app := setupApp(t)

	t.Run("unsupported file type", func(t *testing.T) {
		rec := app.upload(t, flowUserID, "statement.docx", "whatever")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		errBody := parseJSON(t, rec)["error"].(map[string]interface{})
		if got := errBody["code"]; got != "UNSUPPORTED_FILE_TYPE" {
			t.Errorf("expected UNSUPPORTED_FILE_TYPE, got %v", got)
		}
	})

	t.Run("unresolvable columns", func(t *testing.T) {
		rec := app.upload(t, flowUserID, "odd.csv", "Foo,Bar\n1,2\n")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
		}
		errBody := parseJSON(t, rec)["error"].(map[string]interface{})
		if got := errBody["code"]; got != "MISSING_COLUMNS" {
			t.Errorf("expected MISSING_COLUMNS, got %v", got)
		}
	})

	t.Run("invalid user id", func(t *testing.T) {
		rec := app.upload(t, "not-a-uuid", "aug.csv", flowCSV)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
