package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// assertErrorCode checks that an error response carries the expected code.
func assertErrorCode(t *testing.T, result map[string]interface{}, want string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %v", result)
	}
	if got := errObj["code"]; got != want {
		t.Errorf("expected error code %q, got %v", want, got)
	}
}

// TestInvoiceFlow exercises the full billing lifecycle: log time, invoice it,
// collect payment, and verify the guards along the way.
func TestInvoiceFlow(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "freelancer@example.com", "password123")

	clientID := app.createClient(t, token, "Acme Corp")
	projectID := app.createProject(t, token, clientID, "Website Redesign")
	entry1 := app.logTime(t, token, projectID, 120)
	entry2 := app.logTime(t, token, projectID, 90)

	// Preview the next number without consuming it.
	rec := app.request("GET", "/api/v1/invoices/next-number", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("next-number failed: %d %s", rec.Code, rec.Body.String())
	}
	if got := parseJSON(t, rec)["next_number"]; got != "INV-0001" {
		t.Fatalf("expected next number INV-0001, got %v", got)
	}

	// Create the invoice, attaching both time entries.
	body := fmt.Sprintf(`{
		"client_id": %q,
		"line_items": [{"description": "Design work", "quantity": 10, "rate": 20}],
		"tax_rate": 8,
		"discount_amount": 10,
		"time_entry_ids": [%q, %q]
	}`, clientID, entry1, entry2)
	rec = app.request("POST", "/api/v1/invoices", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create invoice failed: %d %s", rec.Code, rec.Body.String())
	}
	invoice := parseJSON(t, rec)["invoice"].(map[string]interface{})
	invoiceID := invoice["id"].(string)

	if invoice["invoice_number"] != "INV-0001" {
		t.Errorf("expected invoice number INV-0001, got %v", invoice["invoice_number"])
	}
	if invoice["status"] != "draft" {
		t.Errorf("expected status draft, got %v", invoice["status"])
	}
	if invoice["subtotal"].(float64) != 200 {
		t.Errorf("expected subtotal 200, got %v", invoice["subtotal"])
	}
	if invoice["tax_amount"].(float64) != 16 {
		t.Errorf("expected tax 16, got %v", invoice["tax_amount"])
	}
	if invoice["total"].(float64) != 206 {
		t.Errorf("expected total 206, got %v", invoice["total"])
	}

	// Attached entries are now billed and locked against edits.
	rec = app.request("GET", "/api/v1/time-entries/"+entry1, "", token)
	entry := parseJSON(t, rec)["time_entry"].(map[string]interface{})
	if entry["is_billed"] != true {
		t.Errorf("expected entry to be billed, got %v", entry["is_billed"])
	}

	rec = app.request("PUT", "/api/v1/time-entries/"+entry1, `{"duration": 999}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 editing billed entry, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "TIME_ENTRY_BILLED")

	rec = app.request("DELETE", "/api/v1/time-entries/"+entry2, "", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 deleting billed entry, got %d", rec.Code)
	}

	// Collect payment.
	rec = app.request("PUT", "/api/v1/invoices/"+invoiceID+"/mark-paid",
		`{"payment_amount": 206, "payment_notes": "bank transfer"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark-paid failed: %d %s", rec.Code, rec.Body.String())
	}
	paid := parseJSON(t, rec)["invoice"].(map[string]interface{})
	if paid["status"] != "paid" {
		t.Errorf("expected status paid, got %v", paid["status"])
	}
	if paid["payment_amount"].(float64) != 206 {
		t.Errorf("expected payment amount 206, got %v", paid["payment_amount"])
	}

	// A paid invoice cannot be deleted.
	rec = app.request("DELETE", "/api/v1/invoices/"+invoiceID, "", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 deleting paid invoice, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "INVOICE_PAID")

	// The sequence advanced past the first invoice.
	entry3 := app.logTime(t, token, projectID, 60)
	body = fmt.Sprintf(`{
		"client_id": %q,
		"line_items": [{"description": "Follow-up", "quantity": 1, "rate": 100}],
		"time_entry_ids": [%q]
	}`, clientID, entry3)
	rec = app.request("POST", "/api/v1/invoices", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create second invoice failed: %d %s", rec.Code, rec.Body.String())
	}
	second := parseJSON(t, rec)["invoice"].(map[string]interface{})
	if second["invoice_number"] != "INV-0002" {
		t.Errorf("expected invoice number INV-0002, got %v", second["invoice_number"])
	}
	secondID := second["id"].(string)

	// Deleting the draft releases its time entries back to unbilled.
	rec = app.request("DELETE", "/api/v1/invoices/"+secondID, "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete draft invoice failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/time-entries/"+entry3, "", token)
	entry = parseJSON(t, rec)["time_entry"].(map[string]interface{})
	if entry["is_billed"] != false {
		t.Errorf("expected entry released after invoice delete, got is_billed=%v", entry["is_billed"])
	}

	rec = app.request("GET", "/api/v1/invoices/"+secondID, "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for deleted invoice, got %d", rec.Code)
	}
}

// TestInvoiceFlowStringAmounts verifies quantities and rates sent as strings
// are accepted the same as numbers.
func TestInvoiceFlowStringAmounts(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "strings@example.com", "password123")
	clientID := app.createClient(t, token, "String Co")

	body := fmt.Sprintf(`{
		"client_id": %q,
		"line_items": [
			{"description": "Consulting", "quantity": "2", "rate": "150.50"},
			{"description": "Misc", "quantity": "oops", "rate": 50}
		]
	}`, clientID)
	rec := app.request("POST", "/api/v1/invoices", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create invoice failed: %d %s", rec.Code, rec.Body.String())
	}
	invoice := parseJSON(t, rec)["invoice"].(map[string]interface{})

	// 2 x 150.50 = 301; the garbage quantity coerces to zero.
	if invoice["subtotal"].(float64) != 301 {
		t.Errorf("expected subtotal 301, got %v", invoice["subtotal"])
	}

	items := invoice["line_items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(items))
	}
	if amount := items[1].(map[string]interface{})["amount"].(float64); amount != 0 {
		t.Errorf("expected coerced line amount 0, got %v", amount)
	}
}

// TestInvoiceFlowUserIsolation verifies invoices and numbering are scoped per user.
func TestInvoiceFlowUserIsolation(t *testing.T) {
	app := setupApp(t)
	tokenA, _, _ := app.registerUser(t, "alice@example.com", "password123")
	tokenB, _, _ := app.registerUser(t, "bob@example.com", "password123")

	clientA := app.createClient(t, tokenA, "Alice Client")
	clientB := app.createClient(t, tokenB, "Bob Client")

	makeInvoice := func(token, clientID string) map[string]interface{} {
		body := fmt.Sprintf(`{
			"client_id": %q,
			"line_items": [{"description": "Work", "quantity": 1, "rate": 100}]
		}`, clientID)
		rec := app.request("POST", "/api/v1/invoices", body, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create invoice failed: %d %s", rec.Code, rec.Body.String())
		}
		return parseJSON(t, rec)["invoice"].(map[string]interface{})
	}

	invA := makeInvoice(tokenA, clientA)
	invB := makeInvoice(tokenB, clientB)

	// Sequences are independent, so both users get the same first number.
	if invA["invoice_number"] != "INV-0001" || invB["invoice_number"] != "INV-0001" {
		t.Errorf("expected both users to get INV-0001, got %v and %v",
			invA["invoice_number"], invB["invoice_number"])
	}

	// One user cannot read or invoice against another user's data.
	rec := app.request("GET", "/api/v1/invoices/"+invA["id"].(string), "", tokenB)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 reading foreign invoice, got %d", rec.Code)
	}

	body := fmt.Sprintf(`{
		"client_id": %q,
		"line_items": [{"description": "Work", "quantity": 1, "rate": 100}]
	}`, clientA)
	rec = app.request("POST", "/api/v1/invoices", body, tokenB)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 invoicing a foreign client, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "CLIENT_NOT_FOUND")
}
