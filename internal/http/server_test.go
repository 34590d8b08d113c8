package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kopilka/internal/amqp"
	"kopilka/internal/core"
	"kopilka/internal/ledger"
	"kopilka/internal/storage/memory"
)

const testAPIKey = "test-api-key"

var testNow = time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	s := NewServer("127.0.0.1:0", st, ledger.NewService(st), testAPIKey, nil, nil)
	s.now = func() time.Time { return testNow }
	return s, st
}

func doRequest(t *testing.T, s *Server, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, parsed
}

func TestTransactionEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"date":        "2025-05-10",
		"amount":      "1500.50",
		"category":    "Питание",
		"description": "Продукты",
		"type":        "expense",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	txn := resp["transaction"].(map[string]any)
	if txn["amount"] != "1500.50" {
		t.Errorf("amount = %v, want 1500.50", txn["amount"])
	}
	id := txn["id"].(string)
	if id == "" {
		t.Fatal("created transaction has no id")
	}

	rec, resp = doRequest(t, s, http.MethodGet, "/api/transactions", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if list := resp["transactions"].([]any); len(list) != 1 {
		t.Errorf("list len = %d, want 1", len(list))
	}

	rec, _ = doRequest(t, s, http.MethodPut, "/api/transactions/"+id, map[string]any{
		"date":     "2025-05-11",
		"amount":   1600, // numeric amounts are accepted too
		"category": "Питание",
		"type":     "expense",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body)
	}

	rec, _ = doRequest(t, s, http.MethodDelete, "/api/transactions/"+id, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec, _ = doRequest(t, s, http.MethodDelete, "/api/transactions/"+id, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestCreateTransactionRejectsBadPayload(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"bad date", map[string]any{"date": "10.05.2025", "amount": "10", "category": "x", "type": "expense"}},
		{"zero amount", map[string]any{"date": "2025-05-10", "amount": "0", "category": "x", "type": "expense"}},
		{"negative amount", map[string]any{"date": "2025-05-10", "amount": "-5", "category": "x", "type": "expense"}},
		{"bad type", map[string]any{"date": "2025-05-10", "amount": "10", "category": "x", "type": "transfer"}},
		{"empty category", map[string]any{"date": "2025-05-10", "amount": "10", "category": "", "type": "expense"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doRequest(t, s, http.MethodPost, "/api/transactions", tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body)
			}
			if success, _ := resp["success"].(bool); success {
				t.Error("success = true, want false")
			}
		})
	}
}

func TestDebtPaymentEndpoint(t *testing.T) {
	s, st := newTestServer(t)

	debt, err := st.CreateDebt(context.Background(), core.Debt{
		Name:          "Кредитная карта",
		InitialAmount: core.Money{Cents: 10000000},
		CurrentAmount: core.Money{Cents: 8000000},
		DueDay:        20,
		StartDate:     core.NewDate(2025, 2, 20),
	})
	if err != nil {
		t.Fatalf("seed debt: %v", err)
	}

	rec, resp := doRequest(t, s, http.MethodPost, "/api/debts/payment", map[string]any{
		"id":     debt.ID,
		"amount": "10000",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("payment status = %d, body %s", rec.Code, rec.Body)
	}

	updated := resp["debt"].(map[string]any)
	if updated["currentAmount"] != "70000.00" {
		t.Errorf("currentAmount = %v, want 70000.00", updated["currentAmount"])
	}
	txn := resp["transaction"].(map[string]any)
	if txn["category"] != core.CategoryDebts {
		t.Errorf("transaction category = %v, want %v", txn["category"], core.CategoryDebts)
	}
	if txn["date"] != "2025-05-20" {
		t.Errorf("transaction date = %v, want 2025-05-20", txn["date"])
	}

	rec, _ = doRequest(t, s, http.MethodPost, "/api/debts/payment", map[string]any{
		"id":     "missing",
		"amount": "10000",
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("payment on missing debt status = %d, want 404", rec.Code)
	}
}

func TestDepositInterestAndCloseEndpoints(t *testing.T) {
	s, st := newTestServer(t)

	deposit, err := st.CreateDeposit(context.Background(), core.Deposit{
		Name:             "Накопительный вклад",
		Amount:           core.Money{Cents: 20000000},
		InitialAmount:    core.Money{Cents: 20000000},
		InterestRate:     7.5,
		StartDate:        core.NewDate(2025, 3, 1),
		EndDate:          core.NewDate(2026, 3, 1),
		Bank:             "Сбербанк",
		IsCapitalized:    true,
		PaymentFrequency: core.PayoutMonthly,
		Status:           core.DepositActive,
	})
	if err != nil {
		t.Fatalf("seed deposit: %v", err)
	}

	rec, resp := doRequest(t, s, http.MethodPost, "/api/deposits/"+deposit.ID+"/interest", map[string]any{
		"amount": "1250",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("interest status = %d, body %s", rec.Code, rec.Body)
	}
	dep := resp["deposit"].(map[string]any)
	if dep["amount"] != "201250.00" {
		t.Errorf("amount after interest = %v, want 201250.00", dep["amount"])
	}
	txn := resp["transaction"].(map[string]any)
	if txn["category"] != core.CategoryDepositInterest {
		t.Errorf("transaction category = %v, want %v", txn["category"], core.CategoryDepositInterest)
	}

	rec, resp = doRequest(t, s, http.MethodPost, "/api/deposits/"+deposit.ID+"/close", map[string]any{
		"closeAmount": "201250",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("close status = %d, body %s", rec.Code, rec.Body)
	}
	dep = resp["deposit"].(map[string]any)
	if dep["status"] != string(core.DepositClosed) {
		t.Errorf("status after close = %v, want closed", dep["status"])
	}

	// Closed deposits accept neither interest nor a second close.
	rec, _ = doRequest(t, s, http.MethodPost, "/api/deposits/"+deposit.ID+"/interest", map[string]any{
		"amount": "100",
	}, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("interest on closed status = %d, want 409", rec.Code)
	}
	rec, _ = doRequest(t, s, http.MethodPost, "/api/deposits/"+deposit.ID+"/close", map[string]any{
		"closeAmount": "100",
	}, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("second close status = %d, want 409", rec.Code)
	}
}

func TestExternalTransactionEndpoint(t *testing.T) {
	s, st := newTestServer(t)

	t.Run("rejects missing api key", func(t *testing.T) {
		rec, _ := doRequest(t, s, http.MethodPost, "/api/external/transaction", map[string]any{
			"value": 100,
		}, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("rejects wrong api key", func(t *testing.T) {
		rec, _ := doRequest(t, s, http.MethodPost, "/api/external/transaction", map[string]any{
			"value": 100,
		}, map[string]string{"x-api-key": "wrong"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("creates with defaults", func(t *testing.T) {
		rec, resp := doRequest(t, s, http.MethodPost, "/api/external/transaction", map[string]any{
			"value": "250.75",
		}, map[string]string{"x-api-key": testAPIKey})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
		}
		txn := resp["transaction"].(map[string]any)
		if txn["category"] != core.CategoryOther {
			t.Errorf("category = %v, want %v", txn["category"], core.CategoryOther)
		}
		if txn["type"] != string(core.Expense) {
			t.Errorf("type = %v, want expense", txn["type"])
		}
		if txn["date"] != "2025-05-20" {
			t.Errorf("date = %v, want 2025-05-20", txn["date"])
		}
	})

	t.Run("requires value", func(t *testing.T) {
		rec, _ := doRequest(t, s, http.MethodPost, "/api/external/transaction", map[string]any{
			"cat": "Питание",
		}, map[string]string{"x-api-key": testAPIKey})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	txns, _ := st.ListTransactions(context.Background())
	if len(txns) != 1 {
		t.Errorf("stored transactions = %d, want 1", len(txns))
	}
}

type capturingPublisher struct {
	messages []*amqp.TransactionMessage
	fail     bool
}

func (p *capturingPublisher) PublishTransaction(_ context.Context, msg *amqp.TransactionMessage) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.messages = append(p.messages, msg)
	return nil
}

func TestExternalTransactionQueuedWhenPublisherConfigured(t *testing.T) {
	s, st := newTestServer(t)
	pub := &capturingPublisher{}
	s.publisher = pub

	rec, resp := doRequest(t, s, http.MethodPost, "/api/external/transaction", map[string]any{
		"value":    "99.90",
		"cat":      "Питание",
		"isIncome": false,
	}, map[string]string{"x-api-key": testAPIKey})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body %s", rec.Code, rec.Body)
	}
	if resp["queued"] != true {
		t.Errorf("queued = %v, want true", resp["queued"])
	}

	if len(pub.messages) != 1 {
		t.Fatalf("published messages = %d, want 1", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.Amount != "99.90" || msg.Category != "Питание" || msg.Type != string(core.Expense) {
		t.Errorf("published message = %+v", msg)
	}
	if msg.Date != "2025-05-20" {
		t.Errorf("message date = %q, want 2025-05-20", msg.Date)
	}
	if msg.Source != "api" {
		t.Errorf("message source = %q, want api", msg.Source)
	}

	// Queued, not stored: the worker is the writer on this path.
	txns, _ := st.ListTransactions(context.Background())
	if len(txns) != 0 {
		t.Errorf("stored transactions = %d, want 0", len(txns))
	}
}

func TestExternalTransactionFallsBackWhenPublishFails(t *testing.T) {
	s, st := newTestServer(t)
	s.publisher = &capturingPublisher{fail: true}

	rec, resp := doRequest(t, s, http.MethodPost, "/api/external/transaction", map[string]any{
		"value": "42.00",
	}, map[string]string{"x-api-key": testAPIKey})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body)
	}
	if _, ok := resp["transaction"]; !ok {
		t.Fatalf("response missing transaction: %v", resp)
	}

	txns, _ := st.ListTransactions(context.Background())
	if len(txns) != 1 {
		t.Errorf("stored transactions = %d, want 1", len(txns))
	}
}

func TestDemoInitEndpoint(t *testing.T) {
	s, st := newTestServer(t)

	rec, _ := doRequest(t, s, http.MethodPost, "/api/demo/init", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("demo init status = %d, body %s", rec.Code, rec.Body)
	}

	ctx := context.Background()
	txns, _ := st.ListTransactions(ctx)
	if len(txns) != 6 {
		t.Errorf("transactions = %d, want 6", len(txns))
	}
	items, _ := st.ListRecurringItems(ctx)
	if len(items) != 4 {
		t.Errorf("recurring items = %d, want 4", len(items))
	}
	debts, _ := st.ListDebts(ctx)
	if len(debts) != 2 {
		t.Errorf("debts = %d, want 2", len(debts))
	}
	deposits, _ := st.ListDeposits(ctx)
	if len(deposits) != 3 {
		t.Errorf("deposits = %d, want 3", len(deposits))
	}

	rec, resp := doRequest(t, s, http.MethodPost, "/api/demo/init", nil, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("second demo init status = %d, want 409", rec.Code)
	}
	if success, _ := resp["success"].(bool); success {
		t.Error("second demo init success = true, want false")
	}
}

func TestOverviewEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec, _ := doRequest(t, s, http.MethodPost, "/api/demo/init", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("demo init status = %d", rec.Code)
	}

	rec, resp := doRequest(t, s, http.MethodGet, "/api/overview", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("overview status = %d, body %s", rec.Code, rec.Body)
	}

	overview := resp["overview"].(map[string]any)
	// Demo data: +100000 +20000 -15000 -5000 +100000 -10000 = 190000.
	if overview["totalBalance"] != "190000.00" {
		t.Errorf("totalBalance = %v, want 190000.00", overview["totalBalance"])
	}
	// Recurring: +100000 -15000 -20000 -5000 = 60000 monthly net;
	// debt 430000 → ceil(430000/60000) = 8 months.
	be, ok := overview["breakEven"].(map[string]any)
	if !ok {
		t.Fatalf("breakEven missing in %v", overview)
	}
	if be["months"] != float64(8) {
		t.Errorf("breakEven months = %v, want 8", be["months"])
	}

	byBank := resp["depositsByBank"].([]any)
	if len(byBank) != 3 {
		t.Errorf("depositsByBank len = %d, want 3", len(byBank))
	}
	total := 0.0
	for _, raw := range byBank {
		total += raw.(map[string]any)["percentage"].(float64)
	}
	if total < 99.999 || total > 100.001 {
		t.Errorf("bank percentages sum = %v, want 100", total)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodGet, "/api/categories", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	income := resp["income"].([]any)
	expense := resp["expense"].([]any)
	if len(income) == 0 || len(expense) == 0 {
		t.Fatalf("empty taxonomy: income=%d expense=%d", len(income), len(expense))
	}
	// "Долги" is a reserved ledger category, not part of the offered
	// taxonomy; both lists end in the catch-all.
	if expense[len(expense)-1] != core.CategoryOther {
		t.Errorf("expense categories end with %v, want %q", expense[len(expense)-1], core.CategoryOther)
	}
	if income[len(income)-1] != core.CategoryOther {
		t.Errorf("income categories end with %v, want %q", income[len(income)-1], core.CategoryOther)
	}
	for _, c := range expense {
		if c == core.CategoryDebts {
			t.Errorf("expense categories unexpectedly include %q", core.CategoryDebts)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec, _ := doRequest(t, s, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
	rec, resp := doRequest(t, s, http.MethodGet, "/readyz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d", rec.Code)
	}
	if resp["status"] != "ready" {
		t.Errorf("readyz status field = %v, want ready", resp["status"])
	}
}
