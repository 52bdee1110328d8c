package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pinee-app/pinee-api/internal/domain"
	"github.com/pinee-app/pinee-api/internal/handler"
	"github.com/pinee-app/pinee-api/internal/infra/cache"
	"github.com/pinee-app/pinee-api/internal/infra/firebase"
	"github.com/pinee-app/pinee-api/internal/infra/observability"
	"github.com/pinee-app/pinee-api/internal/infra/resilience"
	"github.com/pinee-app/pinee-api/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// fakeRTDB emulates the Realtime Database REST surface the client uses:
// GET on a collection (with a date range filter), GET/PUT/DELETE on a
// child node, null for absent data.
type fakeRTDB struct {
	mu    sync.Mutex
	nodes map[string]json.RawMessage // "<collection>/<id>" -> record
}

func newFakeRTDB() *fakeRTDB {
	return &fakeRTDB{nodes: map[string]json.RawMessage{}}
}

func (f *fakeRTDB) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".json")

		switch r.Method {
		case http.MethodPut:
			var raw json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.nodes[path] = raw
			w.Write(raw)

		case http.MethodDelete:
			delete(f.nodes, path)
			w.Write([]byte("null"))

		case http.MethodGet:
			if raw, ok := f.nodes[path]; ok {
				w.Write(raw)
				return
			}
			// collection read: gather children, honoring the date filter
			from := strings.Trim(r.URL.Query().Get("startAt"), `"`)
			to := strings.Trim(r.URL.Query().Get("endAt"), `"`)
			children := map[string]json.RawMessage{}
			for key, raw := range f.nodes {
				if !strings.HasPrefix(key, path+"/") {
					continue
				}
				var node struct {
					Date string `json:"date"`
				}
				json.Unmarshal(raw, &node)
				if from != "" && node.Date < from {
					continue
				}
				if to != "" && node.Date > to {
					continue
				}
				children[strings.TrimPrefix(key, path+"/")] = raw
			}
			if len(children) == 0 {
				w.Write([]byte("null"))
				return
			}
			json.NewEncoder(w).Encode(children)

		default:
			http.Error(w, "unexpected method", http.StatusMethodNotAllowed)
		}
	}
}

// fakeIdentity emulates the two Firebase Auth endpoints the provider
// calls: Google sign-in and token lookup.
func fakeIdentity(userID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts:signInWithIdp":
			fmt.Fprintf(w, `{"localId": %q, "email": "u@example.com", "idToken": "session", "refreshToken": "refresh", "expiresIn": "3600"}`, userID)
		case "/accounts:lookup":
			fmt.Fprintf(w, `{"users": [{"localId": %q}]}`, userID)
		default:
			http.Error(w, "unexpected path", http.StatusNotFound)
		}
	}
}

func bearerToken(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	rtdb := httptest.NewServer(newFakeRTDB().handler())
	t.Cleanup(rtdb.Close)
	identity := httptest.NewServer(fakeIdentity("u1"))
	t.Cleanup(identity.Close)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	resilienceCfg := resilience.Config{
		MaxRetries:     1,
		InitialBackoff: 10 * time.Millisecond,
		MaxConcurrency: 10,
	}
	httpClient := &http.Client{Timeout: 5 * time.Second}

	store := firebase.NewClient(
		httpClient,
		rtdb.URL,
		"test-secret",
		resilience.NewCircuitBreaker("firebase"),
		resilience.NewBulkhead(10),
		resilienceCfg,
		logger,
	)
	authProvider := firebase.NewAuthProvider(
		httpClient,
		"api-key",
		identity.URL,
		identity.URL,
		cache.New[string](time.Minute),
		logger,
	)

	dashSvc := service.NewDashboardService(store, cache.New[[]domain.TransactionRecord](time.Minute), metrics, logger)
	txSvc := service.NewTransactionsService(store, dashSvc, logger)
	catSvc := service.NewCategoriesService(store, logger)
	goalSvc := service.NewGoalsService(store, logger)
	authSvc := service.NewAuthService(authProvider, logger)

	router := handler.NewRouter(handler.Services{
		Dashboard:    dashSvc,
		Transactions: txSvc,
		Categories:   catSvc,
		Goals:        goalSvc,
		Auth:         authSvc,
		Metrics:      metrics,
		Logger:       logger,
	})

	api := httptest.NewServer(router)
	t.Cleanup(api.Close)
	return api
}

func doJSON(t *testing.T, method, url, token string, payload any) *http.Response {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		body = &bytes.Buffer{}
		if err := json.NewEncoder(body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func TestIntegration_FullFlow(t *testing.T) {
	api := newTestAPI(t)
	token := bearerToken(t)
	today := time.Now().UTC().Format(domain.DateLayout)

	// sign in
	resp := doJSON(t, http.MethodPost, api.URL+"/v1/auth/google", "", map[string]string{"id_token": "google-token"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sign-in status = %d", resp.StatusCode)
	}
	var session domain.AuthSession
	json.NewDecoder(resp.Body).Decode(&session)
	resp.Body.Close()
	if session.UserID != "u1" {
		t.Fatalf("session user = %q", session.UserID)
	}

	// create an income and a paid expense
	resp = doJSON(t, http.MethodPost, api.URL+"/v1/transactions", token, map[string]any{
		"title": "salary", "amount": "1000", "date": today, "type": "income", "status": "received",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create income status = %d", resp.StatusCode)
	}
	var income domain.TransactionRecord
	json.NewDecoder(resp.Body).Decode(&income)
	resp.Body.Close()
	if income.ID == "" || income.UserID != "u1" {
		t.Fatalf("created income = %+v", income)
	}

	resp = doJSON(t, http.MethodPost, api.URL+"/v1/transactions", token, map[string]any{
		"title": "groceries", "amount": "300", "date": today, "type": "expense", "status": "paid",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create expense status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	// dashboard reflects both
	resp = doJSON(t, http.MethodGet, api.URL+"/v1/dashboard?mode=monthly", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d", resp.StatusCode)
	}
	var view domain.DashboardView
	json.NewDecoder(resp.Body).Decode(&view)
	resp.Body.Close()

	if !view.Totals.IncomeConfirmed.Equal(income.Amount) {
		t.Errorf("income confirmed = %s, want %s", view.Totals.IncomeConfirmed, income.Amount)
	}
	if view.Totals.ProjectedBalance.String() != "700" {
		t.Errorf("projected = %s, want 700", view.Totals.ProjectedBalance)
	}
	if view.Totals.ConsolidatedBalance.String() != "700" {
		t.Errorf("consolidated = %s, want 700", view.Totals.ConsolidatedBalance)
	}
	if len(view.Totals.RecentTransactions) != 2 {
		t.Errorf("recents = %d, want 2", len(view.Totals.RecentTransactions))
	}

	// listing defaults to the current month
	resp = doJSON(t, http.MethodGet, api.URL+"/v1/transactions", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var listResp struct {
		Transactions []domain.TransactionRecord `json:"transactions"`
	}
	json.NewDecoder(resp.Body).Decode(&listResp)
	resp.Body.Close()
	if len(listResp.Transactions) != 2 {
		t.Errorf("listed = %d, want 2", len(listResp.Transactions))
	}

	// delete the expense and confirm it is gone
	var expenseID string
	for _, rec := range listResp.Transactions {
		if rec.Type == domain.TypeExpense {
			expenseID = rec.ID
		}
	}
	resp = doJSON(t, http.MethodDelete, api.URL+"/v1/transactions/"+expenseID, token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, api.URL+"/v1/dashboard?mode=monthly", token, nil)
	json.NewDecoder(resp.Body).Decode(&view)
	resp.Body.Close()
	if view.Totals.ProjectedBalance.String() != "1000" {
		t.Errorf("projected after delete = %s, want 1000", view.Totals.ProjectedBalance)
	}
}

func TestIntegration_TransferToInvestment(t *testing.T) {
	api := newTestAPI(t)
	token := bearerToken(t)
	today := time.Now().UTC().Format(domain.DateLayout)

	resp := doJSON(t, http.MethodPost, api.URL+"/v1/transactions", token, map[string]any{
		"title": "bonus", "amount": "500", "date": today, "type": "income", "status": "received",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create income status = %d", resp.StatusCode)
	}
	var income domain.TransactionRecord
	json.NewDecoder(resp.Body).Decode(&income)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, api.URL+"/v1/transactions/"+income.ID+"/invest", token, map[string]any{
		"amount": "200",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("invest status = %d", resp.StatusCode)
	}
	var investment domain.TransactionRecord
	json.NewDecoder(resp.Body).Decode(&investment)
	resp.Body.Close()

	if investment.SourceTransactionID != income.ID {
		t.Errorf("source = %q, want %q", investment.SourceTransactionID, income.ID)
	}

	// the transferred amount leaves both balances and shows as invested
	resp = doJSON(t, http.MethodGet, api.URL+"/v1/dashboard?mode=monthly", token, nil)
	var view domain.DashboardView
	json.NewDecoder(resp.Body).Decode(&view)
	resp.Body.Close()

	if view.Totals.InvestedTotal.String() != "200" {
		t.Errorf("invested = %s, want 200", view.Totals.InvestedTotal)
	}
	if view.Totals.ConsolidatedBalance.String() != "300" {
		t.Errorf("consolidated = %s, want 300", view.Totals.ConsolidatedBalance)
	}
	if view.Totals.ProjectedBalance.String() != "300" {
		t.Errorf("projected = %s, want 300", view.Totals.ProjectedBalance)
	}
}

func TestIntegration_NotFound(t *testing.T) {
	api := newTestAPI(t)
	token := bearerToken(t)

	resp := doJSON(t, http.MethodGet, api.URL+"/v1/transactions/does-not-exist", token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
