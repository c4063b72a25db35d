package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"afiliados-api/internal/asaas"
	"afiliados-api/internal/config"
	"afiliados-api/internal/models"
)

func TestComputeGoalProgress(t *testing.T) {
	tests := []struct {
		name           string
		goal           float64
		subscriptions  float64
		payments       float64
		wantProgress   float64
		wantPercentage float64
		wantRemaining  float64
	}{
		{"over goal capped remaining", 1000, 600, 500, 1100, 110, 0},
		{"under goal", 1000, 100, 100, 200, 20, 800},
		{"exactly on goal", 1000, 700, 300, 1000, 100, 0},
		{"far over goal caps at 120", 1000, 2000, 1000, 3000, 120, 0},
		{"zero goal", 0, 100, 100, 200, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeGoalProgress(tt.goal, tt.subscriptions, tt.payments)
			if got.Progress != tt.wantProgress {
				t.Errorf("progress = %f, want %f", got.Progress, tt.wantProgress)
			}
			if got.Percentage != tt.wantPercentage {
				t.Errorf("percentage = %f, want %f", got.Percentage, tt.wantPercentage)
			}
			if got.Remaining != tt.wantRemaining {
				t.Errorf("remaining = %f, want %f", got.Remaining, tt.wantRemaining)
			}
		})
	}
}

// dashboardProvider serves per-affiliate payment/subscription/customer
// lists, failing every list for affiliates in failFor.
type dashboardProvider struct {
	payments      map[string][]asaas.Payment
	subscriptions map[string][]asaas.Subscription
	customers     map[string][]asaas.Customer
	failFor       map[string]bool
}

func (d *dashboardProvider) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ref := r.URL.Query().Get("externalReference")
		if d.failFor[ref] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		encode := func(v interface{}) {
			json.NewEncoder(w).Encode(v)
		}
		switch r.URL.Path {
		case "/payments":
			encode(struct {
				HasMore bool            `json:"hasMore"`
				Data    []asaas.Payment `json:"data"`
			}{Data: d.payments[ref]})
		case "/subscriptions":
			encode(struct {
				HasMore bool                 `json:"hasMore"`
				Data    []asaas.Subscription `json:"data"`
			}{Data: d.subscriptions[ref]})
		case "/customers":
			if d.customers == nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			encode(struct {
				HasMore bool             `json:"hasMore"`
				Data    []asaas.Customer `json:"data"`
			}{Data: d.customers[ref]})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newDashboardClient(t *testing.T, provider *dashboardProvider) *asaas.Client {
	t.Helper()
	srv := httptest.NewServer(provider.handler())
	t.Cleanup(srv.Close)
	return asaas.New(&config.Config{
		AsaasAPIURL:        srv.URL,
		AsaasAPIKey:        "test-key",
		HTTPTimeoutSeconds: 5,
	})
}

func TestComputeReceivablesFiltersStatuses(t *testing.T) {
	provider := &dashboardProvider{
		payments: map[string][]asaas.Payment{
			"af-1": {
				{ID: "pay_1", Status: models.PaymentReceived, Value: 100},
				{ID: "pay_2", Status: models.PaymentConfirmed, Value: 50},
				{ID: "pay_3", Status: models.PaymentPending, Value: 999},
				{ID: "pay_4", Status: models.PaymentOverdue, Value: 999},
			},
		},
		subscriptions: map[string][]asaas.Subscription{
			"af-1": {
				{ID: "sub_1", Status: models.SubscriptionActive, Value: 200},
				{ID: "sub_2", Status: models.SubscriptionActive, Value: 100},
				{ID: "sub_3", Status: models.SubscriptionExpired, Value: 999},
			},
		},
		customers: map[string][]asaas.Customer{
			"af-1": {{ID: "cus_1"}, {ID: "cus_2"}, {ID: "cus_3", Deleted: true}},
		},
	}
	svc := NewDashboardService(newDashboardClient(t, provider), newTestStore(t), nil, 3, 4)

	got, err := svc.ComputeReceivables(context.Background(), "af-1")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if got.PagamentosAReceber != 150 {
		t.Errorf("pagamentos_a_receber = %f, want 150 (PENDING/OVERDUE excluded)", got.PagamentosAReceber)
	}
	// 3% of the 300 in active subscription value.
	if got.MensalidadesAReceber != 9 {
		t.Errorf("mensalidades_a_receber = %f, want 9", got.MensalidadesAReceber)
	}
	if got.TotalAReceber != 159 {
		t.Errorf("total_a_receber = %f, want 159", got.TotalAReceber)
	}
	if got.TotalClientes != 2 {
		t.Errorf("total_clientes = %d, want 2 (deleted excluded)", got.TotalClientes)
	}
	if got.Detalhes.PagamentosConfirmados != 2 || got.Detalhes.AssinaturasAtivas != 2 {
		t.Errorf("detalhes = %+v", got.Detalhes)
	}
}

func TestComputeAllAffiliatesIsolatesFailures(t *testing.T) {
	provider := &dashboardProvider{
		payments: map[string][]asaas.Payment{
			"af-good": {{ID: "pay_1", Status: models.PaymentConfirmed, Value: 100}},
		},
		subscriptions: map[string][]asaas.Subscription{
			"af-good": {{ID: "sub_1", Status: models.SubscriptionActive, Value: 100}},
		},
		customers: map[string][]asaas.Customer{
			"af-good": {{ID: "cus_1"}},
		},
		failFor: map[string]bool{"af-bad": true},
	}

	store, db := newTestStoreDB(t)
	seedAfiliado(t, db, "af-good", "Afiliada Boa")
	seedAfiliado(t, db, "af-bad", "Afiliado Fora")

	svc := NewDashboardService(newDashboardClient(t, provider), store, nil, 3, 4)

	got, err := svc.ComputeAllAffiliates(context.Background())
	if err != nil {
		t.Fatalf("compute all: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (failed affiliate excluded, sibling kept)", len(got))
	}
	if got[0].AfiliadoID != "af-good" {
		t.Errorf("kept affiliate = %s, want af-good", got[0].AfiliadoID)
	}
	if got[0].Metrics.TotalAReceber != 103 {
		t.Errorf("total_a_receber = %f, want 103", got[0].Metrics.TotalAReceber)
	}
}

func TestComputeReceivablesFallsBackToMirrorForCustomers(t *testing.T) {
	// Customers endpoint missing: provider returns 404, and the customer
	// count comes from the local mirror instead.
	provider := &dashboardProvider{
		payments:      map[string][]asaas.Payment{"af-1": {}},
		subscriptions: map[string][]asaas.Subscription{"af-1": {}},
	}
	store := newTestStore(t)
	persistence := NewPersistenceService(store)
	if err := persistence.SaveCliente(&asaas.Customer{ID: "cus_1", Name: "Maria"}, "af-1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := NewDashboardService(newDashboardClient(t, provider), store, nil, 3, 4)
	got, err := svc.ComputeReceivables(context.Background(), "af-1")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if got.TotalClientes != 1 {
		t.Errorf("total_clientes = %d, want 1 from mirror", got.TotalClientes)
	}
}
