package asaas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"afiliados-api/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(&config.Config{
		AsaasAPIURL:           srv.URL,
		AsaasAPIKey:           "test-key",
		AsaasWalletID:         "wallet-platform",
		PlatformSplitPercent:  70,
		AffiliateSplitPercent: 30,
		HTTPTimeoutSeconds:    5,
	})
	client.backoff = time.Millisecond
	return client
}

func TestCreateCustomer(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("access_token") != "test-key" {
			t.Errorf("missing access_token header")
		}
		if r.URL.Path != "/customers" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req CustomerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(Customer{ID: "cus_1", Name: req.Name, ExternalReference: req.ExternalReference})
	}))

	customer, err := client.CreateCustomer(context.Background(), CustomerRequest{
		Name:              "Maria Silva",
		CpfCnpj:           "12345678909",
		ExternalReference: "af-1",
	})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if customer.ID != "cus_1" || customer.Name != "Maria Silva" {
		t.Errorf("unexpected customer: %+v", customer)
	}
}

func TestCreateCustomerRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"errors":[{"code":"invalid_cpfCnpj","description":"CPF/CNPJ inválido"}]}`)
	}))

	_, err := client.CreateCustomer(context.Background(), CustomerRequest{Name: "X", CpfCnpj: "bad"})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("want ErrRejected, got %v", err)
	}
}

func TestDoRetriesOnRetryableStatus(t *testing.T) {
	attempts := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(Customer{ID: "cus_1"})
	}))

	customer, err := client.GetCustomer(context.Background(), "cus_1")
	if err != nil {
		t.Fatalf("GetCustomer after retries: %v", err)
	}
	if customer.ID != "cus_1" {
		t.Errorf("unexpected customer: %+v", customer)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	attempts := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.GetCustomer(context.Background(), "cus_1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDoDoesNotRetryPlainServerError(t *testing.T) {
	attempts := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.GetCustomer(context.Background(), "cus_1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (500 is not retryable)", attempts)
	}
}

func TestListPaymentsFollowsPagination(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")
		switch offset {
		case "0":
			json.NewEncoder(w).Encode(page[Payment]{
				HasMore: true,
				Data:    []Payment{{ID: "pay_1"}, {ID: "pay_2"}},
			})
		case "2":
			json.NewEncoder(w).Encode(page[Payment]{
				HasMore: false,
				Data:    []Payment{{ID: "pay_3"}},
			})
		default:
			t.Errorf("unexpected offset %q", offset)
			w.WriteHeader(http.StatusBadRequest)
		}
	}))

	payments, err := client.ListPayments(context.Background(), "af-1")
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if len(payments) != 3 {
		t.Fatalf("len = %d, want 3", len(payments))
	}
	if payments[2].ID != "pay_3" {
		t.Errorf("last payment = %s, want pay_3", payments[2].ID)
	}
}

func TestListPaymentsEmptyResultIsNotAnError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(page[Payment]{HasMore: false, Data: nil})
	}))

	payments, err := client.ListPayments(context.Background(), "af-1")
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if len(payments) != 0 {
		t.Errorf("len = %d, want 0", len(payments))
	}
}

func TestBuildSplit(t *testing.T) {
	tests := []struct {
		name             string
		platformWallet   string
		affiliateWallet  string
		platformPercent  float64
		affiliatePercent float64
		wantErr          bool
	}{
		{"both wallets", "wallet-platform", "wallet-af", 70, 30, false},
		{"missing affiliate wallet", "wallet-platform", "", 70, 30, true},
		{"missing platform wallet", "", "wallet-af", 70, 30, true},
		{"percentages do not sum to 100", "wallet-platform", "wallet-af", 70, 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &Client{
				walletID:         tt.platformWallet,
				platformPercent:  tt.platformPercent,
				affiliatePercent: tt.affiliatePercent,
			}
			split, err := client.buildSplit(tt.affiliateWallet)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSplitConfig) {
					t.Fatalf("want ErrInvalidSplitConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildSplit: %v", err)
			}
			if len(split) != 2 {
				t.Fatalf("split entries = %d, want 2", len(split))
			}
			if sum := split[0].PercentualValue + split[1].PercentualValue; sum != 100 {
				t.Errorf("percentual sum = %f, want 100", sum)
			}
			if split[0].WalletID != tt.platformWallet || split[1].WalletID != tt.affiliateWallet {
				t.Errorf("wallet order wrong: %+v", split)
			}
		})
	}
}

func TestCreateSubscriptionWithSplitAttachesSplit(t *testing.T) {
	var got SubscriptionRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(Subscription{ID: "sub_1", Status: "ACTIVE"})
	}))

	_, err := client.CreateSubscriptionWithSplit(context.Background(), SubscriptionRequest{
		Customer:    "cus_1",
		BillingType: "CREDIT_CARD",
		Value:       100,
		NextDueDate: "2026-10-01",
		Cycle:       "MONTHLY",
	}, "wallet-af")
	if err != nil {
		t.Fatalf("CreateSubscriptionWithSplit: %v", err)
	}
	if len(got.Split) != 2 {
		t.Fatalf("request split entries = %d, want 2", len(got.Split))
	}
	if got.Split[0].PercentualValue+got.Split[1].PercentualValue != 100 {
		t.Errorf("percentual sum != 100: %+v", got.Split)
	}
}

func TestCreateSubscriptionWithSplitFailsFastWithoutWallet(t *testing.T) {
	requested := false
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))

	_, err := client.CreateSubscriptionWithSplit(context.Background(), SubscriptionRequest{}, "")
	if !errors.Is(err, ErrInvalidSplitConfig) {
		t.Fatalf("want ErrInvalidSplitConfig, got %v", err)
	}
	if requested {
		t.Error("no request should be issued on split config errors")
	}
}

func TestTokenizeCardRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"errors":[{"code":"invalid_creditCard","description":"Cartão inválido"}]}`)
	}))

	_, err := client.TokenizeCard(context.Background(), CardTokenRequest{Customer: "cus_1"})
	if !errors.Is(err, ErrTokenizationFailed) {
		t.Fatalf("want ErrTokenizationFailed, got %v", err)
	}
}

func TestTokenizeCardReturnsOpaqueToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(CardToken{Token: "tok_abc", Brand: "VISA", Last4: "8829"})
	}))

	token, err := client.TokenizeCard(context.Background(), CardTokenRequest{
		Customer: "cus_1",
		CreditCard: CreditCard{
			HolderName:  "MARIA SILVA",
			Number:      "5162306219378829",
			ExpiryMonth: "05",
			ExpiryYear:  "2028",
			CCV:         "318",
		},
	})
	if err != nil {
		t.Fatalf("TokenizeCard: %v", err)
	}
	if token.Token != "tok_abc" || token.Brand != "VISA" || token.Last4 != "8829" {
		t.Errorf("unexpected token: %+v", token)
	}
}

func TestNotConfigured(t *testing.T) {
	client := New(&config.Config{AsaasAPIURL: "http://unused", HTTPTimeoutSeconds: 1})
	_, err := client.GetCustomer(context.Background(), "cus_1")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
}
