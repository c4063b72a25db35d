package services

import (
	"testing"

	"afiliados-api/internal/asaas"
)

func TestSavePagamentoDefaults(t *testing.T) {
	store := newTestStore(t)
	persistence := NewPersistenceService(store)

	payment := &asaas.Payment{
		ID:          "pay_1",
		Customer:    "cus_1",
		Value:       200,
		NetValue:    192.5,
		DueDate:     "2026-09-10",
		Status:      "PENDING",
		BillingType: "BOLETO",
	}
	if err := persistence.SavePagamento(payment, "af-1"); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetPagamento("pay_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Anticipated || got.Anticipable || got.Deleted {
		t.Errorf("boolean flags should default to false: %+v", got)
	}
	if got.Split != "[]" {
		t.Errorf("split = %q, want empty list", got.Split)
	}
	if got.DueDate == nil || got.DueDate.Format("2006-01-02") != "2026-09-10" {
		t.Errorf("due date not parsed: %v", got.DueDate)
	}
	if got.PaymentDate != nil {
		t.Errorf("absent payment date should map to nil, got %v", got.PaymentDate)
	}
	if got.ExternalReference != "af-1" {
		t.Errorf("external reference = %q, want af-1", got.ExternalReference)
	}
}

func TestSavePagamentoKeepsSplit(t *testing.T) {
	store := newTestStore(t)
	persistence := NewPersistenceService(store)

	payment := &asaas.Payment{
		ID:       "pay_2",
		Customer: "cus_1",
		Value:    100,
		Status:   "CONFIRMED",
		Split: []asaas.SplitEntry{
			{WalletID: "wallet-platform", PercentualValue: 70},
			{WalletID: "wallet-af", PercentualValue: 30},
		},
	}
	if err := persistence.SavePagamento(payment, ""); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetPagamento("pay_2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := `[{"walletId":"wallet-platform","percentualValue":70},{"walletId":"wallet-af","percentualValue":30}]`
	if got.Split != want {
		t.Errorf("split = %q, want %q", got.Split, want)
	}
}

func TestSaveClienteExternalReferencePrecedence(t *testing.T) {
	store := newTestStore(t)
	persistence := NewPersistenceService(store)

	customer := &asaas.Customer{ID: "cus_1", Name: "Maria", ExternalReference: "af-payload"}

	if err := persistence.SaveCliente(customer, "af-param"); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.GetCliente("cus_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ExternalReference != "af-param" {
		t.Errorf("external reference = %q, want the explicit parameter", got.ExternalReference)
	}

	// Without an explicit affiliate the payload's reference is kept.
	if err := persistence.SaveCliente(customer, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = store.GetCliente("cus_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ExternalReference != "af-payload" {
		t.Errorf("external reference = %q, want af-payload", got.ExternalReference)
	}
}

func TestSaveAssinaturaMapsFields(t *testing.T) {
	store := newTestStore(t)
	persistence := NewPersistenceService(store)

	subscription := &asaas.Subscription{
		ID:          "sub_1",
		Customer:    "cus_1",
		BillingType: "CREDIT_CARD",
		Value:       89.9,
		Cycle:       "MONTHLY",
		NextDueDate: "2026-10-01",
		Status:      "ACTIVE",
	}
	if err := persistence.SaveAssinatura(subscription, "af-1"); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetAssinatura("sub_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CustomerID != "cus_1" || got.Value != 89.9 || got.Cycle != "MONTHLY" || got.Status != "ACTIVE" {
		t.Errorf("unexpected row: %+v", got)
	}
	if got.NextDueDate == nil {
		t.Error("next due date not parsed")
	}
}
