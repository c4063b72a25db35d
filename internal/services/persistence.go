package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"afiliados-api/internal/asaas"
	"afiliados-api/internal/database"
	"afiliados-api/internal/models"
)

// ErrPersistence wraps storage-layer rejections (constraint violation,
// connectivity). Surfaced to the caller, never swallowed; the webhook
// layer decides whether to acknowledge regardless.
var ErrPersistence = errors.New("persistence error")

// PersistenceService translates provider entity shapes into local mirror
// rows and writes each through a single upsert. The mapping is explicit
// field by field — no reflection — so a provider adding fields can never
// silently change what we store.
type PersistenceService struct {
	store *database.Store
}

func NewPersistenceService(store *database.Store) *PersistenceService {
	return &PersistenceService{store: store}
}

// SaveCliente mirrors a provider customer. afiliadoID wins over the
// payload's externalReference when both are present.
func (s *PersistenceService) SaveCliente(customer *asaas.Customer, afiliadoID string) error {
	externalReference := customer.ExternalReference
	if afiliadoID != "" {
		externalReference = afiliadoID
	}

	cliente := &models.Cliente{
		AsaasID:           customer.ID,
		Name:              customer.Name,
		Email:             customer.Email,
		Phone:             customer.Phone,
		MobilePhone:       customer.MobilePhone,
		CpfCnpj:           customer.CpfCnpj,
		PostalCode:        customer.PostalCode,
		Address:           customer.Address,
		AddressNumber:     customer.AddressNumber,
		Province:          customer.Province,
		City:              customer.City,
		State:             customer.State,
		ExternalReference: externalReference,
		Deleted:           customer.Deleted,
	}

	if err := s.store.UpsertCliente(cliente); err != nil {
		return fmt.Errorf("%w: cliente %s: %v", ErrPersistence, customer.ID, err)
	}
	return nil
}

// SaveAssinatura mirrors a provider subscription.
func (s *PersistenceService) SaveAssinatura(subscription *asaas.Subscription, afiliadoID string) error {
	externalReference := subscription.ExternalReference
	if afiliadoID != "" {
		externalReference = afiliadoID
	}

	assinatura := &models.Assinatura{
		AsaasID:           subscription.ID,
		CustomerID:        subscription.Customer,
		BillingType:       subscription.BillingType,
		Value:             subscription.Value,
		Cycle:             subscription.Cycle,
		NextDueDate:       parseProviderDate(subscription.NextDueDate),
		Status:            subscription.Status,
		ExternalReference: externalReference,
		Deleted:           subscription.Deleted,
	}

	if err := s.store.UpsertAssinatura(assinatura); err != nil {
		return fmt.Errorf("%w: assinatura %s: %v", ErrPersistence, subscription.ID, err)
	}
	return nil
}

// SavePagamento mirrors a provider charge. An absent split defaults to an
// empty list; absent boolean flags default to false through the zero value.
func (s *PersistenceService) SavePagamento(payment *asaas.Payment, afiliadoID string) error {
	externalReference := payment.ExternalReference
	if afiliadoID != "" {
		externalReference = afiliadoID
	}

	split := payment.Split
	if split == nil {
		split = []asaas.SplitEntry{}
	}
	splitJSON, err := json.Marshal(split)
	if err != nil {
		return fmt.Errorf("%w: pagamento %s: %v", ErrPersistence, payment.ID, err)
	}

	pagamento := &models.Pagamento{
		AsaasID:           payment.ID,
		CustomerID:        payment.Customer,
		SubscriptionID:    payment.Subscription,
		Value:             payment.Value,
		NetValue:          payment.NetValue,
		DueDate:           parseProviderDate(payment.DueDate),
		PaymentDate:       parseProviderDate(payment.PaymentDate),
		Status:            payment.Status,
		BillingType:       payment.BillingType,
		ExternalReference: externalReference,
		InvoiceURL:        payment.InvoiceURL,
		Anticipated:       payment.Anticipated,
		Anticipable:       payment.Anticipable,
		Deleted:           payment.Deleted,
		Split:             string(splitJSON),
	}

	if err := s.store.UpsertPagamento(pagamento); err != nil {
		return fmt.Errorf("%w: pagamento %s: %v", ErrPersistence, payment.ID, err)
	}
	return nil
}

// parseProviderDate parses the provider's "2006-01-02" date strings.
// Empty or malformed dates map to nil rather than a zero time.
func parseProviderDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &t
}
