package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"afiliados-api/internal/asaas"
	"afiliados-api/pkg/logging"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventEnvelope is the provider's webhook body: an event discriminator and
// one nested resource payload.
type EventEnvelope struct {
	ID           string              `json:"id"`
	Event        string              `json:"event"`
	Payment      *asaas.Payment      `json:"payment"`
	Subscription *asaas.Subscription `json:"subscription"`
	Customer     *asaas.Customer     `json:"customer"`
	Checkout     *Checkout           `json:"checkout"`
}

// Checkout is the completion variant that carries embedded contact details
// instead of a provider customer id.
type Checkout struct {
	ID                string            `json:"id"`
	Status            string            `json:"status"`
	Customer          string            `json:"customer"`
	ExternalReference string            `json:"externalReference"`
	CustomerData      *CheckoutCustomer `json:"customerData"`
}

type CheckoutCustomer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	CpfCnpj string `json:"cpfCnpj"`
}

// Process outcomes, reported back to the HTTP layer and to tests.
const (
	OutcomeDispatched = "dispatched"
	OutcomeIgnored    = "ignored"
	OutcomeDuplicate  = "duplicate"
	OutcomeFailed     = "failed"
)

type eventHandler func(ctx context.Context, envelope *EventEnvelope) error

// WebhookProcessor classifies provider events and dispatches them to the
// persistence mapper. The event registry is explicit: every kind we act on
// is enumerated, and anything else resolves to a no-op that is logged and
// acknowledged, so new provider event types never break ingestion.
type WebhookProcessor struct {
	persistence *PersistenceService
	events      *EventLog
	handlers    map[string]eventHandler
}

func NewWebhookProcessor(persistence *PersistenceService, events *EventLog) *WebhookProcessor {
	p := &WebhookProcessor{
		persistence: persistence,
		events:      events,
	}
	p.handlers = map[string]eventHandler{
		"PAYMENT_CREATED":   p.handlePayment,
		"PAYMENT_UPDATED":   p.handlePayment,
		"PAYMENT_CONFIRMED": p.handlePayment,
		"PAYMENT_RECEIVED":  p.handlePayment,
		"PAYMENT_OVERDUE":   p.handlePayment,
		"PAYMENT_REFUNDED":  p.handlePayment,
		"PAYMENT_RESTORED":  p.handlePayment,
		"PAYMENT_DELETED":   p.handlePaymentDeleted,

		"SUBSCRIPTION_CREATED":     p.handleSubscription,
		"SUBSCRIPTION_UPDATED":     p.handleSubscription,
		"SUBSCRIPTION_INACTIVATED": p.handleSubscription,
		"SUBSCRIPTION_DELETED":     p.handleSubscriptionDeleted,

		"CUSTOMER_CREATED": p.handleCustomer,
		"CUSTOMER_UPDATED": p.handleCustomer,
		"CUSTOMER_DELETED": p.handleCustomerDeleted,

		"CHECKOUT_PAID":      p.handleCheckout,
		"CHECKOUT_COMPLETED": p.handleCheckout,
	}
	return p
}

// Process runs one envelope through classify → dedup → dispatch. Handler
// failures are recorded for out-of-band replay and reported as
// OutcomeFailed; the HTTP layer still acknowledges them, per the provider
// contract that webhook endpoints must return 2xx.
func (p *WebhookProcessor) Process(ctx context.Context, envelope *EventEnvelope, raw []byte) string {
	handler, known := p.handlers[envelope.Event]
	if !known {
		logging.Infof("Ignoring unknown webhook event: %s", envelope.Event)
		return OutcomeIgnored
	}

	// Provider idempotency keys are not guaranteed; dedup is best-effort
	// and the mapper's upsert discipline is the real backstop.
	if envelope.ID != "" && p.events.AlreadyProcessed(ctx, envelope.ID) {
		logging.Infof("Duplicate webhook event acknowledged without dispatch: %s (%s)", envelope.ID, envelope.Event)
		return OutcomeDuplicate
	}

	if err := handler(ctx, envelope); err != nil {
		logging.Errorf("Webhook handler failed - event: %s, id: %s, error: %v", envelope.Event, envelope.ID, err)
		p.events.RecordFailure(ctx, envelope, raw, err)
		return OutcomeFailed
	}

	return OutcomeDispatched
}

func (p *WebhookProcessor) handlePayment(ctx context.Context, envelope *EventEnvelope) error {
	if envelope.Payment == nil {
		return fmt.Errorf("event %s carries no payment payload", envelope.Event)
	}
	return p.persistence.SavePagamento(envelope.Payment, envelope.Payment.ExternalReference)
}

func (p *WebhookProcessor) handlePaymentDeleted(ctx context.Context, envelope *EventEnvelope) error {
	if envelope.Payment == nil {
		return fmt.Errorf("event %s carries no payment payload", envelope.Event)
	}
	payment := *envelope.Payment
	payment.Deleted = true
	return p.persistence.SavePagamento(&payment, payment.ExternalReference)
}

func (p *WebhookProcessor) handleSubscription(ctx context.Context, envelope *EventEnvelope) error {
	if envelope.Subscription == nil {
		return fmt.Errorf("event %s carries no subscription payload", envelope.Event)
	}
	return p.persistence.SaveAssinatura(envelope.Subscription, envelope.Subscription.ExternalReference)
}

func (p *WebhookProcessor) handleSubscriptionDeleted(ctx context.Context, envelope *EventEnvelope) error {
	if envelope.Subscription == nil {
		return fmt.Errorf("event %s carries no subscription payload", envelope.Event)
	}
	subscription := *envelope.Subscription
	subscription.Deleted = true
	return p.persistence.SaveAssinatura(&subscription, subscription.ExternalReference)
}

func (p *WebhookProcessor) handleCustomer(ctx context.Context, envelope *EventEnvelope) error {
	if envelope.Customer == nil {
		return fmt.Errorf("event %s carries no customer payload", envelope.Event)
	}
	return p.persistence.SaveCliente(envelope.Customer, envelope.Customer.ExternalReference)
}

// handleCustomerDeleted flips the logical delete flag; mirror rows are
// never physically removed.
func (p *WebhookProcessor) handleCustomerDeleted(ctx context.Context, envelope *EventEnvelope) error {
	if envelope.Customer == nil {
		return fmt.Errorf("event %s carries no customer payload", envelope.Event)
	}
	customer := *envelope.Customer
	customer.Deleted = true
	return p.persistence.SaveCliente(&customer, customer.ExternalReference)
}

// handleCheckout mirrors the contact data embedded in a completed
// checkout. The owning affiliate must be resolvable from the event itself;
// envelopes without one go to the failure log instead of being attributed
// to anyone.
func (p *WebhookProcessor) handleCheckout(ctx context.Context, envelope *EventEnvelope) error {
	checkout := envelope.Checkout
	if checkout == nil {
		return fmt.Errorf("event %s carries no checkout payload", envelope.Event)
	}
	if checkout.ExternalReference == "" {
		return fmt.Errorf("checkout %s carries no affiliate reference", checkout.ID)
	}
	if checkout.CustomerData == nil {
		return fmt.Errorf("checkout %s carries no customer data", checkout.ID)
	}

	// Completed checkouts usually reference the provider customer they
	// created; key by the checkout id when they don't, so redeliveries
	// still converge on one row.
	id := checkout.Customer
	if id == "" {
		id = checkout.ID
	}

	customer := &asaas.Customer{
		ID:      id,
		Name:    checkout.CustomerData.Name,
		Email:   checkout.CustomerData.Email,
		Phone:   checkout.CustomerData.Phone,
		CpfCnpj: checkout.CustomerData.CpfCnpj,
	}
	return p.persistence.SaveCliente(customer, checkout.ExternalReference)
}

// EventLog is the Redis-backed webhook bookkeeping: best-effort dedup of
// redelivered events and a list of failed envelopes for out-of-band
// replay. A nil client disables both, which only widens the redelivery
// window the upserts already tolerate.
type EventLog struct {
	client *redis.Client
}

const (
	eventDedupTTL  = 24 * time.Hour
	failedEventKey = "webhook:failed"
)

func NewEventLog(client *redis.Client) *EventLog {
	return &EventLog{client: client}
}

// AlreadyProcessed records the event id and reports whether it was seen
// within the dedup window.
func (l *EventLog) AlreadyProcessed(ctx context.Context, eventID string) bool {
	if l.client == nil {
		return false
	}
	ok, err := l.client.SetNX(ctx, "webhook:event:"+eventID, time.Now().Unix(), eventDedupTTL).Result()
	if err != nil {
		logging.Errorf("Webhook dedup check failed for %s: %v", eventID, err)
		return false
	}
	return !ok
}

type failedEvent struct {
	ID       string          `json:"id"`
	Event    string          `json:"event"`
	Error    string          `json:"error"`
	FailedAt time.Time       `json:"failed_at"`
	Envelope json.RawMessage `json:"envelope"`
}

// RecordFailure appends the raw envelope to the replay list. Envelopes
// without a provider id get a synthetic one so replay tooling can address
// them.
func (l *EventLog) RecordFailure(ctx context.Context, envelope *EventEnvelope, raw []byte, cause error) {
	id := envelope.ID
	if id == "" {
		id = uuid.NewString()
	}

	record := failedEvent{
		ID:       id,
		Event:    envelope.Event,
		Error:    cause.Error(),
		FailedAt: time.Now(),
		Envelope: raw,
	}

	if l.client == nil {
		logging.Errorf("Webhook event failed with no replay log configured - id: %s, event: %s, error: %v", id, envelope.Event, cause)
		return
	}

	payload, err := json.Marshal(record)
	if err != nil {
		logging.Errorf("Failed to serialize failed webhook event %s: %v", id, err)
		return
	}
	if err := l.client.RPush(ctx, failedEventKey, payload).Err(); err != nil {
		logging.Errorf("Failed to enqueue webhook event %s for replay: %v", id, err)
	}
}

// FailedEvents returns up to limit entries from the replay list without
// consuming them.
func (l *EventLog) FailedEvents(ctx context.Context, limit int64) ([]json.RawMessage, error) {
	if l.client == nil {
		return nil, errors.New("replay log is not configured")
	}
	values, err := l.client.LRange(ctx, failedEventKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		out = append(out, json.RawMessage(v))
	}
	return out, nil
}
