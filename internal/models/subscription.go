package models

import (
	"time"
)

// Assinatura subscription statuses as reported by the provider. Status is
// mutated by provider-driven events only, never inferred locally.
const (
	SubscriptionActive  = "ACTIVE"
	SubscriptionExpired = "EXPIRED"
)

// Assinatura mirrors an Asaas recurring billing agreement.
type Assinatura struct {
	AsaasID           string     `json:"asaas_id" gorm:"primaryKey;size:64;column:asaas_id"`
	CustomerID        string     `json:"customer_id" gorm:"size:64;index;column:customer_id"`
	BillingType       string     `json:"billing_type" gorm:"size:32"` // BOLETO, CREDIT_CARD, PIX...
	Value             float64    `json:"value"`
	Cycle             string     `json:"cycle" gorm:"size:32"` // MONTHLY, YEARLY...
	NextDueDate       *time.Time `json:"next_due_date"`
	Status            string     `json:"status" gorm:"size:32;index"`
	ExternalReference string     `json:"external_reference" gorm:"size:36;index;column:external_reference"`
	Deleted           bool       `json:"deleted" gorm:"default:false"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Assinatura) TableName() string {
	return "assinaturas"
}
