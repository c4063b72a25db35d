package models

import (
	"time"
)

// Payment statuses as reported by the provider.
const (
	PaymentPending   = "PENDING"
	PaymentReceived  = "RECEIVED"
	PaymentConfirmed = "CONFIRMED"
	PaymentOverdue   = "OVERDUE"
)

// Pagamento mirrors a single Asaas charge. Status transitions come from
// provider webhooks or sync pulls exclusively.
type Pagamento struct {
	AsaasID           string     `json:"asaas_id" gorm:"primaryKey;size:64;column:asaas_id"`
	CustomerID        string     `json:"customer_id" gorm:"size:64;index;column:customer_id"`
	SubscriptionID    string     `json:"subscription_id" gorm:"size:64;index;column:subscription_id"`
	Value             float64    `json:"value"`
	NetValue          float64    `json:"net_value"`
	DueDate           *time.Time `json:"due_date"`
	PaymentDate       *time.Time `json:"payment_date"`
	Status            string     `json:"status" gorm:"size:32;index"`
	BillingType       string     `json:"billing_type" gorm:"size:32"`
	ExternalReference string     `json:"external_reference" gorm:"size:36;index;column:external_reference"`
	InvoiceURL        string     `json:"invoice_url" gorm:"size:500"`
	Anticipated       bool       `json:"anticipated" gorm:"default:false"`
	Anticipable       bool       `json:"anticipable" gorm:"default:false"`
	Deleted           bool       `json:"deleted" gorm:"default:false"`
	Split             string     `json:"split" gorm:"type:text"` // serialized split entries (JSON)
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Pagamento) TableName() string {
	return "pagamentos"
}
