package models

import (
	"time"
)

// Cobranca is the denormalized mirror of a confirmed provider charge with
// the customer name already resolved, kept for fast dashboard reads. One
// row per provider payment id; every sync pass refreshes updated_at.
type Cobranca struct {
	AsaasID      string     `json:"asaas_id" gorm:"primaryKey;size:64;column:asaas_id"`
	CustomerID   string     `json:"customer_id" gorm:"size:64;index;column:customer_id"`
	CustomerName string     `json:"customer_name" gorm:"size:255"`
	Value        float64    `json:"value"`
	NetValue     float64    `json:"net_value"`
	Status       string     `json:"status" gorm:"size:32;index"`
	BillingType  string     `json:"billing_type" gorm:"size:32"`
	DueDate      *time.Time `json:"due_date"`
	PaymentDate  *time.Time `json:"payment_date"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Cobranca) TableName() string {
	return "cobrancas"
}
