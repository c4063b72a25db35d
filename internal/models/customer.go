package models

import (
	"time"
)

// Cliente is the local mirror of an Asaas customer. The provider id is the
// primary key, so webhook redelivery and re-sync converge on the same row.
type Cliente struct {
	AsaasID           string    `json:"asaas_id" gorm:"primaryKey;size:64;column:asaas_id"`
	Name              string    `json:"name" gorm:"size:255"`
	Email             string    `json:"email" gorm:"size:255;index"`
	Phone             string    `json:"phone" gorm:"size:32"`
	MobilePhone       string    `json:"mobile_phone" gorm:"size:32"`
	CpfCnpj           string    `json:"cpf_cnpj" gorm:"size:20;index"`
	PostalCode        string    `json:"postal_code" gorm:"size:16"`
	Address           string    `json:"address" gorm:"size:255"`
	AddressNumber     string    `json:"address_number" gorm:"size:16"`
	Province          string    `json:"province" gorm:"size:128"`
	City              string    `json:"city" gorm:"size:128"`
	State             string    `json:"state" gorm:"size:8"`
	ExternalReference string    `json:"external_reference" gorm:"size:36;index;column:external_reference"` // owning Afiliado id
	Deleted           bool      `json:"deleted" gorm:"default:false"`                                      // logical delete only
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Cliente) TableName() string {
	return "clientes"
}
