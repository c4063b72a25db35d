package models

import (
	"time"
)

// Afiliado is a partner account earning commissions on referred sales.
// Rows are created by the signup flow; this service only reads them.
type Afiliado struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	FullName    string    `json:"full_name" gorm:"size:255"`
	Email       string    `json:"email" gorm:"size:255;index"`
	UserID      string    `json:"user_id" gorm:"size:36;index"` // auth provider reference
	WalletID    string    `json:"wallet_id" gorm:"size:64"`     // Asaas wallet for commission splits
	MonthlyGoal float64   `json:"monthly_goal"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Afiliado) TableName() string {
	return "afiliados"
}

// ChurnClassificacao mirrors the externally materialized churn view.
// The classification itself is computed outside this service; we only read
// and filter it.
type ChurnClassificacao struct {
	AfiliadoID        string     `json:"afiliado_id" gorm:"primaryKey;size:36;column:afiliado_id"`
	FullName          string     `json:"full_name" gorm:"size:255"`
	Email             string     `json:"email" gorm:"size:255"`
	Classificacao     string     `json:"classificacao" gorm:"size:32;index"` // e.g. CHURN_CONFIRMADO, CHURN_PROVAVEL, ATIVO
	AssinaturasAtivas int        `json:"assinaturas_ativas"`
	UltimoPagamento   *time.Time `json:"ultimo_pagamento"`
}

func (ChurnClassificacao) TableName() string {
	return "churn_classificacao"
}
