package database

import (
	"afiliados-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps the relational mirror operations. Handlers and services share
// one instance built over the connection from InitDatabase; tests build
// their own over an in-memory SQLite.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// onConflictOverwrite is the single conflict policy of the mirror: rows are
// keyed by the provider id and every mapped field is overwritten on
// conflict (last-write-wins, never a partial merge).
func onConflictOverwrite(column string) clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: column}},
		UpdateAll: true,
	}
}

func (s *Store) UpsertCliente(cliente *models.Cliente) error {
	return s.db.Clauses(onConflictOverwrite("asaas_id")).Create(cliente).Error
}

func (s *Store) UpsertAssinatura(assinatura *models.Assinatura) error {
	return s.db.Clauses(onConflictOverwrite("asaas_id")).Create(assinatura).Error
}

func (s *Store) UpsertPagamento(pagamento *models.Pagamento) error {
	return s.db.Clauses(onConflictOverwrite("asaas_id")).Create(pagamento).Error
}

func (s *Store) UpsertCobranca(cobranca *models.Cobranca) error {
	return s.db.Clauses(onConflictOverwrite("asaas_id")).Create(cobranca).Error
}

func (s *Store) GetAssinatura(asaasID string) (*models.Assinatura, error) {
	var assinatura models.Assinatura
	if err := s.db.Where("asaas_id = ?", asaasID).First(&assinatura).Error; err != nil {
		return nil, err
	}
	return &assinatura, nil
}

func (s *Store) GetPagamento(asaasID string) (*models.Pagamento, error) {
	var pagamento models.Pagamento
	if err := s.db.Where("asaas_id = ?", asaasID).First(&pagamento).Error; err != nil {
		return nil, err
	}
	return &pagamento, nil
}

func (s *Store) CountPagamentos() (int64, error) {
	var count int64
	err := s.db.Model(&models.Pagamento{}).Count(&count).Error
	return count, err
}

func (s *Store) GetCliente(asaasID string) (*models.Cliente, error) {
	var cliente models.Cliente
	if err := s.db.Where("asaas_id = ?", asaasID).First(&cliente).Error; err != nil {
		return nil, err
	}
	return &cliente, nil
}

// ListClientesByAfiliado returns the non-deleted mirrored customers owned
// by an affiliate. Used as the fallback when the provider is unreachable.
func (s *Store) ListClientesByAfiliado(afiliadoID string) ([]models.Cliente, error) {
	var clientes []models.Cliente
	err := s.db.Where("external_reference = ? AND deleted = ?", afiliadoID, false).
		Order("name").
		Find(&clientes).Error
	return clientes, err
}

func (s *Store) CountClientesByAfiliado(afiliadoID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Cliente{}).
		Where("external_reference = ? AND deleted = ?", afiliadoID, false).
		Count(&count).Error
	return count, err
}

func (s *Store) ListAfiliados() ([]models.Afiliado, error) {
	var afiliados []models.Afiliado
	err := s.db.Order("full_name").Find(&afiliados).Error
	return afiliados, err
}

func (s *Store) GetAfiliado(id string) (*models.Afiliado, error) {
	var afiliado models.Afiliado
	if err := s.db.Where("id = ?", id).First(&afiliado).Error; err != nil {
		return nil, err
	}
	return &afiliado, nil
}

// RecentCobrancas returns the most recently synced mirror rows, newest
// update first.
func (s *Store) RecentCobrancas(limit int) ([]models.Cobranca, error) {
	var cobrancas []models.Cobranca
	err := s.db.Order("updated_at DESC").Limit(limit).Find(&cobrancas).Error
	return cobrancas, err
}

func (s *Store) CountCobrancas() (int64, error) {
	var count int64
	err := s.db.Model(&models.Cobranca{}).Count(&count).Error
	return count, err
}

// ListChurnRisk returns affiliates flagged by the external churn view with
// the given classifications.
func (s *Store) ListChurnRisk(classificacoes []string) ([]models.ChurnClassificacao, error) {
	var rows []models.ChurnClassificacao
	err := s.db.Where("classificacao IN ?", classificacoes).
		Order("afiliado_id").
		Find(&rows).Error
	return rows, err
}
