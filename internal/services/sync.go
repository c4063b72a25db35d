package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"afiliados-api/internal/asaas"
	"afiliados-api/internal/database"
	"afiliados-api/internal/models"
	"afiliados-api/pkg/logging"

	"github.com/google/uuid"
)

// ErrSyncAborted marks a reconciliation run whose initial confirmed-charges
// fetch failed. Nothing new is committed; rows written by earlier runs are
// untouched.
var ErrSyncAborted = errors.New("sync aborted")

// Sentinel customer names recorded when per-payment name resolution fails.
// Partial degradation is preferred over failing the whole batch.
const (
	NameNotFound  = "Cliente não encontrado"
	NameLoadError = "Erro ao carregar nome"
)

// SyncService pulls all provider-side confirmed charges and converges the
// local Cobranca mirror. Reruns against unchanged provider state only
// refresh timestamps: rows are keyed by the provider payment id.
type SyncService struct {
	client      *asaas.Client
	store       *database.Store
	concurrency int
}

func NewSyncService(client *asaas.Client, store *database.Store, concurrency int) *SyncService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SyncService{client: client, store: store, concurrency: concurrency}
}

type SyncResult struct {
	Success      bool   `json:"success"`
	Count        int    `json:"count"`
	NameFailures int    `json:"name_failures,omitempty"`
	Error        string `json:"error,omitempty"`
	RunID        string `json:"run_id"`
}

// Run executes one reconciliation pass.
func (s *SyncService) Run(ctx context.Context) (*SyncResult, error) {
	runID := uuid.NewString()
	logging.Infof("Sync run %s started", runID)

	payments, err := s.client.ListConfirmedPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyncAborted, err)
	}

	names, nameFailures := s.resolveCustomerNames(ctx, payments)

	result := &SyncResult{Success: true, RunID: runID, NameFailures: nameFailures}
	var upsertErr error
	for i := range payments {
		payment := &payments[i]
		cobranca := &models.Cobranca{
			AsaasID:      payment.ID,
			CustomerID:   payment.Customer,
			CustomerName: names[payment.Customer],
			Value:        payment.Value,
			NetValue:     payment.NetValue,
			Status:       payment.Status,
			BillingType:  payment.BillingType,
			DueDate:      parseProviderDate(payment.DueDate),
			PaymentDate:  parseProviderDate(payment.PaymentDate),
		}
		if err := s.store.UpsertCobranca(cobranca); err != nil {
			upsertErr = err
			logging.Errorf("Sync run %s: failed to upsert cobranca %s: %v", runID, payment.ID, err)
			continue
		}
		result.Count++
	}

	if upsertErr != nil {
		result.Error = fmt.Sprintf("%v: %v", ErrPersistence, upsertErr)
		if result.Count == 0 {
			result.Success = false
		}
	}

	logging.Infof("Sync run %s finished - upserted: %d, name failures: %d", runID, result.Count, nameFailures)
	return result, nil
}

// resolveCustomerNames fans out one GetCustomer call per distinct customer
// id, bounded by the configured concurrency. Failures are captured per
// item as sentinel names and never abort the batch.
func (s *SyncService) resolveCustomerNames(ctx context.Context, payments []asaas.Payment) (map[string]string, int) {
	ids := make([]string, 0, len(payments))
	seen := make(map[string]bool, len(payments))
	for i := range payments {
		id := payments[i].Customer
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	names := make(map[string]string, len(ids))
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		failures int
	)
	sem := make(chan struct{}, s.concurrency)

	for _, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(customerID string) {
			defer wg.Done()
			defer func() { <-sem }()

			name, failed := s.lookupName(ctx, customerID)

			mu.Lock()
			names[customerID] = name
			if failed {
				failures++
			}
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	return names, failures
}

func (s *SyncService) lookupName(ctx context.Context, customerID string) (string, bool) {
	customer, err := s.client.GetCustomer(ctx, customerID)
	if err != nil {
		logging.Errorf("Failed to resolve customer name for %s: %v", customerID, err)
		if errors.Is(err, asaas.ErrRejected) {
			return NameNotFound, true
		}
		return NameLoadError, true
	}
	return customer.Name, false
}
