package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"afiliados-api/internal/asaas"
	"afiliados-api/internal/database"
	"afiliados-api/internal/models"
	"afiliados-api/pkg/logging"

	"github.com/redis/go-redis/v9"
)

// Churn classifications served by the risk endpoint. The classification
// itself is materialized outside this service.
var churnRiskClasses = []string{"CHURN_CONFIRMADO", "CHURN_PROVAVEL"}

const dashboardCacheTTL = 5 * time.Minute

// DashboardService computes affiliate-facing numbers, live-reducing over
// provider data with the local mirror as fallback.
type DashboardService struct {
	client          *asaas.Client
	store           *database.Store
	cache           *redis.Client
	mensalidadeRate float64
	concurrency     int
}

func NewDashboardService(client *asaas.Client, store *database.Store, cache *redis.Client, mensalidadeRate float64, concurrency int) *DashboardService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &DashboardService{
		client:          client,
		store:           store,
		cache:           cache,
		mensalidadeRate: mensalidadeRate,
		concurrency:     concurrency,
	}
}

// Receivables is the per-affiliate dashboard aggregate.
type Receivables struct {
	TotalClientes        int                `json:"total_clientes"`
	PagamentosAReceber   float64            `json:"pagamentos_a_receber"`
	MensalidadesAReceber float64            `json:"mensalidades_a_receber"`
	TotalAReceber        float64            `json:"total_a_receber"`
	Detalhes             ReceivablesDetails `json:"detalhes"`
}

type ReceivablesDetails struct {
	PagamentosConfirmados int     `json:"pagamentos_confirmados"`
	AssinaturasAtivas     int     `json:"assinaturas_ativas"`
	TaxaComissao          float64 `json:"taxa_comissao"`
}

// ComputeReceivables aggregates one affiliate's numbers. Payment
// receivables sum value over RECEIVED/CONFIRMED charges. The recurring
// share applies the flat mensalidade rate to active-subscription value —
// an approximation of recurring commission, not a reconciliation against
// provider payout records. Non-critical sub-fetch failures zero that
// metric instead of failing the request.
func (s *DashboardService) ComputeReceivables(ctx context.Context, afiliadoID string) (*Receivables, error) {
	if cached := s.cacheGet(ctx, afiliadoID); cached != nil {
		return cached, nil
	}

	result := &Receivables{
		Detalhes: ReceivablesDetails{TaxaComissao: s.mensalidadeRate},
	}

	payments, paymentsErr := s.client.ListPayments(ctx, afiliadoID)
	if paymentsErr != nil {
		logging.Errorf("Dashboard: payment fetch failed for %s, zeroing metric: %v", afiliadoID, paymentsErr)
	} else {
		for i := range payments {
			if payments[i].Status == models.PaymentReceived || payments[i].Status == models.PaymentConfirmed {
				result.PagamentosAReceber += payments[i].Value
				result.Detalhes.PagamentosConfirmados++
			}
		}
	}

	subscriptions, subscriptionsErr := s.client.ListSubscriptions(ctx, afiliadoID)
	if subscriptionsErr != nil {
		logging.Errorf("Dashboard: subscription fetch failed for %s, zeroing metric: %v", afiliadoID, subscriptionsErr)
	} else {
		var activeTotal float64
		for i := range subscriptions {
			if subscriptions[i].Status == models.SubscriptionActive {
				activeTotal += subscriptions[i].Value
				result.Detalhes.AssinaturasAtivas++
			}
		}
		result.MensalidadesAReceber = activeTotal * s.mensalidadeRate / 100
	}

	// A single failed sub-fetch zeroes its metric (best-effort partial
	// result); both failing means the affiliate could not be aggregated
	// at all, which the all-affiliates view excludes.
	if paymentsErr != nil && subscriptionsErr != nil {
		return nil, fmt.Errorf("provider fetch failed for %s: %v; %v", afiliadoID, paymentsErr, subscriptionsErr)
	}

	result.TotalClientes = s.countClientes(ctx, afiliadoID)
	result.TotalAReceber = result.PagamentosAReceber + result.MensalidadesAReceber

	s.cacheSet(ctx, afiliadoID, result)
	return result, nil
}

// countClientes prefers the provider's view and falls back to the local
// mirror when it is unreachable or unconfigured.
func (s *DashboardService) countClientes(ctx context.Context, afiliadoID string) int {
	if s.client.Configured() {
		customers, err := s.client.ListCustomers(ctx, afiliadoID)
		if err == nil {
			count := 0
			for i := range customers {
				if !customers[i].Deleted {
					count++
				}
			}
			return count
		}
		logging.Errorf("Dashboard: customer fetch failed for %s, falling back to mirror: %v", afiliadoID, err)
	}

	count, err := s.store.CountClientesByAfiliado(afiliadoID)
	if err != nil {
		logging.Errorf("Dashboard: mirror customer count failed for %s: %v", afiliadoID, err)
		return 0
	}
	return int(count)
}

// AffiliateMetrics pairs an affiliate with its aggregate for the
// all-affiliates view.
type AffiliateMetrics struct {
	AfiliadoID string       `json:"afiliado_id"`
	FullName   string       `json:"full_name"`
	Metrics    *Receivables `json:"metrics"`
}

// ComputeAllAffiliates fans out ComputeReceivables over every affiliate
// with per-affiliate error isolation: a failed fetch is logged and
// excluded from the result, and never cancels sibling fetches.
func (s *DashboardService) ComputeAllAffiliates(ctx context.Context) ([]AffiliateMetrics, error) {
	afiliados, err := s.store.ListAfiliados()
	if err != nil {
		return nil, err
	}

	results := make([]*AffiliateMetrics, len(afiliados))
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.concurrency)

	for i := range afiliados {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, afiliado models.Afiliado) {
			defer wg.Done()
			defer func() { <-sem }()

			metrics, err := s.ComputeReceivables(ctx, afiliado.ID)
			if err != nil {
				logging.Errorf("Dashboard: excluding afiliado %s from aggregate: %v", afiliado.ID, err)
				return
			}
			results[idx] = &AffiliateMetrics{
				AfiliadoID: afiliado.ID,
				FullName:   afiliado.FullName,
				Metrics:    metrics,
			}
		}(i, afiliados[i])
	}
	wg.Wait()

	out := make([]AffiliateMetrics, 0, len(afiliados))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// ChurnRisk returns the affiliates the external churn view flags as
// confirmed or probable churn. No classification is computed here.
func (s *DashboardService) ChurnRisk(ctx context.Context) ([]models.ChurnClassificacao, error) {
	return s.store.ListChurnRisk(churnRiskClasses)
}

// GoalProgress is the monthly goal readout.
type GoalProgress struct {
	Progress   float64 `json:"progress"`
	Percentage float64 `json:"percentage"`
	Remaining  float64 `json:"remaining"`
}

// ComputeGoalProgress combines subscription and payment totals against a
// monthly goal. The percentage is capped at 120 to bound display overflow
// while still signaling over-achievement.
func ComputeGoalProgress(monthlyGoal, subscriptionsTotal, paymentsTotal float64) GoalProgress {
	progress := subscriptionsTotal + paymentsTotal

	var percentage float64
	if monthlyGoal > 0 {
		percentage = progress / monthlyGoal * 100
		if percentage > 120 {
			percentage = 120
		}
	}

	remaining := monthlyGoal - progress
	if remaining < 0 {
		remaining = 0
	}

	return GoalProgress{Progress: progress, Percentage: percentage, Remaining: remaining}
}

func (s *DashboardService) cacheGet(ctx context.Context, afiliadoID string) *Receivables {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, "dashboard:"+afiliadoID).Result()
	if err != nil {
		if err != redis.Nil {
			logging.Errorf("Dashboard cache read failed for %s: %v", afiliadoID, err)
		}
		return nil
	}
	var cached Receivables
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil
	}
	return &cached
}

func (s *DashboardService) cacheSet(ctx context.Context, afiliadoID string, value *Receivables) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, "dashboard:"+afiliadoID, payload, dashboardCacheTTL).Err(); err != nil {
		logging.Errorf("Dashboard cache write failed for %s: %v", afiliadoID, err)
	}
}
