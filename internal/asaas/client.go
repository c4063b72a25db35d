package asaas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"afiliados-api/internal/config"
	"afiliados-api/pkg/logging"
)

const (
	maxAttempts = 3
	backoffBase = 500 * time.Millisecond
	pageSize    = 100
)

// Client is the single point of outbound calls to the Asaas billing API.
// It is constructed once with its configuration and injected into every
// component that talks to the provider.
type Client struct {
	baseURL          string
	apiKey           string
	walletID         string
	platformPercent  float64
	affiliatePercent float64
	httpClient       *http.Client
	backoff          time.Duration
}

func New(cfg *config.Config) *Client {
	return &Client{
		baseURL:          cfg.AsaasAPIURL,
		apiKey:           cfg.AsaasAPIKey,
		walletID:         cfg.AsaasWalletID,
		platformPercent:  cfg.PlatformSplitPercent,
		affiliatePercent: cfg.AffiliateSplitPercent,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
		},
		backoff: backoffBase,
	}
}

// Configured reports whether an API key is present. Callers with a local
// fallback check this before going to the provider.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// CreateCustomer registers a billing contact with the provider.
func (c *Client) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, http.MethodPost, "/customers", nil, req, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetCustomer fetches a single customer by provider id.
func (c *Client) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, http.MethodGet, "/customers/"+id, nil, nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreatePayment creates a single charge.
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/payments", nil, req, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// CreateSubscriptionWithSplit creates a recurring billing agreement whose
// value is split between the platform wallet and the affiliate wallet.
// The split always carries exactly two percentual entries summing to 100.
func (c *Client) CreateSubscriptionWithSplit(ctx context.Context, req SubscriptionRequest, affiliateWalletID string) (*Subscription, error) {
	split, err := c.buildSplit(affiliateWalletID)
	if err != nil {
		return nil, err
	}
	req.Split = split

	var subscription Subscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions", nil, req, &subscription); err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (c *Client) buildSplit(affiliateWalletID string) ([]SplitEntry, error) {
	if c.walletID == "" {
		return nil, fmt.Errorf("%w: platform wallet id is not configured", ErrInvalidSplitConfig)
	}
	if affiliateWalletID == "" {
		return nil, fmt.Errorf("%w: affiliate wallet id is missing", ErrInvalidSplitConfig)
	}
	if c.platformPercent+c.affiliatePercent != 100 {
		return nil, fmt.Errorf("%w: split percentages sum to %.2f, want 100",
			ErrInvalidSplitConfig, c.platformPercent+c.affiliatePercent)
	}
	return []SplitEntry{
		{WalletID: c.walletID, PercentualValue: c.platformPercent},
		{WalletID: affiliateWalletID, PercentualValue: c.affiliatePercent},
	}, nil
}

// TokenizeCard exchanges raw card data for an opaque token. Only the token
// and the brand/last4 echo come back; callers must never persist the PAN
// or CCV.
func (c *Client) TokenizeCard(ctx context.Context, req CardTokenRequest) (*CardToken, error) {
	var token CardToken
	err := c.do(ctx, http.MethodPost, "/creditCard/tokenizeCreditCard", nil, req, &token)
	if err != nil {
		if errors.Is(err, ErrRejected) {
			return nil, fmt.Errorf("%w: %v", ErrTokenizationFailed, err)
		}
		return nil, err
	}
	return &token, nil
}

// ListCustomers returns every provider customer tagged with the affiliate
// id, following pagination to the end. An empty result is not an error.
func (c *Client) ListCustomers(ctx context.Context, externalReference string) ([]Customer, error) {
	return listAll[Customer](ctx, c, "/customers", url.Values{"externalReference": {externalReference}})
}

// ListPayments returns every charge tagged with the affiliate id.
func (c *Client) ListPayments(ctx context.Context, externalReference string) ([]Payment, error) {
	return listAll[Payment](ctx, c, "/payments", url.Values{"externalReference": {externalReference}})
}

// ListSubscriptions returns every subscription tagged with the affiliate id.
func (c *Client) ListSubscriptions(ctx context.Context, externalReference string) ([]Subscription, error) {
	return listAll[Subscription](ctx, c, "/subscriptions", url.Values{"externalReference": {externalReference}})
}

// ListConfirmedPayments returns all provider-side confirmed charges. This
// is the reconciliation job's source of truth.
func (c *Client) ListConfirmedPayments(ctx context.Context) ([]Payment, error) {
	return listAll[Payment](ctx, c, "/payments", url.Values{"status": {"CONFIRMED"}})
}

func listAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var out []T
	offset := 0
	for {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("limit", strconv.Itoa(pageSize))
		q.Set("offset", strconv.Itoa(offset))

		var p page[T]
		if err := c.do(ctx, http.MethodGet, path, q, nil, &p); err != nil {
			return nil, err
		}
		out = append(out, p.Data...)

		if !p.HasMore || len(p.Data) == 0 {
			return out, nil
		}
		offset += len(p.Data)
	}
}

// do issues one provider call under the uniform outbound policy: request
// token header, 30s client timeout, up to 3 attempts with exponential
// backoff, retrying only on network errors and 502/503/504/520.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, c.backoff, attempt); err != nil {
				return err
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("access_token", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			logging.Errorf("Asaas request failed - %s %s, attempt: %d, error: %v", method, path, attempt+1, err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if out != nil {
				if err := json.Unmarshal(respBody, out); err != nil {
					return fmt.Errorf("failed to decode provider response: %w", err)
				}
			}
			return nil

		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return &apiError{sentinel: ErrRejected, statusCode: resp.StatusCode, message: providerMessage(respBody)}

		case retryableStatus(resp.StatusCode):
			lastErr = &apiError{sentinel: ErrUnavailable, statusCode: resp.StatusCode, message: providerMessage(respBody)}
			logging.Errorf("Asaas returned %d - %s %s, attempt: %d", resp.StatusCode, method, path, attempt+1)

		default:
			return &apiError{sentinel: ErrUnavailable, statusCode: resp.StatusCode, message: providerMessage(respBody)}
		}
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, 520:
		return true
	}
	return false
}

func sleepBackoff(ctx context.Context, base time.Duration, attempt int) error {
	delay := base << (attempt - 1)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// providerMessage extracts the first error description from the provider's
// {"errors":[{"code","description"}]} envelope.
func providerMessage(body []byte) string {
	var envelope struct {
		Errors []struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		return envelope.Errors[0].Description
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
