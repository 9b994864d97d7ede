// Package exchangerate fetches reference exchange rates from an HTTP provider.
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	financeapp "github.com/fintermediary/backoffice/internal/application/finance"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/fintermediary/backoffice/internal/infrastructure/config"
	"github.com/shopspring/decimal"
)

var _ financeapp.RateProvider = (*HTTPProvider)(nil)

// maxResponseBytes caps the provider response body
const maxResponseBytes = 1 << 20

// HTTPProvider reads rates from a JSON endpoint of the form
//
//	GET <url>?base=USD -> {"base": "USD", "date": "2024-01-02", "rates": {"EUR": 0.91}}
type HTTPProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPProvider creates a provider from configuration
func NewHTTPProvider(cfg config.ExchangeRateConfig) (*HTTPProvider, error) {
	u, err := url.Parse(cfg.ProviderURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid exchange rate provider url %q", cfg.ProviderURL)
	}
	timeout := cfg.ProviderTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		baseURL:    cfg.ProviderURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type providerResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// LatestRates returns the provider's current rates from base to every quoted currency.
// Unknown currency codes and non-positive rates are skipped.
func (p *HTTPProvider) LatestRates(ctx context.Context, base valueobject.Currency) (*financeapp.RateQuote, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("base", base.String())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange rate provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read exchange rate provider response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange rate provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed providerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode exchange rate provider response: %w", err)
	}
	if !strings.EqualFold(parsed.Base, base.String()) {
		return nil, fmt.Errorf("exchange rate provider answered for base %q, asked for %s", parsed.Base, base)
	}

	date := time.Now().UTC()
	if parsed.Date != "" {
		date, err = time.Parse("2006-01-02", parsed.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid provider date %q: %w", parsed.Date, err)
		}
	}

	quote := &financeapp.RateQuote{
		Base:  base,
		Date:  date,
		Rates: make(map[valueobject.Currency]decimal.Decimal, len(parsed.Rates)),
	}
	for code, rate := range parsed.Rates {
		cur, ok := valueobject.ParseCurrency(code)
		if !ok || cur == base || !rate.IsPositive() {
			continue
		}
		quote.Rates[cur] = rate
	}
	return quote, nil
}
