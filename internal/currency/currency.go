// Package currency serves TRY exchange and precious metal rates from two
// public providers behind a TTL cache. Provider failures never surface:
// the affected figures are replaced by fixed fallbacks.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultFiatURL  = "https://api.exchangerate-api.com"
	DefaultMetalURL = "https://api.metalpriceapi.com"
	DefaultTTL      = time.Hour
	DefaultTimeout  = 10 * time.Second

	FallbackUSD    = 35.50
	FallbackEUR    = 38.20
	FallbackGold   = 3250.00
	FallbackSilver = 38.50

	gramsPerTroyOunce = "31.1035"
)

type Rates struct {
	USDTRY    float64   `json:"usd_try"`
	EURTRY    float64   `json:"eur_try"`
	GoldTRY   float64   `json:"gold_try"`
	SilverTRY float64   `json:"silver_try"`
	Timestamp time.Time `json:"timestamp"`
}

func fallbackRates(now time.Time) Rates {
	return Rates{
		USDTRY:    FallbackUSD,
		EURTRY:    FallbackEUR,
		GoldTRY:   FallbackGold,
		SilverTRY: FallbackSilver,
		Timestamp: now,
	}
}

type Options struct {
	FiatURL  string
	MetalURL string
	TTL      time.Duration
	Timeout  time.Duration
}

type Service struct {
	cache    *Cache
	client   *http.Client
	fiatURL  string
	metalURL string
	ttl      time.Duration
	now      func() time.Time
}

// NewService builds a service over cache. Zero options select the public
// providers, a one hour TTL and a ten second request timeout.
func NewService(cache *Cache, opts Options) *Service {
	if opts.FiatURL == "" {
		opts.FiatURL = DefaultFiatURL
	}
	if opts.MetalURL == "" {
		opts.MetalURL = DefaultMetalURL
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Service{
		cache:    cache,
		client:   &http.Client{Timeout: opts.Timeout},
		fiatURL:  strings.TrimRight(opts.FiatURL, "/"),
		metalURL: strings.TrimRight(opts.MetalURL, "/"),
		ttl:      opts.TTL,
		now:      time.Now,
	}
}

// Rates returns the cached bundle while it is younger than the TTL and
// refetches otherwise. Concurrent callers that find the cache stale each
// fetch on their own.
func (s *Service) Rates(ctx context.Context) Rates {
	now := s.now().UTC()
	if r, at, ok := s.cache.Get(); ok && now.Sub(at) < s.ttl {
		return r
	}

	usd, eur, err := s.fetchFiat(ctx)
	if err != nil {
		log.Printf("currency: fiat provider unavailable, serving static rates: %v", err)
		return fallbackRates(now)
	}
	gold, silver := s.fetchMetals(ctx)

	r := Rates{USDTRY: usd, EURTRY: eur, GoldTRY: gold, SilverTRY: silver, Timestamp: now}
	s.cache.Set(r, now)
	return r
}

// fetchFiat only returns an error when the provider could not be reached
// or sent an unreadable body. A non-200 status degrades to the fallbacks.
func (s *Service) fetchFiat(ctx context.Context) (usd, eur float64, err error) {
	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	status, err := s.getJSON(ctx, s.fiatURL+"/v4/latest/TRY", &body)
	if err != nil {
		return 0, 0, err
	}
	if status != http.StatusOK {
		log.Printf("currency: fiat provider returned %d, using fallback rates", status)
		return FallbackUSD, FallbackEUR, nil
	}
	return invert(body.Rates["USD"], FallbackUSD), invert(body.Rates["EUR"], FallbackEUR), nil
}

func (s *Service) fetchMetals(ctx context.Context) (gold, silver float64) {
	var body struct {
		Success bool               `json:"success"`
		Rates   map[string]float64 `json:"rates"`
	}
	status, err := s.getJSON(ctx, s.metalURL+"/v1/latest?base=TRY&currencies=XAU,XAG", &body)
	switch {
	case err != nil:
		log.Printf("currency: metal provider error, using fallback: %v", err)
		return FallbackGold, FallbackSilver
	case status != http.StatusOK || !body.Success:
		log.Printf("currency: metal provider returned %d (success=%t), using fallback", status, body.Success)
		return FallbackGold, FallbackSilver
	}
	return perGram(body.Rates["XAU"], FallbackGold), perGram(body.Rates["XAG"], FallbackSilver)
}

// getJSON decodes the body only for 200 responses.
func (s *Service) getJSON(ctx context.Context, url string, dest any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s: %w", url, err)
	}
	return resp.StatusCode, nil
}

// invert turns a TRY->X rate into X->TRY rounded to cents. Zero means the
// provider did not quote the currency.
func invert(rate, fallback float64) float64 {
	if rate <= 0 {
		return fallback
	}
	return decimal.NewFromInt(1).DivRound(decimal.NewFromFloat(rate), 16).Round(2).InexactFloat64()
}

// perGram converts a TRY->troy ounce quote into TRY per gram.
func perGram(rate, fallback float64) float64 {
	if rate <= 0 {
		return fallback
	}
	ounce := decimal.NewFromInt(1).DivRound(decimal.NewFromFloat(rate), 16)
	return ounce.Mul(decimal.RequireFromString(gramsPerTroyOunce)).Round(2).InexactFloat64()
}
