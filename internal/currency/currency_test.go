package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providers struct {
	fiat, metal *httptest.Server
	fiatHits    atomic.Int32
	metalHits   atomic.Int32
}

func newProviders(t *testing.T, fiat, metal http.HandlerFunc) *providers {
	t.Helper()
	p := &providers{}
	p.fiat = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.fiatHits.Add(1)
		assert.Equal(t, "/v4/latest/TRY", r.URL.Path)
		fiat(w, r)
	}))
	p.metal = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.metalHits.Add(1)
		assert.Equal(t, "/v1/latest", r.URL.Path)
		assert.Equal(t, "TRY", r.URL.Query().Get("base"))
		metal(w, r)
	}))
	t.Cleanup(p.fiat.Close)
	t.Cleanup(p.metal.Close)
	return p
}

func (p *providers) service(now *time.Time) *Service {
	s := NewService(NewCache(), Options{FiatURL: p.fiat.URL, MetalURL: p.metal.URL, Timeout: time.Second})
	s.now = func() time.Time { return *now }
	return s
}

func body(s string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(s))
	}
}

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(code) }
}

const (
	goodFiat  = `{"base":"TRY","rates":{"USD":0.025,"EUR":0.02}}`
	goodMetal = `{"success":true,"rates":{"XAU":0.0001,"XAG":0.01}}`
)

func TestRatesFromProviders(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	p := newProviders(t, body(goodFiat), body(goodMetal))

	r := p.service(&now).Rates(context.Background())
	assert.Equal(t, 40.0, r.USDTRY)
	assert.Equal(t, 50.0, r.EURTRY)
	assert.Equal(t, 311035.0, r.GoldTRY)
	assert.Equal(t, 3110.35, r.SilverTRY)
	assert.Equal(t, now, r.Timestamp)
}

func TestRatesCachedWithinTTL(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	p := newProviders(t, body(goodFiat), body(goodMetal))
	s := p.service(&now)

	first := s.Rates(context.Background())
	now = now.Add(59 * time.Minute)
	second := s.Rates(context.Background())
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, p.fiatHits.Load())

	now = now.Add(time.Minute)
	third := s.Rates(context.Background())
	assert.EqualValues(t, 2, p.fiatHits.Load())
	assert.Equal(t, now, third.Timestamp)
}

func TestMetalFailureKeepsFiatFigures(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	for name, metal := range map[string]http.HandlerFunc{
		"server error": status(http.StatusInternalServerError),
		"not success":  body(`{"success":false}`),
		"malformed":    body(`{"success":`),
	} {
		t.Run(name, func(t *testing.T) {
			p := newProviders(t, body(goodFiat), metal)
			r := p.service(&now).Rates(context.Background())
			assert.Equal(t, 40.0, r.USDTRY)
			assert.Equal(t, FallbackGold, r.GoldTRY)
			assert.Equal(t, FallbackSilver, r.SilverTRY)
		})
	}
}

func TestMissingQuoteFallsBackPerFigure(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	p := newProviders(t, body(`{"rates":{"EUR":0.02}}`), body(`{"success":true,"rates":{"XAG":0.01}}`))

	r := p.service(&now).Rates(context.Background())
	assert.Equal(t, FallbackUSD, r.USDTRY)
	assert.Equal(t, 50.0, r.EURTRY)
	assert.Equal(t, FallbackGold, r.GoldTRY)
	assert.Equal(t, 3110.35, r.SilverTRY)
}

func TestFiatNon200IsCached(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	p := newProviders(t, status(http.StatusServiceUnavailable), body(goodMetal))
	s := p.service(&now)

	r := s.Rates(context.Background())
	assert.Equal(t, FallbackUSD, r.USDTRY)
	assert.Equal(t, FallbackEUR, r.EURTRY)
	assert.Equal(t, 311035.0, r.GoldTRY)

	s.Rates(context.Background())
	assert.EqualValues(t, 1, p.fiatHits.Load())
}

func TestFiatTransportFailureIsNotCached(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	p := newProviders(t, body(`not json`), body(goodMetal))
	s := p.service(&now)

	r := s.Rates(context.Background())
	assert.Equal(t, fallbackRates(now), r)
	assert.EqualValues(t, 0, p.metalHits.Load())

	_, _, ok := s.cache.Get()
	assert.False(t, ok)

	s.Rates(context.Background())
	assert.EqualValues(t, 2, p.fiatHits.Load())
}

func TestFiatUnreachable(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	p := newProviders(t, body(goodFiat), body(goodMetal))
	p.fiat.Close()

	r := p.service(&now).Rates(context.Background())
	assert.Equal(t, fallbackRates(now), r)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache()
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.Set(Rates{USDTRY: float64(i), EURTRY: float64(i)}, at)
		}(i)
		go func() {
			defer wg.Done()
			if r, _, ok := c.Get(); ok {
				assert.Equal(t, r.USDTRY, r.EURTRY)
			}
		}()
	}
	wg.Wait()
	_, got, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, at, got)
}
