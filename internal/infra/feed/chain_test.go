package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gold_go/internal/domain"
	"gold_go/internal/infra"

	"github.com/shopspring/decimal"
)

func priceServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func provider(name, url string, scale string) infra.ProviderConfig {
	return infra.ProviderConfig{
		Name:   name,
		URL:    url,
		Parser: ParserPrice,
		Scale:  decimal.RequireFromString(scale),
	}
}

func TestChain_Fetch(t *testing.T) {
	ctx := context.Background()
	fallback := decimal.RequireFromString("2400")

	t.Run("Primary Healthy", func(t *testing.T) {
		srv := priceServer(t, http.StatusOK, `{"price": 2412.5}`)
		chain := NewChain("gold_usd", []infra.ProviderConfig{
			provider("first", srv.URL, "1"),
		}, fallback, time.Second, nil)

		value, source := chain.Fetch(ctx)
		if !value.Equal(decimal.RequireFromString("2412.5")) {
			t.Errorf("Expected 2412.5, got %s", value)
		}
		if source != domain.SourcePrimary {
			t.Errorf("Expected primary source, got %s", source)
		}
	})

	t.Run("Falls Through To Second Provider", func(t *testing.T) {
		down := priceServer(t, http.StatusInternalServerError, "")
		up := priceServer(t, http.StatusOK, `{"price": 2410}`)
		chain := NewChain("gold_usd", []infra.ProviderConfig{
			provider("first", down.URL, "1"),
			provider("second", up.URL, "1"),
		}, fallback, time.Second, nil)

		value, source := chain.Fetch(ctx)
		if !value.Equal(decimal.RequireFromString("2410")) {
			t.Errorf("Expected 2410, got %s", value)
		}
		if source != domain.SourceFallback+"-1" {
			t.Errorf("Expected fallback-1 source, got %s", source)
		}
	})

	t.Run("Bad Payload Falls Through", func(t *testing.T) {
		garbage := priceServer(t, http.StatusOK, `{"price": 0}`)
		up := priceServer(t, http.StatusOK, `{"price": 2405}`)
		chain := NewChain("gold_usd", []infra.ProviderConfig{
			provider("first", garbage.URL, "1"),
			provider("second", up.URL, "1"),
		}, fallback, time.Second, nil)

		value, _ := chain.Fetch(ctx)
		if !value.Equal(decimal.RequireFromString("2405")) {
			t.Errorf("Expected 2405, got %s", value)
		}
	})

	t.Run("Emergency Constant", func(t *testing.T) {
		down := priceServer(t, http.StatusBadGateway, "")
		chain := NewChain("gold_usd", []infra.ProviderConfig{
			provider("only", down.URL, "1"),
		}, fallback, time.Second, nil)

		value, source := chain.Fetch(ctx)
		if !value.Equal(fallback) {
			t.Errorf("Expected fallback constant, got %s", value)
		}
		if source != domain.SourceEmergency {
			t.Errorf("Expected emergency source, got %s", source)
		}
	})

	t.Run("Scale Applied", func(t *testing.T) {
		srv := priceServer(t, http.StatusOK, `{"price": 10483000}`)
		chain := NewChain("usd_toman", []infra.ProviderConfig{
			provider("irr", srv.URL, "0.1"),
		}, decimal.RequireFromString("1048300"), time.Second, nil)

		value, _ := chain.Fetch(ctx)
		if !value.Equal(decimal.RequireFromString("1048300")) {
			t.Errorf("Expected IRR scaled to Toman, got %s", value)
		}
	})
}

func TestSource_Snapshot(t *testing.T) {
	ctx := context.Background()

	goldSrv := priceServer(t, http.StatusOK, `{"price": 2400}`)
	tomanDown := priceServer(t, http.StatusInternalServerError, "")

	gold := NewChain("gold_usd", []infra.ProviderConfig{
		provider("gold", goldSrv.URL, "1"),
	}, decimal.RequireFromString("2400"), time.Second, nil)
	toman := NewChain("usd_toman", []infra.ProviderConfig{
		provider("toman", tomanDown.URL, "1"),
	}, decimal.RequireFromString("1048300"), time.Second, nil)

	spot, rate, source := NewSource(gold, toman).Snapshot(ctx)
	if !spot.Equal(decimal.RequireFromString("2400")) {
		t.Errorf("Expected spot 2400, got %s", spot)
	}
	if !rate.Equal(decimal.RequireFromString("1048300")) {
		t.Errorf("Expected emergency rate, got %s", rate)
	}
	if source != domain.SourceEmergency {
		t.Errorf("One degraded feed must degrade the bundle tag, got %s", source)
	}
}
