package finviz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/supersignal/internal/contracts"
	"github.com/wonny/supersignal/internal/provider"
	"github.com/wonny/supersignal/pkg/config"
	"github.com/wonny/supersignal/pkg/httputil"
	"github.com/wonny/supersignal/pkg/logger"
)

const babaPage = `<html><body>
<table class="fullview-title">
  <tr><td><a id="ticker">BABA</a></td></tr>
  <tr><td><a href="#"><b>Alibaba Group Holding Ltd ADR</b></a></td></tr>
  <tr><td><a class="tab-link">Consumer Cyclical</a> | <a class="tab-link">Internet Retail</a> | <a class="tab-link">China</a></td></tr>
</table>
<table class="snapshot-table2">
  <tr><td>Index</td><td><b>-</b></td><td>Shs Outstand</td><td><b>2.39B</b></td><td>Price</td><td><b>84.12</b></td></tr>
  <tr><td>Market Cap</td><td><b>210.50B</b></td><td>Shs Float</td><td><b>2.35B</b></td><td>Volume</td><td><b>12,034,567</b></td></tr>
  <tr><td>Insider Own</td><td><b>0.12%</b></td><td>Inst Own</td><td><b>14.50%</b></td><td>Short Float / Ratio</td><td><b>2.10% / 1.20</b></td></tr>
  <tr><td>Employees</td><td><b>204891</b></td><td>52W High</td><td><b>117.82 -28.60%</b></td><td>Debt/Eq</td><td><b>0.24</b></td></tr>
</table>
</body></html>`

const aaplPage = `<html><body>
<table class="fullview-title">
  <tr><td><a href="#"><b>Apple Inc</b></a></td></tr>
  <tr><td><a>Technology</a> | <a>Consumer Electronics</a> | <a>USA</a></td></tr>
</table>
<table class="snapshot-table2">
  <tr><td>Shs Float</td><td><b>15.20B</b></td><td>Short Float</td><td><b>-</b></td></tr>
</table>
</body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	httpClient := httputil.New(config.HTTPConfig{Timeout: 2 * time.Second}, logger.Nop())
	return NewClient(httpClient, logger.Nop(), config.ProviderConfig{BaseURL: srv.URL})
}

func TestFetch_ADRPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote.ashx", r.URL.Path)
		assert.Equal(t, "BABA", r.URL.Query().Get("t"))
		_, _ = w.Write([]byte(babaPage))
	})

	set, err := c.Fetch(context.Background(), "BABA")
	require.NoError(t, err)

	assert.Equal(t, contracts.SourceFinviz, set.Source)
	assert.Equal(t, "Alibaba Group Holding Ltd ADR", *set.Name)
	assert.Equal(t, "China", *set.Country)
	assert.Equal(t, "Internet Retail", *set.Industry)
	require.NotNil(t, set.IsADR)
	assert.True(t, *set.IsADR)

	assert.Equal(t, int64(2_350_000_000), *set.FloatShares)
	assert.Equal(t, int64(2_390_000_000), *set.SharesOutstanding)
	assert.Equal(t, int64(12_034_567), *set.Volume)
	assert.InDelta(t, 84.12, *set.Price, 1e-9)
	assert.InDelta(t, 210.5e9, *set.MarketCap, 1)
	assert.InDelta(t, 0.021, *set.ShortPctFloat, 1e-9)
	assert.InDelta(t, 1.2, *set.ShortRatio, 1e-9)
	assert.InDelta(t, 0.145, *set.InstitutionPct, 1e-9)
	assert.InDelta(t, 117.82, *set.High52w, 1e-9)
	assert.InDelta(t, 24.0, *set.DebtToEquity, 1e-9)
	assert.Equal(t, int64(204891), *set.Employees)
}

func TestFetch_NonADRPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(aaplPage))
	})

	set, err := c.Fetch(context.Background(), "AAPL")
	require.NoError(t, err)

	require.NotNil(t, set.IsADR)
	assert.False(t, *set.IsADR)
	assert.Equal(t, "USA", *set.Country)
	assert.Nil(t, set.ShortPctFloat)
	assert.Nil(t, set.Price)
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    provider.ErrorKind
	}{
		{"no snapshot", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html><body>Search results</body></html>`))
		}, provider.KindNotFound},
		{"404", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}, provider.KindNotFound},
		{"429", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}, provider.KindRateLimited},
		{"503", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}, provider.KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestClient(t, tt.handler).Fetch(context.Background(), "ZZZZ")

			var fe *provider.FetchError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, tt.want, fe.Kind)
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"2.40B", contracts.Ptr(2.4e9)},
		{"850.5K", contracts.Ptr(850500.0)},
		{"1,234,567", contracts.Ptr(1234567.0)},
		{"12.5%", contracts.Ptr(0.125)},
		{"-12.5%", contracts.Ptr(-0.125)},
		{"1.2T", contracts.Ptr(1.2e12)},
		{"-", nil},
		{"", nil},
		{"N/A", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseNumber(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-6)
		})
	}
}
