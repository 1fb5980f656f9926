package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
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

const babaQuote = `{"quoteSummary":{"result":[{
  "assetProfile":{"address1":"26/F Tower One, Times Square","city":"Causeway Bay","zip":"","country":"Hong Kong",
    "website":"https://www.alibabagroup.com","industry":"Internet Retail","sector":"Consumer Cyclical","fullTimeEmployees":204891},
  "price":{"longName":"Alibaba Group Holding Limited","shortName":"Alibaba Group Holding Ltd","exchange":"NYQ","exchangeName":"NYSE",
    "market":"us_market","regularMarketPrice":{"raw":84.12,"fmt":"84.12"},"preMarketPrice":{},"postMarketPrice":{"raw":84.5},
    "regularMarketVolume":{"raw":12000000},"marketCap":{"raw":2.1e11}},
  "summaryDetail":{"fiftyTwoWeekHigh":{"raw":100},"fiftyTwoWeekLow":{"raw":66.6},"averageVolume10days":{"raw":15000000}},
  "defaultKeyStatistics":{"floatShares":{"raw":2400000000},"sharesOutstanding":{"raw":2500000000},
    "shortPercentOfFloat":{"raw":0.021},"shortRatio":{"raw":1.2},"heldPercentInsiders":{"raw":0.01},
    "heldPercentInstitutions":{"raw":0.15},"lastSplitFactor":"8:1","lastSplitDate":{"raw":1563753600}},
  "financialData":{"totalDebt":{"raw":2.3e10},"debtToEquity":{"raw":24.1},"operatingCashflow":{"raw":1.8e10}}
}],"error":null}}`

const profileHTML = `<html><body>
<section><h3>Key Executives</h3>
<table>
<tr><th>Name</th><th>Title</th></tr>
<tr><td>Mr. Joseph C. Tsai</td><td>Chairman &amp; Director</td></tr>
<tr><td>Mr. Yongming  Wu</td><td>CEO</td></tr>
<tr><td>Ms. Jane Roe</td><td>Independent Director</td></tr>
</table></section></body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc, directorsLimit int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	httpClient := httputil.New(config.HTTPConfig{Timeout: 2 * time.Second}, logger.Nop())
	return NewClient(httpClient, logger.Nop(), config.ProviderConfig{BaseURL: srv.URL, ProfileURL: srv.URL}, directorsLimit)
}

func TestFetch_MapsFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/BABA"):
			assert.Contains(t, r.URL.RawQuery, "modules=")
			_, _ = w.Write([]byte(babaQuote))
		case r.URL.Path == "/quote/BABA/profile/":
			_, _ = w.Write([]byte(profileHTML))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, 10)

	set, err := c.Fetch(context.Background(), "BABA")
	require.NoError(t, err)

	assert.Equal(t, contracts.SourceYahoo, set.Source)
	assert.Equal(t, "Alibaba Group Holding Limited", *set.Name)
	assert.Equal(t, "NYSE", *set.Exchange)
	assert.Equal(t, "Hong Kong", *set.Country)
	assert.Equal(t, "26/F Tower One, Times Square, Causeway Bay, Hong Kong", *set.HQAddress)
	assert.Equal(t, int64(2_400_000_000), *set.FloatShares)
	assert.Equal(t, 84.12, *set.Price)
	assert.Nil(t, set.PreMarketPrice)
	assert.Equal(t, 84.5, *set.PostMarketPrice)
	assert.Equal(t, int64(12_000_000), *set.Volume)
	assert.Equal(t, int64(204891), *set.Employees)
	assert.Equal(t, "2019-07-22 (8:1, split)", *set.LastSplit)
	// foreign company on NYSE
	require.NotNil(t, set.IsADR)
	assert.True(t, *set.IsADR)

	assert.Equal(t, []string{
		"Mr. Joseph C. Tsai – Chairman & Director",
		"Ms. Jane Roe – Independent Director",
	}, set.Directors)
}

func TestFetch_DirectorsFailureIsNotFatal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v10/") {
			_, _ = w.Write([]byte(babaQuote))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}, 10)

	set, err := c.Fetch(context.Background(), "BABA")
	require.NoError(t, err)
	assert.Empty(t, set.Directors)
}

func TestFetch_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    provider.ErrorKind
	}{
		{
			name: "http 404",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			want: provider.KindNotFound,
		},
		{
			name: "api error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for ticker symbol: ZZZZ"}}}`))
			},
			want: provider.KindNotFound,
		},
		{
			name: "empty result",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"quoteSummary":{"result":[],"error":null}}`))
			},
			want: provider.KindNotFound,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			want: provider.KindRateLimited,
		},
		{
			name: "garbage",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			want: provider.KindParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler, 0)
			_, err := c.Fetch(context.Background(), "ZZZZ")

			var fe *provider.FetchError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, tt.want, fe.Kind)
			assert.Equal(t, contracts.SourceYahoo, fe.Source)
		})
	}
}

func TestFetchVIX(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/^VIX", r.URL.Path)
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":[{"price":{"regularMarketPrice":{"raw":17.35}}}],"error":null}}`))
	}, 0)

	vix, err := c.FetchVIX(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 17.35, vix)
}

func TestInferADR(t *testing.T) {
	tests := []struct {
		name string
		h    adrHints
		want *bool
	}{
		{"adr in name", adrHints{names: []string{"Taiwan Semiconductor Manufacturing Company Limited ADR"}}, contracts.Ptr(true)},
		{"american depositary", adrHints{names: []string{"Foo American Depositary Shares"}}, contracts.Ptr(true)},
		{"us company", adrHints{names: []string{"Apple Inc."}, country: "United States", exchange: "NMS NasdaqGS"}, contracts.Ptr(false)},
		{"foreign on nasdaq", adrHints{names: []string{"Baidu, Inc."}, country: "China", exchange: "NMS NasdaqGS"}, contracts.Ptr(true)},
		{"foreign via market", adrHints{country: "Japan", market: "us_market"}, contracts.Ptr(true)},
		{"foreign off us exchange", adrHints{country: "Germany", exchange: "GER XETRA", market: "de_market"}, contracts.Ptr(false)},
		{"nothing known", adrHints{names: []string{"Mystery Corp"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferADR(tt.h))
		})
	}
}

func TestSplitDisplay(t *testing.T) {
	epoch := float64(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC).Unix())

	assert.Equal(t, "2024-06-10 (10:1, split)", splitDisplay("10:1", &epoch))
	assert.Equal(t, "2024-06-10 (1:20, reverse split)", splitDisplay("1:20", &epoch))
	assert.Equal(t, "2:1, split", splitDisplay("2:1", nil))
	assert.Equal(t, "3:1, split", splitDisplay("3:0", nil))
	assert.Equal(t, "", splitDisplay("", &epoch))
	assert.Equal(t, "", splitDisplay("abc", &epoch))
}

func TestParseDirectors_Limit(t *testing.T) {
	got, err := parseDirectors([]byte(profileHTML), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mr. Joseph C. Tsai – Chairman & Director"}, got)

	none, err := parseDirectors([]byte(`<html><h2>Profile</h2></html>`), 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
