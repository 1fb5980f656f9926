package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/supersignal/internal/contracts"
	"github.com/wonny/supersignal/internal/provider"
	"github.com/wonny/supersignal/pkg/config"
	"github.com/wonny/supersignal/pkg/httputil"
	"github.com/wonny/supersignal/pkg/logger"
)

// quoteModules are the quoteSummary sections one screen needs
const quoteModules = "assetProfile,price,summaryDetail,defaultKeyStatistics,financialData"

// VIXSymbol is the CBOE volatility index ticker
const VIXSymbol = "^VIX"

// Client handles communication with Yahoo Finance
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient     *httputil.Client
	logger         *logger.Logger
	baseURL        string
	profileURL     string
	directorsLimit int
}

// NewClient creates a new Yahoo Finance client.
// An empty ProfileURL disables the directors scrape.
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.ProviderConfig, directorsLimit int) *Client {
	return &Client{
		httpClient:     httpClient,
		logger:         log.Module("yahoo"),
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		profileURL:     strings.TrimRight(cfg.ProfileURL, "/"),
		directorsLimit: directorsLimit,
	}
}

// Name implements provider.Adapter
func (c *Client) Name() contracts.Source {
	return contracts.SourceYahoo
}

// Fetch implements provider.Adapter
func (c *Client) Fetch(ctx context.Context, ticker string) (*contracts.RawFieldSet, error) {
	result, err := c.fetchQuote(ctx, ticker, quoteModules)
	if err != nil {
		return nil, err
	}

	set := result.toFieldSet(ticker)

	if c.profileURL != "" && c.directorsLimit > 0 {
		directors, err := c.FetchDirectors(ctx, ticker)
		if err != nil {
			// directors are decoration; the quote is still good
			c.logger.WithError(err).WithField("ticker", ticker).Warn("Directors unavailable")
		} else {
			set.Directors = directors
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":  ticker,
		"country": deref(set.Country),
	}).Debug("Fetched quote summary")
	return set, nil
}

// FetchVIX returns the latest VIX level
func (c *Client) FetchVIX(ctx context.Context) (float64, error) {
	result, err := c.fetchQuote(ctx, VIXSymbol, "price")
	if err != nil {
		return 0, err
	}
	if result.Price.RegularMarketPrice.Raw == nil {
		return 0, provider.NewFetchError(contracts.SourceYahoo, VIXSymbol, provider.KindParse, errors.New("no regular market price"))
	}
	return *result.Price.RegularMarketPrice.Raw, nil
}

// fetchQuote calls the quoteSummary endpoint and returns the single result
func (c *Client) fetchQuote(ctx context.Context, ticker, modules string) (*quoteResult, error) {
	fullURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(modules))

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return nil, provider.Classify(contracts.SourceYahoo, ticker, err)
	}

	var resp quoteSummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, provider.NewFetchError(contracts.SourceYahoo, ticker, provider.KindParse, fmt.Errorf("decode quoteSummary: %w", err))
	}

	if resp.QuoteSummary.Error != nil {
		kind := provider.KindParse
		if strings.EqualFold(resp.QuoteSummary.Error.Code, "Not Found") {
			kind = provider.KindNotFound
		}
		return nil, provider.NewFetchError(contracts.SourceYahoo, ticker, kind, errors.New(resp.QuoteSummary.Error.Description))
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, provider.NewFetchError(contracts.SourceYahoo, ticker, provider.KindNotFound, errors.New("empty quoteSummary result"))
	}

	return &resp.QuoteSummary.Result[0], nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
