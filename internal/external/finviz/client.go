package finviz

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/supersignal/internal/contracts"
	"github.com/wonny/supersignal/internal/provider"
	"github.com/wonny/supersignal/pkg/config"
	"github.com/wonny/supersignal/pkg/httputil"
	"github.com/wonny/supersignal/pkg/logger"
)

// Client scrapes FinViz quote pages
// ⭐ SSOT: FinViz 스크래핑은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new FinViz client
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.ProviderConfig) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.Module("finviz"),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Name implements provider.Adapter
func (c *Client) Name() contracts.Source {
	return contracts.SourceFinviz
}

// Fetch implements provider.Adapter
func (c *Client) Fetch(ctx context.Context, ticker string) (*contracts.RawFieldSet, error) {
	fullURL := fmt.Sprintf("%s/quote.ashx?t=%s", c.baseURL, url.QueryEscape(ticker))

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return nil, provider.Classify(contracts.SourceFinviz, ticker, err)
	}

	fields, err := parseQuotePage(body)
	if err != nil {
		return nil, provider.NewFetchError(contracts.SourceFinviz, ticker, provider.KindParse, err)
	}
	if fields == nil {
		// FinViz answers unknown tickers with a 200 search page
		return nil, provider.NewFetchError(contracts.SourceFinviz, ticker, provider.KindNotFound, errors.New("no quote snapshot on page"))
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"is_adr": fields.IsADR != nil && *fields.IsADR,
	}).Debug("Fetched quote page")

	return &contracts.RawFieldSet{
		Source:         contracts.SourceFinviz,
		Ticker:         ticker,
		SecurityFields: *fields,
	}, nil
}

// parseQuotePage returns nil fields when the page has no snapshot table
func parseQuotePage(html []byte) (*contracts.SecurityFields, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse quote html: %w", err)
	}

	snapshot := doc.Find("table.snapshot-table2").First()
	if snapshot.Length() == 0 {
		return nil, nil
	}

	var f contracts.SecurityFields
	header := doc.Find("table.fullview-title").First()
	parseHeader(header, doc, &f)

	values := snapshotValues(snapshot)
	applySnapshot(values, &f)

	// ADR status is stated in the header or snapshot text; its absence means "not an ADR"
	text := strings.ToLower(normalizeSpace(header.Text() + " " + snapshot.Text()))
	isADR := strings.Contains(text, " adr") || strings.Contains(text, "american depositary")
	f.IsADR = &isADR

	return &f, nil
}

// parseHeader reads the company name and the "sector | industry | country" links
func parseHeader(header *goquery.Selection, doc *goquery.Document, f *contracts.SecurityFields) {
	var name string
	var links []string

	if header.Length() > 0 {
		name = normalizeSpace(header.Find("b").First().Text())
		header.Find("tr").Last().Find("a").Each(func(_ int, a *goquery.Selection) {
			links = append(links, normalizeSpace(a.Text()))
		})
	} else {
		// newer layout
		name = normalizeSpace(doc.Find(".quote-header_ticker-wrapper_company").First().Text())
		doc.Find(".quote-links a.tab-link").Each(func(_ int, a *goquery.Selection) {
			links = append(links, normalizeSpace(a.Text()))
		})
	}

	f.Name = nonBlank(name)
	if len(links) >= 3 {
		f.Sector = nonBlank(links[0])
		f.Industry = nonBlank(links[1])
		f.Country = nonBlank(links[2])
	}
}

// snapshotValues turns the label/value cell pairs into a map
func snapshotValues(table *goquery.Selection) map[string]string {
	values := make(map[string]string)
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		for i := 0; i+1 < cells.Length(); i += 2 {
			label := normalizeSpace(cells.Eq(i).Text())
			if label != "" {
				values[label] = normalizeSpace(cells.Eq(i + 1).Text())
			}
		}
	})
	return values
}

func applySnapshot(v map[string]string, f *contracts.SecurityFields) {
	f.FloatShares = parseCount(v["Shs Float"])
	f.SharesOutstanding = parseCount(v["Shs Outstand"])
	f.Price = parseNumber(v["Price"])
	f.MarketCap = parseNumber(v["Market Cap"])
	f.High52w = parseNumber(firstToken(v["52W High"]))
	f.Low52w = parseNumber(firstToken(v["52W Low"]))
	f.Volume = parseCount(v["Volume"])
	f.InsiderPct = parseNumber(v["Insider Own"])
	f.InstitutionPct = parseNumber(v["Inst Own"])
	f.Employees = parseCount(v["Employees"])

	// older pages pack "Short Float / Ratio" into one cell
	if combined, ok := v["Short Float / Ratio"]; ok {
		parts := strings.SplitN(combined, "/", 2)
		f.ShortPctFloat = parseNumber(parts[0])
		if len(parts) == 2 {
			f.ShortRatio = parseNumber(parts[1])
		}
	} else {
		f.ShortPctFloat = parseNumber(v["Short Float"])
		f.ShortRatio = parseNumber(v["Short Ratio"])
	}

	// FinViz gives a plain ratio, canonical debt-to-equity is in percent like Yahoo
	if de := parseNumber(v["Debt/Eq"]); de != nil {
		pct := *de * 100
		f.DebtToEquity = &pct
	}
}
