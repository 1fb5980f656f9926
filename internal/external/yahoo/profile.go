package yahoo

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/supersignal/internal/contracts"
	"github.com/wonny/supersignal/internal/provider"
)

// FetchDirectors scrapes the Key Executives table of the profile page and
// keeps rows whose title mentions "director", as "Name – Title".
func (c *Client) FetchDirectors(ctx context.Context, ticker string) ([]string, error) {
	fullURL := fmt.Sprintf("%s/quote/%s/profile/", c.profileURL, url.PathEscape(ticker))

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return nil, provider.Classify(contracts.SourceYahoo, ticker, err)
	}

	directors, err := parseDirectors(body, c.directorsLimit)
	if err != nil {
		return nil, provider.NewFetchError(contracts.SourceYahoo, ticker, provider.KindParse, err)
	}
	return directors, nil
}

// parseDirectors extracts up to limit director rows
func parseDirectors(html []byte, limit int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse profile html: %w", err)
	}

	// the table follows the "Key Executives" heading, possibly inside a sibling section
	var table *goquery.Selection
	doc.Find("h2, h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !strings.Contains(h.Text(), "Key Executives") {
			return true
		}
		if t := h.NextAllFiltered("table").First(); t.Length() > 0 {
			table = t
		} else if t := h.Parent().Find("table").First(); t.Length() > 0 {
			table = t
		}
		return false
	})
	if table == nil {
		return nil, nil
	}

	var directors []string
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return true
		}
		name := strings.Join(strings.Fields(cells.Eq(0).Text()), " ")
		title := strings.Join(strings.Fields(cells.Eq(1).Text()), " ")
		if strings.Contains(strings.ToLower(title), "director") {
			directors = append(directors, name+" – "+title)
		}
		return len(directors) < limit
	})
	return directors, nil
}
