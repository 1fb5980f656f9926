package yahoo

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/supersignal/internal/risk"
)

var (
	usExchanges = []string{"nyse", "nasdaq", "ncm", "amex", "bats", "arca", "nyq", "nms", "ngm", "ase", "pcx"}
	usMarkets   = []string{"us_market", "us_equity", "us"}
)

type adrHints struct {
	names    []string
	country  string
	exchange string
	market   string
}

// inferADR guesses ADR status: an ADR marker in the name, or a foreign
// country listed on a US exchange. nil when there is nothing to go on.
func inferADR(h adrHints) *bool {
	yes, no := true, false

	text := strings.ToLower(strings.Join(h.names, " "))
	text = strings.TrimSpace(text)
	if strings.Contains(text, " adr") || strings.HasSuffix(text, "adr") || strings.Contains(text, "american depositary") {
		return &yes
	}

	code, known := risk.NormalizeCountry(h.country)
	if !known {
		return nil
	}
	if code == "US" {
		return &no
	}

	exchange := strings.ToLower(h.exchange)
	market := strings.ToLower(h.market)
	for _, ex := range usExchanges {
		if strings.Contains(exchange, ex) {
			return &yes
		}
	}
	for _, m := range usMarkets {
		if strings.Contains(market, m) {
			return &yes
		}
	}
	return &no
}

// splitDisplay renders a split as "2024-06-10 (10:1, split)".
// Returns "" when the factor cannot be parsed.
func splitDisplay(factor string, epoch *float64) string {
	detail := interpretSplit(factor)
	if detail == "" {
		return ""
	}
	if epoch == nil || *epoch <= 0 {
		return detail
	}
	date := time.Unix(int64(*epoch), 0).UTC().Format("2006-01-02")
	return fmt.Sprintf("%s (%s)", date, detail)
}

func interpretSplit(factor string) string {
	parts := strings.Split(strings.TrimSpace(factor), ":")
	if len(parts) != 2 {
		return ""
	}
	num, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	den, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || num <= 0 || den < 0 {
		return ""
	}
	if den == 0 {
		den = 1
	}

	kind := "split"
	if num < den {
		kind = "reverse split"
	}
	return fmt.Sprintf("%d:%d, %s", num, den, kind)
}
