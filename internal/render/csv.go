package render

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/wonny/supersignal/internal/contracts"
)

var csvHeader = []string{
	"ticker", "name", "exchange", "country", "hq_country", "is_adr",
	"float_shares", "shares_outstanding", "price", "high_52w", "low_52w", "market_cap",
	"sector", "industry", "overall_severity", "flags", "error",
}

// CSV writes one row per input ticker under a single header.
// Failed tickers keep their row with the error column set.
type CSV struct{}

// Format implements Formatter
func (CSV) Format(w io.Writer, res *contracts.BatchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range res.Results {
		if err := cw.Write(csvRow(r)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRow(r contracts.TickerResult) []string {
	row := make([]string, len(csvHeader))
	row[0] = r.Ticker

	if rep := r.Report; rep != nil {
		rec := rep.Record
		row[1] = strOr(rec.Name, "")
		row[2] = strOr(rec.Exchange, "")
		row[3] = strOr(rec.Country, "")
		row[4] = strOr(rec.HQCountry, "")
		row[5] = boolStr(rec.IsADR)
		row[6] = intStr(rec.FloatShares)
		row[7] = intStr(rec.SharesOutstanding)
		row[8] = floatStr(rec.Price)
		row[9] = floatStr(rec.High52w)
		row[10] = floatStr(rec.Low52w)
		row[11] = floatStr(rec.MarketCap)
		row[12] = strOr(rec.Sector, "")
		row[13] = strOr(rec.Industry, "")
		row[14] = rep.Overall.String()

		kinds := make([]string, 0, len(rep.Flags))
		for _, f := range rep.Flags {
			kinds = append(kinds, string(f.Kind))
		}
		row[15] = strings.Join(kinds, ";")
	}

	var errs []string
	if r.Err != nil {
		errs = append(errs, r.Err.Error())
	}
	if r.Report != nil {
		for _, e := range r.SourceErrors {
			errs = append(errs, e.Error())
		}
	}
	row[16] = strings.Join(errs, "; ")
	return row
}
