package yahoo

import (
	"strings"

	"github.com/wonny/supersignal/internal/contracts"
)

// quoteSummaryResponse mirrors /v10/finance/quoteSummary
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"quoteSummary"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// rawValue is Yahoo's {"raw": 1.5, "fmt": "1.50"} wrapper; {} means unknown
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (v rawValue) asFloat() *float64 {
	if v.Raw == nil {
		return nil
	}
	f := *v.Raw
	return &f
}

func (v rawValue) asInt() *int64 {
	if v.Raw == nil {
		return nil
	}
	n := int64(*v.Raw)
	return &n
}

type quoteResult struct {
	AssetProfile struct {
		Address1          string `json:"address1"`
		City              string `json:"city"`
		State             string `json:"state"`
		Zip               string `json:"zip"`
		Country           string `json:"country"`
		Website           string `json:"website"`
		Industry          string `json:"industry"`
		Sector            string `json:"sector"`
		FullTimeEmployees *int64 `json:"fullTimeEmployees"`
	} `json:"assetProfile"`

	Price struct {
		LongName           string   `json:"longName"`
		ShortName          string   `json:"shortName"`
		Exchange           string   `json:"exchange"`
		ExchangeName       string   `json:"exchangeName"`
		Market             string   `json:"market"`
		CountryOfOrigin    string   `json:"countryOfOrigin"`
		RegularMarketPrice rawValue `json:"regularMarketPrice"`
		PreMarketPrice     rawValue `json:"preMarketPrice"`
		PostMarketPrice    rawValue `json:"postMarketPrice"`
		RegularMarketVol   rawValue `json:"regularMarketVolume"`
		MarketCap          rawValue `json:"marketCap"`
	} `json:"price"`

	SummaryDetail struct {
		FiftyTwoWeekHigh    rawValue `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow     rawValue `json:"fiftyTwoWeekLow"`
		AverageVolume10days rawValue `json:"averageVolume10days"`
		Volume              rawValue `json:"volume"`
		MarketCap           rawValue `json:"marketCap"`
	} `json:"summaryDetail"`

	DefaultKeyStatistics struct {
		FloatShares             rawValue `json:"floatShares"`
		SharesOutstanding       rawValue `json:"sharesOutstanding"`
		ShortPercentOfFloat     rawValue `json:"shortPercentOfFloat"`
		ShortRatio              rawValue `json:"shortRatio"`
		HeldPercentInsiders     rawValue `json:"heldPercentInsiders"`
		HeldPercentInstitutions rawValue `json:"heldPercentInstitutions"`
		LastSplitFactor         string   `json:"lastSplitFactor"`
		LastSplitDate           rawValue `json:"lastSplitDate"`
	} `json:"defaultKeyStatistics"`

	FinancialData struct {
		TotalDebt         rawValue `json:"totalDebt"`
		DebtToEquity      rawValue `json:"debtToEquity"`
		OperatingCashflow rawValue `json:"operatingCashflow"`
	} `json:"financialData"`
}

// toFieldSet maps the Yahoo payload onto canonical fields. Blank strings stay nil.
func (q *quoteResult) toFieldSet(ticker string) *contracts.RawFieldSet {
	ap := q.AssetProfile
	pr := q.Price
	sd := q.SummaryDetail
	ks := q.DefaultKeyStatistics
	fd := q.FinancialData

	country := firstNonBlank(ap.Country, pr.CountryOfOrigin)

	f := contracts.SecurityFields{
		Name:      str(pr.LongName),
		ShortName: str(pr.ShortName),
		Exchange:  str(firstNonBlank(pr.ExchangeName, pr.Exchange)),
		Country:   str(country),
		HQCountry: str(ap.Country),
		HQAddress: str(joinNonBlank(", ", ap.Address1, ap.City, ap.State, ap.Zip, country)),

		FloatShares:       ks.FloatShares.asInt(),
		SharesOutstanding: ks.SharesOutstanding.asInt(),

		Price:           pr.RegularMarketPrice.asFloat(),
		PreMarketPrice:  pr.PreMarketPrice.asFloat(),
		PostMarketPrice: pr.PostMarketPrice.asFloat(),
		High52w:         sd.FiftyTwoWeekHigh.asFloat(),
		Low52w:          sd.FiftyTwoWeekLow.asFloat(),
		MarketCap:       firstFloat(pr.MarketCap, sd.MarketCap),

		Sector:   str(ap.Sector),
		Industry: str(ap.Industry),

		AvgVolume10d: sd.AverageVolume10days.asInt(),
		Volume:       firstInt(pr.RegularMarketVol, sd.Volume),

		ShortPctFloat:  ks.ShortPercentOfFloat.asFloat(),
		ShortRatio:     ks.ShortRatio.asFloat(),
		InsiderPct:     ks.HeldPercentInsiders.asFloat(),
		InstitutionPct: ks.HeldPercentInstitutions.asFloat(),

		TotalDebt:         fd.TotalDebt.asFloat(),
		DebtToEquity:      fd.DebtToEquity.asFloat(),
		OperatingCashFlow: fd.OperatingCashflow.asFloat(),

		Employees: ap.FullTimeEmployees,
		Website:   str(ap.Website),
		LastSplit: str(splitDisplay(ks.LastSplitFactor, ks.LastSplitDate.Raw)),
	}

	f.IsADR = inferADR(adrHints{
		names:    []string{pr.LongName, pr.ShortName},
		country:  country,
		exchange: pr.Exchange + " " + pr.ExchangeName,
		market:   pr.Market,
	})

	return &contracts.RawFieldSet{
		Source:         contracts.SourceYahoo,
		Ticker:         ticker,
		SecurityFields: f,
	}
}

func str(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func joinNonBlank(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func firstFloat(vals ...rawValue) *float64 {
	for _, v := range vals {
		if f := v.asFloat(); f != nil {
			return f
		}
	}
	return nil
}

func firstInt(vals ...rawValue) *int64 {
	for _, v := range vals {
		if n := v.asInt(); n != nil {
			return n
		}
	}
	return nil
}
