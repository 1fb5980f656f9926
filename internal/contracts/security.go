package contracts

// Security data model (SSOT)
//
// 흐름:
//   Provider Adapter → RawFieldSet (source별) → Merger → CanonicalRecord
//
// 모든 필드는 pointer: nil = unknown. 0이나 ""를 "모름"의 의미로 쓰지 않는다.

// Source identifies a data provider
type Source string

const (
	SourceYahoo  Source = "yahoo"
	SourceFinviz Source = "finviz"
)

// String returns the source name
func (s Source) String() string {
	return string(s)
}

// Field names one canonical attribute. Used as the provenance key.
type Field string

const (
	FieldName              Field = "name"
	FieldShortName         Field = "short_name"
	FieldExchange          Field = "exchange"
	FieldCountry           Field = "country" // country of incorporation
	FieldHQCountry         Field = "hq_country"
	FieldHQAddress         Field = "hq_address"
	FieldIsADR             Field = "is_adr"
	FieldFloatShares       Field = "float_shares"
	FieldSharesOutstanding Field = "shares_outstanding"
	FieldPrice             Field = "price"
	FieldPreMarketPrice    Field = "pre_market_price"
	FieldPostMarketPrice   Field = "post_market_price"
	FieldHigh52w           Field = "high_52w"
	FieldLow52w            Field = "low_52w"
	FieldMarketCap         Field = "market_cap"
	FieldSector            Field = "sector"
	FieldIndustry          Field = "industry"
	FieldAvgVolume10d      Field = "avg_volume_10d"
	FieldVolume            Field = "volume"
	FieldShortPctFloat     Field = "short_pct_float"
	FieldShortRatio        Field = "short_ratio"
	FieldInsiderPct        Field = "insider_pct"
	FieldInstitutionPct    Field = "institution_pct"
	FieldTotalDebt         Field = "total_debt"
	FieldDebtToEquity      Field = "debt_to_equity"
	FieldOperatingCashFlow Field = "operating_cash_flow"
	FieldEmployees         Field = "employees"
	FieldWebsite           Field = "website"
	FieldLastSplit         Field = "last_split"
	FieldDirectors         Field = "directors"
)

// SecurityFields is the set of attributes any provider may report.
// Percentages are fractions (0.12 = 12%).
type SecurityFields struct {
	Name      *string `json:"name,omitempty"`
	ShortName *string `json:"short_name,omitempty"`
	Exchange  *string `json:"exchange,omitempty"`

	Country   *string `json:"country,omitempty"`
	HQCountry *string `json:"hq_country,omitempty"`
	HQAddress *string `json:"hq_address,omitempty"`
	IsADR     *bool   `json:"is_adr,omitempty"`

	FloatShares       *int64 `json:"float_shares,omitempty"`
	SharesOutstanding *int64 `json:"shares_outstanding,omitempty"`

	Price           *float64 `json:"price,omitempty"`
	PreMarketPrice  *float64 `json:"pre_market_price,omitempty"`
	PostMarketPrice *float64 `json:"post_market_price,omitempty"`
	High52w         *float64 `json:"high_52w,omitempty"`
	Low52w          *float64 `json:"low_52w,omitempty"`
	MarketCap       *float64 `json:"market_cap,omitempty"`

	Sector   *string `json:"sector,omitempty"`
	Industry *string `json:"industry,omitempty"`

	AvgVolume10d *int64 `json:"avg_volume_10d,omitempty"`
	Volume       *int64 `json:"volume,omitempty"`

	ShortPctFloat  *float64 `json:"short_pct_float,omitempty"`
	ShortRatio     *float64 `json:"short_ratio,omitempty"`
	InsiderPct     *float64 `json:"insider_pct,omitempty"`
	InstitutionPct *float64 `json:"institution_pct,omitempty"`

	TotalDebt         *float64 `json:"total_debt,omitempty"`
	DebtToEquity      *float64 `json:"debt_to_equity,omitempty"`
	OperatingCashFlow *float64 `json:"operating_cash_flow,omitempty"`

	Employees *int64   `json:"employees,omitempty"`
	Website   *string  `json:"website,omitempty"`
	LastSplit *string  `json:"last_split,omitempty"`
	Directors []string `json:"directors,omitempty"`
}

// RawFieldSet is one adapter's output for one ticker
type RawFieldSet struct {
	Source Source `json:"source"`
	Ticker string `json:"ticker"`
	SecurityFields
}

// CanonicalRecord is the reconciled view of a security.
// A field is non-nil iff Provenance has an entry for it.
// Treat as immutable once returned by the merger.
type CanonicalRecord struct {
	Ticker string `json:"ticker"`
	SecurityFields
	Provenance map[Field]Source `json:"provenance"`
}

// SourceOf returns the provider that supplied f
func (r *CanonicalRecord) SourceOf(f Field) (Source, bool) {
	s, ok := r.Provenance[f]
	return s, ok
}

// PctOffHigh returns how far the price sits below the 52-week high, in percent
func (r *CanonicalRecord) PctOffHigh() *float64 {
	if r.Price == nil || r.High52w == nil || *r.High52w <= 0 {
		return nil
	}
	v := (*r.High52w - *r.Price) / *r.High52w * 100
	return &v
}

// RelativeVolume returns today's volume over the 10-day average
func (r *CanonicalRecord) RelativeVolume() *float64 {
	if r.Volume == nil || r.AvgVolume10d == nil || *r.AvgVolume10d <= 0 {
		return nil
	}
	v := float64(*r.Volume) / float64(*r.AvgVolume10d)
	return &v
}

// Ptr returns a pointer to v. Handy for building field sets.
func Ptr[T any](v T) *T {
	return &v
}
