package merge

import (
	"strings"

	"github.com/wonny/supersignal/internal/contracts"
)

// binding copies one field from a source into the record.
// take reports false when the source has no usable value.
type binding struct {
	field contracts.Field
	take  func(dst, src *contracts.SecurityFields) bool
}

func bind[T any](f contracts.Field, ptr func(*contracts.SecurityFields) **T) binding {
	return binding{
		field: f,
		take: func(dst, src *contracts.SecurityFields) bool {
			v := *ptr(src)
			if v == nil {
				return false
			}
			c := *v
			// blank strings count as missing
			if s, ok := any(&c).(*string); ok {
				*s = strings.TrimSpace(*s)
				if *s == "" {
					return false
				}
			}
			*ptr(dst) = &c
			return true
		},
	}
}

func bindList(f contracts.Field, list func(*contracts.SecurityFields) *[]string) binding {
	return binding{
		field: f,
		take: func(dst, src *contracts.SecurityFields) bool {
			var out []string
			for _, s := range *list(src) {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
			if len(out) == 0 {
				return false
			}
			*list(dst) = out
			return true
		},
	}
}

// bindings lists every canonical field. Adding a field to SecurityFields
// means adding a row here.
var bindings = []binding{
	bind(contracts.FieldName, func(s *contracts.SecurityFields) **string { return &s.Name }),
	bind(contracts.FieldShortName, func(s *contracts.SecurityFields) **string { return &s.ShortName }),
	bind(contracts.FieldExchange, func(s *contracts.SecurityFields) **string { return &s.Exchange }),
	bind(contracts.FieldCountry, func(s *contracts.SecurityFields) **string { return &s.Country }),
	bind(contracts.FieldHQCountry, func(s *contracts.SecurityFields) **string { return &s.HQCountry }),
	bind(contracts.FieldHQAddress, func(s *contracts.SecurityFields) **string { return &s.HQAddress }),
	bind(contracts.FieldIsADR, func(s *contracts.SecurityFields) **bool { return &s.IsADR }),
	bind(contracts.FieldFloatShares, func(s *contracts.SecurityFields) **int64 { return &s.FloatShares }),
	bind(contracts.FieldSharesOutstanding, func(s *contracts.SecurityFields) **int64 { return &s.SharesOutstanding }),
	bind(contracts.FieldPrice, func(s *contracts.SecurityFields) **float64 { return &s.Price }),
	bind(contracts.FieldPreMarketPrice, func(s *contracts.SecurityFields) **float64 { return &s.PreMarketPrice }),
	bind(contracts.FieldPostMarketPrice, func(s *contracts.SecurityFields) **float64 { return &s.PostMarketPrice }),
	bind(contracts.FieldHigh52w, func(s *contracts.SecurityFields) **float64 { return &s.High52w }),
	bind(contracts.FieldLow52w, func(s *contracts.SecurityFields) **float64 { return &s.Low52w }),
	bind(contracts.FieldMarketCap, func(s *contracts.SecurityFields) **float64 { return &s.MarketCap }),
	bind(contracts.FieldSector, func(s *contracts.SecurityFields) **string { return &s.Sector }),
	bind(contracts.FieldIndustry, func(s *contracts.SecurityFields) **string { return &s.Industry }),
	bind(contracts.FieldAvgVolume10d, func(s *contracts.SecurityFields) **int64 { return &s.AvgVolume10d }),
	bind(contracts.FieldVolume, func(s *contracts.SecurityFields) **int64 { return &s.Volume }),
	bind(contracts.FieldShortPctFloat, func(s *contracts.SecurityFields) **float64 { return &s.ShortPctFloat }),
	bind(contracts.FieldShortRatio, func(s *contracts.SecurityFields) **float64 { return &s.ShortRatio }),
	bind(contracts.FieldInsiderPct, func(s *contracts.SecurityFields) **float64 { return &s.InsiderPct }),
	bind(contracts.FieldInstitutionPct, func(s *contracts.SecurityFields) **float64 { return &s.InstitutionPct }),
	bind(contracts.FieldTotalDebt, func(s *contracts.SecurityFields) **float64 { return &s.TotalDebt }),
	bind(contracts.FieldDebtToEquity, func(s *contracts.SecurityFields) **float64 { return &s.DebtToEquity }),
	bind(contracts.FieldOperatingCashFlow, func(s *contracts.SecurityFields) **float64 { return &s.OperatingCashFlow }),
	bind(contracts.FieldEmployees, func(s *contracts.SecurityFields) **int64 { return &s.Employees }),
	bind(contracts.FieldWebsite, func(s *contracts.SecurityFields) **string { return &s.Website }),
	bind(contracts.FieldLastSplit, func(s *contracts.SecurityFields) **string { return &s.LastSplit }),
	bindList(contracts.FieldDirectors, func(s *contracts.SecurityFields) *[]string { return &s.Directors }),
}

// AllFields returns every canonical field in record order
func AllFields() []contracts.Field {
	out := make([]contracts.Field, len(bindings))
	for i, b := range bindings {
		out[i] = b.field
	}
	return out
}
