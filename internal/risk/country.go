package risk

import "strings"

// countryCodes maps lowercased country names and common variants to ISO 3166-1 alpha-2.
// Providers report names ("China", "United States"), thresholds use codes.
var countryCodes = map[string]string{
	// United States
	"united states":            "US",
	"united states of america": "US",
	"usa":                      "US",
	"u.s.a.":                   "US",
	"u.s.":                     "US",
	"us":                       "US",
	"america":                  "US",

	// Greater China
	"china":                      "CN",
	"people's republic of china": "CN",
	"prc":                        "CN",
	"hong kong":                  "HK",
	"macau":                      "MO",
	"taiwan":                     "TW",

	// Sanctioned or commonly red-flagged
	"russia":                   "RU",
	"russian federation":       "RU",
	"iran":                     "IR",
	"islamic republic of iran": "IR",
	"north korea":              "KP",
	"belarus":                  "BY",
	"syria":                    "SY",
	"cuba":                     "CU",
	"venezuela":                "VE",

	// Offshore financial centers
	"cayman islands":         "KY",
	"british virgin islands": "VG",
	"bvi":                    "VG",
	"bermuda":                "BM",
	"bahamas":                "BS",
	"panama":                 "PA",
	"jersey":                 "JE",
	"guernsey":               "GG",
	"isle of man":            "IM",
	"marshall islands":       "MH",
	"cyprus":                 "CY",
	"malta":                  "MT",
	"monaco":                 "MC",
	"luxembourg":             "LU",

	// Everyone else
	"south korea":          "KR",
	"korea":                "KR",
	"republic of korea":    "KR",
	"japan":                "JP",
	"india":                "IN",
	"singapore":            "SG",
	"canada":               "CA",
	"mexico":               "MX",
	"brazil":               "BR",
	"argentina":            "AR",
	"chile":                "CL",
	"colombia":             "CO",
	"peru":                 "PE",
	"united kingdom":       "GB",
	"uk":                   "GB",
	"great britain":        "GB",
	"england":              "GB",
	"ireland":              "IE",
	"germany":              "DE",
	"france":               "FR",
	"netherlands":          "NL",
	"belgium":              "BE",
	"switzerland":          "CH",
	"sweden":               "SE",
	"norway":               "NO",
	"denmark":              "DK",
	"finland":              "FI",
	"spain":                "ES",
	"portugal":             "PT",
	"italy":                "IT",
	"greece":               "GR",
	"israel":               "IL",
	"turkey":               "TR",
	"south africa":         "ZA",
	"australia":            "AU",
	"new zealand":          "NZ",
	"indonesia":            "ID",
	"malaysia":             "MY",
	"thailand":             "TH",
	"vietnam":              "VN",
	"philippines":          "PH",
	"kazakhstan":           "KZ",
	"puerto rico":          "PR",
	"united arab emirates": "AE",
	"uae":                  "AE",
	"saudi arabia":         "SA",
}

// NormalizeCountry returns the ISO alpha-2 code for a country name or code.
// Unknown names are returned upper-cased so that exact code comparisons still work.
// The second result is false for blank input.
func NormalizeCountry(s string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", false
	}
	if code, ok := countryCodes[key]; ok {
		return code, true
	}
	return strings.ToUpper(key), true
}
