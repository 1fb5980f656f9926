package risk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// ConfigError is a fatal threshold problem, reported before any ticker is screened
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid thresholds: %s: %s", e.Field, e.Message)
}

// Thresholds drive every rule. Loaded once, validated, then shared read-only.
// Sets may be empty; an empty set simply never matches.
type Thresholds struct {
	HomeCountry      string   `yaml:"home_country" json:"home_country" default:"US" validate:"required"`
	RiskyCountries   []string `yaml:"risky_countries" json:"risky_countries" default:"[\"RU\",\"CN\",\"IR\"]"`
	TaxHavenKeywords []string `yaml:"tax_haven_keywords" json:"tax_haven_keywords" default:"[\"Cayman\",\"BVI\"]" validate:"dive,required"`
	MinFreeFloat     int64    `yaml:"min_free_float" json:"min_free_float" default:"3000000" validate:"gte=0"`
}

var validate = validator.New()

// DefaultThresholds returns the built-in thresholds
func DefaultThresholds() Thresholds {
	var th Thresholds
	// struct tags are constants, Set cannot fail here
	_ = defaults.Set(&th)
	return th
}

// Validate checks structural constraints and returns *ConfigError on failure
func (t Thresholds) Validate() error {
	if err := validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ConfigError{Field: yamlName(fe.StructField()), Message: describe(fe)}
		}
		return &ConfigError{Field: "thresholds", Message: err.Error()}
	}
	for _, c := range t.RiskyCountries {
		if strings.TrimSpace(c) == "" {
			return &ConfigError{Field: "risky_countries", Message: "entries must not be blank"}
		}
	}
	return nil
}

func yamlName(structField string) string {
	if i := strings.IndexByte(structField, '['); i > 0 {
		structField = structField[:i]
	}
	switch structField {
	case "HomeCountry":
		return "home_country"
	case "RiskyCountries":
		return "risky_countries"
	case "TaxHavenKeywords":
		return "tax_haven_keywords"
	case "MinFreeFloat":
		return "min_free_float"
	default:
		return structField
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func (t Thresholds) clone() Thresholds {
	t.RiskyCountries = append([]string(nil), t.RiskyCountries...)
	t.TaxHavenKeywords = append([]string(nil), t.TaxHavenKeywords...)
	return t
}

// compiled is the lookup-friendly form of Thresholds
type compiled struct {
	home     string
	risky    map[string]bool
	keywords []string // lowercased
	minFloat int64
}

func compile(t Thresholds) compiled {
	c := compiled{
		risky:    make(map[string]bool, len(t.RiskyCountries)),
		minFloat: t.MinFreeFloat,
	}
	c.home, _ = NormalizeCountry(t.HomeCountry)
	for _, rc := range t.RiskyCountries {
		if code, ok := NormalizeCountry(rc); ok {
			c.risky[code] = true
		}
	}
	for _, kw := range t.TaxHavenKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			c.keywords = append(c.keywords, kw)
		}
	}
	return c
}
