package screenconfig

import (
	"github.com/wonny/supersignal/internal/risk"
)

// Config is the screening file: rule thresholds and provider priority.
// Defaults are applied before decoding, so every key is optional.
type Config struct {
	Thresholds     risk.Thresholds `yaml:"thresholds" json:"thresholds"`
	SourcePriority SourcePriority  `yaml:"source_priority" json:"source_priority"`
}

// SourcePriority lists providers in winning order.
// Fields entries override Default per canonical field; entries given in the
// file are merged over the built-in ones.
type SourcePriority struct {
	Default []string            `yaml:"default" json:"default" default:"[\"yahoo\",\"finviz\"]" validate:"min=1,dive,required"`
	Fields  map[string][]string `yaml:"fields" json:"fields" default:"{\"is_adr\":[\"finviz\",\"yahoo\"]}" validate:"dive,min=1,dive,required"`
}
