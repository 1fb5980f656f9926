package batch

import "strings"

// NormalizeTickers accepts repeated and comma-separated values, upper-cases
// them and drops blanks and duplicates. First occurrence keeps its position.
func NormalizeTickers(values ...string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			t := strings.ToUpper(strings.TrimSpace(part))
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
