package service

import "strings"

// normalizeLabel trims surrounding whitespace from a tag or edge type name.
func normalizeLabel(label string) string {
	return strings.TrimSpace(label)
}

// normalizeProps trims property names and drops blank ones. The input map is
// returned as is when no key needs changing.
func normalizeProps(props map[string]any) map[string]any {
	clean := true
	for k := range props {
		if k == "" || strings.TrimSpace(k) != k {
			clean = false
			break
		}
	}
	if clean {
		return props
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		if k = strings.TrimSpace(k); k != "" {
			out[k] = v
		}
	}
	return out
}
