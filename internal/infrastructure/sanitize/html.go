// Package sanitize cleans user-authored HTML for course content.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

// HTML applies the bluemonday UGC policy: formatting, links and tables are
// kept; scripts, event handlers and javascript: URLs are removed.
type HTML struct {
	policy *bluemonday.Policy
}

func NewHTML() *HTML {
	return &HTML{policy: bluemonday.UGCPolicy()}
}

func (h *HTML) Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return h.policy.Sanitize(s)
}
