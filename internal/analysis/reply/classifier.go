// Package reply selects canned companion responses by keyword matching.
package reply

import (
	"strings"

	"github.com/otsyhq/otsy-backend/internal/model/persona"
)

// Classify maps free-form user text to the persona's response for it. The
// input is lowercased, then tested against the persona's rules in order; the
// first rule with any keyword contained in the text wins. First-match, not
// best-match: rule ordering is significant and part of the contract.
//
// Classify is pure and total. Text that matches nothing returns the
// persona's fallback line, never an empty string. Empty input is the
// caller's problem; the controller rejects it before classification.
func Classify(text string, p persona.Persona) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, rule := range p.Rules {
		for _, kw := range rule.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lower, kw) {
				return rule.Response
			}
		}
	}
	return p.Fallback
}
