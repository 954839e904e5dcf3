// Package sanitize strips suspected prompt-injection content from user text
// before it is interpolated into model prompts. This is best-effort hygiene,
// not a security boundary.
package sanitize

import (
	"regexp"
	"strings"
)

// injectionPatterns is applied in order. Each pattern removes a known class
// of injection attempt: HTML-like role tags that mimic chat transcripts, and
// phrasing that tries to override the system instruction.
var injectionPatterns = []*regexp.Regexp{
	// Role tags: <system>...</system>, <assistant>, <instructions>, etc.
	regexp.MustCompile(`(?is)<\s*/?\s*(system|assistant|user|instructions?|prompt)\s*>`),
	// Bracketed instruction markers used by some chat formats.
	regexp.MustCompile(`(?i)\[/?(INST|SYS|SYSTEM)\]`),
	// "ignore previous/above/all instructions" and variants.
	regexp.MustCompile(`(?i)ignore\s+(all\s+|any\s+)?(previous|prior|above|earlier)\s+(instructions?|prompts?|messages?|context)`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+|any\s+)?(previous|prior|above|earlier)\s+(instructions?|prompts?|messages?)`),
	regexp.MustCompile(`(?i)forget\s+(everything|all)\s+(you\s+were\s+told|above|before)`),
	// Attempts to redefine the assistant's role.
	regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an|the)\s+[^.\n]{0,80}`),
	regexp.MustCompile(`(?i)new\s+(system\s+)?instructions?\s*:`),
	// Leaking the system prompt.
	regexp.MustCompile(`(?i)(reveal|print|repeat|output)\s+(your|the)\s+(system\s+)?(prompt|instructions?)`),
}

var excessBlankLines = regexp.MustCompile(`\n{3,}`)

// Text removes suspected injection patterns from s and collapses runs of
// three or more newlines into two.
func Text(s string) string {
	for _, re := range injectionPatterns {
		s = re.ReplaceAllString(s, "")
	}
	s = excessBlankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
