package ai

import "strings"

const (
	fenceOpen  = "```html"
	fenceClose = "```"
)

// ExtractDocument recovers a single HTML document from free-form model
// output. Models inconsistently wrap the document in commentary or markdown
// code fences, so extraction falls through three tiers:
//
//  1. The interior of the first ```html fenced block, trimmed. Only the
//     first block is honored so trailing example snippets are never picked up.
//  2. If the trimmed text already starts with a doctype or <html> tag, the
//     trimmed text as-is.
//  3. The input unchanged. Deciding whether the result is usable is the
//     caller's problem; guessing further risks false positives.
//
// The function is pure and total: it never fails and performs no I/O.
func ExtractDocument(raw string) string {
	if i := strings.Index(raw, fenceOpen); i >= 0 {
		interior := raw[i+len(fenceOpen):]
		if j := strings.Index(interior, fenceClose); j >= 0 {
			return strings.TrimSpace(interior[:j])
		}
		// Unclosed fence: fall through rather than return a partial block.
	}

	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html") {
		return trimmed
	}

	return raw
}
