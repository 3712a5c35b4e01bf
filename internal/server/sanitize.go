package server

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxInputLength caps a stored user turn, in runes
const maxInputLength = 4000

// externalTextPolicy strips every tag from text fetched from third-party APIs
var externalTextPolicy = bluemonday.StrictPolicy()

// sanitizeInput keeps user text as typed apart from dropping invalid UTF-8 and
// capping its length
func sanitizeInput(s string) string {
	s = strings.ToValidUTF8(s, "")

	if r := []rune(s); len(r) > maxInputLength {
		s = string(r[:maxInputLength])
	}
	return s
}

// cleanExternalText removes markup from text that did not come from the user, such
// as breed descriptions, and collapses it to one line
func cleanExternalText(s string) string {
	s = html.UnescapeString(externalTextPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}
