package redact

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// quoteReplacer maps curly single and double quotes to their straight
// equivalents so downstream regexes see one apostrophe form.
var quoteReplacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
)

// Normalize returns the canonical form of raw: NFC composition, straight
// quotes, and all whitespace runs (including leading and trailing)
// collapsed to single spaces. Pure and idempotent; every span offset in
// the pipeline refers to this canonical text.
func Normalize(raw string) string {
	s := norm.NFC.String(raw)
	s = quoteReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
