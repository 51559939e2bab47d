// Package callbacks extracts colon-delimited payloads from callback updates.
// All inline buttons carry raw data like "cat:ebooks" or "admin:item:add";
// the token before the first colon is the routing verb, the remainder is the
// handler's argument.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Data returns the raw callback payload with Telebot's "\f" prefix stripped.
func Data(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	return strings.TrimSpace(raw)
}

// Verb returns the routing verb of a payload, the token before the first colon.
// A payload without a colon is its own verb.
func Verb(payload string) string {
	verb, _, _ := strings.Cut(payload, ":")
	return verb
}

// Arg returns everything after the first colon, or "" when there is none.
func Arg(payload string) string {
	_, arg, _ := strings.Cut(payload, ":")
	return arg
}
