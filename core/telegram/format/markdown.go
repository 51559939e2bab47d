package format

import "regexp"

var mdV1Re = regexp.MustCompile("([_*`\\[])")

// EscapeMarkdown escapes the characters Telegram's legacy Markdown mode treats
// as formatting, so item names and keys entered by users render literally.
func EscapeMarkdown(text string) string {
	return mdV1Re.ReplaceAllString(text, `\$1`)
}
