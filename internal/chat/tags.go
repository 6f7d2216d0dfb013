// Package chat provides helpers for working with raw game chat lines.
package chat

import (
	"regexp"
	"strings"
)

// tagRe matches chat markup tags like <col=ff0000>, </col> and <img=5>.
var tagRe = regexp.MustCompile(`<[^>]*>`)

// nbsp replaces the non-breaking space the client uses inside some messages.
var nbsp = strings.NewReplacer(" ", " ")

// RemoveTags strips markup tags from a chat message.
//
// This is a pure text transform: tags only carry color and icon decoration
// and have no effect on what the message says.
func RemoveTags(msg string) string {
	return tagRe.ReplaceAllString(msg, "")
}

// Normalize strips tags and normalizes whitespace so rule matching sees the
// same text regardless of how the client decorated it.
func Normalize(msg string) string {
	msg = RemoveTags(msg)
	msg = nbsp.Replace(msg)
	return strings.TrimSpace(msg)
}
