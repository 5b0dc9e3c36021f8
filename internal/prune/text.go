// Package prune bounds the text the gateway feeds into model prompts and
// chat replies. Document bodies, transcript lines, and cached summaries all
// pass through here before they reach a prompt.
package prune

import "unicode/utf8"

const (
	// DocMarker is appended when a document body is cut for the prompt.
	DocMarker = "\n\n...(内容过长，已截断)"

	// DefaultDocMaxBytes caps document bodies sent for analysis, roughly
	// 12.5k tokens of Chinese text.
	DefaultDocMaxBytes = 50000

	// HistoryLineMaxRunes caps each transcript line quoted in a report
	// prompt.
	HistoryLineMaxRunes = 200

	// SummaryMaxRunes caps the cached per-document summary.
	SummaryMaxRunes = 150

	// SummaryDisplayRunes caps the summary shown in recent-document lists.
	SummaryDisplayRunes = 80
)

// Document cuts a document body to maxBytes, marking the cut. The cut lands
// on a rune boundary; zero or negative maxBytes means the default cap.
func Document(s string, maxBytes int) string {
	if maxBytes <= 0 {
		maxBytes = DefaultDocMaxBytes
	}
	if len(s) <= maxBytes {
		return s
	}
	return safeUTF8Prefix(s, maxBytes) + DocMarker
}

// Runes cuts s to at most max runes, appending an ellipsis when something
// was removed.
func Runes(s string, max int) string {
	if max <= 0 || s == "" {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

func safeUTF8Prefix(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) == 0 {
		return ""
	}
	if maxBytes >= len(s) {
		return s
	}
	cut := maxBytes
	for cut > 0 && cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut <= 0 {
		return ""
	}
	return s[:cut]
}
