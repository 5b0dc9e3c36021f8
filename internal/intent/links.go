package intent

import "regexp"

// Link patterns for the Lark/Feishu document surfaces. A link in the message
// is unambiguous evidence of intent, so these are evaluated before any
// keyword rule.
var (
	bitableLinkRe = regexp.MustCompile(`https?://[^/\s]+/base/([a-zA-Z0-9]+)(?:\?table=([a-zA-Z0-9]+))?`)
	docxLinkRe    = regexp.MustCompile(`https?://[^/\s]+/docx/([a-zA-Z0-9]+)`)
	docLinkRe     = regexp.MustCompile(`https?://[^/\s]+/doc/([a-zA-Z0-9]+)`)
	docsLinkRe    = regexp.MustCompile(`https?://[^/\s]+/docs/([a-zA-Z0-9]+)`)
)

// BitableLink is a parsed multi-dimensional table link.
type BitableLink struct {
	AppToken string
	TableID  string
}

// ExtractBitableLink returns the first bitable link in text, if any. The
// table id is optional; callers fall back to the app's first table.
func ExtractBitableLink(text string) (BitableLink, bool) {
	m := bitableLinkRe.FindStringSubmatch(text)
	if m == nil {
		return BitableLink{}, false
	}
	return BitableLink{AppToken: m[1], TableID: m[2]}, true
}

// DocLink is a parsed document link. Type is the URL shape it was found
// under (docx, doc, or docs); all three map to the same document intent.
type DocLink struct {
	DocumentID string
	Type       string
}

// ExtractDocLink returns the first document link in text, checking the three
// accepted URL shapes in order.
func ExtractDocLink(text string) (DocLink, bool) {
	if m := docxLinkRe.FindStringSubmatch(text); m != nil {
		return DocLink{DocumentID: m[1], Type: "docx"}, true
	}
	if m := docLinkRe.FindStringSubmatch(text); m != nil {
		return DocLink{DocumentID: m[1], Type: "doc"}, true
	}
	if m := docsLinkRe.FindStringSubmatch(text); m != nil {
		return DocLink{DocumentID: m[1], Type: "docs"}, true
	}
	return DocLink{}, false
}
