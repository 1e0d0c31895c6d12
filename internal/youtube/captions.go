package youtube

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Caption XML parsing. YouTube timedtext documents are sequences of timed
// <text> elements whose character content is entity-escaped, and frequently
// double-escaped (a literal apostrophe arrives as &amp;#39;). Extraction
// works on the raw bytes so that exactly one decoding pass is applied.

var captionTextRe = regexp.MustCompile(`(?s)<text[^>]*>(.*?)</text>`)

// ParseCaptionXML converts a timedtext document into plain text: every
// <text> element's content, trimmed, entity-decoded, empties dropped, joined
// with single spaces in document order.
func ParseCaptionXML(data []byte) (string, error) {
	if err := validateMarkup(data); err != nil {
		return "", fmt.Errorf("parse captions: %w", err)
	}
	matches := captionTextRe.FindAllSubmatch(data, -1)
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		text := decodeEntities(strings.TrimSpace(string(m[1])))
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " "), nil
}

// validateMarkup walks the document with an XML tokenizer purely for
// well-formedness; content is extracted separately from the raw bytes.
// Documents without a single root element are accepted.
func validateMarkup(data []byte) error {
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// entityOrder is fixed: decoding the ampersand form first keeps a literal
// &amp;amp; from collapsing all the way down to &.
var entityOrder = [...][2]string{
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
}

func decodeEntities(s string) string {
	for _, e := range entityOrder {
		s = strings.ReplaceAll(s, e[0], e[1])
	}
	return s
}
