package youtube

import (
	"strings"
	"testing"
)

func TestParseCaptionXML(t *testing.T) {
	doc := `<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.0" dur="1.5">Hello</text>
  <text start="1.5" dur="2.0">world</text>
</transcript>`
	got, err := ParseCaptionXML([]byte(doc))
	if err != nil {
		t.Fatalf("ParseCaptionXML: %v", err)
	}
	if got != "Hello world" {
		t.Errorf("got %q, want %q", got, "Hello world")
	}
}

func TestParseCaptionXMLEntities(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"basic entities", "a &amp; b &lt;c&gt; &quot;d&quot; e&#39;s", `a & b <c> "d" e's`},
		// one decode pass: a literal &amp;amp; must survive as &amp;, never
		// collapse down to a bare &.
		{"double escaped amp", "x &amp;amp; y", "x &amp; y"},
		{"double escaped apostrophe", "it&amp;#39;s", "it's"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `<transcript><text start="0" dur="1">` + tt.body + `</text></transcript>`
			got, err := ParseCaptionXML([]byte(doc))
			if err != nil {
				t.Fatalf("ParseCaptionXML: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCaptionXMLDropsEmpties(t *testing.T) {
	doc := `<transcript><text start="0" dur="1">  </text><text start="1" dur="1">only</text><text start="2" dur="1"></text></transcript>`
	got, err := ParseCaptionXML([]byte(doc))
	if err != nil {
		t.Fatalf("ParseCaptionXML: %v", err)
	}
	if got != "only" {
		t.Errorf("got %q, want %q", got, "only")
	}
}

func TestParseCaptionXMLMalformed(t *testing.T) {
	_, err := ParseCaptionXML([]byte(`<transcript><text start="0">unclosed`))
	if err == nil {
		t.Fatal("expected error for malformed markup")
	}
	if !strings.Contains(err.Error(), "parse captions") {
		t.Errorf("error %q should mention caption parsing", err)
	}
}
