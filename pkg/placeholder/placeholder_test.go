package placeholder

import (
	"strings"
	"testing"

	"github.com/matzehuels/blockpress/pkg/block"
)

func TestEncode(t *testing.T) {
	got := Encode("heading", "h1", block.Props{"text": "Hi", "level": "h2"}, "")
	want := `<div data-block-type="heading" data-block-id="h1" data-props="{&#34;level&#34;:&#34;h2&#34;,&#34;text&#34;:&#34;Hi&#34;}"></div>`
	if got != want {
		t.Errorf("Encode() =\n%s\nwant\n%s", got, want)
	}
}

func TestEncodeEscapesQuotes(t *testing.T) {
	props := block.Props{"text": `It's a "quote" </div><script>alert(1)</script>`}
	got := Encode("text", "t'1", props, "")

	attrs := strings.TrimSuffix(strings.TrimPrefix(got, "<div "), "></div>")
	for _, bad := range []string{"'", "<script", "</div"} {
		if strings.Contains(attrs, bad) {
			t.Errorf("placeholder attributes contain %q: %s", bad, got)
		}
	}
	// Only the three attribute delimiters pairs may contain raw double quotes.
	if n := strings.Count(attrs, `"`); n != 6 {
		t.Errorf("expected 6 attribute quotes, found %d in %s", n, attrs)
	}
}

func TestRoundTrip(t *testing.T) {
	props := block.Props{
		"text":  `Fish & "Chips" <b>'n'</b>`,
		"level": "h3",
		"n":     float64(4),
		"style": map[string]any{"color": "#fff"},
	}
	html := "<p>before</p>" + Encode("heading", "abc", props, "<span>inner</span>") + "<p>after</p>"

	found := Scan(html)
	if len(found) != 1 {
		t.Fatalf("Scan() found %d placeholders, want 1", len(found))
	}
	p := found[0]
	if p.Type != "heading" || p.ID != "abc" {
		t.Errorf("placeholder = %+v", p)
	}
	if p.Props.String("text", "") != props["text"] {
		t.Errorf("text = %q, want %q", p.Props.String("text", ""), props["text"])
	}
	if p.Props.Int("n", 0) != 4 || p.Props.Map("style")["color"] != "#fff" {
		t.Errorf("props = %v", p.Props)
	}
	if b := p.Block(); b.ID != "abc" || b.Type != "heading" {
		t.Errorf("Block() = %+v", b)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	props := block.Props{"b": 1, "a": 2, "c": map[string]any{"z": 1, "y": 2}}
	first := Encode("x", "1", props, "")
	for i := 0; i < 10; i++ {
		if got := Encode("x", "1", props, ""); got != first {
			t.Fatalf("Encode() not deterministic:\n%s\n%s", first, got)
		}
	}
}

func TestScanNested(t *testing.T) {
	inner := Encode("text", "t1", block.Props{"content": "x"}, "")
	outer := Encode("section", "s1", block.Props{}, inner)

	found := Scan(outer)
	if len(found) != 2 || found[0].Type != "section" || found[1].Type != "text" {
		t.Errorf("Scan() = %+v", found)
	}
}

func TestDecodePropsMalformed(t *testing.T) {
	if got := DecodeProps("{not json"); len(got) != 0 {
		t.Errorf("DecodeProps(malformed) = %v", got)
	}
	if got := DecodeProps(""); got == nil || len(got) != 0 {
		t.Errorf("DecodeProps(empty) = %v", got)
	}
	if found := Scan(`<div data-block-id="x"></div><div data-block-type="">`); len(found) != 0 {
		t.Errorf("Scan() accepted elements without a type: %+v", found)
	}
}
