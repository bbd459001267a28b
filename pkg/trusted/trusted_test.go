package trusted

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/hooks"
	"github.com/matzehuels/blockpress/pkg/placeholder"
	"github.com/matzehuels/blockpress/pkg/registry"
	"github.com/matzehuels/blockpress/pkg/sanitize"
)

func testRegistry(t *testing.T, bus *hooks.Bus, logger *log.Logger) *registry.Registry {
	t.Helper()
	reg := registry.New(bus, logger)
	reg.MustRegister(registry.Definition{
		Type:     "greeting",
		Label:    "Greeting",
		Defaults: block.Props{"name": "world"},
		Generators: map[string]registry.Generator{
			registry.ContextPage: registry.Deferred(),
		},
		Trusted: func(p block.Props, opts registry.Options) string {
			return "<p>Hello, " + sanitize.Text(p.String("name", "")) + "</p>"
		},
	})
	reg.MustRegister(registry.Definition{
		Type:     "box",
		Label:    "Box",
		Supports: registry.Capabilities{Nesting: true},
		Trusted: func(p block.Props, opts registry.Options) string {
			return `<div class="box">` + opts.Inner + "</div>"
		},
	})
	reg.MustRegister(registry.Definition{
		Type:  "count",
		Label: "Count",
		Trusted: func(p block.Props, opts registry.Options) string {
			return "<span>" + sanitize.Text(strings.Repeat("x", len(opts.Document))) + "</span>"
		},
	})
	reg.MustRegister(registry.Definition{
		Type:    "broken",
		Label:   "Broken",
		Trusted: func(block.Props, registry.Options) string { panic("bad trusted generator") },
	})
	reg.MustRegister(registry.Definition{Type: "plain", Label: "Plain"})
	return reg
}

func TestFinalizePassesThroughPlainMarkup(t *testing.T) {
	r := New(testRegistry(t, nil, nil))
	in := `<div class="bp-content"><p>Tom &amp; Jerry</p><!-- note --><br/><div><span data-block-type="greeting">x</span></div></div>`
	if got := r.Finalize(in, nil); got != in {
		t.Errorf("Finalize() = %q, want input unchanged", got)
	}
}

func TestFinalizeReplacesPlaceholders(t *testing.T) {
	r := New(testRegistry(t, nil, nil))
	in := `<div class="bp-content">` +
		placeholder.Encode("greeting", "g1", block.Props{"name": `<O'Brien & "Co">`}, "") +
		`<p>between</p>` +
		placeholder.Encode("greeting", "g2", nil, "") +
		`</div>`

	got := r.Finalize(in, nil)
	want := `<div class="bp-content"><p>Hello, &lt;O&#39;Brien &amp; &#34;Co&#34;&gt;</p><p>between</p><p>Hello, world</p></div>`
	if got != want {
		t.Errorf("Finalize() =\n%s\nwant\n%s", got, want)
	}
}

func TestFinalizeNested(t *testing.T) {
	r := New(testRegistry(t, nil, nil))
	inner := `<div class="plain"><div>` + placeholder.Encode("greeting", "g", block.Props{"name": "inner"}, "") + `</div></div>`
	in := placeholder.Encode("box", "outer", nil, placeholder.Encode("box", "mid", nil, inner)+"<p>tail</p>")

	got := r.Finalize(in, nil)
	want := `<div class="box"><div class="box"><div class="plain"><div><p>Hello, inner</p></div></div></div><p>tail</p></div>`
	if got != want {
		t.Errorf("Finalize() =\n%s\nwant\n%s", got, want)
	}
}

func TestFinalizeUnknownAndMissingTrusted(t *testing.T) {
	var buf bytes.Buffer
	r := New(testRegistry(t, nil, log.New(&buf)))

	in := placeholder.Encode("mystery", "m", nil, "<p>kept</p>") + placeholder.Encode("plain", "p", nil, "")
	if got := r.Finalize(in, nil); got != "<p>kept</p>" {
		t.Errorf("Finalize() = %q", got)
	}
	if !strings.Contains(buf.String(), "unknown block type") || !strings.Contains(buf.String(), "no trusted generator") {
		t.Errorf("diagnostics missing: %s", buf.String())
	}
}

func TestFinalizeRecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	r := New(testRegistry(t, nil, log.New(&buf)))
	in := placeholder.Encode("broken", "b", nil, "") + placeholder.Encode("greeting", "g", nil, "")

	if got := r.Finalize(in, nil); got != "<p>Hello, world</p>" {
		t.Errorf("Finalize() = %q", got)
	}
	if !strings.Contains(buf.String(), "panicked") {
		t.Error("panic not logged")
	}
}

func TestFinalizeMalformedPayload(t *testing.T) {
	r := New(testRegistry(t, nil, nil))
	in := `<div data-block-type="greeting" data-block-id="g" data-props="{not json"></div>`
	if got := r.Finalize(in, nil); got != "<p>Hello, world</p>" {
		t.Errorf("Finalize() = %q, want defaults applied", got)
	}
}

func TestFinalizePassesDocument(t *testing.T) {
	r := New(testRegistry(t, nil, nil))
	doc := block.Tree{{ID: "a", Type: "x"}, {ID: "b", Type: "x"}, {ID: "c", Type: "x"}}
	if got := r.Finalize(placeholder.Encode("count", "c", nil, ""), doc); got != "<span>xxx</span>" {
		t.Errorf("Finalize() = %q", got)
	}
}

func TestTrustedHTMLFilter(t *testing.T) {
	bus := hooks.New(nil)
	bus.AddFilter(hooks.TrustedHTML, func(v any, args ...any) (any, error) {
		b := args[0].(block.Block)
		return `<section id="` + b.ID + `">` + v.(string) + "</section>", nil
	})
	r := New(testRegistry(t, bus, nil))

	got := r.Finalize(placeholder.Encode("greeting", "g7", nil, ""), nil)
	if got != `<section id="g7"><p>Hello, world</p></section>` {
		t.Errorf("Finalize() = %q", got)
	}
}

func TestFinalizeIdempotentOnOutput(t *testing.T) {
	r := New(testRegistry(t, nil, nil))
	once := r.Finalize(placeholder.Encode("greeting", "g", nil, ""), nil)
	if twice := r.Finalize(once, nil); twice != once {
		t.Errorf("finalizing finalized markup changed it: %q -> %q", once, twice)
	}
}
