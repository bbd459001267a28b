package outline

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/blocks"
	"github.com/matzehuels/blockpress/pkg/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New(nil, nil)
	if err := blocks.RegisterAll(reg); err != nil {
		t.Fatal(err)
	}
	return reg
}

func testTree() block.Tree {
	return block.Tree{
		{ID: "h1", Type: "heading", Props: block.Props{"text": "<em>Welcome</em>", "level": "h1"}},
		{ID: "s1", Type: "section", Props: block.Props{block.ChildrenKey: []any{
			map[string]any{"id": "c1", "type": "column", "props": map[string]any{
				block.ChildrenKey: []any{map[string]any{"id": "t1", "type": "text"}},
			}},
		}}},
		{ID: "toc", Type: "toc"},
		{ID: "x", Type: "mystery"},
	}
}

func TestToDOTStructure(t *testing.T) {
	dot := ToDOT(testTree(), testRegistry(t), Options{})

	for _, want := range []string{
		`"document" -> "block:h1";`,
		`"document" -> "block:s1";`,
		`"block:s1" -> "block:c1";`,
		`"block:c1" -> "block:t1";`,
		`"document" -> "block:toc";`,
		`"block:h1" [label="Heading\nh1"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
	if strings.Count(dot, "->") != 6 {
		t.Errorf("want 6 edges, got %d", strings.Count(dot, "->"))
	}
}

func TestToDOTMarksBlocks(t *testing.T) {
	dot := ToDOT(testTree(), testRegistry(t), Options{Context: registry.ContextEmail})

	lines := map[string]string{}
	for _, l := range strings.Split(dot, "\n") {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, `"block:`) && !strings.Contains(l, "->") {
			lines[l[1:strings.Index(l[1:], `"`)+1]] = l
		}
	}

	tests := []struct {
		id   string
		want string
	}{
		{"block:toc", `tooltip="not rendered in email"`},
		{"block:x", `tooltip="unknown block type"`},
		{"block:s1", `fillcolor="#e8f0fe"`},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if !strings.Contains(lines[tt.id], tt.want) {
				t.Errorf("%s: %q missing %s", tt.id, lines[tt.id], tt.want)
			}
		})
	}
	if !strings.Contains(dot, `label="document (email)"`) {
		t.Error("root label should name the context")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testTree(), testRegistry(t), Options{Detailed: true})
	if !strings.Contains(dot, `label="Heading\nh1\nlevel: h1\ntext: Welcome"`) {
		t.Errorf("detailed label missing or unsanitized:\n%s", dot)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("word ", 20)
	got := truncate(long)
	if r := []rune(got); len(r) != maxValueLen || !strings.HasSuffix(got, "…") {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("  a \n b "); got != "a b" {
		t.Errorf("whitespace not collapsed: %q", got)
	}
}

func TestRenderSVG(t *testing.T) {
	dot := ToDOT(testTree(), testRegistry(t), Options{})
	svg, err := RenderSVG(context.Background(), dot)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("unexpected svg header: %.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 44.00" width="62" height="44"><g/></svg>`
	if got := string(normalizeViewBox(in)); got != want {
		t.Errorf("normalizeViewBox() = %s", got)
	}
	if got := normalizeViewBox([]byte("<svg/>")); string(got) != "<svg/>" {
		t.Error("svg without viewBox should be unchanged")
	}
}
