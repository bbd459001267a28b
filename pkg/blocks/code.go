package blocks

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/registry"
	"github.com/matzehuels/blockpress/pkg/sanitize"
	"github.com/matzehuels/blockpress/pkg/style"
)

// DefaultCodeTheme is the chroma style used when a code block names none or
// an unknown one.
const DefaultCodeTheme = "github"

// Code returns the source code definition. Highlighting uses inline styles
// so the same markup works in pages and in mail clients.
func Code() registry.Definition {
	return registry.Definition{
		Type:        "code",
		Label:       "Code",
		Category:    CategoryText,
		Description: "A syntax-highlighted code listing.",
		Icon:        "code",
		Keywords:    []string{"snippet", "source", "pre"},
		Defaults:    block.Props{"code": "", "language": "", "theme": DefaultCodeTheme},
		Supports:    registry.Capabilities{Spacing: true},
		Generators:  deferredPage(codeEmail),
		Trusted:     codeTrusted,
	}
}

func codeTrusted(props block.Props, _ registry.Options) string {
	src := props.String("code", "")
	if strings.TrimSpace(src) == "" {
		return ""
	}
	return open("div", "bp-code", pageCSS(props), "data-language", languageName(props)) +
		highlight(src, props.String("language", ""), props.String("theme", DefaultCodeTheme)) + "</div>"
}

func codeEmail(props block.Props, _ registry.Options) string {
	src := props.String("code", "")
	if strings.TrimSpace(src) == "" {
		return ""
	}
	return open("div", "", declare(
		[2]string{"margin", "0 0 16px 0"},
		[2]string{"font-size", "13px"},
		[2]string{"overflow-x", "auto"},
	)) + highlight(src, props.String("language", ""), props.String("theme", DefaultCodeTheme)) + "</div>"
}

func languageName(props block.Props) string {
	if l := lexers.Get(props.String("language", "")); l != nil {
		return strings.ToLower(l.Config().Name)
	}
	return ""
}

// highlight renders src as a <pre> with inline token styles. Unknown
// languages are guessed from the source; failures fall back to escaped plain
// text.
func highlight(src, language, theme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(src)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	st := styles.Get(theme)
	if st == nil {
		st = styles.Fallback
	}

	it, err := lexer.Tokenise(nil, src)
	if err != nil {
		return plainCode(src)
	}
	var buf bytes.Buffer
	f := chromahtml.New(chromahtml.WithClasses(false))
	if err := f.Format(&buf, st, it); err != nil {
		return plainCode(src)
	}
	return buf.String()
}

func plainCode(src string) string {
	return `<pre style="padding:12px;background-color:#f6f8fa;white-space:pre-wrap"><code>` + sanitize.Text(src) + "</code></pre>"
}

// markdown converts GFM without raw HTML passthrough; the result is cleaned
// again with the rich text policy.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithXHTML()),
)

// Markdown returns the markdown definition.
func Markdown() registry.Definition {
	return registry.Definition{
		Type:        "markdown",
		Label:       "Markdown",
		Category:    CategoryText,
		Description: "Content written in GitHub-flavored Markdown.",
		Icon:        "markdown",
		Keywords:    []string{"md", "gfm", "prose"},
		Defaults:    block.Props{"content": ""},
		Supports:    registry.Capabilities{Spacing: true, Color: true},
		Generators:  deferredPage(markdownEmail),
		Trusted:     markdownTrusted,
	}
}

// RenderMarkdown converts src to sanitized HTML. It returns "" for empty
// input or a conversion failure.
func RenderMarkdown(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return sanitize.RichText(buf.String())
}

func markdownTrusted(props block.Props, _ registry.Options) string {
	body := RenderMarkdown(props.String("content", ""))
	if body == "" {
		return ""
	}
	return open("div", "bp-markdown", pageCSS(props, [2]string{"color", style.ResolveTextColor(props, "")})) + body + "</div>"
}

func markdownEmail(props block.Props, opts registry.Options) string {
	body := RenderMarkdown(props.String("content", ""))
	if body == "" {
		return ""
	}
	return open("div", "", declare(
		[2]string{"font-family", fontFamily(opts)},
		[2]string{"line-height", "1.6"},
		[2]string{"color", textColor(props, opts, "#333333")},
	)) + body + "</div>"
}
