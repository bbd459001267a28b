package blocks

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/hooks"
	"github.com/matzehuels/blockpress/pkg/registry"
	"github.com/matzehuels/blockpress/pkg/sanitize"
	"github.com/matzehuels/blockpress/pkg/style"
)

// Button returns the call-to-action button definition.
func Button() registry.Definition {
	return registry.Definition{
		Type:        "button",
		Label:       "Button",
		Category:    CategoryWidget,
		Description: "A linked call-to-action button.",
		Icon:        "button",
		Keywords:    []string{"cta", "link", "action"},
		Defaults: block.Props{
			"text":            "Click here",
			"link":            "#",
			"align":           "center",
			"backgroundColor": "#0073aa",
			"textColor":       "#ffffff",
			"borderRadius":    4,
			"newTab":          false,
		},
		Supports:   registry.Capabilities{Alignment: true, Spacing: true, Color: true},
		Generators: deferredPage(buttonEmail),
		Trusted:    buttonTrusted,
		Validate: func(p block.Props) bool {
			return strings.TrimSpace(p.String("text", "")) != ""
		},
	}
}

type buttonStyle struct {
	href, label, align, bg, fg, radius, padding string
}

func resolveButton(props block.Props) buttonStyle {
	bg := style.ResolveBackgroundColor(props)
	if bg == "" {
		bg = "#0073aa"
	}
	return buttonStyle{
		href:    sanitize.URL(props.String("link", "")),
		label:   sanitize.Text(props.String("text", "")),
		align:   style.ResolveAlign(props, "center"),
		bg:      bg,
		fg:      style.ResolveTextColor(props, "#ffffff"),
		radius:  style.Value(style.Length(props.String("borderRadius", "4"))),
		padding: style.ResolvePadding(props, "12px 24px"),
	}
}

func buttonTrusted(props block.Props, _ registry.Options) string {
	s := resolveButton(props)
	if s.label == "" {
		return ""
	}
	link := open("a", "bp-button__link", declare(
		[2]string{"display", "inline-block"},
		[2]string{"background-color", s.bg},
		[2]string{"color", s.fg},
		[2]string{"padding", s.padding},
		[2]string{"border-radius", s.radius},
		[2]string{"text-decoration", "none"},
	), append([]string{"href", s.href}, linkAttrs(props)...)...)
	return open("div", "bp-button", pageCSS(props, [2]string{"text-align", s.align})) + link + s.label + "</a></div>"
}

// buttonEmail renders a bulletproof button: a padded table cell for most
// clients and a VML round rectangle for Outlook on Windows.
func buttonEmail(props block.Props, opts registry.Options) string {
	s := resolveButton(props)
	if s.label == "" {
		return ""
	}
	font := fontFamily(opts)
	radiusPx := props.Int("borderRadius", 4)
	const height = 44
	arc := radiusPx * 100 / height
	if arc > 50 {
		arc = 50
	}

	var b strings.Builder
	b.WriteString(`<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="100%"><tr><td align="` + sanitize.Attr(s.align) + `">`)
	b.WriteString(`<!--[if mso]><v:roundrect xmlns:v="urn:schemas-microsoft-com:vml" xmlns:w="urn:schemas-microsoft-com:office:word" href="` + sanitize.Attr(s.href) +
		`" style="height:` + strconv.Itoa(height) + `px;v-text-anchor:middle;width:220px;" arcsize="` + strconv.Itoa(arc) + `%" stroke="f" fillcolor="` + sanitize.Attr(s.bg) + `">` +
		`<w:anchorlock/><center style="color:` + sanitize.Attr(s.fg) + `;font-family:` + sanitize.Attr(font) + `;font-size:16px;font-weight:bold;">` + s.label + `</center></v:roundrect><![endif]-->`)
	b.WriteString(`<!--[if !mso]><!-->`)
	b.WriteString(open("a", "", declare(
		[2]string{"display", "inline-block"},
		[2]string{"background-color", s.bg},
		[2]string{"color", s.fg},
		[2]string{"font-family", font},
		[2]string{"font-size", "16px"},
		[2]string{"font-weight", "bold"},
		[2]string{"line-height", "1.2"},
		[2]string{"padding", s.padding},
		[2]string{"border-radius", s.radius},
		[2]string{"text-decoration", "none"},
	), append([]string{"href", s.href}, linkAttrs(props)...)...))
	b.WriteString(s.label + "</a>")
	b.WriteString(`<!--<![endif]-->`)
	b.WriteString("</td></tr></table>")
	return b.String()
}

// Image returns the image definition. Sources pass through the
// [hooks.AssetURL] filter so a host can rewrite them (for example to a CDN).
func Image() registry.Definition {
	return registry.Definition{
		Type:        "image",
		Label:       "Image",
		Category:    CategoryMedia,
		Description: "A picture with optional caption and link.",
		Icon:        "image",
		Keywords:    []string{"photo", "picture", "figure"},
		Defaults:    block.Props{"src": "", "alt": "", "width": "", "align": "center", "link": "", "caption": ""},
		Supports:    registry.Capabilities{Alignment: true, Spacing: true},
		Generators:  deferredPage(imageEmail),
		Trusted:     imageTrusted,
		Validate: func(p block.Props) bool {
			return sanitize.ImageURL(p.String("src", "")) != ""
		},
	}
}

// assetURL validates src, runs the asset filter, and validates the result
// again.
func assetURL(src string, opts registry.Options) string {
	src = sanitize.ImageURL(src)
	if src == "" {
		return ""
	}
	return sanitize.ImageURL(hooks.Apply(opts.Bus, hooks.AssetURL, src, opts.Block, opts.Context))
}

func imageTrusted(props block.Props, opts registry.Options) string {
	src := assetURL(props.String("src", ""), opts)
	if src == "" {
		return ""
	}
	width := style.Value(style.Length(props.String("width", "")))
	img := open("img", "", declare(
		[2]string{"max-width", "100%"},
		[2]string{"height", "auto"},
		[2]string{"width", width},
	), "src", src, "alt", props.String("alt", ""), "loading", "lazy")
	if link := props.String("link", ""); link != "" {
		img = open("a", "", "", append([]string{"href", sanitize.URL(link)}, linkAttrs(props)...)...) + img + "</a>"
	}

	var b strings.Builder
	b.WriteString(open("figure", "bp-image", pageCSS(props, [2]string{"text-align", style.ResolveAlign(props, "center")})))
	b.WriteString(img)
	if c := strings.TrimSpace(props.String("caption", "")); c != "" {
		b.WriteString("<figcaption>" + sanitize.Text(c) + "</figcaption>")
	}
	b.WriteString("</figure>")
	return b.String()
}

func imageEmail(props block.Props, opts registry.Options) string {
	src := assetURL(props.String("src", ""), opts)
	if src == "" {
		return ""
	}
	align := style.ResolveAlign(props, "center")
	css := [][2]string{
		{"display", "block"},
		{"max-width", "100%"},
		{"height", "auto"},
		{"border", "0"},
	}
	if align == "center" {
		css = append(css, [2]string{"margin", "0 auto"})
	}
	extra := []string{"src", src, "alt", props.String("alt", "")}
	if w := props.Int("width", 0); w > 0 {
		extra = append(extra, "width", strconv.Itoa(w))
	}
	img := open("img", "", declare(css...), extra...)
	if link := props.String("link", ""); link != "" {
		img = open("a", "", "", "href", sanitize.URL(link), "target", "_blank") + img + "</a>"
	}

	var b strings.Builder
	b.WriteString(`<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="100%"><tr><td align="` + sanitize.Attr(align) + `">`)
	b.WriteString(img)
	if c := strings.TrimSpace(props.String("caption", "")); c != "" {
		b.WriteString(`<p style="margin:8px 0 0 0;font-size:13px;color:#666666;font-family:` + sanitize.Attr(fontFamily(opts)) + `">` + sanitize.Text(c) + "</p>")
	}
	b.WriteString("</td></tr></table>")
	return b.String()
}

// Video returns the video definition. Pages embed YouTube and Vimeo players;
// email links a thumbnail to the video.
func Video() registry.Definition {
	return registry.Definition{
		Type:        "video",
		Label:       "Video",
		Category:    CategoryMedia,
		Description: "An embedded YouTube or Vimeo video.",
		Icon:        "video",
		Keywords:    []string{"youtube", "vimeo", "embed", "movie"},
		Defaults:    block.Props{"url": "", "title": "Video", "thumbnail": ""},
		Supports:    registry.Capabilities{Spacing: true},
		Generators:  deferredPage(videoEmail),
		Trusted:     videoTrusted,
		Validate: func(p block.Props) bool {
			_, ok := ParseVideo(p.String("url", ""))
			return ok
		},
	}
}

// VideoRef identifies a video on a supported provider.
type VideoRef struct {
	Provider string // "youtube" or "vimeo"
	ID       string
}

var (
	youTubeID = regexp.MustCompile(`^[A-Za-z0-9_-]{6,20}$`)
	vimeoID   = regexp.MustCompile(`^[0-9]{1,12}$`)
)

// ParseVideo recognizes YouTube and Vimeo watch, short and embed URLs.
func ParseVideo(raw string) (VideoRef, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return VideoRef{}, false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")

	var ref VideoRef
	switch host {
	case "youtube.com", "m.youtube.com", "youtube-nocookie.com":
		ref.Provider = "youtube"
		switch {
		case len(segs) == 1 && segs[0] == "watch":
			ref.ID = u.Query().Get("v")
		case len(segs) == 2 && (segs[0] == "embed" || segs[0] == "shorts" || segs[0] == "live"):
			ref.ID = segs[1]
		}
	case "youtu.be":
		ref.Provider = "youtube"
		if len(segs) == 1 {
			ref.ID = segs[0]
		}
	case "vimeo.com":
		ref.Provider = "vimeo"
		if len(segs) >= 1 {
			ref.ID = segs[0]
		}
	case "player.vimeo.com":
		ref.Provider = "vimeo"
		if len(segs) == 2 && segs[0] == "video" {
			ref.ID = segs[1]
		}
	default:
		return VideoRef{}, false
	}

	switch ref.Provider {
	case "youtube":
		return ref, youTubeID.MatchString(ref.ID)
	default:
		return ref, vimeoID.MatchString(ref.ID)
	}
}

// EmbedURL returns the player URL for the video.
func (v VideoRef) EmbedURL() string {
	if v.Provider == "vimeo" {
		return "https://player.vimeo.com/video/" + v.ID
	}
	return "https://www.youtube-nocookie.com/embed/" + v.ID
}

// WatchURL returns the canonical page URL for the video.
func (v VideoRef) WatchURL() string {
	if v.Provider == "vimeo" {
		return "https://vimeo.com/" + v.ID
	}
	return "https://www.youtube.com/watch?v=" + v.ID
}

// ThumbnailURL returns a provider thumbnail, or "" if the provider has no
// stable URL for one.
func (v VideoRef) ThumbnailURL() string {
	if v.Provider == "youtube" {
		return "https://img.youtube.com/vi/" + v.ID + "/hqdefault.jpg"
	}
	return ""
}

func videoTrusted(props block.Props, _ registry.Options) string {
	title := props.String("title", "Video")
	ref, ok := ParseVideo(props.String("url", ""))
	if !ok {
		return ""
	}
	return open("div", "bp-video", pageCSS(props)) +
		open("iframe", "", "",
			"src", ref.EmbedURL(),
			"title", title,
			"loading", "lazy",
			"allow", "accelerometer; clipboard-write; encrypted-media; gyroscope; picture-in-picture",
			"referrerpolicy", "strict-origin-when-cross-origin",
		) + "</iframe></div>"
}

func videoEmail(props block.Props, opts registry.Options) string {
	title := props.String("title", "Video")
	ref, ok := ParseVideo(props.String("url", ""))
	if !ok {
		return ""
	}
	thumb := props.String("thumbnail", "")
	if thumb == "" {
		thumb = ref.ThumbnailURL()
	}
	thumb = assetURL(thumb, opts)

	var inner string
	if thumb != "" {
		inner = open("img", "", "display:block;max-width:100%;height:auto;border:0;margin:0 auto", "src", thumb, "alt", title, "width", "560")
	} else {
		inner = `<span style="font-family:` + sanitize.Attr(fontFamily(opts)) + `;font-size:16px">&#9654; ` + sanitize.Text(title) + "</span>"
	}
	return `<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="100%"><tr><td align="center">` +
		open("a", "", "", "href", ref.WatchURL(), "target", "_blank") + inner + "</a></td></tr></table>"
}

// socialNetworks maps known network keys to display labels.
var socialNetworks = map[string]string{
	"facebook":  "Facebook",
	"instagram": "Instagram",
	"linkedin":  "LinkedIn",
	"x":         "X",
	"twitter":   "Twitter",
	"youtube":   "YouTube",
	"github":    "GitHub",
	"tiktok":    "TikTok",
	"mastodon":  "Mastodon",
	"bluesky":   "Bluesky",
	"email":     "Email",
	"website":   "Website",
}

var titleCase = cases.Title(language.English)

// SocialLink is one entry of a social block.
type SocialLink struct {
	Network string
	Label   string
	URL     string
}

// SocialLinks reads the "links" prop. Each entry is a map with "network"
// and "url"; entries without a URL are dropped and URLs are sanitized.
func SocialLinks(props block.Props) []SocialLink {
	var out []SocialLink
	for _, item := range props.Slice("links") {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		p := block.Props(m)
		raw := strings.TrimSpace(p.String("url", ""))
		if raw == "" {
			continue
		}
		network := strings.ToLower(strings.TrimSpace(p.String("network", "website")))
		label := p.String("label", "")
		if label == "" {
			if l, ok := socialNetworks[network]; ok {
				label = l
			} else {
				label = titleCase.String(network)
			}
		}
		out = append(out, SocialLink{Network: network, Label: label, URL: sanitize.URL(raw)})
	}
	return out
}

// Social returns the social links definition.
func Social() registry.Definition {
	return registry.Definition{
		Type:        "social",
		Label:       "Social links",
		Category:    CategoryWidget,
		Description: "Links to social profiles.",
		Icon:        "share",
		Keywords:    []string{"facebook", "instagram", "linkedin", "follow"},
		Defaults:    block.Props{"links": []any{}, "align": "center"},
		Supports:    registry.Capabilities{Alignment: true, Spacing: true, Color: true},
		Generators:  deferredPage(socialEmail),
		Trusted:     socialTrusted,
	}
}

func socialTrusted(props block.Props, _ registry.Options) string {
	links := SocialLinks(props)
	if len(links) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(open("ul", "bp-social", pageCSS(props,
		[2]string{"list-style", "none"},
		[2]string{"padding", "0"},
		[2]string{"text-align", style.ResolveAlign(props, "center")},
	)))
	for _, l := range links {
		b.WriteString(`<li style="display:inline-block;margin:0 8px">`)
		b.WriteString(open("a", "bp-social__link bp-social__link--"+sanitize.Slug(l.Network), "",
			"href", l.URL, "target", "_blank", "rel", "noopener noreferrer"))
		b.WriteString(sanitize.Text(l.Label) + "</a></li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

func socialEmail(props block.Props, opts registry.Options) string {
	links := SocialLinks(props)
	if len(links) == 0 {
		return ""
	}
	color := textColor(props, opts, "#0073aa")
	var b strings.Builder
	b.WriteString(`<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="100%"><tr><td align="` +
		sanitize.Attr(style.ResolveAlign(props, "center")) + `">`)
	b.WriteString(`<table role="presentation" cellpadding="0" cellspacing="0" border="0"><tr>`)
	for _, l := range links {
		b.WriteString(`<td style="padding:0 8px">`)
		b.WriteString(open("a", "", declare(
			[2]string{"color", color},
			[2]string{"font-family", fontFamily(opts)},
			[2]string{"font-size", "14px"},
			[2]string{"text-decoration", "none"},
		), "href", l.URL, "target", "_blank"))
		b.WriteString(sanitize.Text(l.Label) + "</a></td>")
	}
	b.WriteString("</tr></table></td></tr></table>")
	return b.String()
}
