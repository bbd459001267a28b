package blocks

import (
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/registry"
	"github.com/matzehuels/blockpress/pkg/sanitize"
	"github.com/matzehuels/blockpress/pkg/style"
)

// now is the countdown clock. Tests replace it.
var now = time.Now

// Countdown returns the countdown definition. Its output depends on the
// time of rendering, so it is marked volatile and documents containing it
// bypass the render cache.
func Countdown() registry.Definition {
	return registry.Definition{
		Type:        "countdown",
		Label:       "Countdown",
		Category:    CategoryWidget,
		Description: "Time remaining until a deadline.",
		Icon:        "clock",
		Keywords:    []string{"timer", "deadline", "sale", "launch"},
		Defaults:    block.Props{"target": "", "label": "", "expiredText": "This offer has ended.", "align": "center"},
		Supports:    registry.Capabilities{Alignment: true, Spacing: true, Color: true},
		Generators:  deferredPage(countdownEmail),
		Trusted:     countdownTrusted,
		Validate: func(p block.Props) bool {
			_, ok := CountdownTarget(p)
			return ok
		},
		Volatile: true,
	}
}

// CountdownTarget parses the "target" prop as RFC 3339 or as a plain date
// (midnight UTC).
func CountdownTarget(props block.Props) (time.Time, bool) {
	raw := strings.TrimSpace(props.String("target", ""))
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Remaining is a countdown split into display units.
type Remaining struct {
	Days, Hours, Minutes int
	Expired              bool
}

// RemainingUntil computes the time left from from to target, rounded down
// to the minute.
func RemainingUntil(target, from time.Time) Remaining {
	d := target.Sub(from)
	if d <= 0 {
		return Remaining{Expired: true}
	}
	mins := int(d / time.Minute)
	return Remaining{Days: mins / (24 * 60), Hours: mins / 60 % 24, Minutes: mins % 60}
}

// String formats r as "2 days, 3 hours, 5 minutes", omitting leading zero
// units.
func (r Remaining) String() string {
	unit := func(n int, name string) string {
		if n == 1 {
			return "1 " + name
		}
		return strconv.Itoa(n) + " " + name + "s"
	}
	var parts []string
	if r.Days > 0 {
		parts = append(parts, unit(r.Days, "day"))
	}
	if r.Days > 0 || r.Hours > 0 {
		parts = append(parts, unit(r.Hours, "hour"))
	}
	parts = append(parts, unit(r.Minutes, "minute"))
	return strings.Join(parts, ", ")
}

func countdownText(props block.Props) (string, time.Time, bool) {
	target, ok := CountdownTarget(props)
	if !ok {
		return "", time.Time{}, false
	}
	r := RemainingUntil(target, now())
	if r.Expired {
		return props.String("expiredText", ""), target, true
	}
	return r.String(), target, true
}

func countdownTrusted(props block.Props, _ registry.Options) string {
	text, target, ok := countdownText(props)
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(open("div", "bp-countdown", pageCSS(props,
		[2]string{"text-align", style.ResolveAlign(props, "center")},
		[2]string{"color", style.ResolveTextColor(props, "")},
	), "data-target", target.UTC().Format(time.RFC3339)))
	if l := strings.TrimSpace(props.String("label", "")); l != "" {
		b.WriteString(`<span class="bp-countdown__label">` + sanitize.Text(l) + "</span> ")
	}
	b.WriteString(`<time datetime="` + target.UTC().Format(time.RFC3339) + `">` + sanitize.Text(text) + "</time>")
	b.WriteString("</div>")
	return b.String()
}

func countdownEmail(props block.Props, opts registry.Options) string {
	text, _, ok := countdownText(props)
	if !ok {
		return ""
	}
	var body string
	if l := strings.TrimSpace(props.String("label", "")); l != "" {
		body = sanitize.Text(l) + "<br>"
	}
	body += `<strong style="font-size:24px">` + sanitize.Text(text) + "</strong>"
	return open("p", "", declare(
		[2]string{"margin", "0 0 16px 0"},
		[2]string{"font-family", fontFamily(opts)},
		[2]string{"line-height", "1.4"},
		[2]string{"color", textColor(props, opts, "#333333")},
		[2]string{"text-align", style.ResolveAlign(props, "center")},
	)) + body + "</p>"
}
