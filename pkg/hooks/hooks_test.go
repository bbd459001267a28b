package hooks

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

func appendFilter(s string) Filter {
	return func(v any, _ ...any) (any, error) {
		return v.(string) + s, nil
	}
}

func TestFilterOrder(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *Bus)
		want  string
	}{
		{
			name: "registration order",
			setup: func(b *Bus) {
				b.AddFilter("f", appendFilter("a"))
				b.AddFilter("f", appendFilter("b"))
				b.AddFilter("f", appendFilter("c"))
			},
			want: "abc",
		},
		{
			name: "priority wins over registration",
			setup: func(b *Bus) {
				b.AddFilter("f", appendFilter("late"), Priority(20))
				b.AddFilter("f", appendFilter("early"), Priority(1))
				b.AddFilter("f", appendFilter("-mid-"))
			},
			want: "early-mid-late",
		},
		{
			name: "equal priority keeps registration order",
			setup: func(b *Bus) {
				b.AddFilter("f", appendFilter("x"), Priority(5))
				b.AddFilter("f", appendFilter("y"), Priority(5))
			},
			want: "xy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(nil)
			tt.setup(b)
			if got := b.ApplyFilters("f", ""); got != tt.want {
				t.Errorf("ApplyFilters() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFailingFilterIsIsolated(t *testing.T) {
	var buf bytes.Buffer
	b := New(log.New(&buf))

	b.AddFilter("f", appendFilter("a"))
	b.AddFilter("f", func(v any, _ ...any) (any, error) {
		return "garbage", errors.New("boom")
	})
	b.AddFilter("f", func(v any, _ ...any) (any, error) {
		panic("kaboom")
	})
	b.AddFilter("f", appendFilter("b"))

	if got := b.ApplyFilters("f", ">"); got != ">ab" {
		t.Errorf("ApplyFilters() = %q, want %q", got, ">ab")
	}
	out := buf.String()
	if !strings.Contains(out, "boom") || !strings.Contains(out, "kaboom") {
		t.Errorf("failures were not logged: %q", out)
	}
}

func TestActionIsolationAndArgs(t *testing.T) {
	b := New(nil)
	var got []string

	b.AddAction("a", func(args ...any) error {
		got = append(got, "first:"+args[0].(string))
		return nil
	})
	b.AddAction("a", func(args ...any) error {
		panic("observer bug")
	})
	b.AddAction("a", func(args ...any) error {
		got = append(got, "third")
		return errors.New("ignored")
	})
	b.AddAction("a", func(args ...any) error {
		got = append(got, "fourth")
		return nil
	})

	b.DoAction("a", "x")

	want := []string{"first:x", "third", "fourth"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("actions ran %v, want %v", got, want)
	}
}

func TestApplyTyped(t *testing.T) {
	b := New(nil)
	b.AddFilter("f", appendFilter("!"))
	b.AddFilter("f", func(v any, _ ...any) (any, error) { return 42, nil })
	b.AddFilter("f", appendFilter("?"))

	if got := Apply(b, "f", "hi"); got != "hi!?" {
		t.Errorf("Apply() = %q, want %q", got, "hi!?")
	}
	if got := Apply(b, "missing", "same"); got != "same" {
		t.Errorf("Apply(missing) = %q", got)
	}
}

func TestFilterArgs(t *testing.T) {
	b := New(nil)
	b.AddFilter("f", func(v any, args ...any) (any, error) {
		return v.(string) + args[0].(string) + args[1].(string), nil
	})
	if got := Apply(b, "f", "a", "b", "c"); got != "abc" {
		t.Errorf("Apply() = %q", got)
	}
}

func TestRemove(t *testing.T) {
	b := New(nil)
	remove := b.AddFilter("f", appendFilter("a"))
	b.AddFilter("f", appendFilter("b"))

	remove()
	if got := b.ApplyFilters("f", ""); got != "b" {
		t.Errorf("after remove ApplyFilters() = %q, want b", got)
	}

	b.AddAction("f", func(...any) error { return nil })
	if !b.HasAction("f") || !b.HasFilter("f") {
		t.Error("expected observers")
	}
	if names := b.Names(); len(names) != 1 || names[0] != "f" {
		t.Errorf("Names() = %v", names)
	}

	b.RemoveAll("f")
	if b.HasAction("f") || b.HasFilter("f") {
		t.Error("RemoveAll left observers behind")
	}
}

func TestNilBus(t *testing.T) {
	var b *Bus
	b.DoAction("a")
	b.RemoveAll("a")
	if got := b.ApplyFilters("f", "v"); got != "v" {
		t.Errorf("nil bus ApplyFilters() = %v", got)
	}
	if got := Apply(b, "f", 3); got != 3 {
		t.Errorf("nil bus Apply() = %v", got)
	}
	if b.HasFilter("f") || b.HasAction("a") || b.Names() != nil {
		t.Error("nil bus reported observers")
	}
}

func TestConcurrentUse(t *testing.T) {
	b := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			b.AddFilter("f", func(v any, _ ...any) (any, error) { return v, nil })
		}()
		go func() {
			defer wg.Done()
			_ = b.ApplyFilters("f", "x")
		}()
	}
	wg.Wait()
	if got := b.ApplyFilters("f", "x"); got != "x" {
		t.Errorf("ApplyFilters() = %v", got)
	}
}

func TestNames(t *testing.T) {
	if got := BlockHTML("heading"); got != "blockpress/adapter/block-html/heading" {
		t.Errorf("BlockHTML() = %q", got)
	}
	if got := CategoryHTML("layout"); got != "blockpress/adapter/block-html/category/layout" {
		t.Errorf("CategoryHTML() = %q", got)
	}
	if got := ContextBlocks("email"); got != "blockpress/registry/blocks/email" {
		t.Errorf("ContextBlocks() = %q", got)
	}
}
