package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v, want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "render"))
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatal("empty cache reported a hit")
	}
	if err := c.Set(ctx, "k", []byte("<p>x</p>"), time.Hour); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "<p>x</p>" {
		t.Fatalf("Get() = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted entry still present")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing entry: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("old")); !errors.Is(err, os.ErrNotExist) {
		t.Error("expired entry not removed")
	}

	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl missing")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{truncated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get() hit=%v err=%v, want silent miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if n, err := c.Entries(); err != nil || n != 3 {
		t.Errorf("Entries() = %d, %v, want 3", n, err)
	}
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if n, _ := c.Entries(); n != 0 {
		t.Errorf("Entries() after Clear = %d", n)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, hit, _ := c.Get(ctx, k); hit {
			t.Errorf("%s survived Clear", k)
		}
	}
	if fi, err := os.Stat(c.Dir()); err != nil || !fi.IsDir() {
		t.Error("Clear should leave an empty directory")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}

	a, _ := HashJSON(map[string]any{"x": 1, "y": 2})
	b, _ := HashJSON(map[string]any{"y": 2, "x": 1})
	if a != b {
		t.Error("HashJSON should not depend on map order")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := RenderKeyOpts{Context: "email"}

	tests := []struct {
		name string
		opts RenderKeyOpts
	}{
		{"context", RenderKeyOpts{Context: "page"}},
		{"settings", RenderKeyOpts{Context: "email", Settings: map[string]any{"contentWidth": 640}}},
		{"finalize", RenderKeyOpts{Context: "email", Finalize: true}},
		{"standalone", RenderKeyOpts{Context: "email", Standalone: true}},
		{"registry", RenderKeyOpts{Context: "email", RegistryHash: "abc"}},
	}
	want := k.RenderKey("tree", base)
	if !strings.HasPrefix(want, "render:email:") {
		t.Errorf("RenderKey = %q, want render:email: prefix", want)
	}
	if k.RenderKey("tree", base) != want {
		t.Error("RenderKey should be deterministic")
	}
	if k.RenderKey("other", base) == want {
		t.Error("tree hash should change the key")
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if k.RenderKey("tree", tt.opts) == want {
				t.Errorf("%s should change the key", tt.name)
			}
		})
	}

	if k.FinalizeKey("frag", "tree") == k.FinalizeKey("frag", "other") {
		t.Error("FinalizeKey should include the tree hash")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "site:blog:")
	if got := scoped.RenderKey("t", RenderKeyOpts{Context: "page"}); !strings.HasPrefix(got, "site:blog:render:page:") {
		t.Errorf("RenderKey = %q", got)
	}
	if got := scoped.FinalizeKey("f", "t"); !strings.HasPrefix(got, "site:blog:finalize:") {
		t.Errorf("FinalizeKey = %q", got)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got, want := nilInner.FinalizeKey("f", "t"), "p:"+NewDefaultKeyer().FinalizeKey("f", "t"); got != want {
		t.Errorf("nil inner: %q, want %q", got, want)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should be true for a wrapped error")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("wrapped error should unwrap to ErrNetwork")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("message changed: %s", err)
	}
	if IsRetryable(ErrCacheMiss) {
		t.Error("plain errors are not retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, nil, 1, false},
		{"permanent", 5, ErrCacheMiss, 1, true},
		{"recovers", 1, Retryable(ErrNetwork), 2, false},
		{"exhausted", 5, Retryable(ErrNetwork), 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrNetwork) })
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
