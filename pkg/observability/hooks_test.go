package observability

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopRenderHooks{}
	r.OnRenderStart(ctx, "email", 3)
	r.OnRenderComplete(ctx, "email", time.Millisecond, nil)
	r.OnFinalize(ctx, time.Millisecond)
	r.OnBlockSkipped(ctx, "email", "toc", "context")

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "render")
	c.OnCacheMiss(ctx, "render")
	c.OnCacheSet(ctx, "finalize", 1024)

	NoopHTTPHooks{}.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should default to NoopRenderHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should default to NoopCacheHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should default to NoopHTTPHooks")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}
	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}
	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Reset() should restore NoopRenderHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testRenderHooks{}
	SetRenderHooks(custom)
	SetRenderHooks(nil)
	if Render() != custom {
		t.Error("SetRenderHooks(nil) should be ignored")
	}
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	reg := prom.NewRegistry()
	h := NewPrometheusHooks(reg)

	h.OnRenderComplete(ctx, "email", 5*time.Millisecond, nil)
	h.OnRenderComplete(ctx, "page", time.Millisecond, errors.New("boom"))
	h.OnFinalize(ctx, time.Millisecond)
	h.OnBlockSkipped(ctx, "email", "toc", "context")
	h.OnCacheHit(ctx, "render")
	h.OnCacheMiss(ctx, "render")
	h.OnCacheSet(ctx, "render", 512)
	h.OnResponse(ctx, "POST", "/v1/render/{context}", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		`blockpress_renders_total{context="email",result="ok"} 1`,
		`blockpress_renders_total{context="page",result="error"} 1`,
		`blockpress_blocks_skipped_total{context="email",reason="context",type="toc"} 1`,
		`blockpress_cache_events_total{event="hit",key="render"} 1`,
		`blockpress_cache_written_bytes_total{key="render"} 512`,
		`blockpress_http_requests_total{method="POST",route="/v1/render/{context}",status="200"} 1`,
		`blockpress_finalize_duration_seconds_count 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

type testRenderHooks struct{ NoopRenderHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
