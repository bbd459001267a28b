package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockpress/pkg/adapter"
	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/cache"
	"github.com/matzehuels/blockpress/pkg/observability"
	"github.com/matzehuels/blockpress/pkg/placeholder"
	"github.com/matzehuels/blockpress/pkg/registry"
	"github.com/matzehuels/blockpress/pkg/trusted"
)

// Runner executes pipeline runs with caching. It holds no per-run state;
// one Runner may serve concurrent requests.
type Runner struct {
	Registry *registry.Registry
	Adapters *adapter.Set
	Trusted  *trusted.Renderer
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	// RenderTTL overrides [cache.TTLRender] when positive.
	RenderTTL time.Duration
}

// NewRunner creates a runner over reg with the built-in adapters. A nil
// cache disables caching and a nil keyer uses [cache.DefaultKeyer].
func NewRunner(reg *registry.Registry, c cache.Cache, keyer cache.Keyer, logger *log.Logger, opts ...adapter.Option) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	opts = append([]adapter.Option{adapter.WithLogger(logger)}, opts...)
	return &Runner{
		Registry: reg,
		Adapters: adapter.Defaults(reg, opts...),
		Trusted:  trusted.New(reg, trusted.WithLogger(logger)),
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
	}
}

// Execute renders opts.Tree, reading and writing the cache unless the tree
// is volatile in the chosen context or opts.Refresh is set.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, p := range block.Problems(opts.Tree) {
		opts.Logger.Warn("document problem", "error", p)
	}

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, opts.Context, len(opts.Tree))
	start := time.Now()

	res, err := r.execute(ctx, opts)
	hooks.OnRenderComplete(ctx, opts.Context, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) execute(ctx context.Context, opts Options) (*Result, error) {
	a, err := r.Adapters.Get(opts.Context)
	if err != nil {
		return nil, err
	}
	treeHash, err := cache.HashJSON(opts.Tree)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Context:  opts.Context,
		TreeHash: treeHash,
		Volatile: r.Registry.IsVolatile(opts.Tree, opts.Context),
	}
	res.Stats.Blocks = len(block.Flatten(opts.Tree))

	key := r.Keyer.RenderKey(treeHash, opts.RenderKeyOpts(r.registryHash()))
	useCache := !res.Volatile
	if useCache && !opts.Refresh {
		if html, ok := r.lookup(ctx, "render", key); ok {
			res.HTML, res.CacheHit = html, true
			res.Stats.Bytes = len(html)
			return res, nil
		}
	}

	for _, s := range Skipped(r.Registry, a, opts.Tree) {
		observability.Render().OnBlockSkipped(ctx, opts.Context, s.Block.Type, s.Reason)
		res.Stats.Skipped++
	}

	html, stats, err := Render(r.Adapters, r.Trusted, opts)
	if err != nil {
		return nil, err
	}
	stats.Blocks, stats.Skipped = res.Stats.Blocks, res.Stats.Skipped
	res.HTML, res.Stats = html, stats
	if opts.Finalize {
		observability.Render().OnFinalize(ctx, stats.FinalizeTime)
	}

	opts.Logger.Info("rendered document",
		"context", opts.Context,
		"blocks", stats.Blocks,
		"skipped", stats.Skipped,
		"bytes", stats.Bytes,
		"duration", stats.RenderTime+stats.FinalizeTime)

	if useCache {
		r.store(ctx, "render", key, html, r.renderTTL())
	} else {
		opts.Logger.Debug("volatile document, cache bypassed")
	}
	return res, nil
}

// Finalize runs the trusted pass over a stored page fragment. doc may be
// nil. The second result reports a cache hit.
func (r *Runner) Finalize(ctx context.Context, fragment string, doc block.Tree) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	docHash, err := cache.HashJSON(doc)
	if err != nil {
		return "", false, err
	}
	key := r.Keyer.FinalizeKey(cache.Hash([]byte(fragment)), docHash+":"+r.registryHash())
	useCache := !r.volatileFragment(fragment)
	if useCache {
		if html, ok := r.lookup(ctx, "finalize", key); ok {
			return html, true, nil
		}
	}

	start := time.Now()
	html := r.Trusted.Finalize(fragment, doc)
	observability.Render().OnFinalize(ctx, time.Since(start))

	if useCache {
		r.store(ctx, "finalize", key, html, cache.TTLFinalized)
	}
	return html, false, nil
}

// volatileFragment reports whether fragment holds a placeholder of a
// volatile type.
func (r *Runner) volatileFragment(fragment string) bool {
	if !strings.Contains(fragment, placeholder.AttrType) {
		return false
	}
	for _, p := range placeholder.Scan(fragment) {
		if d, ok := r.Registry.Get(p.Type); ok && d.Volatile {
			return true
		}
	}
	return false
}

func (r *Runner) renderTTL() time.Duration {
	if r.RenderTTL > 0 {
		return r.RenderTTL
	}
	return cache.TTLRender
}

// registryHash identifies the registered type set, so that output cached
// before a plugin registered or removed a type is not reused.
func (r *Runner) registryHash() string {
	return cache.Hash([]byte(strings.Join(r.Registry.Types(), ",")))[:16]
}

func (r *Runner) lookup(ctx context.Context, keyType, key string) (string, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", keyType, "err", err)
		return "", false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return "", false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return string(data), true
}

func (r *Runner) store(ctx context.Context, keyType, key, html string, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, []byte(html), ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(html))
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
