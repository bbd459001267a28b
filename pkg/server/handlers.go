package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/buildinfo"
	"github.com/matzehuels/blockpress/pkg/errors"
	"github.com/matzehuels/blockpress/pkg/outline"
	"github.com/matzehuels/blockpress/pkg/pipeline"
	"github.com/matzehuels/blockpress/pkg/registry"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.success(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  buildinfo.Version,
		"commit":   buildinfo.Commit,
		"blocks":   s.runner.Registry.Len(),
		"contexts": s.runner.Adapters.Contexts(),
	})
}

func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	ctx := r.URL.Query().Get("context")
	if ctx == "" {
		s.success(w, http.StatusOK, registry.Infos(s.runner.Registry.All()))
		return
	}
	if _, err := s.runner.Adapters.Get(ctx); err != nil {
		s.fail(w, r, err)
		return
	}
	s.success(w, http.StatusOK, registry.Infos(s.runner.Registry.ForContext(ctx)))
}

type instanceRequest struct {
	Props block.Props `json:"props"`
}

func (s *Server) handleCreateInstance(w http.ResponseWriter, r *http.Request) {
	var req instanceRequest
	if err := decode(r, w, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	b, err := s.runner.Registry.CreateInstance(chi.URLParam(r, "type"), req.Props)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.success(w, http.StatusCreated, b)
}

type renderRequest struct {
	Blocks     block.Tree     `json:"blocks"`
	Settings   block.Settings `json:"settings"`
	Finalize   bool           `json:"finalize"`
	Standalone bool           `json:"standalone"`
	Refresh    bool           `json:"refresh"`
}

type renderResponse struct {
	HTML     string      `json:"html"`
	Context  string      `json:"context"`
	TreeHash string      `json:"treeHash"`
	CacheHit bool        `json:"cacheHit"`
	Volatile bool        `json:"volatile"`
	Stats    renderStats `json:"stats"`
}

type renderStats struct {
	Blocks     int     `json:"blocks"`
	Skipped    int     `json:"skipped"`
	Bytes      int     `json:"bytes"`
	RenderMS   float64 `json:"renderMs"`
	FinalizeMS float64 `json:"finalizeMs,omitempty"`
}

// handleRender renders a document. With ?raw=true, or when the client
// accepts only HTML, the markup is returned as the response body.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decode(r, w, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Context:    chi.URLParam(r, "context"),
		Tree:       req.Blocks,
		Settings:   req.Settings,
		Finalize:   req.Finalize,
		Standalone: req.Standalone,
		Refresh:    req.Refresh,
		Logger:     s.logger,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	cacheHeader := "miss"
	if res.CacheHit {
		cacheHeader = "hit"
	} else if res.Volatile {
		cacheHeader = "bypass"
	}
	w.Header().Set("X-Blockpress-Cache", cacheHeader)

	if wantsRaw(r) {
		writeHTML(w, res.HTML)
		return
	}
	s.success(w, http.StatusOK, renderResponse{
		HTML:     res.HTML,
		Context:  res.Context,
		TreeHash: res.TreeHash,
		CacheHit: res.CacheHit,
		Volatile: res.Volatile,
		Stats: renderStats{
			Blocks:     res.Stats.Blocks,
			Skipped:    res.Stats.Skipped,
			Bytes:      res.Stats.Bytes,
			RenderMS:   float64(res.Stats.RenderTime.Microseconds()) / 1000,
			FinalizeMS: float64(res.Stats.FinalizeTime.Microseconds()) / 1000,
		},
	})
}

type finalizeRequest struct {
	HTML   string     `json:"html"`
	Blocks block.Tree `json:"blocks"`
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if err := decode(r, w, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	html, hit, err := s.runner.Finalize(r.Context(), req.HTML, req.Blocks)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if wantsRaw(r) {
		writeHTML(w, html)
		return
	}
	s.success(w, http.StatusOK, map[string]any{"html": html, "cacheHit": hit})
}

type outlineRequest struct {
	Blocks   block.Tree `json:"blocks"`
	Context  string     `json:"context"`
	Detailed bool       `json:"detailed"`
}

// handleOutline returns the document diagram as DOT, or as SVG with
// ?format=svg.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	var req outlineRequest
	if err := decode(r, w, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := block.ValidateTree(req.Blocks); err != nil {
		s.fail(w, r, err)
		return
	}
	dot := outline.ToDOT(req.Blocks, s.runner.Registry, outline.Options{Context: req.Context, Detailed: req.Detailed})

	switch format := r.URL.Query().Get("format"); format {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		_, _ = w.Write([]byte(dot))
	case "svg":
		svg, err := outline.RenderSVG(r.Context(), dot)
		if err != nil {
			s.fail(w, r, errors.Wrap(errors.ErrCodeRenderFailed, err, "render outline"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		s.fail(w, r, errors.New(errors.ErrCodeInvalidFormat, "unknown outline format %q (want dot or svg)", format))
	}
}

func wantsRaw(r *http.Request) bool {
	if r.URL.Query().Get("raw") == "true" {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.HasPrefix(accept, "text/html") && !strings.Contains(accept, "json")
}

func writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}
