// Package server exposes the rendering runtime over HTTP: document
// rendering, the component-stream endpoint, server-action dispatch, and
// static chunk serving.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"

	"github.com/seamui/seam/internal/action"
	"github.com/seamui/seam/internal/config"
	"github.com/seamui/seam/internal/logger"
	"github.com/seamui/seam/internal/render"
)

// ComponentStreamContentType marks responses carrying payload rows.
const ComponentStreamContentType = "text/x-component"

// Server is the HTTP runtime over one build's manifests.
type Server struct {
	cfg        *config.Config
	log        *logger.Logger
	renderer   *render.Renderer
	dispatcher *action.Dispatcher
	cache      ShellCache
	hub        *ReloadHub
	router     *mux.Router
	httpSrv    *http.Server
}

// New creates a Server. cache may be nil to disable the static shell cache;
// the reload hub is wired only in dev mode.
func New(cfg *config.Config, renderer *render.Renderer, dispatcher *action.Dispatcher, cache ShellCache, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewDefault()
	}
	s := &Server{
		cfg:        cfg,
		log:        log,
		renderer:   renderer,
		dispatcher: dispatcher,
		cache:      cache,
	}
	if cfg.Server.Dev {
		s.hub = NewReloadHub(log)
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the server's handler, for embedding and tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the dev reload hub, or nil outside dev mode.
func (s *Server) Hub() *ReloadHub {
	return s.hub
}

func (s *Server) buildRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/rsc", s.handleRSC).Methods(http.MethodGet)

	outDir := s.cfg.Build.OutDir
	r.PathPrefix("/chunks/").Handler(http.StripPrefix("/chunks/",
		http.FileServer(http.Dir(filepath.Join(outDir, "chunks")))))
	r.PathPrefix("/client/").Handler(http.StripPrefix("/client/",
		http.FileServer(http.Dir(filepath.Join(outDir, "client")))))

	if s.hub != nil {
		r.HandleFunc("/__reload", s.hub.Handler)
	}

	// Any POST carrying the reference header is an action invocation,
	// regardless of path.
	r.NewRoute().Methods(http.MethodPost).
		HeadersRegexp(action.HeaderName, ".+").
		HandlerFunc(s.handleAction)

	r.PathPrefix("/").Methods(http.MethodGet).HandlerFunc(s.handleHTML)
	return r
}

// ListenAndServe runs the server until ctx is canceled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpSrv = &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("Server listening", "addr", addr, "dev", s.cfg.Server.Dev)
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if s.hub != nil {
		s.hub.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok\n")
}

// handleRSC serves the payload-only stream for client-side navigation.
func (s *Server) handleRSC(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		http.Error(w, "missing location parameter", http.StatusBadRequest)
		return
	}

	sess := render.NewSession()
	defer sess.Close()
	log := s.log.WithRequest(sess.ID).WithRoute(location)

	w.Header().Set("Content-Type", ComponentStreamContentType)
	tw := &trackingWriter{w: w}

	if err := s.renderer.RenderRSC(r.Context(), sess, location, nil, tw); err != nil {
		s.respondRenderError(tw, log, err)
		return
	}
	if err := sess.Transition(render.StateComplete); err != nil {
		log.Errorw("Session finalization failed", "error", err)
	}
}

// handleHTML serves the full two-phase document render, consulting the
// static shell cache when one is configured.
func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request) {
	route := r.URL.Path

	if s.cache != nil {
		doc, ok, err := s.cache.Get(r.Context(), route)
		if err != nil {
			s.log.WithRoute(route).Warnw("Shell cache lookup failed", "error", err)
		} else if ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			io.WriteString(w, doc)
			return
		}
	}

	sess := render.NewSession()
	defer sess.Close()
	log := s.log.WithRequest(sess.ID).WithRoute(route)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	tw := &trackingWriter{w: w}
	var copyBuf bytes.Buffer
	var out io.Writer = tw
	if s.cache != nil {
		out = io.MultiWriter(tw, &copyBuf)
	}

	if err := s.renderer.RenderPage(r.Context(), sess, route, nil, out); err != nil {
		s.respondRenderError(tw, log, err)
		return
	}

	if s.cache != nil && isStaticRender(sess) {
		if err := s.cache.Set(r.Context(), route, copyBuf.String()); err != nil {
			log.Warnw("Shell cache store failed", "error", err)
		}
	}
}

// handleAction dispatches a server-action invocation. Invocation failures
// travel in-band as error rows; the transport itself stays 200.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(action.HeaderName)
	log := s.log.WithRoute(r.URL.Path)

	w.Header().Set("Content-Type", ComponentStreamContentType)
	if err := s.dispatcher.Stream(r.Context(), token, r.Body, w); err != nil {
		log.Warnw("Action invocation failed", "action", token, "error", err)
	}
}

// respondRenderError maps a render failure to an HTTP status when the
// response is still untouched; once bytes are out, the stream is simply cut.
func (s *Server) respondRenderError(tw *trackingWriter, log *logger.Logger, err error) {
	if render.IsStreamAbort(err) {
		log.Debugw("Render aborted", "error", err)
		return
	}
	log.Errorw("Render failed", "error", err)
	if tw.wrote {
		return
	}

	var nf *render.NotFoundError
	if errors.As(err, &nf) {
		http.Error(tw.w, "not found", http.StatusNotFound)
		return
	}
	http.Error(tw.w, "internal server error", http.StatusInternalServerError)
}

// isStaticRender reports whether a completed render crossed no suspension
// boundary. Only such documents are safe to cache whole; anything behind a
// boundary is per-request.
func isStaticRender(sess *render.Session) bool {
	return !sess.Extractor.Suspended()
}

// trackingWriter remembers whether any response bytes have been written, so
// error handling knows whether a status line is still possible.
type trackingWriter struct {
	w     http.ResponseWriter
	wrote bool
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		t.wrote = true
	}
	return t.w.Write(p)
}
