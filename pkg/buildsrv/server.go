package buildsrv

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/rsadaphule/buildwatch/pkg/buildapi"
)

// Server is the demo build service: one endpoint to trigger a simulated
// build and one SSE endpoint to follow its log output.
type Server struct {
	ctx    context.Context
	reg    *Registry
	delays Delays
}

type Options struct {
	Delays Delays
}

// New creates a Server. ctx bounds the lifetime of every simulated build it
// launches.
func New(ctx context.Context, opts Options) *Server {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Server{
		ctx:    ctx,
		reg:    NewRegistry(),
		delays: opts.Delays.withDefaults(),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Post(buildapi.StartPath, s.handleStart)
	r.Get("/build/{buildID}/stream", s.handleStream)
	return r
}

// ListenAndServe runs the HTTP server until ctx is canceled, then shuts it
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	build := s.reg.Create()
	go build.run(s.ctx, s.delays)

	log.Info().Str("build_id", build.ID).Msg("build started")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(buildapi.StartResponse{BuildID: build.ID})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	buildID := chi.URLParam(r, "buildID")
	build := s.reg.Get(buildID)
	if build == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "build not found"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	flusher.Flush()

	backlog, live, finished := build.Subscribe()
	if live != nil {
		defer build.Unsubscribe(live)
	}

	for _, line := range backlog {
		if err := writeLineEvent(w, line); err != nil {
			return
		}
	}
	flusher.Flush()

	if finished {
		_ = writeDoneEvent(w)
		flusher.Flush()
		return
	}

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug().Str("build_id", buildID).Msg("stream client disconnected")
			return
		case <-keepalive.C:
			if err := writeComment(w, "keepalive"); err != nil {
				return
			}
			flusher.Flush()
		case line, ok := <-live:
			if !ok {
				_ = writeDoneEvent(w)
				flusher.Flush()
				return
			}
			if err := writeLineEvent(w, line); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
