/*
Package preview serves the most recent frame and the refresh metrics over
HTTP, so a display can be checked without looking at it.
*/
package preview

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/machinelevel/sp433-pinup-weather/compose"
)

const shutdownTimeout = 5 * time.Second

// Source provides the frame to serve.
type Source interface {
	LastFrame() *compose.Frame
}

type Server struct {
	source  Source
	metrics http.Handler
	logger  *log.Logger
}

// New returns a Server for source. metrics is mounted at /metrics when not
// nil.
func New(source Source, metrics http.Handler, logger *log.Logger) *Server {
	return &Server{
		source:  source,
		metrics: metrics,
		logger:  logger,
	}
}

// Router returns the request router.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/frame.png", s.FrameHandler).Methods(http.MethodGet, http.MethodHead)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}

	return r
}

// FrameHandler renders the last frame as a PNG.
func (s *Server) FrameHandler(w http.ResponseWriter, r *http.Request) {
	f := s.source.LastFrame()
	if f == nil {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, f.Render()); err != nil {
		s.logger.Printf("Unable to encode frame: %v\n", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}

// Serve accepts connections on l until ctx is done. The returned channel
// yields any serve error and is closed once the server has shut down.
func (s *Server) Serve(ctx context.Context, l net.Listener) <-chan error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	go func() {
		defer close(errc)
		select {
		case <-ctx.Done():
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				s.logger.Printf("Preview shutdown: %v\n", err)
			}
			<-done
		case <-done:
		}
	}()

	s.logger.Printf("Preview listening on %s\n", l.Addr())
	return errc
}
