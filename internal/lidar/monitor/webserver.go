// Package monitor serves the viewer state over HTTP: a JSON API for the ROI
// authoring commands and colour settings, plus debug charts of the rendered
// subset.
package monitor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tailscale.com/tsweb"

	"github.com/banshee-data/roiview/internal/httputil"
	"github.com/banshee-data/roiview/internal/lidar/scene"
	"github.com/banshee-data/roiview/internal/monitoring"
	"github.com/banshee-data/roiview/internal/version"
)

var logf = monitoring.Tagged("Monitor")

// WebServer exposes a scene.Store over HTTP.
type WebServer struct {
	address string
	store   *scene.Store
	handler http.Handler
	server  *http.Server
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address string
	Store   *scene.Store
}

// NewWebServer creates a web server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address: config.Address,
		store:   config.Store,
	}
	ws.handler = ws.setupRoutes()
	ws.server = &http.Server{
		Addr:              ws.address,
		Handler:           ws.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return ws
}

// Handler returns the route table.
func (ws *WebServer) Handler() http.Handler {
	return ws.handler
}

// setupRoutes configures the HTTP routes and handlers
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)

	mux.HandleFunc("/api/roi", ws.handleROI)
	mux.HandleFunc("/api/roi/start", ws.handleStart)
	mux.HandleFunc("/api/roi/point", ws.handlePoint)
	mux.HandleFunc("/api/roi/height/request", ws.handleHeightRequest)
	mux.HandleFunc("/api/roi/height/confirm", ws.handleHeightConfirm)
	mux.HandleFunc("/api/roi/cancel", ws.handleCancel)
	mux.HandleFunc("/api/roi/clear", ws.handleClear)
	mux.HandleFunc("/api/roi/{id}", ws.handleRemove)

	mux.HandleFunc("/api/colormap", ws.handleColorMap)
	mux.HandleFunc("/api/pointsize", ws.handlePointSize)
	mux.HandleFunc("/api/subset", ws.handleSubset)

	ws.attachDebugRoutes(mux)
	return mux
}

func (ws *WebServer) attachDebugRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	debug.Handle("scatter", "Top-down scatter of the rendered subset", http.HandlerFunc(ws.handleScatter))
	debug.Handle("topdown.png", "Top-down PNG with ROI outlines", http.HandlerFunc(ws.handleTopDownPNG))
}

// Start serves until ctx is cancelled, then shuts the server down.
func (ws *WebServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logf("starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logf("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		logf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			logf("HTTP server force close error: %v", err)
		}
	}
	logf("HTTP server routine stopped")
	return nil
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":  "ok",
		"version": version.String(),
		"points":  ws.store.Sample().Len(),
	})
}
