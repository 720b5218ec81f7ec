/*
Copyright © 2024 Alexandre Pires

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package streamserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/forestrock/webtv/pkg/corsproxy"
	"github.com/forestrock/webtv/pkg/logger"
	"github.com/forestrock/webtv/pkg/m3uparser"
	"github.com/forestrock/webtv/pkg/player"
	"github.com/forestrock/webtv/pkg/sportfeed"
	"github.com/forestrock/webtv/pkg/xmltv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server owns the loaded channel lineup, guide and sport schedule, the
// playback dispatcher, and the liveness watcher. Content is reloaded on
// a timer; handlers read through the mutex and never block a reload.
type Server struct {
	config     *ServerConfig
	dispatcher *player.Dispatcher
	watcher    *Watcher

	mu       sync.RWMutex
	channels []m3uparser.ChannelEntry
	guide    *xmltv.Store
	sport    []sportfeed.DaySchedule

	stop chan struct{}
}

func NewServer(config *ServerConfig) *Server {
	data := config.Data()

	resolver := corsproxy.NewResolver(data.Proxies)

	guide := xmltv.NewStore()
	dispatcher := player.NewDispatcher(player.Options{
		Resolver: resolver,
		Guide:    guide,
		Env: player.Environment{
			NativeHLS: data.NativeHLS,
			HLSEngine: data.HLSEngine,
		},
	})

	return &Server{
		config:     config,
		dispatcher: dispatcher,
		watcher:    NewWatcher(data.NumWorkers, time.Duration(data.Timeout)*time.Second),
		guide:      guide,
		stop:       make(chan struct{}),
	}
}

// Start runs the server until SIGINT/SIGTERM, reloading content on the
// configured scan interval.
func Start(config *ServerConfig) {

	data := config.Data()

	if data.Timeout < 1 {
		data.Timeout = 3
	}
	if data.NumWorkers < 1 {
		data.NumWorkers = 1
	}
	if data.ScanTime == 0 {
		data.ScanTime = 300
	}
	if data.Port == 0 {
		data.Port = 8080
	}
	config.Set(data)

	srv := NewServer(config)

	if err := srv.Reload(); err != nil {
		logger.Errorf("initial content load: %v", err)
	}

	updateTimer := time.NewTimer(time.Duration(data.ScanTime) * time.Second)
	go func() {
		for {
			select {
			case <-srv.stop:
				logger.Info("Stopping content reloader")
				return
			case <-updateTimer.C:
				if err := srv.Reload(); err != nil {
					logger.Errorf("content reload: %v", err)
				}
				updateTimer.Reset(time.Duration(data.ScanTime) * time.Second)
			}
		}
	}()

	handler := mux.NewRouter()
	srv.RegisterRoutes(handler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", data.Port),
		Handler: handler,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		logger.Infof("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Server failed: %v", err)
		}
	}()

	<-quit

	logger.Info("Shutting down server...")

	updateTimer.Stop()
	close(srv.stop)
	srv.watcher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server shutdown.")
}

// RegisterRoutes wires the API surface onto the router. JSON endpoints
// are gzip-compressed; the raw passthrough endpoints are served as-is.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.HandleFunc("/api/channels", gzipMiddleware(s.handleChannels)).Methods(http.MethodGet)
	r.HandleFunc("/api/guide/{channel}", gzipMiddleware(s.handleGuide)).Methods(http.MethodGet)
	r.HandleFunc("/api/sport", gzipMiddleware(s.handleSport)).Methods(http.MethodGet)
	r.HandleFunc("/api/play", s.handlePlay).Methods(http.MethodPost)
	r.HandleFunc("/api/player", gzipMiddleware(s.handlePlayer)).Methods(http.MethodGet)

	r.HandleFunc("/playlist.m3u", s.handlePlaylistFile).Methods(http.MethodGet)
	r.HandleFunc("/epg.xml", s.handleEpgFile).Methods(http.MethodGet)
}

// Channels returns the current lineup snapshot.
func (s *Server) Channels() []m3uparser.ChannelEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.channels
}

// Guide returns the current guide store.
func (s *Server) Guide() *xmltv.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guide
}

// Sport returns the current sport schedule snapshot.
func (s *Server) Sport() []sportfeed.DaySchedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sport
}

// Dispatcher exposes the playback dispatcher.
func (s *Server) Dispatcher() *player.Dispatcher {
	return s.dispatcher
}
