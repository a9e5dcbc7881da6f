/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api provides the HTTP API server for liftwatch.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	lwhttp "github.com/carverauto/liftwatch/pkg/http"
	"github.com/carverauto/liftwatch/pkg/logger"
	"github.com/carverauto/liftwatch/pkg/models"
	"github.com/carverauto/liftwatch/pkg/modes"
)

const defaultMaxWindowDays = 366

// NewAPIServer creates an API server instance with the given configuration.
func NewAPIServer(config models.CORSConfig, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		router:        mux.NewRouter(),
		corsConfig:    config,
		catalog:       modes.DefaultCatalog(),
		maxWindowDays: defaultMaxWindowDays,
		now:           time.Now,
		logger:        logger.NewTestLogger(),
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	return s
}

// WithDataSource sets the event store backing the API.
func WithDataSource(d DataSource) func(*APIServer) {
	return func(server *APIServer) {
		server.data = d
	}
}

// WithEngine sets the metrics engine.
func WithEngine(e MetricsEngine) func(*APIServer) {
	return func(server *APIServer) {
		server.engine = e
	}
}

// WithLogger sets the server logger.
func WithLogger(log logger.Logger) func(*APIServer) {
	return func(server *APIServer) {
		server.logger = log
	}
}

// WithModeCatalog overrides the default classification table.
func WithModeCatalog(c *modes.Catalog) func(*APIServer) {
	return func(server *APIServer) {
		server.catalog = c
	}
}

// WithMaxWindowDays caps the length of a requested analysis window.
func WithMaxWindowDays(days int) func(*APIServer) {
	return func(server *APIServer) {
		if days > 0 {
			server.maxWindowDays = days
		}
	}
}

// WithDefaultTimezone sets the timezone assumed for installations that have
// none on record.
func WithDefaultTimezone(tz string) func(*APIServer) {
	return func(server *APIServer) {
		server.defaultTimezone = tz
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) func(*APIServer) {
	return func(server *APIServer) {
		server.now = now
	}
}

func (s *APIServer) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return lwhttp.CommonMiddleware(next, s.corsConfig, s.logger)
	})

	s.router.HandleFunc("/health", s.getHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/modes", s.getModes).Methods(http.MethodGet)
	s.router.HandleFunc("/api/installations/{id}/uptime", s.getInstallationUptime).Methods(http.MethodGet)
	s.router.HandleFunc("/api/installations/{id}/coverage", s.getInstallationCoverage).Methods(http.MethodGet)
	s.router.HandleFunc("/api/installations/{id}/machines/{machineID}/downtime", s.getMachineDowntime).
		Methods(http.MethodGet)
}

// Router exposes the configured handler, for embedding and tests.
func (s *APIServer) Router() http.Handler {
	return s.router
}

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// Start runs the API server on addr until the context is canceled, then
// shuts down gracefully.
func (s *APIServer) Start(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func (s *APIServer) encodeJSONResponse(w http.ResponseWriter, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode JSON response")
		return err
	}

	return nil
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errResponse := models.ErrorResponse{
		Message: message,
		Status:  statusCode,
	}

	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
