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

package api

import (
	"context"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/liftwatch/pkg/logger"
	"github.com/carverauto/liftwatch/pkg/models"
	"github.com/carverauto/liftwatch/pkg/modes"
	"github.com/carverauto/liftwatch/pkg/uptime"
)

// DataSource is the read surface the API needs from the event store.
type DataSource interface {
	InstallationTimezone(ctx context.Context, installationID string) (string, error)
	MachineIDs(ctx context.Context, installationID string) ([]string, error)
	ModeChanges(ctx context.Context, machineID string, startMs, endMs int64) ([]models.ModeChangeEvent, error)
	PriorMode(ctx context.Context, machineID string, beforeMs int64) (string, error)
}

// MetricsEngine computes installation metrics from assembled feeds.
type MetricsEngine interface {
	ComputeMetrics(ctx context.Context, req uptime.Request) (*models.InstallationMetrics, error)
}

// APIServer serves the uptime, coverage, and mode-catalog endpoints.
type APIServer struct {
	router     *mux.Router
	corsConfig models.CORSConfig
	logger     logger.Logger

	data    DataSource
	engine  MetricsEngine
	catalog *modes.Catalog

	maxWindowDays   int
	defaultTimezone string
	now             func() time.Time
}
