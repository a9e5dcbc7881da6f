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
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/carverauto/liftwatch/pkg/eventstore"
	"github.com/carverauto/liftwatch/pkg/models"
	"github.com/carverauto/liftwatch/pkg/modes"
	"github.com/carverauto/liftwatch/pkg/tzwin"
	"github.com/carverauto/liftwatch/pkg/uptime"
	"github.com/carverauto/liftwatch/pkg/version"
)

func (s *APIServer) getHealth(w http.ResponseWriter, _ *http.Request) {
	_ = s.encodeJSONResponse(w, map[string]string{
		"status":  "ok",
		"version": version.GetFullVersion(),
	})
}

func (s *APIServer) getModes(w http.ResponseWriter, _ *http.Request) {
	resp := models.ModeCatalogResponse{}

	for _, code := range s.catalog.UptimeCodes() {
		resp.UptimeModes = append(resp.UptimeModes, models.ModeDescriptor{
			Code:        code,
			Description: modes.Describe(code),
		})
	}

	for _, code := range s.catalog.DowntimeCodes() {
		resp.DowntimeModes = append(resp.DowntimeModes, models.ModeDescriptor{
			Code:        code,
			Description: modes.Describe(code),
		})
	}

	_ = s.encodeJSONResponse(w, resp)
}

func (s *APIServer) getInstallationUptime(w http.ResponseWriter, r *http.Request) {
	result, ok := s.computeForRequest(w, r)
	if !ok {
		return
	}

	_ = s.encodeJSONResponse(w, result)
}

// coverageResponse frames a coverage report with its installation context.
type coverageResponse struct {
	InstallationID string                `json:"installation_id"`
	Timezone       string                `json:"timezone"`
	WindowStartMs  int64                 `json:"window_start_ms"`
	WindowEndMs    int64                 `json:"window_end_ms"`
	MachineErrors  []models.MachineError `json:"machine_errors,omitempty"`
	*models.CoverageReport
}

func (s *APIServer) getInstallationCoverage(w http.ResponseWriter, r *http.Request) {
	result, ok := s.computeForRequest(w, r)
	if !ok {
		return
	}

	_ = s.encodeJSONResponse(w, coverageResponse{
		InstallationID: result.InstallationID,
		Timezone:       result.Timezone,
		WindowStartMs:  result.WindowStartMs,
		WindowEndMs:    result.WindowEndMs,
		MachineErrors:  result.MachineErrors,
		CoverageReport: result.Coverage,
	})
}

func (s *APIServer) getMachineDowntime(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	installationID := vars["id"]
	machineID := vars["machineID"]

	tz, tzName, ok := s.resolveTimezone(r.Context(), w, installationID)
	if !ok {
		return
	}

	startMs, endMs, err := s.parseWindow(r.URL.Query(), tz)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := uptime.Request{
		InstallationID:   installationID,
		Timezone:         tzName,
		StartMs:          startMs,
		EndMs:            endMs,
		Machines:         s.assembleFeeds(r.Context(), []string{machineID}, startMs, endMs),
		IncludeIntervals: true,
	}

	result, err := s.engine.ComputeMetrics(r.Context(), req)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	if len(result.Machines) == 0 {
		writeError(w, "machine event fetch failed", http.StatusBadGateway)
		return
	}

	explanation := uptime.ExplainDowntime(installationID, machineID, tz, result.Machines[0].Intervals)

	_ = s.encodeJSONResponse(w, explanation)
}

// computeForRequest runs the shared resolve-parse-fetch-compute pipeline for
// the uptime and coverage endpoints.
func (s *APIServer) computeForRequest(w http.ResponseWriter, r *http.Request) (*models.InstallationMetrics, bool) {
	installationID := mux.Vars(r)["id"]
	ctx := r.Context()

	tz, tzName, ok := s.resolveTimezone(ctx, w, installationID)
	if !ok {
		return nil, false
	}

	startMs, endMs, err := s.parseWindow(r.URL.Query(), tz)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	machineIDs, err := s.machineIDsForRequest(ctx, installationID, r.URL.Query().Get("machine_id"))
	if err != nil {
		writeError(w, "failed to list machines", http.StatusBadGateway)
		return nil, false
	}

	req := uptime.Request{
		InstallationID:   installationID,
		Timezone:         tzName,
		StartMs:          startMs,
		EndMs:            endMs,
		Machines:         s.assembleFeeds(ctx, machineIDs, startMs, endMs),
		IncludeIntervals: r.URL.Query().Get("include_intervals") == "true",
	}

	result, err := s.engine.ComputeMetrics(ctx, req)
	if err != nil {
		s.writeEngineError(w, err)
		return nil, false
	}

	return result, true
}

func (s *APIServer) resolveTimezone(ctx context.Context, w http.ResponseWriter, installationID string) (*tzwin.Converter, string, bool) {
	tzName, err := s.data.InstallationTimezone(ctx, installationID)
	if err != nil {
		if errors.Is(err, eventstore.ErrUnknownInstallation) {
			writeError(w, "installation not found", http.StatusNotFound)
		} else {
			s.logger.Error().Err(err).Str("installation_id", installationID).Msg("installation lookup failed")
			writeError(w, "installation lookup failed", http.StatusBadGateway)
		}

		return nil, "", false
	}

	if tzName == "" {
		tzName = s.defaultTimezone
	}

	tz, err := tzwin.New(tzName)
	if err != nil {
		s.logger.Error().Err(err).Str("installation_id", installationID).Msg("installation has invalid timezone")
		writeError(w, "installation timezone is invalid", http.StatusInternalServerError)

		return nil, "", false
	}

	return tz, tzName, true
}

func (s *APIServer) machineIDsForRequest(ctx context.Context, installationID, machineFilter string) ([]string, error) {
	if machineFilter != "" {
		return []string{machineFilter}, nil
	}

	return s.data.MachineIDs(ctx, installationID)
}

// assembleFeeds fetches events and the prior mode per machine. A fetch
// failure becomes the feed's Err so the engine can isolate it.
func (s *APIServer) assembleFeeds(ctx context.Context, machineIDs []string, startMs, endMs int64) []uptime.MachineFeed {
	feeds := make([]uptime.MachineFeed, 0, len(machineIDs))

	for _, machineID := range machineIDs {
		feed := uptime.MachineFeed{MachineID: machineID}

		events, err := s.data.ModeChanges(ctx, machineID, startMs, endMs)
		if err == nil {
			feed.Events = events
			feed.PriorMode, err = s.data.PriorMode(ctx, machineID, startMs)
		}

		if err != nil {
			feed.Err = err
		}

		feeds = append(feeds, feed)
	}

	return feeds
}

func (s *APIServer) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, uptime.ErrInvalidWindow):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, tzwin.ErrInvalidTimezone), errors.Is(err, tzwin.ErrEmptyTimezone):
		writeError(w, "installation timezone is invalid", http.StatusInternalServerError)
	case errors.Is(err, uptime.ErrEventSource):
		writeError(w, "event source unavailable", http.StatusBadGateway)
	default:
		s.logger.Error().Err(err).Msg("metrics computation failed")
		writeError(w, "internal server error", http.StatusInternalServerError)
	}
}
