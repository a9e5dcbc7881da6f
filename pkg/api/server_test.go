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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/liftwatch/pkg/eventstore"
	"github.com/carverauto/liftwatch/pkg/logger"
	"github.com/carverauto/liftwatch/pkg/models"
	"github.com/carverauto/liftwatch/pkg/modes"
	"github.com/carverauto/liftwatch/pkg/uptime"
)

type fakeDataSource struct {
	timezones  map[string]string
	machines   map[string][]string
	events     map[string][]models.ModeChangeEvent
	priorModes map[string]string
	failures   map[string]error
}

func (f *fakeDataSource) InstallationTimezone(_ context.Context, installationID string) (string, error) {
	tz, ok := f.timezones[installationID]
	if !ok {
		return "", fmt.Errorf("%w: %s", eventstore.ErrUnknownInstallation, installationID)
	}

	return tz, nil
}

func (f *fakeDataSource) MachineIDs(_ context.Context, installationID string) ([]string, error) {
	return f.machines[installationID], nil
}

func (f *fakeDataSource) ModeChanges(_ context.Context, machineID string, _, _ int64) ([]models.ModeChangeEvent, error) {
	if err := f.failures[machineID]; err != nil {
		return nil, err
	}

	return f.events[machineID], nil
}

func (f *fakeDataSource) PriorMode(_ context.Context, machineID string, _ int64) (string, error) {
	return f.priorModes[machineID], nil
}

var (
	testWindowStart = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	testWindowEnd   = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	testNow         = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
)

func newTestServer(t *testing.T, data *fakeDataSource, opts ...func(*APIServer)) *APIServer {
	t.Helper()

	engine := uptime.NewEngine(modes.DefaultCatalog(), logger.NewTestLogger())

	options := append([]func(*APIServer){
		WithDataSource(data),
		WithEngine(engine),
		WithLogger(logger.NewTestLogger()),
		WithClock(func() time.Time { return testNow }),
	}, opts...)

	return NewAPIServer(models.CORSConfig{}, options...)
}

func standardDataSource() *fakeDataSource {
	outageStart := testWindowStart.Add(2 * time.Hour)
	outageEnd := outageStart.Add(10 * time.Minute)

	return &fakeDataSource{
		timezones: map[string]string{"inst-1": "UTC"},
		machines:  map[string][]string{"inst-1": {"lift-1"}},
		events: map[string][]models.ModeChangeEvent{
			"lift-1": {
				{MachineID: "lift-1", TimestampMs: outageStart.UnixMilli(), ModeCode: "ESB"},
				{MachineID: "lift-1", TimestampMs: outageEnd.UnixMilli(), ModeCode: "NOR"},
			},
		},
		priorModes: map[string]string{"lift-1": "NOR"},
		failures:   map[string]error{},
	}
}

func doRequest(t *testing.T, s *APIServer, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	rr := httptest.NewRecorder()

	s.Router().ServeHTTP(rr, req)

	return rr
}

func uptimePath(installationID string) string {
	return fmt.Sprintf("/api/installations/%s/uptime?start=%s&end=%s",
		installationID,
		testWindowStart.Format(time.RFC3339),
		testWindowEnd.Format(time.RFC3339))
}

func TestGetInstallationUptime(t *testing.T) {
	s := newTestServer(t, standardDataSource())

	rr := doRequest(t, s, uptimePath("inst-1"))
	require.Equal(t, http.StatusOK, rr.Code)

	var result models.InstallationMetrics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))

	assert.Equal(t, "inst-1", result.InstallationID)
	assert.Equal(t, "UTC", result.Timezone)
	require.Len(t, result.Machines, 1)
	assert.InDelta(t, 10, result.DowntimeMinutes, 1e-9)
	assert.InDelta(t, 10070, result.UptimeMinutes, 1e-9)
	require.NotNil(t, result.Coverage)
	assert.InDelta(t, 100, result.Coverage.OverallCoveragePercent, 1e-9)
}

func TestGetInstallationUptimeUnknownInstallation(t *testing.T) {
	s := newTestServer(t, standardDataSource())

	rr := doRequest(t, s, uptimePath("inst-missing"))
	require.Equal(t, http.StatusNotFound, rr.Code)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
	assert.Equal(t, http.StatusNotFound, errResp.Status)
}

func TestGetInstallationUptimeWindowGuards(t *testing.T) {
	s := newTestServer(t, standardDataSource())

	// End in the future.
	future := testNow.Add(48 * time.Hour)
	path := fmt.Sprintf("/api/installations/inst-1/uptime?start=%s&end=%s",
		testWindowStart.Format(time.RFC3339), future.Format(time.RFC3339))

	rr := doRequest(t, s, path)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// End before start.
	path = fmt.Sprintf("/api/installations/inst-1/uptime?start=%s&end=%s",
		testWindowEnd.Format(time.RFC3339), testWindowStart.Format(time.RFC3339))

	rr = doRequest(t, s, path)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Over the maximum length.
	tooEarly := testWindowEnd.AddDate(-2, 0, 0)
	path = fmt.Sprintf("/api/installations/inst-1/uptime?start=%s&end=%s",
		tooEarly.Format(time.RFC3339), testWindowEnd.Format(time.RFC3339))

	rr = doRequest(t, s, path)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetInstallationUptimeDateWindow(t *testing.T) {
	s := newTestServer(t, standardDataSource())

	rr := doRequest(t, s, "/api/installations/inst-1/uptime?start_date=2024-06-03&end_date=2024-06-09")
	require.Equal(t, http.StatusOK, rr.Code)

	var result models.InstallationMetrics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))

	assert.Equal(t, testWindowStart.UnixMilli(), result.WindowStartMs)
	assert.Equal(t, testWindowEnd.UnixMilli(), result.WindowEndMs)
}

func TestGetInstallationUptimeDefaultTimezone(t *testing.T) {
	data := standardDataSource()
	data.timezones["inst-2"] = ""
	data.machines["inst-2"] = data.machines["inst-1"]

	// Without a configured default, a blank timezone cannot be resolved.
	s := newTestServer(t, data)
	rr := doRequest(t, s, uptimePath("inst-2"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	s = newTestServer(t, data, WithDefaultTimezone("Europe/Berlin"))
	rr = doRequest(t, s, uptimePath("inst-2"))
	require.Equal(t, http.StatusOK, rr.Code)

	var result models.InstallationMetrics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, "Europe/Berlin", result.Timezone)
}

func TestGetInstallationUptimeAllSourcesFailed(t *testing.T) {
	data := standardDataSource()
	data.failures["lift-1"] = errors.New("connection refused")

	s := newTestServer(t, data)

	rr := doRequest(t, s, uptimePath("inst-1"))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestGetInstallationUptimePartialFailure(t *testing.T) {
	data := standardDataSource()
	data.machines["inst-1"] = []string{"lift-1", "lift-2"}
	data.failures["lift-2"] = errors.New("query timeout")

	s := newTestServer(t, data)

	rr := doRequest(t, s, uptimePath("inst-1"))
	require.Equal(t, http.StatusOK, rr.Code)

	var result models.InstallationMetrics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))

	require.Len(t, result.Machines, 1)
	require.Len(t, result.MachineErrors, 1)
	assert.Equal(t, "lift-2", result.MachineErrors[0].MachineID)
}

func TestGetInstallationCoverage(t *testing.T) {
	s := newTestServer(t, standardDataSource())

	rr := doRequest(t, s, fmt.Sprintf("/api/installations/%s/coverage?start=%s&end=%s",
		"inst-1", testWindowStart.Format(time.RFC3339), testWindowEnd.Format(time.RFC3339)))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		InstallationID         string  `json:"installation_id"`
		OverallCoveragePercent float64 `json:"overall_coverage_percent"`
		Rating                 string  `json:"rating"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, "inst-1", resp.InstallationID)
	assert.InDelta(t, 100, resp.OverallCoveragePercent, 1e-9)
	assert.Equal(t, "excellent", resp.Rating)
}

func TestGetMachineDowntime(t *testing.T) {
	s := newTestServer(t, standardDataSource())

	rr := doRequest(t, s, fmt.Sprintf("/api/installations/%s/machines/%s/downtime?start=%s&end=%s",
		"inst-1", "lift-1", testWindowStart.Format(time.RFC3339), testWindowEnd.Format(time.RFC3339)))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.DowntimeExplanation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, "lift-1", resp.MachineID)
	require.Len(t, resp.Intervals, 1)
	assert.Equal(t, "ESB", resp.Intervals[0].ModeCode)
	assert.NotEmpty(t, resp.Intervals[0].Reason)
	assert.InDelta(t, 10, resp.DowntimeMinutes, 1e-9)
	assert.Equal(t, "2024-06-03 02:00:00", resp.Intervals[0].StartLocal)
}

func TestGetModes(t *testing.T) {
	s := newTestServer(t, standardDataSource())

	rr := doRequest(t, s, "/api/modes")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.ModeCatalogResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Len(t, resp.UptimeModes, 27)
	assert.Len(t, resp.DowntimeModes, 7)

	for _, m := range resp.UptimeModes {
		assert.NotEmpty(t, m.Code)
		assert.NotEmpty(t, m.Description)
	}
}

func TestGetHealth(t *testing.T) {
	s := newTestServer(t, standardDataSource())

	rr := doRequest(t, s, "/health")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}
