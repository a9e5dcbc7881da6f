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

package models

// IntervalState is the operational state a machine is in during an interval.
// UNKNOWN means a mode code was reported but is not in the classification
// table; NO_DATA means no mode is known at all for the span.
type IntervalState string

const (
	StateUptime   IntervalState = "UPTIME"
	StateDowntime IntervalState = "DOWNTIME"
	StateUnknown  IntervalState = "UNKNOWN"
	StateNoData   IntervalState = "NO_DATA"
)

// ModeInterval is one span of a machine's gap-free window partition.
// Intervals are half-open: [StartMs, EndMs).
type ModeInterval struct {
	MachineID string        `json:"machine_id"`
	State     IntervalState `json:"state"`
	StartMs   int64         `json:"start_ms"`
	EndMs     int64         `json:"end_ms"`
	// ModeCode is the raw code that opened the interval; empty for NO_DATA.
	ModeCode string `json:"mode_code,omitempty"`
}

// DurationMinutes returns the interval length in minutes.
func (i *ModeInterval) DurationMinutes() float64 {
	return float64(i.EndMs-i.StartMs) / 60000.0
}

// MachineMetrics holds the per-machine minute sums and derived percentages
// for one analysis window.
type MachineMetrics struct {
	MachineID       string  `json:"machine_id"`
	UptimeMinutes   float64 `json:"uptime_minutes"`
	DowntimeMinutes float64 `json:"downtime_minutes"`
	UnknownMinutes  float64 `json:"unknown_minutes"`
	NoDataMinutes   float64 `json:"no_data_minutes"`
	// UptimePercent is uptime over classified (uptime+downtime) minutes.
	UptimePercent float64 `json:"uptime_percent"`
	// CoveragePercent is classified minutes over all reported (non-NO_DATA)
	// minutes; unreported spans reduce coverage, not uptime.
	CoveragePercent  float64        `json:"coverage_percent"`
	EventCount       int            `json:"event_count"`
	MalformedEvents  int            `json:"malformed_events,omitempty"`
	UnknownModeCodes []string       `json:"unknown_mode_codes,omitempty"`
	FirstEventMs     *int64         `json:"first_event_ms,omitempty"`
	LastEventMs      *int64         `json:"last_event_ms,omitempty"`
	Intervals        []ModeInterval `json:"intervals,omitempty"`
}

// AvailableMinutes is the definitively classified time for the machine.
func (m *MachineMetrics) AvailableMinutes() float64 {
	return m.UptimeMinutes + m.DowntimeMinutes
}

// MachineError records a machine whose computation could not run, typically
// because its event fetch failed. The machine carries no fabricated metrics.
type MachineError struct {
	MachineID string `json:"machine_id"`
	Error     string `json:"error"`
}

// InstallationMetrics is the full computed result for one installation and
// window: per-machine metrics, minute-sum rollups, and the coverage report.
type InstallationMetrics struct {
	InstallationID string `json:"installation_id"`
	Timezone       string `json:"timezone"`
	WindowStartMs  int64  `json:"window_start_ms"`
	WindowEndMs    int64  `json:"window_end_ms"`

	Machines []MachineMetrics `json:"machines"`

	UptimeMinutes   float64 `json:"uptime_minutes"`
	DowntimeMinutes float64 `json:"downtime_minutes"`
	UnknownMinutes  float64 `json:"unknown_minutes"`
	NoDataMinutes   float64 `json:"no_data_minutes"`
	// UptimePercent is computed from the combined minute totals, never as a
	// mean of per-machine percentages.
	UptimePercent float64 `json:"uptime_percent"`

	Coverage *CoverageReport `json:"coverage,omitempty"`

	MachineErrors []MachineError `json:"machine_errors,omitempty"`
}

// DowntimeInterval is one explained out-of-service span in local time.
type DowntimeInterval struct {
	StartLocal string  `json:"start_local"`
	EndLocal   string  `json:"end_local"`
	Minutes    float64 `json:"minutes"`
	ModeCode   string  `json:"mode_code"`
	Reason     string  `json:"reason"`
}

// DowntimeExplanation lists a machine's downtime intervals with human
// readable mode descriptions.
type DowntimeExplanation struct {
	InstallationID  string             `json:"installation_id"`
	MachineID       string             `json:"machine_id"`
	Timezone        string             `json:"timezone"`
	Intervals       []DowntimeInterval `json:"downtime_intervals"`
	DowntimeMinutes float64            `json:"total_downtime_minutes"`
}
