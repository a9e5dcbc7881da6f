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

package uptime

import (
	"github.com/carverauto/liftwatch/pkg/models"
)

// aggregateMachine sums interval durations by state into MachineMetrics.
func aggregateMachine(machineID string, intervals []models.ModeInterval, b *IntervalBuilder) models.MachineMetrics {
	m := models.MachineMetrics{
		MachineID: machineID,
		Intervals: intervals,
	}

	for i := range intervals {
		dur := intervals[i].DurationMinutes()

		switch intervals[i].State {
		case models.StateUptime:
			m.UptimeMinutes += dur
		case models.StateDowntime:
			m.DowntimeMinutes += dur
		case models.StateUnknown:
			m.UnknownMinutes += dur
		case models.StateNoData:
			m.NoDataMinutes += dur
		}
	}

	m.UptimePercent = safePercent(m.UptimeMinutes, m.UptimeMinutes+m.DowntimeMinutes)

	// NO_DATA minutes are excluded from the percent base: unreported spans
	// reduce coverage, not the uptime percentage itself.
	classifiedBase := m.UptimeMinutes + m.DowntimeMinutes + m.UnknownMinutes
	m.CoveragePercent = safePercent(m.UptimeMinutes+m.DowntimeMinutes, classifiedBase)

	if b != nil {
		m.EventCount = b.eventCount
		m.MalformedEvents = b.malformed
		m.UnknownModeCodes = b.UnknownModeCodes()
		m.FirstEventMs = b.firstEventMs
		m.LastEventMs = b.lastEventMs
	}

	return m
}

// rollupInstallation sums each bucket across machines and derives the
// installation uptime percent from the combined totals. Averaging the
// per-machine percentages would bias the result toward sparsely-reporting
// machines.
func rollupInstallation(result *models.InstallationMetrics) {
	for i := range result.Machines {
		m := &result.Machines[i]
		result.UptimeMinutes += m.UptimeMinutes
		result.DowntimeMinutes += m.DowntimeMinutes
		result.UnknownMinutes += m.UnknownMinutes
		result.NoDataMinutes += m.NoDataMinutes
	}

	result.UptimePercent = safePercent(result.UptimeMinutes, result.UptimeMinutes+result.DowntimeMinutes)
}

func safePercent(numerator, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}

	return numerator / denominator * 100
}
