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

// Package coverage measures how much of a requested window is backed by
// classified data, per machine and per installation, in the installation's
// local timezone.
package coverage

import (
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/liftwatch/pkg/models"
	"github.com/carverauto/liftwatch/pkg/tzwin"
)

// MachineWindow pairs one machine's computed metrics with the window it was
// computed over. Start/End of zero inherit the installation window, but may
// differ per machine so that installation coverage stays minute-weighted
// even with unequal windows.
type MachineWindow struct {
	Metrics *models.MachineMetrics
	StartMs int64
	EndMs   int64
}

// Analyzer computes coverage reports for one installation timezone.
type Analyzer struct {
	tz         *tzwin.Converter
	thresholds Thresholds
}

// NewAnalyzer creates an analyzer for the given timezone and cut points.
func NewAnalyzer(tz *tzwin.Converter, thresholds Thresholds) *Analyzer {
	return &Analyzer{tz: tz, thresholds: thresholds}
}

// Analyze builds the coverage report for the machines of one installation
// window [startMs, endMs).
func (a *Analyzer) Analyze(startMs, endMs int64, machines []MachineWindow) *models.CoverageReport {
	windowMinutes := minutesBetween(startMs, endMs)

	report := &models.CoverageReport{
		ExpectedMinutesPerMachine: windowMinutes,
		Machines:                  make([]models.MachineCoverage, 0, len(machines)),
	}

	resolved := make([]MachineWindow, len(machines))
	for i, mw := range machines {
		if mw.StartMs == 0 && mw.EndMs == 0 {
			mw.StartMs, mw.EndMs = startMs, endMs
		}

		resolved[i] = mw
	}

	for _, mw := range resolved {
		winStart, winEnd := mw.StartMs, mw.EndMs

		expected := minutesBetween(winStart, winEnd)
		available := mw.Metrics.AvailableMinutes()
		percent := safePercent(available, expected)

		mc := models.MachineCoverage{
			MachineID:        mw.Metrics.MachineID,
			ExpectedMinutes:  expected,
			AvailableMinutes: available,
			CoveragePercent:  percent,
			Rating:           a.thresholds.Rate(percent),
			EventCount:       mw.Metrics.EventCount,
			FirstEventMs:     mw.Metrics.FirstEventMs,
			LastEventMs:      mw.Metrics.LastEventMs,
			Daily:            a.dailyBreakdown(mw.Metrics.Intervals, winStart, winEnd),
		}

		report.ExpectedMinutes += expected
		report.AvailableMinutes += available
		report.Machines = append(report.Machines, mc)
	}

	report.OverallCoveragePercent = safePercent(report.AvailableMinutes, report.ExpectedMinutes)
	report.Rating = a.thresholds.Rate(report.OverallCoveragePercent)
	report.Warnings = a.warnings(resolved, report)

	return report
}

// dailyBreakdown computes available vs. expected minutes for every local
// calendar day intersecting the machine window. The expected denominator is
// the true wall-clock length of the local day (23h/24h/25h around DST),
// clipped to the window.
func (a *Analyzer) dailyBreakdown(intervals []models.ModeInterval, winStart, winEnd int64) []models.DailyCoverage {
	days := a.tz.DaysIn(winStart, winEnd)
	if len(days) == 0 {
		return nil
	}

	breakdown := make([]models.DailyCoverage, 0, len(days))

	for _, day := range days {
		dayStart := max64(day.StartMs, winStart)
		dayEnd := min64(day.EndMs, winEnd)

		expected := minutesBetween(dayStart, dayEnd)
		if expected <= 0 {
			continue
		}

		var available float64

		for i := range intervals {
			iv := &intervals[i]
			if iv.State != models.StateUptime && iv.State != models.StateDowntime {
				continue
			}

			overlapStart := max64(iv.StartMs, dayStart)
			overlapEnd := min64(iv.EndMs, dayEnd)

			if overlapStart < overlapEnd {
				available += minutesBetween(overlapStart, overlapEnd)
			}
		}

		breakdown = append(breakdown, models.DailyCoverage{
			Date:             day.Date,
			ExpectedMinutes:  expected,
			AvailableMinutes: available,
			Percent:          safePercent(available, expected),
		})
	}

	return breakdown
}

// warnings enumerates coverage problems in a fixed category order: silent
// machines, below-fair machines, unknown mode codes, stale machines, and
// malformed-event tallies.
func (a *Analyzer) warnings(machines []MachineWindow, report *models.CoverageReport) []string {
	var warnings []string

	for i, mw := range machines {
		if report.Machines[i].Rating == models.QualitySilent {
			warnings = append(warnings, fmt.Sprintf(
				"machine %s reported no classified data for the entire window", mw.Metrics.MachineID))
		}
	}

	for i, mw := range machines {
		mc := &report.Machines[i]
		if mc.Rating == models.QualityPoor {
			warnings = append(warnings, fmt.Sprintf(
				"machine %s coverage is %.1f%%, below the fair threshold of %.0f%%",
				mw.Metrics.MachineID, mc.CoveragePercent, a.thresholds.Fair))
		}
	}

	for _, mw := range machines {
		if len(mw.Metrics.UnknownModeCodes) > 0 {
			warnings = append(warnings, fmt.Sprintf(
				"machine %s reported unclassified mode codes: %s",
				mw.Metrics.MachineID, strings.Join(mw.Metrics.UnknownModeCodes, ", ")))
		}
	}

	staleAfter := time.Duration(a.thresholds.StaleAfter)
	for _, mw := range machines {
		if isStale(mw.Metrics, mw.EndMs, staleAfter) {
			warnings = append(warnings, fmt.Sprintf(
				"machine %s has no events in the final %s of the window",
				mw.Metrics.MachineID, staleAfter))
		}
	}

	for _, mw := range machines {
		if mw.Metrics.MalformedEvents > 0 {
			warnings = append(warnings, fmt.Sprintf(
				"machine %s: %d malformed events skipped", mw.Metrics.MachineID, mw.Metrics.MalformedEvents))
		}
	}

	return warnings
}

func isStale(m *models.MachineMetrics, winEndMs int64, staleAfter time.Duration) bool {
	if staleAfter <= 0 || m.EventCount == 0 || m.LastEventMs == nil {
		return false
	}

	return winEndMs-*m.LastEventMs > staleAfter.Milliseconds()
}

func minutesBetween(startMs, endMs int64) float64 {
	return float64(endMs-startMs) / 60000.0
}

func safePercent(numerator, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}

	return numerator / denominator * 100
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}

	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}

	return b
}
