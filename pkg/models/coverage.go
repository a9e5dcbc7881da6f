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

// QualityRating grades how much of a window is covered by classified data.
type QualityRating string

const (
	QualityExcellent QualityRating = "excellent"
	QualityGood      QualityRating = "good"
	QualityFair      QualityRating = "fair"
	QualityPoor      QualityRating = "poor"
	QualitySilent    QualityRating = "silent"
)

// DailyCoverage is the coverage of one local calendar day. ExpectedMinutes
// reflects the true wall-clock length of that day clipped to the window, so
// DST transition days are 23h or 25h, not a constant 1440.
type DailyCoverage struct {
	Date             string  `json:"date"`
	ExpectedMinutes  float64 `json:"expected_minutes"`
	AvailableMinutes float64 `json:"available_minutes"`
	Percent          float64 `json:"percent"`
}

// MachineCoverage is the per-machine view of expected vs. available time.
type MachineCoverage struct {
	MachineID        string          `json:"machine_id"`
	ExpectedMinutes  float64         `json:"expected_minutes"`
	AvailableMinutes float64         `json:"available_minutes"`
	CoveragePercent  float64         `json:"coverage_percent"`
	Rating           QualityRating   `json:"rating"`
	EventCount       int             `json:"event_count"`
	FirstEventMs     *int64          `json:"first_event_ms,omitempty"`
	LastEventMs      *int64          `json:"last_event_ms,omitempty"`
	Daily            []DailyCoverage `json:"daily,omitempty"`
}

// CoverageReport summarizes data availability for an installation window.
type CoverageReport struct {
	ExpectedMinutesPerMachine float64           `json:"expected_minutes_per_machine"`
	ExpectedMinutes           float64           `json:"expected_minutes"`
	AvailableMinutes          float64           `json:"available_minutes"`
	// OverallCoveragePercent is minute-weighted across machines, never a
	// machine-count average.
	OverallCoveragePercent float64           `json:"overall_coverage_percent"`
	Rating                 QualityRating     `json:"rating"`
	Machines               []MachineCoverage `json:"machines"`
	Warnings               []string          `json:"warnings,omitempty"`
}
