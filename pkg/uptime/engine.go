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

// Package uptime reconstructs continuous operational-state intervals from
// sparse mode-change events and derives uptime, downtime, and coverage
// metrics per machine and per installation.
package uptime

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/liftwatch/pkg/coverage"
	"github.com/carverauto/liftwatch/pkg/logger"
	"github.com/carverauto/liftwatch/pkg/models"
	"github.com/carverauto/liftwatch/pkg/modes"
	"github.com/carverauto/liftwatch/pkg/tzwin"
)

const defaultConcurrency = 8

// MachineFeed is one machine's input to a computation: the events observed
// inside the window, the last known mode strictly before it, and optionally
// a narrower window (machines commissioned mid-window). A non-nil Err marks
// a failed fetch; the machine is then reported in MachineErrors instead of
// being treated as silent.
type MachineFeed struct {
	MachineID string
	PriorMode string
	Events    []models.ModeChangeEvent
	StartMs   int64
	EndMs     int64
	Err       error
}

// Request describes one installation-window computation.
type Request struct {
	InstallationID string
	Timezone       string
	StartMs        int64
	EndMs          int64
	Machines       []MachineFeed

	// IncludeIntervals keeps the per-machine interval partitions in the
	// result instead of stripping them after aggregation.
	IncludeIntervals bool
}

// Engine computes installation metrics. It is stateless between calls and
// safe for concurrent use.
type Engine struct {
	catalog     *modes.Catalog
	thresholds  coverage.Thresholds
	concurrency int
	log         logger.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithThresholds overrides the quality-rating cut points.
func WithThresholds(t coverage.Thresholds) EngineOption {
	return func(e *Engine) { e.thresholds = t }
}

// WithConcurrency bounds how many machines are processed in parallel.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// NewEngine creates an engine using the given mode catalog.
func NewEngine(catalog *modes.Catalog, log logger.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:     catalog,
		thresholds:  coverage.DefaultThresholds(),
		concurrency: defaultConcurrency,
		log:         log,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ComputeMetrics reconstructs each machine's interval partition and rolls the
// results up into installation metrics with a coverage report. Machines whose
// feed carries an error are isolated into MachineErrors; only when every
// machine failed does the call itself fail with ErrEventSource.
func (e *Engine) ComputeMetrics(ctx context.Context, req Request) (*models.InstallationMetrics, error) {
	if req.EndMs <= req.StartMs {
		return nil, fmt.Errorf("%w: start=%d end=%d", ErrInvalidWindow, req.StartMs, req.EndMs)
	}

	tz, err := tzwin.New(req.Timezone)
	if err != nil {
		return nil, err
	}

	feeds := make([]MachineFeed, len(req.Machines))
	copy(feeds, req.Machines)
	sort.SliceStable(feeds, func(i, j int) bool {
		return feeds[i].MachineID < feeds[j].MachineID
	})

	type outcome struct {
		metrics *models.MachineMetrics
		window  [2]int64
		failure *models.MachineError
	}

	outcomes := make([]outcome, len(feeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range feeds {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			feed := &feeds[i]

			if feed.Err != nil {
				e.log.Warn().
					Str("installation_id", req.InstallationID).
					Str("machine_id", feed.MachineID).
					Err(feed.Err).
					Msg("machine event fetch failed, excluding from metrics")

				outcomes[i].failure = &models.MachineError{
					MachineID: feed.MachineID,
					Error:     feed.Err.Error(),
				}

				return nil
			}

			startMs, endMs := feed.StartMs, feed.EndMs
			if startMs == 0 && endMs == 0 {
				startMs, endMs = req.StartMs, req.EndMs
			}

			m := e.computeMachine(feed, startMs, endMs)
			outcomes[i].metrics = &m
			outcomes[i].window = [2]int64{startMs, endMs}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &models.InstallationMetrics{
		InstallationID: req.InstallationID,
		Timezone:       tz.Name(),
		WindowStartMs:  req.StartMs,
		WindowEndMs:    req.EndMs,
	}

	windows := make([]coverage.MachineWindow, 0, len(feeds))

	for i := range outcomes {
		if outcomes[i].failure != nil {
			result.MachineErrors = append(result.MachineErrors, *outcomes[i].failure)
			continue
		}

		result.Machines = append(result.Machines, *outcomes[i].metrics)
		windows = append(windows, coverage.MachineWindow{
			Metrics: outcomes[i].metrics,
			StartMs: outcomes[i].window[0],
			EndMs:   outcomes[i].window[1],
		})
	}

	if len(feeds) > 0 && len(result.Machines) == 0 {
		return nil, fmt.Errorf("%w: all %d machines failed for installation %s",
			ErrEventSource, len(result.MachineErrors), req.InstallationID)
	}

	rollupInstallation(result)

	analyzer := coverage.NewAnalyzer(tz, e.thresholds)
	result.Coverage = analyzer.Analyze(req.StartMs, req.EndMs, windows)

	if !req.IncludeIntervals {
		for i := range result.Machines {
			result.Machines[i].Intervals = nil
		}
	}

	e.log.Debug().
		Str("installation_id", req.InstallationID).
		Int("machines", len(result.Machines)).
		Int("machine_errors", len(result.MachineErrors)).
		Float64("uptime_percent", result.UptimePercent).
		Float64("coverage_percent", result.Coverage.OverallCoveragePercent).
		Msg("computed installation metrics")

	return result, nil
}

func (e *Engine) computeMachine(feed *MachineFeed, startMs, endMs int64) models.MachineMetrics {
	b := NewIntervalBuilder(e.catalog, feed.MachineID, startMs, endMs)
	b.Seed(feed.PriorMode)

	events := sortEventsIfNeeded(feed.Events)
	for i := range events {
		b.Observe(&events[i])
	}

	intervals := b.Finish()

	return aggregateMachine(feed.MachineID, intervals, b)
}

// ExplainDowntime lists one machine's downtime intervals with local-time
// bounds and a human readable reason for each mode code.
func ExplainDowntime(installationID, machineID string, tz *tzwin.Converter, intervals []models.ModeInterval) *models.DowntimeExplanation {
	const layout = "2006-01-02 15:04:05"

	out := &models.DowntimeExplanation{
		InstallationID: installationID,
		MachineID:      machineID,
		Timezone:       tz.Name(),
	}

	for i := range intervals {
		iv := &intervals[i]
		if iv.State != models.StateDowntime {
			continue
		}

		minutes := iv.DurationMinutes()
		out.Intervals = append(out.Intervals, models.DowntimeInterval{
			StartLocal: tz.ToLocal(iv.StartMs).Format(layout),
			EndLocal:   tz.ToLocal(iv.EndMs).Format(layout),
			Minutes:    minutes,
			ModeCode:   iv.ModeCode,
			Reason:     modes.Describe(iv.ModeCode),
		})
		out.DowntimeMinutes += minutes
	}

	return out
}
