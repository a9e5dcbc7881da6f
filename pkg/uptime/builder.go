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
	"sort"

	"github.com/carverauto/liftwatch/pkg/models"
	"github.com/carverauto/liftwatch/pkg/modes"
)

// IntervalBuilder turns one machine's ordered mode-change stream into a
// gap-free partition of the half-open window [startMs, endMs) into
// UPTIME/DOWNTIME/UNKNOWN/NO_DATA intervals. It processes events in a single
// streaming pass; memory scales with the number of state transitions, not
// the window length.
type IntervalBuilder struct {
	catalog   *modes.Catalog
	machineID string
	startMs   int64
	endMs     int64

	curState models.IntervalState
	curMode  string
	curStart int64

	intervals []models.ModeInterval

	eventCount   int
	malformed    int
	unknownCodes map[string]struct{}
	firstEventMs *int64
	lastEventMs  *int64
	lastSeenMs   int64
}

// NewIntervalBuilder creates a builder seeded with NO_DATA from startMs.
func NewIntervalBuilder(catalog *modes.Catalog, machineID string, startMs, endMs int64) *IntervalBuilder {
	return &IntervalBuilder{
		catalog:      catalog,
		machineID:    machineID,
		startMs:      startMs,
		endMs:        endMs,
		curState:     models.StateNoData,
		curStart:     startMs,
		unknownCodes: make(map[string]struct{}),
	}
}

// Seed sets the state carried into the window from the last known mode
// strictly before it. Must be called before any Observe.
func (b *IntervalBuilder) Seed(priorMode string) {
	if priorMode == "" {
		return
	}

	b.curState = b.classify(priorMode)
	b.curMode = priorMode
}

// Observe feeds the next event. Events must arrive in non-decreasing
// timestamp order; at equal timestamps the last observed wins. Events at or
// before the window start update the seed instead of creating a boundary,
// and events at or after the window end are ignored.
func (b *IntervalBuilder) Observe(ev *models.ModeChangeEvent) {
	if !ev.Valid() {
		b.malformed++
		return
	}

	b.eventCount++
	b.trackEventTime(ev.TimestampMs)

	state := b.classify(ev.ModeCode)

	if ev.TimestampMs <= b.startMs {
		// Late prior-mode information: the mode in force at window start.
		if len(b.intervals) == 0 && b.curStart == b.startMs {
			b.curState = state
			b.curMode = ev.ModeCode
		}

		return
	}

	if ev.TimestampMs >= b.endMs {
		return
	}

	if state == b.curState {
		// No-op transition: same classified state, no new boundary even if
		// the underlying mode code differs.
		return
	}

	b.closeAt(ev.TimestampMs)
	b.curState = state
	b.curMode = ev.ModeCode
	b.curStart = ev.TimestampMs
}

// Finish closes the open interval at the window end and returns the
// partition. The result is never empty for a valid window.
func (b *IntervalBuilder) Finish() []models.ModeInterval {
	b.closeAt(b.endMs)
	return b.intervals
}

func (b *IntervalBuilder) classify(code string) models.IntervalState {
	state := b.catalog.Classify(code)
	if state == models.StateUnknown {
		b.unknownCodes[code] = struct{}{}
	}

	return state
}

func (b *IntervalBuilder) closeAt(ms int64) {
	if ms <= b.curStart {
		// Zero-length interval, drop it.
		return
	}

	mode := b.curMode
	if b.curState == models.StateNoData {
		mode = ""
	}

	b.intervals = append(b.intervals, models.ModeInterval{
		MachineID: b.machineID,
		State:     b.curState,
		StartMs:   b.curStart,
		EndMs:     ms,
		ModeCode:  mode,
	})
	b.curStart = ms
}

func (b *IntervalBuilder) trackEventTime(ms int64) {
	if b.firstEventMs == nil || ms < *b.firstEventMs {
		v := ms
		b.firstEventMs = &v
	}

	if b.lastEventMs == nil || ms > *b.lastEventMs {
		v := ms
		b.lastEventMs = &v
	}
}

// UnknownModeCodes returns the sorted set of codes that classified UNKNOWN.
func (b *IntervalBuilder) UnknownModeCodes() []string {
	if len(b.unknownCodes) == 0 {
		return nil
	}

	codes := make([]string, 0, len(b.unknownCodes))
	for c := range b.unknownCodes {
		codes = append(codes, c)
	}

	sort.Strings(codes)

	return codes
}

// sortEventsIfNeeded restores non-decreasing timestamp order while keeping
// stream order for equal timestamps, so "last applied wins" holds. The
// common case of an already-ordered feed costs one scan and no allocation.
func sortEventsIfNeeded(events []models.ModeChangeEvent) []models.ModeChangeEvent {
	ordered := sort.SliceIsSorted(events, func(i, j int) bool {
		return events[i].TimestampMs < events[j].TimestampMs
	})
	if ordered {
		return events
	}

	sorted := make([]models.ModeChangeEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimestampMs < sorted[j].TimestampMs
	})

	return sorted
}
