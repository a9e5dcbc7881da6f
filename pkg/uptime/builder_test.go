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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/liftwatch/pkg/models"
	"github.com/carverauto/liftwatch/pkg/modes"
)

const minuteMs = int64(time.Minute / time.Millisecond)

func buildIntervals(t *testing.T, startMs, endMs int64, priorMode string, events []models.ModeChangeEvent) ([]models.ModeInterval, *IntervalBuilder) {
	t.Helper()

	b := NewIntervalBuilder(modes.DefaultCatalog(), "lift-1", startMs, endMs)
	b.Seed(priorMode)

	sorted := sortEventsIfNeeded(events)
	for i := range sorted {
		b.Observe(&sorted[i])
	}

	return b.Finish(), b
}

func ev(tsMs int64, code string) models.ModeChangeEvent {
	return models.ModeChangeEvent{MachineID: "lift-1", TimestampMs: tsMs, ModeCode: code}
}

func assertPartition(t *testing.T, intervals []models.ModeInterval, startMs, endMs int64) {
	t.Helper()

	require.NotEmpty(t, intervals)
	assert.Equal(t, startMs, intervals[0].StartMs)
	assert.Equal(t, endMs, intervals[len(intervals)-1].EndMs)

	for i := 1; i < len(intervals); i++ {
		assert.Equal(t, intervals[i-1].EndMs, intervals[i].StartMs, "gap or overlap at interval %d", i)
		assert.Less(t, intervals[i].StartMs, intervals[i].EndMs, "zero-length interval %d", i)
	}
}

func TestBuilderWeekWithOneOutage(t *testing.T) {
	// A 7-day window, prior mode normal, one 10-minute outage two hours in.
	start := int64(0)
	end := 7 * 24 * 60 * minuteMs

	intervals, b := buildIntervals(t, start, end, "NOR", []models.ModeChangeEvent{
		ev(120*minuteMs, "NAV"),
		ev(130*minuteMs, "NOR"),
	})

	assertPartition(t, intervals, start, end)
	require.Len(t, intervals, 3)

	assert.Equal(t, models.StateUptime, intervals[0].State)
	assert.Equal(t, models.StateDowntime, intervals[1].State)
	assert.Equal(t, models.StateUptime, intervals[2].State)

	m := aggregateMachine("lift-1", intervals, b)
	assert.InDelta(t, 10070, m.UptimeMinutes, 1e-9)
	assert.InDelta(t, 10, m.DowntimeMinutes, 1e-9)
	assert.InDelta(t, 100, m.CoveragePercent, 1e-9)
	assert.InDelta(t, 10070.0/10080.0*100, m.UptimePercent, 1e-9)
}

func TestBuilderWindowExtensionMonotonic(t *testing.T) {
	// Growing the window never shrinks any state bucket already counted.
	events := []models.ModeChangeEvent{
		ev(30*minuteMs, "NAV"),
		ev(45*minuteMs, "NOR"),
	}

	intervals, b := buildIntervals(t, 0, 60*minuteMs, "NOR", events)
	short := aggregateMachine("lift-1", intervals, b)

	intervals, b = buildIntervals(t, 0, 120*minuteMs, "NOR", events)
	long := aggregateMachine("lift-1", intervals, b)

	assert.GreaterOrEqual(t, long.UptimeMinutes, short.UptimeMinutes)
	assert.GreaterOrEqual(t, long.DowntimeMinutes, short.DowntimeMinutes)
	assert.InDelta(t, short.DowntimeMinutes, long.DowntimeMinutes, 1e-9)
	assert.InDelta(t, short.UptimeMinutes+60, long.UptimeMinutes, 1e-9)
}

func TestBuilderNoEventsNoPrior(t *testing.T) {
	start := int64(0)
	end := 60 * minuteMs

	intervals, b := buildIntervals(t, start, end, "", nil)

	require.Len(t, intervals, 1)
	assert.Equal(t, models.StateNoData, intervals[0].State)
	assert.Empty(t, intervals[0].ModeCode)

	m := aggregateMachine("lift-1", intervals, b)
	assert.InDelta(t, 60, m.NoDataMinutes, 1e-9)
	assert.InDelta(t, 0, m.UptimePercent, 1e-9)
	assert.InDelta(t, 0, m.CoveragePercent, 1e-9)
}

func TestBuilderPriorModeSeedsWholeWindow(t *testing.T) {
	start := int64(0)
	end := 60 * minuteMs

	intervals, _ := buildIntervals(t, start, end, "NAV", nil)

	require.Len(t, intervals, 1)
	assert.Equal(t, models.StateDowntime, intervals[0].State)
	assert.Equal(t, "NAV", intervals[0].ModeCode)
}

func TestBuilderCoalescesSameState(t *testing.T) {
	// NOR -> IDL -> PRK are all uptime; no boundaries between them.
	start := int64(0)
	end := 60 * minuteMs

	intervals, _ := buildIntervals(t, start, end, "NOR", []models.ModeChangeEvent{
		ev(10*minuteMs, "IDL"),
		ev(20*minuteMs, "PRK"),
		ev(30*minuteMs, "NAV"),
	})

	require.Len(t, intervals, 2)
	assert.Equal(t, models.StateUptime, intervals[0].State)
	assert.Equal(t, "NOR", intervals[0].ModeCode)
	assert.Equal(t, 30*minuteMs, intervals[0].EndMs)
	assert.Equal(t, models.StateDowntime, intervals[1].State)
}

func TestBuilderSameTimestampLastWins(t *testing.T) {
	start := int64(0)
	end := 60 * minuteMs

	intervals, _ := buildIntervals(t, start, end, "NOR", []models.ModeChangeEvent{
		ev(30*minuteMs, "NAV"),
		ev(30*minuteMs, "NOR"),
	})

	// The downtime transition opens and immediately closes at the same
	// instant, so it is dropped and the window stays a single uptime span.
	require.Len(t, intervals, 1)
	assert.Equal(t, models.StateUptime, intervals[0].State)
	assertPartition(t, intervals, start, end)
}

func TestBuilderEventAtWindowStartUpdatesSeed(t *testing.T) {
	start := 100 * minuteMs
	end := 200 * minuteMs

	intervals, _ := buildIntervals(t, start, end, "NOR", []models.ModeChangeEvent{
		ev(start, "NAV"),
	})

	require.Len(t, intervals, 1)
	assert.Equal(t, models.StateDowntime, intervals[0].State)
	assert.Equal(t, "NAV", intervals[0].ModeCode)
}

func TestBuilderEventAtWindowEndIgnored(t *testing.T) {
	start := int64(0)
	end := 60 * minuteMs

	intervals, _ := buildIntervals(t, start, end, "NOR", []models.ModeChangeEvent{
		ev(end, "NAV"),
	})

	require.Len(t, intervals, 1)
	assert.Equal(t, models.StateUptime, intervals[0].State)
}

func TestBuilderUnknownCode(t *testing.T) {
	start := int64(0)
	end := 60 * minuteMs

	intervals, b := buildIntervals(t, start, end, "NOR", []models.ModeChangeEvent{
		ev(30*minuteMs, "XYZ"),
	})

	require.Len(t, intervals, 2)
	assert.Equal(t, models.StateUnknown, intervals[1].State)
	assert.Equal(t, []string{"XYZ"}, b.UnknownModeCodes())

	m := aggregateMachine("lift-1", intervals, b)
	assert.InDelta(t, 30, m.UptimeMinutes, 1e-9)
	assert.InDelta(t, 30, m.UnknownMinutes, 1e-9)
	// Unknown time is reported but unclassified: it drags coverage, not uptime.
	assert.InDelta(t, 100, m.UptimePercent, 1e-9)
	assert.InDelta(t, 50, m.CoveragePercent, 1e-9)
}

func TestBuilderMalformedEventsSkipped(t *testing.T) {
	start := int64(0)
	end := 60 * minuteMs

	intervals, b := buildIntervals(t, start, end, "NOR", []models.ModeChangeEvent{
		{MachineID: "lift-1", TimestampMs: 0, ModeCode: "NAV"},
		{MachineID: "lift-1", TimestampMs: 30 * minuteMs, ModeCode: ""},
	})

	require.Len(t, intervals, 1)
	assert.Equal(t, models.StateUptime, intervals[0].State)
	assert.Equal(t, 2, b.malformed)
	assert.Equal(t, 0, b.eventCount)
}

func TestBuilderOutOfOrderEvents(t *testing.T) {
	start := int64(0)
	end := 120 * minuteMs

	unordered := []models.ModeChangeEvent{
		ev(80*minuteMs, "NOR"),
		ev(40*minuteMs, "NAV"),
	}

	intervals, _ := buildIntervals(t, start, end, "NOR", unordered)

	assertPartition(t, intervals, start, end)
	require.Len(t, intervals, 3)
	assert.Equal(t, models.StateDowntime, intervals[1].State)
	assert.Equal(t, 40*minuteMs, intervals[1].StartMs)
	assert.Equal(t, 80*minuteMs, intervals[1].EndMs)

	// The caller's slice is left untouched.
	assert.Equal(t, 80*minuteMs, unordered[0].TimestampMs)
}

func TestBuilderTracksEventBounds(t *testing.T) {
	start := int64(0)
	end := 120 * minuteMs

	_, b := buildIntervals(t, start, end, "", []models.ModeChangeEvent{
		ev(15*minuteMs, "NOR"),
		ev(90*minuteMs, "NAV"),
	})

	require.NotNil(t, b.firstEventMs)
	require.NotNil(t, b.lastEventMs)
	assert.Equal(t, 15*minuteMs, *b.firstEventMs)
	assert.Equal(t, 90*minuteMs, *b.lastEventMs)
	assert.Equal(t, 2, b.eventCount)
}

func TestBuilderNoDataThenEvents(t *testing.T) {
	start := int64(0)
	end := 120 * minuteMs

	intervals, b := buildIntervals(t, start, end, "", []models.ModeChangeEvent{
		ev(60*minuteMs, "NOR"),
	})

	assertPartition(t, intervals, start, end)
	require.Len(t, intervals, 2)
	assert.Equal(t, models.StateNoData, intervals[0].State)
	assert.Equal(t, models.StateUptime, intervals[1].State)

	m := aggregateMachine("lift-1", intervals, b)
	assert.InDelta(t, 60, m.NoDataMinutes, 1e-9)
	assert.InDelta(t, 60, m.UptimeMinutes, 1e-9)
	assert.InDelta(t, 50, m.CoveragePercent, 1e-9)
	assert.InDelta(t, 100, m.UptimePercent, 1e-9)
}
