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

// Package tzwin converts between UTC epoch milliseconds and an
// installation's local wall clock, and computes local calendar-day
// boundaries that stay correct across DST transitions.
package tzwin

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyTimezone   = errors.New("timezone name is empty")
	ErrInvalidTimezone = errors.New("invalid IANA timezone")
)

const dateLayout = "2006-01-02"

// Converter resolves one IANA timezone and performs all local-time math for
// it. Construction validates the zone; all methods after that are pure.
type Converter struct {
	name string
	loc  *time.Location
}

// New resolves the named IANA timezone ("Europe/Berlin").
func New(name string) (*Converter, error) {
	if name == "" {
		return nil, ErrEmptyTimezone
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidTimezone, name, err)
	}

	return &Converter{name: name, loc: loc}, nil
}

func (c *Converter) Name() string {
	return c.name
}

// ToLocal converts a UTC epoch-millisecond timestamp to local wall time.
func (c *Converter) ToLocal(ms int64) time.Time {
	return time.UnixMilli(ms).In(c.loc)
}

// ToUTCMs converts a time to UTC epoch milliseconds.
func (*Converter) ToUTCMs(t time.Time) int64 {
	return t.UnixMilli()
}

// LocalDate returns the local calendar date a UTC instant falls on.
func (c *Converter) LocalDate(ms int64) string {
	return c.ToLocal(ms).Format(dateLayout)
}

// DayStart returns local midnight of the given local date. On dates where
// midnight does not exist (some zones spring forward at 00:00) the first
// valid wall-clock instant of the day is returned.
func (c *Converter) DayStart(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, c.loc)
}

// DayLengthMinutes returns the true wall-clock length of a local calendar
// day: 1440 normally, 1380 on a spring-forward day, 1500 on a fall-back day.
func (c *Converter) DayLengthMinutes(year int, month time.Month, day int) float64 {
	start := c.DayStart(year, month, day)
	next := c.DayStart(year, month, day+1)

	return next.Sub(start).Minutes()
}

// LocalDay is one local calendar day with its UTC millisecond bounds.
// [StartMs, EndMs) covers the whole day, unclipped.
type LocalDay struct {
	Date    string
	StartMs int64
	EndMs   int64
}

// DaysIn enumerates the local calendar days intersecting the half-open UTC
// window [startMs, endMs), in order.
func (c *Converter) DaysIn(startMs, endMs int64) []LocalDay {
	if endMs <= startMs {
		return nil
	}

	var days []LocalDay

	first := c.ToLocal(startMs)
	year, month, day := first.Date()

	for offset := 0; ; offset++ {
		dayStart := c.DayStart(year, month, day+offset)
		dayEnd := c.DayStart(year, month, day+offset+1)

		if dayStart.UnixMilli() >= endMs {
			break
		}

		days = append(days, LocalDay{
			Date:    dayStart.Format(dateLayout),
			StartMs: dayStart.UnixMilli(),
			EndMs:   dayEnd.UnixMilli(),
		})
	}

	return days
}

// WindowFromLocalDates builds the UTC bounds for an inclusive local-date
// range: local midnight of startDate up to local midnight after endDate.
func (c *Converter) WindowFromLocalDates(startDate, endDate string) (startMs, endMs int64, err error) {
	start, err := time.ParseInLocation(dateLayout, startDate, c.loc)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}

	end, err := time.ParseInLocation(dateLayout, endDate, c.loc)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}

	endNext := c.DayStart(end.Year(), end.Month(), end.Day()+1)

	return start.UnixMilli(), endNext.UnixMilli(), nil
}

// WeekWindow returns the local Monday-to-Sunday week containing ref, as UTC
// millisecond bounds.
func (c *Converter) WeekWindow(ref time.Time) (startMs, endMs int64) {
	local := ref.In(c.loc)

	daysSinceMonday := (int(local.Weekday()) + 6) % 7
	year, month, day := local.Date()

	start := c.DayStart(year, month, day-daysSinceMonday)
	end := c.DayStart(year, month, day-daysSinceMonday+7)

	return start.UnixMilli(), end.UnixMilli()
}

// FormatDurationHuman renders a minute count the way operators read it.
func FormatDurationHuman(minutes float64) string {
	switch {
	case minutes < 60:
		return fmt.Sprintf("%.1f minutes", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%.1f hours", minutes/60)
	default:
		return fmt.Sprintf("%.1f days", minutes/1440)
	}
}
