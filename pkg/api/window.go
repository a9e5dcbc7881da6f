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
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/carverauto/liftwatch/pkg/tzwin"
)

var (
	errWindowEndBeforeStart = errors.New("window end must be after start")
	errWindowEndInFuture    = errors.New("window end is in the future")
	errWindowTooLong        = errors.New("window exceeds the maximum length")
)

// parseWindow resolves the analysis window from query parameters.
// `start`/`end` take RFC3339 timestamps; `start_date`/`end_date` take
// inclusive local calendar dates. Without parameters the window is the last
// seven full local days.
func (s *APIServer) parseWindow(query url.Values, tz *tzwin.Converter) (startMs, endMs int64, err error) {
	switch {
	case query.Get("start") != "" || query.Get("end") != "":
		startMs, endMs, err = parseInstantWindow(query)
	case query.Get("start_date") != "" || query.Get("end_date") != "":
		startMs, endMs, err = parseDateWindow(query, tz)
	default:
		return s.defaultWindow(tz), s.todayStart(tz), nil
	}

	if err != nil {
		return 0, 0, err
	}

	return startMs, endMs, s.guardWindow(startMs, endMs)
}

func parseInstantWindow(query url.Values) (startMs, endMs int64, err error) {
	start, err := time.Parse(time.RFC3339, query.Get("start"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start time: %w", err)
	}

	end, err := time.Parse(time.RFC3339, query.Get("end"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end time: %w", err)
	}

	return start.UnixMilli(), end.UnixMilli(), nil
}

func parseDateWindow(query url.Values, tz *tzwin.Converter) (startMs, endMs int64, err error) {
	startDate := query.Get("start_date")
	endDate := query.Get("end_date")

	if startDate == "" || endDate == "" {
		return 0, 0, errors.New("start_date and end_date must both be set")
	}

	return tz.WindowFromLocalDates(startDate, endDate)
}

func (s *APIServer) guardWindow(startMs, endMs int64) error {
	if endMs <= startMs {
		return errWindowEndBeforeStart
	}

	if endMs > s.now().UnixMilli() {
		return errWindowEndInFuture
	}

	// An hour of slack keeps date windows spanning a fall-back transition
	// inside the cap.
	limit := int64(s.maxWindowDays)*24*int64(time.Hour/time.Millisecond) + int64(time.Hour/time.Millisecond)
	if endMs-startMs > limit {
		return fmt.Errorf("%w of %d days", errWindowTooLong, s.maxWindowDays)
	}

	return nil
}

// todayStart is local midnight of the current day.
func (s *APIServer) todayStart(tz *tzwin.Converter) int64 {
	year, month, day := tz.ToLocal(s.now().UnixMilli()).Date()

	return tz.DayStart(year, month, day).UnixMilli()
}

// defaultWindow starts seven full local days before today.
func (s *APIServer) defaultWindow(tz *tzwin.Converter) int64 {
	year, month, day := tz.ToLocal(s.now().UnixMilli()).Date()

	return tz.DayStart(year, month, day-7).UnixMilli()
}
