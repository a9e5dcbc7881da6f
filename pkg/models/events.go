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

// ModeChangeEvent is a single "mode changed" report from a machine.
// Timestamps are UTC epoch milliseconds as reported by the event source.
type ModeChangeEvent struct {
	MachineID     string                 `json:"machine_id"`
	TimestampMs   int64                  `json:"timestamp_ms"`
	ModeCode      string                 `json:"mode_code"`
	RawAttributes map[string]interface{} `json:"raw_attributes,omitempty"`
}

// Valid reports whether the event carries the fields interval construction
// requires. Events failing this check are skipped and tallied, not fatal.
func (e *ModeChangeEvent) Valid() bool {
	return e != nil && e.TimestampMs > 0 && e.ModeCode != ""
}
