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

package coverage

import (
	"time"

	"github.com/carverauto/liftwatch/pkg/models"
)

// Thresholds holds the quality-rating cut points as a single overridable
// value, so ratings are decided in exactly one place.
type Thresholds struct {
	Excellent float64 `json:"excellent"`
	Good      float64 `json:"good"`
	Fair      float64 `json:"fair"`
	// StaleAfter is how long before the window end a machine may be silent
	// before it is flagged stale.
	StaleAfter models.Duration `json:"stale_after"`
}

// DefaultThresholds returns the standard cut points.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Excellent:  95,
		Good:       75,
		Fair:       50,
		StaleAfter: models.Duration(24 * time.Hour),
	}
}

// Rate grades a coverage percentage.
func (t Thresholds) Rate(percent float64) models.QualityRating {
	switch {
	case percent >= t.Excellent:
		return models.QualityExcellent
	case percent >= t.Good:
		return models.QualityGood
	case percent >= t.Fair:
		return models.QualityFair
	case percent > 0:
		return models.QualityPoor
	default:
		return models.QualitySilent
	}
}
