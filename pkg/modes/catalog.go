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

// Package modes maps elevator mode codes to operational states.
package modes

import (
	"sort"

	"github.com/carverauto/liftwatch/pkg/models"
)

// Catalog is an immutable classification table from mode code to
// operational state. It is constructed once and shared; a code in neither
// set classifies as UNKNOWN, never as uptime.
type Catalog struct {
	uptime   map[string]struct{}
	downtime map[string]struct{}
}

// NewCatalog builds a catalog from explicit uptime and downtime code lists.
// The input slices are copied; the catalog never mutates after construction.
func NewCatalog(uptimeCodes, downtimeCodes []string) *Catalog {
	c := &Catalog{
		uptime:   make(map[string]struct{}, len(uptimeCodes)),
		downtime: make(map[string]struct{}, len(downtimeCodes)),
	}

	for _, code := range uptimeCodes {
		c.uptime[code] = struct{}{}
	}

	for _, code := range downtimeCodes {
		c.downtime[code] = struct{}{}
	}

	return c
}

// Classify returns the operational state for a mode code.
func (c *Catalog) Classify(code string) models.IntervalState {
	if _, ok := c.uptime[code]; ok {
		return models.StateUptime
	}

	if _, ok := c.downtime[code]; ok {
		return models.StateDowntime
	}

	return models.StateUnknown
}

// Known reports whether the code is in either classification set.
func (c *Catalog) Known(code string) bool {
	return c.Classify(code) != models.StateUnknown
}

// UptimeCodes returns the sorted list of codes classified as uptime.
func (c *Catalog) UptimeCodes() []string {
	return sortedKeys(c.uptime)
}

// DowntimeCodes returns the sorted list of codes classified as downtime.
func (c *Catalog) DowntimeCodes() []string {
	return sortedKeys(c.downtime)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
