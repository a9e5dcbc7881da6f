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

package modes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/liftwatch/pkg/models"
)

func TestCatalogClassify(t *testing.T) {
	catalog := DefaultCatalog()

	tests := []struct {
		code string
		want models.IntervalState
	}{
		{"NOR", models.StateUptime},
		{"IDL", models.StateUptime},
		{"ATT", models.StateUptime},
		{"STP", models.StateUptime},
		{"COR", models.StateDowntime},
		{"NAV", models.StateDowntime},
		{"ESB", models.StateDowntime},
		{"DLF", models.StateDowntime},
		{"XYZ", models.StateUnknown},
		{"", models.StateUnknown},
		{"nor", models.StateUnknown}, // codes are case-sensitive
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.Classify(tt.code))
		})
	}
}

func TestCatalogNeverFoldsUnknownIntoUptime(t *testing.T) {
	catalog := NewCatalog([]string{"UP"}, []string{"DN"})

	assert.Equal(t, models.StateUnknown, catalog.Classify("MYSTERY"))
	assert.False(t, catalog.Known("MYSTERY"))
	assert.True(t, catalog.Known("UP"))
}

func TestCatalogExposesTable(t *testing.T) {
	catalog := DefaultCatalog()

	up := catalog.UptimeCodes()
	down := catalog.DowntimeCodes()

	require.Len(t, up, 27)
	require.Len(t, down, 7)

	assert.Contains(t, up, "NOR")
	assert.Contains(t, down, "NAV")
	assert.IsIncreasing(t, up)
	assert.IsIncreasing(t, down)
}

func TestCatalogCopiesInput(t *testing.T) {
	codes := []string{"AAA"}
	catalog := NewCatalog(codes, nil)

	codes[0] = "BBB"

	assert.Equal(t, models.StateUptime, catalog.Classify("AAA"))
	assert.Equal(t, models.StateUnknown, catalog.Classify("BBB"))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Normal", Describe("NOR"))
	assert.Equal(t, "Door Lock Failure", Describe("DLF"))
	assert.Empty(t, Describe("XYZ"))
}
