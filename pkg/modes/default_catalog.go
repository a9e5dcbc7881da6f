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

// Default mode tables for the elevator controller fleet. A car counts as
// operational in any mode where it can still serve or recover service;
// downtime codes are hard faults and manual lockouts.
var (
	defaultUptimeCodes = []string{
		"ANS", "ATT", "CHC", "CTL", "DCP", "DEF", "DHB", "DTC", "DTO",
		"EFO", "EFS", "EHS", "EPC", "EPR", "EPW", "IDL", "INI", "INS",
		"ISC", "LNS", "NOR", "PKS", "PRK", "RCY", "REC", "SRO", "STP",
	}

	defaultDowntimeCodes = []string{
		"COR", "DBF", "DLF", "ESB", "HAD", "HBP", "NAV",
	}
)

var modeDescriptions = map[string]string{
	"ANS": "Anti-Nuisance",
	"ATT": "Attendant Mode",
	"CHC": "Cancel Hall Call",
	"COR": "Correction",
	"CTL": "Car to Landing",
	"DBF": "Drive Brake Fault",
	"DCP": "Delayed Car Protection",
	"DEF": "Default Initialization",
	"DHB": "Door Hold Button",
	"DLF": "Door Lock Failure",
	"DTC": "Door Close Timeout",
	"DTO": "Door Open Timeout",
	"EFO": "Emergency Fire Operation",
	"EFS": "Emergency Fireman Service",
	"EHS": "Emergency Hospital Service",
	"EPC": "Emergency Power Correction",
	"EPR": "Emergency Power Rescue",
	"EPW": "Emergency Power Waiting",
	"ESB": "Emergency Stop Button",
	"HAD": "Hoistway Access Detection",
	"HBP": "Hall Button Protection",
	"IDL": "Idle",
	"INI": "Initialization",
	"INS": "Inspection",
	"ISC": "Independent Service",
	"LNS": "Load Nonstop",
	"NAV": "Not Available",
	"NOR": "Normal",
	"PKS": "Park & Shutdown",
	"PRK": "Parking Operation",
	"RCY": "Recycle Operation (Hydro)",
	"REC": "Recover Operation",
	"SRO": "Separate Riser Operation",
	"STP": "Car Stall Protection",
}

// DefaultCatalog returns the standard classification table.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultUptimeCodes, defaultDowntimeCodes)
}

// Describe returns the human-readable name for a mode code, or the empty
// string for codes outside the table.
func Describe(code string) string {
	return modeDescriptions[code]
}
