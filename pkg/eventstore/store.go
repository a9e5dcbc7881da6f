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

// Package eventstore reads installations, machines, and mode-change events
// from postgres.
package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carverauto/liftwatch/pkg/logger"
	"github.com/carverauto/liftwatch/pkg/models"
)

// ErrUnknownInstallation is returned when an installation ID has no record.
var ErrUnknownInstallation = errors.New("unknown installation")

// Store is the postgres-backed event source.
type Store struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

// NewStore wraps an existing pool.
func NewStore(pool *pgxpool.Pool, log logger.Logger) *Store {
	return &Store{pool: pool, log: log}
}

const (
	queryInstallationTimezone = `
		SELECT timezone
		FROM installations
		WHERE installation_id = $1`

	queryMachineIDs = `
		SELECT machine_id
		FROM machines
		WHERE installation_id = $1
		ORDER BY machine_id`

	queryModeChanges = `
		SELECT machine_id, occurred_at_ms, mode_code, attributes
		FROM mode_changes
		WHERE machine_id = $1
		  AND occurred_at_ms >= $2
		  AND occurred_at_ms < $3
		ORDER BY occurred_at_ms, id`

	queryPriorMode = `
		SELECT mode_code
		FROM mode_changes
		WHERE machine_id = $1
		  AND occurred_at_ms < $2
		ORDER BY occurred_at_ms DESC, id DESC
		LIMIT 1`
)

// InstallationTimezone returns the IANA timezone on record for the
// installation.
func (s *Store) InstallationTimezone(ctx context.Context, installationID string) (string, error) {
	var tz string

	err := s.pool.QueryRow(ctx, queryInstallationTimezone, installationID).Scan(&tz)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrUnknownInstallation, installationID)
		}

		return "", fmt.Errorf("eventstore: installation lookup failed: %w", err)
	}

	return tz, nil
}

// MachineIDs lists the machines of an installation in stable order.
func (s *Store) MachineIDs(ctx context.Context, installationID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, queryMachineIDs, installationID)
	if err != nil {
		return nil, fmt.Errorf("eventstore: machine listing failed: %w", err)
	}
	defer rows.Close()

	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("eventstore: machine scan failed: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventstore: machine listing failed: %w", err)
	}

	return ids, nil
}

// ModeChanges returns one machine's events inside [startMs, endMs) in
// ascending timestamp order.
func (s *Store) ModeChanges(ctx context.Context, machineID string, startMs, endMs int64) ([]models.ModeChangeEvent, error) {
	rows, err := s.pool.Query(ctx, queryModeChanges, machineID, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("eventstore: mode change query failed for %s: %w", machineID, err)
	}
	defer rows.Close()

	var events []models.ModeChangeEvent

	for rows.Next() {
		var (
			ev    models.ModeChangeEvent
			attrs []byte
		)

		if err := rows.Scan(&ev.MachineID, &ev.TimestampMs, &ev.ModeCode, &attrs); err != nil {
			return nil, fmt.Errorf("eventstore: mode change scan failed for %s: %w", machineID, err)
		}

		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &ev.RawAttributes); err != nil {
				// A broken attributes blob does not invalidate the event.
				s.log.Warn().
					Str("machine_id", machineID).
					Int64("occurred_at_ms", ev.TimestampMs).
					Err(err).
					Msg("dropping unparseable event attributes")
			}
		}

		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventstore: mode change query failed for %s: %w", machineID, err)
	}

	return events, nil
}

// PriorMode returns the machine's last mode code strictly before beforeMs, or
// empty when the machine has no earlier history.
func (s *Store) PriorMode(ctx context.Context, machineID string, beforeMs int64) (string, error) {
	var code string

	err := s.pool.QueryRow(ctx, queryPriorMode, machineID, beforeMs).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("eventstore: prior mode query failed for %s: %w", machineID, err)
	}

	return code, nil
}
