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

import "errors"

var (
	errListenAddrRequired = errors.New("listen_addr is required")
	errDatabaseRequired   = errors.New("database.host and database.database are required")
)

// PostgresDatabase holds connection settings for the event store.
type PostgresDatabase struct {
	Host               string            `json:"host"`
	Port               int               `json:"port"`
	Database           string            `json:"database"`
	Username           string            `json:"username"`
	Password           string            `json:"password"`
	SSLMode            string            `json:"ssl_mode,omitempty"`
	ApplicationName    string            `json:"application_name,omitempty"`
	MaxConnections     int32             `json:"max_connections,omitempty"`
	MinConnections     int32             `json:"min_connections,omitempty"`
	MaxConnLifetime    Duration          `json:"max_conn_lifetime,omitempty"`
	HealthCheckPeriod  Duration          `json:"health_check_period,omitempty"`
	ExtraRuntimeParams map[string]string `json:"extra_runtime_params,omitempty"`
}

// CORSConfig controls cross-origin access to the HTTP API.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// NATSConfig points at the JetStream deployment used for remote config.
type NATSConfig struct {
	URL    string `json:"url"`
	Bucket string `json:"bucket"`
}

// ServiceConfig is the top-level configuration of the liftwatch service.
type ServiceConfig struct {
	ListenAddr string           `json:"listen_addr"`
	Database   PostgresDatabase `json:"database"`
	NATS       *NATSConfig      `json:"nats,omitempty"`
	CORS       CORSConfig       `json:"cors,omitempty"`

	// DefaultTimezone is used when an installation has no timezone on record.
	DefaultTimezone string `json:"default_timezone,omitempty"`

	// MaxWindowDays caps the length of a requested analysis window.
	MaxWindowDays int `json:"max_window_days,omitempty"`

	ShutdownTimeout Duration `json:"shutdown_timeout,omitempty"`
}

// Validate implements config.Validator.
func (c *ServiceConfig) Validate() error {
	if c.ListenAddr == "" {
		return errListenAddrRequired
	}

	if c.Database.Host == "" || c.Database.Database == "" {
		return errDatabaseRequired
	}

	return nil
}
