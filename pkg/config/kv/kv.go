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

// Package kv defines the key-value store contract used for remote
// configuration.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrKeyExists is returned by Create when the key already holds a value.
var ErrKeyExists = errors.New("kv: key already exists")

// KVStore is the minimal surface config loading needs from a KV backend.
type KVStore interface {
	// Get returns the value for key; found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put stores value under key. TTL support is backend dependent.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Create stores value only if the key does not exist yet.
	Create(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the key.
	Delete(ctx context.Context, key string) error

	// Watch streams new values for key; a nil value signals deletion. The
	// channel closes when ctx is done.
	Watch(ctx context.Context, key string) (<-chan []byte, error)

	Close() error
}
