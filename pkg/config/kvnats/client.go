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

// Package kvnats backs the config KV store with a NATS JetStream
// key-value bucket.
package kvnats

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/liftwatch/pkg/config/kv"
)

type Client struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	kv     jetstream.KeyValue
	bucket string
}

var _ kv.KVStore = (*Client)(nil)

// New connects to the named bucket, creating it if absent.
func New(nc *nats.Conn, bucket string) (*Client, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	kvStore, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: bucket,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		nc:     nc,
		js:     js,
		kv:     kvStore,
		bucket: bucket,
	}, nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := c.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return entry.Value(), true, nil
}

// Put stores the value. NATS KV has no per-key TTL; the ttl argument is
// accepted for interface compatibility and ignored.
func (c *Client) Put(ctx context.Context, key string, value []byte, _ time.Duration) error {
	_, err := c.kv.Put(ctx, key, value)
	return err
}

func (c *Client) Create(ctx context.Context, key string, value []byte, _ time.Duration) error {
	_, err := c.kv.Create(ctx, key, value)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return kv.ErrKeyExists
		}

		return err
	}

	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	return c.kv.Delete(ctx, key)
}

func (c *Client) Watch(ctx context.Context, key string) (<-chan []byte, error) {
	watcher, err := c.kv.Watch(ctx, key)
	if err != nil {
		return nil, err
	}

	ch := make(chan []byte, 1)

	go func() {
		defer close(ch)
		defer func() { _ = watcher.Stop() }()

		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-watcher.Updates():
				if !ok {
					return
				}

				if update == nil {
					continue
				}

				if update.Operation() == jetstream.KeyValueDelete || update.Operation() == jetstream.KeyValuePurge {
					ch <- nil
				} else {
					ch <- update.Value()
				}
			}
		}
	}()

	return ch, nil
}

func (c *Client) Close() error {
	c.nc.Close()
	return nil
}
