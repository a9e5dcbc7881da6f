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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/liftwatch/pkg/api"
	"github.com/carverauto/liftwatch/pkg/config"
	"github.com/carverauto/liftwatch/pkg/config/kvnats"
	"github.com/carverauto/liftwatch/pkg/eventstore"
	"github.com/carverauto/liftwatch/pkg/logger"
	"github.com/carverauto/liftwatch/pkg/models"
	"github.com/carverauto/liftwatch/pkg/modes"
	"github.com/carverauto/liftwatch/pkg/uptime"
	"github.com/carverauto/liftwatch/pkg/version"
)

var errFailedToLoadConfig = fmt.Errorf("failed to load config")

const (
	defaultConfigPath      = "/etc/liftwatch/liftwatch.json"
	defaultShutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath, "Path to liftwatch config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfgLoader := config.NewConfig(nil)

	if kvStore, err := dialConfigKV(); err != nil {
		return fmt.Errorf("failed to connect to config KV store: %w", err)
	} else if kvStore != nil {
		defer func() { _ = kvStore.Close() }()
		cfgLoader.SetKVStore(kvStore)
	}

	var cfg models.ServiceConfig

	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	mainLogger, err := logger.NewComponent("liftwatch", nil)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	pool, err := eventstore.NewPool(ctx, &cfg.Database, mainLogger)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := eventstore.NewStore(pool, mainLogger)
	engine := uptime.NewEngine(modes.DefaultCatalog(), mainLogger)

	serverOptions := []func(*api.APIServer){
		api.WithDataSource(store),
		api.WithEngine(engine),
		api.WithLogger(mainLogger),
	}

	if cfg.MaxWindowDays > 0 {
		serverOptions = append(serverOptions, api.WithMaxWindowDays(cfg.MaxWindowDays))
	}

	if cfg.DefaultTimezone != "" {
		serverOptions = append(serverOptions, api.WithDefaultTimezone(cfg.DefaultTimezone))
	}

	server := api.NewAPIServer(cfg.CORS, serverOptions...)

	shutdownTimeout := time.Duration(cfg.ShutdownTimeout)
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	mainLogger.Info().
		Str("listen_addr", cfg.ListenAddr).
		Str("version", version.GetFullVersion()).
		Msg("starting liftwatch API server")

	return server.Start(ctx, cfg.ListenAddr, shutdownTimeout)
}

// dialConfigKV connects the JetStream KV bucket used for remote config when
// CONFIG_SOURCE=kv. Connection details come from the environment because the
// config itself has not been loaded yet.
func dialConfigKV() (*kvnats.Client, error) {
	if os.Getenv("CONFIG_SOURCE") != "kv" {
		return nil, nil
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	bucket := os.Getenv("CONFIG_KV_BUCKET")
	if bucket == "" {
		bucket = "liftwatch-config"
	}

	nc, err := nats.Connect(natsURL, nats.Name("liftwatch-config"))
	if err != nil {
		return nil, err
	}

	client, err := kvnats.New(nc, bucket)
	if err != nil {
		nc.Close()
		return nil, err
	}

	return client, nil
}
