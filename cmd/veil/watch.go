// Copyright (C) 2025 veil-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later


package main

import (
	"context"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/veil-x-project/veil/announce"
	"github.com/veil-x-project/veil/announce/postgres"
	"github.com/veil-x-project/veil/chain/solana"
	"github.com/veil-x-project/veil/config"
	"github.com/veil-x-project/veil/health"
	"github.com/veil-x-project/veil/internal/logger"
	"github.com/veil-x-project/veil/internal/metrics"
	"github.com/veil-x-project/veil/scanner"
)

var (
	watchKeystore   string
	watchPassphrase string
	watchConfig     string
	watchInterval   time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously watch the registry for payments",
	Long: `Run as a small scanning daemon: pull announcements from the registry
on an interval, persist them to the configured store, scan new ones with the
keystore's viewing key, and log discovered payments. Serves Prometheus
metrics when enabled in the configuration.`,
	Example: `  veil watch --keystore account.json --config veil.yaml
  veil watch --keystore account.json --config veil.yaml --interval 10s`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchKeystore, "keystore", "k", "", "Keystore file (required)")
	watchCmd.Flags().StringVarP(&watchPassphrase, "passphrase", "p", "", "Keystore passphrase")
	watchCmd.Flags().StringVarP(&watchConfig, "config", "c", "", "Configuration file (default: environment)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 30*time.Second, "Registry polling interval")
	_ = watchCmd.MarkFlagRequired("keystore")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadWatchConfig()
	if err != nil {
		return err
	}
	log := logger.GetDefaultLogger().WithFields(logger.String("component", "watch"))

	acct, err := loadAccount(watchKeystore, watchPassphrase)
	if err != nil {
		return err
	}
	defer acct.Close()

	registry, err := solanago.PublicKeyFromBase58(cfg.Chain.Registry)
	if err != nil {
		return err
	}
	client := solana.NewClient(cfg.Chain.RPCEndpoint)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	checker := health.NewChecker(0)
	checker.Register("rpc", client.Health)
	checker.Register("store", func(ctx context.Context) error {
		_, err := store.Count(ctx)
		return err
	})

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartServer(cfg.Metrics.Addr); err != nil {
				log.Error("metrics server stopped", logger.Error(err))
			}
		}()
	}

	sc := scanner.New(acct.Keys(), client, scanner.WithParallelism(cfg.Scanner.Parallelism))

	log.Info("watching registry",
		logger.String("registry", cfg.Chain.Registry),
		logger.Duration("interval", watchInterval),
	)

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()
	for {
		if err := watchOnce(ctx, log, client, registry, store, sc); err != nil {
			log.Warn("watch iteration failed", logger.Error(err))
			for name, r := range checker.Run(ctx) {
				if r.Status != health.StatusHealthy {
					log.Warn("unhealthy component", logger.String("check", name), logger.String("message", r.Message))
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// watchOnce pulls the registry history, persists announcements not yet
// stored, and scans the new tail.
func watchOnce(
	ctx context.Context,
	log logger.Logger,
	client *solana.Client,
	registry solanago.PublicKey,
	store announce.Store,
	sc *scanner.Scanner,
) error {
	known, err := store.Count(ctx)
	if err != nil {
		return err
	}

	anns, err := client.Announcements(ctx, registry, 0)
	if err != nil {
		return err
	}
	if len(anns) <= known {
		return nil
	}

	// The RPC returns newest first; persist oldest first so store order is
	// chain order.
	fresh := anns[:len(anns)-known]
	for i := len(fresh) - 1; i >= 0; i-- {
		if err := store.Save(ctx, fresh[i]); err != nil {
			return err
		}
	}

	found, err := sc.Scan(ctx, fresh)
	if err != nil {
		return err
	}
	for _, d := range found {
		log.Info("payment discovered",
			logger.String("address", base58.Encode(d.Announcement.StealthAddress)),
			logger.Uint64("lamports", d.Lamports),
		)
		d.Keypair.Zeroize()
	}
	return nil
}

func loadWatchConfig() (*config.Config, error) {
	if watchConfig != "" {
		return config.LoadFromFile(watchConfig)
	}
	return config.LoadFromEnv()
}

// openStore builds the configured announcement store.
func openStore(ctx context.Context, cfg *config.Config) (announce.Store, func(), error) {
	if cfg.Store.Type == "postgres" {
		pg, err := postgres.NewStoreFromDSN(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		return pg, func() { _ = pg.Close() }, nil
	}
	return announce.NewMemoryStore(), func() {}, nil
}
