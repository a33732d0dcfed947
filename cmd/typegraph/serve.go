package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/typegraph-io/typegraph/internal/cli/config"
	"github.com/typegraph-io/typegraph/internal/server"
	"github.com/typegraph-io/typegraph/internal/store"
	"github.com/typegraph-io/typegraph/scan"
)

var (
	serveFile   string
	serveScanID string
)

func init() {
	serveCmd.Flags().StringVar(&serveFile, "file", "", "Serve a scan result from a JSON file")
	serveCmd.Flags().StringVar(&serveScanID, "scan-id", "", "Serve a scan result from the store by ID")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a scan result over HTTP",
	Long:  "Load a scan result from a file or the store and expose it over the query API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if (serveFile == "") == (serveScanID == "") {
			return fmt.Errorf("exactly one of --file or --scan-id is required")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log, err := zap.NewDevelopment()
		if err != nil {
			log = zap.NewNop()
		}
		defer log.Sync()

		result, err := loadServeResult(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}

		serverConfig := server.Config{
			Addr:       cfg.Server.Addr(),
			AuthSecret: cfg.Auth.Secret,
			TokenTTL:   cfg.Auth.TokenTTL,
		}

		if cfg.Cache.RedisAddr != "" {
			cache, err := server.NewResponseCache(
				cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.TTL)
			if err != nil {
				return fmt.Errorf("failed to connect to redis: %w", err)
			}
			defer cache.Close()
			serverConfig.Cache = cache
		}

		return server.New(result, serverConfig, log).ListenAndServe()
	},
}

func loadServeResult(ctx context.Context, cfg *config.Config, log *zap.Logger) (*scan.Result, error) {
	if serveFile != "" {
		data, err := os.ReadFile(serveFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", serveFile, err)
		}
		return scan.LoadResultJSON(data, nil)
	}

	st, err := store.Open(cfg.Store.Driver, config.GetStoreDSN(cfg), log)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return st.LoadResult(ctx, serveScanID, nil)
}
