package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/transportlab/zonelink/internal/api"
	"github.com/transportlab/zonelink/pkg/cache"
)

// newServeCmd creates the serve command that exposes the pipeline over HTTP.
// With --redis-addr the result cache is shared across instances; the Redis
// password, if any, comes from ZONELINK_REDIS_PASSWORD.
func newServeCmd() *cobra.Command {
	var (
		addr      string
		redisAddr string
		redisDB   int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the correspondence pipeline over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			store := cache.NewNullCache()
			if redisAddr != "" {
				redisCache, err := cache.NewRedisCache(cmd.Context(), cache.RedisConfig{
					Addr:     redisAddr,
					Password: os.Getenv("ZONELINK_REDIS_PASSWORD"),
					DB:       redisDB,
				})
				if err != nil {
					return err
				}
				store = redisCache
				logger.Info("result cache backed by redis", "addr", redisAddr)
			}
			defer store.Close()

			return api.NewServer(store, logger).Serve(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "redis address for a shared result cache (e.g. localhost:6379)")
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "redis database number")

	return cmd
}
