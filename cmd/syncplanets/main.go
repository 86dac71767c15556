// Command syncplanets runs one ingestion pass from the NASA Exoplanet Archive
// into the planet catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nextplanet-service/internal/infrastructure/config"
	"nextplanet-service/internal/infrastructure/oauth"
	"nextplanet-service/internal/infrastructure/persistence"
	"nextplanet-service/internal/interface/repository"
	"nextplanet-service/internal/usecase"
	"nextplanet-service/pkg/logger"
	"nextplanet-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"
)

// pushJob is the Pushgateway job name for sync metrics
const pushJob = "nextplanet_sync"

type syncOptions struct {
	dryRun  bool
	pushURL string
}

func newRootCmd() *cobra.Command {
	var opts syncOptions

	cmd := &cobra.Command{
		Use:   "syncplanets",
		Short: "Sync the planet catalog from the NASA Exoplanet Archive",
		Long: `syncplanets fetches up to 2000 default-solution planets from the
NASA Exoplanet Archive, converts their units and upserts them by key
into the configured catalog store. Re-running is safe; a failed run is
repaired by running again.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Fetch and transform into an in-memory catalog without touching the store")
	cmd.Flags().StringVar(&opts.pushURL, "push", "", "Pushgateway URL for run metrics (default $PUSHGATEWAY_URL)")

	return cmd
}

func runSync(ctx context.Context, out io.Writer, opts syncOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.dryRun {
		cfg.StoreDriver = config.DriverMemory
	}
	if opts.pushURL == "" {
		opts.pushURL = cfg.PushgatewayURL
	}

	if err := cfg.ValidateSync(); err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			return fmt.Errorf("refusing to sync: %w", err)
		}
		return err
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(cfg.MetricsNamespace, reg)

	archiveAuth := oauth.NewArchiveOAuth(oauth.ArchiveCredentials{
		Token:        cfg.ArchiveToken,
		ClientID:     cfg.ArchiveClientID,
		ClientSecret: cfg.ArchiveClientSecret,
		TokenURL:     cfg.ArchiveTokenURL,
	}, log)
	archive, err := repository.NewExoplanetArchiveRepository(
		cfg.ArchiveBaseURL,
		archiveAuth.HTTPClient(ctx),
		cfg.ArchiveTimeout,
		log,
	)
	if err != nil {
		return err
	}

	catalog, closeCatalog, err := persistence.OpenCatalog(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer closeCatalog(context.Background())

	syncer := usecase.NewPlanetSyncer(archive, catalog, log, m)
	result, runErr := syncer.Run(ctx)

	mode := "sync"
	if opts.dryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(out, "%s: fetched=%d upserted=%d skipped=%d elapsed=%s\n",
		mode, result.Fetched, result.Upserted, result.Skipped, result.Duration.Round(time.Millisecond))

	if opts.pushURL != "" {
		if err := push.New(opts.pushURL, pushJob).Gatherer(reg).Push(); err != nil {
			log.Warn("Failed to push sync metrics", "url", opts.pushURL, "error", err)
		}
	}

	return runErr
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
