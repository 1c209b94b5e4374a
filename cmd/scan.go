package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fleetlens/carrierscan/internal/api"
	"github.com/fleetlens/carrierscan/internal/batch"
	"github.com/fleetlens/carrierscan/internal/carrier"
	"github.com/fleetlens/carrierscan/internal/clock/system"
	"github.com/fleetlens/carrierscan/internal/config"
	"github.com/fleetlens/carrierscan/internal/extract"
	"github.com/fleetlens/carrierscan/internal/fetcher"
	"github.com/fleetlens/carrierscan/internal/filter"
	"github.com/fleetlens/carrierscan/internal/logging"
	"github.com/fleetlens/carrierscan/internal/publisher/pubsub"
	"github.com/fleetlens/carrierscan/internal/sink"
	"github.com/fleetlens/carrierscan/internal/storage"
	gcsStorage "github.com/fleetlens/carrierscan/internal/storage/gcs"
	localStorage "github.com/fleetlens/carrierscan/internal/storage/local"
	"github.com/fleetlens/carrierscan/internal/store/postgres"
)

func newScanCmd() *cobra.Command {
	var (
		inputPath string
		label     string
		mode      string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scans a list of carrier identifiers",
		Long: `Reads carrier identifiers from the input file (one per line), fetches
each registration snapshot in bounded concurrent windows, applies the
configured eligibility filters, and writes accepted carriers to CSV.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" && len(args) == 1 {
				inputPath = args[0]
			}
			return runScan(cmd.Context(), inputPath, label, mode)
		},
		Args: cobra.MaximumNArgs(1),
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to the identifier list, one numeric identifier per line")
	cmd.Flags().StringVar(&label, "label", "", "batch label carried into output filenames and the run summary")
	cmd.Flags().StringVar(&mode, "mode", "", "records or addresses (overrides batch.mode)")

	return cmd
}

func runScan(ctx context.Context, inputPath, label, mode string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if label != "" {
		cfg.Batch.Label = label
	}
	if mode != "" {
		cfg.Batch.Mode = mode
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ids, err := readIdentifiers(inputPath)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no identifiers to scan in %q", inputPath)
	}

	fetch := fetcher.New(fetcher.Config{
		UserAgent:    cfg.Lookup.UserAgent,
		Timeout:      cfg.FetchTimeout(),
		MaxAttempts:  cfg.HTTP.MaxAttempts,
		BackoffBase:  cfg.BackoffBase(),
		RateLimitRPS: cfg.HTTP.RateLimitRPS,
	}, logger)

	clk := system.New()
	eligibility := filter.New(cfg.FilterConfig(), clk)
	extractor := extract.New(logger)

	opts, cleanup, err := buildOptions(ctx, cfg, fetch, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	progress := batch.NewProgress()
	opts = append(opts, batch.WithProgress(progress))

	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	if cfg.Server.Enabled {
		srv := api.NewServer(progress, logger)
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		go func() {
			if err := srv.ListenAndServe(serverCtx, addr); err != nil {
				logger.Warn("Status server exited", zap.Error(err))
			}
		}()
		logger.Info("Status server listening", zap.String("addr", addr))
	}

	orchestrator := batch.New(batch.Config{
		WindowSize:    cfg.Batch.WindowSize,
		WindowDelay:   cfg.WindowDelay(),
		AddressesOnly: cfg.Batch.Mode == "addresses",
		QueryTemplate: cfg.Lookup.QueryTemplate,
		Label:         cfg.Batch.Label,
	}, fetch, eligibility, extractor, clk, logger, opts...)

	result, err := orchestrator.Run(ctx, ids)
	if err != nil {
		return err
	}

	if err := writeOutputs(cfg, result, logger); err != nil {
		return err
	}

	if cfg.PubSub.ProjectID != "" {
		if err := publishSummary(ctx, cfg, result.Summary, logger); err != nil {
			logger.Warn("Summary publish failed", zap.Error(err))
		}
	}

	logger.Info("Scan finished",
		zap.String("run_id", result.Summary.RunID),
		zap.Int("scanned", result.Summary.Scanned),
		zap.Int("accepted", result.Summary.Accepted),
		zap.Int("rejected", result.Summary.Rejected),
		zap.Int("errored", result.Summary.Errored),
	)
	return nil
}

func readIdentifiers(path string) ([]carrier.Identifier, error) {
	if path == "" {
		return nil, fmt.Errorf("an identifier list is required (--input or positional argument)")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open identifier list: %w", err)
	}
	defer f.Close()
	ids, err := carrier.ReadIdentifiers(f)
	if err != nil {
		return nil, fmt.Errorf("read identifier list: %w", err)
	}
	return ids, nil
}

// buildOptions assembles the optional pipeline stages from config. The
// returned cleanup closes whatever was opened; it is safe to call on a
// partially built set.
func buildOptions(ctx context.Context, cfg config.Config, fetch *fetcher.Fetcher, logger *zap.Logger) ([]batch.Option, func(), error) {
	var (
		opts     []batch.Option
		cleanups []func()
	)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if cfg.Extract.ContactPages {
		scout := extract.NewContactScout(fetch, cfg.ContactDelay(), logger)
		opts = append(opts, batch.WithContactEnricher(scout))
	}

	if cfg.DB.DSN != "" {
		store, err := postgres.NewRecordStore(ctx, postgres.RecordStoreConfig{
			DSN:   cfg.DB.DSN,
			Table: cfg.DB.Table,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init record store: %w", err)
		}
		cleanups = append(cleanups, store.Close)
		opts = append(opts, batch.WithRecordStore(store))
	}

	provider, closeProvider, err := buildArchiveProvider(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if provider != nil {
		if closeProvider != nil {
			cleanups = append(cleanups, closeProvider)
		}
		opts = append(opts, batch.WithSnapshotArchiver(sink.NewArchive(provider, cfg.Archive.Prefix)))
	}

	return opts, cleanup, nil
}

func buildArchiveProvider(ctx context.Context, cfg config.Config) (storage.Provider, func(), error) {
	switch cfg.Archive.Backend {
	case "none":
		return nil, nil, nil
	case "local":
		provider, err := localStorage.New(cfg.Archive.LocalDir)
		if err != nil {
			return nil, nil, fmt.Errorf("init local archive: %w", err)
		}
		return provider, nil, nil
	case "gcs":
		provider, err := gcsStorage.New(ctx, cfg.Archive.GCSBucket)
		if err != nil {
			return nil, nil, fmt.Errorf("init gcs archive: %w", err)
		}
		return provider, func() { _ = provider.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown archive backend %q", cfg.Archive.Backend)
	}
}

func writeOutputs(cfg config.Config, result batch.Result, logger *zap.Logger) error {
	columns, err := carrier.Columns(cfg.Output.Variant)
	if err != nil {
		return err
	}
	out, err := sink.New(cfg.Output.Dir, cfg.Batch.Label, columns, logger)
	if err != nil {
		return err
	}

	if cfg.Batch.Mode == "addresses" {
		path, err := out.WriteAddresses(result.Addresses)
		if err != nil {
			return fmt.Errorf("write addresses: %w", err)
		}
		if path != "" {
			logger.Info("Addresses written", zap.String("path", path), zap.Int("count", len(result.Addresses)))
		} else {
			logger.Info("No addresses survived the scan; nothing written")
		}
		return nil
	}

	path, err := out.WriteRecords(result.Records)
	if err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	if path != "" {
		logger.Info("Records written", zap.String("path", path), zap.Int("count", len(result.Records)))
	} else {
		logger.Info("No records survived the scan; nothing written")
	}
	return nil
}

func publishSummary(ctx context.Context, cfg config.Config, summary carrier.Summary, logger *zap.Logger) error {
	pub, err := pubsub.New(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName)
	if err != nil {
		return err
	}
	defer func() { _ = pub.Close() }()

	id, err := pub.Publish(ctx, cfg.PubSub.TopicName, summary)
	if err != nil {
		return err
	}
	logger.Info("Run summary published", zap.String("message_id", id), zap.String("run_id", summary.RunID))
	return nil
}
