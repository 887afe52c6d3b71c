package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bookfetch/internal/classify"
	"bookfetch/internal/config"
	"bookfetch/internal/download"
	"bookfetch/internal/fileutil"
	"bookfetch/internal/ipfs"
	"bookfetch/internal/logging"
	"bookfetch/internal/notifications"
	"bookfetch/internal/pipeline"
	"bookfetch/internal/preflight"
	"bookfetch/internal/services"
)

type fetchOptions struct {
	policyID            string
	outputDir           string
	fetchConcurrency    int
	downloadConcurrency int
	replenish           string
	fetchRetries        int
	jsonOutput          bool
	noProgress          bool
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch [policy-id]",
		Short: "Download the images of every asset in a Book.io collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			policy, err := policyArg(args, opts.policyID)
			if err != nil {
				return err
			}
			runCfg, err := applyFetchOverrides(cmd, *cfg, opts)
			if err != nil {
				return err
			}
			return runFetch(cmd, ctx, runCfg, policy, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.policyID, "policy-id", "p", "", "Collection policy id")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", "", "Directory for downloaded images")
	flags.IntVar(&opts.fetchConcurrency, "fetch-concurrency", 0, "Maximum in-flight metadata requests")
	flags.IntVar(&opts.downloadConcurrency, "download-concurrency", 0, "Maximum in-flight image downloads")
	flags.StringVar(&opts.replenish, "replenish", "", "Fetch window policy: on-miss or always")
	flags.IntVar(&opts.fetchRetries, "fetch-retries", 0, "Extra attempts for a failed metadata request")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print the result as JSON")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

func applyFetchOverrides(cmd *cobra.Command, cfg config.Config, opts fetchOptions) (*config.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		dir, err := config.ExpandPath(opts.outputDir)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "cli", "output dir", "", err)
		}
		cfg.Paths.OutputDir = dir
	}
	if flags.Changed("fetch-concurrency") {
		cfg.Pipeline.FetchConcurrency = opts.fetchConcurrency
	}
	if flags.Changed("download-concurrency") {
		cfg.Pipeline.DownloadConcurrency = opts.downloadConcurrency
	}
	if flags.Changed("replenish") {
		policy, err := pipeline.ParseReplenishPolicy(opts.replenish)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "cli", "flags", "", err)
		}
		cfg.Pipeline.Replenish = string(policy)
	}
	if flags.Changed("fetch-retries") {
		cfg.Pipeline.FetchRetries = opts.fetchRetries
	}
	if err := cfg.Validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "flags", "", err)
	}
	return &cfg, nil
}

func runFetch(cmd *cobra.Command, cmdCtx *commandContext, cfg *config.Config, policy string, opts fetchOptions) error {
	stderr := cmd.ErrOrStderr()
	if err := cfg.RequireBlockfrost(); err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "fetch", "", err)
	}
	if err := preflight.FirstFailure(preflight.RunLocal(cfg)); err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "preflight", "", err)
	}

	runLogger, err := logging.NewForRun(cfg, cmdCtx.logLevel(), time.Now())
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "logging", "", err)
	}
	runID := uuid.NewString()
	logger := logging.NewComponentLogger(runLogger.Logger, "fetch")

	signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx := services.WithPolicyID(services.WithRunID(signalCtx, runID), policy)
	logger = logging.WithContext(ctx, logger)
	logger.Info("fetch started",
		logging.String(logging.FieldEventType, "fetch_started"),
		logging.String("output_dir", cfg.Paths.OutputDir),
		logging.String("log_file", runLogger.Path),
	)

	catalog, closeCatalog, err := catalogClient(cfg, runLogger.Logger)
	if err != nil {
		return err
	}
	defer closeCatalog()
	ok, err := catalog.Verify(ctx, policy)
	if err != nil {
		if ctx.Err() != nil {
			return abandonRun(stderr, ctx.Err())
		}
		return services.Wrap(services.ErrExternal, "cli", "verify", fmt.Sprintf("policy_id %s is not valid", policy), err)
	}
	if !ok {
		return services.Wrap(services.ErrNotFound, "cli", "verify", fmt.Sprintf("policy_id %s is not found", policy), nil)
	}

	chain, err := blockfrostClient(cfg)
	if err != nil {
		return err
	}
	ids, err := chain.ListAssets(ctx, policy)
	if err != nil {
		if ctx.Err() != nil {
			return abandonRun(stderr, ctx.Err())
		}
		return services.Wrap(services.ErrExternal, "cli", "list assets", "cannot list collection assets", err)
	}
	logger.Info("collection listed", logging.Int("assets", len(ids)))

	lock, err := fileutil.LockDir(cfg.Paths.OutputDir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "lock output dir", "", err)
	}
	defer func() { _ = lock.Unlock() }()

	progress := newFetchProgress(stderr, len(ids), cfg.Pipeline.Replenish, !opts.noProgress && !opts.jsonOutput && shouldColorize(stderr))
	dispatcher, err := download.New(cfg.Paths.OutputDir, cfg.Pipeline.DownloadConcurrency,
		download.WithTimeout(cfg.DownloadTimeout()),
		download.WithLogger(runLogger.Logger),
		download.WithObserver(progress.downloaded),
	)
	if err != nil {
		return err
	}
	replenish, err := pipeline.ParseReplenishPolicy(cfg.Pipeline.Replenish)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "replenish", "", err)
	}
	orchestrator, err := pipeline.New(chain, classify.New(ipfs.NewResolver(cfg.IPFS.Gateway)), dispatcher, pipeline.Options{
		FetchConcurrency: cfg.Pipeline.FetchConcurrency,
		Replenish:        replenish,
		FetchRetries:     cfg.Pipeline.FetchRetries,
		Logger:           runLogger.Logger,
		OnFetch:          progress.fetched,
	})
	if err != nil {
		return err
	}

	notifier := notifications.NewService(cfg)
	started := time.Now()
	report, runErr := pipeline.NewCoordinator().Run(ctx, orchestrator, ids)
	progress.finish()
	stopped := isStopped(runErr)
	if runErr != nil && !stopped {
		logging.ErrorWithContext(logger, "fetch failed", "fetch_failed",
			logging.Error(runErr),
			logging.Int("results", len(report.Results)),
		)
		notify(logger, func(nctx context.Context) error { return notifier.NotifyError(nctx, runErr, policy) })
		return runErr
	}
	if stopped {
		fmt.Fprintln(stderr, stopNotice(runErr))
		logging.WarnWithContext(logger, "fetch cancelled", "fetch_cancelled",
			logging.Int("results", len(report.Results)),
			logging.String(logging.FieldImpact, "remaining assets were not processed"),
		)
		notify(logger, func(nctx context.Context) error {
			return notifier.NotifyFetchCancelled(nctx, policy, len(report.Results))
		})
	}

	view := buildFetchView(policy, runID, report, runLogger.Path)
	view.DownloadConcurrency = dispatcher.Permits()
	if err := printFetchView(cmd, view, opts.jsonOutput); err != nil {
		return err
	}
	if stopped {
		fmt.Fprintln(stderr, "fetching was not completed")
		return runErr
	}
	logger.Info("fetch finished",
		logging.String(logging.FieldEventType, "fetch_finished"),
		logging.Int("valid", view.Valid),
		logging.Int("downloaded", view.Downloaded),
		logging.Int("skipped", view.Skipped),
		logging.Int("failed", view.Failed),
		logging.Int("download_permits", view.DownloadConcurrency),
	)
	notify(logger, func(nctx context.Context) error {
		return notifier.NotifyFetchCompleted(nctx, notifications.RunSummary{
			PolicyID:   policy,
			Valid:      view.Valid,
			Downloaded: view.Downloaded,
			Skipped:    view.Skipped,
			Failed:     view.Failed,
			Duration:   time.Since(started),
		})
	})
	return nil
}

// notify runs send on a fresh context so a cancelled run can still report.
// Delivery failures are logged and never fail the run.
func notify(logger *slog.Logger, send func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := send(ctx); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "run summary was not delivered"),
		)
	}
}

func isStopped(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func stopNotice(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Time limit reached; cancelling tasks"
	}
	return "Received interrupt; cancelling tasks"
}

// abandonRun reports a run whose context ended before the pipeline started.
func abandonRun(stderr io.Writer, ctxErr error) error {
	fmt.Fprintln(stderr, stopNotice(ctxErr))
	fmt.Fprintln(stderr, "fetching was not completed")
	if errors.Is(ctxErr, context.Canceled) {
		return pipeline.ErrNotCompleted
	}
	return fmt.Errorf("fetching was not completed: %w", ctxErr)
}
