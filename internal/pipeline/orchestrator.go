package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bookfetch/internal/asset"
	"bookfetch/internal/classify"
	"bookfetch/internal/download"
	"bookfetch/internal/logging"
	"bookfetch/internal/services"
)

const component = "pipeline"

// MetadataFetcher retrieves one asset's metadata document.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, id asset.ID) (asset.Metadata, error)
}

// Classifier decides whether a metadata document yields a download.
type Classifier interface {
	Classify(meta asset.Metadata) classify.Decision
}

// Dispatcher runs download jobs under its own concurrency ceiling.
type Dispatcher interface {
	Submit(ctx context.Context, job asset.DownloadJob) error
	Wait() []download.Result
}

// FetchEvent is reported once per consumed fetch outcome.
type FetchEvent struct {
	Asset    asset.ID
	Decision classify.Decision
	Err      error
}

// Options tunes an Orchestrator.
type Options struct {
	FetchConcurrency int
	Replenish        ReplenishPolicy
	// FetchRetries is the number of extra attempts a fetch task makes after a
	// transient failure before reporting it.
	FetchRetries int
	RetryDelay   time.Duration
	Logger       *slog.Logger
	// OnFetch, when set, is called from the orchestrator loop.
	OnFetch func(FetchEvent)
}

// Summary describes a finished run.
type Summary struct {
	Listed        int
	Attempted     int
	Valid         int
	FetchFailures int
	Rejected      map[classify.Reason]int
	Downloads     []download.Result
}

// Failed counts downloads that did not land on disk.
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Downloads {
		if r.Status == download.StatusFailed {
			n++
		}
	}
	return n
}

// Orchestrator owns the pending stack for one run.
type Orchestrator struct {
	fetcher    MetadataFetcher
	classifier Classifier
	dispatcher Dispatcher
	opts       Options
	logger     *slog.Logger
}

type fetchOutcome struct {
	id   asset.ID
	meta asset.Metadata
	err  error
}

// New validates opts and builds an Orchestrator.
func New(fetcher MetadataFetcher, classifier Classifier, dispatcher Dispatcher, opts Options) (*Orchestrator, error) {
	if fetcher == nil || classifier == nil || dispatcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "init", "fetcher, classifier and dispatcher are required", nil)
	}
	if opts.FetchConcurrency < 1 {
		return nil, services.Wrap(services.ErrConfiguration, component, "init",
			fmt.Sprintf("fetch concurrency must be at least 1, got %d", opts.FetchConcurrency), nil)
	}
	if opts.FetchRetries < 0 {
		opts.FetchRetries = 0
	}
	if opts.Replenish == "" {
		opts.Replenish = ReplenishOnMiss
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}
	return &Orchestrator{
		fetcher:    fetcher,
		classifier: classifier,
		dispatcher: dispatcher,
		opts:       opts,
		logger:     logging.NewComponentLogger(opts.Logger, component),
	}, nil
}

// Run processes ids and appends every accepted asset to results. It returns
// after all launched downloads have finished. When ctx ends first, Run stops
// consuming outcomes, waits for the downloads it already started to observe
// the cancellation, and returns ctx's error.
func (o *Orchestrator) Run(ctx context.Context, ids []asset.ID, results *ResultSet) (Summary, error) {
	logger := logging.WithContext(ctx, o.logger)
	summary := Summary{Listed: len(ids), Rejected: map[classify.Reason]int{}}

	stack := newPendingStack(ids)
	outcomes := make(chan fetchOutcome, o.opts.FetchConcurrency)
	inFlight := 0
	launch := func() bool {
		id, ok := stack.pop()
		if !ok {
			return false
		}
		inFlight++
		summary.Attempted++
		go o.fetch(ctx, id, outcomes)
		return true
	}

	for range o.opts.FetchConcurrency {
		if !launch() {
			break
		}
	}
	logger.Debug("fetch window opened",
		logging.Int("in_flight", inFlight),
		logging.Int("pending", stack.len()),
		logging.String("replenish", string(o.opts.Replenish)),
	)

	var runErr error
loop:
	for inFlight > 0 {
		var out fetchOutcome
		select {
		case out = <-outcomes:
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop
		}
		inFlight--

		event := FetchEvent{Asset: out.id, Err: out.err}
		valid := false
		if out.err != nil {
			summary.FetchFailures++
			o.logFetchFailure(logger, out)
		} else {
			event.Decision = o.classifier.Classify(out.meta)
			valid = event.Decision.Valid()
			if valid {
				summary.Valid++
			} else {
				summary.Rejected[event.Decision.Reason]++
			}
			logger.Debug("asset classified",
				logging.String(logging.FieldAssetID, out.id),
				logging.String("reason", string(event.Decision.Reason)),
			)
		}
		if o.opts.OnFetch != nil {
			o.opts.OnFetch(event)
		}

		if valid {
			results.Append(event.Decision.Asset)
			if err := o.dispatcher.Submit(ctx, event.Decision.Job); err != nil {
				runErr = err
				break loop
			}
		}
		if o.opts.Replenish.refill(valid) {
			launch()
		}
	}

	summary.Downloads = o.dispatcher.Wait()
	if runErr != nil {
		return summary, runErr
	}
	logger.Info("fetch loop drained",
		logging.String(logging.FieldEventType, "pipeline_drained"),
		logging.Int("attempted", summary.Attempted),
		logging.Int("valid", summary.Valid),
		logging.Int("fetch_failures", summary.FetchFailures),
		logging.Int("never_attempted", stack.len()),
	)
	return summary, nil
}

func (o *Orchestrator) fetch(ctx context.Context, id asset.ID, outcomes chan<- fetchOutcome) {
	ctx = services.WithAssetID(ctx, id)
	out := fetchOutcome{id: id}
	for attempt := 0; ; attempt++ {
		out.meta, out.err = o.fetcher.FetchMetadata(ctx, id)
		if out.err == nil || attempt >= o.opts.FetchRetries || !retryable(out.err) {
			break
		}
		if !sleepContext(ctx, time.Duration(attempt+1)*o.opts.RetryDelay) {
			out.err = ctx.Err()
			break
		}
	}
	select {
	case outcomes <- out:
	case <-ctx.Done():
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, services.ErrTransient)
}

func (o *Orchestrator) logFetchFailure(logger *slog.Logger, out fetchOutcome) {
	if errors.Is(out.err, context.Canceled) {
		return
	}
	logging.WarnWithContext(logger, "metadata fetch failed; asset dropped", "fetch_failed",
		logging.String(logging.FieldAssetID, out.id),
		logging.Error(out.err),
		logging.String(logging.FieldErrorHint, "check blockfrost status and rate limits"),
		logging.String(logging.FieldImpact, "asset skipped for this run"),
	)
}
