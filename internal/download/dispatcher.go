package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/semaphore"

	"bookfetch/internal/asset"
	"bookfetch/internal/fileutil"
	"bookfetch/internal/logging"
	"bookfetch/internal/services"
)

const component = "download"

// Status is the terminal state of one job.
type Status string

const (
	StatusDownloaded Status = "downloaded"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// Result describes how one job ended.
type Result struct {
	Job      asset.DownloadJob
	Path     string
	Status   Status
	Bytes    int64
	Duration time.Duration
	Err      error
}

// Dispatcher runs download jobs with at most Permits transfers in flight.
type Dispatcher struct {
	dir        string
	permits    int64
	sem        *semaphore.Weighted
	httpClient *http.Client
	logger     *slog.Logger
	observer   func(Result)

	wg      sync.WaitGroup
	mu      sync.Mutex
	results []Result
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// WithTimeout sets the per-transfer timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithLogger sets the logger used for per-job diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logging.NewComponentLogger(logger, component)
	}
}

// WithObserver registers fn to be called once per finished job. fn runs on
// the job's goroutine and must be safe for concurrent use.
func WithObserver(fn func(Result)) Option {
	return func(d *Dispatcher) {
		d.observer = fn
	}
}

// New creates a dispatcher writing into dir with the given number of permits.
func New(dir string, permits int, opts ...Option) (*Dispatcher, error) {
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "init", "output directory required", nil)
	}
	if permits < 1 {
		return nil, services.Wrap(services.ErrConfiguration, component, "init",
			fmt.Sprintf("download concurrency must be at least 1, got %d", permits), nil)
	}
	d := &Dispatcher{
		dir:        dir,
		permits:    int64(permits),
		sem:        semaphore.NewWeighted(int64(permits)),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     logging.NewComponentLogger(nil, component),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Permits returns the concurrency ceiling.
func (d *Dispatcher) Permits() int {
	return int(d.permits)
}

// Submit waits for a free permit and starts job in the background. It
// returns an error only when ctx ends before a permit became available; in
// that case the job is not started and not recorded.
func (d *Dispatcher) Submit(ctx context.Context, job asset.DownloadJob) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%s: acquire permit for %s: %w", component, job.Asset, err)
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.sem.Release(1)
		d.record(d.run(ctx, job))
	}()
	return nil
}

// Wait blocks until every submitted job has finished and returns their
// results in completion order.
func (d *Dispatcher) Wait() []Result {
	d.wg.Wait()
	return d.Results()
}

// Results returns the results recorded so far.
func (d *Dispatcher) Results() []Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Result(nil), d.results...)
}

func (d *Dispatcher) record(result Result) {
	d.mu.Lock()
	d.results = append(d.results, result)
	d.mu.Unlock()
	if d.observer != nil {
		d.observer(result)
	}
}

func (d *Dispatcher) run(ctx context.Context, job asset.DownloadJob) Result {
	start := time.Now()
	ctx = services.WithAssetID(ctx, job.Asset)
	logger := logging.WithContext(ctx, d.logger)
	result := Result{Job: job, Path: filepath.Join(d.dir, job.Filename)}

	exists, err := fileutil.Exists(result.Path)
	if err != nil {
		return d.fail(logger, result, start, fmt.Errorf("stat destination: %w", err))
	}
	if exists {
		result.Status = StatusSkipped
		result.Duration = time.Since(start)
		logger.Debug("destination exists; download skipped", logging.String("path", result.Path))
		return result
	}

	written, err := d.transfer(ctx, job)
	result.Bytes = written
	if err != nil {
		return d.fail(logger, result, start, err)
	}
	result.Status = StatusDownloaded
	result.Duration = time.Since(start)
	logger.Info("image downloaded",
		logging.String(logging.FieldEventType, "download_complete"),
		logging.String("path", result.Path),
		logging.String("size", humanize.Bytes(uint64(written))),
		logging.Duration("duration", result.Duration),
	)
	return result
}

func (d *Dispatcher) transfer(ctx context.Context, job asset.DownloadJob) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	return fileutil.WriteAtomicVerified(d.dir, job.Filename, resp.Body, resp.ContentLength, 0o644)
}

func (d *Dispatcher) fail(logger *slog.Logger, result Result, start time.Time, err error) Result {
	result.Status = StatusFailed
	result.Err = err
	result.Duration = time.Since(start)
	if errors.Is(err, context.Canceled) {
		logger.Debug("download cancelled", logging.String("url", result.Job.URL))
		return result
	}
	logging.WarnWithContext(logger, "download failed", "download_failed",
		logging.String("url", result.Job.URL),
		logging.String("path", result.Path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check gateway availability and output directory permissions"),
		logging.String(logging.FieldImpact, "image missing from output directory"),
	)
	return result
}
