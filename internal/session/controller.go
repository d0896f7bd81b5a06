package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jonathan/apply-agent/internal/apply"
	"github.com/jonathan/apply-agent/internal/browser"
	"github.com/jonathan/apply-agent/internal/config"
	"github.com/jonathan/apply-agent/internal/pacing"
	"github.com/jonathan/apply-agent/internal/search"
	"github.com/jonathan/apply-agent/internal/types"
	"go.uber.org/zap"
)

// Results page selectors
const (
	selNoResults    = ".jobs-search-no-results-banner"
	selInlineError  = ".artdeco-inline-feedback--error"
	noResultsBanner = "No matching jobs found"
)

// Messages shown on a job view once the daily quota is used up
var quotaMessages = []string{
	"The application feature is temporarily unavailable",
	"reached the Easy Apply application limit for today",
}

// maxPageErrors ends a search after this many consecutive failed pages
const maxPageErrors = 3

// Halt reasons reported in Stats
const (
	HaltApplicationCap = "application cap reached"
	HaltConnectTarget  = "connection target reached"
)

// Applier submits one application
type Applier interface {
	Apply(ctx context.Context, job *types.Job) (apply.Result, error)
}

// Store is the job persistence the controller reads and writes
type Store interface {
	LoadJobs(ctx context.Context, filter types.JobFilter) ([]types.Job, error)
	UpsertJob(ctx context.Context, job *types.Job, applied, connected bool) error
	LoadDistinctUnconnectedRecruiters(ctx context.Context) ([]string, error)
	MarkRecruiterConnected(ctx context.Context, recruiter string) error
}

// ConnectFunc sends a connection request to a recruiter profile
type ConnectFunc func(ctx context.Context, url string) (bool, error)

// Options configures a Controller
type Options struct {
	Filters *types.SearchFilterSet
	// MaxApplications caps successful applications per run; 0 means uncapped
	MaxApplications int
	// ConnectTarget stops the post-apply reconnect once successes exceed it; 0 means no target
	ConnectTarget int
	// Rand shuffles the search order; nil keeps configuration order
	Rand *rand.Rand
	// Connect overrides ConnectRecruiter
	Connect ConnectFunc
}

// Stats counts the outcomes of one mode
type Stats struct {
	Successes  int
	Failures   int
	Skipped    int
	HaltReason string
}

// Report collects the stats of every mode a run executed
type Report struct {
	Mode         string
	Applications Stats
	Connections  Stats
}

// Controller sequences searches, jobs and recruiters for one run
type Controller struct {
	page    browser.Page
	applier Applier
	store   Store
	pacer   pacing.Pacer
	log     *zap.Logger
	opts    Options

	// seen holds the links handled by the current Apply
	seen map[string]struct{}
}

// New creates a Controller
func New(page browser.Page, applier Applier, store Store, pacer pacing.Pacer, log *zap.Logger, opts Options) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if pacer == nil {
		pacer = pacing.None
	}
	if opts.Filters == nil {
		opts.Filters = &types.SearchFilterSet{}
	}
	c := &Controller{page: page, applier: applier, store: store, pacer: pacer, log: log, opts: opts}
	if c.opts.Connect == nil {
		c.opts.Connect = func(ctx context.Context, url string) (bool, error) {
			return ConnectRecruiter(ctx, c.page, c.pacer, c.log, url)
		}
	}
	return c
}

// Run executes mode. Apply mode is followed by a reconnect pass bounded by ConnectTarget.
func (c *Controller) Run(ctx context.Context, mode string) (Report, error) {
	report := Report{Mode: mode}
	var err error

	switch mode {
	case config.ModeApply:
		report.Applications, err = c.Apply(ctx)
		if err != nil {
			return report, err
		}
		report.Connections, err = c.Reconnect(ctx, c.opts.ConnectTarget)
	case config.ModeReapply:
		report.Applications, err = c.Reapply(ctx)
	case config.ModeReconnect:
		report.Connections, err = c.Reconnect(ctx, 0)
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	return report, err
}

// Apply pages through every search and applies to the quick-apply listings.
// Per-job and per-page failures are logged and counted; only cancellation is returned.
func (c *Controller) Apply(ctx context.Context) (Stats, error) {
	var stats Stats
	c.seen = make(map[string]struct{})
	fragment := search.BuildFilterQuery(c.opts.Filters)
	searches := search.BuildSearches(c.opts.Filters, c.opts.Rand)
	c.log.Info("Starting applications", zap.Int("searches", len(searches)))

	for _, s := range searches {
		log := c.log.With(zap.String("position", s.Position), zap.String("location", s.Location))
		log.Info("Starting search")

		pageErrors := 0
		for page := 0; ; page++ {
			if c.capReached(stats) {
				stats.HaltReason = HaltApplicationCap
				log.Info("Application cap reached", zap.Int("successes", stats.Successes))
				return stats, nil
			}

			more, err := c.applyPage(ctx, log, search.SearchURL(fragment, s, page), &stats)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}
			if errors.Is(err, ErrQuotaExceeded) {
				stats.HaltReason = err.Error()
				log.Info("Daily quota exceeded",
					zap.Int("successes", stats.Successes),
					zap.Int("failures", stats.Failures),
				)
				return stats, nil
			}
			if err != nil {
				pageErrors++
				log.Error("Results page failed", zap.Int("page", page), zap.Error(err))
				if pageErrors >= maxPageErrors {
					break
				}
				continue
			}
			pageErrors = 0
			if c.capReached(stats) {
				continue
			}
			if !more {
				log.Info("No jobs left",
					zap.Int("successes", stats.Successes),
					zap.Int("failures", stats.Failures),
				)
				break
			}

			if err := c.pacer.Pause(ctx, 5*time.Second, 10*time.Second); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

// applyPage applies to the jobs on one results page. It reports whether the
// search may have more pages.
func (c *Controller) applyPage(ctx context.Context, log *zap.Logger, url string, stats *Stats) (bool, error) {
	log.Info("Opening results page", zap.String("url", url))
	if err := c.page.Navigate(ctx, url); err != nil {
		return false, fmt.Errorf("failed to open results page: %w", err)
	}
	if err := c.pacer.Pause(ctx, 3*time.Second, 5*time.Second); err != nil {
		return false, err
	}

	if banner, err := c.page.Find(ctx, selNoResults); err == nil {
		if strings.Contains(browser.TextOf(ctx, banner), noResultsBanner) {
			return false, nil
		}
	} else if !errors.Is(err, browser.ErrNotFound) {
		return false, err
	}

	html, err := c.page.HTML(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read results page: %w", err)
	}
	jobs, err := ParseTiles(html, url)
	if err != nil {
		return false, err
	}
	if len(jobs) == 0 {
		return false, nil
	}

	var quick []types.Job
	for _, job := range jobs {
		if job.IsQuickApply() && job.Link != "" {
			quick = append(quick, job)
		}
	}
	log.Info("Found jobs", zap.Int("listed", len(jobs)), zap.Int("quick_apply", len(quick)))

	for i := range quick {
		job := &quick[i]
		if _, ok := c.seen[job.Link]; ok {
			stats.Skipped++
			log.Debug("Job already handled in this run, skipping", zap.String("link", job.Link))
			continue
		}
		if c.opts.Filters.IsBlacklisted(job.Company) {
			stats.Skipped++
			log.Info("Company is blacklisted, skipping", zap.String("company", job.Company))
			continue
		}
		if c.capReached(*stats) {
			return false, nil
		}
		c.seen[job.Link] = struct{}{}
		if err := c.applyJob(ctx, job, stats); err != nil {
			return false, err
		}
	}

	log.Info("Page completed", zap.Int("successes", stats.Successes), zap.Int("failures", stats.Failures))
	return true, nil
}

// applyJob opens job, applies and records the outcome. Only quota exhaustion and
// cancellation are returned.
func (c *Controller) applyJob(ctx context.Context, job *types.Job, stats *Stats) error {
	log := c.log.With(zap.String("title", job.Title), zap.String("company", job.Company), zap.String("link", job.Link))

	if err := c.page.Navigate(ctx, job.Link); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stats.Failures++
		log.Warn("Failed to open job", zap.Error(err))
		return nil
	}
	if err := c.pacer.Pause(ctx, 3*time.Second, 5*time.Second); err != nil {
		return err
	}

	exceeded, err := c.quotaExceeded(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		stats.Failures++
		log.Warn("Failed to check application quota", zap.Error(err))
		return nil
	}
	if exceeded {
		return ErrQuotaExceeded
	}

	log.Info("Applying")
	_, err = c.applier.Apply(ctx, job)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	applied := err == nil
	if applied {
		stats.Successes++
		log.Info("Applied", zap.Int("successes", stats.Successes), zap.Int("failures", stats.Failures))
	} else {
		stats.Failures++
		logFailure(log, err, stats)
	}

	if err := c.store.UpsertJob(ctx, job, applied, !job.HasRecruiter()); err != nil {
		log.Error("Failed to save job", zap.Error(err))
	}
	return nil
}

func (c *Controller) quotaExceeded(ctx context.Context) (bool, error) {
	alerts, err := c.page.FindAll(ctx, selInlineError)
	if err != nil {
		return false, err
	}
	for _, alert := range alerts {
		text := browser.TextOf(ctx, alert)
		for _, msg := range quotaMessages {
			if strings.Contains(text, msg) {
				return true, nil
			}
		}
	}
	return false, nil
}

// Reapply retries every job whose last attempt failed
func (c *Controller) Reapply(ctx context.Context) (Stats, error) {
	var stats Stats

	jobs, err := c.store.LoadJobs(ctx, types.JobsNotApplied)
	if err != nil {
		return stats, fmt.Errorf("failed to load jobs to reapply: %w", err)
	}
	c.log.Info("Reapplying", zap.Int("jobs", len(jobs)))

	for i := range jobs {
		job := &jobs[i]
		log := c.log.With(zap.String("title", job.Title), zap.String("company", job.Company), zap.String("link", job.Link))

		if c.opts.Filters.IsBlacklisted(job.Company) {
			stats.Skipped++
			log.Info("Company is blacklisted, skipping")
			continue
		}

		_, err := c.applier.Apply(ctx, job)
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if err != nil {
			stats.Failures++
			logFailure(log, err, &stats)
			continue
		}

		stats.Successes++
		log.Info("Reapplied")
		if err := c.store.UpsertJob(ctx, job, true, job.Connected); err != nil {
			log.Error("Failed to save job", zap.Error(err))
		}
	}
	return stats, nil
}

// Reconnect sends connection requests to recruiters of applied jobs. A positive
// target stops the pass once successes exceed it.
func (c *Controller) Reconnect(ctx context.Context, target int) (Stats, error) {
	var stats Stats

	recruiters, err := c.store.LoadDistinctUnconnectedRecruiters(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to load recruiters: %w", err)
	}
	c.log.Info("Reconnecting", zap.Int("recruiters", len(recruiters)), zap.Int("target", target))

	for _, recruiter := range recruiters {
		if target > 0 && stats.Successes > target {
			stats.HaltReason = HaltConnectTarget
			c.log.Info("Connection target reached", zap.Int("successes", stats.Successes))
			break
		}
		log := c.log.With(zap.String("recruiter", recruiter))

		ok, err := c.opts.Connect(ctx, recruiter)
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if errors.Is(err, ErrInviteLimit) {
			stats.Failures++
			stats.HaltReason = err.Error()
			log.Info("Weekly invitation limit reached")
			break
		}
		if err != nil || !ok {
			stats.Failures++
			log.Warn("Failed to connect",
				zap.Error(err),
				zap.Int("successes", stats.Successes),
				zap.Int("failures", stats.Failures),
				zap.Int("remaining", len(recruiters)-stats.Successes-stats.Failures),
			)
			continue
		}

		stats.Successes++
		log.Info("Connected",
			zap.Int("successes", stats.Successes),
			zap.Int("failures", stats.Failures),
			zap.Int("remaining", len(recruiters)-stats.Successes-stats.Failures),
		)
		if err := c.store.MarkRecruiterConnected(ctx, recruiter); err != nil {
			log.Error("Failed to save connection", zap.Error(err))
		}
	}
	return stats, nil
}

func (c *Controller) capReached(stats Stats) bool {
	return c.opts.MaxApplications > 0 && stats.Successes >= c.opts.MaxApplications
}

func logFailure(log *zap.Logger, err error, stats *Stats) {
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("successes", stats.Successes),
		zap.Int("failures", stats.Failures),
	}
	var applyErr *apply.ApplyError
	if errors.As(err, &applyErr) {
		fields = append(fields, zap.ByteString("stack", applyErr.Stack()))
	}
	log.Warn("Application failed", fields...)
}
