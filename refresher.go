package blogcatalog

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/eringen/blogcatalog/logfields"
)

// Warmer reloads catalogs for a set of locales.
type Warmer interface {
	Warm(locales []string) error
}

// Refresher re-warms the catalog cache on a fixed interval so readers
// rarely pay for a cold load.
type Refresher struct {
	scheduler gocron.Scheduler
	target    Warmer
	locales   []string
	logger    *slog.Logger
	jobID     string
}

// NewRefresher creates a refresher that warms locales every interval.
func NewRefresher(target Warmer, locales []string, interval time.Duration, logger *slog.Logger) (*Refresher, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive, got %s", interval)
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Refresher{
		scheduler: s,
		target:    target,
		locales:   append([]string(nil), locales...),
		logger:    logger.With(logfields.Component("refresher")),
	}
	job, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(r.refresh),
		gocron.WithName("catalog-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create refresh job: %w", err)
	}
	r.jobID = job.ID().String()
	return r, nil
}

// Start begins the schedule. The first run happens one interval from now.
func (r *Refresher) Start() {
	r.logger.Info("Starting catalog refresher", slog.String("job_id", r.jobID))
	r.scheduler.Start()
}

// Stop waits for a running refresh and shuts the scheduler down.
func (r *Refresher) Stop() error {
	r.logger.Info("Stopping catalog refresher")
	return r.scheduler.Shutdown()
}

func (r *Refresher) refresh() {
	start := time.Now()
	if err := r.target.Warm(r.locales); err != nil {
		r.logger.Error("Catalog refresh failed", logfields.Error(err))
		return
	}
	r.logger.Debug("Catalog refreshed",
		logfields.Count(len(r.locales)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
}
