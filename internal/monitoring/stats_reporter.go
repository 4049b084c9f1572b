package monitoring

import (
	"context"
	"database/sql"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/process"
)

// Snapshot is a point-in-time view of process and storage health.
type Snapshot struct {
	TakenAt         time.Time `json:"takenAt"`
	Goroutines      int       `json:"goroutines"`
	RSSBytes        uint64    `json:"rssBytes"`
	CPUPercent      float64   `json:"cpuPercent"`
	OpenConnections int       `json:"openConnections"`
	Accounts        int64     `json:"accounts"`
	Categories      int64     `json:"categories"`
	Expenses        int64     `json:"expenses"`
}

// StatsReporter periodically collects a Snapshot and logs it.
type StatsReporter struct {
	db   *sql.DB
	cron *cron.Cron
	proc *process.Process

	mu     sync.RWMutex
	latest *Snapshot
}

// NewStatsReporter creates a StatsReporter that runs on the given cron schedule.
func NewStatsReporter(db *sql.DB, schedule string) (*StatsReporter, error) {
	sr := &StatsReporter{
		db:   db,
		cron: cron.New(),
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		sr.proc = proc
	} else {
		log.Warn().Err(err).Msg("StatsReporter: Process stats unavailable")
	}

	if _, err := sr.cron.AddFunc(schedule, sr.report); err != nil {
		return nil, err
	}
	return sr, nil
}

// Run starts the schedule and takes one snapshot immediately.
func (sr *StatsReporter) Run() {
	log.Info().Msg("Starting background stats reporter...")
	sr.report()
	sr.cron.Start()
}

// Stop halts the schedule and waits for a running report to finish.
func (sr *StatsReporter) Stop() {
	<-sr.cron.Stop().Done()
	log.Info().Msg("Stopped background stats reporter.")
}

// Latest returns the most recent snapshot, or nil before the first one.
func (sr *StatsReporter) Latest() *Snapshot {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return sr.latest
}

func (sr *StatsReporter) report() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snap, err := sr.Collect(ctx)
	if err != nil {
		log.Error().Err(err).Msg("StatsReporter: Failed to collect stats")
		return
	}

	sr.mu.Lock()
	sr.latest = &snap
	sr.mu.Unlock()

	log.Info().
		Int("goroutines", snap.Goroutines).
		Uint64("rss_bytes", snap.RSSBytes).
		Float64("cpu_percent", snap.CPUPercent).
		Int("open_connections", snap.OpenConnections).
		Int64("accounts", snap.Accounts).
		Int64("expenses", snap.Expenses).
		Msg("Stats snapshot")
}

// Collect gathers a Snapshot now.
func (sr *StatsReporter) Collect(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{
		TakenAt:         time.Now().UTC(),
		Goroutines:      runtime.NumGoroutine(),
		OpenConnections: sr.db.Stats().OpenConnections,
	}

	if sr.proc != nil {
		if mem, err := sr.proc.MemoryInfoWithContext(ctx); err == nil {
			snap.RSSBytes = mem.RSS
		}
		if cpu, err := sr.proc.CPUPercentWithContext(ctx); err == nil {
			snap.CPUPercent = cpu
		}
	}

	counts := []struct {
		table string
		dst   *int64
	}{
		{"accounts", &snap.Accounts},
		{"categories", &snap.Categories},
		{"expenses", &snap.Expenses},
	}
	for _, c := range counts {
		if err := sr.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return Snapshot{}, err
		}
	}
	return snap, nil
}
