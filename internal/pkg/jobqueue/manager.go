package jobqueue

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mkravets/ArtPeak/internal/pkg/engagement"
	"github.com/mkravets/ArtPeak/internal/pkg/env"
	"github.com/mkravets/ArtPeak/internal/pkg/lifecycle"
	metrics "github.com/mkravets/ArtPeak/internal/pkg/metrics/counter"
	"github.com/mkravets/ArtPeak/internal/pkg/viewsync"
)

const (
	// MaintenanceInterval paces the purge of expired deletion snapshots and
	// the trim of stale view registrations.
	MaintenanceInterval = 1 * time.Hour
	// ReminderInterval paces the sweep that re-issues notification tickets
	// for owners with outstanding unseen reactions.
	ReminderInterval = 12 * time.Hour
	// CounterFlushInterval paces the Redis-to-DB impression counter drain.
	CounterFlushInterval = 5 * time.Second
)

// Manager owns the job queue and the periodic sweeps. Each sweep runs and
// fails independently; one subsystem's error never stops the others.
type Manager struct {
	queue             *Queue
	lifecycle         *lifecycle.Manager
	aggregator        *engagement.Aggregator
	broadcaster       *viewsync.Broadcaster
	maintenanceTicker *time.Ticker
	reminderTicker    *time.Ticker
	flushTicker       *time.Ticker
	stopCh            chan struct{}
	wg                sync.WaitGroup
	mu                sync.Mutex
	running           bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// Initialize builds the global manager (singleton). Worker count comes from
// JOB_WORKER_COUNT.
func Initialize(lm *lifecycle.Manager, agg *engagement.Aggregator, bc *viewsync.Broadcaster, render viewsync.Renderer) *Manager {
	managerOnce.Do(func() {
		workers := 3
		if v, err := strconv.Atoi(env.GetEnv("JOB_WORKER_COUNT", "3")); err == nil {
			workers = v
		}
		globalManager = &Manager{
			queue:       NewQueue(workers, agg, bc, render),
			lifecycle:   lm,
			aggregator:  agg,
			broadcaster: bc,
			stopCh:      make(chan struct{}),
		}
	})
	return globalManager
}

// GetManager returns the global job queue manager. Initialize must run first.
func GetManager() *Manager {
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background sweeps
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	m.maintenanceTicker = time.NewTicker(MaintenanceInterval)
	m.wg.Add(1)
	go m.maintenanceWorker()

	m.reminderTicker = time.NewTicker(ReminderInterval)
	m.wg.Add(1)
	go m.reminderWorker()

	m.flushTicker = time.NewTicker(CounterFlushInterval)
	m.wg.Add(1)
	go m.counterFlushWorker()

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background sweeps
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.maintenanceTicker != nil {
		m.maintenanceTicker.Stop()
	}
	if m.reminderTicker != nil {
		m.reminderTicker.Stop()
	}
	if m.flushTicker != nil {
		m.flushTicker.Stop()
	}

	// stopCh stays non-nil while the workers drain; they re-read the field
	// on every loop turn. Start replaces it on the next cycle.
	close(m.stopCh)
	m.running = false

	m.wg.Wait()
	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// maintenanceWorker runs the hourly snapshot purge and stale-view trim.
func (m *Manager) maintenanceWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Maintenance worker stopping")
			return
		case <-m.maintenanceTicker.C:
			m.runMaintenanceOnce()
		}
	}
}

func (m *Manager) runMaintenanceOnce() {
	if purged, err := m.lifecycle.PurgeExpired(); err != nil {
		log.Errorf("[JobQueue Manager] Snapshot purge error: %v", err)
	} else if purged > 0 {
		log.Infof("[JobQueue Manager] Purged %d expired deletion snapshots", purged)
	}

	if trimmed, err := m.broadcaster.TrimStale(); err != nil {
		log.Errorf("[JobQueue Manager] View trim error: %v", err)
	} else if trimmed > 0 {
		log.Infof("[JobQueue Manager] Trimmed %d stale view registrations", trimmed)
	}
}

// reminderWorker re-issues notification tickets twice a day.
func (m *Manager) reminderWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Reminder worker stopping")
			return
		case <-m.reminderTicker.C:
			if err := m.aggregator.RemindAll(context.Background()); err != nil {
				log.Errorf("[JobQueue Manager] Reminder sweep error: %v", err)
			}
		}
	}
}

// counterFlushWorker periodically flushes impression counters from Redis to DB
func (m *Manager) counterFlushWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Counter flush worker stopping")
			return
		case <-m.flushTicker.C:
			if err := metrics.FlushAll(); err != nil {
				log.Errorf("[JobQueue Manager] Counter flush error: %v", err)
			}
		}
	}
}

// RunMaintenanceOnce exposes a manual trigger for one maintenance sweep.
func (m *Manager) RunMaintenanceOnce() {
	m.runMaintenanceOnce()
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
