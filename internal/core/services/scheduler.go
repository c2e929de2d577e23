package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
	"github.com/custodia-labs/figsync/internal/core/ports/driving"
	"github.com/custodia-labs/figsync/internal/logger"
)

// defaultTick is how often the scheduler looks for due tasks.
const defaultTick = time.Minute

// Scheduler re-runs asset syncs of watched files.
// It is a pure core service with no external control API.
type Scheduler struct {
	watch []domain.WatchConfig
	store driven.SchedulerStore
	sync  driving.SyncService
	tick  time.Duration
	now   func() time.Time

	mu       sync.Mutex
	running  bool
	inflight map[string]bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

var _ driving.Scheduler = (*Scheduler)(nil)

// NewScheduler creates a scheduler for the watched files in watch.
func NewScheduler(
	watch []domain.WatchConfig,
	store driven.SchedulerStore,
	syncService driving.SyncService,
) *Scheduler {
	return &Scheduler{
		watch:    watch,
		store:    store,
		sync:     syncService,
		tick:     defaultTick,
		now:      time.Now,
		inflight: make(map[string]bool),
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Error("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx)
}

// Stop shuts down the loop and waits for running syncs to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseTasks reconciles stored tasks with the watch list. Tasks of
// files no longer watched are disabled, not deleted, so history survives.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	declared := domain.TasksFromWatch(s.watch, s.now())
	wanted := make(map[string]bool, len(declared))
	for i := range declared {
		wanted[declared[i].ID] = true
		if err := s.ensureTask(ctx, declared[i]); err != nil {
			return err
		}
	}

	stored, err := s.store.ListTasks(ctx)
	if err != nil {
		return err
	}
	for i := range stored {
		task := stored[i]
		if wanted[task.ID] || !task.Enabled {
			continue
		}
		task.Enabled = false
		if err := s.store.SaveTask(ctx, &task); err != nil {
			return err
		}
		logger.Info("scheduler: disabled %s, file is no longer watched", task.ID)
	}
	return nil
}

// ensureTask creates a task or updates its watch settings, keeping run state.
func (s *Scheduler) ensureTask(ctx context.Context, declared domain.ScheduledTask) error {
	task, err := s.store.GetTask(ctx, declared.ID)
	if err != nil {
		return err
	}

	if task == nil {
		task = &declared
	} else {
		if task.Interval != declared.Interval {
			task.Interval = declared.Interval
			task.NextRun = s.now().Add(declared.Interval)
		}
		task.FileID = declared.FileID
		task.PageIDs = declared.PageIDs
		task.Enabled = true
	}

	return s.store.SaveTask(ctx, task)
}

func (s *Scheduler) run(ctx context.Context) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks starts every due task that is not already running.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Error("scheduler: failed to list tasks: %v", err)
		return
	}

	now := s.now()
	for i := range tasks {
		if !tasks[i].IsDue(now) {
			continue
		}
		s.mu.Lock()
		busy := s.inflight[tasks[i].ID]
		if !busy {
			s.inflight[tasks[i].ID] = true
		}
		s.mu.Unlock()
		if busy {
			continue
		}
		s.runTask(ctx, tasks[i])
	}
}

// runTask syncs one watched file in the background and records the outcome.
func (s *Scheduler) runTask(ctx context.Context, task domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inflight, task.ID)
			s.mu.Unlock()
		}()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: s.now(),
		}

		res, err := s.sync.Sync(ctx, task.FileID, task.PageIDs)
		if err == nil {
			result.AssetsQueued = len(res.AssetsToUpdate)
			result.JobID = res.JobID
		}

		result.EndedAt = s.now()
		if err != nil {
			result.Error = err.Error()
			task.LastError = err.Error()
			logger.Warn("scheduler: sync of %s failed: %v", task.FileID, err)
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
			task.LastJobID = result.JobID
		}

		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		if saveErr := s.store.SaveTask(ctx, &task); saveErr != nil {
			logger.Error("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			logger.Error("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}
		if pruneErr := s.store.PruneHistory(ctx, domain.HistoryRetention); pruneErr != nil {
			logger.Error("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}
