package domain

import (
	"strings"
	"time"
)

// TaskIDPrefix prefixes the id of every scheduled asset sync task.
const TaskIDPrefix = "asset-sync:"

// HistoryRetention is how many results are kept per task.
const HistoryRetention = 100

// ScheduledTask is a recurring sync of one watched file.
type ScheduledTask struct {
	// ID is TaskIDPrefix followed by the file id.
	ID string

	// FileID is the design file to sync.
	FileID string

	// PageIDs are the page node ids passed to Sync.
	PageIDs []string

	// Interval defines how often the task should run.
	Interval time.Duration

	LastRun     time.Time
	NextRun     time.Time
	LastError   string
	LastSuccess time.Time

	// LastJobID is the job dispatched by the most recent run, if any.
	LastJobID string

	Enabled bool
}

// IsDue reports whether the task should run at now.
func (t ScheduledTask) IsDue(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// TaskResult is the outcome of one scheduled run.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// AssetsQueued is how many stale assets the run handed to a worker.
	AssetsQueued int
	JobID        string
}

// TaskIDForFile returns the scheduled task id of a watched file.
func TaskIDForFile(fileID string) string {
	return TaskIDPrefix + fileID
}

// FileIDFromTaskID is the inverse of TaskIDForFile.
func FileIDFromTaskID(taskID string) (string, bool) {
	fileID, ok := strings.CutPrefix(taskID, TaskIDPrefix)
	return fileID, ok && fileID != ""
}

// TasksFromWatch builds the scheduled tasks declared in configuration.
func TasksFromWatch(watch []WatchConfig, now time.Time) []ScheduledTask {
	tasks := make([]ScheduledTask, 0, len(watch))
	for _, w := range watch {
		interval, err := ParseDuration(w.Interval)
		if err != nil || interval == 0 {
			continue
		}
		tasks = append(tasks, ScheduledTask{
			ID:       TaskIDForFile(w.FileID),
			FileID:   w.FileID,
			PageIDs:  append([]string(nil), w.PageIDs...),
			Interval: interval,
			NextRun:  now,
			Enabled:  true,
		})
	}
	return tasks
}
