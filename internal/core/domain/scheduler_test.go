package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskIDForFile(t *testing.T) {
	id := TaskIDForFile("F1")
	assert.Equal(t, "asset-sync:F1", id)

	fileID, ok := FileIDFromTaskID(id)
	assert.True(t, ok)
	assert.Equal(t, "F1", fileID)

	_, ok = FileIDFromTaskID("oauth-refresh")
	assert.False(t, ok)

	_, ok = FileIDFromTaskID(TaskIDPrefix)
	assert.False(t, ok)
}

func TestScheduledTask_IsDue(t *testing.T) {
	now := time.Now()

	assert.True(t, ScheduledTask{Enabled: true, NextRun: now}.IsDue(now))
	assert.True(t, ScheduledTask{Enabled: true}.IsDue(now))
	assert.True(t, ScheduledTask{Enabled: true, NextRun: now.Add(-time.Minute)}.IsDue(now))
	assert.False(t, ScheduledTask{Enabled: true, NextRun: now.Add(time.Minute)}.IsDue(now))
	assert.False(t, ScheduledTask{Enabled: false, NextRun: now}.IsDue(now))
}

func TestTasksFromWatch(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	watch := []WatchConfig{
		{FileID: "F1", PageIDs: []string{"0:1", "0:2"}, Interval: "1h"},
		{FileID: "F2", PageIDs: []string{"0:1"}, Interval: "bogus"},
	}

	tasks := TasksFromWatch(watch, now)

	require.Len(t, tasks, 1)
	assert.Equal(t, "asset-sync:F1", tasks[0].ID)
	assert.Equal(t, "F1", tasks[0].FileID)
	assert.Equal(t, []string{"0:1", "0:2"}, tasks[0].PageIDs)
	assert.Equal(t, time.Hour, tasks[0].Interval)
	assert.Equal(t, now, tasks[0].NextRun)
	assert.True(t, tasks[0].Enabled)
}
