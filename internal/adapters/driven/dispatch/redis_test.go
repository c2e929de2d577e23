package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/figsync/internal/core/domain"
)

// fakeList implements listClient over an in-memory list. BRPop returns
// redis.Nil immediately when the list is empty and cancels ctx once
// drained, so Consume exits after processing what was pushed.
type fakeList struct {
	mu       sync.Mutex
	lists    map[string][]string
	pushErr  error
	popErr   error
	onDrain  func()
	closed   bool
	pingErr  error
	popCalls int
}

func newFakeList() *fakeList {
	return &fakeList{lists: make(map[string][]string)}
}

func (f *fakeList) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return redis.NewIntResult(0, f.pushErr)
	}
	for _, v := range values {
		var s string
		switch tv := v.(type) {
		case []byte:
			s = string(tv)
		case string:
			s = tv
		}
		f.lists[key] = append([]string{s}, f.lists[key]...)
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeList) BRPop(ctx context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.popCalls++
	if f.popErr != nil {
		return redis.NewStringSliceResult(nil, f.popErr)
	}
	key := keys[0]
	list := f.lists[key]
	if len(list) == 0 {
		if f.onDrain != nil {
			f.onDrain()
		}
		return redis.NewStringSliceResult(nil, redis.Nil)
	}
	last := list[len(list)-1]
	f.lists[key] = list[:len(list)-1]
	return redis.NewStringSliceResult([]string{key, last}, nil)
}

func (f *fakeList) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", f.pingErr)
}

func (f *fakeList) Close() error {
	f.closed = true
	return nil
}

func TestRedisQueue_Dispatch(t *testing.T) {
	fake := newFakeList()
	q := newRedisQueue(fake, RedisQueueConfig{})

	req := domain.WorkerRequest{
		FileID: "F1",
		JobID:  "j1",
		Assets: []domain.AssetToSync{{PageName: "Icons", AssetID: "1:2", AssetName: "star", Hash: "h"}},
	}
	require.NoError(t, q.Dispatch(context.Background(), req))

	require.Len(t, fake.lists[DefaultQueueKey], 1)
	var got domain.WorkerRequest
	require.NoError(t, json.Unmarshal([]byte(fake.lists[DefaultQueueKey][0]), &got))
	assert.Equal(t, req, got)
}

func TestRedisQueue_DispatchError(t *testing.T) {
	fake := newFakeList()
	fake.pushErr = errors.New("connection refused")
	q := newRedisQueue(fake, RedisQueueConfig{Key: "custom"})

	err := q.Dispatch(context.Background(), domain.WorkerRequest{JobID: "j1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "j1")
}

func TestRedisQueue_ConsumeInFIFOOrder(t *testing.T) {
	fake := newFakeList()
	q := newRedisQueue(fake, RedisQueueConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake.onDrain = cancel

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Dispatch(ctx, domain.WorkerRequest{JobID: id}))
	}

	runner := newMockRunner()
	require.NoError(t, q.Consume(ctx, runner))
	assert.Equal(t, []string{"a", "b", "c"}, runner.ranIDs())
}

func TestRedisQueue_ConsumeDropsMalformedPayloads(t *testing.T) {
	fake := newFakeList()
	q := newRedisQueue(fake, RedisQueueConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake.onDrain = cancel

	fake.lists[DefaultQueueKey] = []string{`{"jobId":"good"}`, `{"fileId":"no job"}`, `not json`}

	runner := newMockRunner()
	require.NoError(t, q.Consume(ctx, runner))
	assert.Equal(t, []string{"good"}, runner.ranIDs())
}

func TestRedisQueue_ConsumeContinuesAfterJobFailure(t *testing.T) {
	fake := newFakeList()
	q := newRedisQueue(fake, RedisQueueConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake.onDrain = cancel

	require.NoError(t, q.Dispatch(ctx, domain.WorkerRequest{JobID: "a"}))
	require.NoError(t, q.Dispatch(ctx, domain.WorkerRequest{JobID: "b"}))

	runner := newMockRunner()
	runner.err = errors.New("render failed")
	require.NoError(t, q.Consume(ctx, runner))
	assert.Equal(t, []string{"a", "b"}, runner.ranIDs())
}

func TestRedisQueue_ConsumePopError(t *testing.T) {
	fake := newFakeList()
	fake.popErr = errors.New("connection reset")
	q := newRedisQueue(fake, RedisQueueConfig{})

	err := q.Consume(context.Background(), newMockRunner())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestRedisQueue_PingAndClose(t *testing.T) {
	fake := newFakeList()
	q := newRedisQueue(fake, RedisQueueConfig{})

	require.NoError(t, q.Ping(context.Background()))
	fake.pingErr = errors.New("down")
	assert.Error(t, q.Ping(context.Background()))

	require.NoError(t, q.Close())
	assert.True(t, fake.closed)
}

func TestRedisQueueIntegration(t *testing.T) {
	addr := os.Getenv("FIGSYNC_REDIS_ADDR_INTEGRATION")
	if addr == "" {
		t.Skip("set FIGSYNC_REDIS_ADDR_INTEGRATION to run Redis integration tests")
	}

	q := NewRedisQueue(RedisQueueConfig{
		Addr:        addr,
		Key:         "figsync:test:" + strconv.FormatInt(time.Now().UnixNano(), 10),
		PollTimeout: 200 * time.Millisecond,
	})
	defer func() { _ = q.Close() }()
	require.NoError(t, q.Ping(context.Background()))

	require.NoError(t, q.Dispatch(context.Background(), domain.WorkerRequest{JobID: "int-1"}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	runner := newMockRunner()
	go func() {
		<-runner.started
		cancel()
	}()
	require.NoError(t, q.Consume(ctx, runner))
	assert.Equal(t, []string{"int-1"}, runner.ranIDs())
}
