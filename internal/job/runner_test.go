package job

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Submit(t *testing.T) {
	t.Parallel()

	store := NewMockDescriptorStore()
	statuses := NewMockStatusStore()
	logger := newTestLogger()

	config := DefaultRunnerConfig()
	config.QueueSize = 2

	runner := NewRunner(store, statuses, NewRegistry(), config, logger)

	t.Run("successful submission", func(t *testing.T) {
		j := CreateMockJobWithPayload("test job")
		j.JobMeta = map[string]string{"prompt": "a red fox"}

		err := runner.Submit(context.Background(), j)
		require.NoError(t, err)

		// Descriptor persisted before the job became visible.
		desc, ok := store.GetDescriptor(j.ID())
		require.True(t, ok)
		assert.Equal(t, StatusQueued, desc.Status)

		// Status record created in queued state with metadata.
		record, err := statuses.Get(context.Background(), j.ID())
		require.NoError(t, err)
		assert.Equal(t, StatusQueued, record.Status)
		assert.Equal(t, "a red fox", record.Meta["prompt"])
	})

	t.Run("queue full", func(t *testing.T) {
		smallStore := NewMockDescriptorStore()
		smallConfig := DefaultRunnerConfig()
		smallConfig.QueueSize = 1

		smallRunner := NewRunner(smallStore, NewMockStatusStore(), NewRegistry(), smallConfig, logger)

		require.NoError(t, smallRunner.Submit(context.Background(), CreateMockJobWithPayload("job 1")))

		err := smallRunner.Submit(context.Background(), CreateMockJobWithPayload("job 2"))
		// The sentinel must survive wrapping so the HTTP layer can map
		// saturation to a back-pressure response.
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("store error", func(t *testing.T) {
		errorStore := NewMockDescriptorStore()
		errorStore.SaveFn = func(ctx context.Context, j Job) error {
			return errors.New("mock store error")
		}

		errorRunner := NewRunner(errorStore, NewMockStatusStore(), NewRegistry(), config, logger)

		err := errorRunner.Submit(context.Background(), CreateMockJobWithPayload("error job"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save job")
	})
}

func TestRunner_Start_and_Processing(t *testing.T) {
	t.Parallel()

	store := NewMockDescriptorStore()
	statuses := NewMockStatusStore()

	config := DefaultRunnerConfig()
	config.WorkerCount = 2
	config.QueueSize = 10

	runner := NewRunner(store, statuses, NewRegistry(), config, newTestLogger())

	completedChan := make(chan uuid.UUID, 5)
	jobIDs := make([]uuid.UUID, 0, 3)

	for i := 0; i < 3; i++ {
		j := CreateMockJobWithPayload("test job")
		jobIDs = append(jobIDs, j.ID())
		j.JobResult = json.RawMessage(`{"result_urls":["https://example.test/img.png"]}`)

		id := j.ID()
		j.ExecuteFn = func(ctx context.Context) error {
			completedChan <- id
			return nil
		}

		require.NoError(t, runner.Submit(context.Background(), j))
	}

	require.NoError(t, runner.Start())

	completed := make(map[uuid.UUID]bool)
	timeout := time.After(2 * time.Second)

waitLoop:
	for len(completed) < 3 {
		select {
		case id := <-completedChan:
			completed[id] = true
		case <-timeout:
			break waitLoop
		}
	}

	// Allow the post-execution status writes to land.
	time.Sleep(100 * time.Millisecond)

	runner.Stop()

	for _, id := range jobIDs {
		assert.True(t, completed[id], "Job %s should have been completed", id)

		desc, ok := store.GetDescriptor(id)
		require.True(t, ok)
		assert.Equal(t, StatusFinished, desc.Status)

		record, err := statuses.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, StatusFinished, record.Status)
		assert.JSONEq(t, `{"result_urls":["https://example.test/img.png"]}`, string(record.Result))
		assert.True(t, record.Terminal())
	}
}

func TestRunner_JobFailure(t *testing.T) {
	t.Parallel()

	store := NewMockDescriptorStore()
	statuses := NewMockStatusStore()

	runner := NewRunner(store, statuses, NewRegistry(), DefaultRunnerConfig(), newTestLogger())

	errorChan := make(chan struct{}, 1)
	runner.SetErrorHandler(func(j Job, err error) {
		errorChan <- struct{}{}
	})

	j := CreateMockJobWithPayload("failing job")
	j.ExecuteFn = func(ctx context.Context) error {
		return errors.New("intentional test failure")
	}

	require.NoError(t, runner.Submit(context.Background(), j))
	require.NoError(t, runner.Start())

	select {
	case <-errorChan:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for error handler to be called")
	}

	time.Sleep(100 * time.Millisecond)
	runner.Stop()

	desc, ok := store.GetDescriptor(j.ID())
	require.True(t, ok)
	assert.Equal(t, StatusFailed, desc.Status)
	assert.Equal(t, "intentional test failure", desc.ErrorMessage)

	// The poller-visible record carries the error, never a result.
	record, err := statuses.Get(context.Background(), j.ID())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, record.Status)
	assert.Equal(t, "intentional test failure", record.Error)
	assert.Nil(t, record.Result)
}

func TestRunner_Recover(t *testing.T) {
	t.Parallel()

	store := NewMockDescriptorStore()
	statuses := NewMockStatusStore()
	logger := newTestLogger()

	completedChan := make(chan uuid.UUID, 5)

	// The registry rebuilds descriptors into executable mock jobs.
	registry := NewRegistry()
	registry.Register("mock_job", func(desc *Descriptor) (Job, error) {
		j := NewMockJob(desc.ID, desc.Type, desc.Payload)
		id := desc.ID
		j.ExecuteFn = func(ctx context.Context) error {
			completedChan <- id
			return nil
		}
		return j, nil
	})

	// Simulate the previous process dying with one queued and one
	// running job in the store.
	queuedJob := CreateMockJobWithPayload("queued job")
	runningJob := CreateMockJobWithPayload("running job")

	require.NoError(t, store.SaveJob(context.Background(), queuedJob))
	require.NoError(t, store.SaveJob(context.Background(), runningJob))
	require.NoError(t, store.UpdateJobStatus(context.Background(), runningJob.ID(), StatusRunning, ""))

	// The interrupted job's last visible status was running.
	require.NoError(t, statuses.SetQueued(context.Background(), runningJob.ID(), nil))
	require.NoError(t, statuses.SetRunning(context.Background(), runningJob.ID()))

	runner := NewRunner(store, statuses, registry, DefaultRunnerConfig(), logger)

	require.NoError(t, runner.Start())

	expected := map[uuid.UUID]bool{
		queuedJob.ID():  false,
		runningJob.ID(): false,
	}

	timeout := time.After(2 * time.Second)
waitLoop:
	for {
		allDone := true
		for _, done := range expected {
			if !done {
				allDone = false
				break
			}
		}
		if allDone {
			break waitLoop
		}

		select {
		case id := <-completedChan:
			expected[id] = true
		case <-timeout:
			break waitLoop
		}
	}

	time.Sleep(100 * time.Millisecond)
	runner.Stop()

	assert.True(t, expected[queuedJob.ID()], "Queued job should have been re-executed")
	assert.True(t, expected[runningJob.ID()], "Interrupted job should have been re-executed")

	// Re-execution ends in finished; the poller never saw a revert to queued.
	record, err := statuses.Get(context.Background(), runningJob.ID())
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, record.Status)
}

func TestRunner_Start_RecoversLeftoverJobExactlyOnce(t *testing.T) {
	t.Parallel()

	store := NewMockDescriptorStore()
	statuses := NewMockStatusStore()

	var executions atomic.Int32
	var inFlight atomic.Int32
	var maxInFlight atomic.Int32

	registry := NewRegistry()
	registry.Register("mock_job", func(desc *Descriptor) (Job, error) {
		j := NewMockJob(desc.ID, desc.Type, desc.Payload)
		j.ExecuteFn = func(ctx context.Context) error {
			cur := inFlight.Add(1)
			for {
				m := maxInFlight.Load()
				if cur <= m || maxInFlight.CompareAndSwap(m, cur) {
					break
				}
			}
			time.Sleep(50 * time.Millisecond)
			executions.Add(1)
			inFlight.Add(-1)
			return nil
		}
		return j, nil
	})

	leftover := CreateMockJobWithPayload("leftover job")
	require.NoError(t, store.SaveJob(context.Background(), leftover))
	require.NoError(t, statuses.SetQueued(context.Background(), leftover.ID(), nil))

	config := DefaultRunnerConfig()
	config.WorkerCount = 2

	runner := NewRunner(store, statuses, registry, config, newTestLogger())

	// The startup path calls Start once; that is the whole recovery cycle.
	require.NoError(t, runner.Start())
	time.Sleep(300 * time.Millisecond)
	runner.Stop()

	assert.EqualValues(t, 1, executions.Load(),
		"a leftover descriptor must be re-executed exactly once per restart")
	assert.LessOrEqual(t, maxInFlight.Load(), int32(1),
		"no two workers may process the same job id concurrently")
}

func TestRunner_Recover_UnknownType(t *testing.T) {
	t.Parallel()

	store := NewMockDescriptorStore()
	statuses := NewMockStatusStore()

	orphan := CreateMockJobWithPayload("orphan job")
	orphan.JobType = "retired_job_type"
	require.NoError(t, store.SaveJob(context.Background(), orphan))
	require.NoError(t, statuses.SetQueued(context.Background(), orphan.ID(), nil))

	// Empty registry: nothing knows how to rebuild the descriptor.
	runner := NewRunner(store, statuses, NewRegistry(), DefaultRunnerConfig(), newTestLogger())

	require.NoError(t, runner.Start())
	time.Sleep(100 * time.Millisecond)
	runner.Stop()

	desc, ok := store.GetDescriptor(orphan.ID())
	require.True(t, ok)
	assert.Equal(t, StatusFailed, desc.Status)
	assert.Contains(t, desc.ErrorMessage, "unknown job type")

	record, err := statuses.Get(context.Background(), orphan.ID())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, record.Status)
}
