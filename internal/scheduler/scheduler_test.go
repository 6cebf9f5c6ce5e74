package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/promotion"
)

type blockingRunner struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	once    sync.Once
	sawCtx  chan error
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{
		started: make(chan struct{}),
		release: make(chan struct{}),
		sawCtx:  make(chan error, 1),
	}
}

func (r *blockingRunner) RunSweep(ctx context.Context) (promotion.SweepReport, bool, error) {
	r.calls.Add(1)
	r.once.Do(func() { close(r.started) })
	select {
	case <-r.release:
		return promotion.SweepReport{Scanned: 1}, true, nil
	case <-ctx.Done():
		r.sawCtx <- ctx.Err()
		return promotion.SweepReport{}, true, ctx.Err()
	}
}

func waitStarted(t *testing.T, r *blockingRunner) {
	t.Helper()
	select {
	case <-r.started:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep pass did not start")
	}
}

func TestNew_RejectsBadSpec(t *testing.T) {
	_, err := New(newBlockingRunner(), "every now and then", logger.NewNop())
	assert.Error(t, err)
}

func TestStart_RunsImmediatelyAndStopWaits(t *testing.T) {
	r := newBlockingRunner()
	s, err := New(r, "@every 1h", logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Start())
	waitStarted(t, r)

	stopped := make(chan error, 1)
	go func() { stopped <- s.Stop(context.Background()) }()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a pass was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(r.release)
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the pass finished")
	}
	assert.EqualValues(t, 1, r.calls.Load())
}

func TestStop_DeadlineCancelsPass(t *testing.T) {
	r := newBlockingRunner()
	s, err := New(r, "@every 1h", logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Start())
	waitStarted(t, r)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)

	select {
	case err := <-r.sawCtx:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight pass was not cancelled")
	}
}

func TestJob_SkipsOverlappingPass(t *testing.T) {
	r := newBlockingRunner()
	s, err := New(r, "@every 1h", logger.NewNop())
	require.NoError(t, err)

	go s.job.Run()
	waitStarted(t, r)

	// The second run is skipped rather than queued while the first is active.
	s.job.Run()
	assert.EqualValues(t, 1, r.calls.Load())

	close(r.release)
	require.NoError(t, s.Stop(context.Background()))
}
