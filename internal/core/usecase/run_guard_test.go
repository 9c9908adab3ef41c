package usecase_test

import (
	"context"
	"testing"
	"time"

	"krisha-parser-service/internal/core/domain"
	"krisha-parser-service/internal/core/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingRun держит запуск, пока тест не закроет release
type blockingRun struct {
	started chan uuid.UUID
	release chan struct{}
}

func (b *blockingRun) Execute(_ context.Context, runID uuid.UUID) error {
	b.started <- runID
	<-b.release
	return nil
}

func TestRunGuard(t *testing.T) {
	t.Parallel()

	run := &blockingRun{started: make(chan uuid.UUID, 1), release: make(chan struct{})}
	guard := usecase.NewRunGuard(run)

	runID, err := guard.StartRun(context.Background())
	require.NoError(t, err)

	select {
	case started := <-run.started:
		assert.Equal(t, runID, started)
	case <-time.After(time.Second):
		t.Fatal("run did not start")
	}
	assert.True(t, guard.IsRunning())

	_, err = guard.StartRun(context.Background())
	assert.ErrorIs(t, err, domain.ErrRunInProgress)
	assert.ErrorIs(t, guard.RunOnce(context.Background()), domain.ErrRunInProgress)

	close(run.release)
	guard.Wait()
	assert.False(t, guard.IsRunning())

	// После завершения новый запуск снова разрешен
	go func() { <-run.started }()
	assert.NoError(t, guard.RunOnce(context.Background()))
}
