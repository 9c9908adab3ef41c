package usecase

import (
	"context"
	"sync"
	"sync/atomic"

	"krisha-parser-service/internal/contextkeys"
	"krisha-parser-service/internal/core/domain"
	"krisha-parser-service/internal/core/port"
	usecases_port "krisha-parser-service/internal/core/port/usecases"

	"github.com/google/uuid"
)

// RunGuard пропускает к RunParsing только один запуск за раз,
// откуда бы он ни пришел (расписание, старт процесса или HTTP).
type RunGuard struct {
	runUC   usecases_port.RunParsingPort
	mu      sync.Mutex
	running atomic.Bool
	wg      sync.WaitGroup
}

func NewRunGuard(runUC usecases_port.RunParsingPort) *RunGuard {
	return &RunGuard{runUC: runUC}
}

func (g *RunGuard) RunOnce(ctx context.Context) error {
	if !g.mu.TryLock() {
		return domain.ErrRunInProgress
	}
	defer g.mu.Unlock()

	return g.execute(ctx, uuid.New())
}

func (g *RunGuard) StartRun(ctx context.Context) (uuid.UUID, error) {
	if !g.mu.TryLock() {
		return uuid.Nil, domain.ErrRunInProgress
	}

	runID := uuid.New()
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.mu.Unlock()

		if err := g.execute(ctx, runID); err != nil {
			contextkeys.LoggerFromContext(ctx).Error("Background run failed", err, port.Fields{
				"component": "RunGuard",
				"run_id":    runID.String(),
			})
		}
	}()

	return runID, nil
}

func (g *RunGuard) IsRunning() bool {
	return g.running.Load()
}

// Wait ждет окончания фоновых запусков
func (g *RunGuard) Wait() {
	g.wg.Wait()
}

func (g *RunGuard) execute(ctx context.Context, runID uuid.UUID) error {
	g.running.Store(true)
	defer g.running.Store(false)

	return g.runUC.Execute(ctx, runID)
}
