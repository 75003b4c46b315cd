package ledger

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Nina932/nyx/internal/config"
	"github.com/Nina932/nyx/internal/models"
	"github.com/Nina932/nyx/pkg/logger"
	"github.com/hibiken/asynq"
)

// Worker drains queued usage records into the ledger.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	ledger  *Ledger
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// NewWorker returns nil when Redis is disabled.
func NewWorker(cfg *config.RedisConfig, l *Ledger) *Worker {
	if !cfg.Enabled {
		return nil
	}

	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error().Err(err).Str("task", task.Type()).Msg("usage task failed")
			}),
		},
	)

	return &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		ledger: l,
	}
}

func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	w.mux.HandleFunc(TaskTypeRecordUsage, w.handleRecordUsage)
	w.running = true
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		logger.Infof("[Worker] Starting usage worker...")
		if err := w.server.Run(w.mux); err != nil {
			logger.Errorf("[Worker] Server error: %v", err)
		}
	}()
	return nil
}

func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	logger.Infof("[Worker] Shutting down...")
	w.server.Shutdown()
	w.running = false
	w.wg.Wait()
}

func (w *Worker) handleRecordUsage(ctx context.Context, t *asynq.Task) error {
	var rec models.UsageRecord
	if err := json.Unmarshal(t.Payload(), &rec); err != nil {
		// malformed payloads will never succeed
		return asynq.SkipRetry
	}
	// let the database assign the id
	rec.ID = 0
	return w.ledger.Record(ctx, &rec)
}
