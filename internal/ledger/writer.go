package ledger

import (
	"context"
	"encoding/json"

	"github.com/Nina932/nyx/internal/config"
	"github.com/Nina932/nyx/internal/models"
	"github.com/Nina932/nyx/pkg/logger"
	"github.com/hibiken/asynq"
)

const TaskTypeRecordUsage = "usage:record"

// Writer persists usage records, either inline or through a queue.
type Writer interface {
	Write(ctx context.Context, rec *models.UsageRecord) error
	IsAsync() bool
	Close() error
}

// NewWriter returns the asynq-backed writer when Redis is enabled and
// reachable, the inline writer otherwise.
func NewWriter(cfg *config.RedisConfig, l *Ledger) Writer {
	if !cfg.Enabled {
		logger.Infof("[Ledger] Sync writer initialized (Redis disabled)")
		return NewSyncWriter(l)
	}
	q, err := NewAsyncWriter(cfg)
	if err != nil {
		logger.Warnf("[Ledger] Redis unavailable, falling back to sync writes: %v", err)
		return NewSyncWriter(l)
	}
	logger.Infof("[Ledger] Async writer initialized with Redis at %s", cfg.Addr)
	return q
}

// SyncWriter writes in the caller's goroutine.
type SyncWriter struct {
	ledger *Ledger
}

func NewSyncWriter(l *Ledger) *SyncWriter {
	return &SyncWriter{ledger: l}
}

func (w *SyncWriter) Write(ctx context.Context, rec *models.UsageRecord) error {
	return w.ledger.Record(ctx, rec)
}

func (w *SyncWriter) IsAsync() bool { return false }
func (w *SyncWriter) Close() error  { return nil }

type AsyncWriter struct {
	client *asynq.Client
}

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewAsyncWriter(cfg *config.RedisConfig) (*AsyncWriter, error) {
	opt := redisOpt(cfg)
	client := asynq.NewClient(opt)

	inspector := asynq.NewInspector(opt)
	defer inspector.Close()
	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}
	return &AsyncWriter{client: client}, nil
}

func (w *AsyncWriter) Write(ctx context.Context, rec *models.UsageRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	info, err := w.client.EnqueueContext(ctx, asynq.NewTask(TaskTypeRecordUsage, payload),
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}
	logger.Debug().Str("task_id", info.ID).Str("user_id", rec.UserID).Msg("usage record enqueued")
	return nil
}

func (w *AsyncWriter) IsAsync() bool { return true }

func (w *AsyncWriter) Close() error {
	return w.client.Close()
}
