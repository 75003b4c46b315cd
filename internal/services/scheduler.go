package services

import (
	"context"
	"time"

	"github.com/Nina932/nyx/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

func NewScheduler() *Scheduler {
	l := cronLogger{}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(l), cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l))),
		timeout: 5 * time.Minute,
	}
}

// Add registers fn under a cron spec such as "@every 10m" or "0 3 * * *".
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			logger.Error().Err(err).Str("job", name).Msg("scheduled job failed")
			return
		}
		logger.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("scheduled job done")
	})
	if err != nil {
		return err
	}
	logger.Infof("[Scheduler] %s scheduled (%s)", name, spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
