package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/services"
)

// TaskType defines the type of a background task.
const (
	TypeInboxPoll = "inbox:poll"
)

const inboxPollTimeout = 10 * time.Minute

// redisOpt converts an existing go-redis client into asynq connection options.
func redisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisOpt(rdb))
}

// NewInboxPollTask builds a poll task. Polls are not retried: the next
// scheduled run picks up whatever this one left unseen.
func NewInboxPollTask() *asynq.Task {
	return asynq.NewTask(TypeInboxPoll, nil, asynq.MaxRetry(0), asynq.Timeout(inboxPollTimeout))
}

// EnqueueInboxPoll asks a running worker to check the inbox.
func EnqueueInboxPoll(ctx context.Context, client *asynq.Client) (string, error) {
	info, err := client.EnqueueContext(ctx, NewInboxPollTask())
	if err != nil {
		return "", fmt.Errorf("failed to enqueue inbox poll: %w", err)
	}
	return info.ID, nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	ingestion services.IIngestionService
	logger    *zap.Logger
}

func NewTaskProcessor(ingestion services.IIngestionService, logger *zap.Logger) *TaskProcessor {
	return &TaskProcessor{ingestion: ingestion, logger: logger}
}

// HandleInboxPollTask runs one inbox ingestion pass. A poll already running
// elsewhere is not an error.
func (p *TaskProcessor) HandleInboxPollTask(ctx context.Context, t *asynq.Task) error {
	report, err := p.ingestion.CheckInbox(ctx)
	switch {
	case errors.Is(err, services.ErrPollInProgress):
		p.logger.Info("inbox poll skipped, another poll holds the lock")
		return nil
	case errors.Is(err, services.ErrInboxNotConfigured):
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	case err != nil:
		return fmt.Errorf("inbox poll failed: %w", err)
	}

	p.logger.Info("inbox poll finished",
		zap.Int("created", report.Created),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return nil
}

// Worker bundles the asynq server and the optional scheduler that enqueues
// periodic inbox polls.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	logger    *zap.Logger
}

// NewWorker configures the task server. A zero pollInterval disables the
// schedule; tasks enqueued by NewClient are still processed.
func NewWorker(rdb *redis.Client, processor *TaskProcessor, pollInterval time.Duration, logger *zap.Logger) (*Worker, error) {
	opt := redisOpt(rdb)
	sugar := logger.Sugar()

	srv := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: sugar,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed", zap.String("type", task.Type()), zap.Error(err))
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeInboxPoll, processor.HandleInboxPollTask)

	w := &Worker{server: srv, mux: mux, logger: logger}

	if pollInterval > 0 {
		w.scheduler = asynq.NewScheduler(opt, &asynq.SchedulerOpts{Logger: sugar})
		spec := "@every " + pollInterval.String()
		if _, err := w.scheduler.Register(spec, NewInboxPollTask()); err != nil {
			return nil, fmt.Errorf("failed to schedule inbox poll: %w", err)
		}
		logger.Info("inbox poll scheduled", zap.Duration("interval", pollInterval))
	}
	return w, nil
}

// Start begins processing tasks (and enqueuing scheduled ones) in the background.
func (w *Worker) Start() error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("could not start task server: %w", err)
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			w.server.Shutdown()
			return fmt.Errorf("could not start scheduler: %w", err)
		}
	}
	w.logger.Info("background worker started")
	return nil
}

// Shutdown stops the scheduler first so no new polls are enqueued, then
// waits for in-flight tasks.
func (w *Worker) Shutdown() {
	if w.scheduler != nil {
		w.scheduler.Shutdown()
	}
	w.server.Shutdown()
	w.logger.Info("background worker stopped")
}

// RunTicker polls the inbox in-process every interval until ctx is done.
// It is used when no Redis is configured for the task queue.
func RunTicker(ctx context.Context, processor *TaskProcessor, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := processor.HandleInboxPollTask(ctx, NewInboxPollTask()); err != nil {
				processor.logger.Error("scheduled inbox poll failed", zap.Error(err))
			}
		}
	}
}
