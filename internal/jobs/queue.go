package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/weatherinsight/internal/weather"
)

const (
	warmMaxRetry = 3
	warmTimeout  = time.Minute
)

// Queue enqueues warm tasks on demand
type Queue struct {
	client *asynq.Client
	logger zerolog.Logger
}

func NewQueue(opt asynq.RedisClientOpt, logger zerolog.Logger) *Queue {
	return &Queue{client: asynq.NewClient(opt), logger: logger}
}

// EnqueueWarm schedules a warm for city and returns the task ID
func (q *Queue) EnqueueWarm(ctx context.Context, city string, units weather.Units) (string, error) {
	task, err := NewWarmTask(city, units)
	if err != nil {
		return "", err
	}
	info, err := q.client.EnqueueContext(ctx, task, warmOptions(asynq.TaskID(uuid.NewString()))...)
	if err != nil {
		q.logger.Error().Err(err).Str("city", city).Msg("[asynq] enqueue failed")
		return "", fmt.Errorf("enqueue warm %q: %w", city, err)
	}
	q.logger.Info().Str("task_id", info.ID).Str("queue", info.Queue).Str("city", city).Msg("[asynq] enqueued warm task")
	return info.ID, nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func warmOptions(extra ...asynq.Option) []asynq.Option {
	return append([]asynq.Option{
		asynq.Queue(QueueWarm),
		asynq.MaxRetry(warmMaxRetry),
		asynq.Timeout(warmTimeout),
	}, extra...)
}

// NewServer returns a task server and mux with the warm handler registered.
// Callers Start and Shutdown the server.
func NewServer(opt asynq.RedisClientOpt, w *Warmer, logger zerolog.Logger) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 4,
		Queues: map[string]int{
			QueueWarm: 5,
		},
		Logger:   asynqLogger{logger},
		LogLevel: asynq.WarnLevel,
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWarmCity, w.HandleWarm)
	return srv, mux
}

// NewScheduler registers a periodic warm task for every city on schedule, a
// cron expression or "@every <duration>".
func NewScheduler(opt asynq.RedisClientOpt, schedule string, cities []string, units weather.Units, logger zerolog.Logger) (*asynq.Scheduler, error) {
	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   asynqLogger{logger},
		LogLevel: asynq.WarnLevel,
	})
	for _, city := range cities {
		task, err := NewWarmTask(city, units)
		if err != nil {
			return nil, err
		}
		// one pending warm per city at a time
		id, err := s.Register(schedule, task, warmOptions(asynq.Unique(warmTimeout))...)
		if err != nil {
			return nil, fmt.Errorf("schedule warm %q on %q: %w", city, schedule, err)
		}
		logger.Info().Str("entry_id", id).Str("city", city).Str("schedule", schedule).Msg("[asynq] scheduled warm task")
	}
	return s, nil
}

// asynqLogger routes asynq's internal logging through zerolog
type asynqLogger struct {
	l zerolog.Logger
}

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...interface{}) { a.l.Fatal().Msg(fmt.Sprint(args...)) }
