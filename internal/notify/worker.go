package notify

import (
	"context"
	"log"

	"educhat/backend/internal/config"

	"github.com/hibiken/asynq"
)

// Worker consumes the notify queue and runs the dispatcher's delivery
// handler.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewWorker(redisOpt asynq.RedisClientOpt, concurrency int, d *Dispatcher) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{config.NotifyQueue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Printf("ERROR: notify task %s failed: %v", task.Type(), err)
		}),
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskDeliverNotification, d.HandleDeliverTask)
	return &Worker{server: srv, mux: mux}
}

// Run starts the worker and blocks until Shutdown.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}
