package main

import (
	"context"

	"catalog-backend/internal/shared"
	"catalog-backend/pkg/container"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// asynqServer wraps asynq.Server so main can shut it down uniformly.
type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(c *container.Container, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     c.Config.Redis.Host,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		},
		asynq.Config{
			// Imports are heavy; a low concurrency keeps database load
			// predictable.
			Concurrency: 4,
			Queues: map[string]int{
				shared.QueueDefault: 10,
				shared.QueueLow:     5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Str("type", task.Type()).Err(err).Msg("Task failed")
			}),
		},
	)

	go func() {
		log.Info().Msg("Worker starting")
		if err := srv.Run(mux); err != nil {
			log.Fatal().Err(err).Msg("Worker failed")
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown waits for in-flight tasks to finish.
func (s *asynqServer) Shutdown() {
	s.Server.Shutdown()
}
