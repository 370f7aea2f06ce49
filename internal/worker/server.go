package worker

import (
	"time"

	"desk-wallet/internal/worker/tasks"
	"desk-wallet/pkg/logger"

	"github.com/hibiken/asynq"
)

// Server 封装 Asynq Server (Worker)
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewServer retryWait 为锁未确认时两次查询之间的间隔
func NewServer(opt asynq.RedisClientOpt, concurrency int, retryWait time.Duration, partial *tasks.PartialHandler) *Server {
	srv := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: concurrency,
			// 队列优先级
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
			},
			RetryDelayFunc: func(n int, err error, t *asynq.Task) time.Duration {
				return retryWait
			},
			Logger: logger.NewAsynqLogger(),
		},
	)

	mux := asynq.NewServeMux()

	// 注册任务处理器
	mux.Handle(tasks.TypePartialAnnounce, partial)

	return &Server{
		server: srv,
		mux:    mux,
	}
}

// Start 非阻塞启动
func (s *Server) Start() error {
	logger.Info("Worker Server starting...")
	return s.server.Start(s.mux)
}

// Stop 停止 Worker
func (s *Server) Stop() {
	s.server.Stop()
	s.server.Shutdown()
}
