package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"ops-journal/internal/config"
	"ops-journal/internal/pkg/ratelimit"
	"ops-journal/internal/repository"
	"ops-journal/internal/service/attachment"
	"ops-journal/internal/service/audit"
	"ops-journal/internal/service/auth"
	"ops-journal/internal/service/email"
	"ops-journal/internal/service/node"
	"ops-journal/internal/service/notifier"
	"ops-journal/internal/service/outbox"
	"ops-journal/internal/service/record"
	"ops-journal/internal/service/subscription"
	"ops-journal/internal/service/visibility"
)

type Services struct {
	Auth         auth.Service
	Node         node.Service
	Record       record.Service
	Subscription subscription.Service
	Attachment   attachment.Service
	Audit        audit.Service
	Notifier     notifier.Service
	Visibility   visibility.Service
	Mailer       email.Mailer
	Worker       *outbox.Worker
}

func NewServices(repos *repository.Repositories, redisClient *redis.Client, minioClient *minio.Client, cfg *config.Config) *Services {
	mailer := email.NewResendMailer(cfg)
	auditSvc := audit.NewService(repos.AuditEvent)
	visSvc := visibility.NewService(repos.Node)
	notifierSvc := notifier.NewService(repos.Record, repos.Node, repos.Subscription, repos.Outbox)

	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewRedisLimiter(redisClient, cfg.LoginRateLimit, cfg.LoginRateWindow)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	}

	return &Services{
		Auth:         auth.NewService(repos.User, repos.Session, auditSvc, limiter, cfg),
		Node:         node.NewService(repos.Node, visSvc, auditSvc, redisClient),
		Record:       record.NewService(repos.Record, repos.Revision, repos.Node, visSvc, notifierSvc, auditSvc),
		Subscription: subscription.NewService(repos.Subscription, repos.Node, visSvc, auditSvc),
		Attachment:   attachment.NewService(repos.Attachment, repos.Record, repos.Node, visSvc, auditSvc, minioClient, cfg.MinIOBucket),
		Audit:        auditSvc,
		Notifier:     notifierSvc,
		Visibility:   visSvc,
		Mailer:       mailer,
		Worker:       outbox.NewWorker(repos.Outbox, mailer, auditSvc, cfg.WorkerInterval, cfg.WorkerBatchSize, cfg.BaseURL),
	}
}
