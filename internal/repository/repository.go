package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	User         UserRepository
	Node         NodeRepository
	Record       RecordRepository
	Revision     RevisionRepository
	Subscription SubscriptionRepository
	Outbox       OutboxRepository
	Attachment   AttachmentRepository
	AuditEvent   AuditEventRepository
	Session      SessionRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Node:         NewNodeRepository(db),
		Record:       NewRecordRepository(db),
		Revision:     NewRevisionRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Outbox:       NewOutboxRepository(db),
		Attachment:   NewAttachmentRepository(db),
		AuditEvent:   NewAuditEventRepository(db),
		Session:      NewSessionRepository(db),
	}
}
