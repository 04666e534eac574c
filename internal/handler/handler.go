package handler

import "ops-journal/internal/service"

type Handlers struct {
	Auth         *AuthHandler
	Node         *NodeHandler
	Record       *RecordHandler
	Feed         *FeedHandler
	Subscription *SubscriptionHandler
	Attachment   *AttachmentHandler
	Audit        *AuditHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(services.Auth),
		Node:         NewNodeHandler(services.Node),
		Record:       NewRecordHandler(services.Record),
		Feed:         NewFeedHandler(services.Record),
		Subscription: NewSubscriptionHandler(services.Subscription),
		Attachment:   NewAttachmentHandler(services.Attachment),
		Audit:        NewAuditHandler(services.Audit),
	}
}
