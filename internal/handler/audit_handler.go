package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ops-journal/internal/domain"
	"ops-journal/internal/middleware"
	"ops-journal/internal/service/audit"
)

type AuditHandler struct {
	auditService audit.Service
}

func NewAuditHandler(auditService audit.Service) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) List(c *fiber.Ctx) error {
	var filter domain.AuditFilter

	if v := c.Query("kind"); v != "" {
		kind := domain.AuditKind(v)
		filter.Kind = &kind
	}
	if v := c.Query("actor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return middleware.BadRequest("Invalid actor_id")
		}
		filter.ActorID = &id
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return middleware.BadRequest("Invalid from timestamp, expected RFC3339")
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return middleware.BadRequest("Invalid to timestamp, expected RFC3339")
		}
		filter.To = &t
	}

	var params domain.PaginationParams
	if err := c.QueryParser(&params); err != nil {
		return middleware.BadRequest("Invalid pagination parameters")
	}
	params.Validate()

	resp, err := h.auditService.List(c.Context(), middleware.GetActor(c), filter, params)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}
