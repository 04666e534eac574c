package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ops-journal/internal/domain"
	"ops-journal/internal/middleware"
	"ops-journal/internal/service/subscription"
)

type SubscriptionHandler struct {
	subService subscription.Service
}

func NewSubscriptionHandler(subService subscription.Service) *SubscriptionHandler {
	return &SubscriptionHandler{subService: subService}
}

func (h *SubscriptionHandler) Upsert(c *fiber.Ctx) error {
	var input domain.UpsertSubscriptionInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if input.NodeID == uuid.Nil {
		return middleware.BadRequest("node_id is required")
	}

	sub, err := h.subService.Upsert(c.Context(), middleware.GetActor(c), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

func (h *SubscriptionHandler) ListOwn(c *fiber.Ctx) error {
	subs, err := h.subService.ListOwn(c.Context(), middleware.GetActor(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": subs,
	})
}

func (h *SubscriptionHandler) Remove(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid subscription id")
	}

	if err := h.subService.Remove(c.Context(), middleware.GetActor(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
