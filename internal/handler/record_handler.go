package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ops-journal/internal/domain"
	"ops-journal/internal/middleware"
	"ops-journal/internal/service/record"
)

type RecordHandler struct {
	recordService record.Service
}

func NewRecordHandler(recordService record.Service) *RecordHandler {
	return &RecordHandler{recordService: recordService}
}

func (h *RecordHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateRecordInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if input.NodeID == uuid.Nil {
		return middleware.BadRequest("node_id is required")
	}
	if input.Title == "" || input.Description == "" {
		return middleware.BadRequest("Title and description are required")
	}

	created, err := h.recordService.Create(c.Context(), middleware.GetActor(c), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *RecordHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid record id")
	}

	r, err := h.recordService.GetByID(c.Context(), middleware.GetActor(c), id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(r)
}

func (h *RecordHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid record id")
	}

	var input domain.UpdateRecordInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	r, err := h.recordService.Update(c.Context(), middleware.GetActor(c), id, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(r)
}

func (h *RecordHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid record id")
	}

	if err := h.recordService.Delete(c.Context(), middleware.GetActor(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *RecordHandler) ListRevisions(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid record id")
	}

	revisions, err := h.recordService.ListRevisions(c.Context(), middleware.GetActor(c), id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": revisions,
	})
}

func (h *RecordHandler) GetRevision(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid record id")
	}
	revisionID, err := uuid.Parse(c.Params("revisionId"))
	if err != nil {
		return middleware.BadRequest("Invalid revision id")
	}

	rev, err := h.recordService.GetRevision(c.Context(), middleware.GetActor(c), recordID, revisionID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(rev)
}
