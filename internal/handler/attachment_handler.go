package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ops-journal/internal/middleware"
	"ops-journal/internal/service/attachment"
)

type AttachmentHandler struct {
	attService attachment.Service
}

func NewAttachmentHandler(attService attachment.Service) *AttachmentHandler {
	return &AttachmentHandler{attService: attService}
}

func (h *AttachmentHandler) Upload(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid record id")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return middleware.BadRequest("File is required")
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	fileReader, err := file.Open()
	if err != nil {
		return middleware.BadRequest("Failed to read file")
	}
	defer fileReader.Close()

	att, err := h.attService.Upload(c.Context(), middleware.GetActor(c), recordID, file.Filename, mimeType, file.Size, fileReader)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(att)
}

func (h *AttachmentHandler) List(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid record id")
	}

	attachments, err := h.attService.List(c.Context(), middleware.GetActor(c), recordID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": attachments,
	})
}

func (h *AttachmentHandler) Download(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid record id")
	}
	attachmentID, err := uuid.Parse(c.Params("attachmentId"))
	if err != nil {
		return middleware.BadRequest("Invalid attachment id")
	}

	url, err := h.attService.DownloadURL(c.Context(), middleware.GetActor(c), recordID, attachmentID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"url": url,
	})
}

func (h *AttachmentHandler) Delete(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid record id")
	}
	attachmentID, err := uuid.Parse(c.Params("attachmentId"))
	if err != nil {
		return middleware.BadRequest("Invalid attachment id")
	}

	if err := h.attService.Delete(c.Context(), middleware.GetActor(c), recordID, attachmentID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
