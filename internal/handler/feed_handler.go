package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ops-journal/internal/domain"
	"ops-journal/internal/middleware"
	"ops-journal/internal/service/record"
)

type FeedHandler struct {
	recordService record.Service
}

func NewFeedHandler(recordService record.Service) *FeedHandler {
	return &FeedHandler{recordService: recordService}
}

// List returns the cross-node change feed, filtered by query parameters.
func (h *FeedHandler) List(c *fiber.Ctx) error {
	filter, err := parseFeedFilter(c)
	if err != nil {
		return err
	}

	var params domain.PaginationParams
	if err := c.QueryParser(&params); err != nil {
		return middleware.BadRequest("Invalid pagination parameters")
	}
	params.Validate()

	resp, err := h.recordService.Feed(c.Context(), middleware.GetActor(c), filter, params)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func parseFeedFilter(c *fiber.Ctx) (domain.FeedFilter, error) {
	var filter domain.FeedFilter

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, middleware.BadRequest("Invalid from timestamp, expected RFC3339")
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, middleware.BadRequest("Invalid to timestamp, expected RFC3339")
		}
		filter.To = &t
	}
	if v := c.Query("node_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, middleware.BadRequest("Invalid node_id")
		}
		filter.NodeID = &id
		filter.IncludeDescendants = c.QueryBool("include_descendants", true)
	}
	if v := c.Query("created_by"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, middleware.BadRequest("Invalid created_by")
		}
		filter.CreatedBy = &id
	}
	if v := c.Query("change_type"); v != "" {
		ct := domain.ChangeType(v)
		if !ct.IsValid() {
			return filter, middleware.BadRequest("Invalid change_type")
		}
		filter.ChangeType = &ct
	}
	if v := c.Query("impact"); v != "" {
		impact := domain.Impact(v)
		if !impact.IsValid() {
			return filter, middleware.BadRequest("Invalid impact")
		}
		filter.Impact = &impact
	}
	if v := c.Query("status"); v != "" {
		status := domain.RecordStatus(v)
		if !status.IsValid() {
			return filter, middleware.BadRequest("Invalid status")
		}
		filter.Status = &status
	}

	return filter, nil
}
