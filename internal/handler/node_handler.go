package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ops-journal/internal/domain"
	"ops-journal/internal/middleware"
	"ops-journal/internal/service/node"
)

type NodeHandler struct {
	nodeService node.Service
}

func NewNodeHandler(nodeService node.Service) *NodeHandler {
	return &NodeHandler{nodeService: nodeService}
}

func (h *NodeHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateNodeInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if input.Name == "" {
		return middleware.BadRequest("Name is required")
	}

	created, err := h.nodeService.Create(c.Context(), middleware.GetActor(c), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *NodeHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid node id")
	}

	n, err := h.nodeService.GetByID(c.Context(), middleware.GetActor(c), id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(n)
}

func (h *NodeHandler) ListRoots(c *fiber.Ctx) error {
	roots, err := h.nodeService.ListRoots(c.Context(), middleware.GetActor(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": roots,
	})
}

func (h *NodeHandler) Tree(c *fiber.Ctx) error {
	tree, err := h.nodeService.Tree(c.Context(), middleware.GetActor(c))
	if err != nil {
		return err
	}
	if tree == nil {
		tree = []*domain.TreeNode{}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": tree,
	})
}

func (h *NodeHandler) Rename(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid node id")
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	n, err := h.nodeService.Rename(c.Context(), middleware.GetActor(c), id, input.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(n)
}

func (h *NodeHandler) Move(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid node id")
	}

	var input struct {
		NewParentID uuid.UUID `json:"new_parent_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if input.NewParentID == uuid.Nil {
		return middleware.BadRequest("new_parent_id is required")
	}

	n, err := h.nodeService.Move(c.Context(), middleware.GetActor(c), id, input.NewParentID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(n)
}

func (h *NodeHandler) Restrict(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid node id")
	}

	var input struct {
		VisibilityMode domain.VisibilityMode `json:"visibility_mode"`
		AllowedRoles   domain.RoleList       `json:"allowed_roles"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	n, err := h.nodeService.Restrict(c.Context(), middleware.GetActor(c), id, input.VisibilityMode, input.AllowedRoles)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(n)
}

func (h *NodeHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid node id")
	}

	if err := h.nodeService.Delete(c.Context(), middleware.GetActor(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
