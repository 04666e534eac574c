package node

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ops-journal/internal/domain"
	"ops-journal/internal/repository"
	"ops-journal/internal/service/audit"
	"ops-journal/internal/service/visibility"
)

const treeCacheKey = "journal:tree"

type Service interface {
	Create(ctx context.Context, actor domain.Actor, input domain.CreateNodeInput) (*domain.Node, error)
	GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Node, error)
	ListRoots(ctx context.Context, actor domain.Actor) ([]domain.Node, error)
	Tree(ctx context.Context, actor domain.Actor) ([]*domain.TreeNode, error)
	Rename(ctx context.Context, actor domain.Actor, id uuid.UUID, newName string) (*domain.Node, error)
	Move(ctx context.Context, actor domain.Actor, id, newParentID uuid.UUID) (*domain.Node, error)
	Restrict(ctx context.Context, actor domain.Actor, id uuid.UUID, mode domain.VisibilityMode, allowed domain.RoleList) (*domain.Node, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

type service struct {
	nodeRepo repository.NodeRepository
	visSvc   visibility.Service
	auditSvc audit.Service
	redis    *redis.Client
}

func NewService(nodeRepo repository.NodeRepository, visSvc visibility.Service, auditSvc audit.Service, redis *redis.Client) Service {
	return &service{
		nodeRepo: nodeRepo,
		visSvc:   visSvc,
		auditSvc: auditSvc,
		redis:    redis,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, input domain.CreateNodeInput) (*domain.Node, error) {
	if !actor.Role.CanEdit() {
		return nil, domain.NewForbiddenError("editor or admin required to create nodes")
	}

	nodeType := input.NodeType
	if nodeType == "" {
		nodeType = domain.NodeTypeOther
	}
	if !nodeType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown node type %q", nodeType))
	}

	mode := input.VisibilityMode
	if mode == "" {
		mode = domain.VisibilityPublicInternal
	}
	if !mode.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown visibility mode %q", mode))
	}
	allowed, err := validRoleList(input.AllowedRoles)
	if err != nil {
		return nil, err
	}

	var parentPath string
	pathIDs := domain.UUIDArray{}
	if input.ParentID != nil {
		parent, err := s.nodeRepo.GetByID(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, domain.NewNotFoundError("parent node not found")
		}
		visible, err := s.visSvc.NodeVisible(ctx, actor.Role, parent)
		if err != nil {
			return nil, err
		}
		if !visible {
			return nil, domain.NewForbiddenError("parent node is not visible to you")
		}
		parentPath = parent.Path
		pathIDs = append(append(domain.UUIDArray{}, parent.PathIDs...), parent.ID)
	}

	slug := Slugify(input.Name)
	if input.ParentID == nil {
		existing, err := s.nodeRepo.FindRootBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.NewConflictError(fmt.Sprintf("root node with slug %q already exists", slug))
		}
	}

	node := &domain.Node{
		ID:             uuid.New(),
		ParentID:       input.ParentID,
		Name:           input.Name,
		Slug:           slug,
		NodeType:       nodeType,
		Path:           BuildPath(parentPath, slug),
		PathIDs:        pathIDs,
		VisibilityMode: mode,
		AllowedRoles:   allowed,
		CreatedBy:      actor.ID,
	}

	if err := s.nodeRepo.Create(ctx, node); err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, domain.AuditNodeCreate, &actor.ID, map[string]any{
		"node_id": node.ID.String(),
		"name":    node.Name,
	})
	s.invalidateTreeCache(ctx)

	return node, nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Node, error) {
	node, err := s.nodeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, domain.NewNotFoundError("node not found")
	}

	visible, err := s.visSvc.NodeVisible(ctx, actor.Role, node)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, domain.NewForbiddenError("node is not visible to you")
	}
	return node, nil
}

func (s *service) ListRoots(ctx context.Context, actor domain.Actor) ([]domain.Node, error) {
	roots, err := s.nodeRepo.ListRoots(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]domain.Node, 0, len(roots))
	for i := range roots {
		if visibility.Resolve(actor.Role, &roots[i], nil).Visible {
			visible = append(visible, roots[i])
		}
	}
	return visible, nil
}

// Tree returns the whole hierarchy the actor may see, nested. Visibility is
// resolved in memory against the full node list, so each node's ancestors
// are looked up by id rather than re-queried.
func (s *service) Tree(ctx context.Context, actor domain.Actor) ([]*domain.TreeNode, error) {
	all, err := s.listAllCached(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*domain.Node, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}

	visible := make(map[uuid.UUID]bool, len(all))
	for i := range all {
		n := &all[i]
		ancestors := make([]domain.Node, 0, len(n.PathIDs))
		for _, aid := range n.PathIDs {
			if a, ok := byID[aid]; ok {
				ancestors = append(ancestors, *a)
			}
		}
		visible[n.ID] = visibility.Resolve(actor.Role, n, ancestors).Visible
	}

	nodes := make(map[uuid.UUID]*domain.TreeNode, len(all))
	for i := range all {
		if visible[all[i].ID] {
			nodes[all[i].ID] = &domain.TreeNode{Node: all[i], Children: []*domain.TreeNode{}}
		}
	}

	var roots []*domain.TreeNode
	for i := range all {
		tn, ok := nodes[all[i].ID]
		if !ok {
			continue
		}
		if all[i].ParentID == nil {
			roots = append(roots, tn)
			continue
		}
		if parent, ok := nodes[*all[i].ParentID]; ok {
			parent.Children = append(parent.Children, tn)
		} else {
			// parent hidden or deleted: surface the subtree at top level
			roots = append(roots, tn)
		}
	}
	return roots, nil
}

func (s *service) Rename(ctx context.Context, actor domain.Actor, id uuid.UUID, newName string) (*domain.Node, error) {
	if !actor.Role.CanEdit() {
		return nil, domain.NewForbiddenError("editor or admin required to rename nodes")
	}
	if newName == "" {
		return nil, domain.NewValidationError("name must not be empty")
	}

	node, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	newSlug := Slugify(newName)
	var parentPath string
	if node.ParentID == nil {
		if newSlug != node.Slug {
			existing, err := s.nodeRepo.FindRootBySlug(ctx, newSlug)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != node.ID {
				return nil, domain.NewConflictError(fmt.Sprintf("root node with slug %q already exists", newSlug))
			}
		}
	} else {
		parent, err := s.nodeRepo.GetByID(ctx, *node.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, domain.NewNotFoundError("parent node not found")
		}
		parentPath = parent.Path
	}

	node.Name = newName
	node.Slug = newSlug
	node.Path = BuildPath(parentPath, newSlug)

	// Only the path prefix changes for descendants; path_ids hold ids,
	// not slugs, so they are untouched by a rename.
	updates, err := s.subtreeUpdates(ctx, node, false)
	if err != nil {
		return nil, err
	}

	if err := s.nodeRepo.ApplyTreeUpdate(ctx, node, updates); err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, domain.AuditNodeRename, &actor.ID, map[string]any{
		"node_id": node.ID.String(),
		"name":    newName,
	})
	s.invalidateTreeCache(ctx)

	return node, nil
}

func (s *service) Move(ctx context.Context, actor domain.Actor, id, newParentID uuid.UUID) (*domain.Node, error) {
	if !actor.Role.IsAdmin() {
		return nil, domain.NewForbiddenError("admin required to move nodes")
	}
	if id == newParentID {
		return nil, domain.NewValidationError("a node cannot be its own parent")
	}

	node, err := s.nodeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, domain.NewNotFoundError("node not found")
	}

	newParent, err := s.nodeRepo.GetByID(ctx, newParentID)
	if err != nil {
		return nil, err
	}
	if newParent == nil {
		return nil, domain.NewNotFoundError("new parent node not found")
	}
	if newParent.PathIDs.Contains(id) {
		return nil, domain.NewValidationError("cannot move a node under one of its own descendants")
	}

	oldParentID := node.ParentID
	node.ParentID = &newParentID
	node.PathIDs = append(append(domain.UUIDArray{}, newParent.PathIDs...), newParent.ID)
	node.Path = BuildPath(newParent.Path, node.Slug)

	updates, err := s.subtreeUpdates(ctx, node, true)
	if err != nil {
		return nil, err
	}

	if err := s.nodeRepo.ApplyTreeUpdate(ctx, node, updates); err != nil {
		return nil, err
	}

	meta := map[string]any{
		"node_id": node.ID.String(),
		"to":      newParentID.String(),
	}
	if oldParentID != nil {
		meta["from"] = oldParentID.String()
	}
	s.auditSvc.Record(ctx, domain.AuditNodeMove, &actor.ID, meta)
	s.invalidateTreeCache(ctx)

	return node, nil
}

func (s *service) Restrict(ctx context.Context, actor domain.Actor, id uuid.UUID, mode domain.VisibilityMode, allowed domain.RoleList) (*domain.Node, error) {
	if !actor.Role.IsAdmin() {
		return nil, domain.NewForbiddenError("admin required to change node visibility")
	}
	if !mode.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown visibility mode %q", mode))
	}
	roles, err := validRoleList(allowed)
	if err != nil {
		return nil, err
	}

	node, err := s.nodeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, domain.NewNotFoundError("node not found")
	}

	node.VisibilityMode = mode
	node.AllowedRoles = roles

	// No cascade: descendants resolve their effective visibility
	// dynamically through path_ids.
	if err := s.nodeRepo.ApplyTreeUpdate(ctx, node, nil); err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, domain.AuditNodeRestrict, &actor.ID, map[string]any{
		"node_id": node.ID.String(),
		"mode":    string(mode),
	})
	s.invalidateTreeCache(ctx)

	return node, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if !actor.Role.CanEdit() {
		return domain.NewForbiddenError("editor or admin required to delete nodes")
	}

	if _, err := s.GetByID(ctx, actor, id); err != nil {
		return err
	}

	if err := s.nodeRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, domain.AuditNodeDelete, &actor.ID, map[string]any{
		"node_id": id.String(),
	})
	s.invalidateTreeCache(ctx)

	return nil
}

// subtreeUpdates recomputes path (and optionally path_ids) for every
// descendant of root, which must already carry its new values. The walk is
// an explicit worklist over parent→children edges with node lookup by id,
// so deep trees never exhaust the call stack.
func (s *service) subtreeUpdates(ctx context.Context, root *domain.Node, withPathIDs bool) ([]domain.NodePathUpdate, error) {
	descendants, err := s.nodeRepo.ListSubtree(ctx, root.ID)
	if err != nil {
		return nil, err
	}
	if len(descendants) == 0 {
		return nil, nil
	}

	children := make(map[uuid.UUID][]*domain.Node)
	for i := range descendants {
		d := &descendants[i]
		if d.ParentID != nil {
			children[*d.ParentID] = append(children[*d.ParentID], d)
		}
	}

	type frame struct {
		id      uuid.UUID
		path    string
		pathIDs domain.UUIDArray
	}

	updates := make([]domain.NodePathUpdate, 0, len(descendants))
	stack := []frame{{id: root.ID, path: root.Path, pathIDs: root.PathIDs}}

	for len(stack) > 0 {
		parent := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, child := range children[parent.id] {
			u := domain.NodePathUpdate{
				ID:      child.ID,
				Path:    BuildPath(parent.path, child.Slug),
				PathIDs: child.PathIDs,
			}
			if withPathIDs {
				u.PathIDs = append(append(domain.UUIDArray{}, parent.pathIDs...), parent.id)
			}
			updates = append(updates, u)
			stack = append(stack, frame{id: child.ID, path: u.Path, pathIDs: u.PathIDs})
		}
	}
	return updates, nil
}

func validRoleList(roles domain.RoleList) (domain.RoleList, error) {
	if roles == nil {
		return domain.RoleList{}, nil
	}
	for _, r := range roles {
		if !r.IsValid() {
			return nil, domain.NewValidationError(fmt.Sprintf("unknown role %q", r))
		}
	}
	return roles, nil
}

func (s *service) listAllCached(ctx context.Context) ([]domain.Node, error) {
	if s.redis != nil {
		if data, err := s.redis.Get(ctx, treeCacheKey).Bytes(); err == nil {
			var nodes []domain.Node
			if err := json.Unmarshal(data, &nodes); err == nil {
				return nodes, nil
			}
		}
	}

	nodes, err := s.nodeRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(nodes); err == nil {
			_ = s.redis.Set(ctx, treeCacheKey, data, 0).Err()
		}
	}
	return nodes, nil
}

func (s *service) invalidateTreeCache(ctx context.Context) {
	if s.redis != nil {
		_ = s.redis.Del(ctx, treeCacheKey).Err()
	}
}
