package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"ops-journal/internal/domain"
)

type NodeRepository interface {
	Create(ctx context.Context, node *domain.Node) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Node, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Node, error)
	FindRootBySlug(ctx context.Context, slug string) (*domain.Node, error)
	ListAll(ctx context.Context) ([]domain.Node, error)
	ListRoots(ctx context.Context) ([]domain.Node, error)
	ListSubtree(ctx context.Context, rootID uuid.UUID) ([]domain.Node, error)
	ApplyTreeUpdate(ctx context.Context, root *domain.Node, descendants []domain.NodePathUpdate) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type nodeRepository struct {
	db *sqlx.DB
}

func NewNodeRepository(db *sqlx.DB) NodeRepository {
	return &nodeRepository{db: db}
}

func (r *nodeRepository) Create(ctx context.Context, node *domain.Node) error {
	query := `
		INSERT INTO nodes (id, parent_id, name, slug, node_type, path, path_ids,
			visibility_mode, allowed_roles, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		node.ID, node.ParentID, node.Name, node.Slug, node.NodeType,
		node.Path, node.PathIDs, node.VisibilityMode, node.AllowedRoles, node.CreatedBy,
	).Scan(&node.CreatedAt, &node.UpdatedAt)
}

func (r *nodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Node, error) {
	var node domain.Node
	query := `SELECT * FROM nodes WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &node, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// GetByIDs returns the nodes for the given ids in the order requested,
// skipping unknown ids. Soft-deleted nodes are included on purpose: a
// deleted restricted ancestor must keep restricting its surviving subtree.
func (r *nodeRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Node, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var nodes []domain.Node
	query := `SELECT * FROM nodes WHERE id = ANY($1)`
	if err := r.db.SelectContext(ctx, &nodes, query, pq.GenericArray{A: ids}); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]domain.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	ordered := make([]domain.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			ordered = append(ordered, n)
		}
	}
	return ordered, nil
}

func (r *nodeRepository) FindRootBySlug(ctx context.Context, slug string) (*domain.Node, error) {
	var node domain.Node
	query := `SELECT * FROM nodes WHERE parent_id IS NULL AND slug = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &node, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func (r *nodeRepository) ListAll(ctx context.Context) ([]domain.Node, error) {
	var nodes []domain.Node
	query := `SELECT * FROM nodes WHERE deleted_at IS NULL ORDER BY path`
	err := r.db.SelectContext(ctx, &nodes, query)
	return nodes, err
}

func (r *nodeRepository) ListRoots(ctx context.Context) ([]domain.Node, error) {
	var nodes []domain.Node
	query := `SELECT * FROM nodes WHERE parent_id IS NULL AND deleted_at IS NULL ORDER BY name`
	err := r.db.SelectContext(ctx, &nodes, query)
	return nodes, err
}

// ListSubtree returns every descendant of rootID (excluding the root itself),
// found via path_ids containment rather than a recursive walk.
func (r *nodeRepository) ListSubtree(ctx context.Context, rootID uuid.UUID) ([]domain.Node, error) {
	var nodes []domain.Node
	query := `SELECT * FROM nodes WHERE path_ids @> ARRAY[$1]::uuid[] AND deleted_at IS NULL`
	err := r.db.SelectContext(ctx, &nodes, query, rootID)
	return nodes, err
}

// ApplyTreeUpdate writes the mutated node's full row plus the recomputed
// paths of its descendants in one transaction, so concurrent readers never
// observe a half-updated subtree.
func (r *nodeRepository) ApplyTreeUpdate(ctx context.Context, root *domain.Node, descendants []domain.NodePathUpdate) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tree update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rootQuery := `
		UPDATE nodes
		SET parent_id = $2, name = $3, slug = $4, node_type = $5, path = $6,
			path_ids = $7, visibility_mode = $8, allowed_roles = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	if err := tx.QueryRowxContext(ctx, rootQuery,
		root.ID, root.ParentID, root.Name, root.Slug, root.NodeType,
		root.Path, root.PathIDs, root.VisibilityMode, root.AllowedRoles,
	).Scan(&root.UpdatedAt); err != nil {
		return err
	}

	descQuery := `UPDATE nodes SET path = $2, path_ids = $3, updated_at = NOW() WHERE id = $1`
	for _, u := range descendants {
		if _, err := tx.ExecContext(ctx, descQuery, u.ID, u.Path, u.PathIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tree update: %w", err)
	}
	return nil
}

func (r *nodeRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE nodes SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
