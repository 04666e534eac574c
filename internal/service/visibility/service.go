package visibility

import (
	"context"

	"ops-journal/internal/domain"
	"ops-journal/internal/repository"
)

type Service interface {
	// NodeVisible resolves visibility for one node, fetching its ancestor
	// chain by the node's stored path_ids (O(depth), never a tree walk).
	NodeVisible(ctx context.Context, role domain.Role, node *domain.Node) (bool, error)
}

type service struct {
	nodeRepo repository.NodeRepository
}

func NewService(nodeRepo repository.NodeRepository) Service {
	return &service{nodeRepo: nodeRepo}
}

func (s *service) NodeVisible(ctx context.Context, role domain.Role, node *domain.Node) (bool, error) {
	var ancestors []domain.Node
	if len(node.PathIDs) > 0 {
		var err error
		ancestors, err = s.nodeRepo.GetByIDs(ctx, node.PathIDs)
		if err != nil {
			return false, err
		}
	}
	return Resolve(role, node, ancestors).Visible, nil
}
