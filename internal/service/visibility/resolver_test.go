package visibility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ops-journal/internal/domain"
	"ops-journal/internal/service/visibility"
)

func node(mode domain.VisibilityMode, allowed ...domain.Role) domain.Node {
	return domain.Node{
		VisibilityMode: mode,
		AllowedRoles:   domain.RoleList(allowed),
	}
}

func TestResolve(t *testing.T) {
	t.Run("all inherit chain is open to every role", func(t *testing.T) {
		n := node(domain.VisibilityInherit)
		ancestors := []domain.Node{
			node(domain.VisibilityInherit),
			node(domain.VisibilityInherit),
		}

		for _, role := range []domain.Role{domain.RoleViewer, domain.RoleEditor, domain.RoleAdmin} {
			res := visibility.Resolve(role, &n, ancestors)
			assert.True(t, res.Visible, "role %s", role)
		}
	})

	t.Run("restricted ancestor blocks roles outside the list", func(t *testing.T) {
		n := node(domain.VisibilityInherit)
		ancestors := []domain.Node{
			node(domain.VisibilityPublicInternal),
			node(domain.VisibilityRestricted, domain.RoleAdmin),
		}

		assert.True(t, visibility.Resolve(domain.RoleAdmin, &n, ancestors).Visible)
		assert.False(t, visibility.Resolve(domain.RoleEditor, &n, ancestors).Visible)
		assert.False(t, visibility.Resolve(domain.RoleViewer, &n, ancestors).Visible)
	})

	t.Run("closer public_internal re-opens an outer restriction", func(t *testing.T) {
		n := node(domain.VisibilityInherit)
		ancestors := []domain.Node{
			node(domain.VisibilityRestricted, domain.RoleAdmin),
			node(domain.VisibilityPublicInternal),
		}

		assert.True(t, visibility.Resolve(domain.RoleViewer, &n, ancestors).Visible)
	})

	t.Run("node's own mode wins over ancestors", func(t *testing.T) {
		n := node(domain.VisibilityRestricted, domain.RoleEditor)
		ancestors := []domain.Node{node(domain.VisibilityPublicInternal)}

		assert.True(t, visibility.Resolve(domain.RoleEditor, &n, ancestors).Visible)
		assert.False(t, visibility.Resolve(domain.RoleViewer, &n, ancestors).Visible)
	})

	t.Run("restricted with empty allowed roles is visible to nobody", func(t *testing.T) {
		n := node(domain.VisibilityRestricted)

		for _, role := range []domain.Role{domain.RoleViewer, domain.RoleEditor, domain.RoleAdmin} {
			res := visibility.Resolve(role, &n, nil)
			assert.False(t, res.Visible, "role %s", role)
			assert.Equal(t, "restricted with no allowed roles", res.Reason)
		}
	})

	t.Run("inherit under restriction keeps the restriction", func(t *testing.T) {
		n := node(domain.VisibilityInherit)
		ancestors := []domain.Node{
			node(domain.VisibilityRestricted, domain.RoleAdmin, domain.RoleEditor),
			node(domain.VisibilityInherit),
		}

		assert.True(t, visibility.Resolve(domain.RoleEditor, &n, ancestors).Visible)
		assert.False(t, visibility.Resolve(domain.RoleViewer, &n, ancestors).Visible)
	})
}
