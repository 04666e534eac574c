// Package visibility resolves whether a role may see a node, given the
// node's cascading visibility settings and its ancestor chain.
package visibility

import (
	"ops-journal/internal/domain"
)

type Resolution struct {
	Visible bool
	Reason  string
}

// Resolve walks the root-to-self chain once and applies the nearest
// non-inherit mode: the last explicit public_internal or restricted wins,
// so a public_internal closer to the node re-opens an outer restriction.
// Inherit defers to the parent; an all-inherit chain is visible to every
// role (root default is public_internal). A restricted winner with no
// allowed roles is visible to nobody.
//
// Ancestors must be ordered root to parent; the node itself is evaluated
// last. The function is total over well-formed input and performs no I/O.
func Resolve(role domain.Role, node *domain.Node, ancestors []domain.Node) Resolution {
	var restriction domain.RoleList
	restricted := false

	apply := func(mode domain.VisibilityMode, allowed domain.RoleList) {
		switch mode {
		case domain.VisibilityRestricted:
			restriction = allowed
			restricted = true
		case domain.VisibilityPublicInternal:
			restriction = nil
			restricted = false
		}
		// inherit: keep whatever the chain has resolved so far
	}

	for i := range ancestors {
		apply(ancestors[i].VisibilityMode, ancestors[i].AllowedRoles)
	}
	apply(node.VisibilityMode, node.AllowedRoles)

	if restricted {
		if len(restriction) == 0 {
			return Resolution{Visible: false, Reason: "restricted with no allowed roles"}
		}
		if !restriction.Contains(role) {
			return Resolution{Visible: false, Reason: "role not in allowed roles"}
		}
	}
	return Resolution{Visible: true}
}
