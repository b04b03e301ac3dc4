// Package rbac resolves what an operator is allowed to do in the sales
// builder and guards HTTP routes accordingly.
package rbac

import "strings"

// Sales permissions declared for RBAC.
const (
	PermCatalogView = "sales.catalog.view"

	PermOrderView   = "sales.order.view"
	PermOrderCreate = "sales.order.create"

	PermEstimateView   = "sales.estimate.view"
	PermEstimateCreate = "sales.estimate.create"
)

// SalesScopes lists all permissions related to the sales builder.
func SalesScopes() []string {
	return []string{
		PermCatalogView,
		PermOrderView,
		PermOrderCreate,
		PermEstimateView,
		PermEstimateCreate,
	}
}

// Capabilities are the two checks the cart mode depends on.
type Capabilities struct {
	CanCreateOrder    bool `json:"can_create_order"`
	CanCreateEstimate bool `json:"can_create_estimate"`
}

// CapabilitiesFrom evaluates granted permission names.
func CapabilitiesFrom(granted []string) Capabilities {
	set := permissionSet(granted)
	_, order := set[PermOrderCreate]
	_, estimate := set[PermEstimateCreate]
	return Capabilities{CanCreateOrder: order, CanCreateEstimate: estimate}
}

// CanBuild reports whether the operator may build a cart in any mode.
func (c Capabilities) CanBuild() bool {
	return c.CanCreateOrder || c.CanCreateEstimate
}

func permissionSet(perms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		set[p] = struct{}{}
	}
	return set
}
