package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleChef     Role = "chef"
	RoleAdmin    Role = "admin"
)

// ParseRole normalizes s and rejects anything outside the known roles.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleCustomer, RoleStaff, RoleChef, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string { return string(r) }

// MatchRole calls the case for r. Every role is a positional argument, so adding a
// role breaks all call sites until they handle it.
func MatchRole[T any](r Role, customer, staff, chef, admin func() T) T {
	switch r {
	case RoleStaff:
		return staff()
	case RoleChef:
		return chef()
	case RoleAdmin:
		return admin()
	default:
		return customer()
	}
}

// Dashboard is the landing view for a role.
func (r Role) Dashboard() string {
	return MatchRole(r,
		func() string { return "/dashboard" },
		func() string { return "/staff" },
		func() string { return "/chef" },
		func() string { return "/admin" },
	)
}

// CanManageTables reports whether r may change table status.
func (r Role) CanManageTables() bool {
	return MatchRole(r,
		func() bool { return false },
		func() bool { return true },
		func() bool { return false },
		func() bool { return true },
	)
}

// CanRunKitchen reports whether r may see and advance kitchen orders.
func (r Role) CanRunKitchen() bool {
	return MatchRole(r,
		func() bool { return false },
		func() bool { return false },
		func() bool { return true },
		func() bool { return true },
	)
}

// CanSeeAllOrders reports whether r may read orders placed by other users.
func (r Role) CanSeeAllOrders() bool {
	return MatchRole(r,
		func() bool { return false },
		func() bool { return true },
		func() bool { return true },
		func() bool { return true },
	)
}

// Realtime reports whether r may subscribe to realtime change events.
func (r Role) Realtime() bool { return r.CanSeeAllOrders() }

// IsAdmin reports whether r may manage menus, tables and users.
func (r Role) IsAdmin() bool {
	return MatchRole(r,
		func() bool { return false },
		func() bool { return false },
		func() bool { return false },
		func() bool { return true },
	)
}
