// Package policy maps user roles to "resource:action" permissions and guards
// ERP routes with them.
package policy

import (
	"net/http"
	"strings"

	"github.com/ale3590/fares/auth"
	"github.com/ale3590/fares/httpx"
	"github.com/ale3590/fares/internal/models"
)

// Action is the kind of operation a route performs.
type Action string

const (
	ActionList   Action = "list"
	ActionView   Action = "view"
	ActionCreate Action = "create"
)

// Resources guarded by the ERP router.
const (
	Products  = "productos"
	Clients   = "clientes"
	Suppliers = "proveedores"
	Sales     = "ventas"
	Purchases = "compras"
)

const wildcard = "*"

// Permission is "resource:action". "*:*" grants everything and "ventas:*"
// every action on sales.
type Permission string

// SuperAdmin matches every permission.
const SuperAdmin Permission = "*:*"

func NewPermission(resource string, action Action) Permission {
	return Permission(resource + ":" + string(action))
}

// Parse splits p into resource and action. Malformed values yield "".
func (p Permission) Parse() (resource string, action Action) {
	res, act, ok := strings.Cut(string(p), ":")
	if !ok {
		return "", ""
	}
	return res, Action(act)
}

// Matches reports whether p grants requested.
func (p Permission) Matches(requested Permission) bool {
	if p == SuperAdmin || p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, _ := requested.Parse()
	return res != "" && res == reqRes && string(act) == wildcard
}

// Roles holds the permissions of each role.
type Roles map[string][]Permission

// DefaultRoles lets administrators do everything. Sellers sell, register
// clients and read the rest, but cannot receive merchandise or open the
// stock reports.
func DefaultRoles() Roles {
	return Roles{
		models.RoleAdmin: {SuperAdmin},
		models.RoleSeller: {
			NewPermission(Products, ActionList),
			NewPermission(Clients, wildcard),
			NewPermission(Suppliers, ActionList),
			NewPermission(Sales, wildcard),
			NewPermission(Purchases, ActionList),
			NewPermission(Purchases, ActionView),
		},
	}
}

// Can reports whether role holds a permission matching resource and action.
// Unknown roles hold nothing.
func (r Roles) Can(role, resource string, action Action) bool {
	want := NewPermission(resource, action)
	for _, p := range r[role] {
		if p.Matches(want) {
			return true
		}
	}
	return false
}

// Require returns 403 unless the token's role may perform action on resource.
// It runs after auth.RequireAuth.
func (r Roles) Require(resource string, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			c, ok := auth.ClaimsFromContext(req.Context())
			if !ok || !r.Can(c.Role, resource, action) {
				httpx.JSONMessage(w, http.StatusForbidden, "forbidden", "Acceso denegado. Permiso insuficiente.")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
