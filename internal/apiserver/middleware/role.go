package middleware

import (
	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/gin-gonic/gin"
)

// RoleSet is the set of roles a route admits. Roles are flat: ADMIN is not
// implicitly allowed where only VENDEDOR is listed.
type RoleSet []database.Role

var (
	AllRoles      = RoleSet{database.RoleAdmin, database.RoleVendedor, database.RoleAsistente}
	AdminOnly     = RoleSet{database.RoleAdmin}
	AdminOrSeller = RoleSet{database.RoleAdmin, database.RoleVendedor}
)

// Allows reports whether r is in the set
func (s RoleSet) Allows(r database.Role) bool {
	for _, x := range s {
		if x == r {
			return true
		}
	}
	return false
}

// RequireRoles permits the request iff the principal's role is in set
func RequireRoles(set RoleSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFromContext(c)
		if p == nil {
			errorx.Abort(c, errorx.ErrNoToken)
			return
		}
		if p.SuperAdmin || !set.Allows(p.Role) {
			errorx.Abort(c, errorx.ErrForbiddenRole)
			return
		}
		c.Next()
	}
}
