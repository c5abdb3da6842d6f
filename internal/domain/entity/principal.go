package entity

import "time"

// Roles válidos para Principal. El rol vive en un solo lugar de registro
// (principals.role); cualquier representación externa es un caché derivado.
const (
	RoleMember           = "member"
	RoleEnterpriseAdmin  = "enterprise_admin"
	RolePlatformOperator = "platform_operator"
)

// Principal representa una cuenta del directorio.
// Solo el elevador de roles lo muta, y únicamente cuando la resolución
// del candidato es inequívoca.
type Principal struct {
	ID        string
	Email     string
	Name      string
	Role      string // member, enterprise_admin, platform_operator
	Status    string // active, inactive, suspended
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsElevated informa si el principal ya tiene un rol igual o superior a
// enterprise_admin.
func (p *Principal) IsElevated() bool {
	return p.Role == RoleEnterpriseAdmin || p.Role == RolePlatformOperator
}
