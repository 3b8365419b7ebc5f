package auth

import (
	"strings"

	"github.com/google/uuid"
)

// Role is a condominium-scoped role. The set is closed.
type Role string

const (
	RoleSindico     Role = "SINDICO"
	RoleSubSindico  Role = "SUB_SINDICO"
	RoleConselheiro Role = "CONSELHEIRO"
	RolePorteiro    Role = "PORTEIRO"
	RoleZelador     Role = "ZELADOR"
	RoleFaxineira   Role = "FAXINEIRA"
	RoleMorador     Role = "MORADOR"
)

// Roles lists every role in display order.
var Roles = []Role{
	RoleSindico,
	RoleSubSindico,
	RoleConselheiro,
	RolePorteiro,
	RoleZelador,
	RoleFaxineira,
	RoleMorador,
}

// StaffRoles are the roles allowed on staff-only screens.
var StaffRoles = []Role{RoleSindico, RoleSubSindico, RolePorteiro}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// MembershipStatus is the approval state of a membership. Only ACTIVE grants access.
type MembershipStatus string

const (
	StatusActive  MembershipStatus = "ACTIVE"
	StatusPending MembershipStatus = "PENDING"
)

// Membership associates a user with a condominium under one role.
type Membership struct {
	CondominiumID   int64            `json:"condominiumId"`
	CondominiumName string           `json:"condominiumName"`
	Role            Role             `json:"role"`
	Status          MembershipStatus `json:"status,omitempty"`
	UnitID          *int64           `json:"unitId"`
	UnitIdentifier  *string          `json:"unitIdentifier"`
}

// Active reports whether the membership is approved.
func (m Membership) Active() bool { return m.Status == StatusActive }

// UserInfo is the authenticated user's identity as returned by /auth/me.
type UserInfo struct {
	ID               int64        `json:"id"`
	UUID             uuid.UUID    `json:"uuid"`
	Email            string       `json:"email"`
	Name             string       `json:"name"`
	Phone            *string      `json:"phone"`
	PhotoURL         *string      `json:"photoUrl"`
	IsPlatformAdmin  bool         `json:"isPlatformAdmin"`
	CondominiumRoles []Membership `json:"condominiumRoles"`
}

// Clone returns a deep copy so callers cannot mutate shared identity state.
func (u *UserInfo) Clone() *UserInfo {
	if u == nil {
		return nil
	}
	out := *u
	if u.CondominiumRoles != nil {
		out.CondominiumRoles = make([]Membership, len(u.CondominiumRoles))
		copy(out.CondominiumRoles, u.CondominiumRoles)
	}
	return &out
}
