package auth

// Principal is a user viewed through one selected condominium.
// CondominiumID 0 means no condominium is selected.
type Principal struct {
	User          *UserInfo
	CondominiumID int64
}

// NewPrincipal scopes user to condoID.
func NewPrincipal(user *UserInfo, condoID int64) Principal {
	return Principal{User: user, CondominiumID: condoID}
}

// IsPlatformAdmin reports whether the principal bypasses tenant checks.
func (p Principal) IsPlatformAdmin() bool {
	return p.User != nil && p.User.IsPlatformAdmin
}

// ActiveRoles returns the ACTIVE memberships held in the selected condominium.
func (p Principal) ActiveRoles() []Membership {
	if p.User == nil || p.CondominiumID == 0 {
		return nil
	}
	var out []Membership
	for _, m := range p.User.CondominiumRoles {
		if m.CondominiumID == p.CondominiumID && m.Active() {
			out = append(out, m)
		}
	}
	return out
}

// HasRole reports whether an ACTIVE membership with role exists in the
// selected condominium. Memberships elsewhere never count.
func (p Principal) HasRole(role Role) bool {
	for _, m := range p.ActiveRoles() {
		if m.Role == role {
			return true
		}
	}
	return false
}

// HasPermission is true for platform admins regardless of perm; otherwise
// some ACTIVE membership in the selected condominium must grant it.
func (p Principal) HasPermission(perm string) bool {
	if p.IsPlatformAdmin() {
		return true
	}
	for _, m := range p.ActiveRoles() {
		if RoleGrants(m.Role, perm) {
			return true
		}
	}
	return false
}

// FirstActive returns the first ACTIVE membership in any condominium.
func FirstActive(user *UserInfo) (Membership, bool) {
	if user == nil {
		return Membership{}, false
	}
	for _, m := range user.CondominiumRoles {
		if m.Active() {
			return m, true
		}
	}
	return Membership{}, false
}

// ActiveIn reports whether user holds any ACTIVE membership in condoID.
func ActiveIn(user *UserInfo, condoID int64) bool {
	if user == nil {
		return false
	}
	for _, m := range user.CondominiumRoles {
		if m.CondominiumID == condoID && m.Active() {
			return true
		}
	}
	return false
}
