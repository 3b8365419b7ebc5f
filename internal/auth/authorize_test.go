package auth

import "testing"

func membership(condo int64, role Role, status MembershipStatus) Membership {
	return Membership{CondominiumID: condo, Role: role, Status: status}
}

func TestPrincipalPermissions(t *testing.T) {
	user := &UserInfo{ID: 1, CondominiumRoles: []Membership{membership(5, RolePorteiro, StatusActive)}}
	principal := NewPrincipal(user, 5)

	if !principal.HasPermission("parcels.receive") {
		t.Fatalf("expected parcels.receive for PORTEIRO")
	}
	if principal.HasPermission("financial.manage") {
		t.Fatalf("unexpected financial.manage for PORTEIRO")
	}
}

func TestPrincipalTenantScoping(t *testing.T) {
	user := &UserInfo{CondominiumRoles: []Membership{membership(9, RoleSindico, StatusActive)}}

	if NewPrincipal(user, 5).HasRole(RoleSindico) {
		t.Fatalf("membership in condominium 9 must not satisfy condominium 5")
	}
	if !NewPrincipal(user, 9).HasRole(RoleSindico) {
		t.Fatalf("expected SINDICO in condominium 9")
	}
	if NewPrincipal(user, 0).HasRole(RoleSindico) {
		t.Fatalf("no selected condominium must grant nothing")
	}
}

func TestPrincipalIgnoresPendingMemberships(t *testing.T) {
	user := &UserInfo{CondominiumRoles: []Membership{membership(3, RoleSindico, StatusPending)}}
	p := NewPrincipal(user, 3)
	if p.HasRole(RoleSindico) || p.HasPermission(PermUsersView) {
		t.Fatalf("pending membership must not grant access")
	}
	if _, ok := FirstActive(user); ok {
		t.Fatalf("pending membership reported as active")
	}
}

func TestPlatformAdminHasEveryPermission(t *testing.T) {
	admin := &UserInfo{IsPlatformAdmin: true}
	p := NewPrincipal(admin, 0)
	for _, perm := range []string{"users.delete", "settings.edit", "made.up", ""} {
		if !p.HasPermission(perm) {
			t.Fatalf("admin denied %q", perm)
		}
	}
	if p.HasRole(RoleSindico) {
		t.Fatalf("admin flag must not fabricate roles")
	}
}

func TestDuplicateMembershipsFirstActiveWins(t *testing.T) {
	user := &UserInfo{CondominiumRoles: []Membership{
		membership(2, RoleMorador, StatusPending),
		membership(4, RoleZelador, StatusActive),
		membership(4, RoleZelador, StatusActive),
		membership(7, RoleSindico, StatusActive),
	}}
	first, ok := FirstActive(user)
	if !ok || first.CondominiumID != 4 {
		t.Fatalf("unexpected first active membership: %+v", first)
	}
	if len(NewPrincipal(user, 4).ActiveRoles()) != 2 {
		t.Fatalf("duplicates should be tolerated")
	}
	if !ActiveIn(user, 7) || ActiveIn(user, 2) {
		t.Fatalf("ActiveIn mismatch")
	}
}

func TestPermissionMatrix(t *testing.T) {
	cases := []struct {
		role  Role
		perm  string
		grant bool
	}{
		{RoleSindico, PermUsersDelete, true},
		{RoleSindico, PermComplaintsCreate, false},
		{RoleSubSindico, PermUsersDelete, false},
		{RoleSubSindico, PermAnnouncementsDelete, false},
		{RoleSubSindico, PermFinancialManage, false},
		{RoleSubSindico, PermSettingsEdit, false},
		{RoleSubSindico, PermDocumentsManage, true},
		{RoleConselheiro, PermSettingsView, true},
		{RoleConselheiro, PermComplaintsRespond, true},
		{RoleConselheiro, PermComplaintsManage, false},
		{RolePorteiro, PermParcelsDeliver, true},
		{RolePorteiro, PermMaintenanceView, false},
		{RoleZelador, PermMaintenanceManage, true},
		{RoleFaxineira, PermMaintenanceView, true},
		{RoleFaxineira, PermParcelsView, false},
		{RoleMorador, PermBookingsCreate, true},
		{RoleMorador, PermBookingsManage, false},
		{Role("GHOST"), PermAnnouncementsView, false},
	}
	for _, tc := range cases {
		if got := RoleGrants(tc.role, tc.perm); got != tc.grant {
			t.Fatalf("RoleGrants(%s, %s) = %v, want %v", tc.role, tc.perm, got, tc.grant)
		}
	}
}

func TestSubSindicoIsSindicoMinusFour(t *testing.T) {
	removed := map[string]bool{
		PermUsersDelete: true, PermAnnouncementsDelete: true,
		PermFinancialManage: true, PermSettingsEdit: true,
	}
	var want []string
	for _, p := range PermissionsFor(RoleSindico) {
		if !removed[p] {
			want = append(want, p)
		}
	}
	got := PermissionsFor(RoleSubSindico)
	if len(got) != len(want) {
		t.Fatalf("SUB_SINDICO has %d permissions, want %d", len(got), len(want))
	}
	for _, p := range want {
		if !RoleGrants(RoleSubSindico, p) {
			t.Fatalf("SUB_SINDICO missing %s", p)
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole(" sub_sindico "); !ok || r != RoleSubSindico {
		t.Fatalf("ParseRole = %q, %v", r, ok)
	}
	if _, ok := ParseRole("ADMIN"); ok {
		t.Fatalf("ADMIN is not a condominium role")
	}
}
