package auth

const (
	PermUsersView   = "users.view"
	PermUsersCreate = "users.create"
	PermUsersEdit   = "users.edit"
	PermUsersDelete = "users.delete"

	PermComplaintsView    = "complaints.view"
	PermComplaintsCreate  = "complaints.create"
	PermComplaintsManage  = "complaints.manage"
	PermComplaintsRespond = "complaints.respond"

	PermParcelsView    = "parcels.view"
	PermParcelsReceive = "parcels.receive"
	PermParcelsDeliver = "parcels.deliver"

	PermAnnouncementsView   = "announcements.view"
	PermAnnouncementsCreate = "announcements.create"
	PermAnnouncementsEdit   = "announcements.edit"
	PermAnnouncementsDelete = "announcements.delete"

	PermBookingsView   = "bookings.view"
	PermBookingsCreate = "bookings.create"
	PermBookingsManage = "bookings.manage"

	PermVisitorsView   = "visitors.view"
	PermVisitorsCreate = "visitors.create"
	PermVisitorsManage = "visitors.manage"

	PermMaintenanceView   = "maintenance.view"
	PermMaintenanceManage = "maintenance.manage"

	PermFinancialView   = "financial.view"
	PermFinancialManage = "financial.manage"

	PermDocumentsView   = "documents.view"
	PermDocumentsManage = "documents.manage"

	PermSettingsView = "settings.view"
	PermSettingsEdit = "settings.edit"
)

// rolePermissions is fixed at build time and never mutated.
var rolePermissions = map[Role][]string{
	RoleSindico: {
		PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersDelete,
		PermComplaintsView, PermComplaintsManage, PermComplaintsRespond,
		PermParcelsView, PermParcelsReceive, PermParcelsDeliver,
		PermAnnouncementsView, PermAnnouncementsCreate, PermAnnouncementsEdit, PermAnnouncementsDelete,
		PermBookingsView, PermBookingsManage,
		PermVisitorsView, PermVisitorsManage,
		PermMaintenanceView, PermMaintenanceManage,
		PermFinancialView, PermFinancialManage,
		PermDocumentsView, PermDocumentsManage,
		PermSettingsView, PermSettingsEdit,
	},
	RoleSubSindico: {
		PermUsersView, PermUsersCreate, PermUsersEdit,
		PermComplaintsView, PermComplaintsManage, PermComplaintsRespond,
		PermParcelsView, PermParcelsReceive, PermParcelsDeliver,
		PermAnnouncementsView, PermAnnouncementsCreate, PermAnnouncementsEdit,
		PermBookingsView, PermBookingsManage,
		PermVisitorsView, PermVisitorsManage,
		PermMaintenanceView, PermMaintenanceManage,
		PermFinancialView,
		PermDocumentsView, PermDocumentsManage,
		PermSettingsView,
	},
	RoleConselheiro: {
		PermUsersView,
		PermComplaintsView, PermComplaintsRespond,
		PermParcelsView,
		PermAnnouncementsView,
		PermBookingsView,
		PermVisitorsView,
		PermMaintenanceView,
		PermFinancialView,
		PermDocumentsView,
		PermSettingsView,
	},
	RolePorteiro: {
		PermParcelsView, PermParcelsReceive, PermParcelsDeliver,
		PermVisitorsView, PermVisitorsManage,
		PermComplaintsView,
		PermAnnouncementsView,
	},
	RoleZelador: {
		PermComplaintsView,
		PermMaintenanceView, PermMaintenanceManage,
		PermParcelsView,
		PermAnnouncementsView,
	},
	RoleFaxineira: {
		PermAnnouncementsView,
		PermMaintenanceView,
	},
	RoleMorador: {
		PermComplaintsView, PermComplaintsCreate,
		PermParcelsView,
		PermAnnouncementsView,
		PermBookingsView, PermBookingsCreate,
		PermVisitorsView, PermVisitorsCreate,
		PermDocumentsView,
		PermFinancialView,
	},
}

var permissionIndex = func() map[Role]map[string]struct{} {
	idx := make(map[Role]map[string]struct{}, len(rolePermissions))
	for role, perms := range rolePermissions {
		set := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		idx[role] = set
	}
	return idx
}()

// RoleGrants reports whether role maps to perm in the permission matrix.
// Unknown roles grant nothing.
func RoleGrants(role Role, perm string) bool {
	_, ok := permissionIndex[role][perm]
	return ok
}

// PermissionsFor returns a copy of the permissions granted to role.
func PermissionsFor(role Role) []string {
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}
