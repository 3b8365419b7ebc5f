package mockapi

import (
	"github.com/CjlConsultoria/convivium2/internal/api"
	"github.com/CjlConsultoria/convivium2/internal/auth"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "convivium123"

// Seeded accounts.
const (
	AdminEmail    = "admin@convivium.dev"
	SindicoEmail  = "sindico@convivium.dev"
	PorteiroEmail = "porteiro@convivium.dev"
	MoradorEmail  = "morador@convivium.dev"
	PendingEmail  = "pendente@convivium.dev"
)

// Seeded condominiums.
const (
	CondoAurora    int64 = 1
	CondoHorizonte int64 = 2
)

func ptr[T any](v T) *T { return &v }

func seedUsers() []auth.UserInfo {
	unit := ptr(int64(101))
	return []auth.UserInfo{
		{ID: 1, Email: AdminEmail, Name: "Administrador", IsPlatformAdmin: true},
		{ID: 2, Email: SindicoEmail, Name: "Helena Duarte", CondominiumRoles: []auth.Membership{
			{CondominiumID: CondoAurora, CondominiumName: "Residencial Aurora", Role: auth.RoleSindico, Status: auth.StatusActive},
			{CondominiumID: CondoHorizonte, CondominiumName: "Edifício Horizonte", Role: auth.RoleSindico, Status: auth.StatusActive},
		}},
		{ID: 3, Email: PorteiroEmail, Name: "Carlos Lima", CondominiumRoles: []auth.Membership{
			{CondominiumID: CondoAurora, CondominiumName: "Residencial Aurora", Role: auth.RolePorteiro, Status: auth.StatusActive},
		}},
		{ID: 4, Email: MoradorEmail, Name: "Marina Souza", Phone: ptr("11987654321"), CondominiumRoles: []auth.Membership{
			{CondominiumID: CondoAurora, CondominiumName: "Residencial Aurora", Role: auth.RoleMorador, Status: auth.StatusActive,
				UnitID: unit, UnitIdentifier: ptr("101")},
		}},
		{ID: 5, Email: PendingEmail, Name: "Rafael Nunes", CondominiumRoles: []auth.Membership{
			{CondominiumID: CondoAurora, CondominiumName: "Residencial Aurora", Role: auth.RoleSindico, Status: auth.StatusPending},
		}},
	}
}

func seedCondominiums() []api.Condominium {
	return []api.Condominium{
		{ID: CondoAurora, Name: "Residencial Aurora", Slug: "residencial-aurora", CNPJ: ptr("11.222.333/0001-81"),
			AddressCity: ptr("São Paulo"), AddressState: ptr("SP"), Status: api.CondominiumActive, CreatedAt: "2024-01-10T12:00:00Z"},
		{ID: CondoHorizonte, Name: "Edifício Horizonte", Slug: "edificio-horizonte",
			AddressCity: ptr("Campinas"), AddressState: ptr("SP"), Status: api.CondominiumSuspended, CreatedAt: "2024-05-02T12:00:00Z"},
	}
}

func seedComplaints() []api.Complaint {
	return []api.Complaint{
		{ID: 1, CondominiumID: CondoAurora, ComplainantName: ptr("Marina Souza"), Category: api.CategoryNoise,
			Title: "Barulho após 22h", Description: "Som alto no 302.", UnitIdentifier: ptr("101"),
			Status: api.ComplaintOpen, Priority: "MEDIUM", CreatedAt: "2025-02-01T23:10:00Z", UpdatedAt: "2025-02-01T23:10:00Z"},
		{ID: 2, CondominiumID: CondoAurora, IsAnonymous: true, Category: api.CategoryParking,
			Title: "Vaga ocupada", Description: "Carro na vaga 14.", Status: api.ComplaintInReview,
			Priority: "LOW", CreatedAt: "2025-02-03T08:00:00Z", UpdatedAt: "2025-02-04T09:00:00Z"},
	}
}

func seedParcels() []api.Parcel {
	return []api.Parcel{
		{ID: 1, CondominiumID: CondoAurora, UnitIdentifier: "101", RecipientName: ptr("Marina Souza"),
			ReceivedByName: "Carlos Lima", Carrier: ptr("Correios"), Status: api.ParcelNotified, CreatedAt: "2025-02-05T10:00:00Z"},
		{ID: 2, CondominiumID: CondoAurora, UnitIdentifier: "204", ReceivedByName: "Carlos Lima",
			Carrier: ptr("Loggi"), Status: api.ParcelReceived, CreatedAt: "2025-02-06T14:30:00Z"},
	}
}

func seedNotifications(userID int64) []api.Notification {
	return []api.Notification{
		{ID: userID*100 + 1, Title: "Encomenda recebida", Message: "Uma encomenda chegou para sua unidade.",
			Type: "PARCEL_RECEIVED", Channel: "IN_APP", CreatedAt: "2025-02-05T10:00:00Z"},
		{ID: userID*100 + 2, Title: "Bem-vindo", Message: "Sua conta está ativa.",
			Type: "SYSTEM", Channel: "IN_APP", IsRead: true, CreatedAt: "2025-01-10T12:00:00Z"},
	}
}
