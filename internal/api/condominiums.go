package api

import (
	"context"
	"fmt"
	"net/http"
)

type CondominiumStatus string

const (
	CondominiumPending     CondominiumStatus = "PENDING"
	CondominiumActive      CondominiumStatus = "ACTIVE"
	CondominiumSuspended   CondominiumStatus = "SUSPENDED"
	CondominiumDeactivated CondominiumStatus = "DEACTIVATED"
)

type Condominium struct {
	ID                  int64             `json:"id"`
	Name                string            `json:"name"`
	Slug                string            `json:"slug"`
	CNPJ                *string           `json:"cnpj"`
	Email               *string           `json:"email"`
	Phone               *string           `json:"phone"`
	AddressStreet       *string           `json:"addressStreet"`
	AddressNumber       *string           `json:"addressNumber"`
	AddressComplement   *string           `json:"addressComplement"`
	AddressNeighborhood *string           `json:"addressNeighborhood"`
	AddressCity         *string           `json:"addressCity"`
	AddressState        *string           `json:"addressState"`
	AddressZip          *string           `json:"addressZip"`
	LogoURL             *string           `json:"logoUrl"`
	PlanID              *int64            `json:"planId"`
	PlanName            *string           `json:"planName"`
	PlanPriceCents      *int64            `json:"planPriceCents"`
	Status              CondominiumStatus `json:"status"`
	CreatedAt           string            `json:"createdAt"`
}

type CondominiumRequest struct {
	Name                string  `json:"name"`
	CNPJ                *string `json:"cnpj"`
	Email               *string `json:"email"`
	Phone               *string `json:"phone"`
	AddressStreet       *string `json:"addressStreet"`
	AddressNumber       *string `json:"addressNumber"`
	AddressComplement   *string `json:"addressComplement"`
	AddressNeighborhood *string `json:"addressNeighborhood"`
	AddressCity         *string `json:"addressCity"`
	AddressState        *string `json:"addressState"`
	AddressZip          *string `json:"addressZip"`
}

type Plan struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	PriceCents  int64   `json:"priceCents"`
	Description *string `json:"description"`
	MaxUnits    int     `json:"maxUnits"`
	MaxUsers    int     `json:"maxUsers"`
	Active      bool    `json:"active"`
}

type Building struct {
	ID            int64  `json:"id"`
	CondominiumID int64  `json:"condominiumId"`
	Name          string `json:"name"`
	Floors        *int   `json:"floors"`
	CreatedAt     string `json:"createdAt"`
}

type BuildingRequest struct {
	Name   string `json:"name"`
	Floors *int   `json:"floors"`
}

type UnitResident struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Unit struct {
	ID            int64          `json:"id"`
	CondominiumID int64          `json:"condominiumId"`
	BuildingID    *int64         `json:"buildingId"`
	BuildingName  *string        `json:"buildingName"`
	Identifier    string         `json:"identifier"`
	Floor         *int           `json:"floor"`
	Type          string         `json:"type"`
	AreaSqm       *float64       `json:"areaSqm"`
	IsOccupied    bool           `json:"isOccupied"`
	Residents     []UnitResident `json:"residents,omitempty"`
}

type UnitRequest struct {
	BuildingID *int64   `json:"buildingId"`
	Identifier string   `json:"identifier"`
	Floor      *int     `json:"floor"`
	Type       string   `json:"type"`
	AreaSqm    *float64 `json:"areaSqm"`
}

// StructureRequest describes blocks and units to generate. IdentifierFormat
// is "1", "01" or "101" (floor followed by two digits).
type StructureRequest struct {
	BlocksCount      int    `json:"blocksCount"`
	UnitsPerFloor    int    `json:"unitsPerFloor"`
	FloorsPerBlock   int    `json:"floorsPerBlock"`
	IdentifierFormat string `json:"identifierFormat,omitempty"`
	IdentifierStart  int    `json:"identifierStart,omitempty"`
}

type BuildingPreview struct {
	Name   string `json:"name"`
	Floors int    `json:"floors"`
}

type UnitPreview struct {
	BuildingName string `json:"buildingName"`
	Floor        int    `json:"floor"`
	Identifier   string `json:"identifier"`
}

type StructurePreview struct {
	Buildings []BuildingPreview `json:"buildings"`
	Units     []UnitPreview     `json:"units"`
}

type CondominiumService struct{ d Doer }

// Summary returns the tenant-facing view of a condominium, including plan.
func (s *CondominiumService) Summary(ctx context.Context, condoID int64) (*Condominium, error) {
	var out Condominium
	if err := s.d.Do(ctx, http.MethodGet, condoPath(condoID, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CondominiumService) List(ctx context.Context, p PageRequest) (Page[Condominium], error) {
	var out Page[Condominium]
	err := s.d.Do(ctx, http.MethodGet, withQuery("/admin/condominiums", p.values()), nil, &out)
	return out, err
}

func (s *CondominiumService) Get(ctx context.Context, id int64) (*Condominium, error) {
	var out Condominium
	if err := s.d.Do(ctx, http.MethodGet, fmt.Sprintf("/admin/condominiums/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CondominiumService) Create(ctx context.Context, req CondominiumRequest) (*Condominium, error) {
	var out Condominium
	if err := s.d.Do(ctx, http.MethodPost, "/admin/condominiums", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CondominiumService) Update(ctx context.Context, id int64, req CondominiumRequest) (*Condominium, error) {
	var out Condominium
	if err := s.d.Do(ctx, http.MethodPut, fmt.Sprintf("/admin/condominiums/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CondominiumService) Delete(ctx context.Context, id int64) error {
	return s.d.Do(ctx, http.MethodDelete, fmt.Sprintf("/admin/condominiums/%d", id), nil, nil)
}

func (s *CondominiumService) SetStatus(ctx context.Context, id int64, status CondominiumStatus) error {
	return s.d.Do(ctx, http.MethodPatch, fmt.Sprintf("/admin/condominiums/%d/status", id),
		map[string]CondominiumStatus{"status": status}, nil)
}

// SetPlan assigns planID; nil removes the plan.
func (s *CondominiumService) SetPlan(ctx context.Context, id int64, planID *int64) (*Condominium, error) {
	var out Condominium
	err := s.d.Do(ctx, http.MethodPatch, fmt.Sprintf("/admin/condominiums/%d/plan", id),
		map[string]*int64{"planId": planID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CondominiumService) Plans(ctx context.Context) ([]Plan, error) {
	var out []Plan
	err := s.d.Do(ctx, http.MethodGet, "/admin/plans", nil, &out)
	return out, err
}

func (s *CondominiumService) Buildings(ctx context.Context, condoID int64) ([]Building, error) {
	var out []Building
	err := s.d.Do(ctx, http.MethodGet, condoPath(condoID, "/buildings"), nil, &out)
	return out, err
}

func (s *CondominiumService) CreateBuilding(ctx context.Context, condoID int64, req BuildingRequest) (*Building, error) {
	var out Building
	if err := s.d.Do(ctx, http.MethodPost, condoPath(condoID, "/buildings"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CondominiumService) DeleteBuilding(ctx context.Context, condoID, buildingID int64) error {
	return s.d.Do(ctx, http.MethodDelete, condoPath(condoID, "/buildings/%d", buildingID), nil, nil)
}

func (s *CondominiumService) Units(ctx context.Context, condoID int64) ([]Unit, error) {
	var out []Unit
	err := s.d.Do(ctx, http.MethodGet, condoPath(condoID, "/units"), nil, &out)
	return out, err
}

func (s *CondominiumService) CreateUnit(ctx context.Context, condoID int64, req UnitRequest) (*Unit, error) {
	var out Unit
	if err := s.d.Do(ctx, http.MethodPost, condoPath(condoID, "/units"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CondominiumService) DeleteUnit(ctx context.Context, condoID, unitID int64) error {
	return s.d.Do(ctx, http.MethodDelete, condoPath(condoID, "/units/%d", unitID), nil, nil)
}

func (s *CondominiumService) PreviewStructure(ctx context.Context, condoID int64, req StructureRequest) (StructurePreview, error) {
	var out StructurePreview
	err := s.d.Do(ctx, http.MethodPost, condoPath(condoID, "/structure/preview"), req, &out)
	return out, err
}

func (s *CondominiumService) ApplyStructure(ctx context.Context, condoID int64, preview StructurePreview) error {
	return s.d.Do(ctx, http.MethodPost, condoPath(condoID, "/structure/apply"), preview, nil)
}

func (s *CondominiumService) GenerateStructure(ctx context.Context, condoID int64, req StructureRequest) error {
	return s.d.Do(ctx, http.MethodPost, condoPath(condoID, "/structure/generate"), req, nil)
}
