package api

import (
	"context"
	"net/http"
)

type ComplaintCategory string

const (
	CategoryNoise       ComplaintCategory = "NOISE"
	CategoryMaintenance ComplaintCategory = "MAINTENANCE"
	CategorySecurity    ComplaintCategory = "SECURITY"
	CategoryParking     ComplaintCategory = "PARKING"
	CategoryPet         ComplaintCategory = "PET"
	CategoryCommonArea  ComplaintCategory = "COMMON_AREA"
	CategoryOther       ComplaintCategory = "OTHER"
)

type ComplaintStatus string

const (
	ComplaintOpen      ComplaintStatus = "OPEN"
	ComplaintInReview  ComplaintStatus = "IN_REVIEW"
	ComplaintResponded ComplaintStatus = "RESPONDED"
	ComplaintResolved  ComplaintStatus = "RESOLVED"
	ComplaintClosed    ComplaintStatus = "CLOSED"
)

// ComplaintStatusLabels are the Portuguese display labels.
var ComplaintStatusLabels = map[ComplaintStatus]string{
	ComplaintOpen:      "Aberta",
	ComplaintInReview:  "Em Analise",
	ComplaintResponded: "Respondida",
	ComplaintResolved:  "Resolvida",
	ComplaintClosed:    "Encerrada",
}

type Complaint struct {
	ID              int64             `json:"id"`
	CondominiumID   int64             `json:"condominiumId"`
	ComplainantName *string           `json:"complainantName"`
	IsAnonymous     bool              `json:"isAnonymous"`
	Category        ComplaintCategory `json:"category"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	UnitIdentifier  *string           `json:"unitIdentifier"`
	Status          ComplaintStatus   `json:"status"`
	Priority        string            `json:"priority"`
	CreatedAt       string            `json:"createdAt"`
	UpdatedAt       string            `json:"updatedAt"`
}

type ComplaintReply struct {
	ID            int64  `json:"id"`
	ResponderName string `json:"responderName"`
	ResponderRole string `json:"responderRole"`
	Message       string `json:"message"`
	IsInternal    bool   `json:"isInternal"`
	CreatedAt     string `json:"createdAt"`
}

type ComplaintAttachment struct {
	ID        int64  `json:"id"`
	FileName  string `json:"fileName"`
	FileURL   string `json:"fileUrl"`
	FileType  string `json:"fileType"`
	CreatedAt string `json:"createdAt"`
}

type ComplaintDetail struct {
	Complaint
	Responses   []ComplaintReply      `json:"responses"`
	Attachments []ComplaintAttachment `json:"attachments"`
}

type ComplaintRequest struct {
	Category    ComplaintCategory `json:"category"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	IsAnonymous bool              `json:"isAnonymous"`
	UnitID      *int64            `json:"unitId"`
	Priority    string            `json:"priority"`
}

type ComplaintService struct{ d Doer }

// List filters by p.Status when set.
func (s *ComplaintService) List(ctx context.Context, condoID int64, p PageRequest) (Page[Complaint], error) {
	var out Page[Complaint]
	err := s.d.Do(ctx, http.MethodGet, withQuery(condoPath(condoID, "/complaints"), p.values()), nil, &out)
	return out, err
}

func (s *ComplaintService) Mine(ctx context.Context, condoID int64, p PageRequest) (Page[Complaint], error) {
	var out Page[Complaint]
	err := s.d.Do(ctx, http.MethodGet, withQuery(condoPath(condoID, "/complaints/mine"), p.values()), nil, &out)
	return out, err
}

func (s *ComplaintService) Create(ctx context.Context, condoID int64, req ComplaintRequest) (*Complaint, error) {
	var out Complaint
	if err := s.d.Do(ctx, http.MethodPost, condoPath(condoID, "/complaints"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ComplaintService) Get(ctx context.Context, condoID, id int64) (*ComplaintDetail, error) {
	var out ComplaintDetail
	if err := s.d.Do(ctx, http.MethodGet, condoPath(condoID, "/complaints/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ComplaintService) Respond(ctx context.Context, condoID, id int64, message string, internal bool) error {
	body := struct {
		Message    string `json:"message"`
		IsInternal bool   `json:"isInternal"`
	}{message, internal}
	return s.d.Do(ctx, http.MethodPost, condoPath(condoID, "/complaints/%d/responses", id), body, nil)
}

func (s *ComplaintService) SetStatus(ctx context.Context, condoID, id int64, status ComplaintStatus) error {
	return s.d.Do(ctx, http.MethodPatch, condoPath(condoID, "/complaints/%d/status", id),
		map[string]ComplaintStatus{"status": status}, nil)
}
