package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/CjlConsultoria/convivium2/internal/gateway"
)

type ParcelStatus string

const (
	ParcelReceived        ParcelStatus = "RECEIVED"
	ParcelNotified        ParcelStatus = "NOTIFIED"
	ParcelPickupRequested ParcelStatus = "PICKUP_REQUESTED"
	ParcelVerified        ParcelStatus = "VERIFIED"
	ParcelDelivered       ParcelStatus = "DELIVERED"
)

var ParcelStatusLabels = map[ParcelStatus]string{
	ParcelReceived:        "Recebida",
	ParcelNotified:        "Notificado",
	ParcelPickupRequested: "Retirada Solicitada",
	ParcelVerified:        "Verificada",
	ParcelDelivered:       "Entregue",
}

type Parcel struct {
	ID             int64        `json:"id"`
	CondominiumID  int64        `json:"condominiumId"`
	UnitIdentifier string       `json:"unitIdentifier"`
	RecipientName  *string      `json:"recipientName"`
	ReceivedByName string       `json:"receivedByName"`
	Carrier        *string      `json:"carrier"`
	TrackingNumber *string      `json:"trackingNumber"`
	Description    *string      `json:"description"`
	Status         ParcelStatus `json:"status"`
	DeliveredAt    *string      `json:"deliveredAt"`
	CreatedAt      string       `json:"createdAt"`
}

type ParcelPhoto struct {
	ID        int64  `json:"id"`
	PhotoURL  string `json:"photoUrl"`
	PhotoType string `json:"photoType"`
	CreatedAt string `json:"createdAt"`
}

type ParcelDetail struct {
	Parcel
	PickupCode   *string       `json:"pickupCode"`
	ResidentCode *string       `json:"residentCode"`
	Photos       []ParcelPhoto `json:"photos"`
}

type ParcelRequest struct {
	UnitID         int64   `json:"unitId"`
	RecipientID    *int64  `json:"recipientId"`
	Carrier        *string `json:"carrier"`
	TrackingNumber *string `json:"trackingNumber"`
	Description    *string `json:"description"`
}

type PickupCodes struct {
	PickupCode   string `json:"pickupCode"`
	ResidentCode string `json:"residentCode"`
}

// VerificationMethod is CODE_MATCH or QR_SCAN.
type VerificationMethod string

const (
	VerifyCodeMatch VerificationMethod = "CODE_MATCH"
	VerifyQRScan    VerificationMethod = "QR_SCAN"
)

type ParcelService struct{ d Doer }

func (s *ParcelService) List(ctx context.Context, condoID int64, p PageRequest) (Page[Parcel], error) {
	var out Page[Parcel]
	err := s.d.Do(ctx, http.MethodGet, withQuery(condoPath(condoID, "/parcels"), p.values()), nil, &out)
	return out, err
}

func (s *ParcelService) Mine(ctx context.Context, condoID int64, p PageRequest) (Page[Parcel], error) {
	var out Page[Parcel]
	err := s.d.Do(ctx, http.MethodGet, withQuery(condoPath(condoID, "/parcels/mine"), p.values()), nil, &out)
	return out, err
}

func (s *ParcelService) Create(ctx context.Context, condoID int64, req ParcelRequest) (*Parcel, error) {
	var out Parcel
	if err := s.d.Do(ctx, http.MethodPost, condoPath(condoID, "/parcels"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ParcelService) Get(ctx context.Context, condoID, id int64) (*ParcelDetail, error) {
	var out ParcelDetail
	if err := s.d.Do(ctx, http.MethodGet, condoPath(condoID, "/parcels/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadPhoto sends a multipart form with the file and its photo type.
func (s *ParcelService) UploadPhoto(ctx context.Context, condoID, parcelID int64, filename string, file io.Reader, photoType string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("api: read photo: %w", err)
	}
	if err := mw.WriteField("photoType", photoType); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}
	body := gateway.RawBody{ContentType: mw.FormDataContentType(), Data: buf.Bytes()}
	return s.d.Do(ctx, http.MethodPost, condoPath(condoID, "/parcels/%d/photos", parcelID), body, nil)
}

func (s *ParcelService) GenerateCode(ctx context.Context, condoID, parcelID int64) (PickupCodes, error) {
	var out PickupCodes
	err := s.d.Do(ctx, http.MethodPost, condoPath(condoID, "/parcels/%d/generate-code", parcelID), nil, &out)
	return out, err
}

func (s *ParcelService) VerifyPickup(ctx context.Context, condoID, parcelID int64, code string, method VerificationMethod) error {
	body := struct {
		Code               string             `json:"code"`
		VerificationMethod VerificationMethod `json:"verificationMethod,omitempty"`
	}{code, method}
	return s.d.Do(ctx, http.MethodPost, condoPath(condoID, "/parcels/%d/verify", parcelID), body, nil)
}
