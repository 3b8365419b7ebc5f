package api

import (
	"context"
	"net/http"
)

type Invoice struct {
	ID               int64   `json:"id"`
	ReferenceMonth   string  `json:"referenceMonth"`
	ReferenceDisplay string  `json:"referenceDisplay"`
	AmountCents      int64   `json:"amountCents"`
	Status           string  `json:"status"`
	PaidAt           *string `json:"paidAt"`
	CreatedAt        string  `json:"createdAt"`
}

type PaymentService struct{ d Doer }

// CheckoutSession returns the hosted checkout URL. A nil planID keeps the
// condominium's current plan.
func (s *PaymentService) CheckoutSession(ctx context.Context, condoID int64, planID *int64) (string, error) {
	body := map[string]int64{}
	if planID != nil {
		body["planId"] = *planID
	}
	var out struct {
		URL string `json:"url"`
	}
	err := s.d.Do(ctx, http.MethodPost, condoPath(condoID, "/payment/checkout-session"), body, &out)
	return out.URL, err
}

func (s *PaymentService) Invoices(ctx context.Context, condoID int64) ([]Invoice, error) {
	var out []Invoice
	err := s.d.Do(ctx, http.MethodGet, condoPath(condoID, "/payment/invoices"), nil, &out)
	return out, err
}
