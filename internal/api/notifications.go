package api

import (
	"context"
	"fmt"
	"net/http"
)

type Notification struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Message       string  `json:"message"`
	Type          string  `json:"type"`
	ReferenceType *string `json:"referenceType"`
	ReferenceID   *int64  `json:"referenceId"`
	Channel       string  `json:"channel"`
	IsRead        bool    `json:"isRead"`
	ReadAt        *string `json:"readAt"`
	CreatedAt     string  `json:"createdAt"`
}

type NotificationPreference struct {
	Channel   string `json:"channel"`
	EventType string `json:"eventType"`
	IsEnabled bool   `json:"isEnabled"`
}

type NotificationService struct{ d Doer }

func (s *NotificationService) List(ctx context.Context, p PageRequest) (Page[Notification], error) {
	var out Page[Notification]
	err := s.d.Do(ctx, http.MethodGet, withQuery("/notifications", p.values()), nil, &out)
	return out, err
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id int64) error {
	return s.d.Do(ctx, http.MethodPatch, fmt.Sprintf("/notifications/%d/read", id), nil, nil)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context) error {
	return s.d.Do(ctx, http.MethodPatch, "/notifications/read-all", nil, nil)
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := s.d.Do(ctx, http.MethodGet, "/notifications/unread-count", nil, &out)
	return out.Count, err
}

func (s *NotificationService) Preferences(ctx context.Context) ([]NotificationPreference, error) {
	var out []NotificationPreference
	err := s.d.Do(ctx, http.MethodGet, "/notifications/preferences", nil, &out)
	return out, err
}

func (s *NotificationService) UpdatePreferences(ctx context.Context, prefs []NotificationPreference) error {
	return s.d.Do(ctx, http.MethodPut, "/notifications/preferences", prefs, nil)
}
