package notification

import "time"

// NotificationResponse is the wire shape shared by the REST endpoints and
// the "notify" push event.
type NotificationResponse struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	DataJSON  *string `json:"data_json,omitempty"`
	IsRead    bool    `json:"is_read"`
	CreatedAt string  `json:"created_at"`
}

// ResponseFromEntity converts entity to response DTO
func ResponseFromEntity(n *Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		DataJSON:  n.DataJSON,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Counts is the total/unread pair and the wire shape of the
// "notifyCounts" push event. The two numbers are read best-effort, not as
// a transactional snapshot.
type Counts struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

// CreateNotificationRequest for creating notifications via API
type CreateNotificationRequest struct {
	UserID   int64   `json:"user_id" validate:"required,gt=0"`
	Type     string  `json:"type" validate:"required"`
	Title    string  `json:"title" validate:"required,max=255"`
	Message  string  `json:"message" validate:"required"`
	DataJSON *string `json:"data_json,omitempty"`
}

// ListResponse for the list endpoint
type ListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	UnreadCount   int64                   `json:"unread_count"`
	Total         int64                   `json:"total"`
}

// UnreadCountResponse for the unread count endpoint
type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

// MarkAllReadResponse for the read-all endpoint
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// notifyPayload is the payload of the "notify" push event.
type notifyPayload struct {
	Notification *NotificationResponse `json:"notification"`
	Counts       Counts                `json:"counts"`
}
