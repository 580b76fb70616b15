package notification

import "time"

// Type tags raised by the portal's producer flows. The store treats the
// type as an opaque string; these constants just keep producers consistent.
const (
	TypeFine   = "Fine"
	TypeReport = "Report"
)

// Notification is one durable entry in a user's notification log.
// Records are append-mostly: after creation the only permitted mutation is
// the is_read flip, and that flip never reverts.
type Notification struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	UserID    int64     `gorm:"column:user_id;index:idx_notifications_user_unread" json:"user_id"`
	Type      string    `gorm:"column:type" json:"type"`
	Title     string    `gorm:"column:title" json:"title"`
	Message   string    `gorm:"column:message" json:"message"`
	DataJSON  *string   `gorm:"column:data_json" json:"data_json,omitempty"`
	IsRead    bool      `gorm:"column:is_read;index:idx_notifications_user_unread" json:"is_read"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_notifications_user_created" json:"created_at"`
}

// TableName specifies table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
