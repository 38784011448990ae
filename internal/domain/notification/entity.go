package notification

import "time"

// Notification is an in-app message for one recipient: a contractor id for
// contractors, a user id for everyone else.
type Notification struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipientID string     `gorm:"type:varchar(36);not null;index:idx_notifications_recipient_unread" json:"recipientId"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	IsRead      bool       `gorm:"not null;index:idx_notifications_recipient_unread" json:"isRead"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}

func Models() []any {
	return []any{&Notification{}}
}
