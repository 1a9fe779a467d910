package model

import "time"

type NotificationType string

const (
	NotificationJob      NotificationType = "job"
	NotificationRating   NotificationType = "rating"
	NotificationSystem   NotificationType = "system"
	NotificationPayment  NotificationType = "payment"
	NotificationPromo    NotificationType = "promo"
	NotificationAlert    NotificationType = "alert"
	NotificationReminder NotificationType = "reminder"
	NotificationOther    NotificationType = "other"
)

type NotificationStatus string

const (
	NotificationUnread   NotificationStatus = "unread"
	NotificationRead     NotificationStatus = "read"
	NotificationArchived NotificationStatus = "archived"
)

type NotificationMetadata struct {
	JobID     string         `json:"jobId,omitempty" bson:"jobId,omitempty"`
	PaymentID string         `json:"paymentId,omitempty" bson:"paymentId,omitempty"`
	DisputeID string         `json:"disputeId,omitempty" bson:"disputeId,omitempty"`
	Extra     map[string]any `json:"extra,omitempty" bson:"extra,omitempty"`
}

type Notification struct {
	ID        string                `json:"id,omitempty" bson:"_id,omitempty"`
	Sender    *Party                `json:"sender,omitempty" bson:"sender,omitempty" validate:"omitempty"`
	Receiver  Party                 `json:"receiver" bson:"receiver" validate:"required"`
	Type      NotificationType      `json:"type" bson:"type" validate:"required,oneof=job rating system payment promo alert reminder other"`
	Title     string                `json:"title" bson:"title" validate:"required,max=200"`
	Message   string                `json:"message" bson:"message" validate:"required,max=2000"`
	Status    NotificationStatus    `json:"status" bson:"status" validate:"omitempty,oneof=unread read archived"`
	Metadata  *NotificationMetadata `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time             `json:"createdAt" bson:"createdAt"`
}

// FeedItem is the normalized shape returned by the notification feed.
type FeedItem struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Read    bool             `json:"read"`
	Time    time.Time        `json:"time"`
	Type    NotificationType `json:"type"`
}

func (n *Notification) FeedItem() FeedItem {
	return FeedItem{
		ID:      n.ID,
		Title:   n.Title,
		Message: n.Message,
		Read:    n.Status == NotificationRead,
		Time:    n.CreatedAt,
		Type:    n.Type,
	}
}

// NewNotification builds an unread notification for receiver.
func NewNotification(receiver Party, typ NotificationType, title, message string) *Notification {
	return &Notification{
		Receiver: receiver,
		Type:     typ,
		Title:    title,
		Message:  message,
		Status:   NotificationUnread,
	}
}

func (n *Notification) From(sender Party) *Notification {
	n.Sender = &sender
	return n
}

func (n *Notification) WithMetadata(md NotificationMetadata) *Notification {
	n.Metadata = &md
	return n
}
