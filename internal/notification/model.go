package notification

import "time"

// Kinds of notifications the app produces
const (
	KindFriendAdd   = "friend_add"
	KindGroupInvite = "group_invite"
	KindSettlement  = "settlement"
)

// Notification is an in-app message stored for a user. Delivery (mail, push)
// is out of scope; clients poll the list endpoint.
type Notification struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	SenderID     *int64    `json:"sender_id,omitempty"`
	Kind         string    `json:"kind"`
	Message      string    `json:"message"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceID   *int64    `json:"resource_id,omitempty"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"created_at"`

	// Populated via JOIN
	SenderName string `json:"sender_name,omitempty"`
}
