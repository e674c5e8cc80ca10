package models

import (
	"fmt"
	"time"
)

// Conversation is a 1:1 or group chat. Non-group conversations carry a
// PairKey ("<minID>:<maxID>") with a unique index so resolving a 1:1 chat is
// a single indexed lookup and concurrent creates converge on one row.
// Group conversations leave PairKey NULL.
type Conversation struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	IsGroup       bool       `gorm:"not null;default:false" json:"is_group"`
	GroupName     string     `gorm:"size:100" json:"group_name,omitempty"`
	GroupPhoto    string     `json:"group_photo,omitempty"`
	PairKey       *string    `gorm:"size:41;uniqueIndex" json:"-"`
	LastMessageAt *time.Time `gorm:"index" json:"last_message_at"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
}

// ConversationParticipant joins a user to a conversation and carries the
// per-user read state. Unique per (conversation, user).
type ConversationParticipant struct {
	ConversationID uint       `gorm:"primaryKey" json:"conversation_id"`
	UserID         uint       `gorm:"primaryKey" json:"user_id"`
	JoinedAt       time.Time  `gorm:"autoCreateTime" json:"joined_at"`
	LastReadAt     *time.Time `json:"last_read_at"`
	UnreadCount    int        `gorm:"not null;default:0" json:"unread_count"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// PairKey builds the canonical unordered key for a 1:1 conversation.
func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

type ConversationResponse struct {
	ID            uint           `json:"id"`
	IsGroup       bool           `json:"is_group"`
	GroupName     string         `json:"group_name,omitempty"`
	GroupPhoto    string         `json:"group_photo,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	LastMessageAt *time.Time     `json:"last_message_at"`
	Participants  []UserResponse `json:"participants,omitempty"`
}

func (c *Conversation) ToResponse() ConversationResponse {
	resp := ConversationResponse{
		ID:            c.ID,
		IsGroup:       c.IsGroup,
		GroupName:     c.GroupName,
		GroupPhoto:    c.GroupPhoto,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		LastMessageAt: c.LastMessageAt,
	}
	for _, p := range c.Participants {
		if p.User.ID != 0 {
			resp.Participants = append(resp.Participants, p.User.ToResponse())
		}
	}
	return resp
}

// ConversationSummary is one row of a user's conversation list: the
// conversation, the other side, the latest message preview and the caller's
// unread count.
type ConversationSummary struct {
	ID            uint           `json:"id"`
	IsGroup       bool           `json:"is_group"`
	Name          string         `json:"name"`
	Photo         string         `json:"photo,omitempty"`
	Participants  []UserResponse `json:"participants"`
	Preview       string         `json:"preview"`
	PreviewSender uint           `json:"preview_sender,omitempty"`
	LastMessageAt *time.Time     `json:"last_message_at"`
	UnreadCount   int            `json:"unread_count"`
}
