package models

import (
	"time"
)

type MessageType string

const (
	TextMessage   MessageType = "text"
	ImageMessage  MessageType = "image"
	FileMessage   MessageType = "file"
	SystemMessage MessageType = "system"
)

// Message is immutable once created; there is no edit or delete path.
// Within a conversation messages are ordered by created_at with ties broken
// by id.
type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_conv_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ClientID lets senders retry without duplicating the message.
	ClientID string `gorm:"type:varchar(36);uniqueIndex:idx_client_sender" json:"client_id,omitempty"`

	ConversationID uint         `gorm:"not null;index:idx_conv_created,priority:1" json:"conversation_id"`
	Conversation   Conversation `gorm:"foreignKey:ConversationID" json:"-"`
	SenderID       uint         `gorm:"not null;uniqueIndex:idx_client_sender" json:"sender_id"`
	Sender         User         `gorm:"foreignKey:SenderID" json:"sender"`

	Content     string      `gorm:"type:text" json:"content"`
	MessageType MessageType `gorm:"type:varchar(20);default:'text'" json:"message_type"`

	FileURL  string `json:"file_url,omitempty"`
	FileName string `json:"file_name,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

// HasFile reports whether the message carries an attachment reference.
func (m *Message) HasFile() bool {
	return m.FileURL != ""
}

type MessageResponse struct {
	ID             uint         `json:"id"`
	ClientID       string       `json:"client_id,omitempty"`
	ConversationID uint         `json:"conversation_id"`
	SenderID       uint         `json:"sender_id"`
	Sender         UserResponse `json:"sender"`
	Content        string       `json:"content"`
	MessageType    MessageType  `json:"message_type"`
	FileURL        string       `json:"file_url,omitempty"`
	FileName       string       `json:"file_name,omitempty"`
	FileSize       int64        `json:"file_size,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ClientID:       m.ClientID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Sender:         m.Sender.ToResponse(),
		Content:        m.Content,
		MessageType:    m.MessageType,
		FileURL:        m.FileURL,
		FileName:       m.FileName,
		FileSize:       m.FileSize,
		CreatedAt:      m.CreatedAt,
	}
}

// FileRef is the metadata returned by an upload, attached to file/image
// messages.
type FileRef struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}
