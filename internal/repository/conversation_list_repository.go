package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ConversationSummaryRow is a denormalized row for one entry of a user's
// conversation list: the conversation, the caller's read state, the latest
// message and (for 1:1 chats) the peer's profile.
//
// Deliberately not the full models shape: it keeps the query to a single
// round trip and avoids leaking fields the list never shows.
type ConversationSummaryRow struct {
	ConversationID uint       `gorm:"column:conversation_id"`
	IsGroup        bool       `gorm:"column:is_group"`
	GroupName      string     `gorm:"column:group_name"`
	GroupPhoto     string     `gorm:"column:group_photo"`
	UpdatedAt      time.Time  `gorm:"column:conv_updated_at"`
	LastMessageAt  *time.Time `gorm:"column:last_message_at"`

	UnreadCount int        `gorm:"column:unread_count"`
	LastReadAt  *time.Time `gorm:"column:last_read_at"`

	MessageID        uint       `gorm:"column:message_id"`
	MessageSenderID  uint       `gorm:"column:message_sender_id"`
	MessageContent   string     `gorm:"column:message_content"`
	MessageType      string     `gorm:"column:message_type"`
	MessageFileName  string     `gorm:"column:message_file_name"`
	MessageCreatedAt *time.Time `gorm:"column:message_created_at"`

	PeerID         uint       `gorm:"column:peer_id"`
	PeerUsername   string     `gorm:"column:peer_username"`
	PeerFirstName  string     `gorm:"column:peer_first_name"`
	PeerLastName   string     `gorm:"column:peer_last_name"`
	PeerAvatar     string     `gorm:"column:peer_avatar"`
	PeerUniversity string     `gorm:"column:peer_university"`
	PeerCity       string     `gorm:"column:peer_city"`
	PeerIsOnline   bool       `gorm:"column:peer_is_online"`
	PeerLastSeen   *time.Time `gorm:"column:peer_last_seen"`
}

type ConversationListRepository struct {
	db *gorm.DB
}

func NewConversationListRepository(db *gorm.DB) *ConversationListRepository {
	return &ConversationListRepository{db: db}
}

// ListForUser returns the caller's conversations, most recent activity first.
// One query: the latest message comes from a lateral subquery, the 1:1 peer
// from a self-join on the participant table. Group members are resolved by
// the caller in a separate batched lookup.
func (r *ConversationListRepository) ListForUser(userID uint, limit int) ([]ConversationSummaryRow, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	query := strings.TrimSpace(`
SELECT
	c.id AS conversation_id,
	c.is_group,
	c.group_name,
	c.group_photo,
	c.updated_at AS conv_updated_at,
	c.last_message_at,
	p.unread_count,
	p.last_read_at,
	COALESCE(m.id, 0) AS message_id,
	COALESCE(m.sender_id, 0) AS message_sender_id,
	COALESCE(m.content, '') AS message_content,
	COALESCE(m.message_type, '') AS message_type,
	COALESCE(m.file_name, '') AS message_file_name,
	m.created_at AS message_created_at,
	COALESCE(peer.id, 0) AS peer_id,
	COALESCE(peer.username, '') AS peer_username,
	COALESCE(peer.first_name, '') AS peer_first_name,
	COALESCE(peer.last_name, '') AS peer_last_name,
	COALESCE(peer.avatar, '') AS peer_avatar,
	COALESCE(peer.university, '') AS peer_university,
	COALESCE(peer.city, '') AS peer_city,
	COALESCE(peer.is_online, false) AS peer_is_online,
	peer.last_seen AS peer_last_seen
FROM conversation_participants p
JOIN conversations c ON c.id = p.conversation_id
LEFT JOIN LATERAL (
	SELECT id, sender_id, content, message_type, file_name, created_at
	FROM messages
	WHERE conversation_id = c.id
	ORDER BY created_at DESC, id DESC
	LIMIT 1
) m ON true
LEFT JOIN conversation_participants other
	ON other.conversation_id = c.id AND other.user_id <> p.user_id AND c.is_group = false
LEFT JOIN users peer ON peer.id = other.user_id
WHERE p.user_id = ?
ORDER BY COALESCE(c.last_message_at, c.updated_at) DESC, c.id DESC
LIMIT ?
`)

	var rows []ConversationSummaryRow
	err := r.db.Raw(query, userID, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
