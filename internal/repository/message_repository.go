package repository

import (
	"time"

	"github.com/unilinkhq/messaging-backend/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// CreateWithSideEffects inserts the message and, in the same transaction,
// bumps the conversation's activity timestamps and increments unread_count
// for every participant except the sender. Keeping the increment here (rather
// than a DB trigger) makes the unread invariant visible and testable.
func (r *MessageRepository) CreateWithSideEffects(message *models.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		now := message.CreatedAt
		if now.IsZero() {
			now = time.Now()
		}
		if err := tx.Model(&models.Conversation{}).
			Where("id = ?", message.ConversationID).
			Updates(map[string]interface{}{
				"last_message_at": now,
				"updated_at":      now,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.ConversationParticipant{}).
			Where("conversation_id = ? AND user_id <> ?", message.ConversationID, message.SenderID).
			UpdateColumn("unread_count", gorm.Expr("unread_count + 1")).Error
	})
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").First(&message, id).Error
	return &message, err
}

func (r *MessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").
		Where("client_id = ? AND sender_id = ?", clientID, senderID).
		First(&message).Error
	return &message, err
}

// FindPageBefore returns up to limit messages older than cursor (cursor 0
// means the newest page), in ascending created_at order. This is the
// canonical pagination for infinite-scroll-upward history.
func (r *MessageRepository) FindPageBefore(conversationID uint, cursor uint, limit int) ([]models.Message, error) {
	q := r.db.Preload("Sender").
		Where("conversation_id = ?", conversationID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}

	var messages []models.Message
	err := q.Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// FindPageOffset is the legacy offset pagination: page 0 is the oldest
// pageSize messages. Fragile under concurrent inserts; kept for
// compatibility only.
func (r *MessageRepository) FindPageOffset(conversationID uint, page, pageSize int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Offset(page * pageSize).
		Limit(pageSize).
		Find(&messages).Error
	return messages, err
}

// FindSince returns messages newer than lastMessageID, ascending. Used to
// close the gap after a dropped realtime connection.
func (r *MessageRepository) FindSince(conversationID uint, lastMessageID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("conversation_id = ? AND id > ?", conversationID, lastMessageID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// MarkConversationRead resets the participant's unread counter and stamps
// last_read_at. Returns the number of participant rows touched (0 means the
// user is not in the conversation).
func (r *MessageRepository) MarkConversationRead(conversationID, userID uint) (int64, error) {
	res := r.db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Updates(map[string]interface{}{
			"unread_count": 0,
			"last_read_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}
