package repository

import (
	"github.com/unilinkhq/messaging-backend/internal/models"
)

// ConversationRepositoryInterface defines the contract for conversation and
// participant row operations.
type ConversationRepositoryInterface interface {
	Create(conv *models.Conversation, participantIDs []uint) error
	CreateWithSystemMessage(conv *models.Conversation, participantIDs []uint, system *models.Message) error
	FindByID(id uint) (*models.Conversation, error)
	FindByPairKey(key string) (*models.Conversation, error)
	IsParticipant(conversationID, userID uint) (bool, error)
	GetParticipant(conversationID, userID uint) (*models.ConversationParticipant, error)
	ListParticipants(conversationID uint) ([]models.ConversationParticipant, error)
	ListParticipantUsers(conversationIDs []uint) (map[uint][]models.User, error)
}

// MessageRepositoryInterface defines the contract for message row operations.
type MessageRepositoryInterface interface {
	// CreateWithSideEffects inserts the message, bumps the conversation's
	// updated_at/last_message_at and increments every other participant's
	// unread_count in one transaction.
	CreateWithSideEffects(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	FindByClientID(clientID string, senderID uint) (*models.Message, error)
	FindPageBefore(conversationID uint, cursor uint, limit int) ([]models.Message, error)
	FindPageOffset(conversationID uint, page, pageSize int) ([]models.Message, error)
	FindSince(conversationID uint, lastMessageID uint, limit int) ([]models.Message, error)
	MarkConversationRead(conversationID, userID uint) (int64, error)
}

// ConversationListRepositoryInterface produces the denormalized rows behind
// a user's conversation list.
type ConversationListRepositoryInterface interface {
	ListForUser(userID uint, limit int) ([]ConversationSummaryRow, error)
}

// UserRepositoryInterface defines read-only access to reference user data.
type UserRepositoryInterface interface {
	FindByID(id uint) (*models.User, error)
	FindByIDs(ids []uint) ([]models.User, error)
	SearchUsers(query string, limit int) ([]models.User, error)
}
