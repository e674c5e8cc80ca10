package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/unilinkhq/messaging-backend/internal/apperr"
	"github.com/unilinkhq/messaging-backend/internal/models"
	"github.com/unilinkhq/messaging-backend/internal/repository"
	"github.com/unilinkhq/messaging-backend/internal/validation"
	"gorm.io/gorm"
)

type MessageService struct {
	messageRepo      repository.MessageRepositoryInterface
	conversationRepo repository.ConversationRepositoryInterface
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	conversationRepo repository.ConversationRepositoryInterface,
) *MessageService {
	return &MessageService{
		messageRepo:      messageRepo,
		conversationRepo: conversationRepo,
	}
}

type SendMessageInput struct {
	ConversationID uint               `json:"conversation_id"`
	ClientID       string             `json:"client_id"`
	Content        string             `json:"content"`
	MessageType    models.MessageType `json:"message_type"`
	File           *models.FileRef    `json:"file"`
}

// SendMessage validates, persists and returns the message with its sender
// loaded. Validation failures never reach the store. The insert, the
// conversation's activity bump and the other participants' unread increments
// happen in one transaction.
func (s *MessageService) SendMessage(senderID uint, input SendMessageInput) (*models.Message, error) {
	if !validation.ValidMessageContent(input.Content, input.File != nil) {
		return nil, apperr.ErrInvalidMessage
	}

	ok, err := s.conversationRepo.IsParticipant(input.ConversationID, senderID)
	if err != nil {
		return nil, apperr.Persistence("check participant", err)
	}
	if !ok {
		return nil, apperr.ErrNotFound
	}

	// Retries with the same client id return the already-stored message.
	if input.ClientID != "" {
		if existing, err := s.messageRepo.FindByClientID(input.ClientID, senderID); err == nil {
			return existing, nil
		}
	} else {
		input.ClientID = uuid.NewString()
	}

	message := &models.Message{
		ClientID:       input.ClientID,
		ConversationID: input.ConversationID,
		SenderID:       senderID,
		Content:        validation.TrimAndLimit(input.Content, validation.MaxMessageLength()),
		MessageType:    input.MessageType,
	}
	if message.MessageType == "" {
		message.MessageType = models.TextMessage
	}
	if input.File != nil {
		message.FileURL = input.File.URL
		message.FileName = input.File.Name
		message.FileSize = input.File.Size
		if message.MessageType == models.TextMessage {
			message.MessageType = models.FileMessage
		}
	}

	if err := s.messageRepo.CreateWithSideEffects(message); err != nil {
		return nil, apperr.Persistence("send message", err)
	}
	return s.GetMessage(message.ID)
}

// GetMessage loads a single message with its sender joined.
func (s *MessageService) GetMessage(id uint) (*models.Message, error) {
	message, err := s.messageRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Persistence("load message", err)
	}
	return message, nil
}

// GetMessagesBefore is cursor pagination: cursor 0 returns the newest page,
// otherwise messages strictly older than the cursor id. Each page is in
// ascending created_at order, so concatenating pages newest-cursor-backward
// and reversing page order yields the full ascending history.
func (s *MessageService) GetMessagesBefore(conversationID uint, cursor uint, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	messages, err := s.messageRepo.FindPageBefore(conversationID, cursor, limit)
	if err != nil {
		return nil, apperr.Persistence("fetch messages", err)
	}
	return messages, nil
}

// GetConversationMessages is the legacy offset contract: page 0 is the
// oldest pageSize messages.
func (s *MessageService) GetConversationMessages(conversationID uint, page, pageSize int) ([]models.Message, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}
	if page < 0 {
		page = 0
	}
	messages, err := s.messageRepo.FindPageOffset(conversationID, page, pageSize)
	if err != nil {
		return nil, apperr.Persistence("fetch messages", err)
	}
	return messages, nil
}

// GetMessagesSince returns messages newer than lastMessageID, for catching
// up after a realtime gap.
func (s *MessageService) GetMessagesSince(conversationID uint, lastMessageID uint, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	messages, err := s.messageRepo.FindSince(conversationID, lastMessageID, limit)
	if err != nil {
		return nil, apperr.Persistence("sync messages", err)
	}
	return messages, nil
}

// MarkRead zeroes the caller's unread counter for the conversation and
// stamps last_read_at. Idempotent.
func (s *MessageService) MarkRead(conversationID, userID uint) error {
	affected, err := s.messageRepo.MarkConversationRead(conversationID, userID)
	if err != nil {
		return apperr.Persistence("mark read", err)
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
