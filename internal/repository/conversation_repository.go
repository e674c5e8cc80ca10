package repository

import (
	"time"

	"github.com/unilinkhq/messaging-backend/internal/models"
	"gorm.io/gorm"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(conv *models.Conversation, participantIDs []uint) error {
	return r.createInTx(conv, participantIDs, nil)
}

func (r *ConversationRepository) CreateWithSystemMessage(conv *models.Conversation, participantIDs []uint, system *models.Message) error {
	return r.createInTx(conv, participantIDs, system)
}

func (r *ConversationRepository) createInTx(conv *models.Conversation, participantIDs []uint, system *models.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		now := time.Now()
		for _, id := range participantIDs {
			p := models.ConversationParticipant{
				ConversationID: conv.ID,
				UserID:         id,
				JoinedAt:       now,
				UnreadCount:    0,
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}
		if system != nil {
			system.ConversationID = conv.ID
			if err := tx.Create(system).Error; err != nil {
				return err
			}
			if err := tx.Model(conv).Updates(map[string]interface{}{
				"last_message_at": now,
				"updated_at":      now,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ConversationRepository) FindByID(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.Preload("Participants.User").First(&conv, id).Error
	return &conv, err
}

func (r *ConversationRepository) FindByPairKey(key string) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.Preload("Participants.User").
		Where("pair_key = ?", key).
		First(&conv).Error
	return &conv, err
}

func (r *ConversationRepository) IsParticipant(conversationID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ConversationRepository) GetParticipant(conversationID, userID uint) (*models.ConversationParticipant, error) {
	var p models.ConversationParticipant
	err := r.db.
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&p).Error
	return &p, err
}

func (r *ConversationRepository) ListParticipants(conversationID uint) ([]models.ConversationParticipant, error) {
	var participants []models.ConversationParticipant
	err := r.db.Preload("User").
		Where("conversation_id = ?", conversationID).
		Find(&participants).Error
	return participants, err
}

// ListParticipantUsers batch-loads the member users of several conversations
// keyed by conversation id. One query for the join rows, one for the users.
func (r *ConversationRepository) ListParticipantUsers(conversationIDs []uint) (map[uint][]models.User, error) {
	result := make(map[uint][]models.User, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return result, nil
	}

	var rows []models.ConversationParticipant
	if err := r.db.Where("conversation_id IN ?", conversationIDs).Find(&rows).Error; err != nil {
		return nil, err
	}

	userIDs := make([]uint, 0, len(rows))
	seen := make(map[uint]bool, len(rows))
	for _, row := range rows {
		if !seen[row.UserID] {
			seen[row.UserID] = true
			userIDs = append(userIDs, row.UserID)
		}
	}

	var users []models.User
	if err := r.db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for _, row := range rows {
		if u, ok := byID[row.UserID]; ok {
			result[row.ConversationID] = append(result[row.ConversationID], u)
		}
	}
	return result, nil
}
