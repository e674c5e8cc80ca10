package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/unilinkhq/messaging-backend/internal/apperr"
	"github.com/unilinkhq/messaging-backend/internal/models"
	"github.com/unilinkhq/messaging-backend/internal/repository"
	"gorm.io/gorm"
)

// ConversationService resolves and creates conversations. 1:1 resolution is
// an indexed pair-key lookup; concurrent creates for the same pair converge
// on a single row via the unique index.
type ConversationService struct {
	conversationRepo repository.ConversationRepositoryInterface
	userRepo         repository.UserRepositoryInterface
}

func NewConversationService(
	conversationRepo repository.ConversationRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
) *ConversationService {
	return &ConversationService{
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
	}
}

// FindExistingConversation returns the 1:1 conversation between the two
// users, or apperr.ErrNotFound.
func (s *ConversationService) FindExistingConversation(userA, userB uint) (*models.Conversation, error) {
	conv, err := s.conversationRepo.FindByPairKey(models.PairKey(userA, userB))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Persistence("find conversation", err)
	}
	return conv, nil
}

// GetOrCreateConversation returns the existing 1:1 conversation for the pair
// or creates it (conversation + both participant rows) in one transaction.
// When both sides call near-simultaneously, the loser of the unique-index
// race re-reads and returns the winner's row.
func (s *ConversationService) GetOrCreateConversation(userA, userB uint) (*models.Conversation, error) {
	if userA == userB {
		return nil, fmt.Errorf("cannot start a conversation with yourself")
	}

	conv, err := s.FindExistingConversation(userA, userB)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	// Creating: the peer must be a known user. An existing conversation
	// already proves that, so the check only runs on this path.
	if _, err := s.userRepo.FindByID(userB); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Persistence("check peer", err)
	}

	key := models.PairKey(userA, userB)
	conv = &models.Conversation{IsGroup: false, PairKey: &key}
	if err := s.conversationRepo.Create(conv, []uint{userA, userB}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.FindExistingConversation(userA, userB)
		}
		return nil, apperr.Persistence("create conversation", err)
	}
	return s.findByID(conv.ID)
}

// CreateGroupConversation creates a group with the creator plus the deduped
// invitees and appends a system message announcing it.
func (s *ConversationService) CreateGroupConversation(creatorID uint, participantIDs []uint, groupName string) (*models.Conversation, error) {
	members := dedupeWith(creatorID, participantIDs)
	if len(members) < 2 {
		return nil, fmt.Errorf("a group needs at least one other participant")
	}

	invitees := members[1:]
	found, err := s.userRepo.FindByIDs(invitees)
	if err != nil {
		return nil, apperr.Persistence("check participants", err)
	}
	if len(found) != len(invitees) {
		return nil, apperr.ErrNotFound
	}

	conv := &models.Conversation{
		IsGroup:   true,
		GroupName: groupName,
	}
	system := &models.Message{
		ClientID:    uuid.NewString(),
		SenderID:    creatorID,
		Content:     fmt.Sprintf("Created group %q", groupName),
		MessageType: models.SystemMessage,
	}
	if err := s.conversationRepo.CreateWithSystemMessage(conv, members, system); err != nil {
		return nil, apperr.Persistence("create group", err)
	}
	return s.findByID(conv.ID)
}

// GetConversation loads a conversation the caller participates in.
func (s *ConversationService) GetConversation(conversationID, userID uint) (*models.Conversation, error) {
	ok, err := s.IsParticipant(conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return s.findByID(conversationID)
}

func (s *ConversationService) IsParticipant(conversationID, userID uint) (bool, error) {
	ok, err := s.conversationRepo.IsParticipant(conversationID, userID)
	if err != nil {
		return false, apperr.Persistence("check participant", err)
	}
	return ok, nil
}

func (s *ConversationService) ListParticipants(conversationID uint) ([]models.ConversationParticipant, error) {
	participants, err := s.conversationRepo.ListParticipants(conversationID)
	if err != nil {
		return nil, apperr.Persistence("list participants", err)
	}
	return participants, nil
}

func (s *ConversationService) findByID(id uint) (*models.Conversation, error) {
	conv, err := s.conversationRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Persistence("load conversation", err)
	}
	return conv, nil
}

func dedupeWith(first uint, rest []uint) []uint {
	seen := map[uint]bool{first: true}
	out := []uint{first}
	for _, id := range rest {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
