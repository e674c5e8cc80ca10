package testutil

import (
	"testing"
	"time"

	"github.com/unilinkhq/messaging-backend/internal/models"
	"gorm.io/gorm"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestUser creates a test user with default values
func (h *TestHelper) CreateTestUser(id uint, username string) *models.User {
	if id == 0 {
		id = 1
	}
	if username == "" {
		username = "testuser"
	}

	return &models.User{
		ID:         id,
		Username:   username,
		FirstName:  "Test",
		LastName:   "User",
		Avatar:     "https://example.com/avatar.jpg",
		University: "Test University",
		City:       "Testville",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// CreateTestConversation creates a 1:1 conversation between two users.
func (h *TestHelper) CreateTestConversation(id, userA, userB uint) *models.Conversation {
	if id == 0 {
		id = 1
	}
	key := models.PairKey(userA, userB)
	now := time.Now()
	return &models.Conversation{
		ID:        id,
		IsGroup:   false,
		PairKey:   &key,
		CreatedAt: now,
		UpdatedAt: now,
		Participants: []models.ConversationParticipant{
			{ConversationID: id, UserID: userA, JoinedAt: now},
			{ConversationID: id, UserID: userB, JoinedAt: now},
		},
	}
}

// CreateTestMessage creates a test message with default values
func (h *TestHelper) CreateTestMessage(id, conversationID, senderID uint, content string) *models.Message {
	if id == 0 {
		id = 1
	}
	if conversationID == 0 {
		conversationID = 1
	}
	if senderID == 0 {
		senderID = 1
	}
	if content == "" {
		content = "Test message"
	}

	return &models.Message{
		ID:             id,
		ClientID:       "client-" + string(rune('a'+id%26)),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    models.TextMessage,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
		Sender: models.User{
			ID:       senderID,
			Username: "sender",
		},
	}
}

// AssertError checks if an error occurred when it should (or shouldn't)
func (h *TestHelper) AssertError(err error, shouldErr bool, testName string) {
	if (err != nil) != shouldErr {
		if shouldErr {
			h.t.Errorf("%s: expected error but got nil", testName)
		} else {
			h.t.Errorf("%s: unexpected error: %v", testName, err)
		}
	}
}

// AssertEqual checks if two values are equal
func (h *TestHelper) AssertEqual(got, want interface{}, testName string) {
	if got != want {
		h.t.Errorf("%s: got %v, want %v", testName, got, want)
	}
}

// GetRecordNotFoundError returns the error repositories surface for a
// missing row.
func GetRecordNotFoundError() error {
	return gorm.ErrRecordNotFound
}
