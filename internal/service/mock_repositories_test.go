package service

import (
	"sort"
	"strings"
	"time"

	"github.com/unilinkhq/messaging-backend/internal/models"
	"github.com/unilinkhq/messaging-backend/internal/repository"
	"gorm.io/gorm"
)

// MockConversationRepository is an in-memory ConversationRepositoryInterface.
type MockConversationRepository struct {
	convs        map[uint]*models.Conversation
	participants map[uint][]*models.ConversationParticipant
	users        map[uint]models.User
	systemMsgs   []*models.Message
	nextID       uint

	// onCreate runs once at the start of the next Create, before the
	// pair-key check. Tests use it to slip a competing insert in between
	// the service's lookup and its create.
	onCreate func()
}

func NewMockConversationRepository() *MockConversationRepository {
	return &MockConversationRepository{
		convs:        make(map[uint]*models.Conversation),
		participants: make(map[uint][]*models.ConversationParticipant),
		users:        make(map[uint]models.User),
		nextID:       1,
	}
}

func (m *MockConversationRepository) AddUser(u models.User) {
	m.users[u.ID] = u
}

func (m *MockConversationRepository) Create(conv *models.Conversation, participantIDs []uint) error {
	return m.CreateWithSystemMessage(conv, participantIDs, nil)
}

func (m *MockConversationRepository) CreateWithSystemMessage(conv *models.Conversation, participantIDs []uint, system *models.Message) error {
	if m.onCreate != nil {
		hook := m.onCreate
		m.onCreate = nil
		hook()
	}
	if conv.PairKey != nil {
		for _, existing := range m.convs {
			if existing.PairKey != nil && *existing.PairKey == *conv.PairKey {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if conv.ID == 0 {
		conv.ID = m.nextID
		m.nextID++
	}
	now := time.Now()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	m.convs[conv.ID] = conv
	for _, id := range participantIDs {
		m.participants[conv.ID] = append(m.participants[conv.ID], &models.ConversationParticipant{
			ConversationID: conv.ID,
			UserID:         id,
			JoinedAt:       now,
		})
	}
	if system != nil {
		system.ConversationID = conv.ID
		system.CreatedAt = now
		m.systemMsgs = append(m.systemMsgs, system)
		conv.LastMessageAt = &now
	}
	return nil
}

func (m *MockConversationRepository) FindByID(id uint) (*models.Conversation, error) {
	conv, ok := m.convs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.withParticipants(conv), nil
}

func (m *MockConversationRepository) FindByPairKey(key string) (*models.Conversation, error) {
	for _, conv := range m.convs {
		if conv.PairKey != nil && *conv.PairKey == key {
			return m.withParticipants(conv), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockConversationRepository) withParticipants(conv *models.Conversation) *models.Conversation {
	out := *conv
	out.Participants = nil
	for _, p := range m.participants[conv.ID] {
		row := *p
		if u, ok := m.users[p.UserID]; ok {
			row.User = u
		}
		out.Participants = append(out.Participants, row)
	}
	return &out
}

func (m *MockConversationRepository) IsParticipant(conversationID, userID uint) (bool, error) {
	for _, p := range m.participants[conversationID] {
		if p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockConversationRepository) GetParticipant(conversationID, userID uint) (*models.ConversationParticipant, error) {
	for _, p := range m.participants[conversationID] {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockConversationRepository) ListParticipants(conversationID uint) ([]models.ConversationParticipant, error) {
	var out []models.ConversationParticipant
	for _, p := range m.participants[conversationID] {
		row := *p
		if u, ok := m.users[p.UserID]; ok {
			row.User = u
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *MockConversationRepository) ListParticipantUsers(conversationIDs []uint) (map[uint][]models.User, error) {
	result := make(map[uint][]models.User)
	for _, convID := range conversationIDs {
		for _, p := range m.participants[convID] {
			if u, ok := m.users[p.UserID]; ok {
				result[convID] = append(result[convID], u)
			}
		}
	}
	return result, nil
}

// MockMessageRepository is an in-memory MessageRepositoryInterface. It
// shares the conversation mock so send side effects (activity bump, unread
// increments) land where the tests can see them.
type MockMessageRepository struct {
	messages map[uint]*models.Message
	order    []uint
	nextID   uint
	convRepo *MockConversationRepository
	// clock advances per insert so created_at strictly increases.
	clock time.Time
}

func NewMockMessageRepository(convRepo *MockConversationRepository) *MockMessageRepository {
	return &MockMessageRepository{
		messages: make(map[uint]*models.Message),
		nextID:   1,
		convRepo: convRepo,
		clock:    time.Now(),
	}
}

func (m *MockMessageRepository) CreateWithSideEffects(message *models.Message) error {
	if message.ID == 0 {
		message.ID = m.nextID
		m.nextID++
	}
	m.clock = m.clock.Add(time.Millisecond)
	message.CreatedAt = m.clock
	message.UpdatedAt = m.clock
	m.messages[message.ID] = message
	m.order = append(m.order, message.ID)

	if conv, ok := m.convRepo.convs[message.ConversationID]; ok {
		t := message.CreatedAt
		conv.LastMessageAt = &t
		conv.UpdatedAt = t
	}
	for _, p := range m.convRepo.participants[message.ConversationID] {
		if p.UserID != message.SenderID {
			p.UnreadCount++
		}
	}
	return nil
}

func (m *MockMessageRepository) FindByID(id uint) (*models.Message, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *msg
	if u, ok := m.convRepo.users[msg.SenderID]; ok {
		out.Sender = u
	}
	return &out, nil
}

func (m *MockMessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	for _, msg := range m.messages {
		if msg.ClientID == clientID && msg.SenderID == senderID {
			return msg, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockMessageRepository) sorted(conversationID uint) []*models.Message {
	var msgs []*models.Message
	for _, id := range m.order {
		msg := m.messages[id]
		if msg.ConversationID == conversationID {
			msgs = append(msgs, msg)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs
}

func (m *MockMessageRepository) FindPageBefore(conversationID uint, cursor uint, limit int) ([]models.Message, error) {
	msgs := m.sorted(conversationID)
	var filtered []*models.Message
	for _, msg := range msgs {
		if cursor > 0 && msg.ID >= cursor {
			continue
		}
		filtered = append(filtered, msg)
	}
	if len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	out := make([]models.Message, len(filtered))
	for i, msg := range filtered {
		out[i] = *msg
	}
	return out, nil
}

func (m *MockMessageRepository) FindPageOffset(conversationID uint, page, pageSize int) ([]models.Message, error) {
	msgs := m.sorted(conversationID)
	start := page * pageSize
	if start >= len(msgs) {
		return []models.Message{}, nil
	}
	end := start + pageSize
	if end > len(msgs) {
		end = len(msgs)
	}
	out := make([]models.Message, 0, end-start)
	for _, msg := range msgs[start:end] {
		out = append(out, *msg)
	}
	return out, nil
}

func (m *MockMessageRepository) FindSince(conversationID uint, lastMessageID uint, limit int) ([]models.Message, error) {
	msgs := m.sorted(conversationID)
	out := make([]models.Message, 0)
	for _, msg := range msgs {
		if msg.ID <= lastMessageID {
			continue
		}
		out = append(out, *msg)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockMessageRepository) MarkConversationRead(conversationID, userID uint) (int64, error) {
	now := time.Now()
	var affected int64
	for _, p := range m.convRepo.participants[conversationID] {
		if p.UserID == userID {
			p.UnreadCount = 0
			p.LastReadAt = &now
			affected++
		}
	}
	return affected, nil
}

// MockConversationListRepository returns canned summary rows.
type MockConversationListRepository struct {
	rows []repository.ConversationSummaryRow
	err  error
}

func (m *MockConversationListRepository) ListForUser(userID uint, limit int) ([]repository.ConversationSummaryRow, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.rows) > limit {
		return m.rows[:limit], nil
	}
	return m.rows, nil
}

// MockUserRepository serves read-only reference users.
type MockUserRepository struct {
	users map[uint]*models.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uint]*models.User)}
}

func (m *MockUserRepository) AddUser(u models.User) {
	copied := u
	m.users[u.ID] = &copied
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByIDs(ids []uint) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *MockUserRepository) SearchUsers(query string, limit int) ([]models.User, error) {
	query = strings.ToLower(query)
	var ids []uint
	for id, u := range m.users {
		haystack := strings.ToLower(u.Username + " " + u.FirstName + " " + u.LastName)
		if strings.Contains(haystack, query) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.users[id])
	}
	return out, nil
}
