package ws

import (
	"sync"
	"time"
)

// TypingLease is how long a typing signal stays alive without a refresh.
// Modeled as a lease rather than a set/clear flag so a lost "stop typing"
// event cannot leave a user typing forever.
const TypingLease = 3 * time.Second

// TypingTracker holds ephemeral per-conversation typing state. Nothing here
// is ever persisted.
type TypingTracker struct {
	mu       sync.Mutex
	ttl      time.Duration
	timers   map[uint]map[uint]*time.Timer // conversation -> user -> expiry
	onExpire func(conversationID, userID uint)
}

func NewTypingTracker(ttl time.Duration, onExpire func(conversationID, userID uint)) *TypingTracker {
	if ttl <= 0 {
		ttl = TypingLease
	}
	return &TypingTracker{
		ttl:      ttl,
		timers:   make(map[uint]map[uint]*time.Timer),
		onExpire: onExpire,
	}
}

// Set starts or refreshes the lease. Returns true when the user was not
// already typing (i.e. a start event should be broadcast).
func (t *TypingTracker) Set(conversationID, userID uint) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	byUser, ok := t.timers[conversationID]
	if !ok {
		byUser = make(map[uint]*time.Timer)
		t.timers[conversationID] = byUser
	}
	if timer, exists := byUser[userID]; exists {
		timer.Reset(t.ttl)
		return false
	}
	byUser[userID] = time.AfterFunc(t.ttl, func() {
		if t.Clear(conversationID, userID) && t.onExpire != nil {
			t.onExpire(conversationID, userID)
		}
	})
	return true
}

// Clear drops the lease. Returns true when the user was typing.
func (t *TypingTracker) Clear(conversationID, userID uint) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	byUser, ok := t.timers[conversationID]
	if !ok {
		return false
	}
	timer, exists := byUser[userID]
	if !exists {
		return false
	}
	timer.Stop()
	delete(byUser, userID)
	if len(byUser) == 0 {
		delete(t.timers, conversationID)
	}
	return true
}

// ClearUser drops every lease held by the user (connection teardown).
// Returns the conversations that were affected.
func (t *TypingTracker) ClearUser(userID uint) []uint {
	t.mu.Lock()
	defer t.mu.Unlock()

	var affected []uint
	for convID, byUser := range t.timers {
		if timer, exists := byUser[userID]; exists {
			timer.Stop()
			delete(byUser, userID)
			if len(byUser) == 0 {
				delete(t.timers, convID)
			}
			affected = append(affected, convID)
		}
	}
	return affected
}

// Users returns who is currently typing in the conversation.
func (t *TypingTracker) Users(conversationID uint) []uint {
	t.mu.Lock()
	defer t.mu.Unlock()

	byUser := t.timers[conversationID]
	users := make([]uint, 0, len(byUser))
	for userID := range byUser {
		users = append(users, userID)
	}
	return users
}
