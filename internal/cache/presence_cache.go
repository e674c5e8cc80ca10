package cache

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// OnlineTTL matches the hub's pong timeout so a crashed connection
	// ages out on its own.
	OnlineTTL = 90 * time.Second
	// TypingTTL mirrors the hub's typing lease; the key is only a
	// cross-instance hint and expires on its own if the clear is lost.
	TypingTTL = 3 * time.Second
)

// PresenceCache mirrors ephemeral presence (online, typing) into Redis with
// TTLs. Nothing here is durable state; the in-process hub remains the source
// of truth for its own connections.
type PresenceCache struct {
	redis *RedisCache
}

func NewPresenceCache(redis *RedisCache) *PresenceCache {
	return &PresenceCache{redis: redis}
}

func (pc *PresenceCache) SetUserOnline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetAdd("online:users", userID); err != nil {
		return err
	}
	return pc.redis.Set(fmt.Sprintf("online:%d", userID), []byte("1"), OnlineTTL)
}

func (pc *PresenceCache) SetUserOffline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetRemove("online:users", userID); err != nil {
		return err
	}
	return pc.redis.Delete(fmt.Sprintf("online:%d", userID))
}

func (pc *PresenceCache) IsUserOnline(userID uint) bool {
	if pc == nil || pc.redis == nil {
		return false
	}
	return pc.redis.Exists(fmt.Sprintf("online:%d", userID))
}

func (pc *PresenceCache) GetOnlineUsers() ([]uint, error) {
	if pc == nil || pc.redis == nil {
		return nil, nil
	}
	members, err := pc.redis.SetMembers("online:users")
	if err != nil {
		return nil, err
	}
	userIDs := make([]uint, 0, len(members))
	for _, member := range members {
		if id, err := strconv.ParseUint(member, 10, 32); err == nil {
			userIDs = append(userIDs, uint(id))
		}
	}
	return userIDs, nil
}

func (pc *PresenceCache) SetTyping(conversationID, userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	key := fmt.Sprintf("typing:%d:%d", conversationID, userID)
	return pc.redis.Set(key, []byte("1"), TypingTTL)
}

func (pc *PresenceCache) ClearTyping(conversationID, userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	return pc.redis.Delete(fmt.Sprintf("typing:%d:%d", conversationID, userID))
}
