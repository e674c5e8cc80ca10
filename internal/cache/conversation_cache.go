package cache

import (
	"fmt"
	"time"

	"github.com/unilinkhq/messaging-backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// ConversationListTTL keeps list reads cheap between sends; every send
	// and mark-read invalidates, so the TTL only bounds staleness for
	// writes from other instances.
	ConversationListTTL = 2 * time.Minute
)

// ConversationCache caches per-user conversation list payloads, msgpack
// encoded. Nil-safe: with no Redis every call is a miss.
type ConversationCache struct {
	redis *RedisCache
}

func NewConversationCache(redis *RedisCache) *ConversationCache {
	return &ConversationCache{redis: redis}
}

func listKey(userID uint) string {
	return fmt.Sprintf("convlist:%d", userID)
}

func (cc *ConversationCache) GetList(userID uint) ([]models.ConversationSummary, bool) {
	if cc == nil || cc.redis == nil {
		return nil, false
	}
	data, err := cc.redis.Get(listKey(userID))
	if err != nil || data == nil {
		return nil, false
	}
	var summaries []models.ConversationSummary
	if err := msgpack.Unmarshal(data, &summaries); err != nil {
		return nil, false
	}
	return summaries, true
}

func (cc *ConversationCache) SetList(userID uint, summaries []models.ConversationSummary) error {
	if cc == nil || cc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(summaries)
	if err != nil {
		return err
	}
	return cc.redis.Set(listKey(userID), data, ConversationListTTL)
}

// InvalidateLists drops the cached lists of every given user, typically all
// participants of a conversation that just changed.
func (cc *ConversationCache) InvalidateLists(userIDs ...uint) error {
	if cc == nil || cc.redis == nil {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = listKey(id)
	}
	return cc.redis.Delete(keys...)
}
