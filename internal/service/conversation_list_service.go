package service

import (
	"log"
	"sort"

	"github.com/unilinkhq/messaging-backend/internal/apperr"
	"github.com/unilinkhq/messaging-backend/internal/cache"
	"github.com/unilinkhq/messaging-backend/internal/models"
	"github.com/unilinkhq/messaging-backend/internal/repository"
	"github.com/unilinkhq/messaging-backend/internal/validation"
)

// ConversationListService assembles a user's conversation list: peers,
// latest-message preview and unread count per conversation. The repository
// does the heavy join in one query; group member enrichment is a second
// batched lookup. Enrichment failures degrade to placeholders instead of
// failing the list.
type ConversationListService struct {
	listRepo         repository.ConversationListRepositoryInterface
	conversationRepo repository.ConversationRepositoryInterface
	listCache        *cache.ConversationCache
}

func NewConversationListService(
	listRepo repository.ConversationListRepositoryInterface,
	conversationRepo repository.ConversationRepositoryInterface,
	listCache *cache.ConversationCache,
) *ConversationListService {
	return &ConversationListService{
		listRepo:         listRepo,
		conversationRepo: conversationRepo,
		listCache:        listCache,
	}
}

const unknownParticipant = "Unknown"

// listFetchLimit is the window the repository query and the cache always
// cover; callers get a slice of it. One cache entry per user then serves any
// requested limit.
const listFetchLimit = 100

func (s *ConversationListService) ListConversations(userID uint, limit int) ([]models.ConversationSummary, error) {
	if limit <= 0 || limit > listFetchLimit {
		limit = 50
	}

	if cached, ok := s.listCache.GetList(userID); ok {
		return trimSummaries(cached, limit), nil
	}

	rows, err := s.listRepo.ListForUser(userID, listFetchLimit)
	if err != nil {
		return nil, apperr.Persistence("list conversations", err)
	}
	if len(rows) == 0 {
		return []models.ConversationSummary{}, nil
	}

	groupIDs := make([]uint, 0)
	for _, row := range rows {
		if row.IsGroup {
			groupIDs = append(groupIDs, row.ConversationID)
		}
	}
	groupMembers := map[uint][]models.User{}
	if len(groupIDs) > 0 {
		groupMembers, err = s.conversationRepo.ListParticipantUsers(groupIDs)
		if err != nil {
			// Degrade: group entries render without member details.
			log.Printf("conversation list: group member enrichment failed for user %d: %v", userID, err)
			groupMembers = map[uint][]models.User{}
		}
	}

	summaries := make([]models.ConversationSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, s.buildSummary(userID, row, groupMembers))
	}

	// Re-sort: the DB orders by its own activity column, but degraded rows
	// fall back to updated_at, which can diverge once previews attach.
	sort.SliceStable(summaries, func(i, j int) bool {
		ti, tj := summaries[i].LastMessageAt, summaries[j].LastMessageAt
		switch {
		case ti == nil && tj == nil:
			return summaries[i].ID > summaries[j].ID
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})

	_ = s.listCache.SetList(userID, summaries)
	return trimSummaries(summaries, limit), nil
}

func trimSummaries(summaries []models.ConversationSummary, limit int) []models.ConversationSummary {
	if len(summaries) > limit {
		return summaries[:limit]
	}
	return summaries
}

func (s *ConversationListService) buildSummary(userID uint, row repository.ConversationSummaryRow, groupMembers map[uint][]models.User) models.ConversationSummary {
	summary := models.ConversationSummary{
		ID:          row.ConversationID,
		IsGroup:     row.IsGroup,
		UnreadCount: row.UnreadCount,
	}

	if row.LastMessageAt != nil {
		summary.LastMessageAt = row.LastMessageAt
	} else {
		t := row.UpdatedAt
		summary.LastMessageAt = &t
	}

	if row.IsGroup {
		summary.Name = row.GroupName
		summary.Photo = row.GroupPhoto
		for _, member := range groupMembers[row.ConversationID] {
			if member.ID == userID {
				continue
			}
			summary.Participants = append(summary.Participants, member.ToResponse())
		}
	} else {
		peer := models.User{
			ID:         row.PeerID,
			Username:   row.PeerUsername,
			FirstName:  row.PeerFirstName,
			LastName:   row.PeerLastName,
			Avatar:     row.PeerAvatar,
			University: row.PeerUniversity,
			City:       row.PeerCity,
			IsOnline:   row.PeerIsOnline,
			LastSeen:   row.PeerLastSeen,
		}
		if peer.ID == 0 {
			summary.Name = unknownParticipant
		} else {
			summary.Name = peer.DisplayName()
			summary.Photo = peer.Avatar
			summary.Participants = append(summary.Participants, peer.ToResponse())
		}
	}

	if row.MessageID != 0 {
		summary.Preview = validation.TruncatePreview(previewText(row))
		summary.PreviewSender = row.MessageSenderID
	}
	return summary
}

func previewText(row repository.ConversationSummaryRow) string {
	switch models.MessageType(row.MessageType) {
	case models.ImageMessage:
		if row.MessageContent != "" {
			return row.MessageContent
		}
		return "Sent an image"
	case models.FileMessage:
		if row.MessageFileName != "" {
			return row.MessageFileName
		}
		return "Sent a file"
	default:
		return row.MessageContent
	}
}

// InvalidateFor drops the cached lists of everyone in the conversation.
// Called best-effort after sends and read-marks.
func (s *ConversationListService) InvalidateFor(conversationID uint) {
	participants, err := s.conversationRepo.ListParticipants(conversationID)
	if err != nil {
		return
	}
	ids := make([]uint, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}
	_ = s.listCache.InvalidateLists(ids...)
}
