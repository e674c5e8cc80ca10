package service

import (
	"strings"

	"github.com/unilinkhq/messaging-backend/internal/apperr"
	"github.com/unilinkhq/messaging-backend/internal/cache"
	"github.com/unilinkhq/messaging-backend/internal/models"
	"github.com/unilinkhq/messaging-backend/internal/repository"
)

// UserService serves the read-only user surface a chat client needs: finding
// someone to message and seeing who is online. Presence from Redis overlays
// the synced is_online column, which can lag behind reality.
type UserService struct {
	userRepo repository.UserRepositoryInterface
	presence *cache.PresenceCache
}

func NewUserService(userRepo repository.UserRepositoryInterface, presence *cache.PresenceCache) *UserService {
	return &UserService{
		userRepo: userRepo,
		presence: presence,
	}
}

// SearchUsers matches usernames and names against query. Empty queries
// return nothing rather than the whole directory.
func (s *UserService) SearchUsers(query string, limit int) ([]models.UserResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.UserResponse{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	users, err := s.userRepo.SearchUsers(query, limit)
	if err != nil {
		return nil, apperr.Persistence("search users", err)
	}

	responses := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		resp := u.ToResponse()
		if s.presence.IsUserOnline(u.ID) {
			resp.IsOnline = true
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// OnlineUsers returns the profiles of everyone with a live connection.
func (s *UserService) OnlineUsers() ([]models.UserResponse, error) {
	ids, err := s.presence.GetOnlineUsers()
	if err != nil {
		return nil, apperr.Persistence("list online users", err)
	}
	if len(ids) == 0 {
		return []models.UserResponse{}, nil
	}

	users, err := s.userRepo.FindByIDs(ids)
	if err != nil {
		return nil, apperr.Persistence("load online users", err)
	}
	responses := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		resp := u.ToResponse()
		resp.IsOnline = true
		responses = append(responses, resp)
	}
	return responses, nil
}
