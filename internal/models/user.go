package models

import (
	"strings"
	"time"
)

// User is reference data owned by the external auth provider. The messaging
// core never writes user rows; they are synced in by the host platform.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username   string     `gorm:"uniqueIndex;not null" json:"username"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Avatar     string     `json:"avatar"`
	University string     `json:"university"`
	City       string     `json:"city"`
	IsOnline   bool       `gorm:"default:false" json:"is_online"`
	LastSeen   *time.Time `json:"last_seen"`
}

type UserResponse struct {
	ID         uint       `json:"id"`
	Username   string     `json:"username"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Avatar     string     `json:"avatar"`
	University string     `json:"university"`
	City       string     `json:"city"`
	IsOnline   bool       `json:"is_online"`
	LastSeen   *time.Time `json:"last_seen"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Avatar:     u.Avatar,
		University: u.University,
		City:       u.City,
		IsOnline:   u.IsOnline,
		LastSeen:   u.LastSeen,
	}
}

// DisplayName is what conversation lists show for a participant.
func (u *User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Username
}
