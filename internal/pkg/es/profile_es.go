package es

import (
	"Novii/internal/model"
	"strings"
)

// ProfileES 对应 profile_index 的文档结构
type ProfileES struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	FullName       *string `json:"full_name,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	AvatarURL      *string `json:"avatar_url,omitempty"`
	IsVerified     bool    `json:"is_verified"`
	FollowersCount int     `json:"followers_count"`
}

func NewProfileES(p *model.Profile) *ProfileES {
	return &ProfileES{
		ID:             p.ID.String(),
		Username:       strings.ToLower(p.Username),
		FullName:       p.FullName,
		Bio:            p.Bio,
		AvatarURL:      p.AvatarURL,
		IsVerified:     p.IsVerified,
		FollowersCount: p.FollowersCount,
	}
}
