package dto

// ProfileDTO 用户资料
type ProfileDTO struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	FullName       *string `json:"full_name"`
	Bio            *string `json:"bio"`
	AvatarURL      *string `json:"avatar_url"`
	CoverURL       *string `json:"cover_url"`
	Website        *string `json:"website"`
	Location       *string `json:"location"`
	FollowersCount int     `json:"followers_count"`
	FollowingCount int     `json:"following_count"`
	PostsCount     int     `json:"posts_count"`
	IsVerified     bool    `json:"is_verified"`
	IsPrivate      bool    `json:"is_private"`
	IsFollowing    bool    `json:"is_following"`
	CreatedAt      string  `json:"created_at"`
}

// ProfileBriefDTO 列表中展示的简要资料
type ProfileBriefDTO struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	FullName   *string `json:"full_name"`
	AvatarURL  *string `json:"avatar_url"`
	IsVerified bool    `json:"is_verified"`
}

// UpdateProfileDTO 修改资料，nil 字段不修改
type UpdateProfileDTO struct {
	Username  *string `json:"username" validate:"omitempty,username"`
	FullName  *string `json:"full_name" validate:"omitempty,max=64"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
	CoverURL  *string `json:"cover_url" validate:"omitempty,url"`
	Website   *string `json:"website" validate:"omitempty,url"`
	Location  *string `json:"location" validate:"omitempty,max=100"`
	IsPrivate *bool   `json:"is_private"`
}

// SearchProfileDTO 搜索用户
type SearchProfileDTO struct {
	Keyword  string `form:"q"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// FollowDTO 关注关系列表项
type FollowDTO struct {
	Profile     *ProfileBriefDTO `json:"profile"`
	IsFollowing bool             `json:"is_following"`
	CreatedAt   string           `json:"created_at"`
}

// FollowStateDTO 关注状态
type FollowStateDTO struct {
	IsFollowing  bool `json:"is_following"`
	IsFollowedBy bool `json:"is_followed_by"`
}
