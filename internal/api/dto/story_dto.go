package dto

// CreateStoryDTO 发布快拍
type CreateStoryDTO struct {
	MediaURL  string `json:"media_url" validate:"required,url"`
	MediaType string `json:"media_type" validate:"omitempty,oneof=image video"`
}

// StoryDTO 快拍
type StoryDTO struct {
	ID         string `json:"id"`
	MediaURL   string `json:"media_url"`
	MediaType  string `json:"media_type"`
	ViewsCount int    `json:"views_count"`
	IsViewed   bool   `json:"is_viewed"`
	ExpiresAt  string `json:"expires_at"`
	CreatedAt  string `json:"created_at"`
}

// StoryGroupDTO 按作者分组的有效快拍
type StoryGroupDTO struct {
	Author      *ProfileBriefDTO `json:"author"`
	IsOwn       bool             `json:"is_own"`
	HasUnviewed bool             `json:"has_unviewed"`
	Stories     []*StoryDTO      `json:"stories"`
}

// StoryViewerDTO 快拍浏览者
type StoryViewerDTO struct {
	Viewer   *ProfileBriefDTO `json:"viewer"`
	ViewedAt string           `json:"viewed_at"`
}
