package dto

// NotificationDTO 通知
type NotificationDTO struct {
	ID               string           `json:"id"`
	Type             string           `json:"type"`
	Actor            *ProfileBriefDTO `json:"actor"`
	PostID           *string          `json:"post_id"`
	CommentID        *string          `json:"comment_id"`
	Content          *string          `json:"content"`
	IsRead           bool             `json:"is_read"`
	IsFollowingActor bool             `json:"is_following_actor"`
	Section          string           `json:"section"`
	CreatedAt        string           `json:"created_at"`
}
