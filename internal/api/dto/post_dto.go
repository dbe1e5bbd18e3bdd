package dto

// CreatePostDTO 发布帖子
type CreatePostDTO struct {
	Caption  *string `json:"caption"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
	Location *string `json:"location" validate:"omitempty,max=100"`
}

// UpdatePostDTO 修改帖子，nil 字段不修改
type UpdatePostDTO struct {
	Caption    *string `json:"caption"`
	Location   *string `json:"location" validate:"omitempty,max=100"`
	IsArchived *bool   `json:"is_archived"`
}

// PostDTO 帖子详情
type PostDTO struct {
	ID            string  `json:"id"`
	Caption       *string `json:"caption"`
	ImageURL      *string `json:"image_url"`
	Location      *string `json:"location"`
	LikesCount    int     `json:"likes_count"`
	CommentsCount int     `json:"comments_count"`
	IsArchived    bool    `json:"is_archived"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`

	// 作者
	Author *ProfileBriefDTO `json:"author"`

	// 当前用户的交互状态
	IsLiked bool `json:"is_liked"`
	IsSaved bool `json:"is_saved"`
}

// CreateCommentDTO 发表评论
type CreateCommentDTO struct {
	Content string `json:"content" validate:"required"`
}

// CommentDTO 评论
type CommentDTO struct {
	ID         string           `json:"id"`
	PostID     string           `json:"post_id"`
	Content    string           `json:"content"`
	LikesCount int              `json:"likes_count"`
	IsLiked    bool             `json:"is_liked"`
	CreatedAt  string           `json:"created_at"`
	Author     *ProfileBriefDTO `json:"author"`
}
