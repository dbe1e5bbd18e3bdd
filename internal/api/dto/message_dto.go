package dto

// SendMessageDTO 发送私信
type SendMessageDTO struct {
	ReceiverID string `json:"receiver_id" validate:"required,uuid"`
	Content    string `json:"content" validate:"required"`
}

// MessageDTO 私信
type MessageDTO struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
	IsRead     bool   `json:"is_read"`
	IsMine     bool   `json:"is_mine"`
	CreatedAt  string `json:"created_at"`
}

// ConversationDTO 会话列表项
type ConversationDTO struct {
	Peer        *ProfileBriefDTO `json:"peer"`
	LastMessage *MessageDTO      `json:"last_message"`
	UnreadCount int64            `json:"unread_count"`
}

// UnreadDTO 未读数
type UnreadDTO struct {
	Count int64 `json:"count"`
}
