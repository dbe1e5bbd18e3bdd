package model

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null" json:"senderId"`
	ReceiverID uuid.UUID `gorm:"type:uuid;not null" json:"receiverId"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsRead     bool      `gorm:"not null;default:false" json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// Peer 相对于 self 的会话对方
func (m *Message) Peer(self uuid.UUID) uuid.UUID {
	if m.SenderID == self {
		return m.ReceiverID
	}
	return m.SenderID
}

// ThreadKey 无序的 (sender, receiver) 对，较小的 UUID 在前
type ThreadKey struct {
	Low  uuid.UUID
	High uuid.UUID
}

func NewThreadKey(a, b uuid.UUID) ThreadKey {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return ThreadKey{Low: a, High: b}
	}
	return ThreadKey{Low: b, High: a}
}

func (m *Message) ThreadKey() ThreadKey {
	return NewThreadKey(m.SenderID, m.ReceiverID)
}

// ConversationRow 会话列表查询结果：每个会话的最后一条消息
type ConversationRow struct {
	Message
	PeerID uuid.UUID `gorm:"column:peer_id;type:uuid"`
}
