package repository

import (
	"Novii/internal/model"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepo interface {
	CreateMessage(ctx context.Context, msg *model.Message) error
	GetThreadMessages(ctx context.Context, userID, peerID uuid.UUID, cursor *Cursor, limit int) ([]*model.Message, error)
	GetConversations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.ConversationRow, error)
	GetUnreadCountsByPeer(ctx context.Context, userID uuid.UUID, peerIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkThreadRead(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error)
}

type MessageRepoImpl struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &MessageRepoImpl{db: db}
}

func (s *MessageRepoImpl) CreateMessage(ctx context.Context, msg *model.Message) error {
	return translateError(s.db.WithContext(ctx).Create(msg).Error)
}

// GetThreadMessages 获取两人之间的消息，不区分发送方向，按时间倒序
func (s *MessageRepoImpl) GetThreadMessages(ctx context.Context, userID, peerID uuid.UUID, cursor *Cursor, limit int) ([]*model.Message, error) {
	db := s.db.WithContext(ctx)
	query := db.Where(
		db.Where("sender_id = ? AND receiver_id = ?", userID, peerID).
			Or("sender_id = ? AND receiver_id = ?", peerID, userID),
	)
	query = applyCursor(query, cursor, "")

	var messages []*model.Message
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

const conversationsSQL = `
SELECT t.*, CASE WHEN t.sender_id = @uid THEN t.receiver_id ELSE t.sender_id END AS peer_id
FROM (
    SELECT DISTINCT ON (LEAST(sender_id, receiver_id), GREATEST(sender_id, receiver_id)) *
    FROM messages
    WHERE sender_id = @uid OR receiver_id = @uid
    ORDER BY LEAST(sender_id, receiver_id), GREATEST(sender_id, receiver_id), created_at DESC, id DESC
) t
ORDER BY t.created_at DESC, t.id DESC
LIMIT @limit OFFSET @offset`

// GetConversations 按 (sender, receiver) 无序对聚合会话，每个会话取最后一条消息
func (s *MessageRepoImpl) GetConversations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.ConversationRow, error) {
	var rows []*model.ConversationRow
	err := s.db.WithContext(ctx).
		Raw(conversationsSQL, map[string]interface{}{"uid": userID, "limit": limit, "offset": offset}).
		Scan(&rows).Error
	return rows, err
}

type peerCount struct {
	PeerID uuid.UUID `gorm:"column:peer_id"`
	Count  int64     `gorm:"column:count"`
}

// GetUnreadCountsByPeer userID 作为接收方时，各会话的未读数
func (s *MessageRepoImpl) GetUnreadCountsByPeer(ctx context.Context, userID uuid.UUID, peerIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	res := make(map[uuid.UUID]int64, len(peerIDs))
	if len(peerIDs) == 0 {
		return res, nil
	}
	var counts []peerCount
	err := s.db.WithContext(ctx).Model(&model.Message{}).
		Select("sender_id AS peer_id, COUNT(*) AS count").
		Where("receiver_id = ? AND is_read = ? AND sender_id IN ?", userID, false, peerIDs).
		Group("sender_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		res[c.PeerID] = c.Count
	}
	return res, nil
}

func (s *MessageRepoImpl) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkThreadRead 将 senderID 发给 receiverID 的未读消息标记为已读
func (s *MessageRepoImpl) MarkThreadRead(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", receiverID, senderID, false).
		Updates(map[string]interface{}{"is_read": true})
	return res.RowsAffected, res.Error
}
