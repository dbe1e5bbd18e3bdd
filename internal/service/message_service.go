package service

import (
	"Novii/internal/api/dto"
	"Novii/internal/model"
	"Novii/internal/pkg/cache"
	"Novii/internal/pkg/consts"
	"Novii/internal/pkg/util"
	"Novii/internal/repository"
	"context"

	"github.com/google/uuid"
)

type MessageService interface {
	SendMessage(ctx context.Context, senderID uuid.UUID, req *dto.SendMessageDTO) (*dto.MessageDTO, error)
	GetConversations(ctx context.Context, userID uuid.UUID, page, pageSize int) (*dto.ListDTO[dto.ConversationDTO], error)
	GetThread(ctx context.Context, userID, peerID uuid.UUID, req *dto.CursorPageDTO) (*dto.CursorListDTO[dto.MessageDTO], error)
	MarkThreadRead(ctx context.Context, userID, peerID uuid.UUID) (int64, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type MessageServiceImpl struct {
	messageRepo repository.MessageRepo
	profileRepo repository.ProfileRepo
	store       cache.Store
}

func NewMessageService(messageRepo repository.MessageRepo, profileRepo repository.ProfileRepo, store cache.Store) MessageService {
	return &MessageServiceImpl{
		messageRepo: messageRepo,
		profileRepo: profileRepo,
		store:       store,
	}
}

func (s *MessageServiceImpl) SendMessage(ctx context.Context, senderID uuid.UUID, req *dto.SendMessageDTO) (*dto.MessageDTO, error) {
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		return nil, ErrParamInvalid
	}
	if receiverID == senderID {
		return nil, ErrMessageSelf
	}
	content, err := cleanText(req.Content, consts.MaxMessageLength)
	if err != nil {
		return nil, err
	}

	receiver, err := s.profileRepo.GetProfileByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrProfileNotFound
	}

	msg := &model.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err = s.messageRepo.CreateMessage(ctx, msg); err != nil {
		return nil, mapRepoError(err)
	}
	_ = s.store.Delete(ctx, consts.MessageUnreadKey+receiverID.String())

	return toMessageDTO(msg, senderID), nil
}

// GetConversations 会话列表，每个会话附带最后一条消息与未读数
func (s *MessageServiceImpl) GetConversations(ctx context.Context, userID uuid.UUID, page, pageSize int) (*dto.ListDTO[dto.ConversationDTO], error) {
	limit, offset := normalizePage(page, pageSize)
	rows, err := s.messageRepo.GetConversations(ctx, userID, limit+1, offset)
	if err != nil {
		return nil, err
	}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	peerIDs := model.IDs(rows, func(r *model.ConversationRow) uuid.UUID { return r.PeerID })
	peers, err := profileMap(ctx, s.profileRepo, peerIDs)
	if err != nil {
		return nil, err
	}
	unread, err := s.messageRepo.GetUnreadCountsByPeer(ctx, userID, peerIDs)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.ConversationDTO, 0, len(rows))
	for _, r := range rows {
		p, ok := peers[r.PeerID]
		if !ok {
			continue
		}
		msg := r.Message
		list = append(list, &dto.ConversationDTO{
			Peer:        toProfileBrief(p),
			LastMessage: toMessageDTO(&msg, userID),
			UnreadCount: unread[r.PeerID],
		})
	}
	return &dto.ListDTO[dto.ConversationDTO]{List: list, HasMore: hasMore}, nil
}

// GetThread 与 peerID 的会话消息，按时间倒序
func (s *MessageServiceImpl) GetThread(ctx context.Context, userID, peerID uuid.UUID, req *dto.CursorPageDTO) (*dto.CursorListDTO[dto.MessageDTO], error) {
	createdAt, lastID, ok, err := util.DecodeTimeCursor(req.Cursor)
	if err != nil {
		return nil, ErrParamInvalid
	}
	var cursor *repository.Cursor
	if ok {
		cursor = &repository.Cursor{CreatedAt: createdAt, ID: lastID}
	}
	limit, _ := normalizePage(1, req.PageSize)

	messages, err := s.messageRepo.GetThreadMessages(ctx, userID, peerID, cursor, limit+1)
	if err != nil {
		return nil, err
	}
	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	list := make([]*dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		list = append(list, toMessageDTO(m, userID))
	}
	res := &dto.CursorListDTO[dto.MessageDTO]{List: list, HasMore: hasMore}
	if hasMore {
		last := messages[len(messages)-1]
		res.NextCursor = util.EncodeTimeCursor(last.CreatedAt, last.ID)
	}
	return res, nil
}

// MarkThreadRead 只有接收方可以将消息标记为已读
func (s *MessageServiceImpl) MarkThreadRead(ctx context.Context, userID, peerID uuid.UUID) (int64, error) {
	n, err := s.messageRepo.MarkThreadRead(ctx, userID, peerID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		_ = s.store.Delete(ctx, consts.MessageUnreadKey+userID.String())
	}
	return n, nil
}

func (s *MessageServiceImpl) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return cachedCount(ctx, s.store, consts.MessageUnreadKey+userID.String(), func(ctx context.Context) (int64, error) {
		return s.messageRepo.GetUnreadCount(ctx, userID)
	})
}

func toMessageDTO(m *model.Message, self uuid.UUID) *dto.MessageDTO {
	item := &dto.MessageDTO{}
	copyDTO(item, m)
	item.IsMine = m.SenderID == self
	return item
}
