package service

import (
	"Novii/internal/api/dto"
	"Novii/internal/model"
	"Novii/internal/pkg/cache"
	"Novii/internal/pkg/consts"
	"Novii/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	SectionThisWeek  = "this_week"
	SectionThisMonth = "this_month"
	SectionEarlier   = "earlier"
)

type NotificationService interface {
	EventHandler
	CreateNotification(ctx context.Context, n *model.Notification) error
	GetNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int) (*dto.ListDTO[dto.NotificationDTO], error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type NotificationServiceImpl struct {
	notificationRepo repository.NotificationRepo
	profileRepo      repository.ProfileRepo
	followRepo       repository.FollowRepo
	store            cache.Store
	now              func() time.Time
}

func NewNotificationService(
	notificationRepo repository.NotificationRepo,
	profileRepo repository.ProfileRepo,
	followRepo repository.FollowRepo,
	store cache.Store,
) NotificationService {
	return &NotificationServiceImpl{
		notificationRepo: notificationRepo,
		profileRepo:      profileRepo,
		followRepo:       followRepo,
		store:            store,
		now:              time.Now,
	}
}

// HandleEvent 将交互事件转换为通知，同一事件重复投递只落库一次
func (s *NotificationServiceImpl) HandleEvent(ctx context.Context, event *InteractionEvent) error {
	if event.ActorID == event.RecipientID {
		return nil
	}
	actorID := event.ActorID
	n := &model.Notification{
		ID:        event.ID,
		UserID:    event.RecipientID,
		ActorID:   &actorID,
		Type:      event.Type,
		PostID:    event.PostID,
		CommentID: event.CommentID,
		Content:   notificationContent(event),
		CreatedAt: event.OccurredAt,
	}
	err := s.CreateNotification(ctx, n)
	if errors.Is(err, ErrProfileNotFound) || errors.Is(err, ErrPostNotFound) || errors.Is(err, ErrParamInvalid) {
		// 事件无效或关联实体已被删除，丢弃
		log.WarnContext(ctx, "drop interaction event", "id", event.ID, "type", event.Type, "err", err)
		return nil
	}
	return err
}

func (s *NotificationServiceImpl) CreateNotification(ctx context.Context, n *model.Notification) error {
	if n.UserID == uuid.Nil || !model.ValidNotificationType(n.Type) {
		return ErrParamInvalid
	}
	if err := s.notificationRepo.CreateNotification(ctx, n); err != nil {
		if errors.Is(err, repository.ErrReferenceMissing) {
			if n.PostID != nil || n.CommentID != nil {
				return ErrPostNotFound
			}
			return ErrProfileNotFound
		}
		return err
	}
	_ = s.store.Delete(ctx, consts.NotificationUnreadKey+n.UserID.String())
	return nil
}

func (s *NotificationServiceImpl) GetNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int) (*dto.ListDTO[dto.NotificationDTO], error) {
	limit, offset := normalizePage(page, pageSize)
	items, err := s.notificationRepo.GetNotificationList(ctx, userID, limit+1, offset)
	if err != nil {
		return nil, err
	}
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var actorIDs []uuid.UUID
	for _, n := range items {
		if n.ActorID != nil {
			actorIDs = append(actorIDs, *n.ActorID)
		}
	}
	actors, err := profileMap(ctx, s.profileRepo, actorIDs)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.GetFollowingSet(ctx, userID, uniqueIDs(actorIDs))
	if err != nil {
		return nil, err
	}

	now := s.now()
	list := make([]*dto.NotificationDTO, 0, len(items))
	for _, n := range items {
		item := &dto.NotificationDTO{
			ID:        n.ID.String(),
			Type:      n.Type,
			PostID:    uuidPtrString(n.PostID),
			CommentID: uuidPtrString(n.CommentID),
			Content:   n.Content,
			IsRead:    n.IsRead,
			Section:   notificationSection(now, n.CreatedAt),
			CreatedAt: formatTime(n.CreatedAt),
		}
		if n.ActorID != nil {
			item.Actor = toProfileBrief(actors[*n.ActorID])
			item.IsFollowingActor = following[*n.ActorID]
		}
		list = append(list, item)
	}
	return &dto.ListDTO[dto.NotificationDTO]{List: list, HasMore: hasMore}, nil
}

func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return cachedCount(ctx, s.store, consts.NotificationUnreadKey+userID.String(), func(ctx context.Context) (int64, error) {
		return s.notificationRepo.GetUnreadCount(ctx, userID)
	})
}

// MarkAsRead 只有通知接收者可以标记已读，已读的通知再次标记不报错
func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	n, err := s.notificationRepo.MarkAsRead(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if n > 0 {
		_ = s.store.Delete(ctx, consts.NotificationUnreadKey+userID.String())
		return nil
	}

	existing, err := s.notificationRepo.GetNotification(ctx, notificationID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotificationNotFound
	}
	if existing.UserID != userID {
		return ErrForbidden
	}
	return nil
}

func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.notificationRepo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	_ = s.store.Delete(ctx, consts.NotificationUnreadKey+userID.String())
	return n, nil
}

func notificationContent(event *InteractionEvent) *string {
	var content string
	switch event.Type {
	case model.NotificationLike:
		if event.CommentID != nil {
			content = "liked your comment"
		} else {
			content = "liked your photo"
		}
	case model.NotificationFollow:
		content = "started following you"
	case model.NotificationComment:
		content = "commented"
		if event.Content != nil && *event.Content != "" {
			content += ": " + *event.Content
		}
	case model.NotificationMention:
		content = "mentioned you"
	default:
		if event.Content == nil {
			return nil
		}
		content = *event.Content
	}
	return &content
}

// notificationSection 通知列表分组：近 7 天、近 30 天、更早
func notificationSection(now, createdAt time.Time) string {
	age := now.Sub(createdAt)
	switch {
	case age < 7*24*time.Hour:
		return SectionThisWeek
	case age < 30*24*time.Hour:
		return SectionThisMonth
	default:
		return SectionEarlier
	}
}
