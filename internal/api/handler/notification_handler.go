package handler

import (
	"Novii/internal/api/dto"
	"Novii/internal/pkg/response"
	"Novii/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationSvc service.NotificationService
}

func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

func (s *NotificationHandler) GetNotifications(c *gin.Context) {
	page, pageSize := getPagination(c)
	res, err := s.notificationSvc.GetNotifications(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *NotificationHandler) GetUnreadCount(c *gin.Context) {
	count, err := s.notificationSvc.GetUnreadCount(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.UnreadDTO{Count: count})
}

func (s *NotificationHandler) MarkAsRead(c *gin.Context) {
	notificationID, ok := pathUUID(c, "notification_id")
	if !ok {
		return
	}
	if err := s.notificationSvc.MarkAsRead(c.Request.Context(), currentUserID(c), notificationID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	count, err := s.notificationSvc.MarkAllAsRead(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.UnreadDTO{Count: count})
}
