package handler

import (
	"Novii/internal/api/dto"
	"Novii/internal/pkg/response"
	"Novii/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageSvc service.MessageService
}

func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

func (s *MessageHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageDTO
	if !bindJSON(c, &req) {
		return
	}
	msg, err := s.messageSvc.SendMessage(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, msg)
}

func (s *MessageHandler) GetConversations(c *gin.Context) {
	page, pageSize := getPagination(c)
	res, err := s.messageSvc.GetConversations(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *MessageHandler) GetThread(c *gin.Context) {
	peerID, ok := pathUUID(c, "peer_id")
	if !ok {
		return
	}
	var req dto.CursorPageDTO
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	res, err := s.messageSvc.GetThread(c.Request.Context(), currentUserID(c), peerID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *MessageHandler) MarkThreadRead(c *gin.Context) {
	peerID, ok := pathUUID(c, "peer_id")
	if !ok {
		return
	}
	count, err := s.messageSvc.MarkThreadRead(c.Request.Context(), currentUserID(c), peerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.UnreadDTO{Count: count})
}

func (s *MessageHandler) GetUnreadCount(c *gin.Context) {
	count, err := s.messageSvc.GetUnreadCount(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.UnreadDTO{Count: count})
}
