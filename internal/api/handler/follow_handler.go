package handler

import (
	"Novii/internal/pkg/response"
	"Novii/internal/service"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	followSvc service.FollowService
}

func NewFollowHandler(followSvc service.FollowService) *FollowHandler {
	return &FollowHandler{followSvc: followSvc}
}

func (s *FollowHandler) Follow(c *gin.Context) {
	profileID, ok := pathUUID(c, "profile_id")
	if !ok {
		return
	}
	if err := s.followSvc.Follow(c.Request.Context(), currentUserID(c), profileID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *FollowHandler) Unfollow(c *gin.Context) {
	profileID, ok := pathUUID(c, "profile_id")
	if !ok {
		return
	}
	if err := s.followSvc.Unfollow(c.Request.Context(), currentUserID(c), profileID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *FollowHandler) GetFollowState(c *gin.Context) {
	profileID, ok := pathUUID(c, "profile_id")
	if !ok {
		return
	}
	state, err := s.followSvc.GetFollowState(c.Request.Context(), currentUserID(c), profileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, state)
}
