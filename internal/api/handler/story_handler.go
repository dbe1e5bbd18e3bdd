package handler

import (
	"Novii/internal/api/dto"
	"Novii/internal/pkg/response"
	"Novii/internal/service"

	"github.com/gin-gonic/gin"
)

type StoryHandler struct {
	storySvc service.StoryService
}

func NewStoryHandler(storySvc service.StoryService) *StoryHandler {
	return &StoryHandler{storySvc: storySvc}
}

func (s *StoryHandler) CreateStory(c *gin.Context) {
	var req dto.CreateStoryDTO
	if !bindJSON(c, &req) {
		return
	}
	story, err := s.storySvc.CreateStory(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, story)
}

func (s *StoryHandler) GetActiveStories(c *gin.Context) {
	groups, err := s.storySvc.GetActiveStories(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, groups)
}

func (s *StoryHandler) ViewStory(c *gin.Context) {
	storyID, ok := pathUUID(c, "story_id")
	if !ok {
		return
	}
	if err := s.storySvc.ViewStory(c.Request.Context(), currentUserID(c), storyID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *StoryHandler) GetStoryViewers(c *gin.Context) {
	storyID, ok := pathUUID(c, "story_id")
	if !ok {
		return
	}
	page, pageSize := getPagination(c)
	res, err := s.storySvc.GetStoryViewers(c.Request.Context(), currentUserID(c), storyID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *StoryHandler) DeleteStory(c *gin.Context) {
	storyID, ok := pathUUID(c, "story_id")
	if !ok {
		return
	}
	if err := s.storySvc.DeleteStory(c.Request.Context(), currentUserID(c), storyID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
